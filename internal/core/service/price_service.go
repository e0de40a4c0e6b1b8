package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/kapehub/coffee-pricing-api/internal/api/metrics"
	"github.com/kapehub/coffee-pricing-api/internal/core/domain"
	"github.com/kapehub/coffee-pricing-api/internal/core/ports"
)

// IdempotencyGuard abstracts the replay-detection store (Redis).
type IdempotencyGuard interface {
	IsDuplicate(ctx context.Context, key string) (bool, error)
	Mark(ctx context.Context, key string) error
}

// PriceService implements the price-versioning workflow: one active record
// per coffee type, superseded records retired, every transition audited.
type PriceService struct {
	prices  ports.PriceRepository
	history ports.PriceHistoryRepository
	users   ports.UserRepository
	guard   IdempotencyGuard
	log     zerolog.Logger
}

func NewPriceService(
	prices ports.PriceRepository,
	history ports.PriceHistoryRepository,
	users ports.UserRepository,
	guard IdempotencyGuard,
	log zerolog.Logger,
) *PriceService {
	return &PriceService{
		prices:  prices,
		history: history,
		users:   users,
		guard:   guard,
		log:     log,
	}
}

// SubmitPrice records a new active price for a coffee type.
//
// The three writes (insert new record, retire prior record, append history)
// run as a compensated saga: when a later step fails, the earlier writes are
// undone so the one-active-record-per-type invariant survives a partial
// failure. Only a failed compensation can leave two active records, and that
// outcome is logged and counted rather than silently repaired.
func (s *PriceService) SubmitPrice(ctx context.Context, in ports.SubmitPriceInput) (*ports.SubmitPriceResult, error) {
	start := time.Now()

	coffeeType := domain.CoffeeType(in.CoffeeType)
	if !coffeeType.Valid() {
		metrics.PriceUpdateErrorsTotal.WithLabelValues("unknown_coffee_type").Inc()
		return nil, fmt.Errorf("submit price: %w: %q", domain.ErrUnknownCoffeeType, in.CoffeeType)
	}
	if in.PricePerKg.IsNegative() {
		metrics.PriceUpdateErrorsTotal.WithLabelValues("negative_price").Inc()
		return nil, fmt.Errorf("submit price: %w", domain.ErrNegativePrice)
	}
	if in.Currency != domain.CurrencyPHP {
		metrics.PriceUpdateErrorsTotal.WithLabelValues("unsupported_currency").Inc()
		return nil, fmt.Errorf("submit price: %w: %q", domain.ErrUnsupportedCurrency, in.Currency)
	}

	// Replay check — a retried submission must not version the price twice.
	if in.IdempotencyKey != "" {
		if replay := s.findReplay(ctx, in.IdempotencyKey); replay != nil {
			s.log.Info().
				Str("idempotency_key", in.IdempotencyKey).
				Str("price_id", replay.ID).
				Msg("idempotent replay")
			return &ports.SubmitPriceResult{Record: replay, AlreadyExisted: true}, nil
		}
	}

	// The prior active record is re-read at submit time. Deciding the
	// transition from data loaded earlier in the session would race with
	// concurrent updates to the same coffee type.
	prior, err := s.prices.FindActiveByType(ctx, coffeeType)
	if err != nil && !errors.Is(err, domain.ErrPriceNotFound) {
		metrics.PriceUpdateErrorsTotal.WithLabelValues("read_failed").Inc()
		return nil, fmt.Errorf("submit price: find active: %w", err)
	}

	now := time.Now().UTC()
	rec := &domain.PriceRecord{
		ID:             uuid.NewString(),
		CoffeeType:     coffeeType,
		PricePerKg:     in.PricePerKg,
		Currency:       in.Currency,
		IsActive:       true,
		CreatedBy:      in.AdminID,
		UpdatedAt:      now,
		IdempotencyKey: in.IdempotencyKey,
	}

	if err := s.prices.Insert(ctx, rec); err != nil {
		metrics.PriceUpdateErrorsTotal.WithLabelValues("insert_failed").Inc()
		return nil, fmt.Errorf("submit price: insert: %w", err)
	}

	if in.IdempotencyKey != "" {
		if err := s.guard.Mark(ctx, in.IdempotencyKey); err != nil {
			s.log.Warn().Err(err).Str("idempotency_key", in.IdempotencyKey).Msg("failed to set idempotency key")
		}
	}

	// First price ever set for this type: nothing to retire, no audit entry.
	if prior == nil {
		s.log.Info().
			Str("coffee_type", string(coffeeType)).
			Str("price_id", rec.ID).
			Str("price_per_kg", rec.PricePerKg.String()).
			Msg("initial price recorded")
		metrics.PriceUpdatesTotal.WithLabelValues(string(coffeeType)).Inc()
		metrics.PriceUpdateDuration.WithLabelValues("initial").Observe(time.Since(start).Seconds())
		return &ports.SubmitPriceResult{Record: rec}, nil
	}

	if err := s.prices.SetActive(ctx, prior.ID, false); err != nil {
		metrics.PriceUpdateErrorsTotal.WithLabelValues("deactivate_failed").Inc()
		s.compensateInsert(ctx, rec)
		return nil, fmt.Errorf("submit price: retire prior record: %w", err)
	}

	entry := &domain.PriceHistoryEntry{
		ID:         uuid.NewString(),
		PriceID:    rec.ID,
		CoffeeType: coffeeType,
		OldPrice:   prior.PricePerKg,
		NewPrice:   rec.PricePerKg,
		ChangedBy:  in.AdminID,
		ChangeDate: now,
		Reason:     domain.ReasonPriceUpdate,
	}
	if err := s.history.Insert(ctx, entry); err != nil {
		metrics.PriceUpdateErrorsTotal.WithLabelValues("history_failed").Inc()
		s.compensateRetire(ctx, prior)
		s.compensateInsert(ctx, rec)
		return nil, fmt.Errorf("submit price: append history: %w", err)
	}

	s.log.Info().
		Str("coffee_type", string(coffeeType)).
		Str("price_id", rec.ID).
		Str("old_price", prior.PricePerKg.String()).
		Str("new_price", rec.PricePerKg.String()).
		Str("changed_by", in.AdminID).
		Msg("price updated")

	metrics.PriceUpdatesTotal.WithLabelValues(string(coffeeType)).Inc()
	metrics.PriceUpdateDuration.WithLabelValues("versioned").Observe(time.Since(start).Seconds())

	return &ports.SubmitPriceResult{Record: rec}, nil
}

// findReplay returns the record created by an earlier submission with the
// same idempotency key, or nil when the key is unseen. The Redis guard is the
// fast path; Mongo is consulted for the actual record.
func (s *PriceService) findReplay(ctx context.Context, key string) *domain.PriceRecord {
	dup, err := s.guard.IsDuplicate(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Str("idempotency_key", key).Msg("idempotency check failed, falling back to store lookup")
	}
	if err == nil && !dup {
		return nil
	}
	existing, err := s.prices.FindByIdempotencyKey(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrPriceNotFound) {
			s.log.Warn().Err(err).Str("idempotency_key", key).Msg("idempotency store lookup failed")
		}
		return nil
	}
	return existing
}

// compensateInsert undoes the new-record insert after a later saga step
// failed. A failed compensation is the one path that can leave two active
// records for a coffee type; it is surfaced in logs and metrics, never
// silently repaired.
func (s *PriceService) compensateInsert(ctx context.Context, rec *domain.PriceRecord) {
	if err := s.prices.Delete(ctx, rec.ID); err != nil {
		metrics.PriceCompensationsTotal.WithLabelValues("failed").Inc()
		s.log.Error().Err(err).
			Str("coffee_type", string(rec.CoffeeType)).
			Str("price_id", rec.ID).
			Msg("compensation failed: store may hold two active records for this coffee type")
		return
	}
	metrics.PriceCompensationsTotal.WithLabelValues("applied").Inc()
	s.log.Warn().
		Str("coffee_type", string(rec.CoffeeType)).
		Str("price_id", rec.ID).
		Msg("price insert rolled back")
}

// compensateRetire restores the prior record's active flag after the history
// append failed.
func (s *PriceService) compensateRetire(ctx context.Context, prior *domain.PriceRecord) {
	if err := s.prices.SetActive(ctx, prior.ID, true); err != nil {
		metrics.PriceCompensationsTotal.WithLabelValues("failed").Inc()
		s.log.Error().Err(err).
			Str("price_id", prior.ID).
			Msg("compensation failed: prior record left inactive")
	}
}

// ListActivePrices returns the active price per coffee type ordered by
// coffee type ascending, each enriched with its creator's display name.
func (s *PriceService) ListActivePrices(ctx context.Context) ([]ports.ActivePriceView, error) {
	records, err := s.prices.ListActive(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list active prices")
		return nil, fmt.Errorf("list active prices: %w", err)
	}

	names := s.resolveNames(ctx, creatorIDs(records))

	views := make([]ports.ActivePriceView, 0, len(records))
	for _, rec := range records {
		views = append(views, ports.ActivePriceView{
			ID:            rec.ID,
			CoffeeType:    rec.CoffeeType,
			PricePerKg:    rec.PricePerKg,
			Currency:      rec.Currency,
			CreatedBy:     rec.CreatedBy,
			CreatedByName: names[rec.CreatedBy],
			UpdatedAt:     rec.UpdatedAt,
		})
	}
	sort.Slice(views, func(i, j int) bool { return views[i].CoffeeType < views[j].CoffeeType })
	return views, nil
}

// ListPriceHistory returns the full audit trail ordered by change date
// descending, each entry enriched with the changer's display name.
func (s *PriceService) ListPriceHistory(ctx context.Context) ([]ports.PriceHistoryView, error) {
	entries, err := s.history.List(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list price history")
		return nil, fmt.Errorf("list price history: %w", err)
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ChangedBy)
	}
	names := s.resolveNames(ctx, ids)

	views := make([]ports.PriceHistoryView, 0, len(entries))
	for _, e := range entries {
		views = append(views, ports.PriceHistoryView{
			ID:            e.ID,
			PriceID:       e.PriceID,
			CoffeeType:    e.CoffeeType,
			OldPrice:      e.OldPrice,
			NewPrice:      e.NewPrice,
			ChangedBy:     e.ChangedBy,
			ChangedByName: names[e.ChangedBy],
			ChangeDate:    e.ChangeDate,
			Reason:        e.Reason,
		})
	}
	sort.SliceStable(views, func(i, j int) bool { return views[i].ChangeDate.After(views[j].ChangeDate) })
	return views, nil
}

// resolveNames maps user IDs to display names. A lookup failure degrades to
// empty names rather than failing the read; the price rows stay visible.
func (s *PriceService) resolveNames(ctx context.Context, ids []string) map[string]string {
	names := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return names
	}
	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to resolve author names")
		return names
	}
	for id, u := range users {
		names[id] = u.DisplayName()
	}
	return names
}

func creatorIDs(records []*domain.PriceRecord) []string {
	ids := make([]string, 0, len(records))
	for _, rec := range records {
		ids = append(ids, rec.CreatedBy)
	}
	return ids
}
