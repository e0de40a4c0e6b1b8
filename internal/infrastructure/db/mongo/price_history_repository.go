package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kapehub/coffee-pricing-api/internal/core/domain"
)

const collectionPriceHistory = "price_history"

// PriceHistoryRepository implements ports.PriceHistoryRepository on the
// append-only price_history collection. Entries are never updated or deleted.
type PriceHistoryRepository struct {
	col *mongo.Collection
}

func NewPriceHistoryRepository(db *mongo.Database) *PriceHistoryRepository {
	return &PriceHistoryRepository{col: db.Collection(collectionPriceHistory)}
}

type historyDoc struct {
	ID         string               `bson:"_id"`
	PriceID    string               `bson:"price_id"`
	CoffeeType string               `bson:"coffee_type"`
	OldPrice   primitive.Decimal128 `bson:"old_price"`
	NewPrice   primitive.Decimal128 `bson:"new_price"`
	ChangedBy  string               `bson:"changed_by"`
	ChangeDate time.Time            `bson:"change_date"`
	Reason     string               `bson:"reason"`
}

// Insert appends one audit entry.
func (r *PriceHistoryRepository) Insert(ctx context.Context, entry *domain.PriceHistoryEntry) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oldPrice, err := primitive.ParseDecimal128(entry.OldPrice.String())
	if err != nil {
		return fmt.Errorf("encode old price: %w", err)
	}
	newPrice, err := primitive.ParseDecimal128(entry.NewPrice.String())
	if err != nil {
		return fmt.Errorf("encode new price: %w", err)
	}

	doc := historyDoc{
		ID:         entry.ID,
		PriceID:    entry.PriceID,
		CoffeeType: string(entry.CoffeeType),
		OldPrice:   oldPrice,
		NewPrice:   newPrice,
		ChangedBy:  entry.ChangedBy,
		ChangeDate: entry.ChangeDate.UTC(),
		Reason:     entry.Reason,
	}

	_, err = r.col.InsertOne(ctx, doc)
	return err
}

// List returns all entries ordered by change_date descending.
func (r *PriceHistoryRepository) List(ctx context.Context) ([]*domain.PriceHistoryEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "change_date", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var entries []*domain.PriceHistoryEntry
	for cur.Next(ctx) {
		var doc historyDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		entry, err := doc.toDomain()
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, cur.Err()
}

func (d *historyDoc) toDomain() (*domain.PriceHistoryEntry, error) {
	oldPrice, err := decimal.NewFromString(d.OldPrice.String())
	if err != nil {
		return nil, fmt.Errorf("decode old price: %w", err)
	}
	newPrice, err := decimal.NewFromString(d.NewPrice.String())
	if err != nil {
		return nil, fmt.Errorf("decode new price: %w", err)
	}
	return &domain.PriceHistoryEntry{
		ID:         d.ID,
		PriceID:    d.PriceID,
		CoffeeType: domain.CoffeeType(d.CoffeeType),
		OldPrice:   oldPrice,
		NewPrice:   newPrice,
		ChangedBy:  d.ChangedBy,
		ChangeDate: d.ChangeDate,
		Reason:     d.Reason,
	}, nil
}

// EnsureIndexes creates the index backing the newest-first listing.
func (r *PriceHistoryRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "change_date", Value: -1}}},
		{Keys: bson.D{{Key: "price_id", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
