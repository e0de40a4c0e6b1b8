package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kapehub/coffee-pricing-api/internal/core/domain"
)

const collectionPrices = "prices"

// PriceRepository implements ports.PriceRepository on the prices collection.
// Money is stored as Decimal128 so amounts survive round trips exactly.
type PriceRepository struct {
	col *mongo.Collection
}

func NewPriceRepository(db *mongo.Database) *PriceRepository {
	return &PriceRepository{col: db.Collection(collectionPrices)}
}

type priceDoc struct {
	ID             string               `bson:"_id"`
	CoffeeType     string               `bson:"coffee_type"`
	PricePerKg     primitive.Decimal128 `bson:"price_per_kg"`
	Currency       string               `bson:"currency"`
	IsActive       bool                 `bson:"is_active"`
	CreatedBy      string               `bson:"created_by"`
	UpdatedAt      time.Time            `bson:"updated_at"`
	IdempotencyKey string               `bson:"idempotency_key,omitempty"`
}

func toPriceDoc(rec *domain.PriceRecord) (*priceDoc, error) {
	amount, err := primitive.ParseDecimal128(rec.PricePerKg.String())
	if err != nil {
		return nil, fmt.Errorf("encode price amount: %w", err)
	}
	return &priceDoc{
		ID:             rec.ID,
		CoffeeType:     string(rec.CoffeeType),
		PricePerKg:     amount,
		Currency:       rec.Currency,
		IsActive:       rec.IsActive,
		CreatedBy:      rec.CreatedBy,
		UpdatedAt:      rec.UpdatedAt.UTC(),
		IdempotencyKey: rec.IdempotencyKey,
	}, nil
}

func (d *priceDoc) toDomain() (*domain.PriceRecord, error) {
	amount, err := decimal.NewFromString(d.PricePerKg.String())
	if err != nil {
		return nil, fmt.Errorf("decode price amount: %w", err)
	}
	return &domain.PriceRecord{
		ID:             d.ID,
		CoffeeType:     domain.CoffeeType(d.CoffeeType),
		PricePerKg:     amount,
		Currency:       d.Currency,
		IsActive:       d.IsActive,
		CreatedBy:      d.CreatedBy,
		UpdatedAt:      d.UpdatedAt,
		IdempotencyKey: d.IdempotencyKey,
	}, nil
}

// Insert persists a new price record document.
func (r *PriceRepository) Insert(ctx context.Context, rec *domain.PriceRecord) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc, err := toPriceDoc(rec)
	if err != nil {
		return err
	}
	_, err = r.col.InsertOne(ctx, doc)
	return err
}

// FindActiveByType returns the single active record for a coffee type.
func (r *PriceRepository) FindActiveByType(ctx context.Context, t domain.CoffeeType) (*domain.PriceRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc priceDoc
	err := r.col.FindOne(ctx, bson.M{"coffee_type": string(t), "is_active": true}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrPriceNotFound
		}
		return nil, err
	}
	return doc.toDomain()
}

// FindByIdempotencyKey returns the record created with the given key.
func (r *PriceRepository) FindByIdempotencyKey(ctx context.Context, key string) (*domain.PriceRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc priceDoc
	err := r.col.FindOne(ctx, bson.M{"idempotency_key": key}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrPriceNotFound
		}
		return nil, err
	}
	return doc.toDomain()
}

// ListActive returns all active records ordered by coffee_type ascending.
func (r *PriceRepository) ListActive(ctx context.Context) ([]*domain.PriceRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "coffee_type", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{"is_active": true}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var records []*domain.PriceRecord
	for cur.Next(ctx) {
		var doc priceDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		rec, err := doc.toDomain()
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, cur.Err()
}

// SetActive flips the is_active flag on one record.
func (r *PriceRepository) SetActive(ctx context.Context, id string, active bool) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"is_active": active, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrPriceNotFound
	}
	return nil
}

// Delete removes a record. Only the saga's compensation path calls this.
func (r *PriceRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// EnsureIndexes creates the indexes the pricing queries rely on.
func (r *PriceRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "coffee_type", Value: 1}, {Key: "is_active", Value: 1}}},
		{Keys: bson.D{{Key: "idempotency_key", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
