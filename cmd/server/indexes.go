package main

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"

	mongodb "github.com/kapehub/coffee-pricing-api/internal/infrastructure/db/mongo"
)

// ensureIndexes creates the indexes every repository relies on. Index builds
// are idempotent, so this runs unconditionally at startup.
func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	if err := mongodb.NewUserRepository(db).EnsureIndexes(ctx); err != nil {
		return err
	}
	if err := mongodb.NewPriceRepository(db).EnsureIndexes(ctx); err != nil {
		return err
	}
	return mongodb.NewPriceHistoryRepository(db).EnsureIndexes(ctx)
}
