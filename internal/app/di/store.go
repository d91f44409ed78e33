package di

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	authadapters "rental_backend/internal/feature/auth/adapters"
	"rental_backend/internal/feature/auth/usecase"
	"rental_backend/internal/platform/config"
	platformdb "rental_backend/internal/platform/db"
	platformmongo "rental_backend/internal/platform/mongo"
)

// Store bundles the Credential Store with the handle it runs on.
type Store struct {
	Users usecase.UserRepository
	// Backend is "mongodb" or "postgres".
	Backend string

	ping  func(ctx context.Context) error
	close func(ctx context.Context) error
}

// Ping checks the backing database for readiness probes.
func (s *Store) Ping(ctx context.Context) error {
	return s.ping(ctx)
}

// Close releases the database handle.
func (s *Store) Close(ctx context.Context) error {
	return s.close(ctx)
}

// NewStore opens the Credential Store. MONGODB_URI selects MongoDB;
// otherwise Postgres is used through GORM.
func NewStore(ctx context.Context, cfg *config.Config) (*Store, error) {
	if cfg.MongoURI != "" {
		client, err := platformmongo.Connect(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		users := authadapters.NewUserMongo(client.Database(cfg.MongoDatabase))
		if err := users.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(ctx)
			return nil, fmt.Errorf("failed to ensure user indexes: %w", err)
		}
		return &Store{
			Users:   users,
			Backend: "mongodb",
			ping:    func(ctx context.Context) error { return platformmongo.Ping(ctx, client) },
			close:   client.Disconnect,
		}, nil
	}

	db, err := platformdb.Open(cfg.DB)
	if err != nil {
		return nil, err
	}
	return NewGormStore(db), nil
}

// NewGormStore wraps an open GORM handle.
func NewGormStore(db *gorm.DB) *Store {
	return &Store{
		Users:   authadapters.NewUserGorm(db),
		Backend: "postgres",
		ping:    func(ctx context.Context) error { return platformdb.Ping(ctx, db) },
		close:   func(context.Context) error { return platformdb.Close(db) },
	}
}
