package database

import (
	"context"
	"fmt"

	"user-auth-service/internal/config"
	"user-auth-service/internal/domain/user"
	"user-auth-service/internal/infrastructure/database/mongodb"
	"user-auth-service/internal/infrastructure/database/postgres"
)

// Store is an open connection to the user-record store.
type Store interface {
	Users() user.Repository
	Health(ctx context.Context) error
	Close(ctx context.Context) error
}

// Open connects to the store selected by cfg.Database.Driver.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.Database.Driver {
	case config.DriverMongo:
		db, err := mongodb.NewDB(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return db, nil
	case config.DriverPostgres:
		db, err := postgres.NewDB(cfg)
		if err != nil {
			return nil, err
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}
