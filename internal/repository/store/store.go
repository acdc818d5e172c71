// Package store opens the repository backend named in the configuration.
package store

import (
	"context"
	"fmt"

	"github.com/jwalitptl/clinic-api/internal/config"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/internal/repository/memory"
	"github.com/jwalitptl/clinic-api/internal/repository/mongodb"
	"github.com/jwalitptl/clinic-api/internal/repository/postgres"
)

// Open connects to the configured backend. The returned close function
// releases its connections and is never nil.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*repository.Repositories, func(), error) {
	switch cfg.Driver {
	case "postgres":
		db, err := postgres.NewDB(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return postgres.NewRepositories(db), func() { _ = db.Close() }, nil

	case "mongo":
		client, err := mongodb.Connect(ctx, cfg.Mongo)
		if err != nil {
			return nil, nil, err
		}
		db := client.Database(cfg.Mongo.Database)
		if err := mongodb.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, err
		}
		return mongodb.NewRepositories(db), func() { _ = client.Disconnect(context.Background()) }, nil

	case "memory":
		return memory.NewRepositories(), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}
