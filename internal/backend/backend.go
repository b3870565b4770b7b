// Package backend wires the persistence store, the identity strategy and
// the optional cloud mirror into one runtime, selected once at startup.
package backend

import (
	"context"
	"fmt"

	"gastos/internal/config"
	"gastos/internal/log"
	"gastos/internal/remote"
	"gastos/internal/remote/mongodb"
	"gastos/internal/report"
	"gastos/internal/services"
	"gastos/internal/session"
	"gastos/internal/store"
)

// Backend bundles the assembled components plus a cleanup function that
// releases their resources.
type Backend struct {
	Session  *session.Session
	Expenses *services.ExpenseService
	Reports  *report.Builder
	Cleanup  func(ctx context.Context) error
}

// New builds the runtime for the configured mode. Local mode runs
// entirely against the SQLite store; cloud mode adds the MongoDB identity
// service and expense mirror.
func New(ctx context.Context, cfg *config.Config, logger *log.Logger) (*Backend, error) {
	st, err := store.Open(cfg.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	var (
		auth   session.Authenticator
		mirror remote.ExpenseCollection
		mongo  *mongodb.Client
	)

	switch cfg.DataBackend {
	case "cloud":
		mongo, err = mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			st.Close()
			return nil, fmt.Errorf("connect cloud backend: %w", err)
		}
		auth = session.NewRemote(mongo, st)
		mirror = mongo
		logger.Info("Initialized cloud backend",
			"database", cfg.MongoDatabase, "db_path", cfg.SQLiteDBPath)
	default:
		auth = session.NewLocal(st)
		logger.Info("Initialized local backend", "db_path", cfg.SQLiteDBPath)
	}

	cleanup := func(ctx context.Context) error {
		var errs []error
		if mongo != nil {
			if err := mongo.Close(ctx); err != nil {
				errs = append(errs, fmt.Errorf("mongodb: %w", err))
			}
		}
		if err := st.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
		if len(errs) > 0 {
			return fmt.Errorf("close backend: %v", errs)
		}
		return nil
	}

	return &Backend{
		Session:  session.New(auth),
		Expenses: services.NewExpenseService(st, mirror),
		Reports:  report.NewBuilder(st, mirror),
		Cleanup:  cleanup,
	}, nil
}
