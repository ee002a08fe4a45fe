package main

import (
	"context"
	"database/sql"
	"log/slog"

	appservice "github.com/rakesh-tirumalaparapu/zipp/internal/application/service"
	appstore "github.com/rakesh-tirumalaparapu/zipp/internal/application/store"
	docservice "github.com/rakesh-tirumalaparapu/zipp/internal/document/service"
	docstore "github.com/rakesh-tirumalaparapu/zipp/internal/document/store"
	notifservice "github.com/rakesh-tirumalaparapu/zipp/internal/notification/service"
	notifstore "github.com/rakesh-tirumalaparapu/zipp/internal/notification/store"
	"github.com/rakesh-tirumalaparapu/zipp/internal/platform/config"
	"github.com/rakesh-tirumalaparapu/zipp/internal/platform/postgres"
	userservice "github.com/rakesh-tirumalaparapu/zipp/internal/user/service"
	userstore "github.com/rakesh-tirumalaparapu/zipp/internal/user/store"
	audit "github.com/rakesh-tirumalaparapu/zipp/pkg/platform/audit"
	auditmemory "github.com/rakesh-tirumalaparapu/zipp/pkg/platform/audit/store/memory"
	auditpostgres "github.com/rakesh-tirumalaparapu/zipp/pkg/platform/audit/store/postgres"
	txcontext "github.com/rakesh-tirumalaparapu/zipp/pkg/platform/tx"
)

// stores bundles one backend. Postgres when a database URL is configured,
// in-memory otherwise.
type stores struct {
	db            *sql.DB
	tx            txcontext.Runner
	users         userservice.UserStore
	applications  appservice.ApplicationStore
	comments      appservice.CommentStore
	documents     docservice.Store
	notifications notifservice.Store
	audit         audit.Store
}

func openStores(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*stores, error) {
	if cfg.URL == "" {
		logger.Warn("DATABASE_URL not set, using in-memory stores")
		return &stores{
			tx:            txcontext.NewShardedMemoryTx(),
			users:         userstore.NewInMemoryUserStore(),
			applications:  appstore.NewInMemoryApplicationStore(),
			comments:      appstore.NewInMemoryCommentStore(),
			documents:     docstore.NewInMemoryDocumentStore(),
			notifications: notifstore.NewInMemoryNotificationStore(),
			audit:         auditmemory.NewInMemoryStore(),
		}, nil
	}

	db, err := postgres.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := postgres.Migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	logger.Info("connected to postgres", "max_open_conns", cfg.MaxOpenConns)
	return &stores{
		db:            db,
		tx:            txcontext.NewPostgresTx(db),
		users:         userstore.NewPostgres(db),
		applications:  appstore.NewPostgres(db),
		comments:      appstore.NewPostgresComments(db),
		documents:     docstore.NewPostgres(db),
		notifications: notifstore.NewPostgres(db),
		audit:         auditpostgres.New(db),
	}, nil
}

func (s *stores) Ping(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	return s.db.PingContext(ctx)
}

func (s *stores) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
