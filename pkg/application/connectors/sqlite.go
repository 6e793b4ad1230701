package connectors

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // sqlite driver
	"github.com/samber/lo"

	"geo_feedback/pkg/logx"
)

// SQLite opens a file or in-memory database. SQLite allows a single writer,
// so the pool is limited to one connection.
type SQLite struct {
	value *sqlx.DB
	Path  string
	init  sync.Once
}

func (s *SQLite) Client(ctx context.Context) *sqlx.DB {
	s.init.Do(func() {
		s.value = lo.Must(sqlx.ConnectContext(ctx, "sqlite3", s.dsn()))
		s.value.SetMaxOpenConns(1)

		logger(ctx).Info("sqlite opened", slog.String("path", s.Path))
	})

	return s.value
}

func (s *SQLite) Ping(ctx context.Context) error {
	return s.Client(ctx).PingContext(ctx)
}

func (s *SQLite) Close(ctx context.Context) {
	if err := s.value.Close(); err != nil {
		logger(ctx).Error("sqliteClient.Close", logx.Error(err))
	}

	logger(ctx).Info("sqlite closed", slog.String("path", s.Path))
}

func (s *SQLite) dsn() string {
	if strings.Contains(s.Path, "?") {
		return s.Path + "&_foreign_keys=on"
	}
	return s.Path + "?_foreign_keys=on"
}
