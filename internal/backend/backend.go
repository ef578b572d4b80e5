// Package backend opens the record store and vector index named by DATABASE_URL.
// postgres:// URLs get pgx with pgvector; sqlite://<path> keeps both in one SQLite file.
package backend

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"codeberg.org/marketwire/server/internal/logger"
	"codeberg.org/marketwire/server/internal/storage"
	"codeberg.org/marketwire/server/internal/vectorindex"
)

const sqlitePrefix = "sqlite://"

type Kind string

const (
	KindPostgres Kind = "postgres"
	KindSQLite   Kind = "sqlite"
)

type Backend struct {
	Kind  Kind
	Store storage.Database
	Index vectorindex.Index
}

func (b *Backend) Close() {
	b.Store.Close()
}

// connects, creates any missing tables and returns the ready stores;
// dimension sizes the pgvector column and is ignored for SQLite
func Open(ctx context.Context, databaseURL string, dimension int) (*Backend, error) {
	if path, ok := strings.CutPrefix(databaseURL, sqlitePrefix); ok {
		return openSQLite(ctx, path)
	}

	return openPostgres(ctx, databaseURL, dimension)
}

func openPostgres(ctx context.Context, databaseURL string, dimension int) (*Backend, error) {
	client, err := storage.NewClient(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	if err := client.EnsureSchema(ctx); err != nil {
		client.Close()
		return nil, err
	}

	index := vectorindex.NewPostgresIndex(client.Pool())
	if err := index.EnsureSchema(ctx, dimension); err != nil {
		client.Close()
		return nil, err
	}

	logger.Info("connected to postgres", "embedding_dimension", dimension)

	return &Backend{Kind: KindPostgres, Store: client, Index: index}, nil
}

func openSQLite(ctx context.Context, path string) (*Backend, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite database path is empty")
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}

	// one writer at a time; SQLite rejects concurrent writes with SQLITE_BUSY
	sqlDB.SetMaxOpenConns(1)

	store := storage.NewSQLiteStore(db)
	if err := store.EnsureSchema(ctx); err != nil {
		store.Close()
		return nil, err
	}

	index := vectorindex.NewSQLiteIndex(db)
	if err := index.EnsureSchema(ctx); err != nil {
		store.Close()
		return nil, err
	}

	logger.Info("opened sqlite database", "path", path)

	return &Backend{Kind: KindSQLite, Store: store, Index: index}, nil
}
