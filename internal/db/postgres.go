package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/divinecoid/sabkabazaar/internal/model"
)

// DB owns the pgx pool and the gorm handle layered on top of it.
type DB struct {
	Pool *pgxpool.Pool
	Gorm *gorm.DB
}

type Options struct {
	URL      string
	MaxConns int32
	LogLevel logger.LogLevel
}

func Connect(ctx context.Context, opts Options) (*DB, error) {
	poolConfig, err := pgxpool.ParseConfig(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}
	if opts.MaxConns > 0 {
		poolConfig.MaxConns = opts.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	gdb, err := Open(postgres.New(postgres.Config{Conn: stdlib.OpenDBFromPool(pool)}), opts.LogLevel)
	if err != nil {
		pool.Close()
		return nil, err
	}

	return &DB{Pool: pool, Gorm: gdb}, nil
}

// Open wraps a gorm dialector with the settings every caller relies on:
// driver errors are translated to gorm.ErrDuplicatedKey and friends.
func Open(dialector gorm.Dialector, level logger.LogLevel) (*gorm.DB, error) {
	if level == 0 {
		level = logger.Warn
	}
	gdb, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open orm: %w", err)
	}
	return gdb, nil
}

// Migrate creates or updates the schema for every model.
func Migrate(ctx context.Context, gdb *gorm.DB) error {
	if err := gdb.WithContext(ctx).AutoMigrate(model.All()...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (d *DB) Ping(ctx context.Context) error {
	return d.Pool.Ping(ctx)
}

func (d *DB) Close() {
	if sqlDB, err := d.Gorm.DB(); err == nil {
		_ = sqlDB.Close()
	}
	d.Pool.Close()
}
