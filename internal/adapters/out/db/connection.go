// internal/adapters/out/db/connection.go
package db

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq"

	dbcommon "github.com/Spaceman-Collective/kyogen-mint/internal/adapters/out/db/common"
)

// Open は DATABASE_URL（postgres://...）で接続し、疎通確認まで行います。
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open DB: %w", err)
	}

	// Connection pool tuning
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}

	log.Println("[DB] Connected to PostgreSQL successfully")
	return db, nil
}

var receiptsSchema = []string{
	`CREATE TABLE IF NOT EXISTS mint_receipts (
  id          TEXT PRIMARY KEY,
  label       TEXT NOT NULL,
  wallet      TEXT NOT NULL,
  count       INTEGER NOT NULL,
  signatures  TEXT[] NOT NULL DEFAULT '{}',
  mints       TEXT[] NOT NULL DEFAULT '{}',
  status      TEXT NOT NULL,
  reason      TEXT NOT NULL DEFAULT '',
  kind        TEXT NOT NULL DEFAULT '',
  phase       TEXT NOT NULL DEFAULT '',
  created_at  TIMESTAMPTZ NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS mint_receipts_wallet_created_idx ON mint_receipts (wallet, created_at DESC)`,
}

// EnsureSchema は mint_receipts テーブルとインデックスを 1 トランザクションで作成します（存在すれば何もしない）。
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	err := dbcommon.WithTx(ctx, db, func(ctx context.Context) error {
		run := dbcommon.GetRunner(ctx, db)
		for _, stmt := range receiptsSchema {
			if _, err := run.ExecContext(ctx, stmt); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
