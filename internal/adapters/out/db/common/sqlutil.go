// internal/adapters/out/db/common/sqlutil.go
package common

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// PostgreSQL の unique_violation
const pgUniqueViolation pq.ErrorCode = "23505"

// IsUniqueViolation は主キー / 一意制約の重複挿入かどうかを判定します。
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation
}

// RowScanner は scanReceipt が *sql.Row と *sql.Rows の両方を受けるための型です。
type RowScanner interface {
	Scan(dest ...any) error
}

// Runner は *sql.DB / *sql.Tx のどちらでもクエリを流せるようにします。
type Runner interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type TxKey struct{}

func CtxWithTx(ctx context.Context, tx *sql.Tx) context.Context {
	return context.WithValue(ctx, TxKey{}, tx)
}

// GetRunner は ctx に載っている Tx を優先します。
func GetRunner(ctx context.Context, db *sql.DB) Runner {
	if tx, ok := ctx.Value(TxKey{}).(*sql.Tx); ok && tx != nil {
		return tx
	}
	return db
}

// WithTx は fn を 1 トランザクションで実行します。fn がエラーを返せばロールバック。
func WithTx(ctx context.Context, db *sql.DB, fn func(ctx context.Context) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(CtxWithTx(ctx, tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
