// internal/domain/mint/repository_port.go
package mint

import "context"

// ------------------------------------------------------
// Repository Port for Receipt (mintReceipts)
// ------------------------------------------------------
//
// Firestore / Postgres / memory の実装は adapters/out 側に置き、
// アプリケーション層からはこのインターフェースのみを参照します。
type ReceiptRepository interface {
	// Create は Receipt を保存します。同じ ID が既にあればエラー。
	Create(ctx context.Context, r Receipt) error

	// ListByWallet はウォレット単位で新しい順に最大 limit 件を返します。
	ListByWallet(ctx context.Context, wallet string, limit int) ([]Receipt, error)

	// GetByID は 1 件取得します。無ければ ErrReceiptNotFound。
	GetByID(ctx context.Context, id string) (Receipt, error)
}
