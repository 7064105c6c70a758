// internal/adapters/out/db/receipt_repository_pg.go
package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/lib/pq"

	dbcommon "github.com/Spaceman-Collective/kyogen-mint/internal/adapters/out/db/common"
	mintdom "github.com/Spaceman-Collective/kyogen-mint/internal/domain/mint"
)

var ErrReceiptConflict = errors.New("db: receipt already exists")

type ReceiptRepositoryPG struct {
	DB *sql.DB
}

var _ mintdom.ReceiptRepository = (*ReceiptRepositoryPG)(nil)

func NewReceiptRepositoryPG(db *sql.DB) *ReceiptRepositoryPG {
	return &ReceiptRepositoryPG{DB: db}
}

// ========================================
// ReceiptRepository implementation
// ========================================

func (r *ReceiptRepositoryPG) Create(ctx context.Context, rc mintdom.Receipt) error {
	if err := rc.Validate(); err != nil {
		return err
	}
	run := dbcommon.GetRunner(ctx, r.DB)

	const q = `
INSERT INTO mint_receipts (
  id, label, wallet, count, signatures, mints, status, reason, kind, phase, created_at
) VALUES (
  $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
)`
	_, err := run.ExecContext(ctx, q,
		strings.TrimSpace(rc.ID),
		rc.Label,
		strings.TrimSpace(rc.Wallet),
		rc.Count,
		pq.Array(nonNil(rc.Signatures)),
		pq.Array(nonNil(rc.Mints)),
		string(rc.Status),
		rc.Reason,
		string(rc.Kind),
		string(rc.Phase),
		rc.CreatedAt.UTC(),
	)
	if err != nil {
		if dbcommon.IsUniqueViolation(err) {
			return ErrReceiptConflict
		}
		return err
	}
	return nil
}

func (r *ReceiptRepositoryPG) GetByID(ctx context.Context, id string) (mintdom.Receipt, error) {
	run := dbcommon.GetRunner(ctx, r.DB)
	const q = `
SELECT
  id, label, wallet, count, signatures, mints, status, reason, kind, phase, created_at
FROM mint_receipts
WHERE id = $1
LIMIT 1`
	rc, err := scanReceipt(run.QueryRowContext(ctx, q, strings.TrimSpace(id)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return mintdom.Receipt{}, mintdom.ErrReceiptNotFound
		}
		return mintdom.Receipt{}, err
	}
	return rc, nil
}

func (r *ReceiptRepositoryPG) ListByWallet(ctx context.Context, wallet string, limit int) ([]mintdom.Receipt, error) {
	w := strings.TrimSpace(wallet)
	if w == "" {
		return nil, mintdom.ErrInvalidWallet
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	run := dbcommon.GetRunner(ctx, r.DB)
	const q = `
SELECT
  id, label, wallet, count, signatures, mints, status, reason, kind, phase, created_at
FROM mint_receipts
WHERE wallet = $1
ORDER BY created_at DESC, id ASC
LIMIT $2`
	rows, err := run.QueryContext(ctx, q, w, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]mintdom.Receipt, 0, limit)
	for rows.Next() {
		rc, err := scanReceipt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rc)
	}
	return out, rows.Err()
}

func scanReceipt(s dbcommon.RowScanner) (mintdom.Receipt, error) {
	var (
		id, label, wallet        string
		count                    int
		signatures, mints        []string
		status, reason, kind, ph string
		createdAt                time.Time
	)
	if err := s.Scan(
		&id, &label, &wallet, &count, pq.Array(&signatures), pq.Array(&mints),
		&status, &reason, &kind, &ph, &createdAt,
	); err != nil {
		return mintdom.Receipt{}, err
	}
	return mintdom.Receipt{
		ID:         id,
		Label:      label,
		Wallet:     wallet,
		Count:      count,
		Signatures: nonNil(signatures),
		Mints:      nonNil(mints),
		Status:     mintdom.ReceiptStatus(status),
		Reason:     reason,
		Kind:       mintdom.Kind(kind),
		Phase:      mintdom.Phase(ph),
		CreatedAt:  createdAt.UTC(),
	}, nil
}

func nonNil(xs []string) []string {
	if xs == nil {
		return []string{}
	}
	return xs
}
