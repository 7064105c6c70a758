// internal/adapters/out/memory/receipt_repository_mem.go
package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	mintdom "github.com/Spaceman-Collective/kyogen-mint/internal/domain/mint"
)

var ErrReceiptConflict = errors.New("memory: receipt already exists")

// ReceiptRepository はプロセス内の Receipt ストアです（RECEIPT_STORE=memory / テスト用）。
type ReceiptRepository struct {
	mu   sync.RWMutex
	byID map[string]mintdom.Receipt
}

var _ mintdom.ReceiptRepository = (*ReceiptRepository)(nil)

func NewReceiptRepository() *ReceiptRepository {
	return &ReceiptRepository{byID: make(map[string]mintdom.Receipt)}
}

func (r *ReceiptRepository) Create(_ context.Context, rc mintdom.Receipt) error {
	if err := rc.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	id := strings.TrimSpace(rc.ID)
	if _, ok := r.byID[id]; ok {
		return ErrReceiptConflict
	}
	rc.ID = id
	rc.Signatures = append([]string(nil), rc.Signatures...)
	rc.Mints = append([]string(nil), rc.Mints...)
	r.byID[id] = rc
	return nil
}

func (r *ReceiptRepository) GetByID(_ context.Context, id string) (mintdom.Receipt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rc, ok := r.byID[strings.TrimSpace(id)]
	if !ok {
		return mintdom.Receipt{}, mintdom.ErrReceiptNotFound
	}
	return rc, nil
}

// ListByWallet は新しい順に返します。
func (r *ReceiptRepository) ListByWallet(_ context.Context, wallet string, limit int) ([]mintdom.Receipt, error) {
	w := strings.TrimSpace(wallet)
	if w == "" {
		return nil, mintdom.ErrInvalidWallet
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	r.mu.RLock()
	out := make([]mintdom.Receipt, 0)
	for _, rc := range r.byID {
		if rc.Wallet == w {
			out = append(out, rc)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
