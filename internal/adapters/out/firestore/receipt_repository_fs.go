// internal/adapters/out/firestore/receipt_repository_fs.go
package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	mintdom "github.com/Spaceman-Collective/kyogen-mint/internal/domain/mint"
)

const receiptsCollection = "mintReceipts"

var ErrReceiptConflict = errors.New("firestore: receipt already exists")

// ReceiptRepositoryFS implements mint.ReceiptRepository using Firestore.
type ReceiptRepositoryFS struct {
	Client *firestore.Client
}

var _ mintdom.ReceiptRepository = (*ReceiptRepositoryFS)(nil)

func NewReceiptRepositoryFS(client *firestore.Client) *ReceiptRepositoryFS {
	return &ReceiptRepositoryFS{Client: client}
}

// receiptDoc は Firestore に保存するドキュメント形です。
type receiptDoc struct {
	Label      string    `firestore:"label"`
	Wallet     string    `firestore:"wallet"`
	Count      int       `firestore:"count"`
	Signatures []string  `firestore:"signatures"`
	Mints      []string  `firestore:"mints"`
	Status     string    `firestore:"status"`
	Reason     string    `firestore:"reason,omitempty"`
	Kind       string    `firestore:"kind,omitempty"`
	Phase      string    `firestore:"phase,omitempty"`
	CreatedAt  time.Time `firestore:"createdAt"`
}

// ========================================
// Create
// ========================================
// run token を DocID にして作成（同じ run の二重記録は ErrReceiptConflict）。
func (r *ReceiptRepositoryFS) Create(ctx context.Context, rc mintdom.Receipt) error {
	if r.Client == nil {
		return errors.New("firestore client is nil")
	}
	if err := rc.Validate(); err != nil {
		return err
	}

	doc := receiptDoc{
		Label:      rc.Label,
		Wallet:     strings.TrimSpace(rc.Wallet),
		Count:      rc.Count,
		Signatures: nonNil(rc.Signatures),
		Mints:      nonNil(rc.Mints),
		Status:     string(rc.Status),
		Reason:     rc.Reason,
		Kind:       string(rc.Kind),
		Phase:      string(rc.Phase),
		CreatedAt:  rc.CreatedAt.UTC(),
	}

	_, err := r.Client.Collection(receiptsCollection).Doc(strings.TrimSpace(rc.ID)).Create(ctx, doc)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return ErrReceiptConflict
		}
		return err
	}
	return nil
}

// ========================================
// GetByID
// ========================================
func (r *ReceiptRepositoryFS) GetByID(ctx context.Context, id string) (mintdom.Receipt, error) {
	snap, err := r.Client.Collection(receiptsCollection).Doc(strings.TrimSpace(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return mintdom.Receipt{}, mintdom.ErrReceiptNotFound
		}
		return mintdom.Receipt{}, err
	}

	var d receiptDoc
	if err := snap.DataTo(&d); err != nil {
		return mintdom.Receipt{}, err
	}
	return d.toDomain(snap.Ref.ID), nil
}

// ========================================
// ListByWallet
// ========================================
// 新しい順。wallet + createdAt の複合インデックスが必要です。
func (r *ReceiptRepositoryFS) ListByWallet(ctx context.Context, wallet string, limit int) ([]mintdom.Receipt, error) {
	w := strings.TrimSpace(wallet)
	if w == "" {
		return nil, mintdom.ErrInvalidWallet
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	iter := r.Client.Collection(receiptsCollection).
		Where("wallet", "==", w).
		OrderBy("createdAt", firestore.Desc).
		Limit(limit).
		Documents(ctx)
	defer iter.Stop()

	out := make([]mintdom.Receipt, 0, limit)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var d receiptDoc
		if err := snap.DataTo(&d); err != nil {
			continue
		}
		out = append(out, d.toDomain(snap.Ref.ID))
	}
	return out, nil
}

func (d receiptDoc) toDomain(id string) mintdom.Receipt {
	return mintdom.Receipt{
		ID:         id,
		Label:      d.Label,
		Wallet:     d.Wallet,
		Count:      d.Count,
		Signatures: nonNil(d.Signatures),
		Mints:      nonNil(d.Mints),
		Status:     mintdom.ReceiptStatus(d.Status),
		Reason:     d.Reason,
		Kind:       mintdom.Kind(d.Kind),
		Phase:      mintdom.Phase(d.Phase),
		CreatedAt:  d.CreatedAt.UTC(),
	}
}

func nonNil(xs []string) []string {
	if xs == nil {
		return []string{}
	}
	return xs
}
