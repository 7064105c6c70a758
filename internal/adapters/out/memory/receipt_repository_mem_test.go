package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mintdom "github.com/Spaceman-Collective/kyogen-mint/internal/domain/mint"
)

func receipt(id, wallet string, at time.Time) mintdom.Receipt {
	return mintdom.Receipt{
		ID:         id,
		Label:      "OG",
		Wallet:     wallet,
		Count:      1,
		Signatures: []string{"sig-" + id},
		Status:     mintdom.ReceiptSucceeded,
		CreatedAt:  at,
	}
}

func TestReceiptRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewReceiptRepository()
	now := time.Now()

	rc := receipt(" run-1 ", "W1", now)
	require.NoError(t, repo.Create(ctx, rc))

	// 保存後に呼び出し側のスライスを書き換えても影響しない
	rc.Signatures[0] = "mutated"

	got, err := repo.GetByID(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "run-1", got.ID)
	assert.Equal(t, []string{"sig- run-1 "}, got.Signatures)

	assert.ErrorIs(t, repo.Create(ctx, receipt("run-1", "W1", now)), ErrReceiptConflict)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, mintdom.ErrReceiptNotFound)
}

func TestReceiptRepository_CreateValidates(t *testing.T) {
	repo := NewReceiptRepository()
	err := repo.Create(context.Background(), receipt("", "W1", time.Now()))
	assert.ErrorIs(t, err, mintdom.ErrInvalidReceiptID)
}

func TestReceiptRepository_ListByWallet(t *testing.T) {
	ctx := context.Background()
	repo := NewReceiptRepository()
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, receipt("a", "W1", base)))
	require.NoError(t, repo.Create(ctx, receipt("b", "W1", base.Add(2*time.Minute))))
	require.NoError(t, repo.Create(ctx, receipt("c", "W1", base.Add(time.Minute))))
	require.NoError(t, repo.Create(ctx, receipt("d", "W2", base.Add(time.Hour))))

	got, err := repo.ListByWallet(ctx, "W1", 0)
	require.NoError(t, err)
	ids := make([]string, 0, len(got))
	for _, rc := range got {
		ids = append(ids, rc.ID)
	}
	assert.Equal(t, []string{"b", "c", "a"}, ids)

	got, err = repo.ListByWallet(ctx, "W1", 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = repo.ListByWallet(ctx, "nobody", 10)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = repo.ListByWallet(ctx, "  ", 10)
	assert.ErrorIs(t, err, mintdom.ErrInvalidWallet)
}

func TestReceiptRepository_ListDefaultLimit(t *testing.T) {
	ctx := context.Background()
	repo := NewReceiptRepository()
	base := time.Now()
	for i := 0; i < 60; i++ {
		require.NoError(t, repo.Create(ctx, receipt(fmt.Sprintf("r%02d", i), "W1", base.Add(time.Duration(i)*time.Second))))
	}

	got, err := repo.ListByWallet(ctx, "W1", 500)
	require.NoError(t, err)
	assert.Len(t, got, 50)
	assert.Equal(t, "r59", got[0].ID)
}
