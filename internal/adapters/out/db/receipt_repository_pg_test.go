package db

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dbcommon "github.com/Spaceman-Collective/kyogen-mint/internal/adapters/out/db/common"
	mintdom "github.com/Spaceman-Collective/kyogen-mint/internal/domain/mint"
)

// KYOGEN_TEST_DATABASE_URL が無ければスキップ（ローカル / CI の Postgres 用）
func openTestDB(t *testing.T) *ReceiptRepositoryPG {
	t.Helper()
	dsn := os.Getenv("KYOGEN_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("KYOGEN_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	db, err := Open(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, EnsureSchema(ctx, db))
	return NewReceiptRepositoryPG(db)
}

func TestReceiptRepositoryPG_RoundTrip(t *testing.T) {
	repo := openTestDB(t)
	ctx := context.Background()
	wallet := "W-" + uuid.NewString()
	base := time.Now().UTC().Truncate(time.Millisecond)

	first := mintdom.Receipt{
		ID: uuid.NewString(), Label: "OG", Wallet: wallet, Count: 2,
		Signatures: []string{"s1", "s2"}, Mints: []string{"m1"},
		Status: mintdom.ReceiptSucceeded, CreatedAt: base,
	}
	second := mintdom.Receipt{
		ID: uuid.NewString(), Label: "OG", Wallet: wallet, Count: 1,
		Status: mintdom.ReceiptFailed, Reason: "bot tax", Kind: mintdom.KindFatal, Phase: mintdom.PhaseVerifying,
		CreatedAt: base.Add(time.Second),
	}
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))
	assert.ErrorIs(t, repo.Create(ctx, first), ErrReceiptConflict)

	got, err := repo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Signatures, got.Signatures)
	assert.True(t, first.CreatedAt.Equal(got.CreatedAt))

	list, err := repo.ListByWallet(ctx, wallet, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Empty(t, list[0].Mints)
	assert.Equal(t, mintdom.PhaseVerifying, list[0].Phase)

	_, err = repo.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, mintdom.ErrReceiptNotFound)
}

func TestReceiptRepositoryPG_TxRollback(t *testing.T) {
	repo := openTestDB(t)
	ctx := context.Background()

	tx, err := repo.DB.BeginTx(ctx, nil)
	require.NoError(t, err)

	rc := mintdom.Receipt{ID: uuid.NewString(), Label: "WL", Wallet: "W-tx", Status: mintdom.ReceiptSucceeded, CreatedAt: time.Now()}
	require.NoError(t, repo.Create(dbcommon.CtxWithTx(ctx, tx), rc))
	require.NoError(t, tx.Rollback())

	_, err = repo.GetByID(ctx, rc.ID)
	assert.ErrorIs(t, err, mintdom.ErrReceiptNotFound)
}
