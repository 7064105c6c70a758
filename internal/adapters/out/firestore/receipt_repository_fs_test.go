package firestore

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mintdom "github.com/Spaceman-Collective/kyogen-mint/internal/domain/mint"
)

// FIRESTORE_EMULATOR_HOST が無ければスキップ（gcloud emulators firestore start）
func newEmulatorRepo(t *testing.T) *ReceiptRepositoryFS {
	t.Helper()
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}
	client, err := NewClient(context.Background(), "kyogen-mint-test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return NewReceiptRepositoryFS(client)
}

func TestReceiptRepositoryFS_RoundTrip(t *testing.T) {
	repo := newEmulatorRepo(t)
	ctx := context.Background()
	wallet := "W-" + uuid.NewString()
	base := time.Now().UTC().Truncate(time.Millisecond)

	older := mintdom.Receipt{
		ID: uuid.NewString(), Label: "OG", Wallet: wallet, Count: 1,
		Signatures: []string{"s1"}, Status: mintdom.ReceiptSucceeded, CreatedAt: base,
	}
	newer := mintdom.Receipt{
		ID: uuid.NewString(), Label: "OG", Wallet: wallet, Count: 1,
		Status: mintdom.ReceiptFailed, Kind: mintdom.KindRetryable, CreatedAt: base.Add(time.Minute),
	}
	require.NoError(t, repo.Create(ctx, older))
	require.NoError(t, repo.Create(ctx, newer))
	assert.ErrorIs(t, repo.Create(ctx, older), ErrReceiptConflict)

	got, err := repo.GetByID(ctx, older.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"s1"}, got.Signatures)
	assert.Equal(t, []string{}, got.Mints)

	list, err := repo.ListByWallet(ctx, wallet, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)
	assert.Equal(t, mintdom.KindRetryable, list[0].Kind)

	_, err = repo.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, mintdom.ErrReceiptNotFound)
}

func TestReceiptRepositoryFS_InvalidWallet(t *testing.T) {
	// wallet 検証はクライアントに触れない
	repo := NewReceiptRepositoryFS(nil)
	_, err := repo.ListByWallet(context.Background(), " ", 10)
	assert.ErrorIs(t, err, mintdom.ErrInvalidWallet)
}
