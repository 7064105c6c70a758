package mint

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mintdom "github.com/Spaceman-Collective/kyogen-mint/internal/domain/mint"
)

func signedBatch(t *testing.T, chain *fakeChain, wallet *fakeWallet, count int) (mintdom.Batch, []mintdom.SignedTransaction) {
	t.Helper()
	in := buildInput("OG", count)
	in.Payer = wallet.PublicKey()
	batch, err := NewBuilder(&fakeFactory{}, 0).Build(context.Background(), in)
	require.NoError(t, err)

	signed, err := NewBatchSigner(chain, wallet).Sign(context.Background(), batch)
	require.NoError(t, err)
	return batch, signed
}

func TestBatchSigner_SignsWithAssetAndWallet(t *testing.T) {
	chain := newFakeChain()
	wallet := newFakeWallet()

	batch, signed := signedBatch(t, chain, wallet, 3)
	require.Len(t, signed, 3)
	assert.Equal(t, 1, wallet.calls, "one approval for the whole batch")
	assert.Equal(t, 3, chain.blockhashCalls)

	for i, st := range signed {
		assert.Equal(t, i, st.Slot)
		assert.Equal(t, batch.Assets[i], st.Asset)
		assert.Equal(t, wallet.PublicKey(), st.Transaction.Message.Accounts[0], "wallet is fee payer")
		require.Len(t, st.Transaction.Signatures, 2)
		for _, sig := range st.Transaction.Signatures {
			assert.Len(t, sig, 64)
		}
	}
}

func TestBatchSigner_WalletRejection(t *testing.T) {
	chain := newFakeChain()
	wallet := newFakeWallet()
	wallet.reject = true

	in := buildInput("OG", 1)
	in.Payer = wallet.PublicKey()
	batch, err := NewBuilder(&fakeFactory{}, 0).Build(context.Background(), in)
	require.NoError(t, err)

	_, err = NewBatchSigner(chain, wallet).Sign(context.Background(), batch)
	assert.ErrorIs(t, err, mintdom.ErrWalletRejected)
	assert.Equal(t, mintdom.KindFatal, mintdom.KindOf(err))
}

func TestBatchSigner_EmptyBatch(t *testing.T) {
	_, err := NewBatchSigner(newFakeChain(), newFakeWallet()).Sign(context.Background(), mintdom.Batch{})
	assert.ErrorIs(t, err, mintdom.ErrNoTransactionCreated)
}
