package mint

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mintdom "github.com/Spaceman-Collective/kyogen-mint/internal/domain/mint"
)

func TestSubmitter_SendsInOrderAndTracksLast(t *testing.T) {
	chain := newFakeChain()
	_, signed := signedBatch(t, chain, newFakeWallet(), 3)

	sub, err := NewSubmitter(chain, nil).Submit(context.Background(), signed)
	require.NoError(t, err)
	assert.Equal(t, []string{"sig-1", "sig-2", "sig-3"}, sub.Signatures)
	assert.Equal(t, []string{"sig-3"}, sub.Tracked)
	assert.Equal(t, "sig-3", sub.Last())
	require.Len(t, chain.sent, 3)
	for i := range signed {
		assert.Equal(t, signed[i].Transaction.Signatures[0], chain.sent[i].Signatures[0])
	}
}

func TestSubmitter_EveryPolicy(t *testing.T) {
	chain := newFakeChain()
	_, signed := signedBatch(t, chain, newFakeWallet(), 2)

	sub, err := NewSubmitter(chain, SubmissionPolicyByName("every")).Submit(context.Background(), signed)
	require.NoError(t, err)
	assert.Equal(t, []string{"sig-1", "sig-2"}, sub.Tracked)
}

func TestSubmitter_StopsAtFirstSendError(t *testing.T) {
	chain := newFakeChain()
	_, signed := signedBatch(t, chain, newFakeWallet(), 3)
	chain.sendErrAt = 2

	sub, err := NewSubmitter(chain, nil).Submit(context.Background(), signed)
	assert.ErrorIs(t, err, mintdom.ErrSubmitFailed)
	assert.Equal(t, []string{"sig-1"}, sub.Signatures)
	assert.Len(t, chain.sent, 1)
}

func TestSubmitter_Empty(t *testing.T) {
	_, err := NewSubmitter(newFakeChain(), nil).Submit(context.Background(), nil)
	assert.ErrorIs(t, err, mintdom.ErrNoTransactionCreated)
}

func TestSubmissionPolicyByName(t *testing.T) {
	assert.Equal(t, "last", SubmissionPolicyByName("").Name())
	assert.Equal(t, "every", SubmissionPolicyByName("ALL").Name())
	assert.Nil(t, LastSignaturePolicy{}.Track(nil))
}
