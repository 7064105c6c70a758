package mint

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Spaceman-Collective/kyogen-mint/internal/domain/guard"
)

func TestKindOf(t *testing.T) {
	cases := []struct {
		err  error
		want Kind
	}{
		{nil, KindNone},
		{ErrTransactionNotFound, KindRetryable},
		{fmt.Errorf("wrap: %w", ErrNftFetchFailed), KindRecoverable},
		{ErrRunInProgress, KindRejected},
		{ErrInvalidBatchSize, KindRejected},
		{guard.ErrGuardNotFound, KindInternal},
		{ErrBotTaxTriggered, KindFatal},
		{ErrNoTransactionCreated, KindFatal},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, KindOf(c.err), "err=%v", c.err)
	}
}

func TestRunError_UnwrapAndPhase(t *testing.T) {
	err := &RunError{RunID: "r1", Label: "OG", Phase: PhasePolling, Err: ErrTransactionNotFound}
	wrapped := fmt.Errorf("outer: %w", err)

	assert.ErrorIs(t, wrapped, ErrTransactionNotFound)
	assert.Equal(t, KindRetryable, KindOf(wrapped))
	assert.Equal(t, PhasePolling, PhaseOf(wrapped))
	assert.Equal(t, PhaseIdle, PhaseOf(ErrTransactionNotFound))
	assert.Contains(t, err.Error(), "failed in polling")
}

func TestPhase_LoadingTextAndInFlight(t *testing.T) {
	assert.Equal(t, "finalizing transaction", PhasePolling.LoadingText())
	assert.Equal(t, "Fetching your NFT", PhaseFetching.LoadingText())
	assert.Empty(t, PhaseIdle.LoadingText())
	assert.Empty(t, PhaseDone.LoadingText())

	for _, p := range []Phase{PhaseBuilding, PhaseSigning, PhaseSubmitting, PhasePolling, PhaseVerifying, PhaseFetching} {
		assert.True(t, p.InFlight(), p)
		assert.NotEmpty(t, p.LoadingText(), p)
	}
	assert.False(t, PhaseIdle.InFlight())
	assert.False(t, PhaseDone.InFlight())
}

func TestBatchRequest_Validate(t *testing.T) {
	assert.ErrorIs(t, BatchRequest{Count: 0}.Validate(), ErrInvalidBatchSize)
	assert.NoError(t, BatchRequest{Count: 1}.Validate())
}

func TestReceipt_Validate(t *testing.T) {
	ok := Receipt{ID: "r1", Wallet: "w", CreatedAt: time.Now()}
	assert.NoError(t, ok.Validate())

	noID := ok
	noID.ID = " "
	assert.ErrorIs(t, noID.Validate(), ErrInvalidReceiptID)

	noWallet := ok
	noWallet.Wallet = ""
	assert.ErrorIs(t, noWallet.Validate(), ErrInvalidWallet)

	noTime := ok
	noTime.CreatedAt = time.Time{}
	assert.Error(t, noTime.Validate())
}
