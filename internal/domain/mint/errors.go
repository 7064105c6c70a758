// internal/domain/mint/errors.go
package mint

import (
	"errors"
	"fmt"

	"github.com/Spaceman-Collective/kyogen-mint/internal/domain/guard"
)

// ------------------------------------------------------
// Errors
// ------------------------------------------------------

var (
	ErrNoGuardDefined       = errors.New("mint: no guard defined for label")
	ErrNoTransactionCreated = errors.New("mint: no transaction was created")
	ErrTransactionNotFound  = errors.New("mint: transaction not found on chain")
	ErrBotTaxTriggered      = errors.New("mint: candy guard bot tax triggered")
	ErrNftFetchFailed       = errors.New("mint: nft could not be fetched")

	ErrInvalidBatchSize   = errors.New("mint: batch size must be >= 1")
	ErrRunInProgress      = errors.New("mint: a run is already in progress for this label")
	ErrSubmitFailed       = errors.New("mint: send transaction failed")
	ErrTransactionFailed  = errors.New("mint: transaction failed on chain")
	ErrWalletRejected     = errors.New("mint: wallet did not sign")
	ErrMachineUnavailable = errors.New("mint: candy machine state unavailable")
)

// Kind はエラーの扱い区分です。
type Kind string

const (
	KindNone        Kind = ""
	KindFatal       Kind = "fatal"
	KindRetryable   Kind = "retryable"
	KindRecoverable Kind = "recoverable"
	KindRejected    Kind = "rejected"
	KindInternal    Kind = "internal"
)

// KindOf はエラーを区分に分類します。
//   - TransactionNotFound はタイムアウトであり、tx が後から着地する可能性がある → retryable
//   - NftFetchFailed はアセット単位で回復可能 → recoverable
//   - RunInProgress / InvalidBatchSize は開始前に拒否 → rejected
//   - GuardNotFound は Ledger 整合性エラー → internal
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrTransactionNotFound):
		return KindRetryable
	case errors.Is(err, ErrNftFetchFailed):
		return KindRecoverable
	case errors.Is(err, ErrRunInProgress), errors.Is(err, ErrInvalidBatchSize):
		return KindRejected
	case errors.Is(err, guard.ErrGuardNotFound):
		return KindInternal
	default:
		return KindFatal
	}
}

// RunError はオーケストレータ境界で捕捉したエラーに、発生フェーズを付けたものです。
type RunError struct {
	RunID string
	Label string
	Phase Phase
	Err   error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("mint run %s (label=%s) failed in %s: %v", e.RunID, e.Label, e.Phase, e.Err)
}

func (e *RunError) Unwrap() error { return e.Err }

// PhaseOf は RunError からフェーズを取り出します（RunError でなければ Idle）。
func PhaseOf(err error) Phase {
	var re *RunError
	if errors.As(err, &re) {
		return re.Phase
	}
	return PhaseIdle
}
