// internal/application/mint/ports.go
package mint

import (
	"context"
	"time"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"

	"github.com/Spaceman-Collective/kyogen-mint/internal/application/ledger"
	cmdom "github.com/Spaceman-Collective/kyogen-mint/internal/domain/candymachine"
	guarddom "github.com/Spaceman-Collective/kyogen-mint/internal/domain/guard"
	mintdom "github.com/Spaceman-Collective/kyogen-mint/internal/domain/mint"
	nftdom "github.com/Spaceman-Collective/kyogen-mint/internal/domain/nft"
)

// ============================================================
// Network
// ============================================================

// ChainClient はミント処理が使う Solana RPC の最小インターフェースです。
type ChainClient interface {
	// LatestBlockhash は tx の有効期限の基準となる最新 blockhash を返します。
	LatestBlockhash(ctx context.Context) (string, error)
	// SendTransaction は署名済み tx を送信し、シグネチャを返します。
	SendTransaction(ctx context.Context, tx types.Transaction) (string, error)
	// GetTransaction は確認済み tx を返します。まだ見つからない場合は (nil, nil)。
	GetTransaction(ctx context.Context, signature string) (*mintdom.ConfirmedTransaction, error)
}

// AssetReader は on-chain / off-chain の NFT metadata を解決します。
type AssetReader interface {
	FetchDigitalAsset(ctx context.Context, mint common.PublicKey) (nftdom.DigitalAsset, error)
	FetchJSONMetadata(ctx context.Context, uri string) (nftdom.JSONMetadata, error)
}

// ============================================================
// Wallet / instruction encoding
// ============================================================

// Wallet はユーザーのウォレット（鍵の保管は外部）です。
// SignAllTransactions は N 件を 1 回の承認でまとめて署名します。
type Wallet interface {
	PublicKey() common.PublicKey
	SignAllTransactions(ctx context.Context, txs []types.Transaction) ([]types.Transaction, error)
}

// MintParams は 1 スロット分の mintV2 命令の入力です。
type MintParams struct {
	Machine     cmdom.CandyMachine
	CandyGuard  common.PublicKey
	Group       *string
	Guards      cmdom.GuardSet
	Payer       common.PublicKey
	Asset       common.PublicKey
	OwnedTokens []common.PublicKey
}

// RouteParams は共有 route 命令の入力です。
type RouteParams struct {
	Machine    cmdom.CandyMachine
	CandyGuard common.PublicKey
	Group      *string
	Guards     cmdom.GuardSet
	Payer      common.PublicKey
}

// InstructionFactory はオンチェーンプログラムの命令エンコードを担当します。
type InstructionFactory interface {
	ComputeUnitLimit(units uint32) types.Instruction
	MintInstruction(p MintParams) (types.Instruction, error)
	// RouteInstruction は route が不要なガードセットでは (nil, nil) を返します。
	RouteInstruction(p RouteParams) (*types.Instruction, error)
}

// ============================================================
// State / collaborators
// ============================================================

// MachineView は直近の適格性評価で得た candy machine の状態です。
type MachineView struct {
	Machine     cmdom.CandyMachine
	Guard       cmdom.CandyGuard
	OwnedTokens []common.PublicKey
}

// MachineSource は現在の MachineView を返します。
type MachineSource interface {
	Current(ctx context.Context) (MachineView, error)
}

// GuardLedger は Orchestrator から見た Ledger です（*ledger.Ledger が実装）。
type GuardLedger interface {
	Find(label string) (guarddom.Record, error)
	Update(label string, patch func(*guarddom.Record)) (guarddom.Snapshot, bool)
	Acquire(label string) (ledger.RunToken, error)
	Release(t ledger.RunToken)
}

var _ GuardLedger = (*ledger.Ledger)(nil)

// Severity は通知の種類です。
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityInfo    Severity = "info"
)

// Notification は UI 通知（toast）1 件です。
type Notification struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
	DurationMs  int      `json:"durationMs"`
}

// Notifier は UI 通知のシンクです。
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// RecheckSignal は実行完了後に適格性の再評価を依頼するためのシグナルです。
type RecheckSignal interface {
	RequestRecheck()
}

// RunObserver はメトリクス用のフックです。nil の場合は何もしません。
type RunObserver interface {
	PhaseEntered(label string, phase mintdom.Phase)
	RunFinished(label string, kind mintdom.Kind, d time.Duration)
	PollAttempts(n int)
	AssetFetched(ok bool)
}

// Clock はテスト用に差し替え可能な現在時刻です。
type Clock func() time.Time

// Sleeper は ctx を尊重する待機です。
type Sleeper func(ctx context.Context, d time.Duration) error

// SleepContext は標準の Sleeper 実装です。
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
