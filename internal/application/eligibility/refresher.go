// internal/application/eligibility/refresher.go
package eligibility

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/blocto/solana-go-sdk/common"

	appmint "github.com/Spaceman-Collective/kyogen-mint/internal/application/mint"
	cmdom "github.com/Spaceman-Collective/kyogen-mint/internal/domain/candymachine"
	guarddom "github.com/Spaceman-Collective/kyogen-mint/internal/domain/guard"
)

// MachineReader は candy machine アカウントを読むポートです。
type MachineReader interface {
	ReadCandyMachine(ctx context.Context, address common.PublicKey) (cmdom.CandyMachine, error)
}

// HoldingsReader はウォレットの SPL トークン保有を読むポートです。
type HoldingsReader interface {
	ListHoldings(ctx context.Context, owner common.PublicKey) ([]cmdom.Holding, error)
}

// LedgerReplacer は評価結果を Ledger に丸ごと反映します。
type LedgerReplacer interface {
	Replace(records []guarddom.Record) guarddom.Snapshot
}

// Config は Refresher の固定入力です。
type Config struct {
	MachineAddress common.PublicKey
	Guard          cmdom.CandyGuard
	Owner          common.PublicKey
}

// Refresher は再評価シグナルを受けて candy machine / 保有トークンを読み直し、
// Checker の結果で Ledger を差し替えます。
// 直近の評価に使った MachineView を Orchestrator に提供します（MachineSource）。
type Refresher struct {
	cfg      Config
	machines MachineReader
	holdings HoldingsReader
	checker  Checker
	ledger   LedgerReplacer
	now      func() time.Time

	mu   sync.RWMutex
	view *appmint.MachineView

	pending atomic.Bool
	wake    chan struct{}
}

var (
	_ appmint.MachineSource = (*Refresher)(nil)
	_ appmint.RecheckSignal = (*Refresher)(nil)
)

func NewRefresher(cfg Config, machines MachineReader, holdings HoldingsReader, checker Checker, ledger LedgerReplacer) *Refresher {
	if checker == nil {
		checker = WindowChecker{}
	}
	return &Refresher{
		cfg:      cfg,
		machines: machines,
		holdings: holdings,
		checker:  checker,
		ledger:   ledger,
		now:      time.Now,
		wake:     make(chan struct{}, 1),
	}
}

// WithClock は現在時刻を差し替えます（テスト用）。
func (r *Refresher) WithClock(now func() time.Time) *Refresher {
	if now != nil {
		r.now = now
	}
	return r
}

// RequestRecheck は再評価を依頼します。ブロックしません（重複依頼は 1 回にまとまる）。
func (r *Refresher) RequestRecheck() {
	r.pending.Store(true)
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

// Pending は未処理の再評価依頼があるかどうか。
func (r *Refresher) Pending() bool {
	return r.pending.Load()
}

// Current は直近の MachineView を返します。まだ評価していなければ 1 回評価します。
func (r *Refresher) Current(ctx context.Context) (appmint.MachineView, error) {
	r.mu.RLock()
	v := r.view
	r.mu.RUnlock()
	if v != nil {
		return *v, nil
	}

	if _, err := r.Refresh(ctx); err != nil {
		return appmint.MachineView{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.view == nil {
		return appmint.MachineView{}, errors.New("eligibility: machine view unavailable")
	}
	return *r.view, nil
}

// Refresh は 1 回分の再評価を行い、差し替え後の Snapshot を返します。
//
// 保有トークンの取得に失敗した場合は「保有なし」として評価を続けます
// （tokenGate 付きのガードだけが拒否側に倒れる）。
func (r *Refresher) Refresh(ctx context.Context) (guarddom.Snapshot, error) {
	r.pending.Store(false)

	cm, err := r.machines.ReadCandyMachine(ctx, r.cfg.MachineAddress)
	if err != nil {
		return guarddom.Snapshot{}, fmt.Errorf("eligibility: read candy machine: %w", err)
	}

	var holdings []cmdom.Holding
	if r.holdings != nil {
		holdings, err = r.holdings.ListHoldings(ctx, r.cfg.Owner)
		if err != nil {
			log.Printf("[eligibility] WARN: list holdings failed owner=%s: %v", r.cfg.Owner.ToBase58(), err)
			holdings = nil
		}
	}

	records := r.checker.Evaluate(Inputs{
		Machine:  cm,
		Guard:    r.cfg.Guard,
		Holdings: holdings,
		Now:      r.now(),
	})
	snap := r.ledger.Replace(records)

	owned := make([]common.PublicKey, 0, len(holdings))
	for _, h := range holdings {
		if h.Amount > 0 {
			owned = append(owned, h.Mint)
		}
	}

	r.mu.Lock()
	r.view = &appmint.MachineView{Machine: cm, Guard: r.cfg.Guard, OwnedTokens: owned}
	r.mu.Unlock()

	log.Printf(
		"[eligibility] refreshed version=%d guards=%d remaining=%d anyAllowed=%t",
		snap.Version, len(snap.Records), cm.Remaining(), snap.AnyAllowed(),
	)
	return snap, nil
}

// Run は ctx が終わるまで再評価依頼を処理します。
// interval > 0 の場合は依頼が無くても定期的に再評価します。
func (r *Refresher) Run(ctx context.Context, interval time.Duration) {
	var tick <-chan time.Time
	if interval > 0 {
		t := time.NewTicker(interval)
		defer t.Stop()
		tick = t.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.wake:
		case <-tick:
		}
		if _, err := r.Refresh(ctx); err != nil {
			log.Printf("[eligibility] refresh failed: %v", err)
		}
	}
}
