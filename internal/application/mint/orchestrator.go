// internal/application/mint/orchestrator.go
package mint

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/blocto/solana-go-sdk/common"

	"github.com/Spaceman-Collective/kyogen-mint/internal/application/ledger"
	guarddom "github.com/Spaceman-Collective/kyogen-mint/internal/domain/guard"
	mintdom "github.com/Spaceman-Collective/kyogen-mint/internal/domain/mint"
)

// 通知文言
var (
	successNotification = Notification{
		Title:       "Mint successful!",
		Description: "You can find your NFT in your wallet.",
		Severity:    SeveritySuccess,
		DurationMs:  90000,
	}
	failureNotification = Notification{
		Title:       "Your mint failed!",
		Description: "Please try again.",
		Severity:    SeverityError,
		DurationMs:  6000,
	}
)

// Deps は Orchestrator の依存一式です。
// Notifier / Recheck / Receipts / Observer は任意（nil 可）。
type Deps struct {
	Ledger    GuardLedger
	Machines  MachineSource
	Wallet    Wallet
	Builder   *Builder
	Signer    *BatchSigner
	Submitter *Submitter
	Poller    *Poller
	Fetcher   *Fetcher

	Notifier Notifier
	Recheck  RecheckSignal
	Receipts mintdom.ReceiptRepository
	Observer RunObserver
	Now      Clock
}

// ============================================================
// Orchestrator 本体
// ============================================================

// Orchestrator はミント 1 回分を
//
//	Building → Signing → Submitting → Polling → Verifying → Fetching → Done
//
// の順に進め、各フェーズで Ledger の minting / loadingText を更新します。
// Done はどの経路で終わっても必ず通り、minting=false・loadingText クリア・再評価シグナル・ロック解放を行います。
type Orchestrator struct {
	d Deps
}

func NewOrchestrator(d Deps) *Orchestrator {
	if d.Now == nil {
		d.Now = time.Now
	}
	return &Orchestrator{d: d}
}

type run struct {
	token ledger.RunToken
	label string
	count int
	phase mintdom.Phase

	signatures []string
}

// StartMint は UI 層から呼ばれるエントリポイントです。
func (o *Orchestrator) StartMint(ctx context.Context, label string, count int) (mintdom.Outcome, error) {
	return o.Run(ctx, mintdom.BatchRequest{Label: label, Count: count})
}

// Run は 1 回のミントを実行します。
//
// ラベルが Ledger に無い / バッチサイズ不正 / 同ラベル実行中 の場合は
// フェーズに入る前に（ネットワークに触れず、通知も出さずに）エラーを返します。
func (o *Orchestrator) Run(ctx context.Context, req mintdom.BatchRequest) (mintdom.Outcome, error) {
	rec, err := o.d.Ledger.Find(req.Label)
	if err != nil {
		log.Printf("[mint.orchestrator] guard not found label=%q", req.Label)
		return mintdom.Outcome{}, err
	}
	if err := req.Validate(); err != nil {
		return mintdom.Outcome{}, err
	}

	token, err := o.d.Ledger.Acquire(req.Label)
	if err != nil {
		log.Printf("[mint.orchestrator] rejected label=%s: %v", req.Label, err)
		return mintdom.Outcome{}, err
	}

	r := &run{token: token, label: req.Label, count: req.Count, phase: mintdom.PhaseIdle}
	started := o.d.Now()
	defer o.done(r)

	out, err := o.execute(ctx, r, rec, req)
	if err != nil {
		runErr := &mintdom.RunError{RunID: token.ID, Label: req.Label, Phase: r.phase, Err: err}
		log.Printf("[mint.orchestrator] minting failed because of %v", runErr)

		o.notify(ctx, failureNotification)
		o.record(ctx, r, nil, runErr)
		o.finished(r.label, mintdom.KindOf(err), started)
		return mintdom.Outcome{}, runErr
	}

	log.Printf(
		"[mint.orchestrator] mint done run=%s label=%s assets=%d/%d failures=%d",
		token.ID, req.Label, len(out.Assets), req.Count, len(out.Failures),
	)
	o.notify(ctx, successNotification)
	o.record(ctx, r, &out, nil)
	o.finished(r.label, mintdom.KindNone, started)
	return out, nil
}

func (o *Orchestrator) execute(ctx context.Context, r *run, rec guarddom.Record, req mintdom.BatchRequest) (out mintdom.Outcome, err error) {
	// ポート実装の panic も失敗として Done へ流す
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic in %s: %v", r.phase, p)
		}
	}()

	// 1) Building
	o.enter(r, mintdom.PhaseBuilding)
	view, err := o.d.Machines.Current(ctx)
	if err != nil {
		return mintdom.Outcome{}, fmt.Errorf("%w: %v", mintdom.ErrMachineUnavailable, err)
	}
	owned := req.OwnedTokens
	if owned == nil {
		owned = view.OwnedTokens
	}
	batch, err := o.d.Builder.Build(ctx, BuildInput{
		Record:      rec,
		Machine:     view.Machine,
		CandyGuard:  view.Guard,
		Payer:       o.d.Wallet.PublicKey(),
		OwnedTokens: owned,
		Count:       req.Count,
	})
	if err != nil {
		return mintdom.Outcome{}, err
	}

	// 2) Signing
	o.enter(r, mintdom.PhaseSigning)
	signed, err := o.d.Signer.Sign(ctx, batch)
	if err != nil {
		return mintdom.Outcome{}, err
	}

	// 3) Submitting
	o.enter(r, mintdom.PhaseSubmitting)
	sub, err := o.d.Submitter.Submit(ctx, signed)
	r.signatures = sub.Signatures
	if err != nil {
		return mintdom.Outcome{}, err
	}

	// 4) Polling
	o.enter(r, mintdom.PhasePolling)
	confirmed := make([]*mintdom.ConfirmedTransaction, 0, len(sub.Tracked))
	for _, sig := range sub.Tracked {
		tx, attempts, err := o.d.Poller.Await(ctx, sig)
		if o.d.Observer != nil {
			o.d.Observer.PollAttempts(attempts)
		}
		if err != nil {
			return mintdom.Outcome{}, err
		}
		if tx.Signature == "" {
			tx.Signature = sig
		}
		confirmed = append(confirmed, tx)
	}

	// 5) Verifying
	o.enter(r, mintdom.PhaseVerifying)
	for _, tx := range confirmed {
		if err := VerifyConfirmed(tx); err != nil {
			return mintdom.Outcome{}, err
		}
	}

	// 6) Fetching
	o.enter(r, mintdom.PhaseFetching)
	assets, failures := o.d.Fetcher.FetchAll(ctx, batch.Assets)

	return mintdom.Outcome{
		RunID:      r.token.ID,
		Label:      r.label,
		Signatures: sub.Signatures,
		Assets:     assets,
		Failures:   failures,
	}, nil
}

// enter はフェーズ遷移を Ledger に反映します（minting=true + loadingText）。
func (o *Orchestrator) enter(r *run, p mintdom.Phase) {
	r.phase = p
	text := p.LoadingText()
	o.d.Ledger.Update(r.label, func(g *guarddom.Record) {
		g.Minting = true
		g.LoadingText = text
	})
	if o.d.Observer != nil {
		o.d.Observer.PhaseEntered(r.label, p)
	}
}

// done は Done 状態の後始末です。成否にかかわらず必ず呼ばれます。
func (o *Orchestrator) done(r *run) {
	r.phase = mintdom.PhaseDone
	o.d.Ledger.Update(r.label, func(g *guarddom.Record) {
		g.Minting = false
		g.LoadingText = ""
	})
	if o.d.Recheck != nil {
		o.d.Recheck.RequestRecheck()
	}
	o.d.Ledger.Release(r.token)
	if o.d.Observer != nil {
		o.d.Observer.PhaseEntered(r.label, mintdom.PhaseDone)
	}
}

func (o *Orchestrator) notify(ctx context.Context, n Notification) {
	if o.d.Notifier != nil {
		o.d.Notifier.Notify(ctx, n)
	}
}

func (o *Orchestrator) finished(label string, kind mintdom.Kind, started time.Time) {
	if o.d.Observer != nil {
		o.d.Observer.RunFinished(label, kind, o.d.Now().Sub(started))
	}
}

// record は Receipt を保存します。保存失敗はログのみ（ミント結果には影響させない）。
func (o *Orchestrator) record(ctx context.Context, r *run, out *mintdom.Outcome, runErr *mintdom.RunError) {
	if o.d.Receipts == nil {
		return
	}

	rc := mintdom.Receipt{
		ID:         r.token.ID,
		Label:      r.label,
		Wallet:     o.walletAddress(),
		Count:      r.count,
		Signatures: r.signatures,
		Mints:      []string{},
		Status:     mintdom.ReceiptSucceeded,
		CreatedAt:  o.d.Now().UTC(),
	}
	if out != nil {
		for _, a := range out.Assets {
			rc.Mints = append(rc.Mints, a.Mint)
		}
	}
	if runErr != nil {
		rc.Status = mintdom.ReceiptFailed
		rc.Reason = runErr.Err.Error()
		rc.Kind = mintdom.KindOf(runErr)
		rc.Phase = runErr.Phase
	}
	if rc.Signatures == nil {
		rc.Signatures = []string{}
	}

	if err := o.d.Receipts.Create(ctx, rc); err != nil {
		log.Printf("[mint.orchestrator] WARN: receipt not recorded run=%s: %v", r.token.ID, err)
	}
}

func (o *Orchestrator) walletAddress() string {
	if o.d.Wallet == nil {
		return ""
	}
	var zero common.PublicKey
	pk := o.d.Wallet.PublicKey()
	if pk == zero {
		return ""
	}
	return pk.ToBase58()
}
