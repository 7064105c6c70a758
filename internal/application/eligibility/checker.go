// internal/application/eligibility/checker.go
package eligibility

import (
	"time"

	cmdom "github.com/Spaceman-Collective/kyogen-mint/internal/domain/candymachine"
	guarddom "github.com/Spaceman-Collective/kyogen-mint/internal/domain/guard"
)

// 拒否理由
const (
	ReasonOK            = "ok"
	ReasonSoldOut       = "sold out"
	ReasonNotStarted    = "not started"
	ReasonEnded         = "ended"
	ReasonGroupRequired = "group required"
	ReasonMissingToken  = "missing gate token"
	ReasonNotListed     = "not on allow list"
)

// Inputs は 1 回の適格性評価の入力です。
type Inputs struct {
	Machine  cmdom.CandyMachine
	Guard    cmdom.CandyGuard
	Holdings []cmdom.Holding
	Now      time.Time
}

// Checker はラベルごとの適格性レコードを評価します。
type Checker interface {
	Evaluate(in Inputs) []guarddom.Record
}

// WindowChecker は受付期間・残数・tokenGate・allowList 証明の有無だけを見る簡易評価器です。
// solPayment の残高や mintLimit の消化数は見ません（オンチェーンで弾かれる）。
type WindowChecker struct{}

func (WindowChecker) Evaluate(in Inputs) []guarddom.Record {
	now := in.Now.Unix()
	labels := in.Guard.Labels()
	out := make([]guarddom.Record, 0, len(labels))

	for _, label := range labels {
		guards, _ := in.Guard.GuardsFor(label)
		start, end := guards.Window()

		rec := guarddom.Record{
			Label:     label,
			StartTime: start,
			EndTime:   end,
		}
		rec.Allowed, rec.Reason = evaluate(in, label, guards, rec, now)
		out = append(out, rec)
	}
	return out
}

func evaluate(in Inputs, label string, guards cmdom.GuardSet, rec guarddom.Record, now int64) (bool, string) {
	// グループがある candy guard では group 指定なしのミントはできない
	if label == guarddom.DefaultLabel && len(in.Guard.Groups) > 0 {
		return false, ReasonGroupRequired
	}
	if in.Machine.SoldOut() {
		return false, ReasonSoldOut
	}
	if !rec.WithinWindow(now) {
		if rec.StartTime != 0 && now < rec.StartTime {
			return false, ReasonNotStarted
		}
		return false, ReasonEnded
	}
	if tg := guards.TokenGate; tg != nil {
		if !cmdom.HoldsAtLeast(in.Holdings, tg.Mint, tg.Amount) {
			return false, ReasonMissingToken
		}
	}
	if al := guards.AllowList; al != nil && len(al.Proof) == 0 {
		return false, ReasonNotListed
	}
	return true, ReasonOK
}
