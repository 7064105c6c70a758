// internal/domain/mint/phase.go
package mint

// Phase はオーケストレータの状態です。
//
//	Idle → Building → Signing → Submitting → Polling → Verifying → Fetching → Done
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseBuilding   Phase = "building"
	PhaseSigning    Phase = "signing"
	PhaseSubmitting Phase = "submitting"
	PhasePolling    Phase = "polling"
	PhaseVerifying  Phase = "verifying"
	PhaseFetching   Phase = "fetching"
	PhaseDone       Phase = "done"
)

// LoadingText はフェーズごとにユーザーへ表示する文言です。
// Idle / Done は空（= 表示しない）。
func (p Phase) LoadingText() string {
	switch p {
	case PhaseBuilding:
		return "preparing transactions"
	case PhaseSigning:
		return "waiting for wallet approval"
	case PhaseSubmitting:
		return "sending transactions"
	case PhasePolling:
		return "finalizing transaction"
	case PhaseVerifying:
		return "verifying transaction"
	case PhaseFetching:
		return "Fetching your NFT"
	default:
		return ""
	}
}

// InFlight は minting=true であるべきフェーズかどうか。
func (p Phase) InFlight() bool {
	switch p {
	case PhaseBuilding, PhaseSigning, PhaseSubmitting, PhasePolling, PhaseVerifying, PhaseFetching:
		return true
	default:
		return false
	}
}
