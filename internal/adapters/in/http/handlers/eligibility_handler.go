// internal/adapters/in/http/handlers/eligibility_handler.go
package handlers

import (
	"net/http"

	appmint "github.com/Spaceman-Collective/kyogen-mint/internal/application/mint"
)

type EligibilityHandler struct {
	recheck appmint.RecheckSignal
}

func NewEligibilityHandler(recheck appmint.RecheckSignal) *EligibilityHandler {
	return &EligibilityHandler{recheck: recheck}
}

// Recheck handles POST /eligibility/recheck
// 評価自体は非同期（結果は /guards/ws に流れる）。
func (h *EligibilityHandler) Recheck(w http.ResponseWriter, _ *http.Request) {
	h.recheck.RequestRecheck()
	writeJSON(w, http.StatusAccepted, map[string]bool{"requested": true})
}
