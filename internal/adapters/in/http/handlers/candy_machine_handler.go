// internal/adapters/in/http/handlers/candy_machine_handler.go
package handlers

import (
	"log"
	"net/http"

	appmint "github.com/Spaceman-Collective/kyogen-mint/internal/application/mint"
)

type CandyMachineHandler struct {
	machines appmint.MachineSource
}

func NewCandyMachineHandler(machines appmint.MachineSource) *CandyMachineHandler {
	return &CandyMachineHandler{machines: machines}
}

type candyMachineResponse struct {
	Address        string   `json:"address"`
	CandyGuard     string   `json:"candyGuard"`
	CollectionMint string   `json:"collectionMint"`
	TokenStandard  uint8    `json:"tokenStandard"`
	ItemsAvailable uint64   `json:"itemsAvailable"`
	ItemsRedeemed  uint64   `json:"itemsRedeemed"`
	Remaining      uint64   `json:"remaining"`
	SoldOut        bool     `json:"soldOut"`
	Groups         []string `json:"groups"`
}

// Get handles GET /candy-machine
func (h *CandyMachineHandler) Get(w http.ResponseWriter, r *http.Request) {
	v, err := h.machines.Current(r.Context())
	if err != nil {
		log.Printf("[candy_machine_handler] current failed: %v", err)
		writeError(w, http.StatusBadGateway, "candy machine unavailable")
		return
	}

	cm := v.Machine
	writeJSON(w, http.StatusOK, candyMachineResponse{
		Address:        cm.Address.ToBase58(),
		CandyGuard:     v.Guard.Address.ToBase58(),
		CollectionMint: cm.CollectionMint.ToBase58(),
		TokenStandard:  uint8(cm.TokenStandard),
		ItemsAvailable: cm.ItemsAvailable,
		ItemsRedeemed:  cm.ItemsRedeemed,
		Remaining:      cm.Remaining(),
		SoldOut:        cm.SoldOut(),
		Groups:         v.Guard.Labels(),
	})
}
