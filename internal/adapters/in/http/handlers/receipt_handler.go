// internal/adapters/in/http/handlers/receipt_handler.go
package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	mintdom "github.com/Spaceman-Collective/kyogen-mint/internal/domain/mint"
)

type ReceiptHandler struct {
	repo          mintdom.ReceiptRepository
	defaultWallet string
}

// NewReceiptHandler の defaultWallet は ?wallet= 省略時に使う署名ウォレットです。
func NewReceiptHandler(repo mintdom.ReceiptRepository, defaultWallet string) *ReceiptHandler {
	return &ReceiptHandler{repo: repo, defaultWallet: strings.TrimSpace(defaultWallet)}
}

// List handles GET /receipts?wallet=&limit=
func (h *ReceiptHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	wallet := strings.TrimSpace(q.Get("wallet"))
	if wallet == "" {
		wallet = h.defaultWallet
	}
	if _, ok := parsePublicKey(wallet); !ok {
		writeError(w, http.StatusBadRequest, "invalid wallet")
		return
	}
	limit := parseIntDefault(q.Get("limit"), 50)

	items, err := h.repo.ListByWallet(r.Context(), wallet, limit)
	if err != nil {
		if errors.Is(err, mintdom.ErrInvalidWallet) {
			writeError(w, http.StatusBadRequest, "invalid wallet")
			return
		}
		log.Printf("[receipt_handler] list failed wallet=%s: %v", wallet, err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"receipts": items})
}
