// internal/adapters/in/http/handlers/mint_handler.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	guarddom "github.com/Spaceman-Collective/kyogen-mint/internal/domain/guard"
	mintdom "github.com/Spaceman-Collective/kyogen-mint/internal/domain/mint"
)

// MintRunner は Orchestrator のうちハンドラが使う部分です。
type MintRunner interface {
	StartMint(ctx context.Context, label string, count int) (mintdom.Outcome, error)
}

// ミント 1 回の上限時間（送信後のポーリングを含む）
const defaultMintTimeout = 3 * time.Minute

type MintHandler struct {
	runner  MintRunner
	timeout time.Duration
}

func NewMintHandler(runner MintRunner) *MintHandler {
	return &MintHandler{runner: runner, timeout: defaultMintTimeout}
}

type mintRequest struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Mint handles POST /mint
//
//	200: Outcome
//	400: 不正なリクエスト / バッチサイズ
//	404: 未知のラベル
//	409: 同ラベルで実行中
//	422: 実行失敗 {error, kind, phase}
func (h *MintHandler) Mint(w http.ResponseWriter, r *http.Request) {
	var req mintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	label := strings.TrimSpace(req.Label)
	if label == "" {
		label = guarddom.DefaultLabel
	}
	if req.Count == 0 {
		req.Count = 1
	}

	// クライアント切断でミントを中断させない（署名済み tx は送信まで進める）
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), h.timeout)
	defer cancel()

	log.Printf("[mint_handler] start label=%s count=%d", label, req.Count)
	out, err := h.runner.StartMint(ctx, label, req.Count)
	if err != nil {
		writeMintError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func writeMintError(w http.ResponseWriter, err error) {
	var runErr *mintdom.RunError
	switch {
	case errors.As(err, &runErr):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{
			Error: runErr.Err.Error(),
			Kind:  string(mintdom.KindOf(runErr)),
			Phase: string(runErr.Phase),
		})
	case errors.Is(err, guarddom.ErrGuardNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error(), Kind: string(mintdom.KindInternal)})
	case errors.Is(err, mintdom.ErrRunInProgress):
		writeJSON(w, http.StatusConflict, errorBody{Error: err.Error(), Kind: string(mintdom.KindRejected)})
	case errors.Is(err, mintdom.ErrInvalidBatchSize):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error(), Kind: string(mintdom.KindRejected)})
	default:
		log.Printf("[mint_handler] unexpected error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
