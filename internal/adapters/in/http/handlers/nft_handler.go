// internal/adapters/in/http/handlers/nft_handler.go
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/go-chi/chi/v5"
	"github.com/mr-tron/base58"

	mintdom "github.com/Spaceman-Collective/kyogen-mint/internal/domain/mint"
)

// NFTViewer は単体の NFT 表示ユースケースです。
type NFTViewer interface {
	Show(ctx context.Context, mint common.PublicKey) (mintdom.MintedAsset, error)
}

type NFTHandler struct {
	viewer NFTViewer
}

func NewNFTHandler(viewer NFTViewer) *NFTHandler {
	return &NFTHandler{viewer: viewer}
}

type nftResponse struct {
	mintdom.MintedAsset
	DisplayImage string `json:"displayImage,omitempty"`
}

// Get handles GET /nfts/{mint}
func (h *NFTHandler) Get(w http.ResponseWriter, r *http.Request) {
	mint, ok := parsePublicKey(chi.URLParam(r, "mint"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid mint address")
		return
	}

	a, err := h.viewer.Show(r.Context(), mint)
	if err != nil {
		if errors.Is(err, mintdom.ErrNftFetchFailed) {
			writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error(), Kind: string(mintdom.KindRecoverable)})
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	resp := nftResponse{MintedAsset: a}
	if a.OffChainMetadata != nil {
		resp.DisplayImage = a.OffChainMetadata.DisplayImage()
	}
	writeJSON(w, http.StatusOK, resp)
}

// parsePublicKey は base58 の 32 バイト公開鍵だけを受け付けます。
func parsePublicKey(s string) (common.PublicKey, bool) {
	b, err := base58.Decode(strings.TrimSpace(s))
	if err != nil || len(b) != 32 {
		return common.PublicKey{}, false
	}
	return common.PublicKeyFromBytes(b), true
}
