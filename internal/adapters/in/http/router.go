// internal/adapters/in/http/router.go
package httpin

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Spaceman-Collective/kyogen-mint/internal/adapters/in/http/handlers"
	"github.com/Spaceman-Collective/kyogen-mint/internal/adapters/in/http/middleware"
)

// RouterDeps collects all handlers injected from the container.
// nil のハンドラはマウントしません。
type RouterDeps struct {
	Mint         *handlers.MintHandler
	Guards       *handlers.GuardHandler
	CandyMachine *handlers.CandyMachineHandler
	NFTs         *handlers.NFTHandler
	Receipts     *handlers.ReceiptHandler
	Eligibility  *handlers.EligibilityHandler

	// Metrics が nil なら promhttp.Handler()（デフォルトレジストリ）
	Metrics     http.Handler
	AllowOrigin string
}

// NewRouter sets up HTTP routing.
// チェーン順: CORS（外側）→ Recover → handler
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.CORS(deps.AllowOrigin))
	r.Use(middleware.Recover)

	// Health check (always on)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	metrics := deps.Metrics
	if metrics == nil {
		metrics = promhttp.Handler()
	}
	r.Handle("/metrics", metrics)

	if deps.CandyMachine != nil {
		r.Get("/candy-machine", deps.CandyMachine.Get)
	}
	if deps.Guards != nil {
		r.Route("/guards", func(gr chi.Router) {
			gr.Get("/", deps.Guards.List)
			gr.Get("/selected", deps.Guards.Selected)
			gr.Get("/ws", deps.Guards.Stream)
		})
	}
	if deps.Mint != nil {
		r.Post("/mint", deps.Mint.Mint)
	}
	if deps.NFTs != nil {
		r.Get("/nfts/{mint}", deps.NFTs.Get)
	}
	if deps.Receipts != nil {
		r.Get("/receipts", deps.Receipts.List)
	}
	if deps.Eligibility != nil {
		r.Post("/eligibility/recheck", deps.Eligibility.Recheck)
	}

	return r
}
