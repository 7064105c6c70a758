package httpin

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Spaceman-Collective/kyogen-mint/internal/adapters/in/http/handlers"
	"github.com/Spaceman-Collective/kyogen-mint/internal/application/ledger"
	guarddom "github.com/Spaceman-Collective/kyogen-mint/internal/domain/guard"
)

func serve(h http.Handler, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestRouter_HealthzOnly(t *testing.T) {
	r := NewRouter(RouterDeps{Metrics: http.NotFoundHandler()})

	rec := serve(r, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	// 依存が無いルートはマウントされない
	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/guards").Code)
	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodPost, "/mint").Code)
}

func TestRouter_CORSPreflight(t *testing.T) {
	r := NewRouter(RouterDeps{AllowOrigin: "https://mint.kyogen.gg"})

	rec := serve(r, http.MethodOptions, "/mint")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://mint.kyogen.gg", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestRouter_GuardRoutes(t *testing.T) {
	l := ledger.New([]guarddom.Record{{Label: "OG", Allowed: true}})
	r := NewRouter(RouterDeps{Guards: handlers.NewGuardHandler(l, nil, nil)})

	rec := serve(r, http.MethodGet, "/guards/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"label":"OG"`)

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/guards/selected").Code)
}

func TestRecoverMiddleware(t *testing.T) {
	r := NewRouter(RouterDeps{Metrics: http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})})

	rec := serve(r, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error","kind":"internal"}`, rec.Body.String())
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
