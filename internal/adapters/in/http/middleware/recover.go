// internal/adapters/in/http/middleware/recover.go
package middleware

import (
	"log"
	"net/http"
	"runtime/debug"
)

// 500 応答の本文（handlers の errorBody と同じ形）
const panicBody = `{"error":"internal server error","kind":"internal"}`

// Recover はハンドラ内の panic を 500 に変換します。
// Orchestrator 側の panic は RunError になるので、ここに届くのはハンドラ自身の不具合だけです。
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			log.Printf("[recover] PANIC %s %s: %v\n%s", r.Method, r.URL.Path, rec, debug.Stack())

			// CORS ヘッダは外側のミドルウェアで付与済み
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(panicBody))
		}()

		next.ServeHTTP(w, r)
	})
}
