// cmd/api/main.go
package main

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	httpin "github.com/Spaceman-Collective/kyogen-mint/internal/adapters/in/http"
	"github.com/Spaceman-Collective/kyogen-mint/internal/platform/di"
)

func main() {
	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// ─────────────────────────────────────────────────────────────
	// Log output: LOG_FILE があればローテーション付きファイル + stdout
	// ─────────────────────────────────────────────────────────────
	if path := os.Getenv("LOG_FILE"); path != "" {
		lj := &lumberjack.Logger{
			Filename:   path,
			MaxSize:    50, // MB
			MaxBackups: 5,
			MaxAge:     14, // days
		}
		defer lj.Close()
		log.SetOutput(io.MultiWriter(os.Stdout, lj))
		log.Printf("[boot] log output = stdout + %s", path)
	}

	// ─────────────────────────────────────────────────────────────
	// DI container; 失敗しても /healthz だけは返す
	// ─────────────────────────────────────────────────────────────
	var (
		handler http.Handler
		port    string
	)
	if cont, err := di.NewContainer(ctx); err != nil {
		log.Printf("[boot] WARN: di init failed: %v (serving /healthz only)", err)
		handler = httpin.NewRouter(httpin.RouterDeps{})
	} else {
		defer cont.Close()
		port = cont.Config.Port

		// 初回評価のあと、再評価依頼を待ち受ける
		if _, err := cont.Refresher.Refresh(ctx); err != nil {
			log.Printf("[boot] WARN: initial eligibility refresh failed: %v", err)
		}
		go cont.Refresher.Run(ctx, cont.Config.RecheckInterval)

		handler = httpin.NewRouter(cont.RouterDeps())
	}

	// ─────────────────────────────────────────────────────────────
	// Port resolution: config → env:PORT → 8080
	// ─────────────────────────────────────────────────────────────
	if port == "" {
		if p := os.Getenv("PORT"); p != "" {
			port = p
		} else {
			port = "8080"
		}
	}

	// Read/WriteTimeout は付けない（/mint はポーリング完了まで待つ、/guards/ws は常時接続）
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// ─────────────────────────────────────────────────────────────
	// Graceful shutdown
	// ─────────────────────────────────────────────────────────────
	idleConnsClosed := make(chan struct{})
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
		sig := <-c
		log.Printf("[boot] received signal: %v; shutting down...", sig)
		stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("[boot] server shutdown error: %v", err)
		}
		close(idleConnsClosed)
	}()

	log.Printf("[boot] listening on :%s", port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("[boot] server error: %v", err)
	}

	<-idleConnsClosed
	log.Printf("[boot] server stopped")
}
