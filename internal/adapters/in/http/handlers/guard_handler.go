// internal/adapters/in/http/handlers/guard_handler.go
package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"nhooyr.io/websocket"

	appmint "github.com/Spaceman-Collective/kyogen-mint/internal/application/mint"
	guarddom "github.com/Spaceman-Collective/kyogen-mint/internal/domain/guard"
)

const wsWriteTimeout = 10 * time.Second

// SnapshotSource は Ledger の読み取り側です。
type SnapshotSource interface {
	Snapshot() guarddom.Snapshot
	Subscribe() (<-chan guarddom.Snapshot, func())
}

// NotificationSource は通知の購読元です（nil 可）。
type NotificationSource interface {
	Subscribe() (<-chan appmint.Notification, func())
}

type GuardHandler struct {
	ledger SnapshotSource
	policy guarddom.SelectionPolicy
	notes  NotificationSource
}

func NewGuardHandler(ledger SnapshotSource, policy guarddom.SelectionPolicy, notes NotificationSource) *GuardHandler {
	if policy == nil {
		policy = guarddom.PreferNonDefault{}
	}
	return &GuardHandler{ledger: ledger, policy: policy, notes: notes}
}

// List handles GET /guards
func (h *GuardHandler) List(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.ledger.Snapshot())
}

type selectedResponse struct {
	Policy string          `json:"policy"`
	Guard  guarddom.Record `json:"guard"`
}

// Selected handles GET /guards/selected
func (h *GuardHandler) Selected(w http.ResponseWriter, _ *http.Request) {
	rec, ok := h.policy.Select(h.ledger.Snapshot().Records)
	if !ok {
		writeError(w, http.StatusNotFound, "no guard available")
		return
	}
	writeJSON(w, http.StatusOK, selectedResponse{Policy: h.policy.Name(), Guard: rec})
}

// streamEvent は /guards/ws で送るメッセージです。
type streamEvent struct {
	Type         string                `json:"type"` // "snapshot" | "notification"
	Snapshot     *guarddom.Snapshot    `json:"snapshot,omitempty"`
	Notification *appmint.Notification `json:"notification,omitempty"`
}

// Stream handles GET /guards/ws
// 接続直後に現在の Snapshot、以降は更新と通知を流します。
func (h *GuardHandler) Stream(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: []string{"*"}})
	if err != nil {
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "stream closed")

	// クライアントからの受信は読み捨て（close frame の処理のため）
	ctx := conn.CloseRead(r.Context())

	if err := h.stream(ctx, conn); err != nil {
		if status := websocket.CloseStatus(err); status == -1 {
			log.Printf("[guard_handler] stream error: %v", err)
			_ = conn.Close(websocket.StatusInternalError, "stream error")
		}
	}
}

func (h *GuardHandler) stream(ctx context.Context, conn *websocket.Conn) error {
	snaps, cancelSnaps := h.ledger.Subscribe()
	defer cancelSnaps()

	var notes <-chan appmint.Notification
	if h.notes != nil {
		ch, cancelNotes := h.notes.Subscribe()
		defer cancelNotes()
		notes = ch
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case s := <-snaps:
			snap := s
			if err := writeEvent(ctx, conn, streamEvent{Type: "snapshot", Snapshot: &snap}); err != nil {
				return err
			}
		case n, ok := <-notes:
			if !ok {
				notes = nil
				continue
			}
			note := n
			if err := writeEvent(ctx, conn, streamEvent{Type: "notification", Notification: &note}); err != nil {
				return err
			}
		}
	}
}

func writeEvent(ctx context.Context, conn *websocket.Conn, ev streamEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	writeCtx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
	defer cancel()
	return conn.Write(writeCtx, websocket.MessageText, data)
}
