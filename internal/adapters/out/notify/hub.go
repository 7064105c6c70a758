// internal/adapters/out/notify/hub.go
package notify

import (
	"context"
	"log"
	"sync"

	appmint "github.com/Spaceman-Collective/kyogen-mint/internal/application/mint"
)

const subscriberBuffer = 16

// Hub は通知をログに出し、購読者（websocket 接続など）へ配信します。
// 遅い購読者への配信は取りこぼします（Notify はブロックしない）。
type Hub struct {
	mu     sync.Mutex
	subs   map[int]chan appmint.Notification
	nextID int
}

var _ appmint.Notifier = (*Hub)(nil)

func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan appmint.Notification)}
}

func (h *Hub) Notify(_ context.Context, n appmint.Notification) {
	log.Printf("[notify] %s: %s (%s) duration=%dms", n.Severity, n.Title, n.Description, n.DurationMs)

	h.mu.Lock()
	defer h.mu.Unlock()
	for id, ch := range h.subs {
		select {
		case ch <- n:
		default:
			log.Printf("[notify] WARN: subscriber %d is slow, dropped %q", id, n.Title)
		}
	}
}

// Subscribe は通知を購読します。cancel を呼ぶとチャネルは閉じられます。
func (h *Hub) Subscribe() (<-chan appmint.Notification, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	ch := make(chan appmint.Notification, subscriberBuffer)
	h.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}
