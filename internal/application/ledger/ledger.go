// internal/application/ledger/ledger.go
package ledger

import (
	"log"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	guarddom "github.com/Spaceman-Collective/kyogen-mint/internal/domain/guard"
	mintdom "github.com/Spaceman-Collective/kyogen-mint/internal/domain/mint"
)

// RunToken は 1 回のミント実行が保持するラベルロックです。
type RunToken struct {
	ID    string
	Label string
}

// Ledger はガードごとの適格性レコードを保持する observable なコンテナです。
//
// 更新は常に「コピーに patch を適用 → レコード一覧ごと差し替え」で行い、
// 公開済みの Snapshot を in-place で書き換えることはありません。
// Ledger 自身はタイマーや非同期処理を持ちません。
type Ledger struct {
	mu   sync.Mutex
	snap atomic.Pointer[guarddom.Snapshot]

	subs   map[int]chan guarddom.Snapshot
	nextID int

	// label -> run token id
	runs map[string]string
}

// New は初期レコードで Ledger を生成します（ラベル重複は先勝ちで除去）。
func New(records []guarddom.Record) *Ledger {
	l := &Ledger{
		subs: make(map[int]chan guarddom.Snapshot),
		runs: make(map[string]string),
	}
	l.snap.Store(&guarddom.Snapshot{Version: 1, Records: guarddom.Dedupe(records)})
	return l
}

// Snapshot は現在コミットされている Snapshot を返します（ロック不要）。
func (l *Ledger) Snapshot() guarddom.Snapshot {
	return *l.snap.Load()
}

// Find はラベルでレコードを探します。
func (l *Ledger) Find(label string) (guarddom.Record, error) {
	r, ok := l.Snapshot().Find(label)
	if !ok {
		return guarddom.Record{}, guarddom.ErrGuardNotFound
	}
	return r, nil
}

// Update はラベルのレコードに patch を適用し、新しい Snapshot をコミットします。
// 未知のラベルはログを出して何もしません（Ledger が並行してリセットされた場合を許容）。
func (l *Ledger) Update(label string, patch func(*guarddom.Record)) (guarddom.Snapshot, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	cur := l.snap.Load()
	idx := -1
	for i, r := range cur.Records {
		if r.Label == label {
			idx = i
			break
		}
	}
	if idx == -1 {
		log.Printf("[ledger] update skipped: guard not found label=%q", label)
		return *cur, false
	}

	records := make([]guarddom.Record, len(cur.Records))
	copy(records, cur.Records)
	next := records[idx]
	if patch != nil {
		patch(&next)
	}
	next.Label = label // ラベルは識別子なので patch で変えさせない
	records[idx] = next

	return l.commitLocked(records), true
}

// Replace はルール評価エンジンの再評価結果でレコード一覧を丸ごと差し替えます。
// ロック保持中（実行中）のラベルは minting / loadingText を引き継ぎます。
func (l *Ledger) Replace(records []guarddom.Record) guarddom.Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	cur := l.snap.Load()
	next := guarddom.Dedupe(records)
	for i := range next {
		if _, running := l.runs[next[i].Label]; !running {
			continue
		}
		if prev, ok := cur.Find(next[i].Label); ok {
			next[i].Minting = prev.Minting
			next[i].LoadingText = prev.LoadingText
		}
	}
	return l.commitLocked(next)
}

func (l *Ledger) commitLocked(records []guarddom.Record) guarddom.Snapshot {
	cur := l.snap.Load()
	s := &guarddom.Snapshot{Version: cur.Version + 1, Records: records}
	l.snap.Store(s)

	for _, ch := range l.subs {
		publishLatest(ch, *s)
	}
	return *s
}

// publishLatest はバッファ 1 のチャネルに最新値だけを残して送ります。
func publishLatest(ch chan guarddom.Snapshot, s guarddom.Snapshot) {
	for {
		select {
		case ch <- s:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

// Subscribe は Snapshot の更新を購読します。
// 購読直後に現在の Snapshot が 1 件届きます。遅い購読者には最新値だけが残ります。
func (l *Ledger) Subscribe() (<-chan guarddom.Snapshot, func()) {
	l.mu.Lock()
	defer l.mu.Unlock()

	id := l.nextID
	l.nextID++
	ch := make(chan guarddom.Snapshot, 1)
	ch <- *l.snap.Load()
	l.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			delete(l.subs, id)
		})
	}
	return ch, cancel
}

// Acquire はラベル単位の実行ロックを取得します。
// 既に実行中なら ErrRunInProgress。
func (l *Ledger) Acquire(label string) (RunToken, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.runs[label]; ok {
		return RunToken{}, mintdom.ErrRunInProgress
	}
	t := RunToken{ID: uuid.NewString(), Label: label}
	l.runs[label] = t.ID
	return t, nil
}

// Release はロックを解放します。トークンが一致しない場合は何もしません。
func (l *Ledger) Release(t RunToken) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if id, ok := l.runs[t.Label]; ok && id == t.ID {
		delete(l.runs, t.Label)
	}
}

// Running はラベルが実行ロック中かどうかを返します。
func (l *Ledger) Running(label string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.runs[label]
	return ok
}
