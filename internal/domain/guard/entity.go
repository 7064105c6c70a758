// internal/domain/guard/entity.go
package guard

import (
	"errors"
	"strings"
)

// DefaultLabel は「グループ指定なし」を表す特別なラベルです。
// オンチェーンの mintV2 では group=None として扱われます。
const DefaultLabel = "default"

// ------------------------------------------------------
// Entity: Record (ガード 1 件分の適格性レコード)
// ------------------------------------------------------
//
// - label       : ラベル（Ledger 内で一意）
// - allowed     : ミント可能か
// - minting     : このラベルでミント処理が進行中か
// - loadingText : 進行中フェーズの表示用テキスト（空 = 表示なし）
// - reason      : allowed / denied の理由
// - startTime   : 受付開始 (unix 秒, 0 = 指定なし)
// - endTime     : 受付終了 (unix 秒, 0 = 指定なし)
type Record struct {
	Label       string `json:"label"`
	Allowed     bool   `json:"allowed"`
	Minting     bool   `json:"minting"`
	LoadingText string `json:"loadingText,omitempty"`
	Reason      string `json:"reason,omitempty"`
	StartTime   int64  `json:"startTime"`
	EndTime     int64  `json:"endTime"`
}

// ------------------------------------------------------
// Errors
// ------------------------------------------------------

var (
	ErrGuardNotFound = errors.New("guard: not found")
	ErrInvalidLabel  = errors.New("guard: invalid label")
)

// NewRecord はラベルを正規化してレコードを生成します。
func NewRecord(label string, allowed bool, reason string) (Record, error) {
	l := strings.TrimSpace(label)
	if l == "" {
		return Record{}, ErrInvalidLabel
	}
	return Record{
		Label:   l,
		Allowed: allowed,
		Reason:  strings.TrimSpace(reason),
	}, nil
}

// IsDefault は "default" ラベルかどうかを返します。
func (r Record) IsDefault() bool {
	return r.Label == DefaultLabel
}

// GroupLabel はオンチェーンに渡すグループ識別子を返します。
// "default" の場合は nil（= グループ制限なし）。
func GroupLabel(label string) *string {
	if label == DefaultLabel {
		return nil
	}
	l := label
	return &l
}

// WithinWindow は unix 秒 now が受付期間内かどうかを返します。
// StartTime / EndTime が 0 の場合はその側の制限なしとみなします。
func (r Record) WithinWindow(now int64) bool {
	if r.StartTime != 0 && now < r.StartTime {
		return false
	}
	if r.EndTime != 0 && now >= r.EndTime {
		return false
	}
	return true
}

// ------------------------------------------------------
// Snapshot
// ------------------------------------------------------

// Snapshot は Ledger がある時点でコミットしたレコード一覧です。
// 一度公開された Snapshot は変更されません（読み手は自由に保持してよい）。
type Snapshot struct {
	Version uint64   `json:"version"`
	Records []Record `json:"records"`
}

// Find はラベルでレコードを探します。
func (s Snapshot) Find(label string) (Record, bool) {
	for _, r := range s.Records {
		if r.Label == label {
			return r, true
		}
	}
	return Record{}, false
}

// AnyAllowed はいずれかのガードがミント可能かどうかを返します。
func (s Snapshot) AnyAllowed() bool {
	for _, r := range s.Records {
		if r.Allowed {
			return true
		}
	}
	return false
}

// Dedupe はラベル重複を除去します（先勝ち・順序維持）。
// 空ラベルのレコードは捨てます。
func Dedupe(records []Record) []Record {
	seen := make(map[string]struct{}, len(records))
	out := make([]Record, 0, len(records))
	for _, r := range records {
		r.Label = strings.TrimSpace(r.Label)
		if r.Label == "" {
			continue
		}
		if _, ok := seen[r.Label]; ok {
			continue
		}
		seen[r.Label] = struct{}{}
		out = append(out, r)
	}
	return out
}
