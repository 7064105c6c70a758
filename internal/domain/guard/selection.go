// internal/domain/guard/selection.go
package guard

import "strings"

// SelectionPolicy は重複除去済みのガード一覧から、UI に提示する 1 件を選ぶポリシーです。
type SelectionPolicy interface {
	Name() string
	Select(records []Record) (Record, bool)
}

// PreferNonDefault は "default" 以外のガードを優先します。
// "default" は他にガードが存在しない場合のみ選ばれます。
type PreferNonDefault struct{}

func (PreferNonDefault) Name() string { return "prefer-non-default" }

func (PreferNonDefault) Select(records []Record) (Record, bool) {
	list := Dedupe(records)
	if len(list) == 0 {
		return Record{}, false
	}
	if len(list) == 1 {
		return list[0], true
	}
	for _, r := range list {
		if !r.IsDefault() {
			return r, true
		}
	}
	return list[0], true
}

// FirstAllowed は allowed なガードを先頭から探し、無ければ先頭を返します。
type FirstAllowed struct{}

func (FirstAllowed) Name() string { return "first-allowed" }

func (FirstAllowed) Select(records []Record) (Record, bool) {
	list := Dedupe(records)
	if len(list) == 0 {
		return Record{}, false
	}
	for _, r := range list {
		if r.Allowed {
			return r, true
		}
	}
	return list[0], true
}

// ExactLabel は指定ラベルのガードだけを選びます。
type ExactLabel struct {
	Label string
}

func (p ExactLabel) Name() string { return "exact:" + p.Label }

func (p ExactLabel) Select(records []Record) (Record, bool) {
	for _, r := range Dedupe(records) {
		if r.Label == strings.TrimSpace(p.Label) {
			return r, true
		}
	}
	return Record{}, false
}

// PolicyByName は設定値からポリシーを解決します。
// 未知の値は PreferNonDefault に倒します。
func PolicyByName(name string) SelectionPolicy {
	n := strings.ToLower(strings.TrimSpace(name))
	switch {
	case n == "first-allowed":
		return FirstAllowed{}
	case strings.HasPrefix(n, "exact:"):
		return ExactLabel{Label: strings.TrimSpace(name[len("exact:"):])}
	default:
		return PreferNonDefault{}
	}
}
