package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(label string, allowed bool) Record {
	return Record{Label: label, Allowed: allowed}
}

func TestPreferNonDefault_PicksFirstNonDefault(t *testing.T) {
	got, ok := PreferNonDefault{}.Select([]Record{
		rec(DefaultLabel, true),
		rec("OG", false),
		rec("WL", true),
	})
	require.True(t, ok)
	assert.Equal(t, "OG", got.Label)
}

func TestPreferNonDefault_DefaultOnlyWhenAlone(t *testing.T) {
	got, ok := PreferNonDefault{}.Select([]Record{rec(DefaultLabel, false)})
	require.True(t, ok)
	assert.Equal(t, DefaultLabel, got.Label)

	// 重複しかない場合も default 1 件
	got, ok = PreferNonDefault{}.Select([]Record{rec(DefaultLabel, false), rec(DefaultLabel, true)})
	require.True(t, ok)
	assert.Equal(t, DefaultLabel, got.Label)
	assert.False(t, got.Allowed, "first occurrence wins")
}

func TestPreferNonDefault_Empty(t *testing.T) {
	_, ok := PreferNonDefault{}.Select(nil)
	assert.False(t, ok)
}

func TestFirstAllowed(t *testing.T) {
	got, ok := FirstAllowed{}.Select([]Record{rec("A", false), rec("B", true), rec("C", true)})
	require.True(t, ok)
	assert.Equal(t, "B", got.Label)

	got, ok = FirstAllowed{}.Select([]Record{rec("A", false), rec("B", false)})
	require.True(t, ok)
	assert.Equal(t, "A", got.Label)
}

func TestExactLabel(t *testing.T) {
	p := ExactLabel{Label: "WL"}
	got, ok := p.Select([]Record{rec("OG", true), rec("WL", false)})
	require.True(t, ok)
	assert.Equal(t, "WL", got.Label)

	_, ok = p.Select([]Record{rec("OG", true)})
	assert.False(t, ok)
}

func TestPolicyByName(t *testing.T) {
	assert.Equal(t, "prefer-non-default", PolicyByName("").Name())
	assert.Equal(t, "prefer-non-default", PolicyByName("unknown").Name())
	assert.Equal(t, "first-allowed", PolicyByName(" First-Allowed ").Name())
	assert.Equal(t, "exact:OG", PolicyByName("exact:OG").Name())
}
