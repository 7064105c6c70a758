package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRecord(t *testing.T) {
	r, err := NewRecord("  OG ", true, " ok ")
	require.NoError(t, err)
	assert.Equal(t, "OG", r.Label)
	assert.Equal(t, "ok", r.Reason)

	_, err = NewRecord("   ", true, "")
	assert.ErrorIs(t, err, ErrInvalidLabel)
}

func TestGroupLabel(t *testing.T) {
	assert.Nil(t, GroupLabel(DefaultLabel))

	g := GroupLabel("OG")
	require.NotNil(t, g)
	assert.Equal(t, "OG", *g)
}

func TestWithinWindow(t *testing.T) {
	r := Record{StartTime: 100, EndTime: 200}
	assert.False(t, r.WithinWindow(99))
	assert.True(t, r.WithinWindow(100))
	assert.True(t, r.WithinWindow(199))
	assert.False(t, r.WithinWindow(200))

	assert.True(t, Record{}.WithinWindow(0))
	assert.True(t, Record{StartTime: 10}.WithinWindow(1_000_000))
}

func TestDedupe_KeepsFirstAndOrder(t *testing.T) {
	out := Dedupe([]Record{
		{Label: "B", Reason: "first"},
		{Label: " A "},
		{Label: ""},
		{Label: "B", Reason: "second"},
	})
	require.Len(t, out, 2)
	assert.Equal(t, "B", out[0].Label)
	assert.Equal(t, "first", out[0].Reason)
	assert.Equal(t, "A", out[1].Label)
}

func TestSnapshot_FindAndAnyAllowed(t *testing.T) {
	s := Snapshot{Records: []Record{{Label: "A"}, {Label: "B", Allowed: true}}}
	r, ok := s.Find("B")
	require.True(t, ok)
	assert.True(t, r.Allowed)
	_, ok = s.Find("C")
	assert.False(t, ok)
	assert.True(t, s.AnyAllowed())
	assert.False(t, Snapshot{}.AnyAllowed())
}
