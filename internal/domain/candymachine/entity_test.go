package candymachine

import (
	"testing"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Spaceman-Collective/kyogen-mint/internal/domain/guard"
)

func i64(v int64) *int64 { return &v }

func TestRemainingAndSoldOut(t *testing.T) {
	cm := CandyMachine{ItemsAvailable: 10, ItemsRedeemed: 4}
	assert.Equal(t, uint64(6), cm.Remaining())
	assert.False(t, cm.SoldOut())

	cm.ItemsRedeemed = 12
	assert.Equal(t, uint64(0), cm.Remaining())
	assert.True(t, cm.SoldOut())
}

func TestGuardsFor_MergesGroupOverBase(t *testing.T) {
	dest := common.PublicKeyFromString("11111111111111111111111111111111")
	cg := CandyGuard{
		Base: GuardSet{
			BotTax:     &BotTax{Lamports: 10_000_000, LastInstruction: true},
			SolPayment: &SolPayment{Lamports: 1, Destination: dest},
			StartDate:  i64(100),
		},
		Groups: []Group{
			{Label: "OG", Guards: GuardSet{SolPayment: &SolPayment{Lamports: 2, Destination: dest}}},
		},
	}

	base, ok := cg.GuardsFor(guard.DefaultLabel)
	require.True(t, ok)
	assert.Equal(t, uint64(1), base.SolPayment.Lamports)

	og, ok := cg.GuardsFor("OG")
	require.True(t, ok)
	assert.Equal(t, uint64(2), og.SolPayment.Lamports)
	require.NotNil(t, og.BotTax)
	assert.Equal(t, int64(100), *og.StartDate)

	_, ok = cg.GuardsFor("missing")
	assert.False(t, ok)
}

func TestLabels(t *testing.T) {
	assert.Equal(t, []string{guard.DefaultLabel}, CandyGuard{}.Labels())

	cg := CandyGuard{Groups: []Group{{Label: "OG"}, {Label: "WL"}}}
	assert.Equal(t, []string{guard.DefaultLabel, "OG", "WL"}, cg.Labels())
}

func TestWindowAndRoute(t *testing.T) {
	start, end := GuardSet{}.Window()
	assert.Zero(t, start)
	assert.Zero(t, end)

	start, end = GuardSet{StartDate: i64(5), EndDate: i64(9)}.Window()
	assert.Equal(t, int64(5), start)
	assert.Equal(t, int64(9), end)

	assert.False(t, GuardSet{}.RequiresRoute())
	assert.True(t, GuardSet{AllowList: &AllowList{}}.RequiresRoute())
}

func TestHoldsAtLeast(t *testing.T) {
	gate := common.PublicKeyFromString("So11111111111111111111111111111111111111112")
	other := common.PublicKeyFromString("11111111111111111111111111111111")
	holdings := []Holding{{Mint: gate, Amount: 1}, {Mint: other, Amount: 5}, {Mint: gate, Amount: 2}}

	assert.True(t, HoldsAtLeast(holdings, gate, 3))
	assert.False(t, HoldsAtLeast(holdings, gate, 4))
	assert.False(t, HoldsAtLeast(nil, gate, 1))
}

func TestTokenStandard(t *testing.T) {
	assert.True(t, TokenStandardProgrammableNonFungible.IsProgrammable())
	assert.False(t, TokenStandardNonFungible.IsProgrammable())
}
