package mint

import (
	"testing"

	"github.com/stretchr/testify/assert"

	mintdom "github.com/Spaceman-Collective/kyogen-mint/internal/domain/mint"
)

func TestDetectBotTax(t *testing.T) {
	assert.NoError(t, DetectBotTax(nil))
	assert.NoError(t, DetectBotTax([]string{"Program log: Instruction: MintV2", "Program log: ok"}))

	err := DetectBotTax([]string{
		"Program log: Instruction: MintV2",
		"Program log: Candy Guard Botting is taxed at 10000000 lamports",
	})
	assert.ErrorIs(t, err, mintdom.ErrBotTaxTriggered)
}

func TestVerifyConfirmed(t *testing.T) {
	assert.ErrorIs(t, VerifyConfirmed(nil), mintdom.ErrTransactionNotFound)
	assert.NoError(t, VerifyConfirmed(&mintdom.ConfirmedTransaction{Signature: "s"}))

	err := VerifyConfirmed(&mintdom.ConfirmedTransaction{Signature: "s", Logs: []string{"Candy Guard Botting"}})
	assert.ErrorIs(t, err, mintdom.ErrBotTaxTriggered)

	err = VerifyConfirmed(&mintdom.ConfirmedTransaction{Signature: "s", Err: map[string]any{"InstructionError": []any{1, "Custom"}}})
	assert.ErrorIs(t, err, mintdom.ErrTransactionFailed)
}
