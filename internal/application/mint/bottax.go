// internal/application/mint/bottax.go
package mint

import (
	"fmt"
	"strings"

	mintdom "github.com/Spaceman-Collective/kyogen-mint/internal/domain/mint"
)

// BotTaxMarker は candy guard が bot tax を課してミントを無効にしたときのログ文字列です。
const BotTaxMarker = "Candy Guard Botting"

// DetectBotTax はログ行に BotTaxMarker が含まれていれば ErrBotTaxTriggered を返します。
// ログ以外の入力には依存しない純粋関数です。
func DetectBotTax(logs []string) error {
	for _, l := range logs {
		if strings.Contains(l, BotTaxMarker) {
			return fmt.Errorf("%w: check transaction", mintdom.ErrBotTaxTriggered)
		}
	}
	return nil
}

// VerifyConfirmed は確認済み tx を検証します。
// tx 自体が確認されていても bot tax が課されていればミント失敗として扱います。
func VerifyConfirmed(tx *mintdom.ConfirmedTransaction) error {
	if tx == nil {
		return mintdom.ErrTransactionNotFound
	}
	if err := DetectBotTax(tx.Logs); err != nil {
		return fmt.Errorf("sig=%s: %w", tx.Signature, err)
	}
	if tx.Err != nil {
		return fmt.Errorf("%w: sig=%s err=%v", mintdom.ErrTransactionFailed, tx.Signature, tx.Err)
	}
	return nil
}
