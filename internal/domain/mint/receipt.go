// internal/domain/mint/receipt.go
package mint

import (
	"errors"
	"strings"
	"time"
)

// ReceiptStatus はミント実行の最終結果です。
type ReceiptStatus string

const (
	ReceiptSucceeded ReceiptStatus = "succeeded"
	ReceiptFailed    ReceiptStatus = "failed"
)

// ------------------------------------------------------
// Entity: Receipt (mintReceipts 1 レコード)
// ------------------------------------------------------
//
// - id         : run token（Ledger のロックトークンと同じ値）
// - label      : ガードラベル
// - wallet     : 署名ウォレット (base58)
// - count      : バッチサイズ
// - signatures : 送信した tx シグネチャ（送信順）
// - mints      : metadata 取得まで成功した mint アドレス
// - status     : succeeded / failed
// - reason     : 失敗理由（成功時は空）
// - kind       : エラー区分
// - phase      : 失敗したフェーズ
// - createdAt  : 記録時刻
type Receipt struct {
	ID         string        `json:"id"`
	Label      string        `json:"label"`
	Wallet     string        `json:"wallet"`
	Count      int           `json:"count"`
	Signatures []string      `json:"signatures"`
	Mints      []string      `json:"mints"`
	Status     ReceiptStatus `json:"status"`
	Reason     string        `json:"reason,omitempty"`
	Kind       Kind          `json:"kind,omitempty"`
	Phase      Phase         `json:"phase,omitempty"`
	CreatedAt  time.Time     `json:"createdAt"`
}

var (
	ErrInvalidReceiptID = errors.New("mint: invalid receipt id")
	ErrInvalidWallet    = errors.New("mint: invalid wallet")
	ErrReceiptNotFound  = errors.New("mint: receipt not found")
)

// Validate は保存前の一貫性チェックです。
func (r Receipt) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return ErrInvalidReceiptID
	}
	if strings.TrimSpace(r.Wallet) == "" {
		return ErrInvalidWallet
	}
	if r.CreatedAt.IsZero() {
		return errors.New("mint: invalid createdAt")
	}
	return nil
}
