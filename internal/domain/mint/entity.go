// internal/domain/mint/entity.go
package mint

import (
	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"

	"github.com/Spaceman-Collective/kyogen-mint/internal/domain/nft"
)

// ------------------------------------------------------
// BatchRequest (1 回のミント実行リクエスト)
// ------------------------------------------------------
type BatchRequest struct {
	Label string
	Count int
	// ガードによっては保有トークンを参照する（tokenGate など）
	OwnedTokens []common.PublicKey
}

// Validate はバッチサイズを検証します。
func (r BatchRequest) Validate() error {
	if r.Count < 1 {
		return ErrInvalidBatchSize
	}
	return nil
}

// ------------------------------------------------------
// UnsignedTransaction (バッチ 1 スロット分)
// ------------------------------------------------------
//
// 命令順は [computeUnitLimit, route?, mintV2]。
// Asset は新規発行される NFT の mint keypair で、自身の tx に共同署名します。
type UnsignedTransaction struct {
	Slot         int
	Asset        types.Account
	ComputeLimit types.Instruction
	Route        *types.Instruction
	Mint         types.Instruction
}

// Instructions は送信順の命令列を返します。
func (t UnsignedTransaction) Instructions() []types.Instruction {
	ins := make([]types.Instruction, 0, 3)
	ins = append(ins, t.ComputeLimit)
	if t.Route != nil {
		ins = append(ins, *t.Route)
	}
	ins = append(ins, t.Mint)
	return ins
}

// Batch は Builder の出力です。
type Batch struct {
	Transactions []UnsignedTransaction
	// 後続の metadata 取得で使う（構築順）
	Assets []common.PublicKey
	// 全スロットで共有される route 命令（無ければ nil）
	Route *types.Instruction
}

// SignedTransaction はアセット鍵とウォレットの両方で署名済みの tx です。
type SignedTransaction struct {
	Slot        int
	Asset       common.PublicKey
	Transaction types.Transaction
}

// Submission は送信結果です。
type Submission struct {
	// 送信順のシグネチャ
	Signatures []string
	// 確認対象（SubmissionPolicy が選んだもの）
	Tracked []string
}

// Last は最後に送信した tx のシグネチャです。
func (s Submission) Last() string {
	if len(s.Signatures) == 0 {
		return ""
	}
	return s.Signatures[len(s.Signatures)-1]
}

// ConfirmedTransaction は確認済み tx のうち、このリポジトリが参照する部分です。
type ConfirmedTransaction struct {
	Signature string
	Slot      uint64
	Logs      []string
	// オンチェーンのエラー（nil = 成功）
	Err any
}

// ------------------------------------------------------
// Outcome (ミント結果)
// ------------------------------------------------------

// MintedAsset は on-chain / off-chain 両方の取得に成功した NFT です。
type MintedAsset struct {
	Mint             string            `json:"mint"`
	OffChainMetadata *nft.JSONMetadata `json:"offChainMetadata,omitempty"`
}

// FetchFailure は metadata 取得に失敗したアセット（結果からは除外される）。
type FetchFailure struct {
	Mint   string `json:"mint"`
	Reason string `json:"reason"`
}

// Outcome は 1 回のミント実行の成功結果です。
// len(Assets) <= バッチサイズ。
type Outcome struct {
	RunID      string         `json:"runId,omitempty"`
	Label      string         `json:"label"`
	Signatures []string       `json:"signatures"`
	Assets     []MintedAsset  `json:"assets"`
	Failures   []FetchFailure `json:"failures,omitempty"`
}
