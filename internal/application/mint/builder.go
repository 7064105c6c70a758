// internal/application/mint/builder.go
package mint

import (
	"context"
	"fmt"
	"log"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"

	cmdom "github.com/Spaceman-Collective/kyogen-mint/internal/domain/candymachine"
	guarddom "github.com/Spaceman-Collective/kyogen-mint/internal/domain/guard"
	mintdom "github.com/Spaceman-Collective/kyogen-mint/internal/domain/mint"
)

// DefaultComputeUnits は各 tx の先頭に付ける compute unit 上限です。
const DefaultComputeUnits uint32 = 800_000

// BuildInput は Builder の入力です。
type BuildInput struct {
	Record      guarddom.Record
	Machine     cmdom.CandyMachine
	CandyGuard  cmdom.CandyGuard
	Payer       common.PublicKey
	OwnedTokens []common.PublicKey
	Count       int
}

// Builder はバッチ N 件分の未署名 tx を組み立てます。
type Builder struct {
	factory      InstructionFactory
	computeUnits uint32
	newAccount   func() types.Account
}

// NewBuilder は Builder を生成します。computeUnits が 0 なら DefaultComputeUnits。
func NewBuilder(factory InstructionFactory, computeUnits uint32) *Builder {
	if computeUnits == 0 {
		computeUnits = DefaultComputeUnits
	}
	return &Builder{
		factory:      factory,
		computeUnits: computeUnits,
		newAccount:   types.NewAccount,
	}
}

// Build は N 件の UnsignedTransaction と、生成したアセット ID 一覧を返します。
// ガードセットが定義されていないラベルはネットワークに触れる前に ErrNoGuardDefined で失敗します。
func (b *Builder) Build(ctx context.Context, in BuildInput) (mintdom.Batch, error) {
	_ = ctx // 命令の組み立てはローカル処理のみ

	if in.Count < 1 {
		return mintdom.Batch{}, mintdom.ErrInvalidBatchSize
	}

	guards, ok := in.CandyGuard.GuardsFor(in.Record.Label)
	if !ok {
		return mintdom.Batch{}, fmt.Errorf("%w: label=%s", mintdom.ErrNoGuardDefined, in.Record.Label)
	}
	group := guarddom.GroupLabel(in.Record.Label)

	// route は 1 回だけ組み立てて全スロットで共有する
	route, err := b.factory.RouteInstruction(RouteParams{
		Machine:    in.Machine,
		CandyGuard: in.CandyGuard.Address,
		Group:      group,
		Guards:     guards,
		Payer:      in.Payer,
	})
	if err != nil {
		return mintdom.Batch{}, fmt.Errorf("build route instruction: %w", err)
	}

	batch := mintdom.Batch{
		Transactions: make([]mintdom.UnsignedTransaction, 0, in.Count),
		Assets:       make([]common.PublicKey, 0, in.Count),
		Route:        route,
	}

	for slot := 0; slot < in.Count; slot++ {
		asset := b.newAccount()

		ix, err := b.factory.MintInstruction(MintParams{
			Machine:     in.Machine,
			CandyGuard:  in.CandyGuard.Address,
			Group:       group,
			Guards:      guards,
			Payer:       in.Payer,
			Asset:       asset.PublicKey,
			OwnedTokens: in.OwnedTokens,
		})
		if err != nil {
			return mintdom.Batch{}, fmt.Errorf("build mint instruction slot=%d: %w", slot, err)
		}

		batch.Transactions = append(batch.Transactions, mintdom.UnsignedTransaction{
			Slot:         slot,
			Asset:        asset,
			ComputeLimit: b.factory.ComputeUnitLimit(b.computeUnits),
			Route:        route,
			Mint:         ix,
		})
		batch.Assets = append(batch.Assets, asset.PublicKey)
	}

	log.Printf(
		"[mint.builder] built batch label=%s count=%d route=%t payer=%s",
		in.Record.Label, len(batch.Transactions), route != nil, maskShort(in.Payer.ToBase58()),
	)
	return batch, nil
}
