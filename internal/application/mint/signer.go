// internal/application/mint/signer.go
package mint

import (
	"context"
	"fmt"
	"log"

	"github.com/blocto/solana-go-sdk/types"

	mintdom "github.com/Spaceman-Collective/kyogen-mint/internal/domain/mint"
)

// BatchSigner はバッチの各 tx にアセット鍵で共同署名し、最後にウォレットでまとめて署名します。
//
// アセット鍵の署名は tx 構築の一部なので先、ウォレット署名は承認ステップなので後。
// ウォレット署名は N 件まとめて 1 回（= ユーザーへの承認要求は 1 回）。
type BatchSigner struct {
	chain  ChainClient
	wallet Wallet
}

func NewBatchSigner(chain ChainClient, wallet Wallet) *BatchSigner {
	return &BatchSigner{chain: chain, wallet: wallet}
}

// Sign はバッチ全件を署名して返します（構築順を維持）。
func (s *BatchSigner) Sign(ctx context.Context, batch mintdom.Batch) ([]mintdom.SignedTransaction, error) {
	if len(batch.Transactions) == 0 {
		return nil, mintdom.ErrNoTransactionCreated
	}

	payer := s.wallet.PublicKey()
	partial := make([]types.Transaction, 0, len(batch.Transactions))

	for _, ut := range batch.Transactions {
		// tx ごとに最新 blockhash を取り直す（送信前に期限切れにならないように）
		blockhash, err := s.chain.LatestBlockhash(ctx)
		if err != nil {
			return nil, fmt.Errorf("latest blockhash slot=%d: %w", ut.Slot, err)
		}

		msg := types.NewMessage(types.NewMessageParam{
			FeePayer:        payer,
			RecentBlockhash: blockhash,
			Instructions:    ut.Instructions(),
		})
		tx := types.Transaction{
			Signatures: make([]types.Signature, msg.Header.NumRequireSignatures),
			Message:    msg,
		}

		data, err := msg.Serialize()
		if err != nil {
			return nil, fmt.Errorf("serialize message slot=%d: %w", ut.Slot, err)
		}
		if err := tx.AddSignature(ut.Asset.Sign(data)); err != nil {
			return nil, fmt.Errorf("asset co-sign slot=%d: %w", ut.Slot, err)
		}
		partial = append(partial, tx)
	}

	signed, err := s.wallet.SignAllTransactions(ctx, partial)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", mintdom.ErrWalletRejected, err)
	}
	if len(signed) != len(partial) {
		return nil, fmt.Errorf("%w: wallet returned %d of %d transactions", mintdom.ErrWalletRejected, len(signed), len(partial))
	}

	out := make([]mintdom.SignedTransaction, 0, len(signed))
	for i, tx := range signed {
		ut := batch.Transactions[i]
		out = append(out, mintdom.SignedTransaction{
			Slot:        ut.Slot,
			Asset:       ut.Asset.PublicKey,
			Transaction: tx,
		})
	}

	log.Printf("[mint.signer] signed batch count=%d wallet=%s", len(out), maskShort(payer.ToBase58()))
	return out, nil
}
