// internal/infra/solana/wallet_reader.go
package solana

import (
	"context"
	"fmt"
	"strconv"

	"github.com/blocto/solana-go-sdk/common"

	"github.com/Spaceman-Collective/kyogen-mint/internal/application/eligibility"
	cmdom "github.com/Spaceman-Collective/kyogen-mint/internal/domain/candymachine"
)

// HoldingsReader は getTokenAccountsByOwner からウォレットの保有トークンを集計します。
type HoldingsReader struct {
	Client TokenAccountLister
}

var _ eligibility.HoldingsReader = (*HoldingsReader)(nil)

func NewHoldingsReader(c TokenAccountLister) *HoldingsReader {
	return &HoldingsReader{Client: c}
}

// ListHoldings は mint ごとに残高を合算して返します（出現順を維持）。
// 残高 0 のトークンアカウントは除外します。
func (r *HoldingsReader) ListHoldings(ctx context.Context, owner common.PublicKey) ([]cmdom.Holding, error) {
	if r == nil || r.Client == nil {
		return nil, fmt.Errorf("solana wallet reader: client not configured")
	}
	var zero common.PublicKey
	if owner == zero {
		return nil, fmt.Errorf("solana wallet reader: owner is empty")
	}

	accounts, err := r.Client.TokenAccountsByOwner(ctx, owner, TokenProgramID)
	if err != nil {
		return nil, err
	}

	index := make(map[string]int, len(accounts))
	out := make([]cmdom.Holding, 0, len(accounts))

	for _, a := range accounts {
		mint := a.Mint
		if mint == "" {
			continue
		}
		n, err := strconv.ParseUint(a.Amount, 10, 64)
		if err != nil || n == 0 {
			continue
		}

		if i, ok := index[mint]; ok {
			out[i].Amount += n
			continue
		}
		index[mint] = len(out)
		out = append(out, cmdom.Holding{Mint: common.PublicKeyFromString(mint), Amount: n})
	}
	return out, nil
}

