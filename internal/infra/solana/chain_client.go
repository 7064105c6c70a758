// internal/infra/solana/chain_client.go
package solana

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/blocto/solana-go-sdk/client"
	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
	"golang.org/x/time/rate"

	appmint "github.com/Spaceman-Collective/kyogen-mint/internal/application/mint"
	mintdom "github.com/Spaceman-Collective/kyogen-mint/internal/domain/mint"
)

var (
	ErrChainNotConfigured = errors.New("solana chain: not configured")
	ErrAccountNotFound    = errors.New("solana chain: account not found")
)

// ChainClient は blocto client をラップし、RPC 呼び出しをレート制限します。
// ミントフロー（appmint.ChainClient）と各 reader（AccountSource）の両方で共有します。
type ChainClient struct {
	RPC     *client.Client
	limiter *rate.Limiter
}

var _ appmint.ChainClient = (*ChainClient)(nil)

// NewChainClient は rpcURL が空なら DevnetEndpoint を使います。
// rps <= 0 の場合はレート制限なし。
func NewChainClient(rpcURL string, rps float64) *ChainClient {
	u := strings.TrimSpace(rpcURL)
	if u == "" {
		u = DevnetEndpoint
	}
	return &ChainClient{
		RPC:     client.NewClient(u),
		limiter: newLimiter(rps),
	}
}

func newLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

func (c *ChainClient) wait(ctx context.Context) error {
	if c == nil || c.RPC == nil {
		return ErrChainNotConfigured
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("solana chain: rate limit wait: %w", err)
	}
	return nil
}

func (c *ChainClient) LatestBlockhash(ctx context.Context) (string, error) {
	if err := c.wait(ctx); err != nil {
		return "", err
	}
	res, err := c.RPC.GetLatestBlockhash(ctx)
	if err != nil {
		return "", fmt.Errorf("GetLatestBlockhash: %w", err)
	}
	return res.Blockhash, nil
}

func (c *ChainClient) SendTransaction(ctx context.Context, tx types.Transaction) (string, error) {
	if err := c.wait(ctx); err != nil {
		return "", err
	}
	sig, err := c.RPC.SendTransaction(ctx, tx)
	if err != nil {
		return "", fmt.Errorf("SendTransaction: %w", err)
	}
	return sig, nil
}

// GetTransaction はまだ確認されていない tx に対して (nil, nil) を返します。
func (c *ChainClient) GetTransaction(ctx context.Context, signature string) (*mintdom.ConfirmedTransaction, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	tx, err := c.RPC.GetTransaction(ctx, signature)
	if err != nil {
		return nil, fmt.Errorf("GetTransaction: %w", err)
	}
	if tx == nil {
		return nil, nil
	}

	out := &mintdom.ConfirmedTransaction{
		Signature: signature,
		Slot:      tx.Slot,
	}
	if tx.Meta != nil {
		out.Logs = tx.Meta.LogMessages
		out.Err = tx.Meta.Err
	}
	return out, nil
}

// AccountData はアカウントの data を返します。存在しない場合は ErrAccountNotFound。
func (c *ChainClient) AccountData(ctx context.Context, address common.PublicKey) ([]byte, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	info, err := c.RPC.GetAccountInfo(ctx, address.ToBase58())
	if err != nil {
		msg := strings.ToLower(err.Error())
		if strings.Contains(msg, "not found") || strings.Contains(msg, "could not find account") {
			return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, address.ToBase58())
		}
		return nil, fmt.Errorf("GetAccountInfo: %w", err)
	}
	if info.Lamports == 0 && len(info.Data) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, address.ToBase58())
	}

	log.Printf("[solana.chain] account loaded addr=%s len=%d", maskShort(address.ToBase58()), len(info.Data))
	return info.Data, nil
}

// AccountSource は reader がアカウント data を読むためのポートです（ChainClient が実装）。
type AccountSource interface {
	AccountData(ctx context.Context, address common.PublicKey) ([]byte, error)
}

var _ AccountSource = (*ChainClient)(nil)
