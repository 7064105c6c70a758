// internal/infra/solana/rpc_client.go
package solana

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/blocto/solana-go-sdk/common"
	"golang.org/x/time/rate"
)

// ErrRPC は JSON-RPC の error 応答をまとめる sentinel です。
var ErrRPC = errors.New("solana rpc: error response")

// RPCError は JSON-RPC の error オブジェクトです（errors.Is(err, ErrRPC) が true）。
type RPCError struct {
	Method  string `json:"-"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("solana rpc: %s failed code=%d message=%s", e.Method, e.Code, e.Message)
}

func (e *RPCError) Is(target error) bool { return target == ErrRPC }

// TokenAccount は jsonParsed の SPL トークンアカウント 1 件を平坦化したものです。
type TokenAccount struct {
	Address string
	Mint    string
	Amount  string // u64 の 10 進文字列
}

// TokenAccountLister はウォレットの SPL トークンアカウント一覧を返します。
// blocto client は jsonParsed を型付きで返さないため、ここだけ素の JSON-RPC を使います。
type TokenAccountLister interface {
	TokenAccountsByOwner(ctx context.Context, owner, program common.PublicKey) ([]TokenAccount, error)
}

// JSONRPCClient は最小限の Solana JSON-RPC over HTTP クライアントです。
type JSONRPCClient struct {
	Endpoint string
	HTTP     *http.Client

	limiter *rate.Limiter
	nextID  atomic.Uint64
}

var _ TokenAccountLister = (*JSONRPCClient)(nil)

// NewJSONRPCClient は endpoint が空なら DevnetEndpoint を使います。
// rps は ChainClient と同じく 0 で無制限です。
func NewJSONRPCClient(endpoint string, rps float64) *JSONRPCClient {
	ep := strings.TrimSpace(endpoint)
	if ep == "" {
		ep = DevnetEndpoint
	}
	return &JSONRPCClient{
		Endpoint: ep,
		HTTP:     &http.Client{Timeout: 12 * time.Second},
		limiter:  newLimiter(rps),
	}
}

type rpcEnvelope struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Method  string          `json:"method,omitempty"`
	Params  any             `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

func (c *JSONRPCClient) do(ctx context.Context, method string, params any, out any) error {
	if c == nil || c.HTTP == nil || c.Endpoint == "" {
		return errors.New("solana rpc: client not configured")
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("solana rpc: %s: rate limit: %w", method, err)
		}
	}

	body, err := json.Marshal(rpcEnvelope{JSONRPC: "2.0", ID: c.nextID.Add(1), Method: method, Params: params})
	if err != nil {
		return fmt.Errorf("solana rpc: %s: encode: %w", method, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("solana rpc: %s: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("solana rpc: %s: %w", method, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("solana rpc: %s: http status=%d", method, resp.StatusCode)
	}

	var env rpcEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("solana rpc: %s: decode: %w", method, err)
	}
	if env.Error != nil {
		env.Error.Method = method
		return env.Error
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(env.Result, out); err != nil {
		return fmt.Errorf("solana rpc: %s: decode result: %w", method, err)
	}
	return nil
}

// getTokenAccountsByOwner (jsonParsed) の result のうち使う部分だけ
type tokenAccountsResult struct {
	Value []struct {
		Pubkey  string `json:"pubkey"`
		Account struct {
			Data struct {
				Parsed struct {
					Info struct {
						Mint        string `json:"mint"`
						TokenAmount struct {
							Amount string `json:"amount"`
						} `json:"tokenAmount"`
					} `json:"info"`
				} `json:"parsed"`
			} `json:"data"`
		} `json:"account"`
	} `json:"value"`
}

// TokenAccountsByOwner は program（通常 SPL Token）配下のトークンアカウントを confirmed で取得します。
// program がゼロ値なら TokenProgramID。
func (c *JSONRPCClient) TokenAccountsByOwner(ctx context.Context, owner, program common.PublicKey) ([]TokenAccount, error) {
	if owner == (common.PublicKey{}) {
		return nil, errors.New("solana rpc: owner is empty")
	}
	if program == (common.PublicKey{}) {
		program = TokenProgramID
	}

	params := []any{
		owner.ToBase58(),
		map[string]string{"programId": program.ToBase58()},
		map[string]string{"encoding": "jsonParsed", "commitment": "confirmed"},
	}
	var res tokenAccountsResult
	if err := c.do(ctx, "getTokenAccountsByOwner", params, &res); err != nil {
		return nil, err
	}

	out := make([]TokenAccount, 0, len(res.Value))
	for _, v := range res.Value {
		info := v.Account.Data.Parsed.Info
		out = append(out, TokenAccount{
			Address: v.Pubkey,
			Mint:    strings.TrimSpace(info.Mint),
			Amount:  strings.TrimSpace(info.TokenAmount.Amount),
		})
	}
	return out, nil
}
