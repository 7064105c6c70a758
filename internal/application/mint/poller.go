// internal/application/mint/poller.go
package mint

import (
	"context"
	"fmt"
	"log"
	"time"

	mintdom "github.com/Spaceman-Collective/kyogen-mint/internal/domain/mint"
)

const (
	DefaultPollAttempts = 30
	DefaultPollInterval = time.Second
)

// Poller は確認済み tx が見つかるまで GetTransaction を繰り返します。
// 予算（attempts）を使い切ったら ErrTransactionNotFound。これはタイムアウトであって、
// tx が後から着地する可能性は残ります（この予算を超えての再確認はしない）。
type Poller struct {
	chain    ChainClient
	attempts int
	interval time.Duration
	sleep    Sleeper
}

func NewPoller(chain ChainClient, attempts int, interval time.Duration) *Poller {
	if attempts <= 0 {
		attempts = DefaultPollAttempts
	}
	if interval < 0 {
		interval = DefaultPollInterval
	}
	return &Poller{
		chain:    chain,
		attempts: attempts,
		interval: interval,
		sleep:    SleepContext,
	}
}

// WithSleeper は待機処理を差し替えます（テスト用）。
func (p *Poller) WithSleeper(s Sleeper) *Poller {
	if s != nil {
		p.sleep = s
	}
	return p
}

// Await は signature の確認済み tx と、実際に行った問い合わせ回数を返します。
func (p *Poller) Await(ctx context.Context, signature string) (*mintdom.ConfirmedTransaction, int, error) {
	var lastErr error

	for attempt := 1; attempt <= p.attempts; attempt++ {
		tx, err := p.chain.GetTransaction(ctx, signature)
		if err != nil {
			// RPC エラーも「まだ見つからない」1 回分として数える
			lastErr = err
			log.Printf("[mint.poller] getTransaction error attempt=%d sig=%s err=%v", attempt, maskShort(signature), err)
		} else if tx != nil {
			return tx, attempt, nil
		}

		if attempt == p.attempts {
			break
		}
		if err := p.sleep(ctx, p.interval); err != nil {
			return nil, attempt, fmt.Errorf("%w: sig=%s: %v", mintdom.ErrTransactionNotFound, signature, err)
		}
	}

	if lastErr != nil {
		return nil, p.attempts, fmt.Errorf("%w: sig=%s after %d attempts (last error: %v)", mintdom.ErrTransactionNotFound, signature, p.attempts, lastErr)
	}
	return nil, p.attempts, fmt.Errorf("%w: sig=%s after %d attempts", mintdom.ErrTransactionNotFound, signature, p.attempts)
}
