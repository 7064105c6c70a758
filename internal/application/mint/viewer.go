// internal/application/mint/viewer.go
package mint

import (
	"context"

	"github.com/blocto/solana-go-sdk/common"

	mintdom "github.com/Spaceman-Collective/kyogen-mint/internal/domain/mint"
)

var fetchFailedNotification = Notification{
	Title:       "Nft could not be fetched!",
	Description: "Please check your Wallet instead.",
	Severity:    SeverityError,
	DurationMs:  9000,
}

// Viewer は既知のアセットを単体で表示するためのユースケースです（ミントフロー外）。
type Viewer struct {
	fetcher  *Fetcher
	notifier Notifier
}

func NewViewer(fetcher *Fetcher, notifier Notifier) *Viewer {
	return &Viewer{fetcher: fetcher, notifier: notifier}
}

// Show は 1 件の metadata を解決します。失敗時は通知を 1 件出します。
func (v *Viewer) Show(ctx context.Context, mint common.PublicKey) (mintdom.MintedAsset, error) {
	a, err := v.fetcher.Fetch(ctx, mint)
	if err != nil {
		if v.notifier != nil {
			v.notifier.Notify(ctx, fetchFailedNotification)
		}
		return mintdom.MintedAsset{}, err
	}
	return a, nil
}
