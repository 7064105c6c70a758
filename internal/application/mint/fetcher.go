// internal/application/mint/fetcher.go
package mint

import (
	"context"
	"fmt"
	"log"

	"github.com/blocto/solana-go-sdk/common"

	mintdom "github.com/Spaceman-Collective/kyogen-mint/internal/domain/mint"
	nftdom "github.com/Spaceman-Collective/kyogen-mint/internal/domain/nft"
)

// Fetcher はミント済みアセットの on-chain / off-chain metadata を解決します。
// ミントフロー外でも（既知のアセットの表示用に）単体で使われます。
type Fetcher struct {
	assets   AssetReader
	observer RunObserver
}

func NewFetcher(assets AssetReader, observer RunObserver) *Fetcher {
	return &Fetcher{assets: assets, observer: observer}
}

// Fetch は 1 件分の on-chain asset → off-chain JSON を順に解決します。
// どちらかが失敗した場合は ErrNftFetchFailed を wrap して返します。
func (f *Fetcher) Fetch(ctx context.Context, mint common.PublicKey) (mintdom.MintedAsset, error) {
	asset, err := f.assets.FetchDigitalAsset(ctx, mint)
	if err != nil {
		f.observe(false)
		return mintdom.MintedAsset{}, fmt.Errorf("%w: mint=%s on-chain: %v", mintdom.ErrNftFetchFailed, mint.ToBase58(), err)
	}

	uri := nftdom.CleanURI(asset.URI)
	if uri == "" {
		f.observe(false)
		return mintdom.MintedAsset{}, fmt.Errorf("%w: mint=%s: %v", mintdom.ErrNftFetchFailed, mint.ToBase58(), nftdom.ErrEmptyURI)
	}

	meta, err := f.assets.FetchJSONMetadata(ctx, uri)
	if err != nil {
		f.observe(false)
		return mintdom.MintedAsset{}, fmt.Errorf("%w: mint=%s off-chain: %v", mintdom.ErrNftFetchFailed, mint.ToBase58(), err)
	}

	f.observe(true)
	return mintdom.MintedAsset{
		Mint:             mint.ToBase58(),
		OffChainMetadata: &meta,
	}, nil
}

// FetchAll は各アセットを独立に解決します。
// 失敗したアセットはログを出して結果から外し、Failures 側に積みます。
func (f *Fetcher) FetchAll(ctx context.Context, mints []common.PublicKey) ([]mintdom.MintedAsset, []mintdom.FetchFailure) {
	assets := make([]mintdom.MintedAsset, 0, len(mints))
	var failures []mintdom.FetchFailure

	for _, m := range mints {
		a, err := f.Fetch(ctx, m)
		if err != nil {
			log.Printf("[mint.fetcher] drop asset mint=%s err=%v", maskShort(m.ToBase58()), err)
			failures = append(failures, mintdom.FetchFailure{Mint: m.ToBase58(), Reason: err.Error()})
			continue
		}
		assets = append(assets, a)
	}
	return assets, failures
}

func (f *Fetcher) observe(ok bool) {
	if f.observer != nil {
		f.observer.AssetFetched(ok)
	}
}
