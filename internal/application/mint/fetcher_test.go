package mint

import (
	"context"
	"testing"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mintdom "github.com/Spaceman-Collective/kyogen-mint/internal/domain/mint"
	nftdom "github.com/Spaceman-Collective/kyogen-mint/internal/domain/nft"
)

func TestFetcher_Fetch(t *testing.T) {
	obs := &recordingObserver{}
	mint := types.NewAccount().PublicKey

	a, err := NewFetcher(&fakeAssets{}, obs).Fetch(context.Background(), mint)
	require.NoError(t, err)
	assert.Equal(t, mint.ToBase58(), a.Mint)
	require.NotNil(t, a.OffChainMetadata)
	assert.Equal(t, "https://meta.example/"+mint.ToBase58()+".png", a.OffChainMetadata.Image, "uri padding stripped")
	assert.Equal(t, []bool{true}, obs.fetched)
}

// emptyURIAssets は URI が空の metadata を返します。
type emptyURIAssets struct{ fakeAssets }

func (*emptyURIAssets) FetchDigitalAsset(_ context.Context, mint common.PublicKey) (nftdom.DigitalAsset, error) {
	return nftdom.DigitalAsset{Mint: mint, URI: "\x00\x00"}, nil
}

func TestFetcher_EmptyURI(t *testing.T) {
	_, err := NewFetcher(&emptyURIAssets{}, nil).Fetch(context.Background(), types.NewAccount().PublicKey)
	assert.ErrorIs(t, err, mintdom.ErrNftFetchFailed)
	assert.Equal(t, mintdom.KindRecoverable, mintdom.KindOf(err))
}

func TestFetcher_FetchAllDropsFailures(t *testing.T) {
	m1, m2, m3 := types.NewAccount().PublicKey, types.NewAccount().PublicKey, types.NewAccount().PublicKey
	assets := &fakeAssets{failMint: map[common.PublicKey]bool{m2: true}}
	obs := &recordingObserver{}

	got, failures := NewFetcher(assets, obs).FetchAll(context.Background(), []common.PublicKey{m1, m2, m3})
	require.Len(t, got, 2)
	assert.Equal(t, m1.ToBase58(), got[0].Mint)
	assert.Equal(t, m3.ToBase58(), got[1].Mint)
	require.Len(t, failures, 1)
	assert.Equal(t, m2.ToBase58(), failures[0].Mint)
	assert.Equal(t, []bool{true, false, true}, obs.fetched)
}
