// internal/infra/solana/asset_reader.go
package solana

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/metaplex/token_metadata"

	appmint "github.com/Spaceman-Collective/kyogen-mint/internal/application/mint"
	nftdom "github.com/Spaceman-Collective/kyogen-mint/internal/domain/nft"
)

// off-chain metadata の上限サイズ
const maxMetadataBytes = 2 << 20

// AssetReader は token metadata アカウントと、その uri が指す JSON を解決します。
type AssetReader struct {
	accounts AccountSource
	http     *http.Client
}

var _ appmint.AssetReader = (*AssetReader)(nil)

// NewAssetReader は timeout <= 0 の場合 15 秒を使います。
func NewAssetReader(accounts AccountSource, timeout time.Duration) *AssetReader {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &AssetReader{
		accounts: accounts,
		http:     &http.Client{Timeout: timeout},
	}
}

func (r *AssetReader) FetchDigitalAsset(ctx context.Context, mint common.PublicKey) (nftdom.DigitalAsset, error) {
	metaAddr, err := MetadataPDA(mint)
	if err != nil {
		return nftdom.DigitalAsset{}, err
	}

	data, err := r.accounts.AccountData(ctx, metaAddr)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nftdom.DigitalAsset{}, fmt.Errorf("%w: mint=%s", nftdom.ErrAssetNotFound, mint.ToBase58())
		}
		return nftdom.DigitalAsset{}, err
	}

	md, err := token_metadata.MetadataDeserialize(data)
	if err != nil {
		return nftdom.DigitalAsset{}, fmt.Errorf("MetadataDeserialize: %w", err)
	}

	return nftdom.DigitalAsset{
		Mint:            mint,
		MetadataAddress: metaAddr,
		UpdateAuthority: md.UpdateAuthority,
		Name:            nftdom.CleanURI(md.Data.Name),
		Symbol:          nftdom.CleanURI(md.Data.Symbol),
		URI:             nftdom.CleanURI(md.Data.Uri),
		IsMutable:       md.IsMutable,
	}, nil
}

func (r *AssetReader) FetchJSONMetadata(ctx context.Context, uri string) (nftdom.JSONMetadata, error) {
	u := nftdom.CleanURI(uri)
	if u == "" {
		return nftdom.JSONMetadata{}, nftdom.ErrEmptyURI
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nftdom.JSONMetadata{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.http.Do(req)
	if err != nil {
		log.Printf("[solana.asset] http request FAILED uri=%s err=%v", u, err)
		return nftdom.JSONMetadata{}, fmt.Errorf("fetch metadata: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxMetadataBytes))
	if err != nil {
		return nftdom.JSONMetadata{}, fmt.Errorf("read metadata: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("[solana.asset] fetch metadata FAILED status=%d uri=%s", resp.StatusCode, u)
		return nftdom.JSONMetadata{}, fmt.Errorf("fetch metadata failed: status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return nftdom.DecodeJSONMetadata(body)
}
