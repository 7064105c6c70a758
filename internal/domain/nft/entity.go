// internal/domain/nft/entity.go
package nft

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/blocto/solana-go-sdk/common"
)

var (
	ErrAssetNotFound   = errors.New("nft: on-chain asset not found")
	ErrEmptyURI        = errors.New("nft: metadata uri is empty")
	ErrMetadataInvalid = errors.New("nft: off-chain metadata invalid")
)

// DigitalAsset はオンチェーンの metadata アカウントから復元した情報です。
type DigitalAsset struct {
	Mint            common.PublicKey `json:"-"`
	MetadataAddress common.PublicKey `json:"-"`
	UpdateAuthority common.PublicKey `json:"-"`
	Name            string           `json:"name"`
	Symbol          string           `json:"symbol"`
	URI             string           `json:"uri"`
	IsMutable       bool             `json:"isMutable"`
}

// CleanURI は on-chain 文字列の NUL パディングを落とします。
func CleanURI(uri string) string {
	return strings.TrimSpace(strings.TrimRight(uri, "\x00"))
}

// ------------------------------------------------------
// Off-chain JSON metadata (Metaplex standard)
// ------------------------------------------------------

type JSONMetadata struct {
	Name         string      `json:"name,omitempty"`
	Symbol       string      `json:"symbol,omitempty"`
	Description  string      `json:"description,omitempty"`
	Image        string      `json:"image,omitempty"`
	AnimationURL string      `json:"animation_url,omitempty"`
	ExternalURL  string      `json:"external_url,omitempty"`
	Attributes   []Attribute `json:"attributes,omitempty"`
	Properties   *Properties `json:"properties,omitempty"`
}

type Properties struct {
	Category string `json:"category,omitempty"`
	Files    []File `json:"files,omitempty"`
}

type File struct {
	URI  string `json:"uri,omitempty"`
	Type string `json:"type,omitempty"`
}

// Attribute の value は文字列・数値どちらもあり得るため文字列に寄せて保持します。
type Attribute struct {
	TraitType string `json:"trait_type,omitempty"`
	Value     string `json:"value,omitempty"`
}

func (a *Attribute) UnmarshalJSON(b []byte) error {
	var raw struct {
		TraitType *string         `json:"trait_type"`
		Value     json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if raw.TraitType != nil {
		a.TraitType = *raw.TraitType
	}
	a.Value = ""
	if len(raw.Value) == 0 || string(raw.Value) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw.Value, &s); err == nil {
		a.Value = s
		return nil
	}
	// number / bool はそのままの表記で保持
	a.Value = strings.TrimSpace(string(raw.Value))
	return nil
}

// DisplayImage は animation_url があればそれを、無ければ image を返します。
func (m JSONMetadata) DisplayImage() string {
	if strings.TrimSpace(m.AnimationURL) != "" {
		return m.AnimationURL
	}
	return m.Image
}

// Traits は trait_type / value の両方を持つ属性だけを返します。
func (m JSONMetadata) Traits() []Attribute {
	out := make([]Attribute, 0, len(m.Attributes))
	for _, a := range m.Attributes {
		if a.TraitType == "" || a.Value == "" {
			continue
		}
		out = append(out, a)
	}
	return out
}

// DecodeJSONMetadata は off-chain JSON をデコードします。
func DecodeJSONMetadata(data []byte) (JSONMetadata, error) {
	var m JSONMetadata
	if err := json.Unmarshal(data, &m); err != nil {
		return JSONMetadata{}, fmt.Errorf("%w: %v", ErrMetadataInvalid, err)
	}
	return m, nil
}
