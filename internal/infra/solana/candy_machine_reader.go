// internal/infra/solana/candy_machine_reader.go
package solana

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/blocto/solana-go-sdk/common"

	"github.com/Spaceman-Collective/kyogen-mint/internal/application/eligibility"
	cmdom "github.com/Spaceman-Collective/kyogen-mint/internal/domain/candymachine"
)

// candy machine core v3 アカウントのレイアウト（先頭の固定長部分のみ）
//
//	[0..8)     anchor discriminator
//	[8]        version
//	[9]        token_standard
//	[10..16)   features
//	[16..48)   authority
//	[48..80)   mint_authority
//	[80..112)  collection_mint
//	[112..120) items_redeemed (u64 LE)
//	[120..128) data.items_available (u64 LE)
const (
	cmOffsetTokenStandard  = 9
	cmOffsetAuthority      = 16
	cmOffsetMintAuthority  = 48
	cmOffsetCollectionMint = 80
	cmOffsetItemsRedeemed  = 112
	cmOffsetItemsAvailable = 120
	cmMinLen               = 128
)

// CandyMachineReader は candy machine アカウントを読み出します。
type CandyMachineReader struct {
	accounts AccountSource
}

var _ eligibility.MachineReader = (*CandyMachineReader)(nil)

func NewCandyMachineReader(accounts AccountSource) *CandyMachineReader {
	return &CandyMachineReader{accounts: accounts}
}

func (r *CandyMachineReader) ReadCandyMachine(ctx context.Context, address common.PublicKey) (cmdom.CandyMachine, error) {
	var zero common.PublicKey
	if address == zero {
		return cmdom.CandyMachine{}, cmdom.ErrInvalidAddress
	}

	data, err := r.accounts.AccountData(ctx, address)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return cmdom.CandyMachine{}, fmt.Errorf("%w: %s", cmdom.ErrNotFound, address.ToBase58())
		}
		return cmdom.CandyMachine{}, err
	}
	return DecodeCandyMachine(address, data)
}

// DecodeCandyMachine はアカウント data から CandyMachine を復元します。
func DecodeCandyMachine(address common.PublicKey, data []byte) (cmdom.CandyMachine, error) {
	if len(data) < cmMinLen {
		return cmdom.CandyMachine{}, fmt.Errorf("%w: len=%d want>=%d", cmdom.ErrInvalidData, len(data), cmMinLen)
	}

	cm := cmdom.CandyMachine{
		Address:        address,
		TokenStandard:  cmdom.TokenStandard(data[cmOffsetTokenStandard]),
		Authority:      common.PublicKeyFromBytes(data[cmOffsetAuthority : cmOffsetAuthority+32]),
		MintAuthority:  common.PublicKeyFromBytes(data[cmOffsetMintAuthority : cmOffsetMintAuthority+32]),
		CollectionMint: common.PublicKeyFromBytes(data[cmOffsetCollectionMint : cmOffsetCollectionMint+32]),
		ItemsRedeemed:  binary.LittleEndian.Uint64(data[cmOffsetItemsRedeemed : cmOffsetItemsRedeemed+8]),
		ItemsAvailable: binary.LittleEndian.Uint64(data[cmOffsetItemsAvailable : cmOffsetItemsAvailable+8]),
	}
	if cm.TokenStandard > cmdom.TokenStandardProgrammableNonFungible {
		return cmdom.CandyMachine{}, fmt.Errorf("%w: token_standard=%d", cmdom.ErrInvalidData, cm.TokenStandard)
	}
	return cm, nil
}
