// internal/infra/solana/candy_guard_instructions.go
package solana

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/near/borsh-go"

	appmint "github.com/Spaceman-Collective/kyogen-mint/internal/application/mint"
)

var ErrGateTokenMissing = errors.New("candy guard: wallet does not hold the gate token")

// compute budget: SetComputeUnitLimit = 2
const computeBudgetSetUnitLimit byte = 2

// candy guard の GuardType（route 用）
const guardTypeAllowList uint8 = 8

var (
	discMintV2 = anchorDiscriminator("mint_v2")
	discRoute  = anchorDiscriminator("route")
)

func anchorDiscriminator(name string) []byte {
	sum := sha256.Sum256([]byte("global:" + name))
	return sum[:8]
}

// mintV2(mint_args: Vec<u8>, label: Option<String>)
type mintV2Args struct {
	MintArgs []byte
	Label    *string
}

// route(args: RouteArgs { guard: GuardType, data: Vec<u8> }, label: Option<String>)
type routeArgs struct {
	Guard uint8
	Data  []byte
	Label *string
}

// InstructionFactory は Candy Guard / Compute Budget の命令をエンコードします。
type InstructionFactory struct{}

var _ appmint.InstructionFactory = InstructionFactory{}

func NewInstructionFactory() InstructionFactory { return InstructionFactory{} }

// ComputeUnitLimit は SetComputeUnitLimit 命令を組み立てます（SDK に無いので手組み）。
func (InstructionFactory) ComputeUnitLimit(units uint32) types.Instruction {
	data := make([]byte, 5)
	data[0] = computeBudgetSetUnitLimit
	binary.LittleEndian.PutUint32(data[1:], units)
	return types.Instruction{
		ProgramID: ComputeBudgetProgramID,
		Accounts:  []types.AccountMeta{},
		Data:      data,
	}
}

// MintInstruction は mintV2 命令を組み立てます。
//
// Accounts:
//
//	0.  [] candy guard
//	1.  [] candy machine program
//	2.  [writable] candy machine
//	3.  [writable] candy machine authority pda
//	4.  [writable,signer] payer
//	5.  [writable,signer] minter
//	6.  [writable,signer] nft mint
//	7.  [signer] nft mint authority
//	8.  [writable] nft metadata
//	9.  [writable] nft master edition
//	10. [writable] token (ata)
//	11. [writable] token record (pNFT 以外は program id で省略)
//	12. [] collection delegate record
//	13. [] collection mint
//	14. [writable] collection metadata
//	15. [] collection master edition
//	16. [] collection update authority
//	17. [] token metadata program
//	18. [] spl token program
//	19. [] spl ata program
//	20. [] system program
//	21. [] sysvar instructions
//	22. [] recent slothashes
//	23. [] authorization rules program (省略)
//	24. [] authorization rules (省略)
//	..  guard remaining accounts
func (f InstructionFactory) MintInstruction(p appmint.MintParams) (types.Instruction, error) {
	cm := p.Machine

	cmAuthority, err := CandyMachineAuthorityPDA(cm.Address)
	if err != nil {
		return types.Instruction{}, err
	}
	nftMetadata, err := MetadataPDA(p.Asset)
	if err != nil {
		return types.Instruction{}, err
	}
	nftEdition, err := MasterEditionPDA(p.Asset)
	if err != nil {
		return types.Instruction{}, err
	}
	ata, _, err := common.FindAssociatedTokenAddress(p.Payer, p.Asset)
	if err != nil {
		return types.Instruction{}, fmt.Errorf("FindAssociatedTokenAddress: %w", err)
	}

	tokenRecord := CandyGuardProgramID
	if cm.TokenStandard.IsProgrammable() {
		if tokenRecord, err = TokenRecordPDA(p.Asset, ata); err != nil {
			return types.Instruction{}, err
		}
	}

	collectionDelegate, err := CollectionDelegatePDA(cm.CollectionMint, cm.Authority, cmAuthority)
	if err != nil {
		return types.Instruction{}, err
	}
	collectionMetadata, err := MetadataPDA(cm.CollectionMint)
	if err != nil {
		return types.Instruction{}, err
	}
	collectionEdition, err := MasterEditionPDA(cm.CollectionMint)
	if err != nil {
		return types.Instruction{}, err
	}

	accounts := []types.AccountMeta{
		{PubKey: p.CandyGuard, IsSigner: false, IsWritable: false},
		{PubKey: CandyMachineProgramID, IsSigner: false, IsWritable: false},
		{PubKey: cm.Address, IsSigner: false, IsWritable: true},
		{PubKey: cmAuthority, IsSigner: false, IsWritable: true},
		{PubKey: p.Payer, IsSigner: true, IsWritable: true},
		{PubKey: p.Payer, IsSigner: true, IsWritable: true},
		{PubKey: p.Asset, IsSigner: true, IsWritable: true},
		{PubKey: p.Payer, IsSigner: true, IsWritable: false},
		{PubKey: nftMetadata, IsSigner: false, IsWritable: true},
		{PubKey: nftEdition, IsSigner: false, IsWritable: true},
		{PubKey: ata, IsSigner: false, IsWritable: true},
		{PubKey: tokenRecord, IsSigner: false, IsWritable: tokenRecord != CandyGuardProgramID},
		{PubKey: collectionDelegate, IsSigner: false, IsWritable: false},
		{PubKey: cm.CollectionMint, IsSigner: false, IsWritable: false},
		{PubKey: collectionMetadata, IsSigner: false, IsWritable: true},
		{PubKey: collectionEdition, IsSigner: false, IsWritable: false},
		{PubKey: cm.Authority, IsSigner: false, IsWritable: false},
		{PubKey: TokenMetadataProgramID, IsSigner: false, IsWritable: false},
		{PubKey: TokenProgramID, IsSigner: false, IsWritable: false},
		{PubKey: AssociatedTokenProgramID, IsSigner: false, IsWritable: false},
		{PubKey: SystemProgramID, IsSigner: false, IsWritable: false},
		{PubKey: SysvarInstructionsID, IsSigner: false, IsWritable: false},
		{PubKey: SysvarSlotHashesID, IsSigner: false, IsWritable: false},
		{PubKey: CandyGuardProgramID, IsSigner: false, IsWritable: false},
		{PubKey: CandyGuardProgramID, IsSigner: false, IsWritable: false},
	}

	remaining, err := mintRemainingAccounts(p)
	if err != nil {
		return types.Instruction{}, err
	}
	accounts = append(accounts, remaining...)

	args, err := borsh.Serialize(mintV2Args{MintArgs: []byte{}, Label: p.Group})
	if err != nil {
		return types.Instruction{}, fmt.Errorf("borsh serialize mintV2 args: %w", err)
	}

	return types.Instruction{
		ProgramID: CandyGuardProgramID,
		Accounts:  accounts,
		Data:      append(append([]byte{}, discMintV2...), args...),
	}, nil
}

// mintRemainingAccounts は有効なガードの追加アカウントを GuardType の順に並べます。
// botTax → solPayment → tokenGate → allowList → mintLimit
func mintRemainingAccounts(p appmint.MintParams) ([]types.AccountMeta, error) {
	g := p.Guards
	var out []types.AccountMeta

	if sp := g.SolPayment; sp != nil {
		out = append(out, types.AccountMeta{PubKey: sp.Destination, IsSigner: false, IsWritable: true})
	}

	if tg := g.TokenGate; tg != nil {
		if !containsKey(p.OwnedTokens, tg.Mint) {
			return nil, fmt.Errorf("%w: mint=%s", ErrGateTokenMissing, tg.Mint.ToBase58())
		}
		gateATA, _, err := common.FindAssociatedTokenAddress(p.Payer, tg.Mint)
		if err != nil {
			return nil, fmt.Errorf("FindAssociatedTokenAddress(gate): %w", err)
		}
		out = append(out, types.AccountMeta{PubKey: gateATA, IsSigner: false, IsWritable: false})
	}

	if al := g.AllowList; al != nil {
		proofPDA, err := AllowListProofPDA(al.MerkleRoot, p.Payer, p.CandyGuard, p.Machine.Address)
		if err != nil {
			return nil, err
		}
		out = append(out, types.AccountMeta{PubKey: proofPDA, IsSigner: false, IsWritable: false})
	}

	if ml := g.MintLimit; ml != nil {
		counter, err := MintCounterPDA(ml.ID, p.Payer, p.CandyGuard, p.Machine.Address)
		if err != nil {
			return nil, err
		}
		out = append(out, types.AccountMeta{PubKey: counter, IsSigner: false, IsWritable: true})
	}

	return out, nil
}

// RouteInstruction は allowList 証明を事前登録する route 命令を組み立てます。
// route が不要なガードセットでは (nil, nil)。
//
// Accounts:
//
//	0. [] candy guard
//	1. [writable] candy machine
//	2. [writable,signer] payer
//	3. [writable] allow list proof pda
//	4. [] system program
//	5. [] minter
func (InstructionFactory) RouteInstruction(p appmint.RouteParams) (*types.Instruction, error) {
	if !p.Guards.RequiresRoute() {
		return nil, nil
	}
	al := p.Guards.AllowList

	proofPDA, err := AllowListProofPDA(al.MerkleRoot, p.Payer, p.CandyGuard, p.Machine.Address)
	if err != nil {
		return nil, err
	}

	proof, err := borsh.Serialize(al.Proof)
	if err != nil {
		return nil, fmt.Errorf("borsh serialize merkle proof: %w", err)
	}
	args, err := borsh.Serialize(routeArgs{Guard: guardTypeAllowList, Data: proof, Label: p.Group})
	if err != nil {
		return nil, fmt.Errorf("borsh serialize route args: %w", err)
	}

	ix := types.Instruction{
		ProgramID: CandyGuardProgramID,
		Accounts: []types.AccountMeta{
			{PubKey: p.CandyGuard, IsSigner: false, IsWritable: false},
			{PubKey: p.Machine.Address, IsSigner: false, IsWritable: true},
			{PubKey: p.Payer, IsSigner: true, IsWritable: true},
			{PubKey: proofPDA, IsSigner: false, IsWritable: true},
			{PubKey: SystemProgramID, IsSigner: false, IsWritable: false},
			{PubKey: p.Payer, IsSigner: false, IsWritable: false},
		},
		Data: append(append([]byte{}, discRoute...), args...),
	}
	return &ix, nil
}

func containsKey(keys []common.PublicKey, k common.PublicKey) bool {
	for _, x := range keys {
		if x == k {
			return true
		}
	}
	return false
}

