// internal/infra/solana/programs.go
package solana

import (
	"fmt"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/metaplex/token_metadata"
)

// Solana Devnet RPC endpoint (default)
const DevnetEndpoint = "https://api.devnet.solana.com"

// well-known program / sysvar ids
var (
	CandyMachineProgramID    = common.PublicKeyFromString("CndyV3LdqHUfDLmE5naZjVN8rBZz4tqhdefbAnjHG3JR")
	CandyGuardProgramID      = common.PublicKeyFromString("Guard1JwRhJkVH6XZhzoYxeBVQe872VH6QggF4BWmS9g")
	TokenMetadataProgramID   = common.PublicKeyFromString("metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s")
	TokenProgramID           = common.PublicKeyFromString("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")
	AssociatedTokenProgramID = common.PublicKeyFromString("ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL")
	SystemProgramID          = common.PublicKeyFromString("11111111111111111111111111111111")
	ComputeBudgetProgramID   = common.PublicKeyFromString("ComputeBudget111111111111111111111111111111")
	AuthRulesProgramID       = common.PublicKeyFromString("auth9SigNpDKz4sJJ1DfCTuZrZNSAgh9sFD3rboVmgg")

	SysvarInstructionsID = common.PublicKeyFromString("Sysvar1nstructions1111111111111111111111111")
	SysvarSlotHashesID   = common.PublicKeyFromString("SysvarS1otHashes111111111111111111111111111")
)

// ============================================================
// PDA
// ============================================================

// CandyMachineAuthorityPDA = ["candy_machine", candyMachine] @ candy machine core
func CandyMachineAuthorityPDA(candyMachine common.PublicKey) (common.PublicKey, error) {
	return findPDA(CandyMachineProgramID,
		[]byte("candy_machine"),
		candyMachine.Bytes(),
	)
}

// MetadataPDA は token metadata アカウントのアドレスです。
func MetadataPDA(mint common.PublicKey) (common.PublicKey, error) {
	pk, err := token_metadata.GetTokenMetaPubkey(mint)
	if err != nil {
		return common.PublicKey{}, fmt.Errorf("GetTokenMetaPubkey: %w", err)
	}
	return pk, nil
}

// MasterEditionPDA は master edition アカウントのアドレスです。
func MasterEditionPDA(mint common.PublicKey) (common.PublicKey, error) {
	pk, err := token_metadata.GetMasterEdition(mint)
	if err != nil {
		return common.PublicKey{}, fmt.Errorf("GetMasterEdition: %w", err)
	}
	return pk, nil
}

// TokenRecordPDA = ["metadata", tm, mint, "token_record", token] @ token metadata（pNFT 用）
func TokenRecordPDA(mint, token common.PublicKey) (common.PublicKey, error) {
	return findPDA(TokenMetadataProgramID,
		[]byte("metadata"),
		TokenMetadataProgramID.Bytes(),
		mint.Bytes(),
		[]byte("token_record"),
		token.Bytes(),
	)
}

// CollectionDelegatePDA = ["metadata", tm, collectionMint, "collection_delegate", updateAuthority, delegate]
func CollectionDelegatePDA(collectionMint, updateAuthority, delegate common.PublicKey) (common.PublicKey, error) {
	return findPDA(TokenMetadataProgramID,
		[]byte("metadata"),
		TokenMetadataProgramID.Bytes(),
		collectionMint.Bytes(),
		[]byte("collection_delegate"),
		updateAuthority.Bytes(),
		delegate.Bytes(),
	)
}

// MintCounterPDA = ["mint_limit", id, user, candyGuard, candyMachine] @ candy guard
func MintCounterPDA(id uint8, user, candyGuard, candyMachine common.PublicKey) (common.PublicKey, error) {
	return findPDA(CandyGuardProgramID,
		[]byte("mint_limit"),
		[]byte{id},
		user.Bytes(),
		candyGuard.Bytes(),
		candyMachine.Bytes(),
	)
}

// AllowListProofPDA = ["allow_list", merkleRoot, user, candyGuard, candyMachine] @ candy guard
func AllowListProofPDA(merkleRoot [32]byte, user, candyGuard, candyMachine common.PublicKey) (common.PublicKey, error) {
	return findPDA(CandyGuardProgramID,
		[]byte("allow_list"),
		merkleRoot[:],
		user.Bytes(),
		candyGuard.Bytes(),
		candyMachine.Bytes(),
	)
}

func findPDA(program common.PublicKey, seeds ...[]byte) (common.PublicKey, error) {
	pk, _, err := common.FindProgramAddress(seeds, program)
	if err != nil {
		return common.PublicKey{}, fmt.Errorf("solana: find program address: %w", err)
	}
	return pk, nil
}
