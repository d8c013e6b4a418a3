package solana

import (
	"fmt"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/metaplex/token_metadata"
	"github.com/blocto/solana-go-sdk/program/token"
)

type (
	AccountInfo struct {
		Lamports   uint64
		Executable bool
		Data       []byte
	}

	// MintInfo is the decoded state of a SPL token mint account.
	MintInfo = token.MintAccount
)

/*
DeriveMetadataAddress returns address of the token metadata account of the mint,
ie the program derived address of seeds ["metadata", program ID, mint].
*/
func DeriveMetadataAddress(mint common.PublicKey) (common.PublicKey, error) {
	pda, err := token_metadata.GetTokenMetaPubkey(mint)
	if err != nil {
		return common.PublicKey{}, fmt.Errorf("deriving metadata address: %w", err)
	}
	return pda, nil
}

// DeriveHolderAddress returns address of the associated token account of "owner" for "mint".
func DeriveHolderAddress(owner, mint common.PublicKey) (common.PublicKey, error) {
	seeds := [][]byte{
		owner.Bytes(),
		common.TokenProgramID.Bytes(),
		mint.Bytes(),
	}
	pda, _, err := common.FindProgramAddress(seeds, common.SPLAssociatedTokenAccountProgramID)
	if err != nil {
		return common.PublicKey{}, fmt.Errorf("deriving holder address: %w", err)
	}
	return pda, nil
}

// ParseMint decodes the data of a SPL token mint account.
func ParseMint(data []byte) (*MintInfo, error) {
	m, err := token.MintAccountFromData(data)
	if err != nil {
		return nil, fmt.Errorf("decoding mint account of %d bytes: %w", len(data), err)
	}
	return &m, nil
}
