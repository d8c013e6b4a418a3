package solana

import (
	"encoding/binary"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/metaplex/token_metadata"
	"github.com/blocto/solana-go-sdk/program/token"
	"github.com/blocto/solana-go-sdk/types"
)

const (
	// size of the SPL token mint account
	MintAccountSize = token.MintAccountSize

	systemCreateAccount  = 0
	tokenMintTo          = 7
	tokenInitializeMint2 = 20
	ataCreateIdempotent  = 1
)

var MetadataProgramID = common.MetaplexTokenMetaProgramID

func createAccountInstruction(from, newAccount, owner common.PublicKey, lamports, space uint64) types.Instruction {
	data := binary.LittleEndian.AppendUint32(nil, systemCreateAccount)
	data = binary.LittleEndian.AppendUint64(data, lamports)
	data = binary.LittleEndian.AppendUint64(data, space)
	data = append(data, owner.Bytes()...)
	return types.Instruction{
		ProgramID: common.SystemProgramID,
		Accounts: []types.AccountMeta{
			{PubKey: from, IsSigner: true, IsWritable: true},
			{PubKey: newAccount, IsSigner: true, IsWritable: true},
		},
		Data: data,
	}
}

// initializeMintInstruction builds InitializeMint2, freeze authority is optional.
func initializeMintInstruction(mint common.PublicKey, decimals uint8, mintAuthority common.PublicKey, freezeAuthority *common.PublicKey) types.Instruction {
	data := []byte{tokenInitializeMint2, decimals}
	data = append(data, mintAuthority.Bytes()...)
	if freezeAuthority != nil {
		data = append(data, 1)
		data = append(data, freezeAuthority.Bytes()...)
	} else {
		data = append(data, 0)
	}
	return types.Instruction{
		ProgramID: common.TokenProgramID,
		Accounts: []types.AccountMeta{
			{PubKey: mint, IsSigner: false, IsWritable: true},
		},
		Data: data,
	}
}

// createHolderAccountInstruction creates associated token account, it is no-op when the account exists.
func createHolderAccountInstruction(payer, holder, owner, mint common.PublicKey) types.Instruction {
	return types.Instruction{
		ProgramID: common.SPLAssociatedTokenAccountProgramID,
		Accounts: []types.AccountMeta{
			{PubKey: payer, IsSigner: true, IsWritable: true},
			{PubKey: holder, IsSigner: false, IsWritable: true},
			{PubKey: owner, IsSigner: false, IsWritable: false},
			{PubKey: mint, IsSigner: false, IsWritable: false},
			{PubKey: common.SystemProgramID, IsSigner: false, IsWritable: false},
			{PubKey: common.TokenProgramID, IsSigner: false, IsWritable: false},
		},
		Data: []byte{ataCreateIdempotent},
	}
}

func mintToInstruction(mint, destination, authority common.PublicKey, amount uint64) types.Instruction {
	data := binary.LittleEndian.AppendUint64([]byte{tokenMintTo}, amount)
	return types.Instruction{
		ProgramID: common.TokenProgramID,
		Accounts: []types.AccountMeta{
			{PubKey: mint, IsSigner: false, IsWritable: true},
			{PubKey: destination, IsSigner: false, IsWritable: true},
			{PubKey: authority, IsSigner: true, IsWritable: false},
		},
		Data: data,
	}
}

/*
createMetadataAccountInstruction builds CreateMetadataAccountV3 of the token metadata
program. The mint authority is the update authority and the only, verified,
creator. Collection, uses and collection details are not set.
*/
func createMetadataAccountInstruction(metadata common.PublicKey, p CreateMetadataParams) types.Instruction {
	authority := p.MintAuthority.PublicKey
	creators := []token_metadata.Creator{{Address: authority, Verified: true, Share: 100}}
	return token_metadata.CreateMetadataAccountV3(token_metadata.CreateMetadataAccountV3Param{
		Metadata:                metadata,
		Mint:                    p.Mint,
		MintAuthority:           authority,
		Payer:                   p.Payer.PublicKey,
		UpdateAuthority:         authority,
		UpdateAuthorityIsSigner: true,
		IsMutable:               p.IsMutable,
		Data: token_metadata.DataV2{
			Name:     p.Name,
			Symbol:   p.Symbol,
			Uri:      p.URI,
			Creators: &creators,
		},
	})
}
