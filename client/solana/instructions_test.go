package solana

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/stretchr/testify/require"
)

func TestCreateAccountInstruction(t *testing.T) {
	from := types.NewAccount().PublicKey
	mint := types.NewAccount().PublicKey
	inst := createAccountInstruction(from, mint, common.TokenProgramID, 1461600, MintAccountSize)

	require.Equal(t, common.SystemProgramID, inst.ProgramID)
	require.Equal(t, []types.AccountMeta{
		{PubKey: from, IsSigner: true, IsWritable: true},
		{PubKey: mint, IsSigner: true, IsWritable: true},
	}, inst.Accounts)
	require.Len(t, inst.Data, 4+8+8+32)
	require.EqualValues(t, 0, binary.LittleEndian.Uint32(inst.Data[0:4]))
	require.EqualValues(t, 1461600, binary.LittleEndian.Uint64(inst.Data[4:12]))
	require.EqualValues(t, 82, binary.LittleEndian.Uint64(inst.Data[12:20]))
	require.Equal(t, common.TokenProgramID.Bytes(), inst.Data[20:])
}

func TestInitializeMintInstruction(t *testing.T) {
	mint := types.NewAccount().PublicKey
	authority := types.NewAccount().PublicKey

	inst := initializeMintInstruction(mint, 2, authority, &authority)
	require.Equal(t, common.TokenProgramID, inst.ProgramID)
	require.Equal(t, []types.AccountMeta{{PubKey: mint, IsWritable: true}}, inst.Accounts)
	exp := append([]byte{20, 2}, authority.Bytes()...)
	exp = append(exp, 1)
	exp = append(exp, authority.Bytes()...)
	require.Equal(t, exp, inst.Data)

	inst = initializeMintInstruction(mint, 9, authority, nil)
	require.Len(t, inst.Data, 2+32+1)
	require.EqualValues(t, 9, inst.Data[1])
	require.EqualValues(t, 0, inst.Data[34])
}

func TestCreateHolderAccountInstruction(t *testing.T) {
	payer := types.NewAccount().PublicKey
	mint := types.NewAccount().PublicKey
	holder, err := DeriveHolderAddress(payer, mint)
	require.NoError(t, err)

	inst := createHolderAccountInstruction(payer, holder, payer, mint)
	require.Equal(t, common.SPLAssociatedTokenAccountProgramID, inst.ProgramID)
	require.Equal(t, []byte{1}, inst.Data)
	require.Len(t, inst.Accounts, 6)
	require.Equal(t, types.AccountMeta{PubKey: payer, IsSigner: true, IsWritable: true}, inst.Accounts[0])
	require.Equal(t, types.AccountMeta{PubKey: holder, IsWritable: true}, inst.Accounts[1])
	require.Equal(t, mint, inst.Accounts[3].PubKey)
}

func TestMintToInstruction(t *testing.T) {
	mint := types.NewAccount().PublicKey
	dest := types.NewAccount().PublicKey
	auth := types.NewAccount().PublicKey

	inst := mintToInstruction(mint, dest, auth, 10000)
	require.Equal(t, common.TokenProgramID, inst.ProgramID)
	require.Equal(t, []byte{7, 0x10, 0x27, 0, 0, 0, 0, 0, 0}, inst.Data)
	require.Equal(t, []types.AccountMeta{
		{PubKey: mint, IsWritable: true},
		{PubKey: dest, IsWritable: true},
		{PubKey: auth, IsSigner: true},
	}, inst.Accounts)
}

func TestCreateMetadataAccountInstruction(t *testing.T) {
	mint := types.NewAccount().PublicKey
	authority := types.NewAccount().PublicKey
	payer := types.NewAccount().PublicKey
	metadataAddr, err := DeriveMetadataAddress(mint)
	require.NoError(t, err)

	p := CreateMetadataParams{
		Payer:         types.Account{PublicKey: payer},
		MintAuthority: types.Account{PublicKey: authority},
		Mint:          mint,
		Name:          "Test Token",
		Symbol:        "TST",
		URI:           "https://gw/ipfs/cid",
		IsMutable:     true,
	}
	inst := createMetadataAccountInstruction(metadataAddr, p)
	require.Equal(t, MetadataProgramID, inst.ProgramID)

	var exp bytes.Buffer
	exp.WriteByte(33)
	exp.Write([]byte{10, 0, 0, 0})
	exp.WriteString("Test Token")
	exp.Write([]byte{3, 0, 0, 0})
	exp.WriteString("TST")
	exp.Write([]byte{19, 0, 0, 0})
	exp.WriteString("https://gw/ipfs/cid")
	exp.Write([]byte{0, 0})          // seller fee basis points
	exp.Write([]byte{1, 1, 0, 0, 0}) // Some(vec of one creator)
	exp.Write(authority.Bytes())
	exp.Write([]byte{1, 100}) // verified, share
	exp.Write([]byte{0, 0})   // no collection, no uses
	exp.WriteByte(1)          // is mutable
	exp.WriteByte(0)          // no collection details
	require.Equal(t, exp.Bytes(), inst.Data)

	require.Equal(t, []types.AccountMeta{
		{PubKey: metadataAddr, IsWritable: true},
		{PubKey: mint},
		{PubKey: authority, IsSigner: true},
		{PubKey: payer, IsSigner: true, IsWritable: true},
		{PubKey: authority, IsSigner: true},
		{PubKey: common.SystemProgramID},
		{PubKey: common.SysVarRentPubkey},
	}, inst.Accounts)

	// immutable
	p.IsMutable = false
	inst = createMetadataAccountInstruction(metadataAddr, p)
	require.EqualValues(t, 0, inst.Data[len(inst.Data)-2])
	require.Equal(t, exp.Len(), len(inst.Data))
}
