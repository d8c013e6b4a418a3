package solana

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/stretchr/testify/require"

	"github.com/mintly-cc/mintly/client/solana/txsubmitter"
	"github.com/mintly-cc/mintly/internal/testutils/logger"
)

type mockRpcClient struct {
	getBalance         func(ctx context.Context, address string) (uint64, error)
	getAccountInfo     func(ctx context.Context, address string) (*AccountInfo, error)
	getRent            func(ctx context.Context, size uint64) (uint64, error)
	requestAirdrop     func(ctx context.Context, address string, lamports uint64) (string, error)
	sendTransaction    func(ctx context.Context, tx types.Transaction) (string, error)
	getSignatureStatus func(ctx context.Context, signature string) (*txsubmitter.SignatureStatus, error)

	blockhash string
	sent      []types.Transaction
}

func newMockRpcClient() *mockRpcClient {
	m := &mockRpcClient{blockhash: types.NewAccount().PublicKey.ToBase58()}
	m.getAccountInfo = func(ctx context.Context, address string) (*AccountInfo, error) {
		return nil, nil
	}
	m.getRent = func(ctx context.Context, size uint64) (uint64, error) {
		return 1461600, nil
	}
	m.sendTransaction = func(ctx context.Context, tx types.Transaction) (string, error) {
		return fmt.Sprintf("sig%d", len(m.sent)), nil
	}
	m.getSignatureStatus = func(ctx context.Context, signature string) (*txsubmitter.SignatureStatus, error) {
		return &txsubmitter.SignatureStatus{Slot: 1, Commitment: txsubmitter.CommitmentConfirmed}, nil
	}
	return m
}

func (m *mockRpcClient) GetBalance(ctx context.Context, address string) (uint64, error) {
	return m.getBalance(ctx, address)
}

func (m *mockRpcClient) GetAccountInfo(ctx context.Context, address string) (*AccountInfo, error) {
	return m.getAccountInfo(ctx, address)
}

func (m *mockRpcClient) GetLatestBlockhash(ctx context.Context) (string, error) {
	return m.blockhash, nil
}

func (m *mockRpcClient) GetMinimumBalanceForRentExemption(ctx context.Context, size uint64) (uint64, error) {
	return m.getRent(ctx, size)
}

func (m *mockRpcClient) RequestAirdrop(ctx context.Context, address string, lamports uint64) (string, error) {
	return m.requestAirdrop(ctx, address, lamports)
}

func (m *mockRpcClient) SendTransaction(ctx context.Context, tx types.Transaction) (string, error) {
	sig, err := m.sendTransaction(ctx, tx)
	if err == nil {
		m.sent = append(m.sent, tx)
	}
	return sig, err
}

func (m *mockRpcClient) GetSignatureStatus(ctx context.Context, signature string) (*txsubmitter.SignatureStatus, error) {
	return m.getSignatureStatus(ctx, signature)
}

func newTestClient(t *testing.T, rpc rpcClient) *Client {
	return newClient(rpc, logger.New(t), WithPollInterval(time.Millisecond), WithConfirmationTimeout(time.Second))
}

func TestClient_GetBalance(t *testing.T) {
	acc := types.NewAccount()
	rpc := newMockRpcClient()
	rpc.getBalance = func(ctx context.Context, address string) (uint64, error) {
		require.Equal(t, acc.PublicKey.ToBase58(), address)
		return 42, nil
	}
	balance, err := newTestClient(t, rpc).GetBalance(context.Background(), acc.PublicKey)
	require.NoError(t, err)
	require.EqualValues(t, 42, balance)

	rpc.getBalance = func(ctx context.Context, address string) (uint64, error) {
		return 0, errors.New("connection refused")
	}
	_, err = newTestClient(t, rpc).GetBalance(context.Background(), acc.PublicKey)
	var le *LedgerError
	require.ErrorAs(t, err, &le)
	require.Equal(t, "get balance", le.Op)
	require.Nil(t, le.Kind)
	require.EqualError(t, err, "get balance: connection refused")
}

func TestClient_GetMint(t *testing.T) {
	mint := types.NewAccount().PublicKey
	rpc := newMockRpcClient()
	cli := newTestClient(t, rpc)

	_, err := cli.GetMint(context.Background(), mint)
	require.ErrorIs(t, err, ErrAccountNotFound)

	authority := types.NewAccount().PublicKey
	rpc.getAccountInfo = func(ctx context.Context, address string) (*AccountInfo, error) {
		return &AccountInfo{Lamports: 1461600, Data: mintData(authority, 10000, 2)}, nil
	}
	m, err := cli.GetMint(context.Background(), mint)
	require.NoError(t, err)
	require.EqualValues(t, 10000, m.Supply)
	require.EqualValues(t, 2, m.Decimals)
	require.True(t, m.IsInitialized)
	require.Equal(t, authority, *m.MintAuthority)
	require.Equal(t, authority, *m.FreezeAuthority)
}

func TestClient_CreateMint(t *testing.T) {
	payer := types.NewAccount()
	mint := types.NewAccount()
	rpc := newMockRpcClient()
	rpc.getRent = func(ctx context.Context, size uint64) (uint64, error) {
		require.EqualValues(t, MintAccountSize, size)
		return 1461600, nil
	}

	sig, err := newTestClient(t, rpc).CreateMint(context.Background(), CreateMintParams{
		Payer:           payer,
		Mint:            mint,
		Decimals:        2,
		MintAuthority:   payer.PublicKey,
		FreezeAuthority: &payer.PublicKey,
	})
	require.NoError(t, err)
	require.Equal(t, "sig0", sig)
	require.Len(t, rpc.sent, 1)
	// payer and the new mint account sign
	require.Len(t, rpc.sent[0].Signatures, 2)
}

func TestClient_GetOrCreateHolderAccount(t *testing.T) {
	payer := types.NewAccount()
	mint := types.NewAccount().PublicKey
	expHolder, err := DeriveHolderAddress(payer.PublicKey, mint)
	require.NoError(t, err)

	t.Run("exists", func(t *testing.T) {
		rpc := newMockRpcClient()
		rpc.getAccountInfo = func(ctx context.Context, address string) (*AccountInfo, error) {
			require.Equal(t, expHolder.ToBase58(), address)
			return &AccountInfo{Lamports: 1, Data: make([]byte, 165)}, nil
		}
		holder, sig, err := newTestClient(t, rpc).GetOrCreateHolderAccount(context.Background(), payer, payer.PublicKey, mint)
		require.NoError(t, err)
		require.Equal(t, expHolder, holder)
		require.Empty(t, sig)
		require.Empty(t, rpc.sent)
	})

	t.Run("created", func(t *testing.T) {
		rpc := newMockRpcClient()
		rpc.getAccountInfo = func(ctx context.Context, address string) (*AccountInfo, error) {
			if len(rpc.sent) == 0 {
				return nil, nil
			}
			return &AccountInfo{Lamports: 1, Data: make([]byte, 165)}, nil
		}
		holder, sig, err := newTestClient(t, rpc).GetOrCreateHolderAccount(context.Background(), payer, payer.PublicKey, mint)
		require.NoError(t, err)
		require.Equal(t, expHolder, holder)
		require.Equal(t, "sig0", sig)
		require.Len(t, rpc.sent, 1)
	})

	t.Run("not visible after creation", func(t *testing.T) {
		rpc := newMockRpcClient()
		_, _, err := newTestClient(t, rpc).GetOrCreateHolderAccount(context.Background(), payer, payer.PublicKey, mint)
		require.ErrorIs(t, err, ErrAccountNotFound)
		require.Len(t, rpc.sent, 1)
	})
}

func TestClient_MintTo(t *testing.T) {
	payer := types.NewAccount()
	rpc := newMockRpcClient()
	sig, err := newTestClient(t, rpc).MintTo(context.Background(), MintToParams{
		Payer:       payer,
		Authority:   payer,
		Mint:        types.NewAccount().PublicKey,
		Destination: types.NewAccount().PublicKey,
		Amount:      10000,
	})
	require.NoError(t, err)
	require.Equal(t, "sig0", sig)
	require.Len(t, rpc.sent, 1)
	// payer is the authority, it signs only once
	require.Len(t, rpc.sent[0].Signatures, 1)
}

func TestClient_CreateMetadataAccount(t *testing.T) {
	payer := types.NewAccount()
	mint := types.NewAccount().PublicKey
	rpc := newMockRpcClient()
	addr, sig, err := newTestClient(t, rpc).CreateMetadataAccount(context.Background(), CreateMetadataParams{
		Payer:         payer,
		MintAuthority: payer,
		Mint:          mint,
		Name:          "Test Token",
		Symbol:        "TST",
		URI:           "https://gw/ipfs/cid",
		IsMutable:     true,
	})
	require.NoError(t, err)
	require.Equal(t, "sig0", sig)
	expAddr, err := DeriveMetadataAddress(mint)
	require.NoError(t, err)
	require.Equal(t, expAddr, addr)
}

func TestClient_ErrorClassification(t *testing.T) {
	payer := types.NewAccount()
	params := MintToParams{Payer: payer, Authority: payer, Mint: types.NewAccount().PublicKey, Destination: types.NewAccount().PublicKey, Amount: 1}

	tests := []struct {
		name    string
		sendErr error
		status  *txsubmitter.SignatureStatus
		kind    error
	}{
		{name: "no prior credit", sendErr: errors.New("Transaction simulation failed: Attempt to debit an account but found no record of a prior credit."), kind: ErrInsufficientFunds},
		{name: "insufficient lamports", sendErr: errors.New("Transfer: insufficient lamports 100, need 1461600"), kind: ErrInsufficientFunds},
		{name: "token insufficient funds", sendErr: errors.New("custom program error: 0x1 (Error: insufficient funds)"), kind: ErrInsufficientFunds},
		{name: "account in use", sendErr: errors.New("Allocate: account Address { address: X } already in use"), kind: ErrAccountInUse},
		{name: "failed on chain", status: &txsubmitter.SignatureStatus{Commitment: txsubmitter.CommitmentConfirmed, Err: errors.New("InstructionError")}, kind: ErrTransactionFailed},
		{name: "timeout", status: &txsubmitter.SignatureStatus{Commitment: txsubmitter.CommitmentProcessed}, kind: ErrConfirmationTimeout},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rpc := newMockRpcClient()
			if tc.sendErr != nil {
				rpc.sendTransaction = func(ctx context.Context, tx types.Transaction) (string, error) {
					return "", tc.sendErr
				}
			}
			if tc.status != nil {
				rpc.getSignatureStatus = func(ctx context.Context, signature string) (*txsubmitter.SignatureStatus, error) {
					return tc.status, nil
				}
			}
			cli := newClient(rpc, logger.New(t), WithPollInterval(time.Millisecond), WithConfirmationTimeout(10*time.Millisecond))
			_, err := cli.MintTo(context.Background(), params)
			require.ErrorIs(t, err, tc.kind)
			var le *LedgerError
			require.ErrorAs(t, err, &le)
			require.Equal(t, "mint to", le.Op)
			if tc.sendErr != nil {
				require.ErrorIs(t, err, tc.sendErr)
			}
		})
	}
}

func TestClient_RequestAirdrop(t *testing.T) {
	acc := types.NewAccount()
	rpc := newMockRpcClient()
	rpc.requestAirdrop = func(ctx context.Context, address string, lamports uint64) (string, error) {
		require.Equal(t, acc.PublicKey.ToBase58(), address)
		require.EqualValues(t, 1_000_000_000, lamports)
		return "airdropSig", nil
	}
	polled := ""
	rpc.getSignatureStatus = func(ctx context.Context, signature string) (*txsubmitter.SignatureStatus, error) {
		polled = signature
		return &txsubmitter.SignatureStatus{Commitment: txsubmitter.CommitmentFinalized}, nil
	}
	sig, err := newTestClient(t, rpc).RequestAirdrop(context.Background(), acc.PublicKey, 1_000_000_000)
	require.NoError(t, err)
	require.Equal(t, "airdropSig", sig)
	require.Equal(t, "airdropSig", polled)

	rpc.requestAirdrop = func(ctx context.Context, address string, lamports uint64) (string, error) {
		return "", errors.New("airdrop request limit reached")
	}
	_, err = newTestClient(t, rpc).RequestAirdrop(context.Background(), acc.PublicKey, 1)
	require.EqualError(t, err, "request airdrop: airdrop request limit reached")
}

func Test_uniqueSigners(t *testing.T) {
	a := types.NewAccount()
	b := types.NewAccount()
	signers := uniqueSigners([]types.Account{a, b, a, b})
	require.Len(t, signers, 2)
	require.Equal(t, a.PublicKey, signers[0].PublicKey)
	require.Equal(t, b.PublicKey, signers[1].PublicKey)
}

// mintData returns initialized mint account data with "authority" as mint and freeze authority.
func mintData(authority common.PublicKey, supply uint64, decimals uint8) []byte {
	data := make([]byte, MintAccountSize)
	binary.LittleEndian.PutUint32(data[0:4], 1)
	copy(data[4:36], authority.Bytes())
	binary.LittleEndian.PutUint64(data[36:44], supply)
	data[44] = decimals
	data[45] = 1
	binary.LittleEndian.PutUint32(data[46:50], 1)
	copy(data[50:82], authority.Bytes())
	return data
}
