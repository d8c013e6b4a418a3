package solana

import (
	"context"
	"fmt"

	"github.com/blocto/solana-go-sdk/client"
	"github.com/blocto/solana-go-sdk/types"

	"github.com/mintly-cc/mintly/client/solana/txsubmitter"
)

// rpcClient is the subset of the ledger RPC API the Client needs.
type rpcClient interface {
	txsubmitter.RpcClient
	GetBalance(ctx context.Context, address string) (uint64, error)
	// GetAccountInfo returns nil when the account doesn't exist.
	GetAccountInfo(ctx context.Context, address string) (*AccountInfo, error)
	GetLatestBlockhash(ctx context.Context) (string, error)
	GetMinimumBalanceForRentExemption(ctx context.Context, size uint64) (uint64, error)
	RequestAirdrop(ctx context.Context, address string, lamports uint64) (string, error)
}

// sdkClient adapts the SDK client to rpcClient.
type sdkClient struct {
	c *client.Client
}

func (s *sdkClient) GetBalance(ctx context.Context, address string) (uint64, error) {
	return s.c.GetBalance(ctx, address)
}

func (s *sdkClient) GetAccountInfo(ctx context.Context, address string) (*AccountInfo, error) {
	info, err := s.c.GetAccountInfo(ctx, address)
	if err != nil {
		return nil, err
	}
	// SDK returns zero value for accounts which do not exist
	if info.Lamports == 0 && len(info.Data) == 0 {
		return nil, nil
	}
	return &AccountInfo{
		Lamports:   info.Lamports,
		Executable: info.Executable,
		Data:       info.Data,
	}, nil
}

func (s *sdkClient) GetLatestBlockhash(ctx context.Context) (string, error) {
	rsp, err := s.c.GetLatestBlockhash(ctx)
	if err != nil {
		return "", err
	}
	return rsp.Blockhash, nil
}

func (s *sdkClient) GetMinimumBalanceForRentExemption(ctx context.Context, size uint64) (uint64, error) {
	return s.c.GetMinimumBalanceForRentExemption(ctx, size)
}

func (s *sdkClient) RequestAirdrop(ctx context.Context, address string, lamports uint64) (string, error) {
	return s.c.RequestAirdrop(ctx, address, lamports)
}

func (s *sdkClient) SendTransaction(ctx context.Context, tx types.Transaction) (string, error) {
	return s.c.SendTransaction(ctx, tx)
}

func (s *sdkClient) GetSignatureStatus(ctx context.Context, signature string) (*txsubmitter.SignatureStatus, error) {
	st, err := s.c.GetSignatureStatus(ctx, signature)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, nil
	}
	status := &txsubmitter.SignatureStatus{Slot: st.Slot}
	if st.ConfirmationStatus != nil {
		status.Commitment = string(*st.ConfirmationStatus)
	}
	if st.Err != nil {
		status.Err = fmt.Errorf("%v", st.Err)
	}
	return status, nil
}
