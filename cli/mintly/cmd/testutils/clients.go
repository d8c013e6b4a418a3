package testutils

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/blocto/solana-go-sdk/common"
	soltypes "github.com/blocto/solana-go-sdk/types"

	"github.com/mintly-cc/mintly/cli/mintly/cmd/types"
	"github.com/mintly-cc/mintly/client/solana"
	"github.com/mintly-cc/mintly/wallet/issuance"
	"github.com/mintly-cc/mintly/wallet/metadata"
	"github.com/mintly-cc/mintly/wallet/upload"
)

/*
MockLedger keeps the created accounts in memory. Behaviour of individual calls can
be overridden by setting the func fields.
*/
type MockLedger struct {
	mu       sync.Mutex
	Balances map[common.PublicKey]uint64
	Mints    map[common.PublicKey]*solana.MintInfo
	Metadata map[common.PublicKey]solana.CreateMetadataParams
	Calls    []string
	sigs     int

	CreateMintFn func(ctx context.Context, p solana.CreateMintParams) (string, error)
}

func NewMockLedger() *MockLedger {
	return &MockLedger{
		Balances: map[common.PublicKey]uint64{},
		Mints:    map[common.PublicKey]*solana.MintInfo{},
		Metadata: map[common.PublicKey]solana.CreateMetadataParams{},
	}
}

func (m *MockLedger) call(name string) string {
	m.Calls = append(m.Calls, name)
	m.sigs++
	return fmt.Sprintf("sig-%d", m.sigs)
}

func (m *MockLedger) GetBalance(ctx context.Context, address common.PublicKey) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.call("GetBalance")
	return m.Balances[address], nil
}

func (m *MockLedger) GetAccountInfo(ctx context.Context, address common.PublicKey) (*solana.AccountInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.call("GetAccountInfo")
	if _, ok := m.Mints[address]; ok {
		return &solana.AccountInfo{Lamports: 1, Data: make([]byte, solana.MintAccountSize)}, nil
	}
	for mint := range m.Metadata {
		if addr, _ := solana.DeriveMetadataAddress(mint); addr == address {
			return &solana.AccountInfo{Lamports: 1, Data: []byte{4}}, nil
		}
	}
	return nil, nil
}

func (m *MockLedger) GetMint(ctx context.Context, mint common.PublicKey) (*solana.MintInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.call("GetMint")
	if info, ok := m.Mints[mint]; ok {
		return info, nil
	}
	return nil, &solana.LedgerError{Op: "get mint", Kind: solana.ErrAccountNotFound, Err: solana.ErrAccountNotFound}
}

func (m *MockLedger) CreateMint(ctx context.Context, p solana.CreateMintParams) (string, error) {
	if m.CreateMintFn != nil {
		return m.CreateMintFn(ctx, p)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	sig := m.call("CreateMint")
	authority := p.MintAuthority
	m.Mints[p.Mint.PublicKey] = &solana.MintInfo{MintAuthority: &authority, Decimals: p.Decimals, IsInitialized: true, FreezeAuthority: p.FreezeAuthority}
	return sig, nil
}

func (m *MockLedger) GetOrCreateHolderAccount(ctx context.Context, payer soltypes.Account, owner, mint common.PublicKey) (common.PublicKey, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sig := m.call("GetOrCreateHolderAccount")
	holder, err := solana.DeriveHolderAddress(owner, mint)
	return holder, sig, err
}

func (m *MockLedger) MintTo(ctx context.Context, p solana.MintToParams) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sig := m.call("MintTo")
	info, ok := m.Mints[p.Mint]
	if !ok {
		return "", &solana.LedgerError{Op: "mint to", Kind: solana.ErrAccountNotFound, Err: solana.ErrAccountNotFound}
	}
	info.Supply += p.Amount
	return sig, nil
}

func (m *MockLedger) CreateMetadataAccount(ctx context.Context, p solana.CreateMetadataParams) (common.PublicKey, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sig := m.call("CreateMetadataAccount")
	m.Metadata[p.Mint] = p
	addr, err := solana.DeriveMetadataAddress(p.Mint)
	return addr, sig, err
}

func (m *MockLedger) RequestAirdrop(ctx context.Context, address common.PublicKey, lamports uint64) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sig := m.call("RequestAirdrop")
	m.Balances[address] += lamports
	return sig, nil
}

type MockUploader struct {
	Uploads []*metadata.Descriptor
	Err     error
}

func (m *MockUploader) Upload(ctx context.Context, image *upload.Asset, d *metadata.Descriptor, creator string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	m.Uploads = append(m.Uploads, d)
	return fmt.Sprintf("https://ipfs.io/ipfs/bafy%d", len(m.Uploads)), nil
}

// MockClientFactory returns the same mock clients for every call and records requested endpoints.
type MockClientFactory struct {
	LedgerMock   *MockLedger
	UploaderMock *MockUploader
	Endpoints    []string
	UploaderCfgs []types.UploaderConfig
}

func NewMockClientFactory() *MockClientFactory {
	return &MockClientFactory{
		LedgerMock:   NewMockLedger(),
		UploaderMock: &MockUploader{},
	}
}

func (f *MockClientFactory) Ledger(endpoint string, log *slog.Logger) types.Ledger {
	f.Endpoints = append(f.Endpoints, endpoint)
	return f.LedgerMock
}

func (f *MockClientFactory) Uploader(cfg types.UploaderConfig, log *slog.Logger) (issuance.Uploader, error) {
	f.UploaderCfgs = append(f.UploaderCfgs, cfg)
	return f.UploaderMock, nil
}
