package solana

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/blocto/solana-go-sdk/client"
	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"

	"github.com/mintly-cc/mintly/client/solana/txsubmitter"
)

type (
	// Client builds, signs and sends the token issuance transactions. Every transaction
	// is confirmed (by default until "confirmed" commitment level) before the method
	// returns. Errors are returned as *LedgerError.
	Client struct {
		rpc        rpcClient
		log        *slog.Logger
		submitOpts []txsubmitter.Option
	}

	Option func(*Client)

	CreateMintParams struct {
		Payer types.Account
		// keypair of the new mint account, signs the account creation
		Mint            types.Account
		Decimals        uint8
		MintAuthority   common.PublicKey
		FreezeAuthority *common.PublicKey
	}

	MintToParams struct {
		Payer       types.Account
		Authority   types.Account
		Mint        common.PublicKey
		Destination common.PublicKey
		Amount      uint64
	}

	CreateMetadataParams struct {
		Payer types.Account
		// mint authority is also the update authority and verified creator of the token
		MintAuthority types.Account
		Mint          common.PublicKey
		Name          string
		Symbol        string
		URI           string
		IsMutable     bool
	}
)

// WithPollInterval sets how often transaction status is polled while waiting for confirmation.
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) {
		c.submitOpts = append(c.submitOpts, txsubmitter.WithPollInterval(d))
	}
}

func WithConfirmationTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.submitOpts = append(c.submitOpts, txsubmitter.WithTimeout(d))
	}
}

func WithCommitment(commitment string) Option {
	return func(c *Client) {
		c.submitOpts = append(c.submitOpts, txsubmitter.WithCommitment(commitment))
	}
}

// New returns client of the RPC node at "endpoint".
func New(endpoint string, log *slog.Logger, opts ...Option) *Client {
	return newClient(&sdkClient{c: client.NewClient(endpoint)}, log, opts...)
}

func newClient(rpc rpcClient, log *slog.Logger, opts ...Option) *Client {
	c := &Client{rpc: rpc, log: log}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetBalance returns balance of the account in lamports.
func (c *Client) GetBalance(ctx context.Context, address common.PublicKey) (uint64, error) {
	balance, err := c.rpc.GetBalance(ctx, address.ToBase58())
	if err != nil {
		return 0, classify("get balance", err)
	}
	return balance, nil
}

// GetAccountInfo returns nil when the account doesn't exist.
func (c *Client) GetAccountInfo(ctx context.Context, address common.PublicKey) (*AccountInfo, error) {
	info, err := c.rpc.GetAccountInfo(ctx, address.ToBase58())
	if err != nil {
		return nil, classify("get account info", err)
	}
	return info, nil
}

func (c *Client) GetMint(ctx context.Context, mint common.PublicKey) (*MintInfo, error) {
	info, err := c.GetAccountInfo(ctx, mint)
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, &LedgerError{Op: "get mint", Kind: ErrAccountNotFound, Err: fmt.Errorf("mint %s", mint.ToBase58())}
	}
	m, err := ParseMint(info.Data)
	if err != nil {
		return nil, &LedgerError{Op: "get mint", Err: err}
	}
	return m, nil
}

/*
CreateMint creates and initializes the mint account in a single transaction.
The account is funded to be rent exempt by the payer.
*/
func (c *Client) CreateMint(ctx context.Context, p CreateMintParams) (string, error) {
	const op = "create mint"
	rent, err := c.rpc.GetMinimumBalanceForRentExemption(ctx, MintAccountSize)
	if err != nil {
		return "", classify(op, err)
	}
	return c.send(ctx, op, p.Payer, []types.Account{p.Mint},
		createAccountInstruction(p.Payer.PublicKey, p.Mint.PublicKey, common.TokenProgramID, rent, MintAccountSize),
		initializeMintInstruction(p.Mint.PublicKey, p.Decimals, p.MintAuthority, p.FreezeAuthority),
	)
}

/*
GetOrCreateHolderAccount returns the associated token account of "owner" for the
mint, creating it when it doesn't exist. Signature is empty when nothing was sent.
After creation the account must be readable, otherwise ErrAccountNotFound is returned
(the node may lag behind, so callers should retry).
*/
func (c *Client) GetOrCreateHolderAccount(ctx context.Context, payer types.Account, owner, mint common.PublicKey) (common.PublicKey, string, error) {
	const op = "get or create holder account"
	holder, err := DeriveHolderAddress(owner, mint)
	if err != nil {
		return common.PublicKey{}, "", &LedgerError{Op: op, Err: err}
	}
	info, err := c.GetAccountInfo(ctx, holder)
	if err != nil {
		return common.PublicKey{}, "", err
	}
	if info != nil {
		c.log.DebugContext(ctx, "holder account exists", slog.String("address", holder.ToBase58()))
		return holder, "", nil
	}

	sig, err := c.send(ctx, op, payer, nil, createHolderAccountInstruction(payer.PublicKey, holder, owner, mint))
	if err != nil {
		return common.PublicKey{}, sig, err
	}
	if info, err = c.GetAccountInfo(ctx, holder); err != nil {
		return common.PublicKey{}, sig, err
	}
	if info == nil {
		return common.PublicKey{}, sig, &LedgerError{Op: op, Kind: ErrAccountNotFound, Err: fmt.Errorf("holder account %s not visible after creation", holder.ToBase58())}
	}
	return holder, sig, nil
}

func (c *Client) MintTo(ctx context.Context, p MintToParams) (string, error) {
	return c.send(ctx, "mint to", p.Payer, []types.Account{p.Authority},
		mintToInstruction(p.Mint, p.Destination, p.Authority.PublicKey, p.Amount),
	)
}

/*
CreateMetadataAccount attaches token metadata to the mint. The mint authority is
the update authority and the only (verified) creator with 100% share, seller fee
is zero. Returns address of the metadata account.
*/
func (c *Client) CreateMetadataAccount(ctx context.Context, p CreateMetadataParams) (common.PublicKey, string, error) {
	const op = "create metadata account"
	metadataAddr, err := DeriveMetadataAddress(p.Mint)
	if err != nil {
		return common.PublicKey{}, "", &LedgerError{Op: op, Err: err}
	}
	sig, err := c.send(ctx, op, p.Payer, []types.Account{p.MintAuthority},
		createMetadataAccountInstruction(metadataAddr, p),
	)
	if err != nil {
		return common.PublicKey{}, sig, err
	}
	return metadataAddr, sig, nil
}

// RequestAirdrop asks the network faucet for lamports and waits until the transfer is confirmed.
func (c *Client) RequestAirdrop(ctx context.Context, address common.PublicKey, lamports uint64) (string, error) {
	const op = "request airdrop"
	sig, err := c.rpc.RequestAirdrop(ctx, address.ToBase58(), lamports)
	if err != nil {
		return "", classify(op, err)
	}
	sub := &txsubmitter.TxSubmission{Description: "airdrop", Signature: sig}
	if err := sub.ToBatch(c.rpc, c.log, c.submitOpts...).Confirm(ctx); err != nil {
		return sig, classify(op, err)
	}
	return sig, nil
}

func (c *Client) send(ctx context.Context, op string, payer types.Account, signers []types.Account, instructions ...types.Instruction) (string, error) {
	blockhash, err := c.rpc.GetLatestBlockhash(ctx)
	if err != nil {
		return "", classify(op, fmt.Errorf("getting latest blockhash: %w", err))
	}
	tx, err := types.NewTransaction(types.NewTransactionParam{
		Message: types.NewMessage(types.NewMessageParam{
			FeePayer:        payer.PublicKey,
			RecentBlockhash: blockhash,
			Instructions:    instructions,
		}),
		Signers: uniqueSigners(append([]types.Account{payer}, signers...)),
	})
	if err != nil {
		return "", &LedgerError{Op: op, Err: fmt.Errorf("building transaction: %w", err)}
	}

	sub := txsubmitter.New(op, tx)
	if err := sub.ToBatch(c.rpc, c.log, c.submitOpts...).SendTx(ctx, true); err != nil {
		return sub.Signature, classify(op, err)
	}
	c.log.DebugContext(ctx, "transaction confirmed", slog.String("op", op), slog.String("signature", sub.Signature))
	return sub.Signature, nil
}

// uniqueSigners drops repeated signers, ie when payer is also the mint authority.
func uniqueSigners(signers []types.Account) []types.Account {
	seen := make(map[common.PublicKey]struct{}, len(signers))
	res := make([]types.Account, 0, len(signers))
	for _, s := range signers {
		if _, ok := seen[s.PublicKey]; ok {
			continue
		}
		seen[s.PublicKey] = struct{}{}
		res = append(res, s)
	}
	return res
}
