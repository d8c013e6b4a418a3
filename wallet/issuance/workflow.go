package issuance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/mintly-cc/mintly/client/solana"
	"github.com/mintly-cc/mintly/util"
	"github.com/mintly-cc/mintly/wallet/journal"
	"github.com/mintly-cc/mintly/wallet/metadata"
)

const (
	// below this wallet balance (0.1 SOL) the issuance is likely to run out of funds
	DefaultMinBalance = 100_000_000
)

var (
	ErrCannotProceed = errors.New("cannot proceed with token issuance")

	// holder account creation is retried as the freshly created mint may not be
	// visible to the RPC node yet
	DefaultRetryPolicy = util.RetryPolicy{Attempts: 3, Delay: 700 * time.Millisecond}
)

type (
	Workflow struct {
		keys     KeyStore
		metadata MetadataStore
		uploader Uploader
		ledger   Ledger
		image    ImageLoader
		journal  Journal

		mintAuthority *types.Account
		retry         util.RetryPolicy
		minBalance    uint64
		progress      func(string)
		tracer        trace.Tracer
		log           *slog.Logger
	}

	Option func(*Workflow)

	Result struct {
		Mint          common.PublicKey
		Metadata      common.PublicKey
		HolderAccount common.PublicKey
		MetadataURI   string
		Network       metadata.Network
		// human readable supply, ie "100.00"
		Supply      string
		BaseUnits   uint64
		Decimals    uint8
		Signatures  map[journal.Step]string
		ExplorerURL string
		// token (mint and metadata) was already on the ledger, nothing was done
		AlreadyExists bool
		// mint existed but the metadata did not, the missing steps were completed
		Repaired bool
	}
)

// WithMintAuthority sets the mint and freeze authority of the token, by default the wallet signer is used.
func WithMintAuthority(authority types.Account) Option {
	return func(w *Workflow) {
		w.mintAuthority = &authority
	}
}

func WithRetryPolicy(policy util.RetryPolicy) Option {
	return func(w *Workflow) {
		w.retry = policy
	}
}

func WithMinBalance(lamports uint64) Option {
	return func(w *Workflow) {
		w.minBalance = lamports
	}
}

// WithProgress sets callback which receives user facing progress messages.
func WithProgress(fn func(msg string)) Option {
	return func(w *Workflow) {
		w.progress = fn
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(w *Workflow) {
		w.tracer = tracer
	}
}

func New(deps Deps, log *slog.Logger, opts ...Option) (*Workflow, error) {
	var errs []error
	if deps.Keys == nil {
		errs = append(errs, errors.New("key store is required"))
	}
	if deps.Metadata == nil {
		errs = append(errs, errors.New("metadata store is required"))
	}
	if deps.Uploader == nil {
		errs = append(errs, errors.New("uploader is required"))
	}
	if deps.Ledger == nil {
		errs = append(errs, errors.New("ledger client is required"))
	}
	if deps.Image == nil {
		errs = append(errs, errors.New("image loader is required"))
	}
	if log == nil {
		errs = append(errs, errors.New("logger is required"))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("invalid issuance workflow dependencies: %w", err)
	}

	w := &Workflow{
		keys:       deps.Keys,
		metadata:   deps.Metadata,
		uploader:   deps.Uploader,
		ledger:     deps.Ledger,
		image:      deps.Image,
		journal:    deps.Journal,
		retry:      DefaultRetryPolicy,
		minBalance: DefaultMinBalance,
		progress:   func(string) {},
		tracer:     noop.NewTracerProvider().Tracer("issuance"),
		log:        log,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

/*
Run issues the token described by the metadata store: uploads the image and the
metadata document, creates the mint account, the wallet's holder account, mints
the supply and attaches the metadata account to the mint.

When both the mint and the metadata account already exist nothing is done and
Result.AlreadyExists is set. When only the mint exists the missing steps are
completed (supply is minted only when the current supply is zero). Completed
steps are not rolled back on failure.
*/
func (w *Workflow) Run(ctx context.Context) (_ *Result, rErr error) {
	runID := uuid.NewString()
	log := w.log.With(slog.String("run_id", runID))
	ctx, span := w.tracer.Start(ctx, "issuance.Run", trace.WithAttributes(attribute.String("run_id", runID)))
	defer func() {
		if rErr != nil {
			span.RecordError(rErr)
			span.SetStatus(codes.Error, rErr.Error())
		}
		span.End()
	}()

	signer, err := w.keys.LoadWalletSigner()
	if err != nil {
		return nil, fmt.Errorf("%w: loading wallet: %w", ErrCannotProceed, err)
	}
	mint, err := w.keys.LoadOrCreateMintIdentity()
	if err != nil {
		return nil, fmt.Errorf("%w: loading mint identity: %w", ErrCannotProceed, err)
	}
	authority := signer
	if w.mintAuthority != nil {
		authority = *w.mintAuthority
	}
	log = log.With(slog.String("mint", mint.PublicKey.ToBase58()))
	span.SetAttributes(attribute.String("mint", mint.PublicKey.ToBase58()))

	d, err := w.metadata.Load()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCannotProceed, err)
	}
	baseUnits, err := d.BaseUnits()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCannotProceed, err)
	}
	w.checkBalance(ctx, log, signer.PublicKey)

	res := &Result{
		Mint:        mint.PublicKey,
		Network:     d.Network,
		Supply:      metadata.FormatBaseUnits(baseUnits, d.Decimals),
		BaseUnits:   baseUnits,
		Decimals:    d.Decimals,
		Signatures:  map[journal.Step]string{},
		ExplorerURL: solana.ExplorerAddressURL(mint.PublicKey.ToBase58(), d.Network.String()),
	}
	if res.Metadata, err = solana.DeriveMetadataAddress(mint.PublicKey); err != nil {
		return nil, err
	}
	if res.HolderAccount, err = solana.DeriveHolderAddress(signer.PublicKey, mint.PublicKey); err != nil {
		return nil, err
	}

	mintExists, metadataExists := w.existingAccounts(ctx, log, mint.PublicKey, res.Metadata)
	if mintExists && metadataExists {
		log.InfoContext(ctx, "token already exists, nothing to do")
		w.progress(fmt.Sprintf("Token %s already exists", mint.PublicKey.ToBase58()))
		res.AlreadyExists = true
		return res, nil
	}
	var mintInfo *solana.MintInfo
	if mintExists {
		if mintInfo, err = w.repairableMint(ctx, mint.PublicKey, authority.PublicKey, d.Decimals); err != nil {
			return nil, err
		}
		log.InfoContext(ctx, "mint exists without metadata, completing the issuance")
		w.progress("Mint account exists without metadata, completing the missing steps")
		res.Repaired = true
	}

	// upload
	image, err := w.image()
	if err != nil {
		return nil, fmt.Errorf("%w: reading token image: %w", ErrCannotProceed, err)
	}
	w.progress("Uploading image and metadata...")
	if res.MetadataURI, err = w.uploader.Upload(ctx, image, d, authority.PublicKey.ToBase58()); err != nil {
		return nil, fmt.Errorf("uploading token metadata: %w", err)
	}
	w.record(ctx, log, mint, journal.Entry{Step: journal.StepUploaded, RunID: runID, URI: res.MetadataURI})
	// limit of the token metadata program, must hold before any account is created
	if len(res.MetadataURI) > metadata.MaxURILength {
		return nil, fmt.Errorf("%w: metadata URI is %d bytes, the limit is %d", ErrCannotProceed, len(res.MetadataURI), metadata.MaxURILength)
	}

	// mint account
	if !mintExists {
		w.progress("Creating mint account...")
		sig, err := w.ledger.CreateMint(ctx, solana.CreateMintParams{
			Payer:           signer,
			Mint:            mint,
			Decimals:        d.Decimals,
			MintAuthority:   authority.PublicKey,
			FreezeAuthority: &authority.PublicKey,
		})
		if err != nil {
			return nil, fmt.Errorf("creating mint account: %w", err)
		}
		res.Signatures[journal.StepMintCreated] = sig
		w.record(ctx, log, mint, journal.Entry{Step: journal.StepMintCreated, RunID: runID, Signature: sig, Address: mint.PublicKey.ToBase58()})
	}

	// holder account
	w.progress("Preparing token account...")
	err = util.Retry(ctx, w.retry, func(ctx context.Context, attempt int) error {
		holder, sig, err := w.ledger.GetOrCreateHolderAccount(ctx, signer, signer.PublicKey, mint.PublicKey)
		if err != nil {
			log.WarnContext(ctx, "failed to get or create holder account", slog.Int("attempt", attempt), slog.Any("error", err))
			return err
		}
		res.HolderAccount = holder
		if sig != "" {
			res.Signatures[journal.StepHolderReady] = sig
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("preparing holder account: %w", err)
	}
	w.record(ctx, log, mint, journal.Entry{Step: journal.StepHolderReady, RunID: runID, Signature: res.Signatures[journal.StepHolderReady], Address: res.HolderAccount.ToBase58()})

	// supply
	if mintInfo != nil && mintInfo.Supply > 0 {
		log.InfoContext(ctx, "mint already has supply, skipping minting", slog.Uint64("supply", mintInfo.Supply))
		res.BaseUnits = mintInfo.Supply
		res.Supply = metadata.FormatBaseUnits(mintInfo.Supply, mintInfo.Decimals)
	} else {
		w.progress(fmt.Sprintf("Minting %s %s...", res.Supply, d.Symbol))
		sig, err := w.ledger.MintTo(ctx, solana.MintToParams{
			Payer:       signer,
			Authority:   authority,
			Mint:        mint.PublicKey,
			Destination: res.HolderAccount,
			Amount:      baseUnits,
		})
		if err != nil {
			return nil, fmt.Errorf("minting token supply: %w", err)
		}
		res.Signatures[journal.StepSupplyMinted] = sig
		w.record(ctx, log, mint, journal.Entry{Step: journal.StepSupplyMinted, RunID: runID, Signature: sig})
	}

	// metadata account
	w.progress("Creating metadata account...")
	metadataAddr, sig, err := w.ledger.CreateMetadataAccount(ctx, solana.CreateMetadataParams{
		Payer:         signer,
		MintAuthority: authority,
		Mint:          mint.PublicKey,
		Name:          d.Name,
		Symbol:        d.Symbol,
		URI:           res.MetadataURI,
		IsMutable:     true,
	})
	if err != nil {
		return nil, fmt.Errorf("creating metadata account: %w", err)
	}
	res.Metadata = metadataAddr
	res.Signatures[journal.StepMetadataCreated] = sig
	w.record(ctx, log, mint, journal.Entry{Step: journal.StepMetadataCreated, RunID: runID, Signature: sig, Address: metadataAddr.ToBase58()})
	w.record(ctx, log, mint, journal.Entry{Step: journal.StepCompleted, RunID: runID})

	log.InfoContext(ctx, "token issued", slog.String("metadata", metadataAddr.ToBase58()), slog.String("uri", res.MetadataURI))
	return res, nil
}

// checkBalance only warns, the ledger has the final word on whether the funds suffice.
func (w *Workflow) checkBalance(ctx context.Context, log *slog.Logger, address common.PublicKey) {
	balance, err := w.ledger.GetBalance(ctx, address)
	if err != nil {
		log.WarnContext(ctx, "failed to read wallet balance", slog.Any("error", err))
		return
	}
	log.DebugContext(ctx, "wallet balance", slog.Uint64("lamports", balance))
	if balance < w.minBalance {
		log.WarnContext(ctx, "low wallet balance", slog.Uint64("lamports", balance), slog.Uint64("recommended", w.minBalance))
		w.progress(fmt.Sprintf("Warning: wallet balance %s SOL is below the recommended %s SOL",
			metadata.FormatBaseUnits(balance, 9), metadata.FormatBaseUnits(w.minBalance, 9)))
	}
}

/*
existingAccounts reports which of the token accounts are already on the ledger.
Failed lookups are logged and treated as "account does not exist".
*/
func (w *Workflow) existingAccounts(ctx context.Context, log *slog.Logger, mint, metadataAddr common.PublicKey) (mintExists, metadataExists bool) {
	mintExists = w.accountExists(ctx, log, mint)
	if !mintExists {
		return false, false
	}
	return true, w.accountExists(ctx, log, metadataAddr)
}

func (w *Workflow) accountExists(ctx context.Context, log *slog.Logger, address common.PublicKey) bool {
	info, err := w.ledger.GetAccountInfo(ctx, address)
	if err != nil {
		log.WarnContext(ctx, "account lookup failed, assuming the account doesn't exist",
			slog.String("address", address.ToBase58()), slog.Any("error", err))
		return false
	}
	return info != nil && len(info.Data) > 0
}

// repairableMint checks that the issuance can be completed for an existing mint.
func (w *Workflow) repairableMint(ctx context.Context, mint, authority common.PublicKey, decimals uint8) (*solana.MintInfo, error) {
	info, err := w.ledger.GetMint(ctx, mint)
	if err != nil {
		return nil, fmt.Errorf("reading existing mint account: %w", err)
	}
	if info.MintAuthority == nil || *info.MintAuthority != authority {
		return nil, fmt.Errorf("%w: mint %s exists but its mint authority is not %s", ErrCannotProceed, mint.ToBase58(), authority.ToBase58())
	}
	if info.Decimals != decimals {
		w.log.WarnContext(ctx, "existing mint has different decimals than the token metadata",
			slog.Int("mint_decimals", int(info.Decimals)), slog.Int("metadata_decimals", int(decimals)))
	}
	return info, nil
}

// record adds entry to the journal, failures are logged but do not fail the issuance.
func (w *Workflow) record(ctx context.Context, log *slog.Logger, mint types.Account, e journal.Entry) {
	if w.journal == nil {
		return
	}
	e.Time = time.Now().UTC()
	if err := w.journal.Record(mint.PublicKey.ToBase58(), e); err != nil {
		log.WarnContext(ctx, "failed to record issuance step", slog.String("step", string(e.Step)), slog.Any("error", err))
	}
}

// Hint returns advice for the user on how to resolve the issuance error, empty string when there is none.
func Hint(err error) string {
	switch {
	case errors.Is(err, solana.ErrInsufficientFunds):
		return "The wallet doesn't have enough SOL to pay for the transactions. On devnet use 'mintly wallet airdrop' or https://faucet.solana.com to fund it."
	case errors.Is(err, solana.ErrAccountInUse):
		return "The mint address is already in use. Generate a new mint key with 'mintly mint-key vanity' or remove the mint key file."
	case errors.Is(err, solana.ErrConfirmationTimeout):
		return "The transaction was not confirmed in time, check the explorer before retrying."
	}
	return ""
}
