package issuance

import (
	"context"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"

	"github.com/mintly-cc/mintly/client/solana"
	"github.com/mintly-cc/mintly/wallet/journal"
	"github.com/mintly-cc/mintly/wallet/metadata"
	"github.com/mintly-cc/mintly/wallet/upload"
)

type (
	KeyStore interface {
		LoadWalletSigner() (types.Account, error)
		LoadOrCreateMintIdentity() (types.Account, error)
	}

	MetadataStore interface {
		Load() (*metadata.Descriptor, error)
	}

	Uploader interface {
		Upload(ctx context.Context, image *upload.Asset, d *metadata.Descriptor, creator string) (string, error)
	}

	// Ledger is implemented by *solana.Client.
	Ledger interface {
		GetBalance(ctx context.Context, address common.PublicKey) (uint64, error)
		GetAccountInfo(ctx context.Context, address common.PublicKey) (*solana.AccountInfo, error)
		GetMint(ctx context.Context, mint common.PublicKey) (*solana.MintInfo, error)
		CreateMint(ctx context.Context, p solana.CreateMintParams) (string, error)
		GetOrCreateHolderAccount(ctx context.Context, payer types.Account, owner, mint common.PublicKey) (common.PublicKey, string, error)
		MintTo(ctx context.Context, p solana.MintToParams) (string, error)
		CreateMetadataAccount(ctx context.Context, p solana.CreateMetadataParams) (common.PublicKey, string, error)
	}

	Journal interface {
		Record(mint string, e journal.Entry) error
	}

	// ImageLoader returns the token image to be uploaded.
	ImageLoader func() (*upload.Asset, error)

	// Deps are the collaborators of the Workflow. Journal is optional, everything
	// else is required.
	Deps struct {
		Keys     KeyStore
		Metadata MetadataStore
		Uploader Uploader
		Ledger   Ledger
		Image    ImageLoader
		Journal  Journal
	}
)

// ImageFile returns ImageLoader which reads the image from file.
func ImageFile(path string) ImageLoader {
	return func() (*upload.Asset, error) {
		return upload.ReadImage(path)
	}
}
