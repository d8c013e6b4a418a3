package token

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mintly-cc/mintly/cli/mintly/cmd/types"
	"github.com/mintly-cc/mintly/wallet/issuance"
	"github.com/mintly-cc/mintly/wallet/journal"
	"github.com/mintly-cc/mintly/wallet/upload"
)

/*
Issue runs the issuance workflow for the token described by the metadata file of
the home directory and prints the result. The token image is read from the home
directory too.
*/
func Issue(ctx context.Context, config *types.WalletConfig, keyStore issuance.KeyStore, uploaderCfg types.UploaderConfig, opts ...issuance.Option) (*issuance.Result, error) {
	log := config.Base.Logger
	console := config.Base.ConsoleWriter
	home := config.Base.HomeDir

	metadataStore := config.MetadataStore()
	d, err := metadataStore.Load()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", issuance.ErrCannotProceed, err)
	}
	ledger, err := config.Ledger(d.Network)
	if err != nil {
		return nil, err
	}
	uploader, err := config.Base.Clients.Uploader(uploaderCfg, log)
	if err != nil {
		return nil, fmt.Errorf("creating uploader: %w", err)
	}

	if err := os.MkdirAll(home, 0700); err != nil {
		return nil, fmt.Errorf("creating home directory: %w", err)
	}
	jrnl, err := journal.Open(filepath.Join(home, journal.FileName))
	if err != nil {
		return nil, fmt.Errorf("opening issuance journal: %w", err)
	}
	defer jrnl.Close()

	w, err := issuance.New(issuance.Deps{
		Keys:     keyStore,
		Metadata: metadataStore,
		Uploader: uploader,
		Ledger:   ledger,
		Image:    issuance.ImageFile(filepath.Join(home, upload.DefaultImageFileName)),
		Journal:  jrnl,
	}, log, append([]issuance.Option{
		issuance.WithProgress(func(msg string) { console.Println(msg) }),
		issuance.WithTracer(config.Tracer()),
	}, opts...)...)
	if err != nil {
		return nil, err
	}

	res, err := w.Run(ctx)
	if err != nil {
		if hint := issuance.Hint(err); hint != "" {
			console.Println(hint)
		}
		return nil, err
	}
	PrintResult(console, res, d.Symbol)
	return res, nil
}

func PrintResult(console types.ConsoleWrapper, res *issuance.Result, symbol string) {
	switch {
	case res.AlreadyExists:
		console.Println("Token already exists, nothing was done.")
	case res.Repaired:
		console.Println("Token issuance completed for the existing mint.")
	default:
		console.Println("Token created successfully!")
	}
	console.Println("Mint address:     " + res.Mint.ToBase58())
	console.Println("Token account:    " + res.HolderAccount.ToBase58())
	console.Println("Metadata account: " + res.Metadata.ToBase58())
	if res.MetadataURI != "" {
		console.Println("Metadata URI:     " + res.MetadataURI)
	}
	console.Println(fmt.Sprintf("Supply:           %s %s (%d base units)", res.Supply, symbol, res.BaseUnits))
	console.Println("Network:          " + res.Network.String())
	console.Println("Explorer:         " + res.ExplorerURL)
}
