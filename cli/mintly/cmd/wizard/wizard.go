package wizard

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	soltypes "github.com/blocto/solana-go-sdk/types"
	"github.com/spf13/cobra"

	"github.com/mintly-cc/mintly/cli/mintly/cmd/args"
	"github.com/mintly-cc/mintly/cli/mintly/cmd/mintkey"
	"github.com/mintly-cc/mintly/cli/mintly/cmd/token"
	"github.com/mintly-cc/mintly/cli/mintly/cmd/types"
	"github.com/mintly-cc/mintly/cli/mintly/cmd/util/prompt"
	"github.com/mintly-cc/mintly/wallet/keys"
	"github.com/mintly-cc/mintly/wallet/metadata"
	"github.com/mintly-cc/mintly/wallet/upload"
)

const (
	walletDefault = iota
	walletBase58
	walletHome
	walletMnemonic
)

type (
	wizard struct {
		config   *types.WalletConfig
		prompt   *prompt.Prompter
		console  types.ConsoleWrapper
		keyStore *keys.Store
	}

	// selectedWallet makes the workflow use the wallet picked by the user
	selectedWallet struct {
		*keys.Store
		signer soltypes.Account
	}
)

func (s selectedWallet) LoadWalletSigner() (soltypes.Account, error) {
	return s.signer, nil
}

// NewWizardCmd creates command which collects the token details interactively and then issues the token.
func NewWizardCmd(baseConfig *types.BaseConfiguration) *cobra.Command {
	config := &types.WalletConfig{Base: baseConfig}
	uploaderCfg := &types.UploaderConfig{}
	cmd := &cobra.Command{
		Use:   "wizard",
		Short: "creates token interactively",
		PersistentPreRunE: func(ccmd *cobra.Command, args []string) error {
			if err := types.InitializeConfig(ccmd, baseConfig); err != nil {
				return fmt.Errorf("initializing base configuration: %w", err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return execWizardCmd(cmd.Context(), config, *uploaderCfg)
		},
	}
	args.AddWalletFlags(cmd, config)
	args.AddUploaderFlags(cmd, uploaderCfg)
	return cmd
}

func execWizardCmd(ctx context.Context, config *types.WalletConfig, uploaderCfg types.UploaderConfig) error {
	w := &wizard{
		config:   config,
		prompt:   prompt.New(config.Base.Stdin, config.Base.ConsoleWriter),
		console:  config.Base.ConsoleWriter,
		keyStore: config.KeyStore(),
	}

	signer, err := w.selectWallet()
	if err != nil {
		return err
	}
	d, err := w.askDescriptor()
	if err != nil {
		return err
	}
	if err := w.askImage(); err != nil {
		return err
	}
	if err := w.askVanity(ctx); err != nil {
		return err
	}

	w.review(signer, d)
	ok, err := w.prompt.Confirm("Create the token?", false)
	if err != nil {
		return err
	}
	if !ok {
		w.console.Println("Aborted, nothing was created.")
		return nil
	}
	if _, err := config.MetadataStore().Persist(*d); err != nil {
		return fmt.Errorf("saving token metadata: %w", err)
	}
	_, err = token.Issue(ctx, config, selectedWallet{Store: w.keyStore, signer: signer}, uploaderCfg)
	return err
}

func (w *wizard) selectWallet() (soltypes.Account, error) {
	options := []string{
		fmt.Sprintf("Solana CLI default wallet (%s)", w.config.DefaultWalletPath),
		"Enter base58 encoded private key",
		fmt.Sprintf("Existing wallet in the home directory (%s)", w.keyStore.WalletPath()),
		"Recover from BIP-39 mnemonic",
	}
	def := walletDefault
	if _, err := os.Stat(w.keyStore.WalletPath()); err == nil {
		def = walletHome
	}

	for {
		choice, err := w.prompt.Choice("Which wallet pays for the token creation?", options, def)
		if err != nil {
			return soltypes.Account{}, err
		}
		signer, err := w.loadWallet(choice)
		if err != nil {
			var inputErr *inputError
			if errors.As(err, &inputErr) {
				return soltypes.Account{}, err
			}
			w.console.Println("Could not use the wallet: " + err.Error())
			continue
		}
		w.console.Println("Using wallet " + signer.PublicKey.ToBase58())
		return signer, nil
	}
}

// inputError means user input can't be read and there is no point in asking again.
type inputError struct{ err error }

func (e *inputError) Error() string { return e.err.Error() }
func (e *inputError) Unwrap() error { return e.err }

func (w *wizard) loadWallet(choice int) (soltypes.Account, error) {
	switch choice {
	case walletDefault:
		return keys.LoadKeypairFile(w.config.DefaultWalletPath)
	case walletHome:
		return keys.LoadKeypairFile(w.keyStore.WalletPath())
	case walletBase58:
		s, err := w.prompt.Secret("Enter base58 secret key: ")
		if err != nil {
			return soltypes.Account{}, &inputError{err}
		}
		secret, err := keys.DecodeBase58Secret(s)
		if err != nil {
			return soltypes.Account{}, err
		}
		return w.importWallet(secret)
	case walletMnemonic:
		mnemonic, err := w.prompt.Secret("Enter mnemonic: ")
		if err != nil {
			return soltypes.Account{}, &inputError{err}
		}
		passphrase, err := w.prompt.Secret("Enter passphrase (empty for none): ")
		if err != nil {
			return soltypes.Account{}, &inputError{err}
		}
		acc, err := keys.AccountFromMnemonic(mnemonic, passphrase, 0)
		if err != nil {
			return soltypes.Account{}, err
		}
		return w.importWallet(acc.PrivateKey)
	}
	return soltypes.Account{}, fmt.Errorf("unknown wallet option %d", choice)
}

// importWallet saves the key as the wallet of the home directory, existing wallet is replaced only when user agrees.
func (w *wizard) importWallet(secret []byte) (soltypes.Account, error) {
	acc, err := w.keyStore.ImportWallet(secret, false)
	if !errors.Is(err, keys.ErrKeypairExists) {
		return acc, err
	}
	replace, err := w.prompt.Confirm(fmt.Sprintf("Wallet %s already exists. Replace it?", w.keyStore.WalletPath()), false)
	if err != nil {
		return soltypes.Account{}, &inputError{err}
	}
	if !replace {
		return soltypes.Account{}, errors.New("existing wallet was kept")
	}
	return w.keyStore.ImportWallet(secret, true)
}

// askDescriptor asks the token details, values saved by previous run are offered as defaults.
func (w *wizard) askDescriptor() (*metadata.Descriptor, error) {
	prev, err := w.config.MetadataStore().Load()
	if err != nil {
		prev = &metadata.Descriptor{Decimals: args.DefaultDecimals, Network: metadata.NetworkDevnet}
	}
	d := &metadata.Descriptor{Image: metadata.ImagePlaceholder, Attributes: prev.Attributes}

	network, err := w.prompt.Validated("Network (devnet or mainnet-beta)", prev.Network.String(), func(s string) error {
		_, err := metadata.ParseNetwork(s)
		return err
	})
	if err != nil {
		return nil, err
	}
	d.Network, _ = metadata.ParseNetwork(network)

	if d.Name, err = w.prompt.Validated("Token name", prev.Name, func(s string) error {
		return lengthCheck(s, metadata.MaxNameLength)
	}); err != nil {
		return nil, err
	}
	if d.Symbol, err = w.prompt.Validated("Token symbol", prev.Symbol, func(s string) error {
		return lengthCheck(s, metadata.MaxSymbolLength)
	}); err != nil {
		return nil, err
	}
	if d.Description, err = w.prompt.WithDefault("Description", prev.Description); err != nil {
		return nil, err
	}

	decimals, err := w.prompt.Validated("Decimals (0-9)", strconv.Itoa(int(prev.Decimals)), func(s string) error {
		v, err := strconv.ParseUint(s, 10, 8)
		if err != nil || v > metadata.MaxDecimals {
			return fmt.Errorf("decimals must be between 0 and %d", metadata.MaxDecimals)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	v, _ := strconv.ParseUint(decimals, 10, 8)
	d.Decimals = uint8(v)

	def := ""
	if prev.MintAmount > 0 {
		def = strconv.FormatUint(prev.MintAmount, 10)
	}
	amount, err := w.prompt.Validated("Amount of tokens to mint", def, func(s string) error {
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil || v == 0 {
			return errors.New("amount must be a whole number greater than zero")
		}
		_, err = (&metadata.Descriptor{Decimals: d.Decimals, MintAmount: v}).BaseUnits()
		return err
	})
	if err != nil {
		return nil, err
	}
	d.MintAmount, _ = strconv.ParseUint(amount, 10, 64)

	d.Normalize()
	return d, d.Validate()
}

func lengthCheck(s string, limit int) error {
	if s == "" {
		return errors.New("value is required")
	}
	if len(s) > limit {
		return fmt.Errorf("must not be longer than %d bytes", limit)
	}
	return nil
}

// askImage stages the token image in the home directory.
func (w *wizard) askImage() error {
	dst := filepath.Join(w.config.Base.HomeDir, upload.DefaultImageFileName)
	def := ""
	if _, err := os.Stat(dst); err == nil {
		def = dst
	}
	src, err := w.prompt.Validated("Path to the token image", def, func(s string) error {
		if s == "" {
			return errors.New("image is required")
		}
		_, err := upload.ReadImage(s)
		return err
	})
	if err != nil {
		return err
	}
	if src == dst {
		return nil
	}
	return upload.CopyImage(src, dst)
}

func (w *wizard) askVanity(ctx context.Context) error {
	prefix, err := w.prompt.Validated("Vanity prefix of the mint address (empty to skip)", "", func(s string) error {
		if s == "" {
			return nil
		}
		return keys.ValidateVanityPrefix(s, true)
	})
	if err != nil || prefix == "" {
		return err
	}
	ignoreCase, err := w.prompt.Confirm("Match the prefix case-insensitively (much faster)?", true)
	if err != nil {
		return err
	}
	if err := keys.ValidateVanityPrefix(prefix, ignoreCase); err != nil {
		return err
	}

	force := false
	if w.keyStore.MintIdentityExists() {
		acc, err := w.keyStore.LoadOrCreateMintIdentity()
		if err != nil {
			return err
		}
		if force, err = w.prompt.Confirm(fmt.Sprintf("Mint key %s already exists. Replace it?", acc.PublicKey.ToBase58()), false); err != nil {
			return err
		}
		if !force {
			return nil
		}
	}
	_, err = mintkey.GrindAndSave(ctx, w.config, keys.VanityOptions{IgnoreCase: ignoreCase}, prefix, force)
	return err
}

func (w *wizard) review(signer soltypes.Account, d *metadata.Descriptor) {
	mint := "generated on creation"
	if w.keyStore.MintIdentityExists() {
		if acc, err := w.keyStore.LoadOrCreateMintIdentity(); err == nil {
			mint = acc.PublicKey.ToBase58()
		}
	}
	w.console.Println("")
	w.console.Println("Review the token:")
	w.console.Println("  Wallet:      " + signer.PublicKey.ToBase58())
	w.console.Println("  Mint:        " + mint)
	w.console.Println("  Network:     " + d.Network.String())
	w.console.Println("  Name:        " + d.Name)
	w.console.Println("  Symbol:      " + d.Symbol)
	w.console.Println("  Description: " + d.Description)
	w.console.Println(fmt.Sprintf("  Supply:      %s (%d decimals)", d.DisplaySupply(), d.Decimals))
}
