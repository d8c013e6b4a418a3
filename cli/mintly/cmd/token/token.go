package token

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mintly-cc/mintly/cli/mintly/cmd/args"
	"github.com/mintly-cc/mintly/cli/mintly/cmd/types"
	"github.com/mintly-cc/mintly/wallet/issuance"
	"github.com/mintly-cc/mintly/wallet/journal"
	"github.com/mintly-cc/mintly/wallet/keys"
	"github.com/mintly-cc/mintly/wallet/metadata"
	"github.com/mintly-cc/mintly/wallet/upload"
)

// flags which (re)define the token, when none of them is set the saved token metadata is used
var descriptorFlags = []string{args.NameCmdName, args.SymbolCmdName, args.DescriptionCmdName, args.DecimalsCmdName, args.AmountCmdName, args.NetworkCmdName}

// NewTokenCmd creates a new cobra command for the token issuance.
func NewTokenCmd(baseConfig *types.BaseConfiguration) *cobra.Command {
	config := &types.WalletConfig{Base: baseConfig}
	var tokenCmd = &cobra.Command{
		Use:   "token",
		Short: "creates fungible tokens with metadata",
		PersistentPreRunE: func(ccmd *cobra.Command, args []string) error {
			if err := types.InitializeConfig(ccmd, baseConfig); err != nil {
				return fmt.Errorf("initializing base configuration: %w", err)
			}
			return nil
		},
	}
	tokenCmd.AddCommand(CreateCmd(config))
	tokenCmd.AddCommand(StatusCmd(config))
	args.AddWalletFlags(tokenCmd, config)
	return tokenCmd
}

type createConfig struct {
	wallet        *types.WalletConfig
	uploader      types.UploaderConfig
	image         string
	mintAuthority string
}

func CreateCmd(config *types.WalletConfig) *cobra.Command {
	cfg := &createConfig{wallet: config}
	cmd := &cobra.Command{
		Use:   "create",
		Short: "issues the token, resuming the issuance when the mint account already exists",
		Long: "Issues the token described by the flags. When none of the token flags is given the token " +
			"metadata saved in the home directory is used.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return execCreateCmd(cmd, cfg)
		},
	}
	cmd.Flags().String(args.NameCmdName, "", "token name")
	cmd.Flags().String(args.SymbolCmdName, "", "token symbol")
	cmd.Flags().String(args.DescriptionCmdName, "", "token description")
	cmd.Flags().Uint8(args.DecimalsCmdName, args.DefaultDecimals, "number of decimal places (0-9)")
	cmd.Flags().Uint64(args.AmountCmdName, 0, "number of whole tokens to mint")
	cmd.Flags().StringP(args.NetworkCmdName, "n", args.DefaultNetwork, "network, one of: devnet, mainnet-beta")
	cmd.Flags().StringVar(&cfg.image, args.ImageCmdName, "", "token image file, copied into the home directory")
	cmd.Flags().StringVar(&cfg.mintAuthority, args.MintAuthorityCmdName, "", "keypair file of the mint authority (default is the wallet)")
	args.AddUploaderFlags(cmd, &cfg.uploader)
	return cmd
}

func execCreateCmd(cmd *cobra.Command, cfg *createConfig) error {
	config := cfg.wallet
	if anyFlagChanged(cmd, descriptorFlags...) {
		// changed flags are applied on top of the saved token metadata
		saved, err := config.MetadataStore().Load()
		if err != nil {
			config.Base.Logger.Debug("no usable saved token metadata, token is described by the flags", slog.Any("error", err))
			saved = nil
		}
		d, err := descriptorFromFlags(cmd, saved)
		if err != nil {
			return err
		}
		if _, err := config.MetadataStore().Persist(*d); err != nil {
			return fmt.Errorf("saving token metadata: %w", err)
		}
	}

	if cfg.image != "" {
		if err := upload.CopyImage(cfg.image, filepath.Join(config.Base.HomeDir, upload.DefaultImageFileName)); err != nil {
			return fmt.Errorf("invalid value for flag %q: %w", args.ImageCmdName, err)
		}
	}

	var opts []issuance.Option
	if cfg.mintAuthority != "" {
		authority, err := keys.LoadKeypairFile(cfg.mintAuthority)
		if err != nil {
			return fmt.Errorf("invalid value for flag %q: %w", args.MintAuthorityCmdName, err)
		}
		opts = append(opts, issuance.WithMintAuthority(authority))
	}

	_, err := Issue(cmd.Context(), config, config.KeyStore(), cfg.uploader, opts...)
	return err
}

/*
descriptorFromFlags returns copy of "base" with the values of the changed flags.
When base is nil all the flags (including defaults) are used.
*/
func descriptorFromFlags(cmd *cobra.Command, base *metadata.Descriptor) (*metadata.Descriptor, error) {
	d := &metadata.Descriptor{}
	if base != nil {
		*d = *base
	}
	use := func(name string) bool {
		return base == nil || cmd.Flags().Changed(name)
	}

	var errs []error
	var err error
	if use(args.NameCmdName) {
		if d.Name, err = cmd.Flags().GetString(args.NameCmdName); err != nil {
			errs = append(errs, err)
		}
	}
	if use(args.SymbolCmdName) {
		if d.Symbol, err = cmd.Flags().GetString(args.SymbolCmdName); err != nil {
			errs = append(errs, err)
		}
	}
	if use(args.DescriptionCmdName) {
		if d.Description, err = cmd.Flags().GetString(args.DescriptionCmdName); err != nil {
			errs = append(errs, err)
		}
	}
	if use(args.DecimalsCmdName) {
		if d.Decimals, err = cmd.Flags().GetUint8(args.DecimalsCmdName); err != nil {
			errs = append(errs, err)
		}
	}
	if use(args.AmountCmdName) {
		if d.MintAmount, err = cmd.Flags().GetUint64(args.AmountCmdName); err != nil {
			errs = append(errs, err)
		}
	}
	if use(args.NetworkCmdName) {
		network, err := cmd.Flags().GetString(args.NetworkCmdName)
		if err != nil {
			errs = append(errs, err)
		} else if d.Network, err = metadata.ParseNetwork(network); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return d, nil
}

func anyFlagChanged(cmd *cobra.Command, names ...string) bool {
	for _, name := range names {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}

func StatusCmd(config *types.WalletConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "shows the issuance progress recorded in the journal",
		RunE: func(cmd *cobra.Command, args []string) error {
			return execStatusCmd(cmd, config)
		},
	}
	cmd.Flags().Bool(args.AllCmdName, false, "show all the mints recorded in the journal, not only the current mint")
	return cmd
}

func execStatusCmd(cmd *cobra.Command, config *types.WalletConfig) error {
	console := config.Base.ConsoleWriter
	all, err := cmd.Flags().GetBool(args.AllCmdName)
	if err != nil {
		return err
	}

	var mints []string
	if !all {
		keyStore := config.KeyStore()
		if !keyStore.MintIdentityExists() {
			console.Println("No mint key in the home directory, it is generated when the token is created.")
			return nil
		}
		mint, err := keyStore.LoadOrCreateMintIdentity()
		if err != nil {
			return err
		}
		mints = append(mints, mint.PublicKey.ToBase58())
	}

	journalPath := filepath.Join(config.Base.HomeDir, journal.FileName)
	if _, err := os.Stat(journalPath); errors.Is(err, os.ErrNotExist) {
		console.Println("No issuances recorded.")
		return nil
	}
	jrnl, err := journal.Open(journalPath)
	if err != nil {
		return fmt.Errorf("opening issuance journal: %w", err)
	}
	defer jrnl.Close()

	if all {
		if mints, err = jrnl.Mints(); err != nil {
			return err
		}
	}
	for _, mint := range mints {
		entries, err := jrnl.Entries(mint)
		if err != nil {
			return err
		}
		done, err := jrnl.HasStep(mint, journal.StepCompleted)
		if err != nil {
			return err
		}
		state := "in progress"
		if done {
			state = "completed"
		}
		console.Println(fmt.Sprintf("Mint %s (%s)", mint, state))
		if len(entries) == 0 {
			console.Println("  no steps recorded")
			continue
		}
		for _, e := range entries {
			console.Println(formatEntry(e))
		}
	}
	return nil
}

func formatEntry(e journal.Entry) string {
	var details []string
	if e.Signature != "" {
		details = append(details, "signature="+e.Signature)
	}
	if e.URI != "" {
		details = append(details, "uri="+e.URI)
	}
	if e.Address != "" {
		details = append(details, "address="+e.Address)
	}
	return strings.TrimRight(fmt.Sprintf("  %s  %-16s %s", e.Time.Local().Format(time.DateTime), e.Step, strings.Join(details, " ")), " ")
}
