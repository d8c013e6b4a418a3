package mintkey

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mintly-cc/mintly/cli/mintly/cmd/args"
	"github.com/mintly-cc/mintly/cli/mintly/cmd/types"
	"github.com/mintly-cc/mintly/wallet/keys"
)

const progressInterval = 10 * time.Second

// NewMintKeyCmd creates a new cobra command for managing the mint identity keypair.
func NewMintKeyCmd(baseConfig *types.BaseConfiguration) *cobra.Command {
	config := &types.WalletConfig{Base: baseConfig}
	var mintKeyCmd = &cobra.Command{
		Use:   "mint-key",
		Short: "manage the keypair which determines the mint address of the token",
		PersistentPreRunE: func(ccmd *cobra.Command, args []string) error {
			if err := types.InitializeConfig(ccmd, baseConfig); err != nil {
				return fmt.Errorf("initializing base configuration: %w", err)
			}
			return nil
		},
	}
	mintKeyCmd.AddCommand(VanityCmd(config))
	mintKeyCmd.AddCommand(AddressCmd(config))
	return mintKeyCmd
}

func VanityCmd(config *types.WalletConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vanity",
		Short: "generates mint keypair whose address starts with the given prefix",
		RunE: func(cmd *cobra.Command, args []string) error {
			return execVanityCmd(cmd, config)
		},
	}
	cmd.Flags().String(args.PrefixCmdName, "", "address prefix, base58 characters only")
	cmd.Flags().Bool(args.IgnoreCaseCmdName, false, "match the prefix case-insensitively (faster)")
	cmd.Flags().Int(args.WorkersCmdName, 0, "number of parallel searchers (default is the number of CPUs)")
	cmd.Flags().Bool(args.ForceCmdName, false, "replace existing mint keypair")
	if err := cmd.MarkFlagRequired(args.PrefixCmdName); err != nil {
		panic(err)
	}
	return cmd
}

func execVanityCmd(cmd *cobra.Command, config *types.WalletConfig) error {
	prefix, err := cmd.Flags().GetString(args.PrefixCmdName)
	if err != nil {
		return err
	}
	ignoreCase, err := cmd.Flags().GetBool(args.IgnoreCaseCmdName)
	if err != nil {
		return err
	}
	workers, err := cmd.Flags().GetInt(args.WorkersCmdName)
	if err != nil {
		return err
	}
	force, err := cmd.Flags().GetBool(args.ForceCmdName)
	if err != nil {
		return err
	}

	keyStore := config.KeyStore()
	if keyStore.MintIdentityExists() && !force {
		return fmt.Errorf("%w: %s, use --%s to replace it", keys.ErrKeypairExists, keyStore.MintIdentityPath(), args.ForceCmdName)
	}
	_, err = GrindAndSave(cmd.Context(), config, keys.VanityOptions{IgnoreCase: ignoreCase, Workers: workers}, prefix, force)
	return err
}

/*
GrindAndSave searches for keypair with the vanity prefix and saves it as the mint
identity of the home directory.
*/
func GrindAndSave(ctx context.Context, config *types.WalletConfig, opts keys.VanityOptions, prefix string, force bool) (string, error) {
	console := config.Base.ConsoleWriter
	if err := keys.ValidateVanityPrefix(prefix, opts.IgnoreCase); err != nil {
		return "", err
	}
	opts.Log = config.Base.Logger
	opts.ProgressInterval = progressInterval

	console.Println(fmt.Sprintf("Searching for mint address starting with %q, this may take a while...", prefix))
	start := time.Now()
	acc, err := keys.GrindVanity(ctx, prefix, opts)
	if err != nil {
		return "", err
	}
	if err := config.KeyStore().SaveMintIdentity(acc, force); err != nil {
		if errors.Is(err, keys.ErrKeypairExists) {
			return "", fmt.Errorf("%w, use --%s to replace it", err, args.ForceCmdName)
		}
		return "", err
	}
	addr := acc.PublicKey.ToBase58()
	console.Println(fmt.Sprintf("Found %s in %s", addr, time.Since(start).Round(time.Millisecond)))
	return addr, nil
}

func AddressCmd(config *types.WalletConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "address",
		Short: "shows the mint address",
		RunE: func(cmd *cobra.Command, args []string) error {
			keyStore := config.KeyStore()
			if !keyStore.MintIdentityExists() {
				config.Base.ConsoleWriter.Println("No mint key in the home directory, it is generated when the token is created.")
				return nil
			}
			acc, err := keyStore.LoadOrCreateMintIdentity()
			if err != nil {
				return err
			}
			config.Base.ConsoleWriter.Println(acc.PublicKey.ToBase58())
			return nil
		},
	}
}
