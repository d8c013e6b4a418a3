package wallet

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/mintly-cc/mintly/cli/mintly/cmd/args"
	"github.com/mintly-cc/mintly/cli/mintly/cmd/types"
	"github.com/mintly-cc/mintly/cli/mintly/cmd/util/prompt"
	"github.com/mintly-cc/mintly/client/solana"
	"github.com/mintly-cc/mintly/wallet/keys"
	"github.com/mintly-cc/mintly/wallet/metadata"
)

// NewWalletCmd creates a new cobra command for the wallet component.
func NewWalletCmd(baseConfig *types.BaseConfiguration) *cobra.Command {
	config := &types.WalletConfig{Base: baseConfig}
	var walletCmd = &cobra.Command{
		Use:   "wallet",
		Short: "manage the wallet paying for the token issuance",
		PersistentPreRunE: func(ccmd *cobra.Command, args []string) error {
			if err := types.InitializeConfig(ccmd, baseConfig); err != nil {
				return fmt.Errorf("initializing base configuration: %w", err)
			}
			return nil
		},
	}
	walletCmd.AddCommand(ImportCmd(config))
	walletCmd.AddCommand(AddressCmd(config))
	walletCmd.AddCommand(BalanceCmd(config))
	walletCmd.AddCommand(AirdropCmd(config))
	args.AddWalletFlags(walletCmd, config)
	return walletCmd
}

func ImportCmd(config *types.WalletConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "imports wallet from base58 encoded secret key or mnemonic into the home directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			return execImportCmd(cmd, config)
		},
	}
	cmd.Flags().String(args.Base58CmdName, "", "base58 encoded 64 byte secret key (prompted without echo when neither secret flag is given)")
	cmd.Flags().String(args.MnemonicCmdName, "", "BIP-39 mnemonic, the number of words should be 12, 15, 18, 21 or 24")
	cmd.Flags().String(args.PassphraseCmdName, "", "optional BIP-39 passphrase of the mnemonic")
	cmd.Flags().Uint32(args.IndexCmdName, 0, "account index in the derivation path m/44'/501'/<index>'/0'")
	cmd.Flags().Bool(args.ForceCmdName, false, "overwrite existing wallet")
	cmd.MarkFlagsMutuallyExclusive(args.Base58CmdName, args.MnemonicCmdName)
	return cmd
}

func execImportCmd(cmd *cobra.Command, config *types.WalletConfig) error {
	base58Secret, err := cmd.Flags().GetString(args.Base58CmdName)
	if err != nil {
		return err
	}
	mnemonic, err := cmd.Flags().GetString(args.MnemonicCmdName)
	if err != nil {
		return err
	}
	force, err := cmd.Flags().GetBool(args.ForceCmdName)
	if err != nil {
		return err
	}

	var secret []byte
	switch {
	case mnemonic != "":
		passphrase, err := cmd.Flags().GetString(args.PassphraseCmdName)
		if err != nil {
			return err
		}
		index, err := cmd.Flags().GetUint32(args.IndexCmdName)
		if err != nil {
			return err
		}
		acc, err := keys.AccountFromMnemonic(mnemonic, passphrase, index)
		if err != nil {
			return fmt.Errorf("invalid value for flag %q: %w", args.MnemonicCmdName, err)
		}
		secret = acc.PrivateKey
	default:
		if base58Secret == "" {
			p := prompt.New(config.Base.Stdin, config.Base.ConsoleWriter)
			if base58Secret, err = p.Secret("Enter base58 secret key: "); err != nil {
				return err
			}
		}
		if secret, err = keys.DecodeBase58Secret(base58Secret); err != nil {
			return err
		}
	}

	acc, err := config.KeyStore().ImportWallet(secret, force)
	if err != nil {
		if errors.Is(err, keys.ErrKeypairExists) {
			return fmt.Errorf("%w, use --%s to overwrite it", err, args.ForceCmdName)
		}
		return err
	}
	config.Base.ConsoleWriter.Println("Wallet imported: " + acc.PublicKey.ToBase58())
	return nil
}

func AddressCmd(config *types.WalletConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "address",
		Short: "shows the address of the wallet",
		RunE: func(cmd *cobra.Command, args []string) error {
			signer, err := config.KeyStore().LoadWalletSigner()
			if err != nil {
				return err
			}
			config.Base.ConsoleWriter.Println(signer.PublicKey.ToBase58())
			return nil
		},
	}
}

func BalanceCmd(config *types.WalletConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "balance",
		Short: "shows the SOL balance of the wallet",
		RunE: func(cmd *cobra.Command, args []string) error {
			return execBalanceCmd(cmd, config)
		},
	}
	cmd.Flags().StringP(args.NetworkCmdName, "n", args.DefaultNetwork, "network, one of: devnet, mainnet-beta")
	return cmd
}

func execBalanceCmd(cmd *cobra.Command, config *types.WalletConfig) error {
	network, err := networkFlag(cmd)
	if err != nil {
		return err
	}
	signer, err := config.KeyStore().LoadWalletSigner()
	if err != nil {
		return err
	}
	ledger, err := config.Ledger(network)
	if err != nil {
		return err
	}
	balance, err := ledger.GetBalance(cmd.Context(), signer.PublicKey)
	if err != nil {
		return fmt.Errorf("reading balance: %w", err)
	}
	config.Base.ConsoleWriter.Println(fmt.Sprintf("%s SOL", formatSOL(balance)))
	return nil
}

func AirdropCmd(config *types.WalletConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "airdrop",
		Short: "requests SOL from the devnet faucet",
		RunE: func(cmd *cobra.Command, args []string) error {
			return execAirdropCmd(cmd, config)
		},
	}
	cmd.Flags().StringP(args.NetworkCmdName, "n", args.DefaultNetwork, "network, airdrops are only available on devnet")
	cmd.Flags().StringP(args.AmountCmdName, "v", "1", "amount of SOL to request")
	return cmd
}

func execAirdropCmd(cmd *cobra.Command, config *types.WalletConfig) error {
	network, err := networkFlag(cmd)
	if err != nil {
		return err
	}
	if network != metadata.NetworkDevnet {
		return fmt.Errorf("airdrop is only available on %s", metadata.NetworkDevnet)
	}
	amount, err := cmd.Flags().GetString(args.AmountCmdName)
	if err != nil {
		return err
	}
	lamports, err := parseSOL(amount)
	if err != nil {
		return fmt.Errorf("invalid value %q for flag %q: %w", amount, args.AmountCmdName, err)
	}

	signer, err := config.KeyStore().LoadWalletSigner()
	if err != nil {
		return err
	}
	ledger, err := config.Ledger(network)
	if err != nil {
		return err
	}
	config.Base.ConsoleWriter.Println(fmt.Sprintf("Requesting %s SOL for %s...", formatSOL(lamports), signer.PublicKey.ToBase58()))
	sig, err := ledger.RequestAirdrop(cmd.Context(), signer.PublicKey, lamports)
	if err != nil {
		return fmt.Errorf("requesting airdrop: %w", err)
	}
	config.Base.ConsoleWriter.Println("Airdrop confirmed: " + solana.ExplorerTxURL(sig, network.String()))
	return nil
}

func networkFlag(cmd *cobra.Command) (metadata.Network, error) {
	s, err := cmd.Flags().GetString(args.NetworkCmdName)
	if err != nil {
		return "", err
	}
	return metadata.ParseNetwork(s)
}

// parseSOL converts decimal SOL amount to lamports.
func parseSOL(s string) (uint64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	lamports := d.Shift(9)
	if !lamports.IsInteger() {
		return 0, errors.New("more than 9 decimal places")
	}
	if !lamports.IsPositive() {
		return 0, errors.New("amount must be positive")
	}
	if lamports.BigInt().BitLen() > 64 {
		return 0, errors.New("amount is too large")
	}
	return lamports.BigInt().Uint64(), nil
}

func formatSOL(lamports uint64) string {
	return metadata.FormatBaseUnits(lamports, 9)
}
