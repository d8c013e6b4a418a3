package args

import (
	"github.com/spf13/cobra"

	"github.com/mintly-cc/mintly/cli/mintly/cmd/types"
	"github.com/mintly-cc/mintly/wallet/keys"
)

const (
	RpcUrlCmdName        = "rpc-url"
	NetworkCmdName       = "network"
	WalletCmdName        = "wallet"
	Base58CmdName        = "base58"
	MnemonicCmdName      = "mnemonic"
	PassphraseCmdName    = "passphrase"
	IndexCmdName         = "index"
	ForceCmdName         = "force"
	AmountCmdName        = "amount"
	NameCmdName          = "name"
	SymbolCmdName        = "symbol"
	DescriptionCmdName   = "description"
	DecimalsCmdName      = "decimals"
	ImageCmdName         = "image"
	MintAuthorityCmdName = "mint-authority"
	IpfsApiCmdName       = "ipfs-api"
	IpfsGatewayCmdName   = "ipfs-gateway"
	IpfsTokenCmdName     = "ipfs-token"
	PrefixCmdName        = "prefix"
	IgnoreCaseCmdName    = "ignore-case"
	WorkersCmdName       = "workers"
	AllCmdName           = "all"

	DefaultNetwork  = "devnet"
	DefaultDecimals = 9
)

// AddWalletFlags adds the flags which select the wallet and the RPC endpoint.
func AddWalletFlags(cmd *cobra.Command, config *types.WalletConfig) {
	cmd.PersistentFlags().StringVar(&config.DefaultWalletPath, WalletCmdName, keys.DefaultWalletPath(), "wallet keypair file used when there is no wallet.json in the home directory")
	cmd.PersistentFlags().StringVarP(&config.RpcURL, RpcUrlCmdName, "r", "", "RPC endpoint URL (default is the public endpoint of the network)")
}

// AddUploaderFlags adds the flags of the metadata upload service.
func AddUploaderFlags(cmd *cobra.Command, cfg *types.UploaderConfig) {
	cmd.Flags().StringVar(&cfg.APIURL, IpfsApiCmdName, "", "IPFS node RPC API URL used for uploads (default http://127.0.0.1:5001)")
	cmd.Flags().StringVar(&cfg.GatewayURL, IpfsGatewayCmdName, "", "IPFS gateway URL used in the token URIs (default https://ipfs.io)")
	cmd.Flags().StringVar(&cfg.Token, IpfsTokenCmdName, "", "bearer token of the pinning service")
}
