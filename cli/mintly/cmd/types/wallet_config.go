package types

import (
	"context"
	"log/slog"

	"github.com/blocto/solana-go-sdk/common"
	"go.opentelemetry.io/otel/trace"

	"github.com/mintly-cc/mintly/client/solana"
	"github.com/mintly-cc/mintly/wallet/issuance"
	"github.com/mintly-cc/mintly/wallet/keys"
	"github.com/mintly-cc/mintly/wallet/metadata"
	"github.com/mintly-cc/mintly/wallet/upload"
)

type (
	// Ledger is the subset of *solana.Client used by the commands.
	Ledger interface {
		issuance.Ledger
		RequestAirdrop(ctx context.Context, address common.PublicKey, lamports uint64) (string, error)
	}

	// ClientFactory creates the clients of the remote services, tests replace it with mocks.
	ClientFactory interface {
		Ledger(endpoint string, log *slog.Logger) Ledger
		Uploader(cfg UploaderConfig, log *slog.Logger) (issuance.Uploader, error)
	}

	UploaderConfig struct {
		APIURL     string
		GatewayURL string
		Token      string
	}

	DefaultClientFactory struct{}

	WalletConfig struct {
		Base *BaseConfiguration
		// keypair used when there is no wallet in the home directory
		DefaultWalletPath string
		// explicit RPC URL, overrides the endpoint of the network
		RpcURL string
	}
)

func (DefaultClientFactory) Ledger(endpoint string, log *slog.Logger) Ledger {
	return solana.New(endpoint, log)
}

func (DefaultClientFactory) Uploader(cfg UploaderConfig, log *slog.Logger) (issuance.Uploader, error) {
	var opts []upload.Option
	if cfg.Token != "" {
		opts = append(opts, upload.WithBearerToken(cfg.Token))
	}
	return upload.NewClient(cfg.APIURL, cfg.GatewayURL, log, opts...)
}

func (wc *WalletConfig) KeyStore() *keys.Store {
	return keys.NewStore(wc.Base.HomeDir, wc.DefaultWalletPath, wc.Base.Logger)
}

func (wc *WalletConfig) MetadataStore() *metadata.Store {
	return metadata.NewStore(wc.Base.HomeDir)
}

// Ledger returns client of the RPC endpoint of the network unless RPC URL is configured explicitly.
func (wc *WalletConfig) Ledger(network metadata.Network) (Ledger, error) {
	endpoint := wc.RpcURL
	if endpoint == "" {
		var err error
		if endpoint, err = solana.RPCEndpoint(network.String()); err != nil {
			return nil, err
		}
	}
	wc.Base.Logger.Debug("using RPC endpoint", slog.String("url", endpoint))
	return wc.Base.Clients.Ledger(endpoint, wc.Base.Logger), nil
}

func (wc *WalletConfig) Tracer() trace.Tracer {
	return wc.Base.Tracer("mintly")
}
