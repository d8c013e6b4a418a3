package solana

import (
	"fmt"
	"net/url"
)

const (
	NetworkDevnet  = "devnet"
	NetworkMainnet = "mainnet-beta"

	devnetRPCURL  = "https://api.devnet.solana.com"
	mainnetRPCURL = "https://api.mainnet-beta.solana.com"

	explorerURL = "https://explorer.solana.com"
)

// RPCEndpoint returns public RPC endpoint of the network.
func RPCEndpoint(network string) (string, error) {
	switch network {
	case NetworkDevnet:
		return devnetRPCURL, nil
	case NetworkMainnet:
		return mainnetRPCURL, nil
	default:
		return "", fmt.Errorf("unknown network %q", network)
	}
}

// ExplorerAddressURL returns block explorer link for the account.
func ExplorerAddressURL(address, network string) string {
	return explorerLink("address", address, network)
}

// ExplorerTxURL returns block explorer link for the transaction.
func ExplorerTxURL(signature, network string) string {
	return explorerLink("tx", signature, network)
}

func explorerLink(kind, id, network string) string {
	link := fmt.Sprintf("%s/%s/%s", explorerURL, kind, url.PathEscape(id))
	if network != NetworkMainnet {
		link += "?cluster=" + url.QueryEscape(network)
	}
	return link
}
