package main

import (
	"flag"
	"log"
	"path/filepath"

	"github.com/mintly-cc/mintly/wallet/keys"
)

/*
Prints the keys of a mintly home directory in the format browser wallets
(ie Phantom) import them.

# Example usage

go run scripts/keys/export_keys.go --dir ~/.mintly
*/
func main() {

	dir := flag.String("dir", "", "mintly home directory")
	flag.Parse()

	if *dir == "" {
		log.Fatal("dir is required")
	}

	for _, name := range []string{keys.WalletFileName, keys.MintIdentityFileName} {
		acc, err := keys.LoadKeypairFile(filepath.Join(*dir, name))
		if err != nil {
			log.Printf("%s: %v\n\n", name, err)
			continue
		}
		log.Printf("Keypair file: %s\n", name)
		log.Printf("Public Key: %s\n", acc.PublicKey.ToBase58())
		log.Printf("Private Key: %s\n\n", keys.EncodeBase58Secret(acc))
	}
}
