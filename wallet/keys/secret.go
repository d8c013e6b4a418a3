package keys

import (
	"errors"
	"fmt"
	"strings"

	"github.com/blocto/solana-go-sdk/pkg/hdwallet"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/mr-tron/base58"
	"github.com/tyler-smith/go-bip39"
)

// DecodeBase58Secret decodes secret key in the format wallets (ie Phantom) export it.
func DecodeBase58Secret(secret string) ([]byte, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, errors.New("secret key is empty")
	}
	key, err := base58.Decode(secret)
	if err != nil {
		return nil, fmt.Errorf("decoding base58 secret key: %w", err)
	}
	if _, err := accountFromSecret(key); err != nil {
		return nil, err
	}
	return key, nil
}

// EncodeBase58Secret is the inverse of DecodeBase58Secret.
func EncodeBase58Secret(acc types.Account) string {
	return base58.Encode(acc.PrivateKey)
}

// DerivationPath returns the Solana BIP-44 path of the account with index "index".
func DerivationPath(index uint32) string {
	return fmt.Sprintf("m/44'/501'/%d'/0'", index)
}

/*
AccountFromMnemonic derives ed25519 keypair from BIP-39 mnemonic using the
derivation path wallets use for Solana accounts (m/44'/501'/index'/0').
*/
func AccountFromMnemonic(mnemonic, passphrase string, index uint32) (types.Account, error) {
	mnemonic = strings.Join(strings.Fields(mnemonic), " ")
	if !bip39.IsMnemonicValid(mnemonic) {
		return types.Account{}, errors.New("invalid mnemonic")
	}
	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, passphrase)
	if err != nil {
		return types.Account{}, fmt.Errorf("deriving seed: %w", err)
	}
	derived, err := hdwallet.Derived(DerivationPath(index), seed)
	if err != nil {
		return types.Account{}, fmt.Errorf("deriving key: %w", err)
	}
	acc, err := types.AccountFromSeed(derived.PrivateKey)
	if err != nil {
		return types.Account{}, fmt.Errorf("creating account from derived key: %w", err)
	}
	return acc, nil
}
