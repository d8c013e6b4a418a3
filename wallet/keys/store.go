package keys

import (
	"bytes"
	"crypto/ed25519"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/blocto/solana-go-sdk/types"
	"github.com/goccy/go-json"
)

const (
	WalletFileName       = "wallet.json"
	MintIdentityFileName = "token-mint-address.json"

	keypairFileMode = 0600
)

var (
	ErrKeypairLoad    = errors.New("failed to load keypair")
	ErrWalletNotFound = errors.New("wallet not found")
	ErrKeypairExists  = errors.New("keypair file already exists")
)

/*
Store keeps the wallet signer and the mint identity keypairs as JSON arrays of the
64 secret key bytes (the format used by the Solana CLI) in the home directory.
*/
type Store struct {
	dir               string
	defaultWalletPath string
	log               *slog.Logger
}

/*
NewStore returns keypair store for directory "dir". When there is no wallet file
in the "dir" the wallet signer is loaded from "defaultWalletPath" (empty string
disables the fallback).
*/
func NewStore(dir, defaultWalletPath string, log *slog.Logger) *Store {
	return &Store{
		dir:               dir,
		defaultWalletPath: defaultWalletPath,
		log:               log,
	}
}

// DefaultWalletPath returns location of the Solana CLI default keypair.
func DefaultWalletPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "solana", "id.json")
}

func (s *Store) WalletPath() string {
	return filepath.Join(s.dir, WalletFileName)
}

func (s *Store) MintIdentityPath() string {
	return filepath.Join(s.dir, MintIdentityFileName)
}

/*
LoadOrCreateMintIdentity returns the persisted mint keypair. When the file doesn't
exist new keypair is generated and persisted before returning it. An existing file
is never overwritten, malformed file results in ErrKeypairLoad.
*/
func (s *Store) LoadOrCreateMintIdentity() (types.Account, error) {
	path := s.MintIdentityPath()
	acc, err := readKeypairFile(path)
	if err == nil {
		s.log.Debug("using existing mint identity", slog.String("address", acc.PublicKey.ToBase58()))
		return acc, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return types.Account{}, fmt.Errorf("%w %s: %w", ErrKeypairLoad, path, err)
	}

	acc = types.NewAccount()
	if err := writeKeypairFile(path, acc, false); err != nil {
		return types.Account{}, fmt.Errorf("saving mint identity: %w", err)
	}
	s.log.Info("generated new mint identity", slog.String("address", acc.PublicKey.ToBase58()))
	return acc, nil
}

// MintIdentityExists returns true when mint keypair file is present (valid or not).
func (s *Store) MintIdentityExists() bool {
	_, err := os.Stat(s.MintIdentityPath())
	return err == nil
}

/*
SaveMintIdentity persists "acc" as the mint identity. Unless "force" is set existing
mint keypair file is not replaced and ErrKeypairExists is returned instead.
*/
func (s *Store) SaveMintIdentity(acc types.Account, force bool) error {
	return writeKeypairFile(s.MintIdentityPath(), acc, force)
}

/*
LoadWalletSigner loads the wallet keypair, first from the home directory and then
from the default wallet location. When neither exists ErrWalletNotFound is returned.
A wallet file which exists but can't be decoded is an error, the next location is
not tried in that case.
*/
func (s *Store) LoadWalletSigner() (types.Account, error) {
	candidates := []string{s.WalletPath()}
	if s.defaultWalletPath != "" {
		candidates = append(candidates, s.defaultWalletPath)
	}

	for _, path := range candidates {
		acc, err := readKeypairFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return types.Account{}, fmt.Errorf("%w %s: %w", ErrKeypairLoad, path, err)
		}
		s.log.Debug("loaded wallet", slog.String("path", path), slog.String("address", acc.PublicKey.ToBase58()))
		return acc, nil
	}
	return types.Account{}, fmt.Errorf("%w, tried %v", ErrWalletNotFound, candidates)
}

/*
ImportWallet validates the 64 byte secret key and stores it as the wallet of the
home directory. Existing wallet is replaced only when "force" is true.
*/
func (s *Store) ImportWallet(secret []byte, force bool) (types.Account, error) {
	acc, err := accountFromSecret(secret)
	if err != nil {
		return types.Account{}, err
	}
	if err := writeKeypairFile(s.WalletPath(), acc, force); err != nil {
		return types.Account{}, fmt.Errorf("saving wallet: %w", err)
	}
	s.log.Info("wallet imported", slog.String("address", acc.PublicKey.ToBase58()))
	return acc, nil
}

// LoadKeypairFile reads keypair file in the Solana CLI format, ie a separate mint authority.
func LoadKeypairFile(path string) (types.Account, error) {
	acc, err := readKeypairFile(path)
	if err != nil {
		return types.Account{}, fmt.Errorf("%w %s: %w", ErrKeypairLoad, path, err)
	}
	return acc, nil
}

func readKeypairFile(path string) (types.Account, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Account{}, err
	}
	// []byte would be decoded from base64 string so read ints and range check them
	var ints []int
	if err := json.Unmarshal(data, &ints); err != nil {
		return types.Account{}, fmt.Errorf("decoding keypair file: %w", err)
	}
	secret := make([]byte, len(ints))
	for i, v := range ints {
		if v < 0 || v > 255 {
			return types.Account{}, fmt.Errorf("invalid byte value %d at index %d", v, i)
		}
		secret[i] = byte(v)
	}
	return accountFromSecret(secret)
}

func writeKeypairFile(path string, acc types.Account, force bool) error {
	ints := make([]int, len(acc.PrivateKey))
	for i, b := range acc.PrivateKey {
		ints[i] = int(b)
	}
	data, err := json.Marshal(ints)
	if err != nil {
		return fmt.Errorf("encoding keypair: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	flags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
	if force {
		flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}
	f, err := os.OpenFile(path, flags, keypairFileMode)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: %s", ErrKeypairExists, path)
		}
		return err
	}
	if _, err := f.Write(data); err != nil {
		return errors.Join(err, f.Close())
	}
	return f.Close()
}

// accountFromSecret checks that the public half of the 64 byte key matches the seed.
func accountFromSecret(secret []byte) (types.Account, error) {
	if len(secret) != ed25519.PrivateKeySize {
		return types.Account{}, fmt.Errorf("invalid secret key length %d, expected %d", len(secret), ed25519.PrivateKeySize)
	}
	expected := ed25519.NewKeyFromSeed(secret[:ed25519.SeedSize])
	if !bytes.Equal(expected, secret) {
		return types.Account{}, errors.New("public key does not match the secret key")
	}
	return types.AccountFromBytes(secret)
}
