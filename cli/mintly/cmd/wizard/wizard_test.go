package wizard

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/blocto/solana-go-sdk/types"
	"github.com/stretchr/testify/require"

	"github.com/mintly-cc/mintly/cli/mintly/cmd/testutils"
	"github.com/mintly-cc/mintly/internal/testutils/logger"
	"github.com/mintly-cc/mintly/wallet/keys"
	"github.com/mintly-cc/mintly/wallet/metadata"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

type testEnv struct {
	home          string
	defaultWallet string
	image         string
	clients       *testutils.MockClientFactory
	exec          *testutils.CmdExecutor
}

func newTestEnv(t *testing.T) *testEnv {
	env := &testEnv{
		home:          t.TempDir(),
		defaultWallet: filepath.Join(t.TempDir(), "id.json"),
		image:         filepath.Join(t.TempDir(), "logo.png"),
		clients:       testutils.NewMockClientFactory(),
	}
	require.NoError(t, os.WriteFile(env.image, pngHeader, 0600))
	env.exec = testutils.NewCmdExecutor(NewWizardCmd, "--wallet="+env.defaultWallet).WithHome(env.home).WithClients(env.clients)
	return env
}

func (env *testEnv) mint(t *testing.T) types.Account {
	acc, err := keys.NewStore(env.home, "", logger.New(t)).LoadOrCreateMintIdentity()
	require.NoError(t, err)
	return acc
}

func TestWizard_HomeWallet(t *testing.T) {
	env := newTestEnv(t)
	wallet, err := keys.NewStore(env.home, "", logger.New(t)).ImportWallet(types.NewAccount().PrivateKey, false)
	require.NoError(t, err)

	out := env.exec.WithStdin(
		"", // wallet: default is the wallet of the home directory
		"", // network: devnet
		"Wizard Token",
		"wiz",
		"A token from the wizard",
		"2",
		"100",
		env.image,
		"", // no vanity prefix
		"y",
	).Exec(t)

	require.Contains(t, out.Lines, "Using wallet "+wallet.PublicKey.ToBase58())
	require.Contains(t, out.Lines, "  Symbol:      WIZ")
	require.Contains(t, out.Lines, "  Supply:      100 (2 decimals)")
	require.Contains(t, out.Lines, "Token created successfully!")

	mint := env.mint(t)
	info := env.clients.LedgerMock.Mints[mint.PublicKey]
	require.NotNil(t, info)
	require.EqualValues(t, 10000, info.Supply)
	require.Equal(t, wallet.PublicKey, *info.MintAuthority)
	require.Equal(t, "WIZ", env.clients.LedgerMock.Metadata[mint.PublicKey].Symbol)

	d, err := metadata.NewStore(env.home).Load()
	require.NoError(t, err)
	require.Equal(t, "Wizard Token", d.Name)
	require.Equal(t, "A token from the wizard", d.Description)
	require.FileExists(t, filepath.Join(env.home, "image.png"))
}

func TestWizard_Base58WalletAndValidation(t *testing.T) {
	env := newTestEnv(t)
	acc := types.NewAccount()

	out := env.exec.WithStdin(
		"2",
		"not-a-key",
		"2",
		keys.EncodeBase58Secret(acc),
		"testnet",
		"mainnet",
		strings.Repeat("x", 33),
		"Token",
		"TOOLONGSYMBOL",
		"TKN",
		"",
		"10",
		"9",
		"0",
		"1",
		filepath.Join(env.home, "missing.png"),
		env.image,
		"",
		"n",
	).Exec(t)

	require.Contains(t, out.String(), "Could not use the wallet: decoding base58 secret key")
	require.Contains(t, out.Lines, "Using wallet "+acc.PublicKey.ToBase58())
	require.Contains(t, out.Lines, `Invalid value: unsupported network "testnet", expected "devnet" or "mainnet-beta"`)
	require.Contains(t, out.Lines, "Invalid value: must not be longer than 32 bytes")
	require.Contains(t, out.Lines, "Invalid value: must not be longer than 10 bytes")
	require.Contains(t, out.Lines, "Invalid value: decimals must be between 0 and 9")
	require.Contains(t, out.Lines, "Invalid value: amount must be a whole number greater than zero")
	require.Contains(t, out.Lines, "  Network:     mainnet-beta")
	require.Contains(t, out.Lines, "Aborted, nothing was created.")

	// the entered key was saved but nothing else was done
	signer, err := keys.NewStore(env.home, "", logger.New(t)).LoadWalletSigner()
	require.NoError(t, err)
	require.Equal(t, acc.PublicKey, signer.PublicKey)
	require.Empty(t, env.clients.LedgerMock.Calls)
	_, err = os.Stat(filepath.Join(env.home, metadata.FileName))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestWizard_DefaultWalletAndVanity(t *testing.T) {
	env := newTestEnv(t)
	wallet := types.NewAccount()
	require.NoError(t, keys.NewStore(filepath.Dir(env.defaultWallet), "", logger.New(t)).SaveMintIdentity(wallet, false))
	require.NoError(t, os.Rename(filepath.Join(filepath.Dir(env.defaultWallet), keys.MintIdentityFileName), env.defaultWallet))

	out := env.exec.WithStdin(
		"1",
		"devnet",
		"Vanity",
		"VAN",
		"",
		"0",
		"42",
		env.image,
		"a",
		"", // case-insensitive
		"y",
	).Exec(t)
	require.Contains(t, out.Lines, "Using wallet "+wallet.PublicKey.ToBase58())
	require.Contains(t, out.Lines, "Token created successfully!")

	mint := env.mint(t)
	require.True(t, strings.HasPrefix(strings.ToLower(mint.PublicKey.ToBase58()), "a"))
	require.EqualValues(t, 42, env.clients.LedgerMock.Mints[mint.PublicKey].Supply)
	require.Equal(t, wallet.PublicKey, *env.clients.LedgerMock.Mints[mint.PublicKey].MintAuthority)
}

func TestWizard_InputEnds(t *testing.T) {
	env := newTestEnv(t)
	env.exec.WithStdin("1").ExecWithError(t, "EOF")
}
