package types

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func TestInitConfigFileLocation(t *testing.T) {
	conf := &BaseConfiguration{HomeDir: "/tmp/mintly-home"}
	conf.InitConfigFileLocation()
	require.Equal(t, "/tmp/mintly-home/config.props", conf.CfgFile)

	t.Setenv("MINTLY_HOME", "/tmp/from-env")
	t.Setenv("MINTLY_CONFIG", "/etc/mintly.props")
	conf = &BaseConfiguration{}
	conf.InitConfigFileLocation()
	require.Equal(t, "/tmp/from-env", conf.HomeDir)
	require.Equal(t, "/etc/mintly.props", conf.CfgFile)
}

func newTestCmd(conf *BaseConfiguration) *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	conf.AddConfigurationFlags(cmd)
	cmd.Flags().String("rpc-url", "", "")
	return cmd
}

func TestInitializeConfig_FlagValues(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.props"), []byte("rpc-url=http://from-config:8899\n"), 0600))

	t.Run("config file", func(t *testing.T) {
		conf := &BaseConfiguration{HomeDir: home}
		cmd := newTestCmd(conf)
		require.NoError(t, cmd.ParseFlags(nil))
		require.NoError(t, conf.InitializeConfig(cmd))
		v, err := cmd.Flags().GetString("rpc-url")
		require.NoError(t, err)
		require.Equal(t, "http://from-config:8899", v)
	})

	t.Run("env overrides config file", func(t *testing.T) {
		t.Setenv("MINTLY_RPC_URL", "http://from-env:8899")
		conf := &BaseConfiguration{HomeDir: home}
		cmd := newTestCmd(conf)
		require.NoError(t, cmd.ParseFlags(nil))
		require.NoError(t, conf.InitializeConfig(cmd))
		v, err := cmd.Flags().GetString("rpc-url")
		require.NoError(t, err)
		require.Equal(t, "http://from-env:8899", v)
	})

	t.Run("flag overrides everything", func(t *testing.T) {
		t.Setenv("MINTLY_RPC_URL", "http://from-env:8899")
		conf := &BaseConfiguration{HomeDir: home}
		cmd := newTestCmd(conf)
		require.NoError(t, cmd.ParseFlags([]string{"--rpc-url", "http://from-flag:8899"}))
		require.NoError(t, conf.InitializeConfig(cmd))
		v, err := cmd.Flags().GetString("rpc-url")
		require.NoError(t, err)
		require.Equal(t, "http://from-flag:8899", v)
	})
}

func TestInitLogger(t *testing.T) {
	home := t.TempDir()

	t.Run("missing default config file", func(t *testing.T) {
		conf := &BaseConfiguration{HomeDir: home}
		cmd := newTestCmd(conf)
		require.NoError(t, cmd.ParseFlags(nil))
		log, err := conf.InitLogger(cmd)
		require.NoError(t, err)
		require.True(t, log.Enabled(context.Background(), slog.LevelInfo))
	})

	t.Run("missing explicit config file", func(t *testing.T) {
		conf := &BaseConfiguration{HomeDir: home}
		cmd := newTestCmd(conf)
		require.NoError(t, cmd.ParseFlags([]string{"--logger-config", "custom.yaml"}))
		_, err := conf.InitLogger(cmd)
		require.ErrorContains(t, err, "opening logger configuration file")
	})

	require.NoError(t, os.WriteFile(filepath.Join(home, "logger-config.yaml"), []byte("defaultLevel: WARN\nformat: json\noutputPath: discard\n"), 0600))

	t.Run("config file", func(t *testing.T) {
		conf := &BaseConfiguration{HomeDir: home}
		cmd := newTestCmd(conf)
		require.NoError(t, cmd.ParseFlags(nil))
		log, err := conf.InitLogger(cmd)
		require.NoError(t, err)
		require.False(t, log.Enabled(context.Background(), slog.LevelInfo))
		require.True(t, log.Enabled(context.Background(), slog.LevelWarn))
	})

	t.Run("flag overrides config file", func(t *testing.T) {
		conf := &BaseConfiguration{HomeDir: home}
		cmd := newTestCmd(conf)
		require.NoError(t, cmd.ParseFlags([]string{"--log-level", "ERROR"}))
		log, err := conf.InitLogger(cmd)
		require.NoError(t, err)
		require.False(t, log.Enabled(context.Background(), slog.LevelWarn))
		require.True(t, log.Enabled(context.Background(), slog.LevelError))
	})
}

func TestInitializeConfig_Defaults(t *testing.T) {
	conf := &BaseConfiguration{HomeDir: t.TempDir()}
	cmd := newTestCmd(conf)
	require.NoError(t, cmd.ParseFlags([]string{"--log-level", "NONE"}))
	require.NoError(t, InitializeConfig(cmd, conf))
	require.NotNil(t, conf.Logger)
	require.NotNil(t, conf.ConsoleWriter)
	require.Equal(t, os.Stdin, conf.Stdin)
	require.IsType(t, DefaultClientFactory{}, conf.Clients)
	require.NotNil(t, conf.Tracer("test"))
}
