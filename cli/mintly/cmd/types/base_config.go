package types

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"gopkg.in/yaml.v3"

	"github.com/mintly-cc/mintly/logger"
)

type (
	BaseConfiguration struct {
		// The mintly home directory, all the keypair, metadata and journal files live there
		HomeDir string
		// Configuration file URL. If it's relative, then it's relative from the HomeDir.
		CfgFile string
		// Logger configuration file URL.
		LogCfgFile string

		ConsoleWriter ConsoleWrapper
		// where the interactive prompts read user input from
		Stdin io.Reader

		Logger *slog.Logger

		Clients ClientFactory

		TracerProvider trace.TracerProvider
	}
)

const (
	// The prefix for configuration keys inside environment.
	envPrefix = "MINTLY"
	// The default name for config file.
	defaultConfigFile = "config.props"
	// the default mintly directory.
	defaultMintlyDir = ".mintly"
	// The default logger configuration file name.
	defaultLoggerConfigFile = "logger-config.yaml"
	// The configuration key for home directory.
	keyHome = "home"
	// The configuration key for config file name.
	keyConfig = "config"

	flagNameLoggerCfgFile = "logger-config"
	flagNameLogOutputFile = "log-file"
	flagNameLogLevel      = "log-level"
	flagNameLogFormat     = "log-format"
)

func (c *BaseConfiguration) AddConfigurationFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&c.HomeDir, keyHome, "", fmt.Sprintf("set the MINTLY_HOME for this invocation (default is %s)", mintlyHomeDir()))
	cmd.PersistentFlags().StringVar(&c.CfgFile, keyConfig, "", fmt.Sprintf("config file URL (default is $MINTLY_HOME/%s)", defaultConfigFile))
	cmd.PersistentFlags().StringVar(&c.LogCfgFile, flagNameLoggerCfgFile, defaultLoggerConfigFile, "logger config file URL. Considered absolute if starts with '/'. Otherwise relative from $MINTLY_HOME.")
	// do not set default values for these flags as then we can easily determine whether to load the value from cfg file or not
	cmd.PersistentFlags().String(flagNameLogOutputFile, "", "log file path or one of the special values: stdout, stderr, discard")
	cmd.PersistentFlags().String(flagNameLogLevel, "", "logging level, one of: TRACE, DEBUG, INFO, WARN, ERROR, NONE")
	cmd.PersistentFlags().String(flagNameLogFormat, "", "log format, one of: text, json, console")
}

func (c *BaseConfiguration) InitConfigFileLocation() {
	// Home directory and config file are special configuration values as these are used for loading in rest of the configuration.
	// Handle these manually, before other configuration loaded with Viper.

	// Home dir is loaded from command line argument. If it's not set, then from env. If that's not set, then default is used.
	if c.HomeDir == "" {
		c.HomeDir = os.Getenv(envKey(keyHome))
		if c.HomeDir == "" {
			c.HomeDir = mintlyHomeDir()
		}
	}

	// Config file name is loaded from command line argument. If it's not set, then from env. If that's not set, then default is used.
	if c.CfgFile == "" {
		c.CfgFile = os.Getenv(envKey(keyConfig))
		if c.CfgFile == "" {
			c.CfgFile = defaultConfigFile
		}
	}
	if !filepath.IsAbs(c.CfgFile) {
		c.CfgFile = filepath.Join(c.HomeDir, c.CfgFile)
	}
}

/*
LoggerCfgFilename always returns non-empty filename - either the value
of the flag set by user or default cfg location.
*/
func (c *BaseConfiguration) LoggerCfgFilename() string {
	if c.LogCfgFile == "" {
		c.LogCfgFile = defaultLoggerConfigFile
	}
	if !filepath.IsAbs(c.LogCfgFile) {
		return filepath.Join(c.HomeDir, c.LogCfgFile)
	}
	return c.LogCfgFile
}

func (c *BaseConfiguration) ConfigFileExists() bool {
	_, err := os.Stat(c.CfgFile)
	return err == nil
}

// Tracer returns tracer of the configured provider, noop tracer when provider is not set.
func (c *BaseConfiguration) Tracer(name string) trace.Tracer {
	if c.TracerProvider == nil {
		c.TracerProvider = noop.NewTracerProvider()
	}
	return c.TracerProvider.Tracer(name)
}

/*
InitLogger creates Logger based on logger configuration file and flags in "cmd".
Missing default logger configuration file is not an error.
*/
func (c *BaseConfiguration) InitLogger(cmd *cobra.Command) (*slog.Logger, error) {
	cfg := &logger.LogConfiguration{}

	loggerCfgFile := c.LoggerCfgFilename()
	if f, err := os.Open(loggerCfgFile); err != nil {
		defaultLoggerCfg := filepath.Join(c.HomeDir, defaultLoggerConfigFile)
		if !(errors.Is(err, os.ErrNotExist) && loggerCfgFile == defaultLoggerCfg) {
			return nil, fmt.Errorf("opening logger configuration file: %w", err)
		}
	} else {
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
			return nil, fmt.Errorf("decoding logger configuration (%s): %w", loggerCfgFile, err)
		}
	}

	getFlagValueIfSet := func(flagName string, value *string) error {
		if cmd.Flags().Changed(flagName) {
			var err error
			if *value, err = cmd.Flags().GetString(flagName); err != nil {
				return fmt.Errorf("failed to read %s flag value: %w", flagName, err)
			}
		}
		return nil
	}

	// flags override values loaded from cfg file.
	// NB! these flags mustn't have default values in Cobra cmd definition!
	if err := getFlagValueIfSet(flagNameLogLevel, &cfg.Level); err != nil {
		return nil, err
	}
	if err := getFlagValueIfSet(flagNameLogFormat, &cfg.Format); err != nil {
		return nil, err
	}
	if err := getFlagValueIfSet(flagNameLogOutputFile, &cfg.OutputPath); err != nil {
		return nil, err
	}

	log, err := logger.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return log, nil
}

// InitializeConfig reads in config file and ENV variables if set.
func (c *BaseConfiguration) InitializeConfig(cmd *cobra.Command) error {
	v := viper.New()

	c.InitConfigFileLocation()

	if c.ConfigFileExists() {
		v.SetConfigFile(c.CfgFile)
	}

	// Attempt to read the config file, gracefully ignoring errors
	// caused by a config file not being found. Return an error
	// if we cannot parse the config file.
	if err := v.ReadInConfig(); err != nil {
		// It's okay if there isn't a config file
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
	}

	// When we bind flags to environment variables expect that the
	// environment variables are prefixed, e.g. a flag like --network
	// binds to an environment variable MINTLY_NETWORK.
	v.SetEnvPrefix(envPrefix)

	// Bind to environment variables
	// Works great for simple config names, but needs help for names
	// like --rpc-url which we fix in the bindFlags function
	v.AutomaticEnv()

	// Bind the current command's flags to viper
	if err := bindFlags(cmd, v); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}

	return nil
}

func envKey(key string) string {
	return strings.ToUpper(envPrefix + "_" + key)
}

func mintlyHomeDir() string {
	dir, err := os.UserHomeDir()
	if err != nil {
		panic("default user home dir not defined: " + err.Error())
	}
	return filepath.Join(dir, defaultMintlyDir)
}

// Bind each cobra flag to its associated viper configuration (config file and environment variable)
func bindFlags(cmd *cobra.Command, v *viper.Viper) error {
	var bindFlagErr []error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Name == keyHome || f.Name == keyConfig {
			// "home" and "config" are special configuration values, handled separately.
			return
		}

		// Environment variables can't have dashes in them, so bind them to their equivalent
		// keys with underscores, e.g. --rpc-url to MINTLY_RPC_URL
		if strings.Contains(f.Name, "-") {
			envVarSuffix := strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
			if err := v.BindEnv(f.Name, fmt.Sprintf("%s_%s", envPrefix, envVarSuffix)); err != nil {
				bindFlagErr = append(bindFlagErr, fmt.Errorf("binding env to flag %q: %w", f.Name, err))
				return
			}
		}

		// Apply the viper config value to the flag when the flag is not set and viper has a value
		if !f.Changed && v.IsSet(f.Name) {
			val := v.Get(f.Name)
			if err := cmd.Flags().Set(f.Name, fmt.Sprintf("%v", val)); err != nil {
				bindFlagErr = append(bindFlagErr, fmt.Errorf("setting flag %q value: %w", f.Name, err))
				return
			}
		}
	})

	return errors.Join(bindFlagErr...)
}

func InitializeConfig(cmd *cobra.Command, config *BaseConfiguration) error {
	var errs []error

	if err := config.InitializeConfig(cmd); err != nil {
		errs = append(errs, fmt.Errorf("reading configuration: %w", err))
	}

	// logger may have been injected (ie by tests)
	if config.Logger == nil {
		log, err := config.InitLogger(cmd)
		if err != nil {
			errs = append(errs, fmt.Errorf("initializing logger: %w", err))
		}
		config.Logger = log
	}

	if config.TracerProvider == nil {
		config.TracerProvider = noop.NewTracerProvider()
	}
	if config.ConsoleWriter == nil {
		config.ConsoleWriter = NewStdoutWriter()
	}
	if config.Stdin == nil {
		config.Stdin = os.Stdin
	}
	if config.Clients == nil {
		config.Clients = DefaultClientFactory{}
	}
	return errors.Join(errs...)
}
