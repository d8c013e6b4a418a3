package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mintly-cc/mintly/cli/mintly/cmd/mintkey"
	"github.com/mintly-cc/mintly/cli/mintly/cmd/token"
	"github.com/mintly-cc/mintly/cli/mintly/cmd/types"
	"github.com/mintly-cc/mintly/cli/mintly/cmd/wallet"
	"github.com/mintly-cc/mintly/cli/mintly/cmd/wizard"
)

type MintlyApp struct {
	baseCmd  *cobra.Command
	baseConf *types.BaseConfiguration
}

// New creates a new mintly application
func New() *MintlyApp {
	baseCmd, baseConfig := newBaseCmd()
	app := &MintlyApp{baseCmd: baseCmd, baseConf: baseConfig}
	app.AddSubcommands()
	return app
}

// Execute runs the application
func (a *MintlyApp) Execute(ctx context.Context) error {
	return a.baseCmd.ExecuteContext(ctx)
}

func (a *MintlyApp) AddSubcommands() {
	a.baseCmd.AddCommand(wizard.NewWizardCmd(a.baseConf))
	a.baseCmd.AddCommand(token.NewTokenCmd(a.baseConf))
	a.baseCmd.AddCommand(wallet.NewWalletCmd(a.baseConf))
	a.baseCmd.AddCommand(mintkey.NewMintKeyCmd(a.baseConf))
}

func newBaseCmd() (*cobra.Command, *types.BaseConfiguration) {
	config := &types.BaseConfiguration{}
	// BaseCmd represents the base command when called without any subcommands
	var baseCmd = &cobra.Command{
		Use:           "mintly",
		Short:         "creates Solana SPL tokens with metadata",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// If subcommand does not define PersistentPreRunE, the one from base cmd is used.
			if err := types.InitializeConfig(cmd, config); err != nil {
				return fmt.Errorf("failed to initialize configuration: %w", err)
			}
			return nil
		},
	}
	config.AddConfigurationFlags(baseCmd)
	return baseCmd, config
}
