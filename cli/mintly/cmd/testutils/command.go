package testutils

import (
	"io"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/mintly-cc/mintly/cli/mintly/cmd/types"
	"github.com/mintly-cc/mintly/internal/testutils/logger"
)

type CmdConstructor func(*types.BaseConfiguration) *cobra.Command

type CmdExecutor struct {
	home           string
	stdin          string
	clients        types.ClientFactory
	cmdConstructor CmdConstructor
	prefixArgs     []string
}

func NewCmdExecutor(cmdConstructor CmdConstructor, prefixArgs ...string) *CmdExecutor {
	return &CmdExecutor{
		cmdConstructor: cmdConstructor,
		prefixArgs:     prefixArgs,
	}
}

func (c CmdExecutor) WithHome(home string) *CmdExecutor {
	c.home = home
	return &c
}

func (c CmdExecutor) WithPrefixArgs(prefixArgs ...string) *CmdExecutor {
	c.prefixArgs = append(append([]string{}, c.prefixArgs...), prefixArgs...)
	return &c
}

// WithStdin sets the input of the interactive prompts.
func (c CmdExecutor) WithStdin(lines ...string) *CmdExecutor {
	c.stdin = strings.Join(lines, "\n") + "\n"
	return &c
}

func (c CmdExecutor) WithClients(clients types.ClientFactory) *CmdExecutor {
	c.clients = clients
	return &c
}

func (c *CmdExecutor) Exec(t *testing.T, args ...string) *TestConsoleWriter {
	output, err := c.exec(t, args...)
	require.NoError(t, err)
	return output
}

func (c *CmdExecutor) ExecWithError(t *testing.T, expectedError string, args ...string) *TestConsoleWriter {
	output, err := c.exec(t, args...)
	require.ErrorContains(t, err, expectedError)
	return output
}

func (c *CmdExecutor) exec(t *testing.T, args ...string) (*TestConsoleWriter, error) {
	consoleWriter := &TestConsoleWriter{}
	var stdin io.Reader = strings.NewReader(c.stdin)
	cmdConf := &types.BaseConfiguration{
		HomeDir:       c.home,
		ConsoleWriter: consoleWriter,
		Stdin:         stdin,
		Logger:        logger.New(t),
		Clients:       c.clients,
	}
	cmd := c.cmdConstructor(cmdConf)
	cmd.SetArgs(append(c.prefixArgs, args...))

	return consoleWriter, cmd.Execute()
}
