package validator

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	defaultDockerImage = "solanalabs/solana:v1.18.26"
	containerRpcPort   = "8899/tcp"
)

func dockerImage() string {
	image := os.Getenv("MINTLY_TEST_DOCKERIMAGE")
	if image == "" {
		return defaultDockerImage
	}
	return image
}

/*
Start starts solana-test-validator in a container and returns URL of its RPC
endpoint. Test is skipped unless MINTLY_TEST_VALIDATOR env var is "1" as the
tests need docker and take time to run.
*/
func Start(t *testing.T) string {
	if os.Getenv("MINTLY_TEST_VALIDATOR") != "1" {
		t.Skip("set MINTLY_TEST_VALIDATOR=1 to run tests against solana-test-validator container")
	}
	ctx := context.Background()

	cr := tc.ContainerRequest{
		Image:        dockerImage(),
		Entrypoint:   []string{"solana-test-validator"},
		Cmd:          []string{"--ledger", "/tmp/test-ledger", "--quiet", "--reset"},
		ExposedPorts: []string{containerRpcPort},
		WaitingFor:   wait.ForHTTP("/health").WithPort(containerRpcPort).WithStartupTimeout(2 * time.Minute),
	}
	gc, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: cr,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, gc.Terminate(ctx))
	})

	rpcPort, err := gc.MappedPort(ctx, containerRpcPort)
	require.NoError(t, err)
	rpcHost, err := gc.Host(ctx)
	require.NoError(t, err)
	return fmt.Sprintf("http://%s:%s", rpcHost, rpcPort.Port())
}
