package keys

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mintly-cc/mintly/internal/testutils/logger"
)

func TestValidateVanityPrefix(t *testing.T) {
	require.NoError(t, ValidateVanityPrefix("Mint", false))
	require.NoError(t, ValidateVanityPrefix("abc123", false))

	for _, prefix := range []string{"0", "O", "I", "l", "ab-c", "tök"} {
		require.ErrorIs(t, ValidateVanityPrefix(prefix, false), ErrInvalidPrefix, prefix)
	}
	// "l" is not in the alphabet but "L" is
	require.NoError(t, ValidateVanityPrefix("l", true))
	require.ErrorIs(t, ValidateVanityPrefix("0", true), ErrInvalidPrefix)

	require.ErrorContains(t, ValidateVanityPrefix("", false), "prefix is empty")
	require.ErrorContains(t, ValidateVanityPrefix(strings.Repeat("a", MaxVanityPrefixLength+1), false), "prefix is longer than 8 characters")
}

func TestGrindVanity(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	acc, err := GrindVanity(ctx, "a", VanityOptions{IgnoreCase: true, Workers: 2, Log: logger.New(t)})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(strings.ToLower(acc.PublicKey.ToBase58()), "a"), acc.PublicKey.ToBase58())
	// keypair must be usable as mint identity
	_, err = accountFromSecret(acc.PrivateKey)
	require.NoError(t, err)
}

func TestGrindVanity_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := GrindVanity(ctx, "zzzzzzzz", VanityOptions{Workers: 2})
	require.ErrorIs(t, err, context.Canceled)
	require.ErrorContains(t, err, "vanity search stopped after")
}

func TestGrindVanity_InvalidPrefix(t *testing.T) {
	_, err := GrindVanity(context.Background(), "0x", VanityOptions{})
	require.ErrorIs(t, err, ErrInvalidPrefix)
}
