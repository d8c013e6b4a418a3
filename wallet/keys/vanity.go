package keys

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"sync/atomic"
	"time"
	"unicode"

	"github.com/blocto/solana-go-sdk/types"
	"golang.org/x/sync/errgroup"
)

const (
	base58Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

	// public key is 32 bytes which base58 encodes into 43 or 44 characters but
	// anything longer than a handful of characters would take ages to find
	MaxVanityPrefixLength = 8
)

var (
	ErrInvalidPrefix = errors.New("invalid vanity prefix")

	errFound = errors.New("match found")
)

type VanityOptions struct {
	IgnoreCase bool
	// number of goroutines searching, defaults to number of CPUs
	Workers int
	// how often progress is logged, zero disables progress logging
	ProgressInterval time.Duration
	Log              *slog.Logger
}

// ValidateVanityPrefix checks that the prefix can be part of base58 encoded public key.
func ValidateVanityPrefix(prefix string, ignoreCase bool) error {
	if prefix == "" {
		return fmt.Errorf("%w: prefix is empty", ErrInvalidPrefix)
	}
	if len(prefix) > MaxVanityPrefixLength {
		return fmt.Errorf("%w: prefix is longer than %d characters", ErrInvalidPrefix, MaxVanityPrefixLength)
	}
	for _, c := range prefix {
		if strings.ContainsRune(base58Alphabet, c) {
			continue
		}
		if ignoreCase && strings.ContainsRune(base58Alphabet, toggleCase(c)) {
			continue
		}
		return fmt.Errorf("%w: character %q is not in base58 alphabet", ErrInvalidPrefix, c)
	}
	return nil
}

/*
GrindVanity generates random keypairs until it finds one whose base58 encoded
public key starts with "prefix". Search runs in parallel and stops when match is
found or ctx is cancelled.
*/
func GrindVanity(ctx context.Context, prefix string, opts VanityOptions) (types.Account, error) {
	if err := ValidateVanityPrefix(prefix, opts.IgnoreCase); err != nil {
		return types.Account{}, err
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	match := prefix
	if opts.IgnoreCase {
		match = strings.ToLower(prefix)
	}

	var attempts atomic.Uint64
	found := make(chan types.Account, 1)
	g, ctx := errgroup.WithContext(ctx)
	for range workers {
		g.Go(func() error {
			for {
				if err := ctx.Err(); err != nil {
					return err
				}
				acc := types.NewAccount()
				attempts.Add(1)
				addr := acc.PublicKey.ToBase58()
				if opts.IgnoreCase {
					addr = strings.ToLower(addr)
				}
				if strings.HasPrefix(addr, match) {
					select {
					case found <- acc:
					default:
					}
					return errFound
				}
			}
		})
	}
	if opts.ProgressInterval > 0 && opts.Log != nil {
		g.Go(func() error {
			ticker := time.NewTicker(opts.ProgressInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
					opts.Log.InfoContext(ctx, "searching vanity address", slog.String("prefix", prefix), slog.Uint64("attempts", attempts.Load()))
				}
			}
		})
	}

	err := g.Wait()
	select {
	case acc := <-found:
		if opts.Log != nil {
			opts.Log.DebugContext(ctx, "vanity address found", slog.String("address", acc.PublicKey.ToBase58()), slog.Uint64("attempts", attempts.Load()))
		}
		return acc, nil
	default:
		return types.Account{}, fmt.Errorf("vanity search stopped after %d attempts: %w", attempts.Load(), err)
	}
}

func toggleCase(c rune) rune {
	if unicode.IsUpper(c) {
		return unicode.ToLower(c)
	}
	return unicode.ToUpper(c)
}
