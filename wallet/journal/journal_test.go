package journal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func openTestJournal(t *testing.T) (*Journal, string) {
	path := filepath.Join(t.TempDir(), FileName)
	j, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })
	return j, path
}

func TestJournal_RecordsStepsInOrder(t *testing.T) {
	j, _ := openTestJournal(t)

	steps := []Step{StepUploaded, StepMintCreated, StepHolderReady, StepSupplyMinted, StepMetadataCreated, StepCompleted}
	for i, s := range steps {
		require.NoError(t, j.Record("MintA", Entry{Step: s, Signature: string(rune('a' + i))}))
	}
	require.NoError(t, j.Record("MintB", Entry{Step: StepUploaded, URI: "https://gw/ipfs/cid"}))

	entries, err := j.Entries("MintA")
	require.NoError(t, err)
	require.Len(t, entries, len(steps))
	for i, e := range entries {
		require.Equal(t, steps[i], e.Step)
		require.Equal(t, string(rune('a'+i)), e.Signature)
		require.False(t, e.Time.IsZero())
	}

	entries, err = j.Entries("MintB")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "https://gw/ipfs/cid", entries[0].URI)

	entries, err = j.Entries("unknown")
	require.NoError(t, err)
	require.Empty(t, entries)

	mints, err := j.Mints()
	require.NoError(t, err)
	require.Equal(t, []string{"MintA", "MintB"}, mints)

	done, err := j.HasStep("MintA", StepCompleted)
	require.NoError(t, err)
	require.True(t, done)
	done, err = j.HasStep("MintB", StepCompleted)
	require.NoError(t, err)
	require.False(t, done)
}

func TestJournal_PersistsAcrossOpen(t *testing.T) {
	j, path := openTestJournal(t)
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, j.Record("Mint", Entry{Step: StepMintCreated, Signature: "sig", Time: ts, RunID: "run-1"}))
	require.NoError(t, j.Close())

	j, err := Open(path)
	require.NoError(t, err)
	defer j.Close()
	entries, err := j.Entries("Mint")
	require.NoError(t, err)
	require.Equal(t, []Entry{{Step: StepMintCreated, Signature: "sig", Time: ts, RunID: "run-1"}}, entries)
}

func TestJournal_Locked(t *testing.T) {
	_, path := openTestJournal(t)

	_, err := Open(path)
	require.ErrorIs(t, err, ErrLocked)
}

func TestJournal_RecordRequiresMint(t *testing.T) {
	j, _ := openTestJournal(t)
	require.EqualError(t, j.Record("", Entry{Step: StepUploaded}), "mint address is required")
}
