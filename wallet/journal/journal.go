package journal

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/goccy/go-json"
	bolt "go.etcd.io/bbolt"
)

const FileName = "journal.db"

type Step string

const (
	StepUploaded        Step = "uploaded"
	StepMintCreated     Step = "mint-created"
	StepHolderReady     Step = "holder-ready"
	StepSupplyMinted    Step = "supply-minted"
	StepMetadataCreated Step = "metadata-created"
	StepCompleted       Step = "completed"
)

var (
	mintsBucket = []byte("mints")

	ErrLocked = errors.New("journal is locked by another process")
)

type (
	// Entry is a record of a completed issuance step.
	Entry struct {
		Step      Step      `json:"step"`
		RunID     string    `json:"runId,omitempty"`
		Signature string    `json:"signature,omitempty"`
		URI       string    `json:"uri,omitempty"`
		Address   string    `json:"address,omitempty"`
		Time      time.Time `json:"time"`
	}

	// Journal records the progress of token issuances, one bucket per mint address.
	Journal struct {
		db *bolt.DB
	}
)

/*
Open opens (creating when necessary) journal database file. The file is locked
for the lifetime of the Journal, when another process holds the lock ErrLocked
is returned after a short wait.
*/
func Open(path string) (*Journal, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		if errors.Is(err, bolt.ErrTimeout) {
			return nil, fmt.Errorf("%w: %s", ErrLocked, path)
		}
		return nil, fmt.Errorf("opening journal %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(mintsBucket)
		return err
	})
	if err != nil {
		return nil, errors.Join(fmt.Errorf("initializing journal: %w", err), db.Close())
	}
	return &Journal{db: db}, nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}

// Record appends entry to the journal of the mint. Zero Time is replaced with current time.
func (j *Journal) Record(mint string, e Entry) error {
	if mint == "" {
		return errors.New("mint address is required")
	}
	if e.Time.IsZero() {
		e.Time = time.Now().UTC()
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encoding journal entry: %w", err)
	}
	return j.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.Bucket(mintsBucket).CreateBucketIfNotExists([]byte(mint))
		if err != nil {
			return fmt.Errorf("creating bucket for mint %s: %w", mint, err)
		}
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		return b.Put(binary.BigEndian.AppendUint64(nil, seq), data)
	})
}

// Entries returns journal of the mint in the order entries were recorded.
func (j *Journal) Entries(mint string) ([]Entry, error) {
	var entries []Entry
	err := j.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(mintsBucket).Bucket([]byte(mint))
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			var e Entry
			if err := json.Unmarshal(v, &e); err != nil {
				return fmt.Errorf("decoding journal entry %x: %w", k, err)
			}
			entries = append(entries, e)
			return nil
		})
	})
	return entries, err
}

// HasStep returns true when the journal of the mint contains entry for the step.
func (j *Journal) HasStep(mint string, step Step) (bool, error) {
	entries, err := j.Entries(mint)
	if err != nil {
		return false, err
	}
	for _, e := range entries {
		if e.Step == step {
			return true, nil
		}
	}
	return false, nil
}

// Mints returns addresses of all the mints which have a journal, sorted.
func (j *Journal) Mints() ([]string, error) {
	var mints []string
	err := j.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(mintsBucket).ForEachBucket(func(k []byte) error {
			mints = append(mints, string(k))
			return nil
		})
	})
	sort.Strings(mints)
	return mints, err
}
