package metadata

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
)

const FileName = "token-metadata.json"

var ErrMetadataMissing = errors.New("token metadata not found")

// Store persists the token descriptor as token-metadata.json in a directory.
type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) Path() string {
	return filepath.Join(s.dir, FileName)
}

/*
Persist normalizes and validates "d" and writes it, replacing previous content.
The normalized descriptor is returned.
*/
func (s *Store) Persist(d Descriptor) (*Descriptor, error) {
	d.Normalize()
	if err := d.Validate(); err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding token metadata: %w", err)
	}
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return nil, fmt.Errorf("creating directory: %w", err)
	}
	if err := os.WriteFile(s.Path(), data, 0600); err != nil {
		return nil, fmt.Errorf("writing token metadata: %w", err)
	}
	return &d, nil
}

// Load returns ErrMetadataMissing when nothing has been persisted yet.
func (s *Store) Load() (*Descriptor, error) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMetadataMissing, s.Path())
		}
		return nil, fmt.Errorf("reading token metadata: %w", err)
	}
	d := &Descriptor{}
	if err := json.Unmarshal(data, d); err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %w", ErrInvalidDescriptor, s.Path(), err)
	}
	d.Normalize()
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}
