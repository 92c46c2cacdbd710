package ssmix

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"github.com/ssmixtwins/ssmixtwins/internal/tables"
)

// Encoding selects the on-disk character encoding.
type Encoding string

const (
	// EncodingISO2022JP is the JIS encoding SS-MIX2 receivers expect.
	EncodingISO2022JP Encoding = "iso-2022-jp"
	// EncodingUTF8 writes the message text untranslated, for inspection.
	EncodingUTF8 Encoding = "utf-8"
)

// ParseEncoding maps a configuration string onto an Encoding.
func ParseEncoding(s string) (Encoding, error) {
	switch Encoding(s) {
	case EncodingISO2022JP, EncodingUTF8:
		return Encoding(s), nil
	}
	return "", fmt.Errorf("unknown encoding %q, want %q or %q", s, EncodingISO2022JP, EncodingUTF8)
}

// Store writes messages into a standardized storage tree rooted at one
// directory.
type Store struct {
	root     string
	encoding Encoding
	tab      *tables.Tables
}

// NewStore builds a Store. The root directory is created on first
// write, not here.
func NewStore(root string, encoding Encoding, tab *tables.Tables) *Store {
	return &Store{root: root, encoding: encoding, tab: tab}
}

// Root returns the storage root directory.
func (s *Store) Root() string { return s.root }

// Write validates the entry, creates the sharded directory chain and
// writes the encoded message. It returns the path of the written file.
func (s *Store) Write(e Entry, message string) (string, error) {
	if err := e.Validate(s.tab); err != nil {
		return "", fmt.Errorf("storage entry: %w", err)
	}
	body, err := s.encode(message)
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", e.FileName(), err)
	}
	path := e.Path(s.root)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func (s *Store) encode(message string) ([]byte, error) {
	if s.encoding == EncodingUTF8 {
		return []byte(message), nil
	}
	out, _, err := transform.Bytes(japanese.ISO2022JP.NewEncoder(), []byte(message))
	if err != nil {
		return nil, err
	}
	return out, nil
}
