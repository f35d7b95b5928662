package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var papersBucket = []byte("papers")

// ErrNotFound is returned by Get for unknown ids.
var ErrNotFound = errors.New("paper not found")

type PaperRecord struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	PDFURL      string    `json:"pdf_url"`
	Chars       int       `json:"chars"`
	StopKeyword string    `json:"stop_keyword,omitempty"`
	ProcessedAt time.Time `json:"processed_at"`
}

// PaperRepository remembers which papers were already processed.
type PaperRepository interface {
	Has(id string) (bool, error)
	Get(id string) (*PaperRecord, error)
	Put(rec *PaperRecord) error
	Close() error
}

// PaperStore is a PaperRepository on a bbolt file.
type PaperStore struct {
	db *bolt.DB
}

// OpenPaperStore opens (or creates) the database at path.
func OpenPaperStore(path string) (*PaperStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory for BoltDB: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open BoltDB: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(papersBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	return &PaperStore{db: db}, nil
}

func (s *PaperStore) Has(id string) (bool, error) {
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		found = tx.Bucket(papersBucket).Get([]byte(id)) != nil
		return nil
	})
	return found, err
}

func (s *PaperStore) Get(id string) (*PaperRecord, error) {
	var rec PaperRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(papersBucket).Get([]byte(id))
		if v == nil {
			return ErrNotFound
		}
		return json.Unmarshal(v, &rec)
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *PaperStore) Put(rec *PaperRecord) error {
	if rec.ID == "" {
		return errors.New("paper id is required")
	}
	if rec.ProcessedAt.IsZero() {
		rec.ProcessedAt = time.Now().UTC()
	}

	v, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode paper record: %w", err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(papersBucket).Put([]byte(rec.ID), v)
	})
}

// Close closes the BoltDB database
func (s *PaperStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

var _ PaperRepository = (*PaperStore)(nil)
