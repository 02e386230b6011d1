package library

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/burrowtv/burrow/internal/database"
)

// PostgresStore keeps the library as a single serialized payload row, for
// deployments that already run Postgres. The contract matches FileStore:
// full-sequence rewrites only, corrupt payload falls back to the default.
type PostgresStore struct {
	mu  sync.Mutex
	db  database.DBTX
	seq sequence
}

const persistTimeout = 5 * time.Second

// NewPostgresStore rehydrates the sequence from the payload row. A missing
// row or an unparseable payload yields the default library without error.
func NewPostgresStore(ctx context.Context, db database.DBTX) (*PostgresStore, error) {
	s := &PostgresStore{db: db}

	var payload string
	err := db.QueryRow(ctx, `SELECT payload FROM library_state WHERE id = 1`).Scan(&payload)
	if err != nil {
		s.seq.reset()
		return s, nil
	}

	entries, err := decodePayload([]byte(payload))
	if err != nil {
		slog.Warn("library: corrupt payload row, using default library", "error", err)
		s.seq.reset()
		return s, nil
	}

	s.seq.entries = entries
	return s, nil
}

func (s *PostgresStore) List() []VideoEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq.list()
}

func (s *PostgresStore) Get(id string) (VideoEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq.get(id)
}

func (s *PostgresStore) Add(entry VideoEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.seq.add(entry); err != nil {
		return err
	}
	if err := s.persistLocked(); err != nil {
		// Keep memory and storage in step; back out the mutation.
		s.seq.entries = s.seq.entries[:len(s.seq.entries)-1]
		return err
	}
	return nil
}

func (s *PostgresStore) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	before := s.seq.list()
	if err := s.seq.remove(id); err != nil {
		return err
	}
	if err := s.persistLocked(); err != nil {
		s.seq.entries = before
		return err
	}
	return nil
}

func (s *PostgresStore) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	before := s.seq.list()
	s.seq.reset()
	if err := s.persistLocked(); err != nil {
		s.seq.entries = before
		return err
	}
	return nil
}

func (s *PostgresStore) persistLocked() error {
	payload, err := encodePayload(s.seq.entries)
	if err != nil {
		return fmt.Errorf("encode library: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	_, err = s.db.Exec(ctx,
		`INSERT INTO library_state (id, payload, updated_at) VALUES (1, $1, now())
		 ON CONFLICT (id) DO UPDATE SET payload = EXCLUDED.payload, updated_at = now()`,
		string(payload),
	)
	if err != nil {
		return fmt.Errorf("persist library: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	return nil
}
