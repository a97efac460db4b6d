package catalog

import (
	"context"
	"errors"
	"fmt"

	"i18n-extract/internal/extract"
	"i18n-extract/internal/worker"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// insertBatchSize caps the number of rows queued per pgx batch.
const insertBatchSize = 500

const schema = `
CREATE TABLE IF NOT EXISTS extracted_messages (
	file       TEXT        NOT NULL,
	seq        INTEGER     NOT NULL,
	line       INTEGER     NOT NULL,
	pickup     TEXT        NOT NULL,
	arg        INTEGER     NOT NULL,
	text       TEXT        NOT NULL,
	unresolved BOOLEAN     NOT NULL DEFAULT FALSE,
	scanned_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (file, seq)
);
CREATE TABLE IF NOT EXISTS scan_cache (
	hash       TEXT        PRIMARY KEY,
	messages   JSONB       NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`

// Store persists extracted messages and cached scan results in PostgreSQL.
// Rows are kept per file; nothing is merged across files.
type Store struct {
	pool *pgxpool.Pool
}

// Open connects to PostgreSQL and verifies the connection.
func Open(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect PostgreSQL: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping PostgreSQL: %w", err)
	}
	log.Info().Msg("Connected to PostgreSQL")
	return &Store{pool: pool}, nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// EnsureSchema creates the tables used by the store.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure catalog schema: %w", err)
	}
	return nil
}

// ReplaceFile atomically swaps the stored messages of one file for msgs.
func (s *Store) ReplaceFile(ctx context.Context, file string, msgs []extract.Message) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM extracted_messages WHERE file = $1`, file); err != nil {
		return fmt.Errorf("delete messages for %s: %w", file, err)
	}

	seq := 0
	for _, chunk := range worker.Batch(msgs, insertBatchSize) {
		batch := &pgx.Batch{}
		for _, m := range chunk {
			batch.Queue(`
				INSERT INTO extracted_messages (file, seq, line, pickup, arg, text, unresolved)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
			`, file, seq, m.Line, m.Pickup, m.Arg, m.Text, m.Unresolved)
			seq++
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert messages for %s: %w", file, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit messages for %s: %w", file, err)
	}

	log.Debug().Str("file", file).Int("messages", len(msgs)).Msg("Stored messages")
	return nil
}

// Messages returns the stored messages of one file in scan order.
func (s *Store) Messages(ctx context.Context, file string) ([]extract.Message, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT text, file, line, pickup, arg, unresolved
		FROM extracted_messages
		WHERE file = $1
		ORDER BY seq
	`, file)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}

	msgs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (extract.Message, error) {
		var m extract.Message
		err := row.Scan(&m.Text, &m.File, &m.Line, &m.Pickup, &m.Arg, &m.Unresolved)
		return m, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan messages: %w", err)
	}
	return msgs, nil
}

// GetScan returns the cached scan payload stored under hash.
func (s *Store) GetScan(ctx context.Context, hash string) ([]byte, bool, error) {
	var data []byte
	err := s.pool.QueryRow(ctx, `SELECT messages FROM scan_cache WHERE hash = $1`, hash).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get cached scan: %w", err)
	}
	return data, true, nil
}

// PutScan stores a scan payload under hash.
func (s *Store) PutScan(ctx context.Context, hash string, data []byte) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO scan_cache (hash, messages)
		VALUES ($1, $2)
		ON CONFLICT (hash) DO UPDATE SET messages = EXCLUDED.messages, updated_at = now()
	`, hash, data)
	if err != nil {
		return fmt.Errorf("put cached scan: %w", err)
	}
	return nil
}
