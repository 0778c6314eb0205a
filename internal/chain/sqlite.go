package chain

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/veracitor/veracity/internal/model"
)

// SQLiteStore persists fingerprint chains in SQLite. The table is
// append-only by contract: there are no UPDATE or DELETE statements here.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the fingerprint database at path.
// Uses WAL mode for better concurrent read performance.
func OpenSQLite(path string) (*SQLiteStore, error) {
	connStr := path
	if path == ":memory:" {
		// Shared cache so all pooled connections see the same database.
		connStr = "file::memory:?cache=shared"
	}

	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if path != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}

	s := &SQLiteStore{db: db}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) createTables() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS fingerprints (
			identity      TEXT    NOT NULL,
			seq           INTEGER NOT NULL,
			content_hash  TEXT    NOT NULL,
			previous_hash TEXT    NOT NULL DEFAULT '',
			created_at    TEXT    NOT NULL,
			modified      INTEGER NOT NULL DEFAULT 0,
			integrity_unknown INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (identity, seq)
		);
		CREATE INDEX IF NOT EXISTS idx_fingerprints_identity ON fingerprints(identity);
	`)
	return err
}

// LoadLatest returns the newest record for the identity, or nil
func (s *SQLiteStore) LoadLatest(identity string) (*model.FingerprintRecord, error) {
	row := s.db.QueryRow(`
		SELECT identity, seq, content_hash, previous_hash, created_at, modified, integrity_unknown
		FROM fingerprints WHERE identity = ? ORDER BY seq DESC LIMIT 1`, identity)

	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load latest: %w", err)
	}
	return rec, nil
}

// LoadChain returns the identity's full chain ordered root first
func (s *SQLiteStore) LoadChain(identity string) ([]model.FingerprintRecord, error) {
	rows, err := s.db.Query(`
		SELECT identity, seq, content_hash, previous_hash, created_at, modified, integrity_unknown
		FROM fingerprints WHERE identity = ? ORDER BY seq ASC`, identity)
	if err != nil {
		return nil, fmt.Errorf("load chain: %w", err)
	}
	defer rows.Close()

	var records []model.FingerprintRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// Append inserts one record. Duplicate (identity, seq) pairs fail, which
// also guards against unserialized concurrent appends.
func (s *SQLiteStore) Append(record model.FingerprintRecord) error {
	_, err := s.db.Exec(`
		INSERT INTO fingerprints (identity, seq, content_hash, previous_hash, created_at, modified, integrity_unknown)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		record.Identity, record.Seq, record.ContentHash, record.PreviousHash,
		record.CreatedAt.UTC().Format(time.RFC3339Nano),
		boolToInt(record.ModificationDetected), boolToInt(record.IntegrityUnknown))
	if err != nil {
		return fmt.Errorf("append record: %w", err)
	}
	return nil
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*model.FingerprintRecord, error) {
	var rec model.FingerprintRecord
	var createdAt string
	var modified, integrityUnknown int

	if err := row.Scan(&rec.Identity, &rec.Seq, &rec.ContentHash, &rec.PreviousHash, &createdAt, &modified, &integrityUnknown); err != nil {
		return nil, err
	}

	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	rec.CreatedAt = ts
	rec.ModificationDetected = modified != 0
	rec.IntegrityUnknown = integrityUnknown != 0
	return &rec, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
