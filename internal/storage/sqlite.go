package storage

import (
	"database/sql"
	"embed"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store wraps a SQLite database holding the embedding cache and the
// interaction log.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) a SQLite database in dataDir and runs pending
// migrations. Pass ":memory:" as dataDir for an in-memory database (used by
// tests).
func Open(dataDir string) (*Store, error) {
	var dsn string
	if dataDir == ":memory:" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dsn = filepath.Join(dataDir, "foliochat.db")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// Limit to single connection to avoid "database is locked" errors.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate reads embedded SQL migration files and applies any that haven't
// been run yet.
func (s *Store) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		version, err := parseMigrationVersion(entry.Name())
		if err != nil {
			return err
		}

		var exists int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_version WHERE version = ?", version).Scan(&exists); err != nil {
			return fmt.Errorf("checking migration %d: %w", version, err)
		}
		if exists > 0 {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning transaction for migration %d: %w", version, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %d: %w", version, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", version, err)
		}
	}

	return nil
}

func parseMigrationVersion(filename string) (int, error) {
	var version int
	if _, err := fmt.Sscanf(filename, "%d_", &version); err != nil {
		return 0, fmt.Errorf("parsing migration version from %q: %w", filename, err)
	}
	return version, nil
}

// GetEmbedding returns the cached embedding for the given content hash and
// model, or ErrNotFound.
func (s *Store) GetEmbedding(contentHash, model string) ([]float32, error) {
	var blob []byte
	err := s.db.QueryRow(
		"SELECT embedding FROM embedding_cache WHERE content_hash = ? AND model = ?",
		contentHash, model,
	).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying embedding cache: %w", err)
	}
	return decodeFloat32s(blob)
}

// PutEmbedding stores an embedding in the cache, replacing any previous
// entry for the same content hash and model.
func (s *Store) PutEmbedding(contentHash, model string, embedding []float32) error {
	_, err := s.db.Exec(
		"INSERT OR REPLACE INTO embedding_cache (content_hash, model, embedding) VALUES (?, ?, ?)",
		contentHash, model, encodeFloat32s(embedding),
	)
	if err != nil {
		return fmt.Errorf("caching embedding: %w", err)
	}
	return nil
}

// SaveInteraction persists one processed message.
func (s *Store) SaveInteraction(in Interaction) error {
	createdAt := in.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := s.db.Exec(`
		INSERT INTO interactions (id, session_id, created_at, user_query, intent_type, component_type, response, latency_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		in.ID, in.SessionID, createdAt.Format(time.RFC3339), in.UserQuery,
		in.IntentType, in.ComponentType, in.Response, in.LatencyMs,
	)
	if err != nil {
		return fmt.Errorf("saving interaction %s: %w", in.ID, err)
	}
	return nil
}

// ListInteractions returns the most recent interactions, newest first.
// When sessionID is non-empty, only that session's interactions are
// returned.
func (s *Store) ListInteractions(sessionID string, limit int) ([]Interaction, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT id, session_id, created_at, user_query, intent_type, component_type, response, latency_ms
		FROM interactions`
	args := []any{}
	if sessionID != "" {
		query += " WHERE session_id = ?"
		args = append(args, sessionID)
	}
	query += " ORDER BY created_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying interactions: %w", err)
	}
	defer rows.Close()

	var out []Interaction
	for rows.Next() {
		var in Interaction
		var createdAt string
		if err := rows.Scan(&in.ID, &in.SessionID, &createdAt, &in.UserQuery,
			&in.IntentType, &in.ComponentType, &in.Response, &in.LatencyMs); err != nil {
			return nil, fmt.Errorf("scanning interaction: %w", err)
		}
		t, err := time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at for %s: %w", in.ID, err)
		}
		in.CreatedAt = t
		out = append(out, in)
	}
	return out, rows.Err()
}

// GetInteraction returns one interaction by ID, or ErrNotFound.
func (s *Store) GetInteraction(id string) (Interaction, error) {
	var in Interaction
	var createdAt string
	err := s.db.QueryRow(`
		SELECT id, session_id, created_at, user_query, intent_type, component_type, response, latency_ms
		FROM interactions WHERE id = ?`, id,
	).Scan(&in.ID, &in.SessionID, &createdAt, &in.UserQuery,
		&in.IntentType, &in.ComponentType, &in.Response, &in.LatencyMs)
	if err == sql.ErrNoRows {
		return Interaction{}, ErrNotFound
	}
	if err != nil {
		return Interaction{}, fmt.Errorf("querying interaction %s: %w", id, err)
	}
	t, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return Interaction{}, fmt.Errorf("parsing created_at for %s: %w", id, err)
	}
	in.CreatedAt = t
	return in, nil
}

// DeleteInteraction removes one interaction by ID.
func (s *Store) DeleteInteraction(id string) error {
	res, err := s.db.Exec("DELETE FROM interactions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting interaction %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// encodeFloat32s serializes a float32 slice to little-endian bytes.
func encodeFloat32s(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// decodeFloat32s deserializes little-endian bytes into a float32 slice.
func decodeFloat32s(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("byte slice length %d is not a multiple of 4", len(b))
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v, nil
}
