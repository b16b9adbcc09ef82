package storage

import (
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/kalambet/intake/internal/apperr"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store is the append-only conversation log backed by a single SQLite file.
// It assumes a single writer process.
type Store struct {
	db *sql.DB

	mu     sync.Mutex
	lastTS time.Time
	now    func() time.Time
}

// Open opens (or creates) the log database in dataDir and runs pending migrations.
// Pass ":memory:" as dataDir for an in-memory database (used by tests).
func Open(dataDir string) (*Store, error) {
	var dsn string
	if dataDir == ":memory:" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dsn = filepath.Join(dataDir, "intake.db")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// One connection: the log has a single writer, and ":memory:" databases
	// are per-connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}

	s := &Store{db: db, now: time.Now}
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

// migrate reads embedded SQL migration files and applies any that haven't been run yet.
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

// AppliedMigrations returns the list of applied migration versions in ascending order.
func (s *Store) AppliedMigrations() ([]int, error) {
	rows, err := s.db.Query("SELECT version FROM schema_version ORDER BY version ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var versions []int
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

// nextTimestamp returns a UTC time strictly after the previous one handed out
// by this Store, at the column's microsecond resolution.
func (s *Store) nextTimestamp() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := s.now().UTC().Truncate(time.Microsecond)
	if !ts.After(s.lastTS) {
		ts = s.lastTS.Add(time.Microsecond)
	}
	s.lastTS = ts
	return ts
}

// AppendRecord serializes r.ExtractedData and appends a row to the log.
// The returned Record carries the assigned id and timestamp.
func (s *Store) AppendRecord(r NewRecord) (Record, error) {
	const op = "append record"

	if strings.TrimSpace(r.ConversationID) == "" {
		return Record{}, apperr.Errorf(apperr.InvalidInput, op, "conversation id is required")
	}

	data, err := json.Marshal(r.ExtractedData)
	if err != nil {
		return Record{}, apperr.New(apperr.StoreWriteError, op, fmt.Errorf("serializing extracted data: %w", err))
	}

	ts := s.nextTimestamp()
	res, err := s.db.Exec(`
		INSERT INTO extraction_records (source, format, timestamp, conversation_id, extracted_data)
		VALUES (?, ?, ?, ?, ?)`,
		r.Source, r.Format, ts.Format(TimestampLayout), r.ConversationID, string(data),
	)
	if err != nil {
		return Record{}, apperr.New(apperr.StoreWriteError, op, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return Record{}, apperr.New(apperr.StoreWriteError, op, fmt.Errorf("reading inserted id: %w", err))
	}

	return Record{
		ID:             id,
		Source:         r.Source,
		Format:         r.Format,
		Timestamp:      ts,
		ConversationID: r.ConversationID,
		ExtractedData:  data,
	}, nil
}

// RetrieveConversation returns every record of the conversation in ascending
// timestamp order. An unknown id yields an empty slice and no error.
func (s *Store) RetrieveConversation(conversationID string) ([]Record, error) {
	rows, err := s.db.Query(`
		SELECT id, source, format, timestamp, conversation_id, extracted_data
		FROM extraction_records WHERE conversation_id = ?
		ORDER BY timestamp ASC, id ASC`, conversationID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Record
	for rows.Next() {
		var r Record
		var ts, data string
		if err := rows.Scan(&r.ID, &r.Source, &r.Format, &ts, &r.ConversationID, &data); err != nil {
			return nil, err
		}
		t, err := time.Parse(TimestampLayout, ts)
		if err != nil {
			return nil, fmt.Errorf("parsing timestamp of record %d: %w", r.ID, err)
		}
		r.Timestamp = t
		r.ExtractedData = json.RawMessage(data)
		results = append(results, r)
	}
	return results, rows.Err()
}

// ListConversations returns one summary per conversation, most recently
// active first.
func (s *Store) ListConversations(limit, offset int) ([]ConversationSummary, error) {
	rows, err := s.db.Query(`
		SELECT conversation_id, COUNT(*), MIN(timestamp), MAX(timestamp)
		FROM extraction_records
		GROUP BY conversation_id
		ORDER BY MAX(timestamp) DESC
		LIMIT ? OFFSET ?`, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []ConversationSummary
	for rows.Next() {
		var c ConversationSummary
		var first, last string
		if err := rows.Scan(&c.ConversationID, &c.Records, &first, &last); err != nil {
			return nil, err
		}
		if c.FirstSeen, err = time.Parse(TimestampLayout, first); err != nil {
			return nil, fmt.Errorf("parsing first timestamp for %s: %w", c.ConversationID, err)
		}
		if c.LastSeen, err = time.Parse(TimestampLayout, last); err != nil {
			return nil, fmt.Errorf("parsing last timestamp for %s: %w", c.ConversationID, err)
		}
		results = append(results, c)
	}
	return results, rows.Err()
}

// CountRecords returns the total number of records in the log.
func (s *Store) CountRecords() (int, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM extraction_records").Scan(&n)
	return n, err
}
