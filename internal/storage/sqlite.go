package storage

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/nikbrunner/spots/internal/model"
)

const currentSchemaVersion = 2

// SQLiteStorage implements Storage using a SQLite database.
type SQLiteStorage struct {
	db   *sql.DB
	path string
}

// NewSQLiteStorage creates a new SQLiteStorage with the given database path.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, &StorageError{Op: "open", Path: path, Err: err}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &StorageError{Op: "open", Path: path, Err: err}
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, &StorageError{Op: "open", Path: path, Err: err}
		}
	}

	s := &SQLiteStorage{db: db, path: path}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, &StorageError{Op: "migrate", Path: path, Err: err}
	}

	return s, nil
}

// Path returns the database file path.
func (s *SQLiteStorage) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// migrate runs database migrations.
func (s *SQLiteStorage) migrate() error {
	var version int
	err := s.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		// Table doesn't exist or is empty, start fresh
		version = 0
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	if version < currentSchemaVersion {
		if err := s.migrateV2(); err != nil {
			return err
		}
	}

	return nil
}

// migrateV1 creates the initial schema.
func (s *SQLiteStorage) migrateV1() error {
	schema := `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS categories (
			name TEXT PRIMARY KEY NOT NULL,
			position INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS saved_items (
			id TEXT PRIMARY KEY NOT NULL,
			position INTEGER NOT NULL,
			platform TEXT NOT NULL,
			url TEXT NOT NULL,
			author TEXT NOT NULL DEFAULT '',
			content TEXT NOT NULL DEFAULT '',
			images TEXT NOT NULL DEFAULT '[]',
			event_name TEXT,
			venue_name TEXT,
			address TEXT,
			latitude REAL,
			longitude REAL,
			event_date TEXT,
			start_time TEXT,
			end_time TEXT,
			event_type TEXT,
			category TEXT,
			tags TEXT NOT NULL DEFAULT '[]',
			description TEXT,
			ai_processed INTEGER NOT NULL DEFAULT 0,
			confidence_score REAL,
			saved_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_saved_items_position ON saved_items(position);
		CREATE INDEX IF NOT EXISTS idx_saved_items_category ON saved_items(category);

		INSERT OR REPLACE INTO schema_version (version) VALUES (1);
	`
	_, err := s.db.Exec(schema)
	return err
}

// migrateV2 adds remote_id for saves mirrored from the backend.
func (s *SQLiteStorage) migrateV2() error {
	migration := `
		ALTER TABLE saved_items ADD COLUMN remote_id TEXT NOT NULL DEFAULT '';
		UPDATE schema_version SET version = 2;
	`
	_, err := s.db.Exec(migration)
	return err
}

// Load reads the store from the SQLite database.
func (s *SQLiteStorage) Load() (*model.Store, error) {
	store := model.NewStore()

	rows, err := s.db.Query(`SELECT name FROM categories ORDER BY position`)
	if err != nil {
		return nil, &StorageError{Op: "query", Path: s.path, Err: err}
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, &StorageError{Op: "query", Path: s.path, Err: err}
		}
		store.Categories = append(store.Categories, name)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "query", Path: s.path, Err: err}
	}

	rows, err = s.db.Query(`
		SELECT id, remote_id, platform, url, author, content, images,
			event_name, venue_name, address, latitude, longitude,
			event_date, start_time, end_time, event_type, category,
			tags, description, ai_processed, confidence_score, saved_at
		FROM saved_items
		ORDER BY position
	`)
	if err != nil {
		return nil, &StorageError{Op: "query", Path: s.path, Err: err}
	}
	defer rows.Close()

	for rows.Next() {
		var it model.SavedItem
		var platform, imagesJSON, tagsJSON, savedAtStr string
		var eventName, venueName, address, eventDate, startTime, endTime, eventType, category, description sql.NullString
		var lat, lng, confidence sql.NullFloat64
		var aiProcessed int

		if err := rows.Scan(
			&it.ID, &it.RemoteID, &platform, &it.URL, &it.Author, &it.Content, &imagesJSON,
			&eventName, &venueName, &address, &lat, &lng,
			&eventDate, &startTime, &endTime, &eventType, &category,
			&tagsJSON, &description, &aiProcessed, &confidence, &savedAtStr,
		); err != nil {
			return nil, &StorageError{Op: "query", Path: s.path, Err: err}
		}

		it.Platform = model.Platform(platform)
		if err := json.Unmarshal([]byte(imagesJSON), &it.Images); err != nil {
			it.Images = []string{}
		}
		if err := json.Unmarshal([]byte(tagsJSON), &it.Tags); err != nil {
			it.Tags = []string{}
		}
		it.EventName = nullString(eventName)
		it.VenueName = nullString(venueName)
		it.Address = nullString(address)
		it.EventDate = nullString(eventDate)
		it.StartTime = nullString(startTime)
		it.EndTime = nullString(endTime)
		it.EventType = nullString(eventType)
		it.Category = nullString(category)
		it.Description = nullString(description)
		it.Latitude = nullFloat(lat)
		it.Longitude = nullFloat(lng)
		it.ConfidenceScore = nullFloat(confidence)
		it.AIProcessed = aiProcessed == 1
		it.SavedAt, _ = time.Parse(time.RFC3339Nano, savedAtStr)

		store.Items = append(store.Items, it)
	}

	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "query", Path: s.path, Err: err}
	}

	return store, nil
}

// Save writes the store to the SQLite database.
// Uses a transaction for atomicity - all or nothing.
func (s *SQLiteStorage) Save(store *model.Store) error {
	if err := s.save(store); err != nil {
		return &StorageError{Op: "write", Path: s.path, Err: err}
	}
	return nil
}

func (s *SQLiteStorage) save(store *model.Store) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM saved_items"); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM categories"); err != nil {
		return err
	}

	categoryStmt, err := tx.Prepare(`INSERT INTO categories (name, position) VALUES (?, ?)`)
	if err != nil {
		return err
	}
	defer categoryStmt.Close()

	for i, name := range store.Categories {
		if _, err := categoryStmt.Exec(name, i); err != nil {
			return err
		}
	}

	itemStmt, err := tx.Prepare(`
		INSERT INTO saved_items (
			id, remote_id, position, platform, url, author, content, images,
			event_name, venue_name, address, latitude, longitude,
			event_date, start_time, end_time, event_type, category,
			tags, description, ai_processed, confidence_score, saved_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer itemStmt.Close()

	for i, it := range store.Items {
		imagesJSON := jsonList(it.Images)
		tagsJSON := jsonList(it.Tags)

		aiProcessed := 0
		if it.AIProcessed {
			aiProcessed = 1
		}

		if _, err := itemStmt.Exec(
			it.ID, it.RemoteID, i, string(it.Platform), it.URL, it.Author, it.Content, imagesJSON,
			it.EventName, it.VenueName, it.Address, it.Latitude, it.Longitude,
			it.EventDate, it.StartTime, it.EndTime, it.EventType, it.Category,
			tagsJSON, it.Description, aiProcessed, it.ConfidenceScore, it.SavedAt.Format(time.RFC3339Nano),
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func jsonList(values []string) string {
	if values == nil {
		return "[]"
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "[]"
	}
	return string(data)
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

func nullFloat(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	v := nf.Float64
	return &v
}
