package storage

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/nikbrunner/spots/internal/model"
)

// Storage defines the interface for persisting saves and categories.
type Storage interface {
	Load() (*model.Store, error)
	Save(store *model.Store) error
}

// JSONStorage implements Storage using a JSON file holding the
// savedItems and customCategories keys.
type JSONStorage struct {
	path string
}

// NewJSONStorage creates a new JSONStorage with the given file path.
func NewJSONStorage(path string) *JSONStorage {
	return &JSONStorage{path: path}
}

// Path returns the storage file path.
func (s *JSONStorage) Path() string {
	return s.path
}

// Load reads the store from the JSON file.
// Returns an empty store if the file doesn't exist.
func (s *JSONStorage) Load() (*model.Store, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return model.NewStore(), nil
		}
		return nil, &StorageError{Op: "read", Path: s.path, Err: err}
	}

	var store model.Store
	if err := json.Unmarshal(data, &store); err != nil {
		return nil, &StorageError{Op: "parse", Path: s.path, Err: err}
	}

	// Ensure slices are not nil
	if store.Items == nil {
		store.Items = []model.SavedItem{}
	}
	if store.Categories == nil {
		store.Categories = []string{}
	}

	return &store, nil
}

// Save writes the store to the JSON file.
// Writes to a temp file first so a failed write never truncates the store.
func (s *JSONStorage) Save(store *model.Store) error {
	if err := writeJSONFile(s.path, store); err != nil {
		return &StorageError{Op: "write", Path: s.path, Err: err}
	}
	return nil
}

// writeJSONFile marshals v and atomically replaces path with it.
func writeJSONFile(path string, v any) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".spots-*.tmp")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// DefaultDataDir returns the default data directory: ~/.config/spots
func DefaultDataDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "spots"), nil
}

// OpenStorage opens the backend selected in the config.
// An empty backend prefers SQLite if the database file exists, otherwise JSON.
func OpenStorage(cfg *Config) (Storage, error) {
	sqlitePath := filepath.Join(cfg.DataDir, "saves.db")
	jsonPath := filepath.Join(cfg.DataDir, "saves.json")

	switch cfg.StorageBackend {
	case BackendSQLite:
		return NewSQLiteStorage(sqlitePath)
	case BackendJSON:
		return NewJSONStorage(jsonPath), nil
	}

	if _, err := os.Stat(sqlitePath); err == nil {
		return NewSQLiteStorage(sqlitePath)
	}
	return NewJSONStorage(jsonPath), nil
}
