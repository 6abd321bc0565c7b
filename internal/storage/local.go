package storage

import (
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/nikbrunner/spots/internal/model"
)

// LocalStore is the device-local item store.
//
// Every mutation loads the full store, applies the change and writes the
// store back before returning. The mutex serializes callers in this
// process only; two processes sharing a data file still race, and the
// last writer wins.
type LocalStore struct {
	mu      sync.Mutex
	backend Storage
	logger  *zap.Logger
}

// NewLocalStoreParams holds parameters for creating a LocalStore.
type NewLocalStoreParams struct {
	Storage Storage
	Logger  *zap.Logger
}

// NewLocalStore creates a LocalStore over the given backend.
func NewLocalStore(params NewLocalStoreParams) *LocalStore {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocalStore{backend: params.Storage, logger: logger}
}

// List returns all saved items, most recent first.
func (s *LocalStore) List() ([]model.SavedItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	store, err := s.backend.Load()
	if err != nil {
		return nil, err
	}
	return store.Items, nil
}

// Get returns the item with the given id.
func (s *LocalStore) Get(id string) (model.SavedItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	store, err := s.backend.Load()
	if err != nil {
		return model.SavedItem{}, err
	}
	item := store.Get(id)
	if item == nil {
		return model.SavedItem{}, model.ErrNotFound
	}
	return *item, nil
}

// FindURL returns the stored item saved from url.
// Returns model.ErrNotFound when no item has that URL.
func (s *LocalStore) FindURL(url string) (model.SavedItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	store, err := s.backend.Load()
	if err != nil {
		return model.SavedItem{}, err
	}
	item := store.FindURL(url)
	if item == nil {
		return model.SavedItem{}, model.ErrNotFound
	}
	return *item, nil
}

// Categories returns the user's category set in insertion order.
func (s *LocalStore) Categories() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	store, err := s.backend.Load()
	if err != nil {
		return nil, err
	}
	return store.Categories, nil
}

// Append stores item as the most recent save, evicting the oldest
// items beyond model.MaxItems.
func (s *LocalStore) Append(item model.SavedItem) (model.SavedItem, error) {
	var saved model.SavedItem
	err := s.mutate(func(store *model.Store) error {
		var err error
		saved, err = store.Append(item)
		return err
	})
	if err != nil {
		return model.SavedItem{}, err
	}
	s.logger.Debug("item stored", zap.String("id", saved.ID), zap.String("platform", string(saved.Platform)))
	return saved, nil
}

// Update merges patch into the item with the given id.
// Returns model.ErrNotFound and leaves the store untouched for unknown ids.
func (s *LocalStore) Update(id string, patch model.Patch) (model.SavedItem, error) {
	var updated model.SavedItem
	err := s.mutate(func(store *model.Store) error {
		var err error
		updated, err = store.Update(id, patch)
		return err
	})
	if err != nil {
		return model.SavedItem{}, err
	}
	s.logger.Debug("item updated", zap.String("id", id))
	return updated, nil
}

// Remove deletes the item with the given id.
// Returns model.ErrNotFound and leaves the store untouched for unknown ids.
func (s *LocalStore) Remove(id string) error {
	if err := s.mutate(func(store *model.Store) error {
		return store.Remove(id)
	}); err != nil {
		return err
	}
	s.logger.Debug("item removed", zap.String("id", id))
	return nil
}

// AddCategory adds name to the category set. Adding an existing label
// is a no-op and reports false.
func (s *LocalStore) AddCategory(name string) (bool, error) {
	if name == "" {
		return false, &model.ValidationError{Field: "category", Msg: "name is required"}
	}

	added := false
	err := s.mutate(func(store *model.Store) error {
		added = store.AddCategory(name)
		if !added {
			return errUnchanged
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return added, nil
}

// errUnchanged lets a mutation skip the write.
var errUnchanged = errors.New("unchanged")

// mutate runs fn against a freshly loaded store and persists the result.
func (s *LocalStore) mutate(fn func(*model.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	store, err := s.backend.Load()
	if err != nil {
		return err
	}
	if err := fn(store); err != nil {
		if errors.Is(err, errUnchanged) {
			return nil
		}
		return err
	}
	if err := s.backend.Save(store); err != nil {
		s.logger.Error("store write failed", zap.Error(err))
		return err
	}
	return nil
}
