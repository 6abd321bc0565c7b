package model

import (
	"strconv"
	"strings"
	"time"
)

// MaxItems is the number of most-recent saves the store retains.
const MaxItems = 100

// Store holds all saved items and user categories.
// Items are ordered most-recent-first.
type Store struct {
	Items      []SavedItem `json:"savedItems"`
	Categories []string    `json:"customCategories"`
}

// NewStore creates an empty Store with initialized slices.
func NewStore() *Store {
	return &Store{
		Items:      []SavedItem{},
		Categories: []string{},
	}
}

// NewID returns a time-based id that is not yet used in the store.
func (s *Store) NewID(now time.Time) string {
	ms := now.UnixMilli()
	for {
		id := strconv.FormatInt(ms, 10)
		if s.Get(id) == nil {
			return id
		}
		ms++
	}
}

// Append inserts item at the front and truncates to MaxItems.
// An empty ID is assigned from the save time.
func (s *Store) Append(item SavedItem) (SavedItem, error) {
	if item.SavedAt.IsZero() {
		item.SavedAt = time.Now()
	}
	if item.ID == "" {
		item.ID = s.NewID(item.SavedAt)
	} else if s.Get(item.ID) != nil {
		return SavedItem{}, ErrDuplicateID
	}
	if item.Tags == nil {
		item.Tags = []string{}
	}
	if item.Images == nil {
		item.Images = []string{}
	}

	items := make([]SavedItem, 0, min(len(s.Items)+1, MaxItems))
	items = append(items, item)
	items = append(items, s.Items...)
	if len(items) > MaxItems {
		items = items[:MaxItems]
	}
	s.Items = items
	return item, nil
}

// Get finds an item by ID, returns nil if not found.
func (s *Store) Get(id string) *SavedItem {
	for i := range s.Items {
		if s.Items[i].ID == id {
			return &s.Items[i]
		}
	}
	return nil
}

// FindURL finds an item by its post URL, returns nil if not found.
func (s *Store) FindURL(url string) *SavedItem {
	url = strings.TrimSpace(url)
	for i := range s.Items {
		if s.Items[i].URL == url {
			return &s.Items[i]
		}
	}
	return nil
}

// Update merges patch into the item with the given id.
func (s *Store) Update(id string, patch Patch) (SavedItem, error) {
	item := s.Get(id)
	if item == nil {
		return SavedItem{}, ErrNotFound
	}
	*item = patch.Apply(*item)
	return *item, nil
}

// Remove deletes the item with the given id.
func (s *Store) Remove(id string) error {
	for i := range s.Items {
		if s.Items[i].ID == id {
			s.Items = append(s.Items[:i], s.Items[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// HasCategory reports whether name is in the category set (exact match).
func (s *Store) HasCategory(name string) bool {
	for _, c := range s.Categories {
		if c == name {
			return true
		}
	}
	return false
}

// AddCategory appends name if it is not present yet.
// Returns true if the category was added.
func (s *Store) AddCategory(name string) bool {
	if name == "" || s.HasCategory(name) {
		return false
	}
	s.Categories = append(s.Categories, name)
	return true
}
