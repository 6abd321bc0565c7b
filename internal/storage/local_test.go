package storage_test

import (
	"errors"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/nikbrunner/spots/internal/model"
	"github.com/nikbrunner/spots/internal/storage"
)

func newLocalStore(t *testing.T) (*storage.LocalStore, *storage.JSONStorage) {
	t.Helper()
	backend := storage.NewJSONStorage(filepath.Join(t.TempDir(), "saves.json"))
	return storage.NewLocalStore(storage.NewLocalStoreParams{Storage: backend}), backend
}

func TestLocalStore_AppendPersists(t *testing.T) {
	ls, backend := newLocalStore(t)

	saved, err := ls.Append(sampleItem(""))
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	assert.Assert(t, saved.ID != "")

	// A fresh load sees the write; nothing is held in memory
	store, err := backend.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	assert.Equal(t, len(store.Items), 1)
	assert.Equal(t, store.Items[0].ID, saved.ID)
}

func TestLocalStore_CapAt100(t *testing.T) {
	ls, _ := newLocalStore(t)

	for i := 0; i < 105; i++ {
		if _, err := ls.Append(sampleItem(strconv.Itoa(i))); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	items, err := ls.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	assert.Equal(t, len(items), model.MaxItems)
	assert.Equal(t, items[0].ID, "104")
	assert.Equal(t, items[len(items)-1].ID, "5")
}

func TestLocalStore_UpdateAndRemoveUnknown(t *testing.T) {
	ls, _ := newLocalStore(t)
	if _, err := ls.Append(sampleItem("a")); err != nil {
		t.Fatal(err)
	}

	if _, err := ls.Update("nope", model.Patch{Category: stringPtr("Food")}); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := ls.Remove("nope"); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	items, _ := ls.List()
	assert.Equal(t, len(items), 1)
	assert.Assert(t, items[0].Category == nil)

	if err := ls.Remove("a"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	items, _ = ls.List()
	assert.Equal(t, len(items), 0)
}

func TestLocalStore_FindURL(t *testing.T) {
	ls, _ := newLocalStore(t)
	saved, err := ls.Append(sampleItem("a"))
	assert.NilError(t, err)

	found, err := ls.FindURL("https://www.instagram.com/p/a/")
	assert.NilError(t, err)
	assert.Equal(t, found.ID, saved.ID)

	_, err = ls.FindURL("https://www.instagram.com/p/b/")
	assert.Assert(t, errors.Is(err, model.ErrNotFound))
}

func TestLocalStore_AddCategory(t *testing.T) {
	ls, _ := newLocalStore(t)

	added, err := ls.AddCategory("Bars")
	assert.NilError(t, err)
	assert.Assert(t, added)

	added, err = ls.AddCategory("Bars")
	assert.NilError(t, err)
	assert.Assert(t, !added)

	_, err = ls.AddCategory("")
	assert.Assert(t, model.IsValidation(err))

	cats, err := ls.Categories()
	assert.NilError(t, err)
	assert.DeepEqual(t, cats, []string{"Bars"})
}

func TestLocalStore_ConcurrentAppendsInProcess(t *testing.T) {
	ls, _ := newLocalStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := ls.Append(sampleItem("c" + strconv.Itoa(i))); err != nil {
				t.Errorf("append: %v", err)
			}
		}(i)
	}
	wg.Wait()

	items, err := ls.List()
	assert.NilError(t, err)
	assert.Equal(t, len(items), 20)
}

// Two writers in different processes each read-modify-write the same
// file. Without cross-process locking the second write drops the first.
func TestLocalStore_CrossProcessLastWriteWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saves.json")
	procA := storage.NewJSONStorage(path)
	procB := storage.NewJSONStorage(path)

	storeA, err := procA.Load()
	assert.NilError(t, err)
	storeB, err := procB.Load()
	assert.NilError(t, err)

	_, _ = storeB.Append(sampleItem("from-b"))
	assert.NilError(t, procB.Save(storeB))

	_, _ = storeA.Append(sampleItem("from-a"))
	assert.NilError(t, procA.Save(storeA))

	final, err := storage.NewJSONStorage(path).Load()
	assert.NilError(t, err)
	assert.Equal(t, len(final.Items), 1)
	assert.Equal(t, final.Items[0].ID, "from-a")
}

func TestSessionStore(t *testing.T) {
	ss := storage.NewSessionStore(filepath.Join(t.TempDir(), "session.json"))

	session, user, err := ss.Load()
	assert.NilError(t, err)
	assert.Assert(t, session == nil && user == nil)

	err = ss.Set(&storage.Session{AccessToken: "tok"}, &storage.User{ID: "u1", Email: "a@b.c"})
	assert.NilError(t, err)

	session, user, err = ss.Load()
	assert.NilError(t, err)
	assert.Equal(t, session.AccessToken, "tok")
	assert.Equal(t, user.Email, "a@b.c")

	assert.NilError(t, ss.Clear())
	assert.NilError(t, ss.Clear())

	session, _, err = ss.Load()
	assert.NilError(t, err)
	assert.Assert(t, session == nil)
}
