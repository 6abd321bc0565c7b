package coordinator_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"

	"github.com/nikbrunner/spots/internal/capture"
	"github.com/nikbrunner/spots/internal/coordinator"
	"github.com/nikbrunner/spots/internal/model"
	"github.com/nikbrunner/spots/internal/remote"
	"github.com/nikbrunner/spots/internal/storage"
)

type token string

func (t token) Token() (string, error) { return string(t), nil }

// backend records the save requests a remote.Client sends.
type backend struct {
	mu       sync.Mutex
	saves    string
	patched  map[string]map[string]any
	deleted  []string
	failWith int
}

func (b *backend) handler(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.failWith != 0 {
		w.WriteHeader(b.failWith)
		return
	}
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/v1/user/saves":
		_, _ = io.WriteString(w, b.saves)
	case r.Method == http.MethodPatch:
		var body map[string]any
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &body)
		if b.patched == nil {
			b.patched = make(map[string]map[string]any)
		}
		b.patched[filepath.Base(r.URL.Path)] = body
		_, _ = io.WriteString(w, `{"item":{"id":"`+filepath.Base(r.URL.Path)+`"}}`)
	case r.Method == http.MethodDelete:
		b.deleted = append(b.deleted, filepath.Base(r.URL.Path))
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newSyncCoordinator(t *testing.T, b *backend, loggedIn bool) (*coordinator.Coordinator, *storage.LocalStore) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(b.handler))
	t.Cleanup(srv.Close)

	store := newStore(t)
	c := coordinator.New(coordinator.NewCoordinatorParams{
		Store:    store,
		Sessions: session(loggedIn),
		Sync:     remote.NewClient(remote.NewClientParams{BaseURL: srv.URL, Tokens: token("tok")}),
	})
	return c, store
}

// mirrored stores an item the way a remote save leaves it.
func mirrored(t *testing.T, store *storage.LocalStore, remoteID string) model.SavedItem {
	t.Helper()
	item := model.SavedItem{
		Platform:  model.PlatformInstagram,
		URL:       "https://www.instagram.com/p/abc/",
		EventName: stringPtr("Taco Night"),
		Category:  stringPtr("Food"),
		RemoteID:  remoteID,
	}
	saved, err := store.Append(item)
	assert.NilError(t, err)
	return saved
}

func TestSaveNew_SkipsStoredURL(t *testing.T) {
	store := newStore(t)
	var notified int
	c := coordinator.New(coordinator.NewCoordinatorParams{
		Store:  store,
		OnSave: func(coordinator.Result) { notified++ },
	})

	first := c.SaveNew(context.Background(), tacoPost())
	assert.Equal(t, first.Path, coordinator.PathLocal)

	again := c.SaveNew(context.Background(), tacoPost())
	assert.Equal(t, again.Path, coordinator.PathExisting)
	assert.Assert(t, again.OK())
	assert.Equal(t, again.Item.ID, first.Item.ID)
	assert.Equal(t, again.Path.String(), "existing")
	assert.Equal(t, notified, 1)

	items, err := store.List()
	assert.NilError(t, err)
	assert.Assert(t, is.Len(items, 1))
}

func TestSaveNew_WatcherRestartKeepsOneCopy(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	dir := t.TempDir()
	data, err := os.ReadFile(filepath.Join("..", "capture", "testdata", "instagram_feed.html"))
	assert.NilError(t, err)
	assert.NilError(t, os.WriteFile(filepath.Join(dir, "feed.html"), data, 0644))

	store := newStore(t)
	c := coordinator.New(coordinator.NewCoordinatorParams{Store: store})

	run := func() (saved int) {
		scanned := make(chan int, 1)
		w := capture.NewWatcher(capture.NewWatcherParams{
			Dir:      dir,
			Debounce: 50 * time.Millisecond,
			OnPosts: func(_ string, posts []model.CapturedPost) {
				n := 0
				for _, post := range posts {
					if res := c.SaveNew(context.Background(), post); res.Path != coordinator.PathExisting && res.OK() {
						n++
					}
				}
				scanned <- n
			},
		})

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- w.Run(ctx) }()
		defer func() {
			cancel()
			assert.NilError(t, <-done)
		}()

		select {
		case saved = <-scanned:
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for scan")
		}
		return saved
	}

	assert.Equal(t, run(), 3)
	// A fresh watcher rescans the same snapshot at start
	assert.Equal(t, run(), 0)

	items, err := store.List()
	assert.NilError(t, err)
	assert.Assert(t, is.Len(items, 3))
}

func TestEdit_PushesToBackend(t *testing.T) {
	b := &backend{}
	c, store := newSyncCoordinator(t, b, true)
	item := mirrored(t, store, "srv-1")

	updated, err := c.Edit(context.Background(), item.ID, coordinator.EditForm{Name: "Taqueria Sol", Category: "Tacos"})
	assert.NilError(t, err)
	assert.Equal(t, *updated.VenueName, "Taqueria Sol")

	b.mu.Lock()
	defer b.mu.Unlock()
	body, ok := b.patched["srv-1"]
	assert.Assert(t, ok)
	assert.Equal(t, body["category"], "Tacos")
	assert.Equal(t, body["venue_name"], "Taqueria Sol")
}

func TestEdit_BackendFailureKeepsLocalEdit(t *testing.T) {
	b := &backend{}
	c, store := newSyncCoordinator(t, b, true)
	item := mirrored(t, store, "srv-1")

	b.mu.Lock()
	b.failWith = http.StatusInternalServerError
	b.mu.Unlock()

	updated, err := c.Edit(context.Background(), item.ID, coordinator.EditForm{Category: "Bars"})
	assert.NilError(t, err)
	assert.Equal(t, updated.CategoryName(), "Bars")
}

func TestEdit_LocalOnlyItemIsNotPushed(t *testing.T) {
	b := &backend{}
	c, _ := newSyncCoordinator(t, b, true)
	saved := c.Save(context.Background(), tacoPost()).Item

	_, err := c.Edit(context.Background(), saved.ID, coordinator.EditForm{Category: "Food"})
	assert.NilError(t, err)
	assert.Assert(t, is.Len(b.patched, 0))
}

func TestRemove_DeletesOnBackend(t *testing.T) {
	b := &backend{}
	c, store := newSyncCoordinator(t, b, true)
	item := mirrored(t, store, "srv-7")

	assert.NilError(t, c.Remove(context.Background(), item.ID))
	assert.DeepEqual(t, b.deleted, []string{"srv-7"})

	err := c.Remove(context.Background(), item.ID)
	assert.Assert(t, errors.Is(err, model.ErrNotFound))
}

func TestRemove_LoggedOutStaysLocal(t *testing.T) {
	b := &backend{}
	c, store := newSyncCoordinator(t, b, false)
	item := mirrored(t, store, "srv-7")

	assert.NilError(t, c.Remove(context.Background(), item.ID))
	assert.Assert(t, is.Len(b.deleted, 0))
}

func TestRemove_BackendFailureStillRemoves(t *testing.T) {
	b := &backend{failWith: http.StatusBadGateway}
	c, store := newSyncCoordinator(t, b, true)
	item := mirrored(t, store, "srv-7")

	assert.NilError(t, c.Remove(context.Background(), item.ID))
	_, err := store.Get(item.ID)
	assert.Assert(t, errors.Is(err, model.ErrNotFound))
}

func TestSync_PullsBackendSaves(t *testing.T) {
	b := &backend{saves: `{"saves":[
		{"id":"srv-2","platform":"tiktok","url":"https://www.tiktok.com/@a/video/2","author":"a","event_name":"Rooftop","category":"Bars","saved_at":"2025-06-02T00:00:00Z"},
		{"id":"srv-1","platform":"instagram","url":"https://www.instagram.com/p/abc/","venue_name":"Taqueria Sol","latitude":40.7,"longitude":-74,"saved_at":"2025-06-01T00:00:00Z"},
		{"id":"srv-3","platform":"instagram","url":"https://www.instagram.com/p/old/","author":"b","saved_at":"2025-05-01T00:00:00Z"},
		{"id":"","url":"https://www.instagram.com/p/noid/"}
	]}`}
	c, store := newSyncCoordinator(t, b, true)
	local := c.Save(context.Background(), tacoPost()).Item

	res, err := c.Sync(context.Background())
	assert.NilError(t, err)
	assert.DeepEqual(t, res, coordinator.SyncResult{Added: 2, Updated: 1})

	// The local copy of the same post gains what it was missing
	got, err := store.Get(local.ID)
	assert.NilError(t, err)
	assert.Equal(t, got.RemoteID, "srv-1")
	assert.Equal(t, *got.VenueName, "Taqueria Sol")
	assert.Equal(t, *got.EventName, "Great tacos here")
	assert.Assert(t, got.HasCoordinates())

	items, err := store.List()
	assert.NilError(t, err)
	assert.Assert(t, is.Len(items, 3))
	// Newest backend save on top
	assert.Equal(t, items[0].RemoteID, "srv-2")
	assert.Equal(t, items[0].CategoryName(), "Bars")

	// Running again changes nothing
	res, err = c.Sync(context.Background())
	assert.NilError(t, err)
	assert.DeepEqual(t, res, coordinator.SyncResult{Unchanged: 3})
}

func TestSync_NeedsSession(t *testing.T) {
	c, _ := newSyncCoordinator(t, &backend{}, false)

	_, err := c.Sync(context.Background())
	assert.Assert(t, errors.Is(err, coordinator.ErrOffline))
}

func TestSync_BackendFailure(t *testing.T) {
	c, _ := newSyncCoordinator(t, &backend{failWith: http.StatusUnauthorized}, true)

	_, err := c.Sync(context.Background())
	assert.Assert(t, remote.IsBackendError(err))
}
