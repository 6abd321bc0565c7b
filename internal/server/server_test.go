package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/goleak"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
	"gotest.tools/v3/poll"

	"github.com/nikbrunner/spots/internal/coordinator"
	"github.com/nikbrunner/spots/internal/messaging"
	"github.com/nikbrunner/spots/internal/model"
	"github.com/nikbrunner/spots/internal/remote"
	"github.com/nikbrunner/spots/internal/server"
	"github.com/nikbrunner/spots/internal/share"
	"github.com/nikbrunner/spots/internal/storage"
)

func stringPtr(s string) *string  { return &s }
func floatPtr(f float64) *float64 { return &f }

type fakeShares struct {
	mu    sync.Mutex
	lists map[string]*share.List
}

func (f *fakeShares) Load(_ context.Context, id string) (*share.List, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	list, ok := f.lists[id]
	if !ok {
		return nil, &remote.BackendError{Op: "get share", StatusCode: http.StatusNotFound}
	}
	return list, nil
}

func (f *fakeShares) Reorder(_ context.Context, id string, items []model.SavedItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	list, ok := f.lists[id]
	if !ok {
		return &remote.BackendError{Op: "reorder share", StatusCode: http.StatusNotFound}
	}
	list.Items = share.NewEditor(items).Order()
	return nil
}

type fixture struct {
	srv    *httptest.Server
	hub    *server.Hub
	shares *fakeShares
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := storage.NewLocalStore(storage.NewLocalStoreParams{
		Storage: storage.NewJSONStorage(filepath.Join(t.TempDir(), "saves.json")),
	})
	hub := server.NewHub(nil)
	coord := coordinator.New(coordinator.NewCoordinatorParams{Store: store, OnSave: hub.OnSave})
	shares := &fakeShares{lists: map[string]*share.List{
		"abc": {
			ID:       "abc",
			Category: "Tacos",
			Views:    2,
			Items: []model.SavedItem{
				{ID: "x", Platform: model.PlatformTikTok},
				{ID: "a", VenueName: stringPtr("Taqueria"), Latitude: floatPtr(1), Longitude: floatPtr(2)},
			},
		},
	}}

	srv := server.New(server.NewServerParams{
		Messages: messaging.NewDispatcher(messaging.NewDispatcherParams{Saver: coord, Items: store}),
		Items:    store,
		Shares:   shares,
		Hub:      hub,
	})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		hub.Close()
		ts.Close()
	})
	return &fixture{srv: ts, hub: hub, shares: shares}
}

func (f *fixture) postMessage(t *testing.T, req messaging.Request) messaging.Response {
	t.Helper()
	body, err := json.Marshal(req)
	assert.NilError(t, err)

	resp, err := f.srv.Client().Post(f.srv.URL+"/api/message", "application/json", bytes.NewReader(body))
	assert.NilError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, resp.StatusCode, http.StatusOK)

	var out messaging.Response
	assert.NilError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func saveRequest(t *testing.T, post model.CapturedPost) messaging.Request {
	t.Helper()
	data, err := json.Marshal(post)
	assert.NilError(t, err)
	return messaging.Request{Action: messaging.ActionSavePost, Data: data}
}

func (f *fixture) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	resp, err := f.srv.Client().Get(f.srv.URL + path)
	assert.NilError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	assert.NilError(t, err)
	return resp, string(body)
}

func TestServer_MessageThenList(t *testing.T) {
	f := newFixture(t)

	resp := f.postMessage(t, saveRequest(t, model.CapturedPost{
		Platform: model.PlatformInstagram,
		URL:      "https://www.instagram.com/p/abc/",
		Content:  "Great tacos here! #yum",
		Category: "Food",
	}))
	assert.Assert(t, resp.Success, resp.Error)
	assert.Equal(t, resp.Path, "local")

	f.postMessage(t, saveRequest(t, model.CapturedPost{
		Platform: model.PlatformTikTok,
		URL:      "https://www.tiktok.com/@eats/video/1",
	}))

	tests := []struct {
		query string
		want  int
	}{
		{"", 2},
		{"?category=all", 2},
		{"?category=Food", 1},
		{"?category=no-category", 1},
		{"?category=Bars", 0},
	}
	for _, tt := range tests {
		t.Run("saves"+tt.query, func(t *testing.T) {
			httpResp, body := f.get(t, "/api/saves"+tt.query)
			assert.Equal(t, httpResp.StatusCode, http.StatusOK)

			var out struct {
				Items []model.SavedItem `json:"items"`
			}
			assert.NilError(t, json.Unmarshal([]byte(body), &out))
			assert.Assert(t, is.Len(out.Items, tt.want))
		})
	}
}

func TestServer_UnknownActionAndBadBody(t *testing.T) {
	f := newFixture(t)

	resp := f.postMessage(t, messaging.Request{Action: "NOPE"})
	assert.Assert(t, !resp.Success)
	assert.Assert(t, is.Contains(resp.Error, "unknown action"))

	httpResp, err := f.srv.Client().Post(f.srv.URL+"/api/message", "application/json", strings.NewReader("{"))
	assert.NilError(t, err)
	httpResp.Body.Close()
	assert.Equal(t, httpResp.StatusCode, http.StatusBadRequest)
}

func TestServer_RequestID(t *testing.T) {
	f := newFixture(t)

	resp, _ := f.get(t, "/api/saves")
	assert.Assert(t, resp.Header.Get(server.RequestIDHeader) != "")

	req, err := http.NewRequest(http.MethodGet, f.srv.URL+"/api/saves", nil)
	assert.NilError(t, err)
	req.Header.Set(server.RequestIDHeader, "trace-1")
	echoed, err := f.srv.Client().Do(req)
	assert.NilError(t, err)
	echoed.Body.Close()
	assert.Equal(t, echoed.Header.Get(server.RequestIDHeader), "trace-1")
}

func TestServer_Share(t *testing.T) {
	f := newFixture(t)

	resp, body := f.get(t, "/api/share/abc")
	assert.Equal(t, resp.StatusCode, http.StatusOK)
	assert.Assert(t, is.Contains(body, `"category":"Tacos"`))

	resp, body = f.get(t, "/share/abc")
	assert.Equal(t, resp.StatusCode, http.StatusOK)
	assert.Assert(t, is.Contains(resp.Header.Get("Content-Type"), "text/html"))
	assert.Assert(t, is.Contains(body, "Taqueria"))
	assert.Assert(t, is.Contains(body, "1 of 2 places on map"))

	resp, _ = f.get(t, "/api/share/missing")
	assert.Equal(t, resp.StatusCode, http.StatusNotFound)
	resp, _ = f.get(t, "/share/missing")
	assert.Equal(t, resp.StatusCode, http.StatusNotFound)
}

func TestServer_Reorder(t *testing.T) {
	f := newFixture(t)

	body := `{"items":[{"id":"x"},{"id":"a","latitude":1,"longitude":2}]}`
	req, err := http.NewRequest(http.MethodPut, f.srv.URL+"/api/share/abc/reorder", strings.NewReader(body))
	assert.NilError(t, err)
	resp, err := f.srv.Client().Do(req)
	assert.NilError(t, err)
	resp.Body.Close()
	assert.Equal(t, resp.StatusCode, http.StatusOK)

	list, err := f.shares.Load(context.Background(), "abc")
	assert.NilError(t, err)
	assert.Equal(t, list.Items[0].ID, "a")
	assert.Equal(t, list.Items[1].ID, "x")
}

func TestHub_BroadcastsSaves(t *testing.T) {
	defer goleak.VerifyNone(t,
		goleak.IgnoreCurrent(),
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
	)

	f := newFixture(t)
	defer func() {
		f.hub.Close()
		f.srv.Close()
	}()

	wsURL := "ws" + strings.TrimPrefix(f.srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	assert.NilError(t, err)
	defer conn.Close()

	poll.WaitOn(t, func(poll.LogT) poll.Result {
		if f.hub.Count() == 1 {
			return poll.Success()
		}
		return poll.Continue("waiting for subscriber")
	}, poll.WithTimeout(2*time.Second))

	resp := f.postMessage(t, saveRequest(t, model.CapturedPost{
		Platform: model.PlatformInstagram,
		URL:      "https://www.instagram.com/p/live/",
		Category: "Coffee",
	}))
	assert.Assert(t, resp.Success, resp.Error)

	assert.NilError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev server.Event
	assert.NilError(t, conn.ReadJSON(&ev))
	assert.Equal(t, ev.Type, "saved")
	assert.Equal(t, ev.Path, "local")
	assert.Equal(t, ev.Item.URL, "https://www.instagram.com/p/live/")
	assert.Equal(t, ev.Item.CategoryName(), "Coffee")
}

func TestHub_ClientDisconnectUnsubscribes(t *testing.T) {
	f := newFixture(t)

	wsURL := "ws" + strings.TrimPrefix(f.srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	assert.NilError(t, err)

	poll.WaitOn(t, func(poll.LogT) poll.Result {
		if f.hub.Count() == 1 {
			return poll.Success()
		}
		return poll.Continue("waiting for subscriber")
	}, poll.WithTimeout(2*time.Second))

	assert.NilError(t, conn.Close())

	poll.WaitOn(t, func(poll.LogT) poll.Result {
		if f.hub.Count() == 0 {
			return poll.Success()
		}
		return poll.Continue("subscriber still registered")
	}, poll.WithTimeout(2*time.Second))
}
