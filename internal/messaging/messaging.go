// Package messaging routes action-tagged requests from capture surfaces
// to the save coordinator and the local store.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/nikbrunner/spots/internal/coordinator"
	"github.com/nikbrunner/spots/internal/model"
	"github.com/nikbrunner/spots/internal/storage"
	"github.com/nikbrunner/spots/internal/view"
)

// Action names a request kind.
type Action string

const (
	ActionSavePost      Action = "SAVE_POST"
	ActionGetSavedItems Action = "GET_SAVED_ITEMS"
	ActionCheckAuth     Action = "CHECK_AUTH"
)

// Request is one message. Data holds a CapturedPost for SAVE_POST.
type Request struct {
	Action  Action          `json:"action"`
	Data    json.RawMessage `json:"data,omitempty"`
	Filters *Filters        `json:"filters,omitempty"`
}

// Filters narrows GET_SAVED_ITEMS.
type Filters struct {
	Category string `json:"category,omitempty"`
}

// Response is the reply to a Request. Only the fields relevant to the
// action are set.
type Response struct {
	Success bool              `json:"success"`
	Path    string            `json:"path,omitempty"`
	Data    *model.SavedItem  `json:"data,omitempty"`
	Items   []model.SavedItem `json:"items,omitempty"`
	User    *storage.User     `json:"user"`
	Error   string            `json:"error,omitempty"`
}

// Saver stores captured posts.
type Saver interface {
	Save(ctx context.Context, post model.CapturedPost) coordinator.Result
}

// Lister lists stored items.
type Lister interface {
	List() ([]model.SavedItem, error)
}

// UserSource returns the logged-in user, or nil.
type UserSource interface {
	User() (*storage.User, error)
}

// Dispatcher handles requests.
type Dispatcher struct {
	saver  Saver
	items  Lister
	users  UserSource
	logger *zap.Logger
}

// NewDispatcherParams holds parameters for creating a Dispatcher.
type NewDispatcherParams struct {
	Saver  Saver
	Items  Lister
	Users  UserSource
	Logger *zap.Logger
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(params NewDispatcherParams) *Dispatcher {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{saver: params.Saver, items: params.Items, users: params.Users, logger: logger}
}

// Handle dispatches req by action. Failures are reported in the response.
func (d *Dispatcher) Handle(ctx context.Context, req Request) Response {
	d.logger.Debug("message received", zap.String("action", string(req.Action)))

	switch req.Action {
	case ActionSavePost:
		return d.savePost(ctx, req.Data)
	case ActionGetSavedItems:
		return d.savedItems(req.Filters)
	case ActionCheckAuth:
		return d.checkAuth()
	}
	return Response{Error: fmt.Sprintf("unknown action %q", req.Action)}
}

func (d *Dispatcher) savePost(ctx context.Context, data json.RawMessage) Response {
	var post model.CapturedPost
	if len(data) == 0 {
		return Response{Error: "missing post data"}
	}
	if err := json.Unmarshal(data, &post); err != nil {
		return Response{Error: "invalid post data: " + err.Error()}
	}

	res := d.saver.Save(ctx, post)
	if !res.OK() {
		return Response{Path: res.Path.String(), Error: res.Err.Error()}
	}
	item := res.Item
	return Response{Success: true, Path: res.Path.String(), Data: &item}
}

func (d *Dispatcher) savedItems(filters *Filters) Response {
	items, err := d.items.List()
	if err != nil {
		return Response{Error: err.Error()}
	}
	if filters != nil {
		// Same filter values as /api/saves: "all", "uncategorized" or a label
		items = view.Filter(items, view.ParseFilter(filters.Category))
	}
	if items == nil {
		items = []model.SavedItem{}
	}
	return Response{Success: true, Items: items}
}

func (d *Dispatcher) checkAuth() Response {
	if d.users == nil {
		return Response{Success: true}
	}
	user, err := d.users.User()
	if err != nil {
		return Response{Error: err.Error()}
	}
	return Response{Success: true, User: user}
}
