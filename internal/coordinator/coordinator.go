// Package coordinator decides where a captured post is saved.
//
// A logged-in user's save goes to the backend first and is mirrored
// into the local store. Without a session, or when the backend call
// fails, the post is saved locally. Only a failing local store makes
// the save fail.
package coordinator

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/nikbrunner/spots/internal/ai"
	"github.com/nikbrunner/spots/internal/geocode"
	"github.com/nikbrunner/spots/internal/model"
)

// Path is where a save ended up.
type Path int

const (
	PathFailed Path = iota
	PathRemote
	PathLocal
	// PathExisting means the post was already stored and nothing was saved.
	PathExisting
)

func (p Path) String() string {
	switch p {
	case PathRemote:
		return "remote"
	case PathLocal:
		return "local"
	case PathExisting:
		return "existing"
	}
	return "failed"
}

// Phase is a step of the save state machine.
type Phase string

const (
	PhaseIdle           Phase = "idle"
	PhaseAuthenticating Phase = "authenticating"
	PhaseRemote         Phase = "remote"
	PhaseLocal          Phase = "local"
	PhaseDone           Phase = "done"
)

// Result is the outcome of a save. Err is set only when Path is PathFailed.
// RemoteErr records a backend failure that was absorbed by the local fallback.
type Result struct {
	Path      Path
	Item      model.SavedItem
	Err       error
	RemoteErr error
	Trace     []Phase
}

// OK reports whether the post was stored.
func (r Result) OK() bool {
	return r.Path != PathFailed
}

// SessionChecker reports whether the user has a backend session.
type SessionChecker interface {
	HasSession(ctx context.Context) bool
}

// RemoteSaver creates saves on the backend.
type RemoteSaver interface {
	CreateSave(ctx context.Context, post model.CapturedPost) (model.SavedItem, error)
}

// Enricher extracts event details from a post on the local path.
type Enricher interface {
	Enrich(ctx context.Context, post model.CapturedPost, categories []string) (*ai.Enrichment, error)
}

// Geocoder resolves an address to coordinates.
type Geocoder interface {
	Forward(ctx context.Context, address string) (*geocode.Result, error)
}

// ItemStore is the local persistence the coordinator writes to.
type ItemStore interface {
	Append(item model.SavedItem) (model.SavedItem, error)
	Get(id string) (model.SavedItem, error)
	FindURL(url string) (model.SavedItem, error)
	List() ([]model.SavedItem, error)
	Update(id string, patch model.Patch) (model.SavedItem, error)
	Remove(id string) error
	AddCategory(name string) (bool, error)
	Categories() ([]string, error)
}

// Coordinator runs the save state machine.
type Coordinator struct {
	store    ItemStore
	sessions SessionChecker
	remote   RemoteSaver
	sync     RemoteSync
	enricher Enricher
	geocoder Geocoder
	onSave   func(Result)
	now      func() time.Time
	logger   *zap.Logger
}

// NewCoordinatorParams holds parameters for creating a Coordinator.
// Sessions, Remote, Sync, Enricher and Geocoder are optional.
type NewCoordinatorParams struct {
	Store    ItemStore
	Sessions SessionChecker
	Remote   RemoteSaver
	Sync     RemoteSync
	Enricher Enricher
	Geocoder Geocoder
	OnSave   func(Result)
	Now      func() time.Time
	Logger   *zap.Logger
}

// New creates a Coordinator.
func New(params NewCoordinatorParams) *Coordinator {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Coordinator{
		store:    params.Store,
		sessions: params.Sessions,
		remote:   params.Remote,
		sync:     params.Sync,
		enricher: params.Enricher,
		geocoder: params.Geocoder,
		onSave:   params.OnSave,
		now:      now,
		logger:   logger,
	}
}

// Save stores a captured post, remotely when possible and locally otherwise.
func (c *Coordinator) Save(ctx context.Context, post model.CapturedPost) Result {
	res := Result{Trace: []Phase{PhaseIdle}}

	if err := post.Validate(); err != nil {
		res.Path = PathFailed
		res.Err = err
		res.Trace = append(res.Trace, PhaseDone)
		return res
	}
	if len(post.Images) > model.MaxCapturedImages {
		post.Images = post.Images[:model.MaxCapturedImages]
	}

	res.Trace = append(res.Trace, PhaseAuthenticating)
	loggedIn := c.sessions != nil && c.remote != nil && c.sessions.HasSession(ctx)

	var item model.SavedItem
	if loggedIn {
		res.Trace = append(res.Trace, PhaseRemote)
		remoteItem, err := c.remote.CreateSave(ctx, post)
		if err == nil {
			res.Path = PathRemote
			item = c.mirror(post, remoteItem)
		} else {
			c.logger.Warn("remote save failed, saving locally", zap.String("url", post.URL), zap.Error(err))
			res.RemoteErr = err
		}
	}
	if res.Path != PathRemote {
		res.Path = PathLocal
		item = c.localItem(ctx, post)
	}

	res.Trace = append(res.Trace, PhaseLocal)
	saved, err := c.persist(item)
	res.Trace = append(res.Trace, PhaseDone)
	if err != nil {
		c.logger.Error("save failed", zap.String("url", post.URL), zap.Error(err))
		res.Path = PathFailed
		res.Err = err
		return res
	}
	res.Item = saved

	c.logger.Info("post saved",
		zap.String("id", saved.ID),
		zap.String("path", res.Path.String()),
		zap.String("platform", string(saved.Platform)))

	if c.onSave != nil {
		c.onSave(res)
	}
	return res
}

// SaveNew saves a post unless one with the same URL is already stored,
// in which case the stored item comes back with PathExisting.
func (c *Coordinator) SaveNew(ctx context.Context, post model.CapturedPost) Result {
	existing, err := c.store.FindURL(post.URL)
	switch {
	case err == nil:
		c.logger.Debug("post already saved", zap.String("url", post.URL), zap.String("id", existing.ID))
		return Result{Path: PathExisting, Item: existing, Trace: []Phase{PhaseIdle, PhaseDone}}
	case !errors.Is(err, model.ErrNotFound):
		return Result{Path: PathFailed, Err: err, Trace: []Phase{PhaseIdle, PhaseDone}}
	}
	return c.Save(ctx, post)
}

func (c *Coordinator) persist(item model.SavedItem) (model.SavedItem, error) {
	if category := item.CategoryName(); category != "" {
		if _, err := c.store.AddCategory(category); err != nil {
			return model.SavedItem{}, err
		}
	}
	return c.store.Append(item)
}

// baseItem copies the captured fields into a new item.
func (c *Coordinator) baseItem(post model.CapturedPost) model.SavedItem {
	images := append([]string{}, post.Images...)
	return model.SavedItem{
		Platform:  post.Platform,
		URL:       post.URL,
		Author:    post.Author,
		Content:   post.Content,
		Images:    images,
		EventName: model.StringPtr(post.Name),
		Category:  model.StringPtr(post.Category),
		EventDate: model.StringPtr(post.EventDate),
		Address:   model.StringPtr(post.Address),
		Tags:      []string{},
		SavedAt:   c.now(),
	}
}

// localItem builds the item for a local save. Captured hashtags are not
// copied into tags; only the enricher may supply them.
func (c *Coordinator) localItem(ctx context.Context, post model.CapturedPost) model.SavedItem {
	item := c.baseItem(post)

	if c.enricher != nil {
		categories, _ := c.store.Categories()
		e, err := c.enricher.Enrich(ctx, post, categories)
		if err != nil {
			c.logger.Warn("enrichment failed", zap.Error(err))
		} else {
			item = fillEnrichment(item, e)
		}
	}

	if item.EventName == nil {
		name := model.DefaultName(post.Content)
		item.EventName = &name
	}
	return item
}

// mirror merges the backend's item into a local copy. What the user
// typed wins over what the backend derived.
func (c *Coordinator) mirror(post model.CapturedPost, remote model.SavedItem) model.SavedItem {
	item := c.baseItem(post)
	item.RemoteID = remote.ID

	item.EventName = firstNonEmpty(item.EventName, remote.EventName)
	if item.EventName == nil {
		name := model.DefaultName(post.Content)
		item.EventName = &name
	}
	item.VenueName = remote.VenueName
	item.Address = firstNonEmpty(item.Address, remote.Address)
	item.EventDate = firstNonEmpty(item.EventDate, remote.EventDate)
	item.Category = firstNonEmpty(item.Category, remote.Category)
	item.StartTime = remote.StartTime
	item.EndTime = remote.EndTime
	item.EventType = remote.EventType
	item.Description = remote.Description
	item.Latitude = remote.Latitude
	item.Longitude = remote.Longitude
	item.ConfidenceScore = remote.ConfidenceScore
	item.AIProcessed = true
	if remote.Tags != nil {
		item.Tags = append([]string{}, remote.Tags...)
	}
	return item
}

func fillEnrichment(item model.SavedItem, e *ai.Enrichment) model.SavedItem {
	item.EventName = firstNonEmpty(item.EventName, model.StringPtr(e.EventName))
	item.VenueName = model.StringPtr(e.VenueName)
	item.Address = firstNonEmpty(item.Address, model.StringPtr(e.Address))
	item.EventDate = firstNonEmpty(item.EventDate, model.StringPtr(e.EventDate))
	item.Category = firstNonEmpty(item.Category, model.StringPtr(e.Category))
	item.StartTime = model.StringPtr(e.StartTime)
	item.EndTime = model.StringPtr(e.EndTime)
	item.EventType = model.StringPtr(e.EventType)
	item.Description = model.StringPtr(e.Description)
	if e.Tags != nil {
		item.Tags = append([]string{}, e.Tags...)
	}
	confidence := e.Confidence
	item.ConfidenceScore = &confidence
	item.AIProcessed = true
	return item
}

func firstNonEmpty(values ...*string) *string {
	for _, v := range values {
		if v != nil && *v != "" {
			return v
		}
	}
	return nil
}
