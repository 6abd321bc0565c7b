package share

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/nikbrunner/spots/internal/model"
	"github.com/nikbrunner/spots/internal/remote"
)

// Backend is the share-link API.
type Backend interface {
	CreateShareLink(ctx context.Context, category string, items []model.SavedItem) (string, error)
	GetShare(ctx context.Context, id string) (*remote.Share, error)
	ReorderShare(ctx context.Context, id string, items []model.SavedItem) error
}

// Service loads, creates and reorders shared lists.
type Service struct {
	backend Backend
	logger  *zap.Logger
}

// NewServiceParams configures a Service.
type NewServiceParams struct {
	Backend Backend
	Logger  *zap.Logger
}

// NewService creates a Service.
func NewService(params NewServiceParams) *Service {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{backend: params.Backend, logger: logger}
}

// Load fetches a shared list.
func (s *Service) Load(ctx context.Context, id string) (*List, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, &model.ValidationError{Field: "id", Msg: "share id is required"}
	}
	shared, err := s.backend.GetShare(ctx, id)
	if err != nil {
		return nil, err
	}
	list := fromRemote(shared)
	if list.ID == "" {
		list.ID = id
	}
	located, _ := Split(list.Items)
	s.logger.Debug("share loaded",
		zap.String("id", id),
		zap.Int("items", len(list.Items)),
		zap.Int("located", len(located)))
	return list, nil
}

// SaveOrder submits the editor's order. The last submitted order wins.
func (s *Service) SaveOrder(ctx context.Context, id string, ed *Editor) error {
	order := ed.Order()
	if err := s.backend.ReorderShare(ctx, id, order); err != nil {
		return err
	}
	s.logger.Info("share reordered", zap.String("id", id), zap.Int("items", len(order)))
	return nil
}

// Reorder submits items as the new order of a list. Located items are
// moved ahead of the rest, keeping their relative order.
func (s *Service) Reorder(ctx context.Context, id string, items []model.SavedItem) error {
	if strings.TrimSpace(id) == "" {
		return &model.ValidationError{Field: "id", Msg: "share id is required"}
	}
	return s.SaveOrder(ctx, id, NewEditor(items))
}

// Move loads a list, moves the map marker at position from to position
// to (both 1-based, as numbered on the page) and submits the new order.
func (s *Service) Move(ctx context.Context, id string, from, to int) (*List, error) {
	list, err := s.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	ed := NewEditor(list.Items)
	if err := ed.Move(from-1, to-1); err != nil {
		return nil, err
	}
	if err := s.SaveOrder(ctx, list.ID, ed); err != nil {
		return nil, err
	}
	list.Items = ed.Order()
	return list, nil
}

// Create publishes every item in category and returns the share URL.
func (s *Service) Create(ctx context.Context, category string, items []model.SavedItem) (string, error) {
	if category == "" {
		return "", &model.ValidationError{Field: "category", Msg: "pick a category to share"}
	}
	var members []model.SavedItem
	for _, item := range items {
		if item.CategoryName() == category {
			members = append(members, item)
		}
	}
	link, err := s.backend.CreateShareLink(ctx, category, members)
	if err != nil {
		return "", err
	}
	s.logger.Info("share created", zap.String("category", category), zap.Int("items", len(members)))
	return link, nil
}
