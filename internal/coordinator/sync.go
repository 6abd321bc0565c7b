package coordinator

import (
	"context"
	"errors"
	"sort"

	"go.uber.org/zap"

	"github.com/nikbrunner/spots/internal/model"
)

// ErrOffline is returned by Sync when there is no backend session.
var ErrOffline = errors.New("not logged in")

// RemoteSync keeps backend saves in step with local changes.
type RemoteSync interface {
	ListSaves(ctx context.Context) ([]model.SavedItem, error)
	PatchSave(ctx context.Context, id string, patch model.Patch) (model.SavedItem, error)
	DeleteSave(ctx context.Context, id string) error
}

// SyncResult counts what a Sync did with each backend save.
type SyncResult struct {
	Added     int
	Updated   int
	Unchanged int
}

func (c *Coordinator) online(ctx context.Context) bool {
	return c.sync != nil && c.sessions != nil && c.sessions.HasSession(ctx)
}

// pushEdit sends an edit of a mirrored item to the backend. A failure
// is logged; the local edit stands.
func (c *Coordinator) pushEdit(ctx context.Context, item model.SavedItem, patch model.Patch) {
	if item.RemoteID == "" || patch.IsEmpty() || !c.online(ctx) {
		return
	}
	if _, err := c.sync.PatchSave(ctx, item.RemoteID, patch); err != nil {
		c.logger.Warn("remote edit failed", zap.String("id", item.ID), zap.String("remoteId", item.RemoteID), zap.Error(err))
	}
}

// Remove deletes an item locally, then on the backend when it was
// mirrored there and a session exists. Only the local delete can fail
// the call.
func (c *Coordinator) Remove(ctx context.Context, id string) error {
	item, err := c.store.Get(id)
	if err != nil {
		return err
	}
	if err := c.store.Remove(id); err != nil {
		return err
	}

	if item.RemoteID != "" && c.online(ctx) {
		if err := c.sync.DeleteSave(ctx, item.RemoteID); err != nil {
			c.logger.Warn("remote delete failed", zap.String("id", id), zap.String("remoteId", item.RemoteID), zap.Error(err))
		}
	}
	c.logger.Info("item removed", zap.String("id", id))
	return nil
}

// Sync pulls the account's backend saves into the local store. A save
// is matched to a local item by backend id, then by post URL. Matched
// items only gain the fields they are missing; unknown saves are added.
func (c *Coordinator) Sync(ctx context.Context) (SyncResult, error) {
	var res SyncResult
	if !c.online(ctx) {
		return res, ErrOffline
	}

	remoteItems, err := c.sync.ListSaves(ctx)
	if err != nil {
		return res, err
	}
	local, err := c.store.List()
	if err != nil {
		return res, err
	}

	byRemote := make(map[string]model.SavedItem, len(local))
	byURL := make(map[string]model.SavedItem, len(local))
	for _, item := range local {
		if item.RemoteID != "" {
			byRemote[item.RemoteID] = item
		}
		byURL[item.URL] = item
	}

	// Oldest first so the newest save ends up on top
	sort.SliceStable(remoteItems, func(i, j int) bool {
		return remoteItems[i].SavedAt.Before(remoteItems[j].SavedAt)
	})

	for _, r := range remoteItems {
		if r.ID == "" || r.URL == "" {
			c.logger.Debug("skipping backend save without id or url", zap.String("id", r.ID))
			continue
		}

		current, ok := byRemote[r.ID]
		if !ok {
			current, ok = byURL[r.URL]
		}
		if ok {
			patch := missingFields(current, r)
			if patch.IsEmpty() {
				res.Unchanged++
				continue
			}
			if patch.Category != nil {
				if _, err := c.store.AddCategory(*patch.Category); err != nil {
					return res, err
				}
			}
			updated, err := c.store.Update(current.ID, patch)
			if err != nil {
				return res, err
			}
			byRemote[r.ID] = updated
			res.Updated++
			continue
		}

		item := r
		item.ID = ""
		item.RemoteID = r.ID
		if item.SavedAt.IsZero() {
			item.SavedAt = c.now()
		}
		saved, err := c.persist(item)
		if err != nil {
			return res, err
		}
		byRemote[r.ID] = saved
		byURL[saved.URL] = saved
		res.Added++
	}

	c.logger.Info("sync finished",
		zap.Int("added", res.Added),
		zap.Int("updated", res.Updated),
		zap.Int("unchanged", res.Unchanged))
	return res, nil
}

// missingFields builds a patch with the backend's values for the
// fields the local item leaves empty.
func missingFields(local, remote model.SavedItem) model.Patch {
	var p model.Patch
	if local.RemoteID == "" {
		p.RemoteID = &remote.ID
	}
	fill := func(dst **string, have, want *string) {
		if (have == nil || *have == "") && want != nil && *want != "" {
			*dst = want
		}
	}
	fill(&p.EventName, local.EventName, remote.EventName)
	fill(&p.VenueName, local.VenueName, remote.VenueName)
	fill(&p.Address, local.Address, remote.Address)
	fill(&p.EventDate, local.EventDate, remote.EventDate)
	fill(&p.StartTime, local.StartTime, remote.StartTime)
	fill(&p.EndTime, local.EndTime, remote.EndTime)
	fill(&p.EventType, local.EventType, remote.EventType)
	fill(&p.Category, local.Category, remote.Category)
	fill(&p.Description, local.Description, remote.Description)

	if !local.HasCoordinates() && remote.HasCoordinates() {
		p.Latitude = remote.Latitude
		p.Longitude = remote.Longitude
	}
	if len(local.Tags) == 0 && len(remote.Tags) > 0 {
		p.Tags = remote.Tags
	}
	return p
}
