package coordinator

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/nikbrunner/spots/internal/model"
)

// EditForm is what the user submits from the edit view.
type EditForm struct {
	Name      string
	Category  string
	EventDate string
	Address   string
}

// Edit applies the form to a stored item. The category is required.
// When the item has an address but no coordinates the address is
// geocoded; a geocoding failure does not fail the edit. Edits of a
// mirrored item are sent to the backend when a session exists.
func (c *Coordinator) Edit(ctx context.Context, id string, form EditForm) (model.SavedItem, error) {
	form.Name = strings.TrimSpace(form.Name)
	form.Category = strings.TrimSpace(form.Category)
	form.Address = strings.TrimSpace(form.Address)
	form.EventDate = strings.TrimSpace(form.EventDate)

	if form.Category == "" {
		return model.SavedItem{}, &model.ValidationError{Field: "category", Msg: "please enter a category name"}
	}

	current, err := c.store.Get(id)
	if err != nil {
		return model.SavedItem{}, err
	}

	eventName := form.Name
	if eventName == "" {
		eventName = form.Category
	}
	patch := model.Patch{
		Category:  &form.Category,
		VenueName: &form.Name,
		EventName: &eventName,
		EventDate: &form.EventDate,
		Address:   &form.Address,
	}

	hasCoords := current.HasCoordinates()
	if oldAddress := current.Address; (oldAddress == nil && form.Address != "") || (oldAddress != nil && *oldAddress != form.Address) {
		// A new address invalidates the old coordinates
		hasCoords = false
		zero := 0.0
		patch.Latitude = &zero
		patch.Longitude = &zero
	}

	if form.Address != "" && !hasCoords && c.geocoder != nil {
		geo, err := c.geocoder.Forward(ctx, form.Address)
		if err != nil {
			c.logger.Warn("geocoding failed", zap.String("address", form.Address), zap.Error(err))
		} else {
			patch.Latitude = &geo.Latitude
			patch.Longitude = &geo.Longitude
			patch.Address = &geo.FormattedAddress
		}
	}

	if _, err := c.store.AddCategory(form.Category); err != nil {
		return model.SavedItem{}, err
	}
	updated, err := c.store.Update(id, patch)
	if err != nil {
		return model.SavedItem{}, err
	}

	c.pushEdit(ctx, updated, patch)

	c.logger.Info("item edited", zap.String("id", id), zap.Bool("located", updated.HasCoordinates()))
	return updated, nil
}
