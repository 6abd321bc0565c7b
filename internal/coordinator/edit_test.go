package coordinator_test

import (
	"context"
	"errors"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/nikbrunner/spots/internal/coordinator"
	"github.com/nikbrunner/spots/internal/geocode"
	"github.com/nikbrunner/spots/internal/model"
)

func TestEdit_GeocodesAddressWithoutCoordinates(t *testing.T) {
	store := newStore(t)
	geo := &fakeGeocoder{res: &geocode.Result{Latitude: 40.7, Longitude: -74, FormattedAddress: "1 Main St, New York, NY"}}
	c := coordinator.New(coordinator.NewCoordinatorParams{Store: store, Geocoder: geo})

	saved := c.Save(context.Background(), tacoPost()).Item

	updated, err := c.Edit(context.Background(), saved.ID, coordinator.EditForm{
		Name:     "Taqueria Sol",
		Category: "Food",
		Address:  "1 Main St",
	})
	assert.NilError(t, err)
	assert.Equal(t, geo.calls, 1)
	assert.Assert(t, updated.HasCoordinates())
	assert.Equal(t, *updated.Address, "1 Main St, New York, NY")
	assert.Equal(t, *updated.VenueName, "Taqueria Sol")
	assert.Equal(t, *updated.EventName, "Taqueria Sol")

	cats, _ := store.Categories()
	assert.DeepEqual(t, cats, []string{"Food"})

	// Same address with coordinates already present: no lookup
	_, err = c.Edit(context.Background(), saved.ID, coordinator.EditForm{
		Name:     "Taqueria Sol",
		Category: "Food",
		Address:  "1 Main St, New York, NY",
	})
	assert.NilError(t, err)
	assert.Equal(t, geo.calls, 1)
}

func TestEdit_GeocodingFailureKeepsEdit(t *testing.T) {
	c := coordinator.New(coordinator.NewCoordinatorParams{Store: newStore(t), Geocoder: &fakeGeocoder{}})
	saved := c.Save(context.Background(), tacoPost()).Item

	updated, err := c.Edit(context.Background(), saved.ID, coordinator.EditForm{Category: "Bars", Address: "nowhere"})
	assert.NilError(t, err)
	assert.Assert(t, !updated.HasCoordinates())
	assert.Equal(t, *updated.Address, "nowhere")
	// Empty name falls back to the category
	assert.Equal(t, *updated.EventName, "Bars")
	assert.Assert(t, updated.VenueName == nil)
}

func TestEdit_RequiresCategory(t *testing.T) {
	c := coordinator.New(coordinator.NewCoordinatorParams{Store: newStore(t)})
	saved := c.Save(context.Background(), tacoPost()).Item

	_, err := c.Edit(context.Background(), saved.ID, coordinator.EditForm{Name: "x", Category: "  "})
	assert.Assert(t, model.IsValidation(err))
}

func TestEdit_UnknownID(t *testing.T) {
	c := coordinator.New(coordinator.NewCoordinatorParams{Store: newStore(t)})

	_, err := c.Edit(context.Background(), "missing", coordinator.EditForm{Category: "Food"})
	assert.Assert(t, errors.Is(err, model.ErrNotFound))
}
