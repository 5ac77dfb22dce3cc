package location_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovaphlow/pitchfork/service-inventory-go/internal/app"
	"github.com/ovaphlow/pitchfork/service-inventory-go/internal/app/apptest"
	"github.com/ovaphlow/pitchfork/service-inventory-go/internal/entity"
	"github.com/ovaphlow/pitchfork/service-inventory-go/internal/validation"
)

func TestDescriptionLength(t *testing.T) {
	a := apptest.New(t, app.Options{})
	owner := apptest.MustUser(t, a, "carlosperez")

	cases := map[int]bool{2: false, 3: true, 50: true, 51: false}
	for n, want := range cases {
		var b validation.Batch
		l := &entity.Location{OwnerID: owner.ID, Description: strings.Repeat("g", n)}
		ok, err := a.Locations.ValidateAllRules(context.Background(), l, &b)
		require.NoError(t, err)
		assert.Equal(t, want, ok, "length %d", n)
		if !want {
			assert.ErrorIs(t, b.Err(), validation.ErrInvalidLength)
		}
	}
}

func TestDescriptionUniquePerOwner(t *testing.T) {
	ctx := context.Background()
	a := apptest.New(t, app.Options{})
	ana := apptest.MustUser(t, a, "ana_user")
	eva := apptest.MustUser(t, a, "eva_user")
	apptest.MustLocation(t, a, ana.ID, "Garage")

	other := &entity.Location{OwnerID: eva.ID, Description: "Garage"}
	require.NoError(t, a.Locations.Insert(ctx, other))

	dup := &entity.Location{OwnerID: ana.ID, Description: "Garage"}
	err := a.Locations.Insert(ctx, dup)
	require.Error(t, err)
	ex, ok := validation.AsException(err)
	require.True(t, ok)
	require.Len(t, ex.Errors, 1)
	assert.ErrorIs(t, ex.Errors[0], validation.ErrRepeatedLocationName)
	assert.Zero(t, dup.ID)
}

func TestUpdateKeepsOwnDescription(t *testing.T) {
	ctx := context.Background()
	a := apptest.New(t, app.Options{})
	owner := apptest.MustUser(t, a, "carlosperez")
	garage := apptest.MustLocation(t, a, owner.ID, "Garage")

	ok, err := a.Locations.Update(ctx, &entity.Location{ID: garage.ID, OwnerID: owner.ID, Description: "Garage"})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = a.Locations.Update(ctx, &entity.Location{ID: 77, OwnerID: owner.ID, Description: "Attic"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMissingOwnerFailsAndDescriptionStillChecked(t *testing.T) {
	a := apptest.New(t, app.Options{})
	var b validation.Batch
	ok, err := a.Locations.ValidateAllRules(context.Background(), &entity.Location{OwnerID: 5, Description: "G"}, &b)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, []string{"owner_id", "description"}, b.Fields())
	errs := b.Errors()
	assert.ErrorIs(t, errs[0], validation.ErrForeignKey)
	assert.ErrorIs(t, errs[1], validation.ErrInvalidLength)
}

func TestRequiredFields(t *testing.T) {
	a := apptest.New(t, app.Options{})
	var b validation.Batch
	ok, err := a.Locations.ValidateAllRules(context.Background(), &entity.Location{}, &b)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, []string{"owner_id", "description"}, b.Fields())
}

func TestDeleteBlockedByItems(t *testing.T) {
	ctx := context.Background()
	a := apptest.New(t, app.Options{})
	owner := apptest.MustUser(t, a, "carlosperez")
	garage := apptest.MustLocation(t, a, owner.ID, "Garage")
	drill := apptest.MustItem(t, a, owner.ID, garage.ID, "Drill")

	_, err := a.Locations.Delete(ctx, garage.ID)
	assert.ErrorIs(t, err, validation.ErrDeleteForeignKey)

	_, err = a.Items.Delete(ctx, drill.ID)
	require.NoError(t, err)
	ok, err := a.Locations.Delete(ctx, garage.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = a.Locations.Delete(ctx, garage.ID)
	require.NoError(t, err)
	assert.False(t, ok, "second delete finds nothing")
}

func TestPopulateOwner(t *testing.T) {
	ctx := context.Background()
	a := apptest.New(t, app.Options{})
	owner := apptest.MustUser(t, a, "carlosperez")
	garage := apptest.MustLocation(t, a, owner.ID, "Garage")
	apptest.MustItem(t, a, owner.ID, garage.ID, "Drill")

	for _, p := range []entity.Populate{entity.None, {Owner: false}} {
		l, err := a.Locations.GetByID(ctx, garage.ID, p)
		require.NoError(t, err)
		assert.Nil(t, l.Owner)
		assert.Nil(t, l.Items)
	}

	l, err := a.Locations.GetByID(ctx, garage.ID, entity.Populate{Owner: true, Items: true})
	require.NoError(t, err)
	direct, err := a.Users.GetByID(ctx, owner.ID, entity.None)
	require.NoError(t, err)
	assert.Equal(t, direct, l.Owner)
	require.Len(t, l.Items, 1)
	assert.Equal(t, "Drill", l.Items[0].Description)
}

func TestGetAllByUser(t *testing.T) {
	ctx := context.Background()
	a := apptest.New(t, app.Options{})
	ana := apptest.MustUser(t, a, "ana_user")
	eva := apptest.MustUser(t, a, "eva_user")
	apptest.MustLocation(t, a, ana.ID, "Garage")
	apptest.MustLocation(t, a, eva.ID, "Attic")
	apptest.MustLocation(t, a, ana.ID, "Basement")

	locs, err := a.Locations.GetAllByUser(ctx, ana.ID, entity.None)
	require.NoError(t, err)
	require.Len(t, locs, 2)
	assert.Equal(t, "Garage", locs[0].Description)
	assert.Equal(t, "Basement", locs[1].Description)

	all, err := a.Locations.GetAll(ctx, entity.None)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = a.Locations.GetByID(ctx, 999, entity.None)
	assert.ErrorIs(t, err, entity.ErrNotFound)
}
