package item_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovaphlow/pitchfork/service-inventory-go/internal/app"
	"github.com/ovaphlow/pitchfork/service-inventory-go/internal/app/apptest"
	"github.com/ovaphlow/pitchfork/service-inventory-go/internal/entity"
	"github.com/ovaphlow/pitchfork/service-inventory-go/internal/validation"
)

type fixture struct {
	app    *app.App
	clock  *clockwork.FakeClock
	owner  *entity.User
	garage *entity.Location
}

func setup(t *testing.T) fixture {
	t.Helper()
	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC))
	a := apptest.New(t, app.Options{Clock: clock})
	owner := apptest.MustUser(t, a, "carlosperez")
	return fixture{app: a, clock: clock, owner: owner, garage: apptest.MustLocation(t, a, owner.ID, "Garage")}
}

func (f fixture) item(description string, q *entity.Quantity) *entity.Item {
	return &entity.Item{OwnerID: f.owner.ID, LocationID: f.garage.ID, Description: description, Quantity: q}
}

func TestQuantity(t *testing.T) {
	f := setup(t)
	cases := []struct {
		name string
		q    *entity.Quantity
		ok   bool
	}{
		{"absent", nil, true},
		{"zero", entity.QuantityOf(0), true},
		{"positive", entity.QuantityOf(2), true},
		{"numeric string", entity.RawQuantity("4"), true},
		{"negative", entity.QuantityOf(-1), false},
		{"word", entity.RawQuantity("abc"), false},
		{"fraction", entity.RawQuantity("1.1"), false},
		{"empty", entity.RawQuantity(""), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var b validation.Batch
			ok, err := f.app.Items.ValidateAllRules(context.Background(), f.item("Drill", tc.q), &b)
			require.NoError(t, err)
			assert.Equal(t, tc.ok, ok)
			if !tc.ok {
				require.Equal(t, 1, b.Len())
				assert.Equal(t, "quantity", b.Errors()[0].Field())
				assert.ErrorIs(t, b.Err(), validation.ErrInvalidValue)
			}
		})
	}
}

func TestQuantityRoundTrip(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	it := f.item("Screws", entity.RawQuantity(" 40 "))
	require.NoError(t, f.app.Items.Insert(ctx, it))

	got, err := f.app.Items.GetByID(ctx, it.ID, entity.None)
	require.NoError(t, err)
	require.NotNil(t, got.Quantity)
	assert.Equal(t, entity.Quantity("40"), *got.Quantity)

	atomic := f.item("Hammer", nil)
	require.NoError(t, f.app.Items.Insert(ctx, atomic))
	got, err = f.app.Items.GetByID(ctx, atomic.ID, entity.None)
	require.NoError(t, err)
	assert.Nil(t, got.Quantity)
}

func TestForeignKeysAndRequiredFields(t *testing.T) {
	f := setup(t)
	var b validation.Batch
	ok, err := f.app.Items.ValidateAllRules(context.Background(), &entity.Item{OwnerID: 40, LocationID: 41, Description: "Drill"}, &b)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, []string{"owner_id", "location_id"}, b.Fields())
	for _, fe := range b.Errors() {
		assert.ErrorIs(t, fe, validation.ErrForeignKey)
	}

	ok, err = f.app.Items.ValidateAllRules(context.Background(), &entity.Item{}, &b)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, []string{"owner_id", "location_id", "description"}, b.Fields())
}

func TestDescriptionRules(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	for n, want := range map[int]bool{2: false, 3: true, 50: true, 51: false} {
		var b validation.Batch
		ok, err := f.app.Items.ValidateAllRules(ctx, f.item(strings.Repeat("d", n), nil), &b)
		require.NoError(t, err)
		assert.Equal(t, want, ok, "length %d", n)
	}

	apptest.MustItem(t, f.app, f.owner.ID, f.garage.ID, "Drill")
	err := f.app.Items.Insert(ctx, f.item("Drill", nil))
	assert.ErrorIs(t, err, validation.ErrRepeatedItemName)

	other := apptest.MustUser(t, f.app, "other_user")
	shed := apptest.MustLocation(t, f.app, other.ID, "Shed")
	require.NoError(t, f.app.Items.Insert(ctx, &entity.Item{OwnerID: other.ID, LocationID: shed.ID, Description: "Drill"}))
}

func TestUpdate(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	drill := apptest.MustItem(t, f.app, f.owner.ID, f.garage.ID, "Drill")

	drill.Quantity = entity.QuantityOf(3)
	drill.Location = &entity.Location{ID: 500, Description: "ignored"}
	ok, err := f.app.Items.Update(ctx, drill)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := f.app.Items.GetByID(ctx, drill.ID, entity.None)
	require.NoError(t, err)
	assert.Equal(t, entity.Quantity("3"), *got.Quantity)
	assert.Equal(t, f.garage.ID, got.LocationID)

	drill.Quantity = entity.QuantityOf(-3)
	_, err = f.app.Items.Update(ctx, drill)
	assert.ErrorIs(t, err, validation.ErrInvalidValue)

	missing := f.item("Saw", nil)
	missing.ID = 1234
	ok, err = f.app.Items.Update(ctx, missing)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGetAllOrdering(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	attic := apptest.MustLocation(t, f.app, f.owner.ID, "Attic")
	apptest.MustItem(t, f.app, f.owner.ID, f.garage.ID, "Bucket")
	apptest.MustItem(t, f.app, f.owner.ID, attic.ID, "Skis")
	apptest.MustItem(t, f.app, f.owner.ID, f.garage.ID, "Axe")

	names := func(items []*entity.Item) []string {
		var out []string
		for _, it := range items {
			out = append(out, it.Description)
		}
		return out
	}

	items, err := f.app.Items.GetAll(ctx, entity.None)
	require.NoError(t, err)
	assert.Equal(t, []string{"Axe", "Bucket", "Skis"}, names(items))
	assert.Nil(t, items[0].Location)

	items, err = f.app.Items.GetAll(ctx, entity.Populate{Location: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"Skis", "Axe", "Bucket"}, names(items))
	assert.Equal(t, "Attic", items[0].Location.Description)

	byLoc, err := f.app.Items.GetAllByLocation(ctx, f.garage.ID, entity.None)
	require.NoError(t, err)
	assert.Equal(t, []string{"Bucket", "Axe"}, names(byLoc), "scoped lists keep insertion order")

	byUser, err := f.app.Items.GetAllByUser(ctx, f.owner.ID, entity.Populate{Owner: true})
	require.NoError(t, err)
	require.Len(t, byUser, 3)
	assert.Equal(t, f.owner.ID, byUser[0].Owner.ID)
}

func TestUsageLifecycle(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	drill := apptest.MustItem(t, f.app, f.owner.ID, f.garage.ID, "Drill")

	inUse, err := f.app.Items.InUse(ctx, drill.ID)
	require.NoError(t, err)
	assert.False(t, inUse)

	_, err = f.app.Items.EndUsage(ctx, drill.ID)
	assert.ErrorIs(t, err, validation.ErrItemNotInUse)

	ok, err := f.app.Items.BeginUsage(ctx, drill.ID)
	require.NoError(t, err)
	require.True(t, ok)
	inUse, err = f.app.Items.InUse(ctx, drill.ID)
	require.NoError(t, err)
	assert.True(t, inUse)

	_, err = f.app.Items.BeginUsage(ctx, drill.ID)
	assert.ErrorIs(t, err, validation.ErrItemInUse)

	ok, err = f.app.Items.EndUsage(ctx, drill.ID)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = f.app.Items.BeginUsage(ctx, drill.ID)
	assert.ErrorIs(t, err, validation.ErrRepeatedUsage, "one usage per day")

	f.clock.Advance(24 * time.Hour)
	ok, err = f.app.Items.BeginUsage(ctx, drill.ID)
	require.NoError(t, err)
	require.True(t, ok)

	usages, err := f.app.Items.Usages(ctx, drill.ID)
	require.NoError(t, err)
	require.Len(t, usages, 2)
	assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), usages[0].StartDate)
	require.NotNil(t, usages[0].EndDate)
	assert.Equal(t, usages[0].StartDate, *usages[0].EndDate)
	assert.True(t, usages[1].Open())

	populated, err := f.app.Items.GetByID(ctx, drill.ID, entity.Populate{Usages: true})
	require.NoError(t, err)
	assert.Len(t, populated.Usages, 2)
}

func TestUsageOfUnknownItem(t *testing.T) {
	f := setup(t)
	ok, err := f.app.Items.BeginUsage(context.Background(), 404)
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = f.app.Items.EndUsage(context.Background(), 404)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeleteBlockedByUsage(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	drill := apptest.MustItem(t, f.app, f.owner.ID, f.garage.ID, "Drill")
	saw := apptest.MustItem(t, f.app, f.owner.ID, f.garage.ID, "Saw")

	_, err := f.app.Items.BeginUsage(ctx, drill.ID)
	require.NoError(t, err)

	_, err = f.app.Items.Delete(ctx, drill.ID)
	ex, ok := validation.AsException(err)
	require.True(t, ok)
	require.Len(t, ex.Errors, 1)
	assert.Equal(t, "usage", ex.Errors[0].Field())

	deleted, err := f.app.Items.Delete(ctx, saw.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = f.app.Items.Delete(ctx, saw.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}
