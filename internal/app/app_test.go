package app_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovaphlow/pitchfork/service-inventory-go/internal/app"
	"github.com/ovaphlow/pitchfork/service-inventory-go/internal/app/apptest"
	"github.com/ovaphlow/pitchfork/service-inventory-go/internal/entity"
	"github.com/ovaphlow/pitchfork/service-inventory-go/internal/validation"
)

func TestInventoryLifecycle(t *testing.T) {
	ctx := context.Background()
	a := apptest.New(t, app.Options{})

	u := &entity.User{
		Firstname: "Carlos",
		Lastname:  "Pérez",
		Email:     "c@p.com",
		Username:  "carlosperez",
		Password:  "123456",
	}
	require.NoError(t, a.Users.Insert(ctx, u))
	assert.Equal(t, int64(1), u.ID)

	l := &entity.Location{OwnerID: 1, Description: "Garage"}
	require.NoError(t, a.Locations.Insert(ctx, l))
	assert.Equal(t, int64(1), l.ID)

	it := &entity.Item{OwnerID: 1, LocationID: 1, Description: "Drill", Quantity: entity.QuantityOf(2)}
	require.NoError(t, a.Items.Insert(ctx, it))
	assert.Equal(t, int64(1), it.ID)

	_, err := a.Locations.Delete(ctx, 1)
	ex, ok := validation.AsException(err)
	require.True(t, ok)
	require.Len(t, ex.Errors, 1)
	assert.ErrorIs(t, ex.Errors[0], validation.ErrDeleteForeignKey)
	assert.Equal(t, "items", ex.Errors[0].Field())

	for _, del := range []func(context.Context, int64) (bool, error){
		a.Items.Delete, a.Locations.Delete, a.Users.Delete,
	} {
		ok, err := del(ctx, 1)
		require.NoError(t, err)
		assert.True(t, ok)
	}

	_, err = a.Users.GetByID(ctx, 1, entity.None)
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestEnsureSchemaIsIdempotent(t *testing.T) {
	a := apptest.New(t, app.Options{})
	require.NoError(t, a.EnsureSchema(context.Background()))
}
