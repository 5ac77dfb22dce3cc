// Package apptest builds throwaway inventories on in-memory SQLite for tests.
package apptest

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ovaphlow/pitchfork/service-inventory-go/internal/app"
	"github.com/ovaphlow/pitchfork/service-inventory-go/internal/entity"
	"github.com/ovaphlow/pitchfork/service-inventory-go/pkg/database"
)

// New returns an App on a fresh in-memory database with the schema in place.
func New(t *testing.T, opts app.Options) *app.App {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: database.SQLite, DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	a := app.New(db, zaptest.NewLogger(t).Sugar(), opts)
	require.NoError(t, a.EnsureSchema(context.Background()))
	return a
}

// User returns a valid, unsaved user whose unique fields derive from name.
func User(name string) *entity.User {
	return &entity.User{
		Firstname: "Test",
		Lastname:  "User",
		Email:     fmt.Sprintf("%s@example.com", name),
		Username:  name,
		Password:  "secret1",
		Language:  "en",
	}
}

// MustUser inserts User(name).
func MustUser(t *testing.T, a *app.App, name string) *entity.User {
	t.Helper()
	u := User(name)
	require.NoError(t, a.Users.Insert(context.Background(), u))
	return u
}

func MustLocation(t *testing.T, a *app.App, ownerID int64, description string) *entity.Location {
	t.Helper()
	l := &entity.Location{OwnerID: ownerID, Description: description}
	require.NoError(t, a.Locations.Insert(context.Background(), l))
	return l
}

func MustItem(t *testing.T, a *app.App, ownerID, locationID int64, description string) *entity.Item {
	t.Helper()
	it := &entity.Item{OwnerID: ownerID, LocationID: locationID, Description: description}
	require.NoError(t, a.Items.Insert(context.Background(), it))
	return it
}
