// Package app builds the repositories and services of one inventory
// instance around a single database handle.
package app

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-inventory-go/internal/item"
	itemrepo "github.com/ovaphlow/pitchfork/service-inventory-go/internal/item/repo"
	"github.com/ovaphlow/pitchfork/service-inventory-go/internal/location"
	locationrepo "github.com/ovaphlow/pitchfork/service-inventory-go/internal/location/repo"
	"github.com/ovaphlow/pitchfork/service-inventory-go/internal/user"
	userrepo "github.com/ovaphlow/pitchfork/service-inventory-go/internal/user/repo"
	"github.com/ovaphlow/pitchfork/service-inventory-go/internal/validation"
)

type Options struct {
	NameLength      validation.Range
	RequireLanguage bool
	Collation       string
	Hasher          user.PasswordHasher
	Clock           clockwork.Clock
}

type App struct {
	DB     *sqlx.DB
	Logger *zap.SugaredLogger

	Users     *user.UserService
	Locations *location.LocationService
	Items     *item.ItemService

	userRepo     *userrepo.UserRepo
	locationRepo *locationrepo.LocationRepo
	itemRepo     *itemrepo.ItemRepo
	usageRepo    *itemrepo.UsageRepo
}

func New(db *sqlx.DB, logger *zap.SugaredLogger, opts Options) *App {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	a := &App{
		DB:           db,
		Logger:       logger,
		userRepo:     userrepo.NewUserRepo(db),
		locationRepo: locationrepo.NewLocationRepo(db),
		itemRepo:     itemrepo.NewItemRepo(db),
		usageRepo:    itemrepo.NewUsageRepo(db),
	}
	a.Users = user.NewUserService(a.userRepo, a.locationRepo, a.itemRepo, user.Options{
		NameLength:      opts.NameLength,
		RequireLanguage: opts.RequireLanguage,
		Collation:       opts.Collation,
		Hasher:          opts.Hasher,
		Logger:          logger.Named("user"),
	})
	a.Locations = location.NewLocationService(a.locationRepo, a.Users, a.itemRepo, logger.Named("location"))
	a.Items = item.NewItemService(a.itemRepo, a.usageRepo, a.Users, a.Locations, item.Options{
		Clock:     opts.Clock,
		Collation: opts.Collation,
		Logger:    logger.Named("item"),
	})
	return a
}

// EnsureSchema creates every table the services use.
func (a *App) EnsureSchema(ctx context.Context) error {
	steps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"users", a.userRepo.EnsureTable},
		{"locations", a.locationRepo.EnsureTable},
		{"items", a.itemRepo.EnsureTable},
		{"usages", a.usageRepo.EnsureTable},
	}
	for _, s := range steps {
		if err := s.fn(ctx); err != nil {
			return fmt.Errorf("ensure %s table: %w", s.name, err)
		}
	}
	a.Logger.Debugw("schema ensured", "driver", a.DB.DriverName())
	return nil
}
