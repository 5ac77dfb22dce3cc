package item

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/ovaphlow/pitchfork/service-inventory-go/internal/entity"
	"github.com/ovaphlow/pitchfork/service-inventory-go/internal/validation"
)

// DescriptionLength bounds item descriptions.
var DescriptionLength = validation.Range{Min: 3, Max: 50}

type Repository interface {
	GetByID(ctx context.Context, id int64) (*entity.Item, error)
	GetAll(ctx context.Context) ([]*entity.Item, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*entity.Item, error)
	ListByLocation(ctx context.Context, locationID int64) ([]*entity.Item, error)
	DescriptionTaken(ctx context.Context, ownerID int64, description string, exceptID int64) (bool, error)
	Insert(ctx context.Context, it *entity.Item) error
	Update(ctx context.Context, it *entity.Item) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// UsageRepository stores the checkout history of items.
type UsageRepository interface {
	ListByItem(ctx context.Context, itemID int64) ([]*entity.Usage, error)
	Latest(ctx context.Context, itemID int64) (*entity.Usage, error)
	ExistsOn(ctx context.Context, itemID int64, day time.Time) (bool, error)
	CountByItem(ctx context.Context, itemID int64) (int, error)
	Insert(ctx context.Context, u *entity.Usage) error
	SetEndDate(ctx context.Context, id int64, end time.Time) (bool, error)
}

type UserFinder interface {
	GetByID(ctx context.Context, id int64, p entity.Populate) (*entity.User, error)
}

type LocationFinder interface {
	GetByID(ctx context.Context, id int64, p entity.Populate) (*entity.Location, error)
}

type Options struct {
	Clock     clockwork.Clock
	Collation string
	Logger    *zap.SugaredLogger
}

var itemFields = []validation.Field[*entity.Item]{
	{Name: "owner_id", Required: true, Present: validation.ID(func(it *entity.Item) int64 { return it.OwnerID })},
	{Name: "location_id", Required: true, Present: validation.ID(func(it *entity.Item) int64 { return it.LocationID })},
	{Name: "description", Required: true, Present: validation.Text(func(it *entity.Item) string { return it.Description })},
	{Name: "quantity", Present: func(it *entity.Item) bool { return it.Quantity != nil }},
}

// ItemService validates and persists items and their usages.
type ItemService struct {
	repo      Repository
	usages    UsageRepository
	users     UserFinder
	locations LocationFinder
	clock     clockwork.Clock
	collation language.Tag
	logger    *zap.SugaredLogger
}

func NewItemService(r Repository, usages UsageRepository, users UserFinder, locations LocationFinder, opts Options) *ItemService {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop().Sugar()
	}
	tag, err := language.Parse(opts.Collation)
	if err != nil {
		tag = language.Spanish
	}
	return &ItemService{
		repo:      r,
		usages:    usages,
		users:     users,
		locations: locations,
		clock:     opts.Clock,
		collation: tag,
		logger:    opts.Logger,
	}
}

func (s *ItemService) GetByID(ctx context.Context, id int64, p entity.Populate) (*entity.Item, error) {
	it, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.populate(ctx, it, p); err != nil {
		return nil, err
	}
	return it, nil
}

// GetAll returns every item ordered by location description and
// description when locations are populated, by description otherwise.
func (s *ItemService) GetAll(ctx context.Context, p entity.Populate) ([]*entity.Item, error) {
	items, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.populateAll(ctx, items, p); err != nil {
		return nil, err
	}
	s.order(items, p.Location)
	return items, nil
}

func (s *ItemService) order(items []*entity.Item, byLocation bool) {
	col := collate.New(s.collation)
	sort.SliceStable(items, func(i, j int) bool {
		if byLocation {
			if c := col.CompareString(locationDescription(items[i]), locationDescription(items[j])); c != 0 {
				return c < 0
			}
		}
		return col.CompareString(items[i].Description, items[j].Description) < 0
	})
}

func locationDescription(it *entity.Item) string {
	if it.Location == nil {
		return ""
	}
	return it.Location.Description
}

// GetAllByUser returns the items owned by userID.
func (s *ItemService) GetAllByUser(ctx context.Context, userID int64, p entity.Populate) ([]*entity.Item, error) {
	items, err := s.repo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	return items, s.populateAll(ctx, items, p)
}

// GetAllByLocation returns the items kept at locationID.
func (s *ItemService) GetAllByLocation(ctx context.Context, locationID int64, p entity.Populate) ([]*entity.Item, error) {
	items, err := s.repo.ListByLocation(ctx, locationID)
	if err != nil {
		return nil, err
	}
	return items, s.populateAll(ctx, items, p)
}

func (s *ItemService) populateAll(ctx context.Context, items []*entity.Item, p entity.Populate) error {
	for _, it := range items {
		if err := s.populate(ctx, it, p); err != nil {
			return err
		}
	}
	return nil
}

func (s *ItemService) populate(ctx context.Context, it *entity.Item, p entity.Populate) error {
	if p.Owner {
		owner, err := s.users.GetByID(ctx, it.OwnerID, entity.None)
		if err != nil && !errors.Is(err, entity.ErrNotFound) {
			return fmt.Errorf("populate owner of item %d: %w", it.ID, err)
		}
		it.Owner = owner
	}
	if p.Location {
		loc, err := s.locations.GetByID(ctx, it.LocationID, entity.None)
		if err != nil && !errors.Is(err, entity.ErrNotFound) {
			return fmt.Errorf("populate location of item %d: %w", it.ID, err)
		}
		it.Location = loc
	}
	if p.Usages {
		usages, err := s.usages.ListByItem(ctx, it.ID)
		if err != nil {
			return fmt.Errorf("populate usages of item %d: %w", it.ID, err)
		}
		it.Usages = usages
	}
	return nil
}

// Insert validates it, stores it and assigns the new id onto it.
func (s *ItemService) Insert(ctx context.Context, it *entity.Item) error {
	var b validation.Batch
	ok, err := s.ValidateAllRules(ctx, it, &b)
	if err != nil {
		return err
	}
	if !ok {
		s.logger.Debugw("item rejected", "op", "insert", "fields", b.Fields())
		return b.Err()
	}
	if err := s.repo.Insert(ctx, it); err != nil {
		return err
	}
	s.logger.Infow("item inserted", "id", it.ID, "owner_id", it.OwnerID, "location_id", it.LocationID)
	return nil
}

// Update returns false when no item has it.ID.
func (s *ItemService) Update(ctx context.Context, it *entity.Item) (bool, error) {
	var b validation.Batch
	ok, err := s.ValidateAllRules(ctx, it, &b)
	if err != nil {
		return false, err
	}
	if !ok {
		s.logger.Debugw("item rejected", "op", "update", "id", it.ID, "fields", b.Fields())
		return false, b.Err()
	}
	stored, err := s.repo.GetByID(ctx, it.ID)
	if errors.Is(err, entity.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	it.ApplyTo(stored)
	updated, err := s.repo.Update(ctx, stored)
	if err == nil && updated {
		s.logger.Infow("item updated", "id", it.ID)
	}
	return updated, err
}

// Delete removes the item unless it has recorded usages.
func (s *ItemService) Delete(ctx context.Context, id int64) (bool, error) {
	var b validation.Batch
	ok, err := s.ValidateDeletionRules(ctx, id, &b)
	if err != nil {
		return false, err
	}
	if !ok {
		s.logger.Debugw("item deletion blocked", "id", id, "fields", b.Fields())
		return false, b.Err()
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err == nil && deleted {
		s.logger.Infow("item deleted", "id", id)
	}
	return deleted, err
}

// ValidateAllRules resets b and appends every rule violation of it.
func (s *ItemService) ValidateAllRules(ctx context.Context, it *entity.Item, b *validation.Batch) (bool, error) {
	b.Reset()
	present := validation.Present(itemFields, it)
	validation.RequireFields(b, itemFields, present)

	if present["owner_id"] {
		_, err := s.users.GetByID(ctx, it.OwnerID, entity.None)
		switch {
		case errors.Is(err, entity.ErrNotFound):
			b.Add(validation.ForeignKey("owner_id"))
		case err != nil:
			return false, err
		}
	}
	if present["location_id"] {
		_, err := s.locations.GetByID(ctx, it.LocationID, entity.None)
		switch {
		case errors.Is(err, entity.ErrNotFound):
			b.Add(validation.ForeignKey("location_id"))
		case err != nil:
			return false, err
		}
	}
	if present["description"] && validation.CheckLength(b, "description", it.Description, DescriptionLength) && present["owner_id"] {
		taken, err := s.repo.DescriptionTaken(ctx, it.OwnerID, it.Description, it.ID)
		if err != nil {
			return false, err
		}
		if taken {
			b.Add(validation.RepeatedItemName())
		}
	}
	if present["quantity"] {
		if n, err := it.Quantity.Int64(); err != nil || n < 0 {
			b.Add(validation.InvalidValue("quantity"))
		}
	}
	return b.OK(), nil
}

// ValidateDeletionRules resets b and blocks deletion while the item has usages.
func (s *ItemService) ValidateDeletionRules(ctx context.Context, id int64, b *validation.Batch) (bool, error) {
	b.Reset()
	n, err := s.usages.CountByItem(ctx, id)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return b.Add(validation.DeleteForeignKey("usage")), nil
	}
	return true, nil
}
