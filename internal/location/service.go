package location

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-inventory-go/internal/entity"
	"github.com/ovaphlow/pitchfork/service-inventory-go/internal/validation"
)

// DescriptionLength bounds location descriptions.
var DescriptionLength = validation.Range{Min: 3, Max: 50}

type Repository interface {
	GetByID(ctx context.Context, id int64) (*entity.Location, error)
	GetAll(ctx context.Context) ([]*entity.Location, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*entity.Location, error)
	DescriptionTaken(ctx context.Context, ownerID int64, description string, exceptID int64) (bool, error)
	Insert(ctx context.Context, l *entity.Location) error
	Update(ctx context.Context, l *entity.Location) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// UserFinder resolves owners.
type UserFinder interface {
	GetByID(ctx context.Context, id int64, p entity.Populate) (*entity.User, error)
}

// ItemLister finds the items kept at a location.
type ItemLister interface {
	ListByLocation(ctx context.Context, locationID int64) ([]*entity.Item, error)
}

var locationFields = []validation.Field[*entity.Location]{
	{Name: "owner_id", Required: true, Present: validation.ID(func(l *entity.Location) int64 { return l.OwnerID })},
	{Name: "description", Required: true, Present: validation.Text(func(l *entity.Location) string { return l.Description })},
}

// LocationService validates and persists locations.
type LocationService struct {
	repo   Repository
	users  UserFinder
	items  ItemLister
	logger *zap.SugaredLogger
}

func NewLocationService(r Repository, users UserFinder, items ItemLister, logger *zap.SugaredLogger) *LocationService {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &LocationService{repo: r, users: users, items: items, logger: logger}
}

func (s *LocationService) GetByID(ctx context.Context, id int64, p entity.Populate) (*entity.Location, error) {
	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.populate(ctx, l, p); err != nil {
		return nil, err
	}
	return l, nil
}

// GetAll returns every location in insertion order.
func (s *LocationService) GetAll(ctx context.Context, p entity.Populate) ([]*entity.Location, error) {
	locs, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return locs, s.populateAll(ctx, locs, p)
}

// GetAllByUser returns the locations owned by userID.
func (s *LocationService) GetAllByUser(ctx context.Context, userID int64, p entity.Populate) ([]*entity.Location, error) {
	locs, err := s.repo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	return locs, s.populateAll(ctx, locs, p)
}

func (s *LocationService) populateAll(ctx context.Context, locs []*entity.Location, p entity.Populate) error {
	for _, l := range locs {
		if err := s.populate(ctx, l, p); err != nil {
			return err
		}
	}
	return nil
}

func (s *LocationService) populate(ctx context.Context, l *entity.Location, p entity.Populate) error {
	if p.Owner {
		owner, err := s.users.GetByID(ctx, l.OwnerID, entity.None)
		if err != nil && !errors.Is(err, entity.ErrNotFound) {
			return fmt.Errorf("populate owner of location %d: %w", l.ID, err)
		}
		l.Owner = owner
	}
	if p.Items {
		items, err := s.items.ListByLocation(ctx, l.ID)
		if err != nil {
			return fmt.Errorf("populate items of location %d: %w", l.ID, err)
		}
		l.Items = items
	}
	return nil
}

// Insert validates l, stores it and assigns the new id onto l.
func (s *LocationService) Insert(ctx context.Context, l *entity.Location) error {
	var b validation.Batch
	ok, err := s.ValidateAllRules(ctx, l, &b)
	if err != nil {
		return err
	}
	if !ok {
		s.logger.Debugw("location rejected", "op", "insert", "fields", b.Fields())
		return b.Err()
	}
	if err := s.repo.Insert(ctx, l); err != nil {
		return err
	}
	s.logger.Infow("location inserted", "id", l.ID, "owner_id", l.OwnerID)
	return nil
}

// Update returns false when no location has l.ID.
func (s *LocationService) Update(ctx context.Context, l *entity.Location) (bool, error) {
	var b validation.Batch
	ok, err := s.ValidateAllRules(ctx, l, &b)
	if err != nil {
		return false, err
	}
	if !ok {
		s.logger.Debugw("location rejected", "op", "update", "id", l.ID, "fields", b.Fields())
		return false, b.Err()
	}
	stored, err := s.repo.GetByID(ctx, l.ID)
	if errors.Is(err, entity.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	l.ApplyTo(stored)
	updated, err := s.repo.Update(ctx, stored)
	if err == nil && updated {
		s.logger.Infow("location updated", "id", l.ID)
	}
	return updated, err
}

// Delete removes the location unless items are still kept there.
func (s *LocationService) Delete(ctx context.Context, id int64) (bool, error) {
	var b validation.Batch
	ok, err := s.ValidateDeletionRules(ctx, id, &b)
	if err != nil {
		return false, err
	}
	if !ok {
		s.logger.Debugw("location deletion blocked", "id", id, "fields", b.Fields())
		return false, b.Err()
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err == nil && deleted {
		s.logger.Infow("location deleted", "id", id)
	}
	return deleted, err
}

// ValidateAllRules resets b and appends every rule violation of l. A
// missing owner fails validation; the description rules still run.
func (s *LocationService) ValidateAllRules(ctx context.Context, l *entity.Location, b *validation.Batch) (bool, error) {
	b.Reset()
	present := validation.Present(locationFields, l)
	validation.RequireFields(b, locationFields, present)

	if present["owner_id"] {
		if _, err := s.ruleOwnerExists(ctx, l, b); err != nil {
			return false, err
		}
	}
	if present["description"] && validation.CheckLength(b, "description", l.Description, DescriptionLength) && present["owner_id"] {
		taken, err := s.repo.DescriptionTaken(ctx, l.OwnerID, l.Description, l.ID)
		if err != nil {
			return false, err
		}
		if taken {
			b.Add(validation.RepeatedLocationName())
		}
	}
	return b.OK(), nil
}

func (s *LocationService) ruleOwnerExists(ctx context.Context, l *entity.Location, b *validation.Batch) (bool, error) {
	_, err := s.users.GetByID(ctx, l.OwnerID, entity.None)
	if errors.Is(err, entity.ErrNotFound) {
		return b.Add(validation.ForeignKey("owner_id")), nil
	}
	return err == nil, err
}

// ValidateDeletionRules resets b and blocks deletion while any item
// references the location.
func (s *LocationService) ValidateDeletionRules(ctx context.Context, id int64, b *validation.Batch) (bool, error) {
	b.Reset()
	items, err := s.items.ListByLocation(ctx, id)
	if err != nil {
		return false, err
	}
	if len(items) > 0 {
		return b.Add(validation.DeleteForeignKey("items")), nil
	}
	return true, nil
}
