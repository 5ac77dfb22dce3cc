package item

import (
	"context"
	"errors"
	"time"

	"github.com/ovaphlow/pitchfork/service-inventory-go/internal/entity"
	"github.com/ovaphlow/pitchfork/service-inventory-go/internal/validation"
)

// today is the current calendar day according to the service clock.
func (s *ItemService) today() time.Time {
	return entity.Day(s.clock.Now())
}

// Usages lists the usage history of an item by start date.
func (s *ItemService) Usages(ctx context.Context, itemID int64) ([]*entity.Usage, error) {
	return s.usages.ListByItem(ctx, itemID)
}

// InUse reports whether the most recent usage of the item is still open.
func (s *ItemService) InUse(ctx context.Context, itemID int64) (bool, error) {
	latest, err := s.usages.Latest(ctx, itemID)
	if errors.Is(err, entity.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return latest.Open(), nil
}

// BeginUsage opens a usage starting today. It returns false for an
// unknown item and a validation error when the item is already in use or
// was already used today.
func (s *ItemService) BeginUsage(ctx context.Context, itemID int64) (bool, error) {
	if _, err := s.repo.GetByID(ctx, itemID); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	var b validation.Batch
	inUse, err := s.InUse(ctx, itemID)
	if err != nil {
		return false, err
	}
	u := entity.Usage{ItemID: itemID, StartDate: s.today()}
	if inUse {
		b.Add(validation.ItemInUse())
	} else {
		used, err := s.usages.ExistsOn(ctx, itemID, u.StartDate)
		if err != nil {
			return false, err
		}
		if used {
			b.Add(validation.RepeatedUsage())
		}
	}
	if !b.OK() {
		s.logger.Debugw("usage rejected", "op", "begin", "item_id", itemID, "fields", b.Fields())
		return false, b.Err()
	}
	if err := s.usages.Insert(ctx, &u); err != nil {
		return false, err
	}
	s.logger.Infow("usage begun", "item_id", itemID, "usage_id", u.ID, "start_date", u.StartDate.Format(entity.DateLayout))
	return true, nil
}

// EndUsage closes the open usage of the item with today's date.
func (s *ItemService) EndUsage(ctx context.Context, itemID int64) (bool, error) {
	if _, err := s.repo.GetByID(ctx, itemID); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	latest, err := s.usages.Latest(ctx, itemID)
	if err != nil && !errors.Is(err, entity.ErrNotFound) {
		return false, err
	}
	if latest == nil || !latest.Open() {
		var b validation.Batch
		b.Add(validation.ItemNotInUse())
		s.logger.Debugw("usage rejected", "op", "end", "item_id", itemID)
		return false, b.Err()
	}
	ok, err := s.usages.SetEndDate(ctx, latest.ID, s.today())
	if err == nil && ok {
		s.logger.Infow("usage ended", "item_id", itemID, "usage_id", latest.ID)
	}
	return ok, err
}
