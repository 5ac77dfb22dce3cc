package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-inventory-go/internal/entity"
	"github.com/ovaphlow/pitchfork/service-inventory-go/pkg/database"
)

// UsageRepo provides data access for the usages table. Dates are stored
// as YYYY-MM-DD text so both dialects compare them the same way.
type UsageRepo struct {
	db *sqlx.DB
}

func NewUsageRepo(db *sqlx.DB) *UsageRepo { return &UsageRepo{db: db} }

type usageRow struct {
	ID        int64          `db:"id"`
	ItemID    int64          `db:"item_id"`
	StartDate string         `db:"start_date"`
	EndDate   sql.NullString `db:"end_date"`
}

func (r usageRow) toEntity() (*entity.Usage, error) {
	start, err := time.Parse(entity.DateLayout, r.StartDate)
	if err != nil {
		return nil, fmt.Errorf("usage %d start_date: %w", r.ID, err)
	}
	u := &entity.Usage{ID: r.ID, ItemID: r.ItemID, StartDate: start}
	if r.EndDate.Valid {
		end, err := time.Parse(entity.DateLayout, r.EndDate.String)
		if err != nil {
			return nil, fmt.Errorf("usage %d end_date: %w", r.ID, err)
		}
		u.EndDate = &end
	}
	return u, nil
}

func endDateArg(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(entity.DateLayout), Valid: true}
}

const usageColumns = `id, item_id, start_date, end_date`

// EnsureTable creates the usages table; one usage per item and start date.
func (r *UsageRepo) EnsureTable(ctx context.Context) error {
	ddl := `
CREATE TABLE IF NOT EXISTS usages (
  id ` + database.PrimaryKey(r.db) + `,
  item_id BIGINT NOT NULL,
  start_date TEXT NOT NULL,
  end_date TEXT,
  UNIQUE (item_id, start_date)
)`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

// ListByItem returns the usages of an item ordered by start date.
func (r *UsageRepo) ListByItem(ctx context.Context, itemID int64) ([]*entity.Usage, error) {
	var rows []usageRow
	q := r.db.Rebind(`SELECT ` + usageColumns + ` FROM usages WHERE item_id=? ORDER BY start_date, id`)
	if err := r.db.SelectContext(ctx, &rows, q, itemID); err != nil {
		return nil, fmt.Errorf("select usages: %w", err)
	}
	out := make([]*entity.Usage, 0, len(rows))
	for _, row := range rows {
		u, err := row.toEntity()
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, nil
}

// Latest returns the usage with the most recent start date, or entity.ErrNotFound.
func (r *UsageRepo) Latest(ctx context.Context, itemID int64) (*entity.Usage, error) {
	var row usageRow
	q := r.db.Rebind(`SELECT ` + usageColumns + ` FROM usages WHERE item_id=? ORDER BY start_date DESC, id DESC LIMIT 1`)
	if err := r.db.GetContext(ctx, &row, q, itemID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.ErrNotFound
		}
		return nil, fmt.Errorf("select latest usage: %w", err)
	}
	return row.toEntity()
}

// ExistsOn reports whether the item already has a usage starting on day.
func (r *UsageRepo) ExistsOn(ctx context.Context, itemID int64, day time.Time) (bool, error) {
	var n int
	q := r.db.Rebind(`SELECT COUNT(*) FROM usages WHERE item_id=? AND start_date=?`)
	if err := r.db.GetContext(ctx, &n, q, itemID, day.Format(entity.DateLayout)); err != nil {
		return false, fmt.Errorf("count usages: %w", err)
	}
	return n > 0, nil
}

// CountByItem returns the number of usages recorded for the item.
func (r *UsageRepo) CountByItem(ctx context.Context, itemID int64) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, r.db.Rebind(`SELECT COUNT(*) FROM usages WHERE item_id=?`), itemID); err != nil {
		return 0, fmt.Errorf("count usages: %w", err)
	}
	return n, nil
}

func (r *UsageRepo) Insert(ctx context.Context, u *entity.Usage) error {
	q := r.db.Rebind(`INSERT INTO usages (item_id, start_date, end_date) VALUES (?, ?, ?) RETURNING id`)
	if err := r.db.GetContext(ctx, &u.ID, q, u.ItemID, u.StartDate.Format(entity.DateLayout), endDateArg(u.EndDate)); err != nil {
		return fmt.Errorf("insert usage: %w", err)
	}
	return nil
}

// SetEndDate closes the usage.
func (r *UsageRepo) SetEndDate(ctx context.Context, id int64, end time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE usages SET end_date=? WHERE id=?`), end.Format(entity.DateLayout), id)
	if err != nil {
		return false, fmt.Errorf("update usage: %w", err)
	}
	return database.Affected(res)
}
