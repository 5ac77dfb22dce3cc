package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-inventory-go/internal/entity"
	"github.com/ovaphlow/pitchfork/service-inventory-go/pkg/database"
)

// ItemRepo provides data access for the items table.
type ItemRepo struct {
	db *sqlx.DB
}

func NewItemRepo(db *sqlx.DB) *ItemRepo { return &ItemRepo{db: db} }

type itemRow struct {
	ID          int64         `db:"id"`
	OwnerID     int64         `db:"owner_id"`
	LocationID  int64         `db:"location_id"`
	Description string        `db:"description"`
	Quantity    sql.NullInt64 `db:"quantity"`
}

func (r itemRow) toEntity() *entity.Item {
	it := &entity.Item{ID: r.ID, OwnerID: r.OwnerID, LocationID: r.LocationID, Description: r.Description}
	if r.Quantity.Valid {
		it.Quantity = entity.QuantityOf(r.Quantity.Int64)
	}
	return it
}

// quantityArg converts a validated quantity to its column value.
func quantityArg(q *entity.Quantity) (sql.NullInt64, error) {
	if q == nil {
		return sql.NullInt64{}, nil
	}
	n, err := q.Int64()
	if err != nil {
		return sql.NullInt64{}, fmt.Errorf("quantity %q: %w", string(*q), err)
	}
	return sql.NullInt64{Int64: n, Valid: true}, nil
}

const itemColumns = `id, owner_id, location_id, description, quantity`

// EnsureTable creates the items table if not exists.
func (r *ItemRepo) EnsureTable(ctx context.Context) error {
	ddl := `
CREATE TABLE IF NOT EXISTS items (
  id ` + database.PrimaryKey(r.db) + `,
  owner_id BIGINT NOT NULL,
  location_id BIGINT NOT NULL,
  description TEXT NOT NULL,
  quantity BIGINT
)`
	if _, err := r.db.ExecContext(ctx, ddl); err != nil {
		return err
	}
	for _, idx := range []string{
		`CREATE INDEX IF NOT EXISTS idx_items_owner ON items(owner_id)`,
		`CREATE INDEX IF NOT EXISTS idx_items_location ON items(location_id)`,
	} {
		if _, err := r.db.ExecContext(ctx, idx); err != nil {
			return err
		}
	}
	return nil
}

func (r *ItemRepo) GetByID(ctx context.Context, id int64) (*entity.Item, error) {
	var row itemRow
	q := r.db.Rebind(`SELECT ` + itemColumns + ` FROM items WHERE id=?`)
	if err := r.db.GetContext(ctx, &row, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.ErrNotFound
		}
		return nil, fmt.Errorf("select item: %w", err)
	}
	return row.toEntity(), nil
}

func (r *ItemRepo) GetAll(ctx context.Context) ([]*entity.Item, error) {
	return r.list(ctx, `SELECT `+itemColumns+` FROM items ORDER BY id`)
}

func (r *ItemRepo) ListByOwner(ctx context.Context, ownerID int64) ([]*entity.Item, error) {
	return r.list(ctx, `SELECT `+itemColumns+` FROM items WHERE owner_id=? ORDER BY id`, ownerID)
}

func (r *ItemRepo) ListByLocation(ctx context.Context, locationID int64) ([]*entity.Item, error) {
	return r.list(ctx, `SELECT `+itemColumns+` FROM items WHERE location_id=? ORDER BY id`, locationID)
}

// DescriptionTaken reports whether another item of ownerID already uses description.
func (r *ItemRepo) DescriptionTaken(ctx context.Context, ownerID int64, description string, exceptID int64) (bool, error) {
	var n int
	q := r.db.Rebind(`SELECT COUNT(*) FROM items WHERE owner_id=? AND description=? AND id<>?`)
	if err := r.db.GetContext(ctx, &n, q, ownerID, description, exceptID); err != nil {
		return false, fmt.Errorf("count items: %w", err)
	}
	return n > 0, nil
}

func (r *ItemRepo) list(ctx context.Context, q string, args ...any) ([]*entity.Item, error) {
	var rows []itemRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(q), args...); err != nil {
		return nil, fmt.Errorf("select items: %w", err)
	}
	out := make([]*entity.Item, len(rows))
	for i, row := range rows {
		out[i] = row.toEntity()
	}
	return out, nil
}

func (r *ItemRepo) Insert(ctx context.Context, it *entity.Item) error {
	qty, err := quantityArg(it.Quantity)
	if err != nil {
		return err
	}
	q := r.db.Rebind(`INSERT INTO items (owner_id, location_id, description, quantity) VALUES (?, ?, ?, ?) RETURNING id`)
	if err := r.db.GetContext(ctx, &it.ID, q, it.OwnerID, it.LocationID, it.Description, qty); err != nil {
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

func (r *ItemRepo) Update(ctx context.Context, it *entity.Item) (bool, error) {
	qty, err := quantityArg(it.Quantity)
	if err != nil {
		return false, err
	}
	q := r.db.Rebind(`UPDATE items SET owner_id=?, location_id=?, description=?, quantity=? WHERE id=?`)
	res, err := r.db.ExecContext(ctx, q, it.OwnerID, it.LocationID, it.Description, qty, it.ID)
	if err != nil {
		return false, fmt.Errorf("update item: %w", err)
	}
	return database.Affected(res)
}

func (r *ItemRepo) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM items WHERE id=?`), id)
	if err != nil {
		return false, fmt.Errorf("delete item: %w", err)
	}
	return database.Affected(res)
}
