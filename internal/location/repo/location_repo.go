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

// LocationRepo provides data access for the locations table.
type LocationRepo struct {
	db *sqlx.DB
}

func NewLocationRepo(db *sqlx.DB) *LocationRepo { return &LocationRepo{db: db} }

type locationRow struct {
	ID          int64  `db:"id"`
	OwnerID     int64  `db:"owner_id"`
	Description string `db:"description"`
}

func (r locationRow) toEntity() *entity.Location {
	return &entity.Location{ID: r.ID, OwnerID: r.OwnerID, Description: r.Description}
}

const locationColumns = `id, owner_id, description`

// EnsureTable creates the locations table if not exists. Owner references
// are checked by the service, not by the schema.
func (r *LocationRepo) EnsureTable(ctx context.Context) error {
	ddl := `
CREATE TABLE IF NOT EXISTS locations (
  id ` + database.PrimaryKey(r.db) + `,
  owner_id BIGINT NOT NULL,
  description TEXT NOT NULL
)`
	if _, err := r.db.ExecContext(ctx, ddl); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_locations_owner ON locations(owner_id)`)
	return err
}

func (r *LocationRepo) GetByID(ctx context.Context, id int64) (*entity.Location, error) {
	var row locationRow
	q := r.db.Rebind(`SELECT ` + locationColumns + ` FROM locations WHERE id=?`)
	if err := r.db.GetContext(ctx, &row, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.ErrNotFound
		}
		return nil, fmt.Errorf("select location: %w", err)
	}
	return row.toEntity(), nil
}

func (r *LocationRepo) GetAll(ctx context.Context) ([]*entity.Location, error) {
	return r.list(ctx, `SELECT `+locationColumns+` FROM locations ORDER BY id`)
}

// ListByOwner returns the locations owned by a user in insertion order.
func (r *LocationRepo) ListByOwner(ctx context.Context, ownerID int64) ([]*entity.Location, error) {
	return r.list(ctx, `SELECT `+locationColumns+` FROM locations WHERE owner_id=? ORDER BY id`, ownerID)
}

// DescriptionTaken reports whether another location of ownerID already
// uses description. exceptID is skipped so an entity never collides with itself.
func (r *LocationRepo) DescriptionTaken(ctx context.Context, ownerID int64, description string, exceptID int64) (bool, error) {
	var n int
	q := r.db.Rebind(`SELECT COUNT(*) FROM locations WHERE owner_id=? AND description=? AND id<>?`)
	if err := r.db.GetContext(ctx, &n, q, ownerID, description, exceptID); err != nil {
		return false, fmt.Errorf("count locations: %w", err)
	}
	return n > 0, nil
}

func (r *LocationRepo) list(ctx context.Context, q string, args ...any) ([]*entity.Location, error) {
	var rows []locationRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(q), args...); err != nil {
		return nil, fmt.Errorf("select locations: %w", err)
	}
	out := make([]*entity.Location, len(rows))
	for i, row := range rows {
		out[i] = row.toEntity()
	}
	return out, nil
}

func (r *LocationRepo) Insert(ctx context.Context, l *entity.Location) error {
	q := r.db.Rebind(`INSERT INTO locations (owner_id, description) VALUES (?, ?) RETURNING id`)
	if err := r.db.GetContext(ctx, &l.ID, q, l.OwnerID, l.Description); err != nil {
		return fmt.Errorf("insert location: %w", err)
	}
	return nil
}

func (r *LocationRepo) Update(ctx context.Context, l *entity.Location) (bool, error) {
	q := r.db.Rebind(`UPDATE locations SET owner_id=?, description=? WHERE id=?`)
	res, err := r.db.ExecContext(ctx, q, l.OwnerID, l.Description, l.ID)
	if err != nil {
		return false, fmt.Errorf("update location: %w", err)
	}
	return database.Affected(res)
}

func (r *LocationRepo) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM locations WHERE id=?`), id)
	if err != nil {
		return false, fmt.Errorf("delete location: %w", err)
	}
	return database.Affected(res)
}
