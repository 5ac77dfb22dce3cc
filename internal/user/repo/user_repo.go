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

// UserRepo provides data access for the users table using sqlx.
type UserRepo struct {
	db *sqlx.DB
}

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{db: db} }

type userRow struct {
	ID        int64  `db:"id"`
	Firstname string `db:"firstname"`
	Lastname  string `db:"lastname"`
	Email     string `db:"email"`
	Username  string `db:"username"`
	Password  string `db:"password"`
	Language  string `db:"language"`
}

func (r userRow) toEntity() *entity.User {
	return &entity.User{
		ID:        r.ID,
		Firstname: r.Firstname,
		Lastname:  r.Lastname,
		Email:     r.Email,
		Username:  r.Username,
		Password:  r.Password,
		Language:  r.Language,
	}
}

const userColumns = `id, firstname, lastname, email, username, password, language`

// EnsureTable creates the users table if not exists (idempotent).
func (r *UserRepo) EnsureTable(ctx context.Context) error {
	ddl := `
CREATE TABLE IF NOT EXISTS users (
  id ` + database.PrimaryKey(r.db) + `,
  firstname TEXT NOT NULL,
  lastname TEXT NOT NULL,
  email TEXT NOT NULL UNIQUE,
  username TEXT NOT NULL UNIQUE,
  password TEXT NOT NULL,
  language TEXT NOT NULL DEFAULT ''
)`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

// GetByID fetches a user or entity.ErrNotFound.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id=?`, id)
}

// GetByEmail fetches a user matched by email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email=?`, email)
}

// GetByUsername fetches a user matched by username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE username=?`, username)
}

func (r *UserRepo) getOne(ctx context.Context, q string, arg any) (*entity.User, error) {
	var row userRow
	if err := r.db.GetContext(ctx, &row, r.db.Rebind(q), arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.ErrNotFound
		}
		return nil, fmt.Errorf("select user: %w", err)
	}
	return row.toEntity(), nil
}

// GetAll returns every user in insertion order.
func (r *UserRepo) GetAll(ctx context.Context) ([]*entity.User, error) {
	var rows []userRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT `+userColumns+` FROM users ORDER BY id`); err != nil {
		return nil, fmt.Errorf("select users: %w", err)
	}
	out := make([]*entity.User, len(rows))
	for i, row := range rows {
		out[i] = row.toEntity()
	}
	return out, nil
}

// Insert stores u and assigns the generated id onto it.
func (r *UserRepo) Insert(ctx context.Context, u *entity.User) error {
	const q = `INSERT INTO users (firstname, lastname, email, username, password, language)
		VALUES (?, ?, ?, ?, ?, ?) RETURNING id`
	var id int64
	if err := r.db.GetContext(ctx, &id, r.db.Rebind(q),
		u.Firstname, u.Lastname, u.Email, u.Username, u.Password, u.Language); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	u.ID = id
	return nil
}

// Update writes the scalar fields of u. It reports false when no row has u.ID.
func (r *UserRepo) Update(ctx context.Context, u *entity.User) (bool, error) {
	const q = `UPDATE users SET firstname=?, lastname=?, email=?, username=?, password=?, language=? WHERE id=?`
	res, err := r.db.ExecContext(ctx, r.db.Rebind(q),
		u.Firstname, u.Lastname, u.Email, u.Username, u.Password, u.Language, u.ID)
	if err != nil {
		return false, fmt.Errorf("update user: %w", err)
	}
	return database.Affected(res)
}

// Delete removes the user row; false when nothing was removed.
func (r *UserRepo) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM users WHERE id=?`), id)
	if err != nil {
		return false, fmt.Errorf("delete user: %w", err)
	}
	return database.Affected(res)
}
