package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/utils"
)

const userColumns = `id, name, email, password_hash, phone, city, role, is_active, created_at, updated_at`

type UserRepo struct{ DB *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{DB: db} }

var ErrEmailExists = fmt.Errorf("%w: email already exists", ErrDuplicate)

// Create hashes password, inserts the user and fills in ID, Email and
// Role on u.
func (r *UserRepo) Create(ctx context.Context, u *model.User, password string, cost int) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.Role == "" {
		u.Role = model.RoleUser
	}
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (name, email, password_hash, phone, city, role) VALUES (?,?,?,?,?,?)",
		u.Name, u.Email, hash, u.Phone, u.City, u.Role)
	if err != nil {
		if err = mapError(err); errors.Is(err, ErrDuplicate) {
			return ErrEmailExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)
	u.PasswordHash = hash
	u.IsActive = true
	return nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var u model.User
	if err := r.DB.GetContext(ctx, &u, "SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email); err != nil {
		return nil, mapError(err)
	}
	return &u, nil
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	var u model.User
	if err := r.DB.GetContext(ctx, &u, "SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id); err != nil {
		return nil, mapError(err)
	}
	return &u, nil
}
