package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

// TheaterRepo manages the theaters catalog.
type TheaterRepo struct {
	db *sqlx.DB
}

func NewTheaterRepo(db *sqlx.DB) *TheaterRepo { return &TheaterRepo{db: db} }

func (r *TheaterRepo) List(ctx context.Context, skip, limit int) ([]model.Theater, error) {
	out := []model.Theater{}
	err := r.db.SelectContext(ctx, &out, `SELECT id, name, location, total_seats FROM theaters ORDER BY id LIMIT ? OFFSET ?`, limit, skip)
	return out, mapError(err)
}

func (r *TheaterRepo) GetByID(ctx context.Context, id uint64) (*model.Theater, error) {
	var t model.Theater
	if err := r.db.GetContext(ctx, &t, `SELECT id, name, location, total_seats FROM theaters WHERE id = ?`, id); err != nil {
		return nil, mapError(err)
	}
	return &t, nil
}

func (r *TheaterRepo) Create(ctx context.Context, t *model.Theater) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO theaters (name, location, total_seats) VALUES (?, ?, ?)`,
		t.Name, t.Location, t.TotalSeats)
	if err != nil {
		return mapError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return nil
}

func (r *TheaterRepo) Update(ctx context.Context, id uint64, u model.TheaterUpdate) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE theaters SET name = ?, location = ?, total_seats = ? WHERE id = ?`,
		u.Name, u.Location, u.TotalSeats, id)
	return mapError(err)
}

// Delete removes a theater; shows referencing it make this ErrConflict.
func (r *TheaterRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM theaters WHERE id = ?`, id)
	if err != nil {
		return mapError(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: theater %d", ErrNotFound, id)
	}
	return nil
}
