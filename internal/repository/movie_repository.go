package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

const movieColumns = `id, title, description, genre, duration, release_date, poster_url, price`

// MovieRepo manages the movies catalog.
type MovieRepo struct {
	db *sqlx.DB
}

func NewMovieRepo(db *sqlx.DB) *MovieRepo { return &MovieRepo{db: db} }

// List returns movies ordered by id.
func (r *MovieRepo) List(ctx context.Context, skip, limit int) ([]model.Movie, error) {
	out := []model.Movie{}
	err := r.db.SelectContext(ctx, &out, `SELECT `+movieColumns+` FROM movies ORDER BY id LIMIT ? OFFSET ?`, limit, skip)
	return out, mapError(err)
}

// GetByID returns ErrNotFound when the movie does not exist.
func (r *MovieRepo) GetByID(ctx context.Context, id uint64) (*model.Movie, error) {
	var m model.Movie
	if err := r.db.GetContext(ctx, &m, `SELECT `+movieColumns+` FROM movies WHERE id = ?`, id); err != nil {
		return nil, mapError(err)
	}
	return &m, nil
}

// Create inserts m and assigns the generated ID.
func (r *MovieRepo) Create(ctx context.Context, m *model.Movie) error {
	const q = `INSERT INTO movies (title, description, genre, duration, release_date, poster_url, price)
               VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, m.Title, m.Description, m.Genre, m.Duration, m.ReleaseDate, m.PosterURL, m.Price)
	if err != nil {
		return mapError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	return nil
}

// Update overwrites the columns listed in MovieUpdate.
func (r *MovieRepo) Update(ctx context.Context, id uint64, u model.MovieUpdate) error {
	const q = `UPDATE movies SET title = ?, description = ?, genre = ?, duration = ?, release_date = ?, poster_url = ?, price = ?
               WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q, u.Title, u.Description, u.Genre, u.Duration, u.ReleaseDate, u.PosterURL, u.Price, id)
	return mapError(err)
}

// Delete removes a movie.  A movie still referenced by shows yields
// ErrConflict through the foreign key.
func (r *MovieRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM movies WHERE id = ?`, id)
	if err != nil {
		return mapError(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: movie %d", ErrNotFound, id)
	}
	return nil
}
