package model

import "time"

// Movie is a catalog entry for a film.
type Movie struct {
	ID          uint64     `db:"id" json:"id"`
	Title       string     `db:"title" json:"title"`
	Description *string    `db:"description" json:"description"`
	Genre       string     `db:"genre" json:"genre"`
	Duration    int        `db:"duration" json:"duration"` // minutes
	ReleaseDate *time.Time `db:"release_date" json:"release_date"`
	PosterURL   string     `db:"poster_url" json:"poster_url"`
	Price       float64    `db:"price" json:"price"`
}

// MovieUpdate lists the mutable movie columns.
type MovieUpdate struct {
	Title       string
	Description *string
	Genre       string
	Duration    int
	ReleaseDate *time.Time
	PosterURL   string
	Price       float64
}
