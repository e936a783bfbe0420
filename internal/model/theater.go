package model

// Theater is a venue where shows are screened.  TotalSeats is the
// default capacity used for new shows that do not state their own.
type Theater struct {
	ID         uint64 `db:"id" json:"id"`                   // theaters.id
	Name       string `db:"name" json:"name"`               // theaters.name
	Location   string `db:"location" json:"location"`       // theaters.location
	TotalSeats int    `db:"total_seats" json:"total_seats"` // theaters.total_seats
}

// TheaterUpdate lists the mutable theater columns.
type TheaterUpdate struct {
	Name       string
	Location   string
	TotalSeats int
}
