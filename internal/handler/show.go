package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/service"
)

// ShowHandler serves /shows.  Writes require an authenticated user.
type ShowHandler struct {
	catalog Catalog
}

func NewShowHandler(catalog Catalog) *ShowHandler {
	return &ShowHandler{catalog: catalog}
}

type createShowReq struct {
	MovieID        uint64    `json:"movie_id" validate:"required"`
	TheaterID      uint64    `json:"theater_id" validate:"required"`
	ShowTime       time.Time `json:"show_time" validate:"required"`
	AvailableSeats int       `json:"available_seats" validate:"gte=0"`
	Price          float64   `json:"price" validate:"gte=0"`
}

type updateShowReq struct {
	MovieID   uint64    `json:"movie_id" validate:"required"`
	TheaterID uint64    `json:"theater_id" validate:"required"`
	ShowTime  time.Time `json:"show_time" validate:"required"`
	Price     float64   `json:"price" validate:"gte=0"`
}

func (h *ShowHandler) List(c echo.Context) error {
	skip, limit, err := pagination(c)
	if err != nil {
		return err
	}
	out, err := h.catalog.ListShows(c.Request().Context(), skip, limit)
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ShowHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	s, err := h.catalog.GetShow(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, s)
}

// ListByMovie handles GET /shows/movie/:id.
func (h *ShowHandler) ListByMovie(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	out, err := h.catalog.ListShowsByMovie(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// ListByTheater handles GET /shows/theater/:id.
func (h *ShowHandler) ListByTheater(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	out, err := h.catalog.ListShowsByTheater(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ShowHandler) Create(c echo.Context) error {
	var req createShowReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	s, err := h.catalog.CreateShow(c.Request().Context(), model.NewShow{
		MovieID:        req.MovieID,
		TheaterID:      req.TheaterID,
		ShowTime:       req.ShowTime.UTC(),
		AvailableSeats: req.AvailableSeats,
		Price:          req.Price,
	})
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusCreated, s)
}

func (h *ShowHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req updateShowReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	s, err := h.catalog.UpdateShow(c.Request().Context(), id, model.ShowUpdate{
		MovieID:   req.MovieID,
		TheaterID: req.TheaterID,
		ShowTime:  req.ShowTime.UTC(),
		Price:     req.Price,
	})
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, s)
}

// Delete answers 409 when the show still has bookings.
func (h *ShowHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.catalog.DeleteShow(c.Request().Context(), id); err != nil {
		if errors.Is(err, service.ErrShowHasBookings) {
			return echo.NewHTTPError(http.StatusConflict, clientMessage(err))
		}
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Show deleted successfully"})
}
