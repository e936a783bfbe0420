package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

// TheaterHandler serves /theaters.  Reads are public, writes are ADMIN
// only.
type TheaterHandler struct {
	catalog Catalog
}

func NewTheaterHandler(catalog Catalog) *TheaterHandler {
	return &TheaterHandler{catalog: catalog}
}

type theaterReq struct {
	Name       string `json:"name" validate:"required,max=255"`
	Location   string `json:"location" validate:"max=255"`
	TotalSeats int    `json:"total_seats" validate:"required,gt=0"`
}

func (h *TheaterHandler) List(c echo.Context) error {
	skip, limit, err := pagination(c)
	if err != nil {
		return err
	}
	out, err := h.catalog.ListTheaters(c.Request().Context(), skip, limit)
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *TheaterHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	t, err := h.catalog.GetTheater(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, t)
}

func (h *TheaterHandler) Create(c echo.Context) error {
	var req theaterReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	t := &model.Theater{Name: req.Name, Location: req.Location, TotalSeats: req.TotalSeats}
	if err := h.catalog.CreateTheater(c.Request().Context(), t); err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusCreated, t)
}

func (h *TheaterHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req theaterReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	t, err := h.catalog.UpdateTheater(c.Request().Context(), id, model.TheaterUpdate{
		Name:       req.Name,
		Location:   req.Location,
		TotalSeats: req.TotalSeats,
	})
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, t)
}

func (h *TheaterHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.catalog.DeleteTheater(c.Request().Context(), id); err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Theater deleted successfully"})
}
