package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

// MovieHandler serves /movies.  Reads are public, writes are ADMIN only.
type MovieHandler struct {
	catalog Catalog
}

func NewMovieHandler(catalog Catalog) *MovieHandler {
	return &MovieHandler{catalog: catalog}
}

type movieReq struct {
	Title       string     `json:"title" validate:"required,max=255"`
	Description *string    `json:"description"`
	Genre       string     `json:"genre" validate:"max=100"`
	Duration    int        `json:"duration" validate:"gte=0"`
	ReleaseDate *time.Time `json:"release_date"`
	PosterURL   string     `json:"poster_url" validate:"omitempty,url"`
	Price       float64    `json:"price" validate:"gte=0"`
}

func (h *MovieHandler) List(c echo.Context) error {
	skip, limit, err := pagination(c)
	if err != nil {
		return err
	}
	out, err := h.catalog.ListMovies(c.Request().Context(), skip, limit)
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *MovieHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	m, err := h.catalog.GetMovie(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

func (h *MovieHandler) Create(c echo.Context) error {
	var req movieReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	m := &model.Movie{
		Title:       req.Title,
		Description: req.Description,
		Genre:       req.Genre,
		Duration:    req.Duration,
		ReleaseDate: req.ReleaseDate,
		PosterURL:   req.PosterURL,
		Price:       req.Price,
	}
	if err := h.catalog.CreateMovie(c.Request().Context(), m); err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *MovieHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req movieReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	m, err := h.catalog.UpdateMovie(c.Request().Context(), id, model.MovieUpdate{
		Title:       req.Title,
		Description: req.Description,
		Genre:       req.Genre,
		Duration:    req.Duration,
		ReleaseDate: req.ReleaseDate,
		PosterURL:   req.PosterURL,
		Price:       req.Price,
	})
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

func (h *MovieHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.catalog.DeleteMovie(c.Request().Context(), id); err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Movie deleted successfully"})
}
