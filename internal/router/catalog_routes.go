package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-ticket-booking/internal/handler"
	"github.com/iliyamo/movie-ticket-booking/internal/middleware"
	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

// CatalogDeps bundles the catalog handlers with the middleware they
// share.  Cache and Invalidate come from middleware.NewRedisCache and
// middleware.InvalidateCache; both pass through when Redis is absent.
type CatalogDeps struct {
	Movies     *handler.MovieHandler
	Theaters   *handler.TheaterHandler
	Shows      *handler.ShowHandler
	JWTSecret  string
	Cache      echo.MiddlewareFunc
	Invalidate echo.MiddlewareFunc
}

// RegisterCatalog registers /movies, /theaters and /shows.  Movie and
// theater reads go through the response cache and their writes need the
// ADMIN role.  Show reads are never cached because they carry the live
// seat counter; show writes need any authenticated user.
func RegisterCatalog(e *echo.Echo, d CatalogDeps) {
	if d.Cache == nil {
		d.Cache = passThrough
	}
	if d.Invalidate == nil {
		d.Invalidate = passThrough
	}
	auth := middleware.JWTAuth(d.JWTSecret)
	admin := middleware.RequireRole(model.RoleAdmin)

	movies := e.Group("/movies")
	movies.GET("", d.Movies.List, d.Cache)
	movies.GET("/:id", d.Movies.Get, d.Cache)
	movies.POST("", d.Movies.Create, auth, admin, d.Invalidate)
	movies.PUT("/:id", d.Movies.Update, auth, admin, d.Invalidate)
	movies.DELETE("/:id", d.Movies.Delete, auth, admin, d.Invalidate)

	theaters := e.Group("/theaters")
	theaters.GET("", d.Theaters.List, d.Cache)
	theaters.GET("/:id", d.Theaters.Get, d.Cache)
	theaters.POST("", d.Theaters.Create, auth, admin, d.Invalidate)
	theaters.PUT("/:id", d.Theaters.Update, auth, admin, d.Invalidate)
	theaters.DELETE("/:id", d.Theaters.Delete, auth, admin, d.Invalidate)

	shows := e.Group("/shows")
	shows.GET("", d.Shows.List)
	shows.GET("/:id", d.Shows.Get)
	shows.GET("/movie/:id", d.Shows.ListByMovie)
	shows.GET("/theater/:id", d.Shows.ListByTheater)
	shows.POST("", d.Shows.Create, auth)
	shows.PUT("/:id", d.Shows.Update, auth)
	shows.DELETE("/:id", d.Shows.Delete, auth)
}

func passThrough(next echo.HandlerFunc) echo.HandlerFunc { return next }
