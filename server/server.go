// Package server exposes the HTTP surface: live property search, saved
// search management and the guarded sweep trigger.
package server

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"nestwatch/services"
	"nestwatch/storage"
)

type Server struct {
	echo     *echo.Echo
	store    storage.Store
	search   *services.SearchService
	sweep    *services.SweepService
	validate *validator.Validate
	log      zerolog.Logger

	// sweepSecret guards the sweep trigger; an empty value disables
	// the endpoint entirely.
	sweepSecret string
}

func New(store storage.Store, search *services.SearchService, sweep *services.SweepService, sweepSecret string, log zerolog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	s := &Server{
		echo:        e,
		store:       store,
		search:      search,
		sweep:       sweep,
		validate:    validator.New(),
		log:         log,
		sweepSecret: sweepSecret,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	api := s.echo.Group("/api")

	api.GET("/health", s.healthCheck)

	properties := api.Group("/properties")
	properties.GET("/search", s.searchProperties)
	properties.POST("", s.createProperty)
	properties.GET("/:id", s.getProperty)

	searches := api.Group("/searches")
	searches.POST("", s.createSavedSearch)
	searches.GET("", s.listSavedSearches)
	searches.POST("/:id/ack", s.acknowledgeSavedSearch)
	searches.DELETE("/:id", s.deleteSavedSearch)

	api.POST("/alerts/sweep", s.triggerSweep)
}

func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Handler exposes the root handler for tests.
func (s *Server) Handler() *echo.Echo {
	return s.echo
}
