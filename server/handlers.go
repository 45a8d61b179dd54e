package server

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"nestwatch/filter"
	"nestwatch/models"
	"nestwatch/services"
	"nestwatch/storage"
)

func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// searchProperties runs the live search. The query string is the same
// flat encoding saved searches persist, so both paths share one parser
// and one predicate.
func (s *Server) searchProperties(c echo.Context) error {
	criteria := filter.Parse(c.QueryParams())

	matched, err := s.search.Search(c.Request().Context(), criteria)
	if err != nil {
		s.log.Error().Err(err).Msg("search properties")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "search failed"})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"count":      len(matched),
		"properties": matched,
	})
}

type createPropertyRequest struct {
	Kind        string   `json:"kind" validate:"required,oneof=sale rent"`
	Address     string   `json:"address" validate:"required"`
	City        string   `json:"city"`
	State       string   `json:"state"`
	Price       int64    `json:"price" validate:"gte=0"`
	Beds        int      `json:"beds" validate:"gte=0"`
	Baths       int      `json:"baths" validate:"gte=0"`
	HomeType    string   `json:"home_type"`
	SqFt        int      `json:"sqft" validate:"gte=0"`
	Furnished   bool     `json:"furnished"`
	PowerSupply string   `json:"power_supply"`
	WaterSupply string   `json:"water_supply"`
	Security    []string `json:"security"`
	Description string   `json:"description"`
	AgentID     string   `json:"agent_id"`
}

// createProperty ingests a listing from the agent-facing workflow.
func (s *Server) createProperty(c echo.Context) error {
	var req createPropertyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if err := s.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	p := &models.Property{
		Kind:        models.ListingKind(req.Kind),
		Address:     req.Address,
		City:        req.City,
		State:       req.State,
		Price:       req.Price,
		Beds:        req.Beds,
		Baths:       req.Baths,
		HomeType:    req.HomeType,
		SqFt:        req.SqFt,
		Furnished:   req.Furnished,
		PowerSupply: req.PowerSupply,
		WaterSupply: req.WaterSupply,
		Security:    req.Security,
		Description: req.Description,
		AgentID:     req.AgentID,
	}
	if err := s.store.InsertProperty(c.Request().Context(), p); err != nil {
		s.log.Error().Err(err).Msg("insert property")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to store property"})
	}

	return c.JSON(http.StatusCreated, p)
}

func (s *Server) getProperty(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid property id"})
	}

	p, err := s.store.GetProperty(c.Request().Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "property not found"})
	}
	if err != nil {
		s.log.Error().Err(err).Msg("get property")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to load property"})
	}

	return c.JSON(http.StatusOK, p)
}

type createSavedSearchRequest struct {
	UserID         string `json:"userId" validate:"required"`
	Name           string `json:"name" validate:"required"`
	SearchParams   string `json:"searchParams"`
	AlertFrequency string `json:"alertFrequency" validate:"omitempty,oneof=instant daily weekly never"`
}

// createSavedSearch stores a search. The raw encoding is kept verbatim
// as the source of truth; the description is derived from the parsed
// criteria at save time.
func (s *Server) createSavedSearch(c echo.Context) error {
	var req createSavedSearchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if err := s.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	frequency := models.AlertFrequency(req.AlertFrequency)
	if frequency == "" {
		frequency = models.AlertInstant
	}

	sv := &models.SavedSearch{
		UserID:       req.UserID,
		Name:         req.Name,
		Description:  filter.Describe(filter.ParseQuery(req.SearchParams)),
		SearchParams: req.SearchParams,
		Frequency:    frequency,
	}
	if err := s.store.CreateSavedSearch(c.Request().Context(), sv); err != nil {
		s.log.Error().Err(err).Msg("create saved search")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to store search"})
	}

	return c.JSON(http.StatusCreated, sv)
}

func (s *Server) listSavedSearches(c echo.Context) error {
	userID := c.QueryParam("userId")
	if userID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "userId is required"})
	}

	searches, err := s.store.ListSavedSearchesByUser(c.Request().Context(), userID)
	if err != nil {
		s.log.Error().Err(err).Msg("list saved searches")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to load searches"})
	}
	if searches == nil {
		searches = []models.SavedSearch{}
	}

	return c.JSON(http.StatusOK, searches)
}

// acknowledgeSavedSearch resets the unread match counter after the
// owner has seen their alerts.
func (s *Server) acknowledgeSavedSearch(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid search id"})
	}

	err = s.store.AcknowledgeSavedSearch(c.Request().Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "search not found"})
	}
	if err != nil {
		s.log.Error().Err(err).Msg("acknowledge saved search")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to update search"})
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "acknowledged"})
}

func (s *Server) deleteSavedSearch(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid search id"})
	}

	err = s.store.DeleteSavedSearch(c.Request().Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "search not found"})
	}
	if err != nil {
		s.log.Error().Err(err).Msg("delete saved search")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to delete search"})
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "deleted"})
}

// triggerSweep runs a sweep synchronously. The shared secret is checked
// before any fetch; a missing configured secret disables the endpoint.
func (s *Server) triggerSweep(c echo.Context) error {
	if s.sweepSecret == "" || c.QueryParam("secret") != s.sweepSecret {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	}

	report, err := s.sweep.Run(c.Request().Context())
	if errors.Is(err, services.ErrSweepInProgress) {
		return c.JSON(http.StatusConflict, map[string]string{"error": "sweep already in progress"})
	}
	if err != nil {
		s.log.Error().Err(err).Msg("sweep trigger")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "sweep failed"})
	}

	return c.JSON(http.StatusOK, report)
}
