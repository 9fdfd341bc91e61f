package server

import (
	"net/http"
	"strings"

	"github.com/UnknownOlympus/dialysphere/internal/models"
	"github.com/gin-gonic/gin"
)

type selectionRequest struct {
	PlaceID     string   `json:"place_id"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	PostalCode  string   `json:"postal_code"`
	Description string   `json:"description"`
}

type selectionResponse struct {
	Selection  models.Selection `json:"selection"`
	Generation uint64           `json:"generation"`
}

type facilitiesResponse struct {
	PostalCode string   `json:"postal_code"`
	Addresses  []string `json:"addresses"`
}

func (s *Server) autocomplete(ctx *gin.Context) {
	if s.search == nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "places search is not configured"})
		return
	}

	input := strings.TrimSpace(ctx.Query("input"))
	if input == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "input query parameter is required"})
		return
	}

	predictions, err := s.search.Autocomplete(ctx.Request.Context(), input)
	if err != nil {
		s.log.ErrorContext(ctx.Request.Context(), "Autocomplete failed", "input", input, "error", err)
		ctx.JSON(http.StatusBadGateway, gin.H{"error": "places search failed"})
		return
	}

	ctx.JSON(http.StatusOK, predictions)
}

func (s *Server) selectLocation(ctx *gin.Context) {
	var req selectionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	var sel models.Selection
	switch {
	case req.PlaceID != "":
		if s.search == nil {
			ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "places search is not configured"})
			return
		}

		resolved, err := s.search.Resolve(ctx.Request.Context(), req.PlaceID)
		if err != nil {
			s.log.ErrorContext(ctx.Request.Context(), "Place resolution failed", "place_id", req.PlaceID, "error", err)
			ctx.JSON(http.StatusBadGateway, gin.H{"error": "place resolution failed"})
			return
		}
		sel = resolved
	case req.Latitude != nil && req.Longitude != nil:
		if *req.Latitude < -90 || *req.Latitude > 90 || *req.Longitude < -180 || *req.Longitude > 180 {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "coordinates are out of range"})
			return
		}
		sel = models.Selection{
			Latitude:    *req.Latitude,
			Longitude:   *req.Longitude,
			PostalCode:  strings.TrimSpace(req.PostalCode),
			Description: req.Description,
		}
	default:
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "place_id or latitude and longitude are required"})
		return
	}

	stored, gen := s.session.Select(sel)

	ctx.JSON(http.StatusAccepted, selectionResponse{Selection: stored, Generation: gen})
}

func (s *Server) mapView(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, s.session.View())
}

func (s *Server) facilities(ctx *gin.Context) {
	postalCode := strings.TrimSpace(ctx.Query("postal_code"))

	ctx.JSON(http.StatusOK, facilitiesResponse{
		PostalCode: postalCode,
		Addresses:  s.matcher.Match(postalCode),
	})
}
