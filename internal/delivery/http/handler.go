package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/repairlens/backend/internal/domain"
)

// EngineService is the slice of the engine facade the handlers need.
// Integration tests substitute a stub.
type EngineService interface {
	ResolveVehicle(ctx context.Context, vin string) (*domain.VehicleProfile, error)
	ResolveOrSkip(ctx context.Context, vin string) *domain.VehicleProfile
	SearchPartPrice(ctx context.Context, description string, profile *domain.VehicleProfile) *domain.EngineResult
	SearchLaborTime(ctx context.Context, repairDescription string, profile *domain.VehicleProfile) *domain.EngineResult
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	engine EngineService
}

// NewHandler creates a new HTTP handler
func NewHandler(engine EngineService) *Handler {
	return &Handler{engine: engine}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "repairlens-backend",
		"version": "1.0.0",
	})
}

// ResolveVehicle decodes a VIN into a vehicle profile
func (h *Handler) ResolveVehicle(c *gin.Context) {
	vin := c.Param("vin")

	profile, err := h.engine.ResolveVehicle(c.Request.Context(), vin)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidVIN):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid VIN format"})
		case errors.Is(err, domain.ErrResolutionFailed):
			c.JSON(http.StatusBadGateway, gin.H{"error": "vehicle decode service unavailable"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "vehicle resolution failed"})
		}
		return
	}

	c.JSON(http.StatusOK, profile)
}

// estimateRequest is the body for both estimate endpoints. The VIN is
// optional; when present it is resolved best-effort and a failed decode
// silently downgrades the search instead of failing the request.
type estimateRequest struct {
	Description string `json:"description" binding:"required"`
	VIN         string `json:"vin,omitempty"`
}

// bindEstimateRequest parses the body and writes the 400 response itself on
// failure; callers just return on a non-nil error.
func bindEstimateRequest(c *gin.Context) (*estimateRequest, error) {
	var req estimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("%v: description is required", domain.ErrInvalidRequest)})
		return nil, domain.ErrInvalidRequest
	}
	return &req, nil
}

// SearchPartPrice handles part price estimate requests
func (h *Handler) SearchPartPrice(c *gin.Context) {
	req, err := bindEstimateRequest(c)
	if err != nil {
		return
	}

	ctx := c.Request.Context()
	profile := h.engine.ResolveOrSkip(ctx, req.VIN)
	result := h.engine.SearchPartPrice(ctx, req.Description, profile)

	c.JSON(http.StatusOK, result)
}

// SearchLaborTime handles labor time estimate requests
func (h *Handler) SearchLaborTime(c *gin.Context) {
	req, err := bindEstimateRequest(c)
	if err != nil {
		return
	}

	ctx := c.Request.Context()
	profile := h.engine.ResolveOrSkip(ctx, req.VIN)
	result := h.engine.SearchLaborTime(ctx, req.Description, profile)

	c.JSON(http.StatusOK, result)
}
