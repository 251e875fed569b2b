package http

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/farmstand/backend/internal/domain"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// sessionHeader carries the client session when the body does not
const sessionHeader = "X-Session-ID"

// maxListingLimit caps the limit a browse request may ask for
const maxListingLimit = 100

// statusClientClosedRequest is the nginx convention for a caller that went away
const statusClientClosedRequest = 499

// RecipeUsecase generates and parses recipes
type RecipeUsecase interface {
	Generate(ctx context.Context, query string) (*domain.ParsedRecipe, error)
	Parse(raw string) *domain.ParsedRecipe
}

// EstimateUsecase estimates basket prices from local sellers
type EstimateUsecase interface {
	Estimate(ctx context.Context, request *domain.EstimateRequest) (*domain.EstimateResult, error)
}

// ListingUsecase serves the marketplace browse view
type ListingUsecase interface {
	Browse(ctx context.Context, query domain.ProduceQuery, filter string) (*domain.ProduceQueryResponse, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	recipes   RecipeUsecase
	estimates EstimateUsecase
	listings  ListingUsecase
	logger    *zap.Logger
}

// NewHandler creates a new HTTP handler. Any service may be nil, in which
// case its endpoints answer 503.
func NewHandler(recipes RecipeUsecase, estimates EstimateUsecase, listings ListingUsecase, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		recipes:   recipes,
		estimates: estimates,
		listings:  listings,
		logger:    logger,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "farmstand-backend",
		"version": "1.0.0",
	})
}

// GenerateRecipe handles recipe generation requests
func (h *Handler) GenerateRecipe(c *gin.Context) {
	if h.recipes == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "recipe service not configured"})
		return
	}

	var req domain.RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: query is required"})
		return
	}

	recipe, err := h.recipes.Generate(c.Request.Context(), req.Query)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, recipe)
}

// ParseRecipe parses a recipe response the client already holds
func (h *Handler) ParseRecipe(c *gin.Context) {
	if h.recipes == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "recipe service not configured"})
		return
	}

	var req domain.ParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: response is required"})
		return
	}

	c.JSON(http.StatusOK, h.recipes.Parse(*req.Response))
}

// EstimatePrices handles basket price estimate requests
func (h *Handler) EstimatePrices(c *gin.Context) {
	if h.estimates == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "estimate service not configured"})
		return
	}

	var req domain.EstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.SessionID == "" {
		req.SessionID = c.GetHeader(sessionHeader)
	}

	result, err := h.estimates.Estimate(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// BrowseListings handles marketplace listing queries
func (h *Handler) BrowseListings(c *gin.Context) {
	if h.listings == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "listing service not configured"})
		return
	}

	query := domain.ProduceQuery{
		Produce: strings.TrimSpace(c.Query("produce")),
		Zip:     strings.TrimSpace(c.Query("zip")),
	}

	var ok bool
	if query.Lat, ok = parseOptionalFloat(c.Query("lat")); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat must be a number"})
		return
	}
	if query.Lon, ok = parseOptionalFloat(c.Query("lon")); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lon must be a number"})
		return
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > maxListingLimit {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 100"})
			return
		}
		query.Limit = limit
	}
	if query.Zip == "" && (query.Lat == nil || query.Lon == nil) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "zip or lat and lon are required"})
		return
	}

	resp, err := h.listings.Browse(c.Request.Context(), query, c.Query("filter"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// respondError maps domain errors to HTTP responses
func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrSearchSuperseded):
		c.JSON(http.StatusConflict, gin.H{"error": "Search superseded by a newer request"})
	case errors.Is(err, domain.ErrProduceAPIFailure):
		h.logger.Warn("produce service failure", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Produce service temporarily unavailable"})
	case errors.Is(err, domain.ErrRecipeGenerationFailure):
		h.logger.Warn("recipe generation failure", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Recipe generation temporarily unavailable"})
	case errors.Is(err, domain.ErrServiceUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "Request timed out"})
	case errors.Is(err, context.Canceled):
		h.logger.Debug("client cancelled request", zap.String("path", c.FullPath()))
		c.AbortWithStatus(statusClientClosedRequest)
	default:
		h.logger.Error("unhandled error", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// parseOptionalFloat returns nil for an empty value and false when the
// value is not a finite number
func parseOptionalFloat(raw string) (*float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, true
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, false
	}
	return &f, true
}
