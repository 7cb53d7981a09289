package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"teardown-leads/internal/domain"
	"teardown-leads/internal/repository"
)

const (
	defaultLookbackDays = 7
	maxLookbackDays     = 365
	highValueScore      = 70
	excellentROIScore   = 75
)

// ListingScorer es la parte del pipeline que usa el API para puntuar y guardar.
type ListingScorer interface {
	ValidateListing(l domain.Listing) error
	ScoreAndPersist(ctx context.Context, listings []domain.Listing, scanRunID string) ([]domain.Opportunity, int, int, error)
}

// ListingHandler agrupa los endpoints sobre datos persistidos.
type ListingHandler struct {
	scorer          ListingScorer
	listings        repository.ListingRepository
	classifications repository.ClassificationRepository
	runs            repository.ScanRunRepository
	logger          *zap.Logger
	now             func() time.Time
}

func NewListingHandler(
	scorer ListingScorer,
	listings repository.ListingRepository,
	classifications repository.ClassificationRepository,
	runs repository.ScanRunRepository,
	logger *zap.Logger,
) *ListingHandler {
	return &ListingHandler{
		scorer:          scorer,
		listings:        listings,
		classifications: classifications,
		runs:            runs,
		logger:          logger,
		now:             time.Now,
	}
}

// ScoreListings maneja POST /listings/score.
func (h *ListingHandler) ScoreListings(c *gin.Context) {
	var req struct {
		Listings []domain.Listing `json:"listings" binding:"required,min=1,max=200"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid listings request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	for i, l := range req.Listings {
		if err := h.scorer.ValidateListing(l); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid listing", "index": i, "detail": err.Error()})
			return
		}
	}

	opps, created, failures, err := h.scorer.ScoreAndPersist(c.Request.Context(), req.Listings, "")
	if err != nil {
		h.logger.Error("score listings failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not score listings"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"opportunities":  opps,
		"new_listings":   created,
		"persist_errors": failures,
	})
}

// ListingHistory maneja GET /listings/:id/history.
func (h *ListingHandler) ListingHistory(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	// los ids son uuid; cualquier otra cosa no puede existir en la base
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "listing not found"})
		return
	}

	listing, err := h.listings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrListingNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "listing not found"})
			return
		}
		h.logger.Error("get listing failed", zap.String("listing_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load listing"})
		return
	}

	classifications, err := h.classifications.ListByListing(ctx, id, 50)
	if err != nil {
		h.logger.Error("list classifications failed", zap.String("listing_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load classifications"})
		return
	}
	prices, err := h.listings.PriceHistory(ctx, id)
	if err != nil {
		h.logger.Error("price history failed", zap.String("listing_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load price history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"listing":         listing,
		"classifications": nonNil(classifications),
		"price_history":   nonNil(prices),
	})
}

// RecentOpportunities maneja GET /opportunities?days=&min_score=&limit=.
func (h *ListingHandler) RecentOpportunities(c *gin.Context) {
	days, ok := intQuery(c, "days", defaultLookbackDays, 1, maxLookbackDays)
	if !ok {
		return
	}
	limit, ok := intQuery(c, "limit", 100, 1, 500)
	if !ok {
		return
	}
	minScore := 50.0
	if raw := c.Query("min_score"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 || v > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid min_score"})
			return
		}
		minScore = v
	}

	since := h.now().UTC().AddDate(0, 0, -days)
	opps, err := h.classifications.Recent(c.Request.Context(), since, minScore, limit)
	if err != nil {
		h.logger.Error("recent opportunities failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load opportunities"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"opportunities": nonNil(opps), "days": days})
}

// Stats maneja GET /stats?days=.
func (h *ListingHandler) Stats(c *gin.Context) {
	days, ok := intQuery(c, "days", defaultLookbackDays, 1, maxLookbackDays)
	if !ok {
		return
	}
	since := h.now().UTC().AddDate(0, 0, -days)
	stats, err := h.runs.Stats(c.Request.Context(), since, highValueScore, excellentROIScore)
	if err != nil {
		h.logger.Error("stats failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load stats"})
		return
	}
	stats.Days = days
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

// intQuery responde 400 y devuelve false si el parametro no es un entero en rango.
func intQuery(c *gin.Context, name string, def, lo, hi int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < lo || v > hi {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return v, true
}

func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
