package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"teardown-leads/internal/domain"
	"teardown-leads/internal/scoring"
	"teardown-leads/internal/service"
)

// ScoringHandler expone el calculo sin estado: nada de lo que hace toca la base.
type ScoringHandler struct {
	scorer   *service.OpportunityService
	enricher *service.EnrichmentService
	logger   *zap.Logger
}

func NewScoringHandler(scorer *service.OpportunityService, enricher *service.EnrichmentService, logger *zap.Logger) *ScoringHandler {
	return &ScoringHandler{scorer: scorer, enricher: enricher, logger: logger}
}

type roiRequest struct {
	Address       string   `json:"address"`
	PurchasePrice *float64 `json:"purchase_price"`
	LotSize       *float64 `json:"lot_size"`
	CurrentSqft   *float64 `json:"current_sqft"`
	Zoning        *string  `json:"zoning"`
	Adjustment    *float64 `json:"confidence_adjustment" binding:"omitempty,gte=0"`
}

// EstimateROI maneja POST /roi.
func (h *ScoringHandler) EstimateROI(c *gin.Context) {
	var req roiRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid roi request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	est, err := h.scorer.EstimateROI(scoring.ROIInput{
		Address:       req.Address,
		PurchasePrice: req.PurchasePrice,
		LotSize:       req.LotSize,
		CurrentSqft:   req.CurrentSqft,
		Zoning:        req.Zoning,
		Adjustment:    req.Adjustment,
	})
	if err != nil {
		h.logger.Error("roi estimate failed", zap.String("address", req.Address), zap.Error(err))
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "roi not available"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"roi": est})
}

// ScoreListing maneja POST /score: enriquece, clasifica y puntua un listing suelto.
func (h *ScoringHandler) ScoreListing(c *gin.Context) {
	var listing domain.Listing
	if err := c.ShouldBindJSON(&listing); err != nil {
		h.logger.Warn("invalid score request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	opp := h.scorer.Score(c.Request.Context(), h.enricher.Enrich(listing))
	c.JSON(http.StatusOK, gin.H{"opportunity": opp})
}
