package domain

import (
	"time"

	"teardown-leads/internal/scoring"
)

// ClassificationRecord es una fila del historial de clasificaciones de un listing.
// Las columnas ROI quedan en nil cuando el calculo no estuvo disponible.
type ClassificationRecord struct {
	ID               string        `json:"id"`
	ListingID        string        `json:"listing_id"`
	ScanRunID        string        `json:"scan_run_id,omitempty"`
	Label            scoring.Label `json:"label"`
	Confidence       float64       `json:"confidence"`
	Explanation      string        `json:"explanation"`
	DevelopmentScore float64       `json:"development_score"`
	BuildableSqft    *float64      `json:"buildable_sqft"`
	EstimatedProfit  *float64      `json:"estimated_profit"`
	ROIPercentage    *float64      `json:"roi_percentage"`
	ROIScore         *float64      `json:"roi_score"`
	ROIConfidence    *float64      `json:"roi_confidence"`
	ROIReasoning     string        `json:"roi_reasoning,omitempty"`
	ModelVersion     string        `json:"model_version,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
}

// Opportunity junta un listing con sus dos puntajes. Nunca se fusionan.
type Opportunity struct {
	Listing          Listing                `json:"listing"`
	Classification   scoring.Classification `json:"classification"`
	DevelopmentScore float64                `json:"development_score"`
	Tier             string                 `json:"tier"`
	ROI              *scoring.ROIEstimate   `json:"roi,omitempty"`
	ROIError         string                 `json:"roi_error,omitempty"`
}

// ToRecord aplana la oportunidad en una fila de historial.
func (o Opportunity) ToRecord(id, scanRunID, model string, now time.Time) ClassificationRecord {
	rec := ClassificationRecord{
		ID:               id,
		ListingID:        o.Listing.ID,
		ScanRunID:        scanRunID,
		Label:            o.Classification.Label,
		Confidence:       o.Classification.Confidence,
		Explanation:      o.Classification.Explanation,
		DevelopmentScore: o.DevelopmentScore,
		ModelVersion:     model,
		CreatedAt:        now,
	}
	if o.ROI == nil {
		if o.ROIError != "" {
			rec.ROIReasoning = "ROI calculation failed: " + o.ROIError
		}
		return rec
	}
	roi := *o.ROI
	rec.BuildableSqft = &roi.BuildableSqft
	rec.EstimatedProfit = &roi.NetProfit
	rec.ROIPercentage = &roi.ROIPercentage
	rec.ROIScore = &roi.ROIScore
	rec.ROIConfidence = &roi.Confidence
	rec.ROIReasoning = roi.Reasoning
	return rec
}

// RecentOpportunity es la ultima clasificacion de un listing con sus datos basicos.
type RecentOpportunity struct {
	Listing        Listing              `json:"listing"`
	Classification ClassificationRecord `json:"classification"`
}

// ScanRun registra una corrida del pipeline.
type ScanRun struct {
	ID              string     `json:"id"`
	RunType         string     `json:"run_type"`
	Query           string     `json:"query,omitempty"`
	Location        string     `json:"location,omitempty"`
	Status          string     `json:"status"`
	TotalListings   int        `json:"total_listings"`
	NewListings     int        `json:"new_listings"`
	Opportunities   int        `json:"opportunities"`
	HighValue       int        `json:"high_value"`
	DurationSeconds float64    `json:"duration_seconds"`
	ErrorMessage    string     `json:"error_message,omitempty"`
	StartedAt       time.Time  `json:"started_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
}

const (
	ScanStatusRunning   = "running"
	ScanStatusCompleted = "completed"
	ScanStatusFailed    = "failed"
)

// PricePoint es un cambio de precio observado para un listing.
type PricePoint struct {
	ID            string    `json:"id"`
	ListingID     string    `json:"listing_id"`
	Price         float64   `json:"price"`
	PreviousPrice *float64  `json:"previous_price,omitempty"`
	Change        *float64  `json:"change,omitempty"`
	ChangePercent *float64  `json:"change_percent,omitempty"`
	RecordedAt    time.Time `json:"recorded_at"`
}

// NewPricePoint calcula la variacion contra el precio anterior, si lo hay.
func NewPricePoint(id, listingID string, price float64, previous *float64, at time.Time) PricePoint {
	p := PricePoint{ID: id, ListingID: listingID, Price: price, RecordedAt: at}
	if previous == nil {
		return p
	}
	prev := *previous
	change := price - prev
	p.PreviousPrice = &prev
	p.Change = &change
	if prev != 0 {
		pct := change / prev * 100
		p.ChangePercent = &pct
	}
	return p
}

// Stats resume la actividad de los ultimos Days dias.
type Stats struct {
	Days                int        `json:"lookback_days"`
	TotalListings       int        `json:"total_listings"`
	RecentListings      int        `json:"recent_listings"`
	ScanRuns            int        `json:"recent_runs"`
	AvgRunDuration      *float64   `json:"avg_run_duration"`
	Classifications     int        `json:"classifications"`
	HighValueCount      int        `json:"high_value_opportunities"`
	ExcellentROICount   int        `json:"excellent_roi_count"`
	AvgDevelopmentScore *float64   `json:"average_score"`
	MinDevelopmentScore *float64   `json:"min_score"`
	MaxDevelopmentScore *float64   `json:"max_score"`
	LastScan            *time.Time `json:"last_scan"`
}
