package export

import (
	"encoding/json"
	"io"

	"teardown-leads/internal/domain"
	"teardown-leads/internal/scoring"
)

// Colores por tier para el mapa.
var tierColors = map[string]string{
	"excellent": "#d62728",
	"good":      "#ff7f0e",
	"fair":      "#ffdd00",
	"low":       "#2ca02c",
}

type featureCollection struct {
	Type     string    `json:"type"`
	Features []feature `json:"features"`
}

type feature struct {
	Type       string          `json:"type"`
	Geometry   pointGeometry   `json:"geometry"`
	Properties featureProperty `json:"properties"`
}

type pointGeometry struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

type featureProperty struct {
	Address          string        `json:"address"`
	Price            *float64      `json:"price"`
	LotSize          *float64      `json:"lot_size"`
	YearBuilt        *int          `json:"year_built"`
	Label            scoring.Label `json:"label"`
	DevelopmentScore float64       `json:"development_score"`
	Tier             string        `json:"tier"`
	Color            string        `json:"marker_color"`
	Explanation      string        `json:"explanation,omitempty"`
	ROIPercentage    *float64      `json:"roi_percentage"`
	ROIScore         *float64      `json:"roi_score"`
	URL              string        `json:"url,omitempty"`
}

// WriteGeoJSON escribe un FeatureCollection con los listings geocodificados.
// Devuelve cuantos features se escribieron.
func WriteGeoJSON(w io.Writer, opps []domain.Opportunity) (int, error) {
	fc := featureCollection{Type: "FeatureCollection", Features: []feature{}}
	for _, o := range opps {
		l := o.Listing
		if !l.HasLocation() {
			continue
		}
		tier := o.Tier
		if tier == "" {
			tier = scoring.ScoreTier(o.DevelopmentScore)
		}
		props := featureProperty{
			Address:          l.Address,
			Price:            l.PurchasePrice(),
			LotSize:          l.LotSize,
			YearBuilt:        l.YearBuilt,
			Label:            o.Classification.Label,
			DevelopmentScore: o.DevelopmentScore,
			Tier:             tier,
			Color:            tierColors[tier],
			Explanation:      o.Classification.Explanation,
			URL:              l.URL,
		}
		if o.ROI != nil && o.ROI.BuildableSqft > 0 {
			pct, score := o.ROI.ROIPercentage, o.ROI.ROIScore
			props.ROIPercentage = &pct
			props.ROIScore = &score
		}
		fc.Features = append(fc.Features, feature{
			Type:       "Feature",
			Geometry:   pointGeometry{Type: "Point", Coordinates: [2]float64{*l.Longitude, *l.Latitude}},
			Properties: props,
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return len(fc.Features), enc.Encode(fc)
}
