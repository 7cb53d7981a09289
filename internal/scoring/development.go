package scoring

import (
	"math"
	"strings"
)

// Label es la etiqueta que asigna el clasificador a un listing.
type Label string

const (
	LabelDevelopment Label = "development"
	LabelPotential   Label = "potential"
	LabelNo          Label = "no"
	LabelUnknown     Label = "unknown"
)

// NormalizeLabel pasa a minusculas y cae en unknown si la etiqueta no se reconoce.
func NormalizeLabel(s string) Label {
	switch l := Label(strings.ToLower(strings.TrimSpace(s))); l {
	case LabelDevelopment, LabelPotential, LabelNo:
		return l
	default:
		return LabelUnknown
	}
}

// Classification es la salida del colaborador de clasificacion.
type Classification struct {
	Label       Label   `json:"label"`
	Confidence  float64 `json:"confidence"`
	Explanation string  `json:"explanation"`
}

// FailedClassification es lo que se usa cuando el clasificador falla.
func FailedClassification(err error) Classification {
	c := Classification{Label: LabelUnknown}
	if err != nil {
		c.Explanation = "Classification error: " + err.Error()
	}
	return c
}

// PropertyMetrics son las metricas derivadas de un listing; nil = no disponible.
type PropertyMetrics struct {
	BuildingAge        *int     `json:"building_age,omitempty"`
	LotToBuildingRatio *float64 `json:"lot_to_building_ratio,omitempty"`
	LandValueRatio     *float64 `json:"land_value_ratio,omitempty"`
	PricePerSqft       *float64 `json:"price_per_sqft,omitempty"`
	LotSize            *float64 `json:"lot_size,omitempty"`
}

// DevelopmentScore combina la clasificacion con bonus por metricas (0-100).
func DevelopmentScore(c Classification, m PropertyMetrics) float64 {
	conf := clamp(c.Confidence, 0, 1)

	score := 0.0
	switch NormalizeLabel(string(c.Label)) {
	case LabelDevelopment:
		score = 50 * conf
	case LabelPotential:
		score = 30 * conf
	}

	if m.BuildingAge != nil {
		switch age := *m.BuildingAge; {
		case age > 70:
			score += 15
		case age > 50:
			score += 10
		case age > 30:
			score += 5
		}
	}
	if v, ok := finite(m.LotToBuildingRatio); ok {
		switch {
		case v > 4:
			score += 15
		case v > 3:
			score += 10
		case v > 2:
			score += 5
		}
	}
	if v, ok := finite(m.LandValueRatio); ok {
		switch {
		case v > 0.7:
			score += 10
		case v > 0.5:
			score += 5
		}
	}
	// Un precio por pie en cero es dato faltante, no una ganga.
	if v, ok := positive(m.PricePerSqft); ok {
		switch {
		case v < 200:
			score += 10
		case v < 300:
			score += 5
		}
	}
	if v, ok := finite(m.LotSize); ok {
		switch {
		case v > 15000:
			score += 10
		case v > 10000:
			score += 5
		}
	}

	return clamp(math.Min(100, round2(score)), 0, 100)
}

// ScoreTier agrupa un development score para mapas y alertas.
func ScoreTier(score float64) string {
	switch {
	case score >= 80:
		return "excellent"
	case score >= 70:
		return "good"
	case score >= 60:
		return "fair"
	default:
		return "low"
	}
}

func finite(v *float64) (float64, bool) {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return 0, false
	}
	return *v, true
}
