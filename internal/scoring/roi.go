package scoring

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	reasonInvalidPrice = "Invalid purchase price"
	reasonNoBuildable  = "No buildable potential detected"
	reasonOutOfRange   = "Values out of range"
)

// ROIInput describe una propiedad para estimar ROI. Los punteros nil significan "sin dato".
type ROIInput struct {
	Address       string
	PurchasePrice *float64
	LotSize       *float64
	CurrentSqft   *float64
	Zoning        *string
	// Adjustment multiplica la confianza; nil equivale a 1.0.
	Adjustment *float64
}

// ROIEstimate es el resultado financiero de redesarrollar una propiedad.
type ROIEstimate struct {
	BuildableSqft           float64 `json:"buildable_sqft"`
	ConstructionCostPerSqft float64 `json:"construction_cost_per_sqft"`
	TotalConstructionCost   float64 `json:"total_construction_cost"`
	EstimatedSalePrice      float64 `json:"estimated_sale_price"`
	GrossProfit             float64 `json:"gross_profit"`
	NetProfit               float64 `json:"net_profit"`
	ROIPercentage           float64 `json:"roi_percentage"`
	ROIScore                float64 `json:"roi_score"`
	Confidence              float64 `json:"confidence"`
	Reasoning               string  `json:"reasoning"`
}

// Calculator aplica el modelo de costos con un juego de tablas fijo.
// Es inmutable tras construirse y seguro para uso concurrente.
type Calculator struct {
	tables Tables
}

// NewCalculator copia las tablas para que el llamador no pueda mutarlas despues.
func NewCalculator(t Tables) *Calculator {
	return &Calculator{tables: t.clone()}
}

// DefaultCalculator usa las tablas de Newton, MA.
var DefaultCalculator = NewCalculator(DefaultTables())

// Tables devuelve una copia de las tablas activas.
func (c *Calculator) Tables() Tables {
	return c.tables.clone()
}

// BuildableRatio expone el ratio edificable aplicado a una categoria.
func (c *Calculator) BuildableRatio(z ZoningCategory) float64 {
	return c.tables.buildableRatio(z)
}

// EstimateBuildableArea estima los pies cuadrados edificables.
// Prioriza el lote; si no hay, expande la superficie actual; si tampoco, 0.
func (c *Calculator) EstimateBuildableArea(lot, current *float64, z ZoningCategory) float64 {
	if v, ok := positive(lot); ok {
		return math.Max(0, v*c.tables.buildableRatio(z))
	}
	if v, ok := positive(current); ok {
		return math.Max(0, v*c.tables.ExpansionFactor)
	}
	return 0
}

// CostAndValue devuelve costo por pie, costo total de obra y precio de venta estimado.
func (c *Calculator) CostAndValue(buildable float64, z ZoningCategory) (costPerSqft, totalCost, salePrice float64) {
	costPerSqft = c.tables.constructionCost(z)
	totalCost = buildable * costPerSqft
	salePrice = buildable * c.tables.marketPrice(z)
	return costPerSqft, totalCost, salePrice
}

// Profit calcula ganancia bruta, neta (impuesto solo sobre ganancia positiva) y ROI %.
func (c *Calculator) Profit(purchase, totalCost, salePrice float64) (gross, net, roi float64) {
	gross = salePrice - purchase - totalCost
	net = gross
	if gross > 0 {
		net = gross * (1 - c.tables.TaxRate)
	}
	investment := purchase + totalCost
	if investment > 0 {
		roi = net / investment * 100
	}
	return gross, net, roi
}

// Confidence es un puntaje heuristico 0-100 segun los datos disponibles.
func Confidence(lotKnown, currentKnown bool, z ZoningCategory, adjustment float64) float64 {
	conf := 50.0
	if lotKnown {
		conf += 20
	}
	if currentKnown {
		conf += 15
	}
	if z != ZoningUnknown && z != "" {
		conf += 15
	}
	if math.IsNaN(adjustment) || math.IsInf(adjustment, 0) {
		adjustment = 1
	}
	return clamp(conf*adjustment, 0, 100)
}

// NormalizeROIScore lleva un ROI % a la escala 0-100 por tramos lineales.
func NormalizeROIScore(roi float64) float64 {
	switch {
	case math.IsNaN(roi), roi < 0:
		return 0
	case roi < 20:
		return roi / 20 * 25
	case roi < 50:
		return 25 + (roi-20)/30*25
	case roi < 100:
		return 50 + (roi-50)/50*25
	default:
		return 75 + math.Min(roi-100, 100)/100*25
	}
}

// CalculateROI corre el pipeline completo. Nunca falla: los casos sin datos
// devuelven una estimacion en cero con el motivo en Reasoning.
func (c *Calculator) CalculateROI(in ROIInput) ROIEstimate {
	price, ok := positive(in.PurchasePrice)
	if !ok {
		return terminalEstimate(reasonInvalidPrice)
	}

	zoning := ClassifyZoning(in.Zoning)
	buildable := c.EstimateBuildableArea(in.LotSize, in.CurrentSqft, zoning)
	if buildable <= 0 {
		return terminalEstimate(reasonNoBuildable)
	}

	costPerSqft, totalCost, sale := c.CostAndValue(buildable, zoning)
	gross, net, roi := c.Profit(price, totalCost, sale)
	if !allFinite(buildable, totalCost, sale, gross, net, roi) {
		return terminalEstimate(reasonOutOfRange)
	}

	adjustment := 1.0
	if in.Adjustment != nil {
		adjustment = *in.Adjustment
	}
	lot, lotKnown := positive(in.LotSize)
	_, currentKnown := positive(in.CurrentSqft)
	conf := Confidence(lotKnown, currentKnown, zoning, adjustment)

	est := ROIEstimate{
		BuildableSqft:           buildable,
		ConstructionCostPerSqft: costPerSqft,
		TotalConstructionCost:   totalCost,
		EstimatedSalePrice:      sale,
		GrossProfit:             gross,
		NetProfit:               net,
		ROIPercentage:           roi,
		ROIScore:                NormalizeROIScore(roi),
		Confidence:              conf,
	}

	var lotPtr *float64
	if lotKnown {
		lotPtr = &lot
	}
	est.Reasoning = reasoning(buildable, lotPtr, sale, roi, conf)
	return est
}

var numberPrinter = message.NewPrinter(language.English)

func reasoning(buildable float64, lot *float64, sale, roi, conf float64) string {
	parts := []string{numberPrinter.Sprintf("Buildable: %.0f SF", buildable)}
	if lot != nil {
		parts = append(parts, numberPrinter.Sprintf("Lot: %.0f SF", *lot)+fmt.Sprintf(" (%.1fx)", buildable / *lot))
	}
	parts = append(parts,
		numberPrinter.Sprintf("Est. Sale: $%.0f", sale),
		fmt.Sprintf("ROI: %.1f%%", roi),
		fmt.Sprintf("Confidence: %.0f%%", conf),
	)
	return strings.Join(parts, " | ")
}

func terminalEstimate(reason string) ROIEstimate {
	return ROIEstimate{Reasoning: "Cannot estimate ROI: " + reason}
}

// positive trata nil, cero, negativos y valores no finitos como ausentes.
func positive(v *float64) (float64, bool) {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) || *v <= 0 {
		return 0, false
	}
	return *v, true
}

func allFinite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
