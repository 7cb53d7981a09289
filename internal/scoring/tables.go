package scoring

import (
	"fmt"
	"math"
)

// Tables agrupa los parametros regionales del modelo de costos.
// Los valores por defecto corresponden a Newton, MA.
type Tables struct {
	BuildableRatios   map[ZoningCategory]float64
	ConstructionCosts map[ZoningCategory]float64
	MarketPrices      map[ZoningCategory]float64

	DefaultRatio float64
	DefaultCost  float64
	DefaultPrice float64

	// ExpansionFactor se aplica a la superficie construida cuando no hay lote.
	ExpansionFactor float64
	// TaxRate se descuenta de la ganancia bruta positiva.
	TaxRate float64
}

// DefaultTables devuelve una copia nueva de las tablas de Newton, MA.
func DefaultTables() Tables {
	return Tables{
		BuildableRatios: map[ZoningCategory]float64{
			ZoningResidential:      0.40,
			ZoningResidentialDense: 0.60,
			ZoningMixedUse:         0.80,
			ZoningCommercial:       1.00,
		},
		ConstructionCosts: map[ZoningCategory]float64{
			ZoningResidential:      300,
			ZoningResidentialDense: 350,
			ZoningMixedUse:         325,
			ZoningCommercial:       280,
		},
		MarketPrices: map[ZoningCategory]float64{
			ZoningResidential:      450,
			ZoningResidentialDense: 475,
			ZoningMixedUse:         420,
			ZoningCommercial:       350,
		},
		DefaultRatio:    0.40,
		DefaultCost:     300,
		DefaultPrice:    300,
		ExpansionFactor: 1.2,
		TaxRate:         0.25,
	}
}

// WithOverrides mezcla valores por categoria sobre una copia de t.
func (t Tables) WithOverrides(ratios, costs, prices map[ZoningCategory]float64) Tables {
	out := t.clone()
	for k, v := range ratios {
		out.BuildableRatios[k] = v
	}
	for k, v := range costs {
		out.ConstructionCosts[k] = v
	}
	for k, v := range prices {
		out.MarketPrices[k] = v
	}
	return out
}

// Validate rechaza tablas con valores negativos o no finitos.
func (t Tables) Validate() error {
	check := func(name string, v float64) error {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("invalid %s: %v", name, v)
		}
		return nil
	}
	for k, v := range t.BuildableRatios {
		if err := check("buildable ratio for "+string(k), v); err != nil {
			return err
		}
	}
	for k, v := range t.ConstructionCosts {
		if err := check("construction cost for "+string(k), v); err != nil {
			return err
		}
	}
	for k, v := range t.MarketPrices {
		if err := check("market price for "+string(k), v); err != nil {
			return err
		}
	}
	for name, v := range map[string]float64{
		"default ratio":    t.DefaultRatio,
		"default cost":     t.DefaultCost,
		"default price":    t.DefaultPrice,
		"expansion factor": t.ExpansionFactor,
		"tax rate":         t.TaxRate,
	} {
		if err := check(name, v); err != nil {
			return err
		}
	}
	if t.TaxRate > 1 {
		return fmt.Errorf("invalid tax rate: %v", t.TaxRate)
	}
	return nil
}

func (t Tables) clone() Tables {
	out := t
	out.BuildableRatios = copyTable(t.BuildableRatios)
	out.ConstructionCosts = copyTable(t.ConstructionCosts)
	out.MarketPrices = copyTable(t.MarketPrices)
	return out
}

func copyTable(in map[ZoningCategory]float64) map[ZoningCategory]float64 {
	out := make(map[ZoningCategory]float64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func (t Tables) buildableRatio(z ZoningCategory) float64 {
	if v, ok := t.BuildableRatios[z]; ok {
		return v
	}
	return t.DefaultRatio
}

func (t Tables) constructionCost(z ZoningCategory) float64 {
	if v, ok := t.ConstructionCosts[z]; ok {
		return v
	}
	return t.DefaultCost
}

func (t Tables) marketPrice(z ZoningCategory) float64 {
	if v, ok := t.MarketPrices[z]; ok {
		return v
	}
	return t.DefaultPrice
}
