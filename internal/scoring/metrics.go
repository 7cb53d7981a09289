package scoring

// MetricsInput son los datos crudos de un listing necesarios para derivar metricas.
type MetricsInput struct {
	Price         *float64
	Sqft          *float64
	LotSize       *float64
	LandValue     *float64
	AssessedValue *float64
	YearBuilt     *int
}

// DeriveMetrics calcula las metricas que alimentan el development score.
// Cada metrica queda en nil si falta alguno de sus insumos o el divisor no es positivo.
func DeriveMetrics(in MetricsInput, currentYear int) PropertyMetrics {
	var m PropertyMetrics

	sqft, sqftOK := positive(in.Sqft)
	if price, ok := positive(in.Price); ok && sqftOK {
		m.PricePerSqft = ptr(round2(price / sqft))
	}
	if land, ok := positive(in.LandValue); ok {
		if assessed, ok := positive(in.AssessedValue); ok {
			m.LandValueRatio = ptr(round2(land / assessed))
		}
	}
	if lot, ok := positive(in.LotSize); ok {
		m.LotSize = ptr(lot)
		if sqftOK {
			m.LotToBuildingRatio = ptr(round2(lot / sqft))
		}
	}
	if in.YearBuilt != nil && *in.YearBuilt > 0 {
		age := currentYear - *in.YearBuilt
		m.BuildingAge = &age
	}
	return m
}

func ptr[T any](v T) *T {
	return &v
}
