package domain

import (
	"strings"
	"time"

	"teardown-leads/internal/scoring"
)

// Listing es una propiedad recolectada de un portal y enriquecida.
type Listing struct {
	ID            string    `json:"id"`
	Address       string    `json:"address" validate:"required"`
	City          string    `json:"city,omitempty"`
	State         string    `json:"state,omitempty"`
	ZipCode       string    `json:"zip_code,omitempty"`
	Price         *float64  `json:"price,omitempty" validate:"omitempty,gte=0"`
	LastPrice     *float64  `json:"last_price,omitempty" validate:"omitempty,gte=0"`
	Bedrooms      *float64  `json:"bedrooms,omitempty"`
	Bathrooms     *float64  `json:"bathrooms,omitempty"`
	Sqft          *float64  `json:"sqft,omitempty" validate:"omitempty,gte=0"`
	LotSize       *float64  `json:"lot_size,omitempty" validate:"omitempty,gte=0"`
	YearBuilt     *int      `json:"year_built,omitempty" validate:"omitempty,gte=1600,lte=2100"`
	Zoning        *string   `json:"zoning,omitempty"`
	LandValue     *float64  `json:"land_value,omitempty"`
	AssessedValue *float64  `json:"assessed_value,omitempty"`
	Latitude      *float64  `json:"latitude,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Longitude     *float64  `json:"longitude,omitempty" validate:"omitempty,gte=-180,lte=180"`
	Description   string    `json:"description,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	Snippet       string    `json:"snippet,omitempty"`
	Status        string    `json:"status,omitempty"`
	URL           string    `json:"url,omitempty"`
	Source        string    `json:"source,omitempty"`
	FirstSeenAt   time.Time `json:"first_seen_at,omitempty"`
	LastSeenAt    time.Time `json:"last_seen_at,omitempty"`

	Metrics scoring.PropertyMetrics `json:"metrics"`
}

// PurchasePrice usa el precio publicado o, si falta, el ultimo precio conocido.
func (l Listing) PurchasePrice() *float64 {
	if l.Price != nil && *l.Price > 0 {
		return l.Price
	}
	return l.LastPrice
}

// NormalizedAddress es la clave usada para deduplicar y hacer upsert.
func (l Listing) NormalizedAddress() string {
	return NormalizeAddress(l.Address)
}

// NormalizeAddress colapsa espacios y pasa a minusculas.
func NormalizeAddress(addr string) string {
	return strings.ToLower(strings.Join(strings.Fields(addr), " "))
}

// HasLocation indica si el listing esta geocodificado.
func (l Listing) HasLocation() bool {
	return l.Latitude != nil && l.Longitude != nil
}

// MetricsInput arma los insumos para scoring.DeriveMetrics.
func (l Listing) MetricsInput() scoring.MetricsInput {
	return scoring.MetricsInput{
		Price:         l.PurchasePrice(),
		Sqft:          l.Sqft,
		LotSize:       l.LotSize,
		LandValue:     l.LandValue,
		AssessedValue: l.AssessedValue,
		YearBuilt:     l.YearBuilt,
	}
}

// ROIInput arma la entrada del calculador de ROI.
func (l Listing) ROIInput() scoring.ROIInput {
	return scoring.ROIInput{
		Address:       l.Address,
		PurchasePrice: l.PurchasePrice(),
		LotSize:       l.LotSize,
		CurrentSqft:   l.Sqft,
		Zoning:        l.Zoning,
	}
}

// DedupeByAddress conserva el primer listing por direccion y descarta los que no tienen.
func DedupeByAddress(listings []Listing) []Listing {
	seen := make(map[string]struct{}, len(listings))
	out := make([]Listing, 0, len(listings))
	for _, l := range listings {
		key := l.NormalizedAddress()
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, l)
	}
	return out
}
