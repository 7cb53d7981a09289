package service

import (
	"testing"

	"go.uber.org/zap"

	"teardown-leads/internal/domain"
)

type stubZoning struct {
	zone  string
	calls int
}

func (s *stubZoning) Lookup(lat, lon float64) (string, bool) {
	s.calls++
	if s.zone == "" {
		return "", false
	}
	return s.zone, true
}

func TestEnrichmentService_FillsMissingZoning(t *testing.T) {
	zoning := &stubZoning{zone: "MR-1 multi-family"}
	svc := NewEnrichmentService(zoning, zap.NewNop())
	svc.now = fixedNow

	got := svc.Enrich(domain.Listing{
		Address:   "1 A St",
		Latitude:  fp(42.33),
		Longitude: fp(-71.21),
		Price:     fp(600_000),
		Sqft:      fp(2_000),
		YearBuilt: ip(1956),
	})
	if got.Zoning == nil || *got.Zoning != "MR-1 multi-family" {
		t.Fatalf("expected zoning from layer, got %v", got.Zoning)
	}
	if got.Metrics.BuildingAge == nil || *got.Metrics.BuildingAge != 70 {
		t.Fatalf("expected building age 70, got %v", got.Metrics.BuildingAge)
	}
	if got.Metrics.PricePerSqft == nil || *got.Metrics.PricePerSqft != 300 {
		t.Fatalf("expected price per sqft 300, got %v", got.Metrics.PricePerSqft)
	}
}

func TestEnrichmentService_KeepsExistingZoning(t *testing.T) {
	zoning := &stubZoning{zone: "MU-4"}
	svc := NewEnrichmentService(zoning, zap.NewNop())

	got := svc.Enrich(domain.Listing{Address: "1 A St", Latitude: fp(1), Longitude: fp(1), Zoning: sp("SR-2")})
	if *got.Zoning != "SR-2" || zoning.calls != 0 {
		t.Fatalf("expected existing zoning kept without lookup, got %s (%d calls)", *got.Zoning, zoning.calls)
	}
}

func TestEnrichmentService_NoCoordinatesNoLookup(t *testing.T) {
	zoning := &stubZoning{zone: "MU-4"}
	svc := NewEnrichmentService(zoning, zap.NewNop())

	got := svc.Enrich(domain.Listing{Address: "1 A St"})
	if got.Zoning != nil || zoning.calls != 0 {
		t.Fatalf("expected no lookup without coordinates")
	}
}

func TestEnrichmentService_NoPolygonLeavesZoningEmpty(t *testing.T) {
	svc := NewEnrichmentService(&stubZoning{}, zap.NewNop())
	got := svc.Enrich(domain.Listing{Address: "1 A St", Latitude: fp(1), Longitude: fp(1)})
	if got.Zoning != nil {
		t.Fatalf("expected zoning to stay nil, got %q", *got.Zoning)
	}
}
