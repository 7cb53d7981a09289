package service

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"teardown-leads/internal/domain"
	"teardown-leads/internal/scoring"
)

// ZoningLookup resuelve el codigo de zonificacion de una coordenada.
type ZoningLookup interface {
	Lookup(lat, lon float64) (string, bool)
}

// EnrichmentService completa zonificacion y metricas derivadas antes de puntuar.
type EnrichmentService struct {
	zoning ZoningLookup
	logger *zap.Logger
	now    func() time.Time
}

// NewEnrichmentService acepta zoning nil: en ese caso solo deriva metricas.
func NewEnrichmentService(zoning ZoningLookup, logger *zap.Logger) *EnrichmentService {
	return &EnrichmentService{zoning: zoning, logger: logger, now: time.Now}
}

func (s *EnrichmentService) Enrich(l domain.Listing) domain.Listing {
	if s.zoning != nil && l.HasLocation() && (l.Zoning == nil || strings.TrimSpace(*l.Zoning) == "") {
		if zone, ok := s.zoning.Lookup(*l.Latitude, *l.Longitude); ok {
			l.Zoning = &zone
		} else {
			s.logger.Debug("no zoning polygon for listing", zap.String("address", l.Address))
		}
	}
	l.Metrics = scoring.DeriveMetrics(l.MetricsInput(), s.now().Year())
	return l
}

func (s *EnrichmentService) EnrichAll(listings []domain.Listing) []domain.Listing {
	out := make([]domain.Listing, len(listings))
	for i, l := range listings {
		out[i] = s.Enrich(l)
	}
	return out
}
