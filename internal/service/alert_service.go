package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"teardown-leads/internal/domain"
	"teardown-leads/internal/notify"
)

// AlertResult indica que canales recibieron algo en la corrida.
type AlertResult struct {
	Alerted  int             `json:"alerted"`
	Channels map[string]bool `json:"channels"`
}

// AlertService reparte oportunidades de alto valor entre los canales configurados.
type AlertService struct {
	notifiers []notify.Notifier
	deduper   AlertDeduper
	threshold float64
	location  string
	logger    *zap.Logger
	now       func() time.Time
}

func NewAlertService(notifiers []notify.Notifier, deduper AlertDeduper, threshold float64, location string, logger *zap.Logger) *AlertService {
	if threshold <= 0 {
		threshold = 70
	}
	return &AlertService{
		notifiers: notifiers,
		deduper:   deduper,
		threshold: threshold,
		location:  location,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *AlertService) aboveThreshold(opps []domain.Opportunity) []domain.Opportunity {
	var out []domain.Opportunity
	for _, o := range opps {
		if o.DevelopmentScore >= s.threshold {
			out = append(out, o)
		}
	}
	return out
}

// HighValue devuelve las oportunidades con development score >= umbral que no se alertaron
// dentro del TTL de dedup. Conserva el orden de entrada.
func (s *AlertService) HighValue(ctx context.Context, opps []domain.Opportunity) []domain.Opportunity {
	var out []domain.Opportunity
	for _, o := range s.aboveThreshold(opps) {
		if s.deduper != nil && !s.deduper.ShouldAlert(ctx, o.Listing.Address) {
			s.logger.Debug("alert suppressed by dedup", zap.String("address", o.Listing.Address))
			continue
		}
		out = append(out, o)
	}
	return out
}

// Dispatch manda las alertas o, si no hay nada para alertar, el resumen de la corrida.
// Un canal que falla no corta a los demas. Si ningun canal entrego las alertas se liberan
// las claves de dedup para reintentar en la proxima corrida.
func (s *AlertService) Dispatch(ctx context.Context, runType string, opps []domain.Opportunity, summary notify.Summary) AlertResult {
	res := AlertResult{Channels: make(map[string]bool, len(s.notifiers))}
	if len(s.notifiers) == 0 {
		return res
	}

	high := s.HighValue(ctx, opps)
	res.Alerted = len(high)

	for _, n := range s.notifiers {
		var err error
		if len(high) > 0 {
			err = n.NotifyOpportunities(ctx, notify.Alert{
				RunType:       runType,
				Location:      s.location,
				Threshold:     s.threshold,
				Opportunities: high,
				GeneratedAt:   s.now(),
			})
		} else {
			summary.RunType = runType
			summary.FinishedAt = s.now()
			err = n.NotifySummary(ctx, summary)
		}
		if err != nil {
			s.logger.Error("alert channel failed", zap.String("channel", n.Name()), zap.Error(err))
			res.Channels[n.Name()] = false
			continue
		}
		res.Channels[n.Name()] = true
	}
	if len(high) > 0 && !anyDelivered(res.Channels) {
		s.release(ctx, high)
	}
	s.logger.Info("alerts dispatched", zap.Int("alerted", res.Alerted), zap.Any("channels", res.Channels))
	return res
}

func (s *AlertService) release(ctx context.Context, opps []domain.Opportunity) {
	if s.deduper == nil {
		return
	}
	for _, o := range opps {
		s.deduper.Release(ctx, o.Listing.Address)
	}
	s.logger.Warn("no channel delivered alerts, dedup released", zap.Int("count", len(opps)))
}

func anyDelivered(channels map[string]bool) bool {
	for _, ok := range channels {
		if ok {
			return true
		}
	}
	return false
}
