package notify

import (
	"context"
	"time"

	"teardown-leads/internal/domain"
)

// Alert agrupa las oportunidades de una corrida que superaron el umbral.
type Alert struct {
	RunType       string
	Location      string
	Threshold     float64
	Opportunities []domain.Opportunity
	GeneratedAt   time.Time
}

// Summary resume una corrida sin oportunidades nuevas para alertar.
type Summary struct {
	RunType    string
	Collected  int
	Classified int
	HighValue  int
	Duration   time.Duration
	FinishedAt time.Time
}

// Notifier es un canal de salida de alertas (email, Slack, Telegram).
type Notifier interface {
	Name() string
	NotifyOpportunities(ctx context.Context, alert Alert) error
	NotifySummary(ctx context.Context, summary Summary) error
}
