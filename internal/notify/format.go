package notify

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"teardown-leads/internal/domain"
	"teardown-leads/internal/scoring"
)

const (
	maxChatItems      = 5
	maxEmailItems     = 10
	chatExplainChars  = 80
	emailExplainChars = 150
	notAvailable      = "N/A"
)

var (
	printer   = message.NewPrinter(language.English)
	titleCase = cases.Title(language.English)
)

// Subject es el asunto del email y el encabezado de los mensajes de chat.
func Subject(a Alert) string {
	return fmt.Sprintf("%d New Development Opportunities Found", len(a.Opportunities))
}

func displayRunType(runType string) string {
	if runType == "" {
		runType = "manual"
	}
	return titleCase.String(strings.ReplaceAll(runType, "_", " "))
}

func tierMarker(score float64) string {
	switch scoring.ScoreTier(score) {
	case "excellent":
		return "🔴"
	case "good":
		return "🟠"
	default:
		return "🟡"
	}
}

func formatPrice(l domain.Listing) string {
	p := l.PurchasePrice()
	if p == nil || *p <= 0 {
		return notAvailable
	}
	return printer.Sprintf("$%.0f", *p)
}

func formatROI(o domain.Opportunity) string {
	if o.ROI == nil || o.ROI.BuildableSqft <= 0 {
		return notAvailable
	}
	return fmt.Sprintf("%.1f%% (score %.0f)", o.ROI.ROIPercentage, o.ROI.ROIScore)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func topScore(opps []domain.Opportunity) float64 {
	best := 0.0
	for _, o := range opps {
		if o.DevelopmentScore > best {
			best = o.DevelopmentScore
		}
	}
	return best
}

// markup define como se marca negrita e italica y como se escapa el texto en cada canal.
type markup struct {
	escape func(string) string
	bold   func(string) string
	italic func(string) string
}

// slackMarkup es el markdown simple de Slack; el texto va sin escapar.
var slackMarkup = markup{
	escape: func(s string) string { return s },
	bold:   func(s string) string { return "*" + s + "*" },
	italic: func(s string) string { return "_" + s + "_" },
}

// FormatText arma el cuerpo en markdown simple para Slack.
func FormatText(a Alert) string {
	return formatText(a, slackMarkup)
}

// FormatSummary es el mensaje de corrida terminada sin alertas.
func FormatSummary(s Summary) string {
	return formatSummary(s, slackMarkup)
}

func formatText(a Alert, m markup) string {
	var sb strings.Builder
	sb.WriteString(m.bold(m.escape(Subject(a))) + "\n")
	sb.WriteString(m.escape(fmt.Sprintf("%s scan, %s", displayRunType(a.RunType), a.GeneratedAt.Format("2006-01-02 15:04"))) + "\n")
	sb.WriteString(m.escape(fmt.Sprintf("%d high-value properties with score >= %.0f", len(a.Opportunities), a.Threshold)) + "\n\n")

	for i, o := range a.Opportunities {
		if i == maxChatItems {
			sb.WriteString(m.escape(fmt.Sprintf("...and %d more", len(a.Opportunities)-maxChatItems)) + "\n")
			break
		}
		sb.WriteString(tierMarker(o.DevelopmentScore) + " " + m.bold(m.escape(fmt.Sprintf("%d. %s", i+1, o.Listing.Address))) + "\n")
		sb.WriteString("Score: " + m.bold(m.escape(fmt.Sprintf("%.1f/100", o.DevelopmentScore))) +
			" | Label: " + m.italic(m.escape(string(o.Classification.Label))) +
			m.escape(fmt.Sprintf(" | Price: %s | ROI: %s", formatPrice(o.Listing), formatROI(o))) + "\n")
		if o.Classification.Explanation != "" {
			sb.WriteString(m.italic(m.escape(truncate(o.Classification.Explanation, chatExplainChars))) + "\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatSummary(s Summary, m markup) string {
	return m.bold("Pipeline Execution Summary") + "\n" + m.escape(fmt.Sprintf("Run Type: %s\nDuration: %.1fs\nListings Collected: %d\nListings Classified: %d\nHigh-Value Found: %d\nStatus: Success",
		displayRunType(s.RunType), s.Duration.Seconds(), s.Collected, s.Classified, s.HighValue))
}
