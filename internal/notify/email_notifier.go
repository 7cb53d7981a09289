package notify

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"

	"teardown-leads/internal/email"
)

//go:embed templates/*.html
var templateFS embed.FS

var emailTemplates = template.Must(template.New("").ParseFS(templateFS, "templates/*.html"))

type emailItem struct {
	Rank        int
	Address     string
	Score       string
	Label       string
	Explanation string
	Price       string
	ROI         string
}

type opportunitiesEmailData struct {
	Title     string
	RunType   string
	Timestamp string
	Location  string
	Count     int
	Threshold string
	TopScore  string
	Items     []emailItem
	More      int
}

type summaryEmailData struct {
	RunType    string
	Duration   string
	Collected  int
	Classified int
	HighValue  int
}

// EmailNotifier envia las alertas como HTML a una lista fija de destinatarios.
type EmailNotifier struct {
	sender     email.Sender
	recipients []string
}

func NewEmailNotifier(sender email.Sender, recipients []string) *EmailNotifier {
	return &EmailNotifier{sender: sender, recipients: recipients}
}

func (n *EmailNotifier) Name() string { return "email" }

func (n *EmailNotifier) NotifyOpportunities(ctx context.Context, a Alert) error {
	body, err := RenderOpportunitiesHTML(a)
	if err != nil {
		return err
	}
	return n.sender.SendHTML(ctx, n.recipients, Subject(a), body)
}

func (n *EmailNotifier) NotifySummary(ctx context.Context, s Summary) error {
	var buf bytes.Buffer
	data := summaryEmailData{
		RunType:    displayRunType(s.RunType),
		Duration:   fmt.Sprintf("%.1fs", s.Duration.Seconds()),
		Collected:  s.Collected,
		Classified: s.Classified,
		HighValue:  s.HighValue,
	}
	if err := emailTemplates.ExecuteTemplate(&buf, "summary.html", data); err != nil {
		return fmt.Errorf("render summary email: %w", err)
	}
	return n.sender.SendHTML(ctx, n.recipients, "Pipeline Execution Summary", buf.String())
}

// RenderOpportunitiesHTML arma el email con las 10 mejores oportunidades.
func RenderOpportunitiesHTML(a Alert) (string, error) {
	data := opportunitiesEmailData{
		Title:     Subject(a),
		RunType:   displayRunType(a.RunType),
		Timestamp: a.GeneratedAt.Format("2006-01-02 15:04:05"),
		Location:  a.Location,
		Count:     len(a.Opportunities),
		Threshold: fmt.Sprintf("%.0f", a.Threshold),
		TopScore:  fmt.Sprintf("%.1f", topScore(a.Opportunities)),
	}
	for i, o := range a.Opportunities {
		if i == maxEmailItems {
			data.More = len(a.Opportunities) - maxEmailItems
			break
		}
		data.Items = append(data.Items, emailItem{
			Rank:        i + 1,
			Address:     o.Listing.Address,
			Score:       fmt.Sprintf("%.1f", o.DevelopmentScore),
			Label:       string(o.Classification.Label),
			Explanation: truncate(o.Classification.Explanation, emailExplainChars),
			Price:       formatPrice(o.Listing),
			ROI:         formatROI(o),
		})
	}

	var buf bytes.Buffer
	if err := emailTemplates.ExecuteTemplate(&buf, "opportunities.html", data); err != nil {
		return "", fmt.Errorf("render opportunities email: %w", err)
	}
	return buf.String(), nil
}
