package email

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestNewSMTPSender_Validation(t *testing.T) {
	if _, err := NewSMTPSender("", 587, "", "", "a@b.com", "", false); err == nil {
		t.Fatalf("expected error for empty host")
	}
	if _, err := NewSMTPSender("smtp.example.com", 587, "", "", " ", "", false); err == nil {
		t.Fatalf("expected error for empty from")
	}
	s, err := NewSMTPSender("smtp.example.com", 0, "", "", "alerts@example.com", "", false)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if s.port != 587 {
		t.Fatalf("expected default port 587, got %d", s.port)
	}
}

func TestSMTPSender_BuildMessage(t *testing.T) {
	s, err := NewSMTPSender("smtp.example.com", 587, "", "", "alerts@example.com", "Teardown Leads", false)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	msg, err := s.buildMessage([]string{"a@example.com", "b@example.com"}, "3 New Development Opportunities", "<p>hi</p>")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	var buf bytes.Buffer
	if _, err := msg.WriteTo(&buf); err != nil {
		t.Fatalf("write message: %v", err)
	}
	raw := buf.String()
	for _, want := range []string{"a@example.com", "b@example.com", "Teardown Leads", "text/html"} {
		if !strings.Contains(raw, want) {
			t.Fatalf("expected %q in message:\n%s", want, raw)
		}
	}
}

func TestSMTPSender_RequiresRecipients(t *testing.T) {
	s, _ := NewSMTPSender("smtp.example.com", 587, "", "", "alerts@example.com", "", false)
	if err := s.SendHTML(context.Background(), nil, "s", "b"); err == nil {
		t.Fatalf("expected error without recipients")
	}
}

func TestDisabledSender(t *testing.T) {
	err := NewDisabledSender("smtp not configured").SendHTML(context.Background(), []string{"a@b.com"}, "s", "b")
	if err == nil || err.Error() != "smtp not configured" {
		t.Fatalf("expected configured reason, got %v", err)
	}
}
