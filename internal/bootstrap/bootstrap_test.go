package bootstrap

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"teardown-leads/internal/config"
)

func TestNotifiers_FromConfig(t *testing.T) {
	cases := []struct {
		name string
		cfg  config.Config
		want []string
	}{
		{"none", config.Config{}, nil},
		{"email without recipients", config.Config{SMTPHost: "smtp.local", SMTPFrom: "a@b.c"}, nil},
		{"email", config.Config{SMTPHost: "smtp.local", SMTPFrom: "a@b.c", AlertEmailTo: []string{"x@y.z"}}, []string{"email"}},
		{"email missing from", config.Config{SMTPHost: "smtp.local", AlertEmailTo: []string{"x@y.z"}}, []string{"email"}},
		{"email without smtp", config.Config{AlertEmailTo: []string{"x@y.z"}}, []string{"email"}},
		{"email and slack", config.Config{AlertEmailTo: []string{"x@y.z"}, SlackWebhookURL: "https://hooks.slack.test/x"}, []string{"email", "slack"}},
		{"slack", config.Config{SlackWebhookURL: "https://hooks.slack.test/x"}, []string{"slack"}},
		{"telegram without chat", config.Config{TelegramBotToken: "t"}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Notifiers(&tc.cfg, zap.NewNop())
			if len(got) != len(tc.want) {
				t.Fatalf("expected %d notifiers, got %d", len(tc.want), len(got))
			}
			for i, n := range got {
				if n.Name() != tc.want[i] {
					t.Fatalf("expected %s, got %s", tc.want[i], n.Name())
				}
			}
		})
	}
}

func TestLoadZoning_Disabled(t *testing.T) {
	z, err := loadZoning(&config.Config{}, zap.NewNop())
	if err != nil || z != nil {
		t.Fatalf("expected nil lookup without shapefile, got %v %v", z, err)
	}
}

func TestLoadZoning_MissingFile(t *testing.T) {
	_, err := loadZoning(&config.Config{ZoningShapefile: "/nonexistent/zoning.shp", ZoningAttribute: "ZONE"}, zap.NewNop())
	if err == nil {
		t.Fatalf("expected error for missing shapefile")
	}
}

func TestObjectStore_Disabled(t *testing.T) {
	if up := objectStore(context.Background(), &config.Config{}, zap.NewNop()); up != nil {
		t.Fatalf("expected nil uploader without endpoint")
	}
}

func TestConnectRedis_Disabled(t *testing.T) {
	if c := connectRedis(context.Background(), &config.Config{}, zap.NewNop()); c != nil {
		t.Fatalf("expected nil client without address")
	}
}
