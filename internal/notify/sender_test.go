package notify

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/wolfman30/careflow-portal/internal/apperr"
	"github.com/wolfman30/careflow-portal/internal/config"
)

func TestNewSenderSelectsProvider(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
		ses  sesAPI
		want string
	}{
		{"stub", config.Config{EmailProvider: "stub"}, nil, "*notify.StubEmailSender"},
		{"sendgrid", config.Config{EmailProvider: "sendgrid", SendGridAPIKey: "k", EmailFromAddress: "a@b.c"}, nil, "*notify.SendGridSender"},
		{"ses", config.Config{EmailProvider: "ses", EmailFromAddress: "a@b.c"}, &fakeSES{}, "*notify.SESSender"},
		{"sendgrid without key", config.Config{EmailProvider: "sendgrid"}, nil, "notify.unavailableSender"},
		{"ses without client", config.Config{EmailProvider: "ses", EmailFromAddress: "a@b.c"}, nil, "notify.unavailableSender"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			got := NewSender(&cfg, tt.ses, nil)
			if name := typeName(got); name != tt.want {
				t.Fatalf("sender = %s, want %s", name, tt.want)
			}
		})
	}
}

func TestUnavailableSenderIsConfigurationError(t *testing.T) {
	_, err := unavailableSender{}.Send(context.Background(), EmailMessage{})
	if !errors.Is(err, apperr.ServiceUnavailable) {
		t.Fatalf("expected service unavailable, got %v", err)
	}
}

func typeName(v any) string {
	return fmt.Sprintf("%T", v)
}
