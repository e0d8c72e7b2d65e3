package mainconfig

import (
	"context"
	"testing"

	appconfig "github.com/wolfman30/careflow-portal/internal/config"
)

func TestBuildSESClientSkipsOtherProviders(t *testing.T) {
	for _, provider := range []string{"", "sendgrid", "stub"} {
		client, err := BuildSESClient(context.Background(), &appconfig.Config{EmailProvider: provider})
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", provider, err)
		}
		if client != nil {
			t.Fatalf("%q: expected no SES client", provider)
		}
	}
}

func TestBuildSESClientUsesStaticCredentials(t *testing.T) {
	cfg := &appconfig.Config{
		EmailProvider:       "ses",
		AWSRegion:           "us-east-1",
		AWSAccessKeyID:      "test",
		AWSSecretAccessKey:  "test",
		AWSEndpointOverride: "http://localhost:4566",
	}
	client, err := BuildSESClient(context.Background(), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client == nil {
		t.Fatalf("expected SES client")
	}
}
