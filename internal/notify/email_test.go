package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

func TestNewSendGridSender_NilWithoutAPIKey(t *testing.T) {
	sender := NewSendGridSender(SendGridConfig{
		APIKey:    "",
		FromEmail: "test@example.com",
	}, nil)

	if sender != nil {
		t.Error("expected nil sender when API key is empty")
	}
}

func TestNewSendGridSender_DefaultFromName(t *testing.T) {
	sender := NewSendGridSender(SendGridConfig{
		APIKey:    "test-key",
		FromEmail: "test@example.com",
	}, nil)

	if sender == nil {
		t.Fatal("expected non-nil sender")
	}
	if sender.fromName != "Healthcare" {
		t.Errorf("expected default from name 'Healthcare', got %q", sender.fromName)
	}
}

func TestSendGridSender_Send_NilClient(t *testing.T) {
	sender := &SendGridSender{}

	_, err := sender.Send(context.Background(), EmailMessage{
		To:      "recipient@example.com",
		Subject: "Test",
		HTML:    "<p>Test body</p>",
	})
	if err == nil {
		t.Error("expected error when client is nil")
	}

	var nilSender *SendGridSender
	if _, err := nilSender.Send(context.Background(), EmailMessage{}); err == nil {
		t.Error("expected error from nil sender")
	}
}

func TestBuildSendGridMessage_HTMLOnlyOmitsPlainPart(t *testing.T) {
	from := mail.NewEmail("Healthcare", "care@example.com")
	to := mail.NewEmail("Pat", "pat@example.com")

	m := buildSendGridMessage(from, to, EmailMessage{Subject: "Refill Reminder - Statin", HTML: "<p>Hello Pat</p>"})
	if len(m.Content) != 1 || m.Content[0].Type != "text/html" {
		t.Fatalf("expected only an html part, got %+v", m.Content)
	}
	if m.Subject != "Refill Reminder - Statin" || len(m.Personalizations) != 1 || m.Personalizations[0].To[0].Address != "pat@example.com" {
		t.Fatalf("unexpected envelope: %+v", m)
	}

	m = buildSendGridMessage(from, to, EmailMessage{Subject: "s", Body: "plain", HTML: "<p>x</p>"})
	if len(m.Content) != 2 || m.Content[0].Type != "text/plain" || m.Content[0].Value != "plain" {
		t.Fatalf("expected plain then html parts, got %+v", m.Content)
	}

	m = buildSendGridMessage(from, to, EmailMessage{Subject: "only subject"})
	if len(m.Content) != 1 || m.Content[0].Value != "only subject" {
		t.Fatalf("expected subject fallback, got %+v", m.Content)
	}
}

func TestStubEmailSender_Send(t *testing.T) {
	sender := NewStubEmailSender(nil)

	receipt, err := sender.Send(context.Background(), EmailMessage{
		To:      "recipient@example.com",
		Subject: "Test Subject",
	})
	if err != nil {
		t.Fatalf("stub sender should not return error, got: %v", err)
	}
	if receipt.Provider != "stub" || !strings.HasPrefix(receipt.ID, "stub-") {
		t.Errorf("unexpected receipt: %+v", receipt)
	}
}

type fakeSES struct {
	input *sesv2.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(_ context.Context, in *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.input = in
	if f.err != nil {
		return nil, f.err
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("ses-123")}, nil
}

func TestSESSender_Send(t *testing.T) {
	api := &fakeSES{}
	sender := NewSESSender(api, SESConfig{FromEmail: "onboarding@careflow.health"}, nil)

	receipt, err := sender.Send(context.Background(), EmailMessage{
		To:      "pat@example.com",
		Subject: "Refill Reminder - Lisinopril",
		HTML:    "<h1>Prescription Refill Reminder</h1>",
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if receipt.ID != "ses-123" || receipt.Provider != "ses" {
		t.Fatalf("unexpected receipt: %+v", receipt)
	}
	if got := aws.ToString(api.input.FromEmailAddress); got != "Healthcare <onboarding@careflow.health>" {
		t.Fatalf("unexpected from: %s", got)
	}
	if api.input.Content.Simple.Body.Text != nil {
		t.Fatalf("expected no text body when only HTML given")
	}
	if got := aws.ToString(api.input.Content.Simple.Body.Html.Data); !strings.Contains(got, "Refill") {
		t.Fatalf("unexpected html: %s", got)
	}
}

func TestSESSender_SendError(t *testing.T) {
	api := &fakeSES{err: errors.New("throttled")}
	sender := NewSESSender(api, SESConfig{FromEmail: "a@b.c"}, nil)
	if _, err := sender.Send(context.Background(), EmailMessage{To: "x@y.z"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestNewSESSender_NilClient(t *testing.T) {
	if NewSESSender(nil, SESConfig{}, nil) != nil {
		t.Fatal("expected nil sender without client")
	}
}
