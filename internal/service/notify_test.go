package service

import (
	"database/sql"
	"testing"

	"github.com/rgsq/rgsq-go/internal/config"
	"github.com/rgsq/rgsq-go/internal/model"
)

func TestNotifier_SkipsWithoutSMTPConfig(t *testing.T) {
	n := NewNotifier(&config.Config{})

	event := &model.Event{Title: "Seminar", EventTime: "2025-11-01 18:30", Location: "Brisbane"}
	res := n.SendEventRegistration("user@example.com", event)
	if res.Status != DeliverySkipped {
		t.Fatalf("status = %v, want skipped", res.Status)
	}
	if res.Reason == "" {
		t.Error("skipped result should carry a reason")
	}
}

func TestNotifier_SkipsEmptyRecipient(t *testing.T) {
	n := NewNotifier(&config.Config{
		SMTPHost: "smtp.example.com",
		SMTPFrom: "events@rgsq.org.au",
	})

	res := n.SendWelcome(&model.User{Email: "  "})
	if res.Status != DeliverySkipped {
		t.Fatalf("status = %v, want skipped", res.Status)
	}
}

func TestDeliveryResult_String(t *testing.T) {
	tests := []struct {
		result DeliveryResult
		want   string
	}{
		{DeliveryResult{Status: DeliverySent}, "sent"},
		{DeliveryResult{Status: DeliverySkipped, Reason: "smtp not configured"}, "skipped: smtp not configured"},
		{DeliveryResult{Status: DeliveryFailed, Reason: "dial tcp: refused"}, "failed: dial tcp: refused"},
	}
	for _, tt := range tests {
		if got := tt.result.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestNotifier_WelcomeUsesFullName(t *testing.T) {
	// Delivery is skipped (no SMTP), but the body construction path runs.
	n := NewNotifier(&config.Config{})
	user := &model.User{
		Email:    "user@example.com",
		FullName: sql.NullString{String: "Test User", Valid: true},
	}
	if res := n.SendWelcome(user); res.Status != DeliverySkipped {
		t.Fatalf("status = %v, want skipped", res.Status)
	}
}
