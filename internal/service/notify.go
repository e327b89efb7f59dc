// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"fmt"
	"log/slog"
	"strings"

	"gopkg.in/gomail.v2"

	"github.com/rgsq/rgsq-go/internal/config"
	"github.com/rgsq/rgsq-go/internal/model"
)

// DeliveryStatus classifies the outcome of a notification attempt.
type DeliveryStatus int

// Delivery outcomes. Skipped covers missing configuration or recipient;
// Failed covers transport errors. Neither is raised as an error: callers
// log the result and move on.
const (
	DeliverySent DeliveryStatus = iota
	DeliverySkipped
	DeliveryFailed
)

// DeliveryResult is the explicit outcome of a send attempt.
type DeliveryResult struct {
	Status DeliveryStatus
	Reason string // set for Skipped and Failed
}

func (r DeliveryResult) String() string {
	switch r.Status {
	case DeliverySent:
		return "sent"
	case DeliverySkipped:
		return "skipped: " + r.Reason
	default:
		return "failed: " + r.Reason
	}
}

// Notifier sends transactional email. With no SMTP transport configured
// every send degrades to a Skipped result instead of an error.
type Notifier struct {
	cfg *config.Config
}

// NewNotifier creates a new Notifier.
func NewNotifier(cfg *config.Config) *Notifier {
	return &Notifier{cfg: cfg}
}

// SendEventRegistration emails a registration confirmation for an event.
func (n *Notifier) SendEventRegistration(recipient string, event *model.Event) DeliveryResult {
	subject := fmt.Sprintf("RGSQ event registration: %s", event.Title)
	body := fmt.Sprintf(
		"You are registered for %s.\r\n\r\nWhen: %s\r\nWhere: %s\r\nPrice: %s\r\n\r\nRoyal Geographical Society of Queensland",
		event.Title, event.EventTime, event.Location, event.PriceLabel(),
	)
	return n.send(recipient, subject, body)
}

// SendWelcome emails a new account confirmation.
func (n *Notifier) SendWelcome(user *model.User) DeliveryResult {
	name := user.Email
	if user.FullName.Valid {
		name = user.FullName.String
	}
	subject := "Welcome to RGSQ"
	body := fmt.Sprintf(
		"Hello %s,\r\n\r\nYour RGSQ account has been created.\r\n\r\nRoyal Geographical Society of Queensland",
		name,
	)
	return n.send(user.Email, subject, body)
}

func (n *Notifier) send(recipient, subject, body string) DeliveryResult {
	if !n.cfg.SMTPEnabled() {
		slog.Warn("smtp not configured, skipping notification", "subject", subject)
		return DeliveryResult{Status: DeliverySkipped, Reason: "smtp not configured"}
	}
	if strings.TrimSpace(recipient) == "" {
		return DeliveryResult{Status: DeliverySkipped, Reason: "empty recipient"}
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.cfg.SMTPFrom)
	m.SetHeader("To", recipient)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(n.cfg.SMTPHost, n.cfg.SMTPPort, n.cfg.SMTPUser, n.cfg.SMTPPass)
	if err := d.DialAndSend(m); err != nil {
		slog.Error("notification delivery failed", "error", err, "to", recipient, "subject", subject)
		return DeliveryResult{Status: DeliveryFailed, Reason: err.Error()}
	}

	slog.Info("notification sent", "to", recipient, "subject", subject)
	return DeliveryResult{Status: DeliverySent}
}
