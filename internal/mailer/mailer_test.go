package mailer_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"backoffice/internal/logging"
	"backoffice/internal/mailer"
	"backoffice/internal/services"
	"backoffice/internal/testsupport"
)

func TestNewSenderWithoutHostIsNoop(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	sender, err := mailer.NewSender(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("NewSender: %v", err)
	}
	err = sender.Send(context.Background(), mailer.Message{
		From:    "site@example.test",
		To:      "admin@example.test",
		Subject: "Test",
		HTML:    "<p>Hello</p>",
	})
	if err != nil {
		t.Fatalf("noop Send: %v", err)
	}
}

func TestNoopSenderStillValidates(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	sender, _ := mailer.NewSender(cfg, logging.NewNop())
	err := sender.Send(context.Background(), mailer.Message{From: "site@example.test", Subject: "x"})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for missing recipient, got %v", err)
	}
}

func TestBuildIncludesPlainAndHTMLParts(t *testing.T) {
	msg, err := mailer.Build(mailer.Message{
		From:     "site@example.test",
		FromName: "Test Site",
		To:       "admin@example.test",
		ToName:   "Admin",
		Subject:  "Test email from Test Site",
		HTML:     "<html><body><h1>Test email</h1><p>It <b>works</b>.</p></body></html>",
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	var buf bytes.Buffer
	if _, err := msg.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	raw := buf.String()
	for _, want := range []string{"Subject: Test email from Test Site", "text/plain", "text/html", "It works."} {
		if !strings.Contains(raw, want) {
			t.Fatalf("expected %q in message:\n%s", want, raw)
		}
	}
}
