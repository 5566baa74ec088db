package parser

import (
	"strings"
	"testing"

	"github.com/inconshreveable/log15"

	"github.com/stephane-martin/mailsink/models"
)

func testLogger() log15.Logger {
	logger := log15.New()
	logger.SetHandler(log15.DiscardHandler())
	return logger
}

func incoming(lines ...string) *models.IncomingMail {
	return &models.IncomingMail{Data: []byte(strings.Join(lines, "\r\n"))}
}

func TestParsePlainText(t *testing.T) {
	t.Parallel()

	p := NewParser(testLogger())
	parsed, err := p.Parse(incoming(
		"From: Sender <sender@example.com>",
		"To: recipient@example.com",
		"Subject: Test Subject",
		"Content-Type: text/plain",
		"",
		"Hello there.",
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !parsed.Subject.Defined || parsed.Subject.Value != "Test Subject" {
		t.Errorf("subject: got %+v, want Test Subject", parsed.Subject)
	}
	if !parsed.From.Defined || parsed.From.Value != "sender@example.com" {
		t.Errorf("from: got %+v, want sender@example.com", parsed.From)
	}
	if len(parsed.To) != 1 || parsed.To[0] != "recipient@example.com" {
		t.Errorf("to: got %v, want [recipient@example.com]", parsed.To)
	}
	if !parsed.Text.Defined || parsed.Text.Value != "Hello there." {
		t.Errorf("text: got %+v, want Hello there.", parsed.Text)
	}
	if parsed.HTML.Defined {
		t.Errorf("html: got %+v, want absent", parsed.HTML)
	}
}

func TestParseMissingHeaders(t *testing.T) {
	t.Parallel()

	p := NewParser(testLogger())
	parsed, err := p.Parse(incoming(
		"X-Nothing: here",
		"",
		"",
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed.Subject.Defined || parsed.From.Defined || len(parsed.To) != 0 {
		t.Errorf("expected absent subject/from/to, got %+v %+v %v", parsed.Subject, parsed.From, parsed.To)
	}
	if parsed.Text.Defined {
		t.Errorf("expected absent text for an empty body, got %+v", parsed.Text)
	}
}

func TestParseMultipart(t *testing.T) {
	t.Parallel()

	p := NewParser(testLogger())
	parsed, err := p.Parse(incoming(
		"From: a@example.com",
		"To: b@example.com",
		"Subject: multipart",
		`Content-Type: multipart/alternative; boundary="XXX"`,
		"",
		"--XXX",
		"Content-Type: text/plain; charset=utf-8",
		"",
		"plain body",
		"--XXX",
		"Content-Type: text/html; charset=utf-8",
		"",
		"<p>html body</p>",
		"--XXX--",
		"",
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !parsed.Text.Defined || strings.TrimSpace(parsed.Text.Value) != "plain body" {
		t.Errorf("text: got %+v, want plain body", parsed.Text)
	}
	if !parsed.HTML.Defined || !strings.Contains(parsed.HTML.Value, "<p>html body</p>") {
		t.Errorf("html: got %+v, want the html part", parsed.HTML)
	}
}

func TestParseAttachmentMetadata(t *testing.T) {
	t.Parallel()

	p := NewParser(testLogger())
	parsed, err := p.Parse(incoming(
		"From: a@example.com",
		"Subject: with attachment",
		`Content-Type: multipart/mixed; boundary="YYY"`,
		"",
		"--YYY",
		"Content-Type: text/plain",
		"",
		"see attached",
		"--YYY",
		"Content-Type: application/octet-stream",
		`Content-Disposition: attachment; filename="notes.txt"`,
		"",
		"some file content",
		"--YYY--",
		"",
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(parsed.Attachments) != 1 {
		t.Fatalf("attachments: got %d, want 1", len(parsed.Attachments))
	}
	att := parsed.Attachments[0]
	if att.Name != "notes.txt" {
		t.Errorf("name: got %q, want notes.txt", att.Name)
	}
	if att.Disposition != "attachment" {
		t.Errorf("disposition: got %q, want attachment", att.Disposition)
	}
	if att.ReportedType != "application/octet-stream" {
		t.Errorf("reported type: got %q", att.ReportedType)
	}
	if att.Size != int64(len("some file content")) {
		t.Errorf("size: got %d", att.Size)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	t.Parallel()

	p := NewParser(testLogger())
	_, err := p.Parse(&models.IncomingMail{Data: []byte("not a mail message")})
	if err == nil {
		t.Fatal("expected an error for a message without headers")
	}
}

func TestParseEncodedSubject(t *testing.T) {
	t.Parallel()

	p := NewParser(testLogger())
	parsed, err := p.Parse(incoming(
		"From: a@example.com",
		"Subject: =?UTF-8?B?Z3LDvMOfZQ==?=",
		"Content-Type: text/plain",
		"",
		"hi",
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed.Subject.Value != "grüße" {
		t.Errorf("subject: got %q, want grüße", parsed.Subject.Value)
	}
}
