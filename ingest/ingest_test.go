package ingest

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/inconshreveable/log15"

	"github.com/stephane-martin/mailsink/arguments"
	"github.com/stephane-martin/mailsink/models"
	"github.com/stephane-martin/mailsink/parser"
)

func testLogger() log15.Logger {
	logger := log15.New()
	logger.SetHandler(log15.DiscardHandler())
	return logger
}

type fakeStore struct {
	inserted []models.Email
	err      error
}

func (f *fakeStore) Name() string { return "fakeStore" }
func (f *fakeStore) Close() error { return nil }

func (f *fakeStore) InsertEmail(_ context.Context, row models.Email) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.inserted = append(f.inserted, row)
	return int64(len(f.inserted)), nil
}

func (f *fakeStore) ListByRecipient(_ context.Context, _ string, _ int) ([]models.Email, error) {
	return nil, errors.New("not implemented")
}

type fakeForwarder struct {
	attempts []string
	failFor  map[string]error
}

func (f *fakeForwarder) Forward(_ context.Context, rcpt string, _ *models.IncomingMail) error {
	f.attempts = append(f.attempts, rcpt)
	if err, ok := f.failFor[rcpt]; ok {
		return err
	}
	return nil
}

func rawMail(lines ...string) *models.IncomingMail {
	return &models.IncomingMail{
		BaseInfos: models.BaseInfos{MailFrom: "sender@x.com", RcptTo: []string{"inbox@x.com"}},
		Data:      []byte(strings.Join(lines, "\r\n")),
	}
}

func newTestIngester(s *fakeStore, f *fakeForwarder, targets []string) *Ingester {
	logger := testLogger()
	return NewIngester(parser.NewParser(logger), s, f, nil, targets, 1, true, logger)
}

func TestIngestPersistsAndForwards(t *testing.T) {
	t.Parallel()

	s := &fakeStore{}
	f := &fakeForwarder{}
	i := newTestIngester(s, f, []string{"a@x.com", "b@x.com"})

	i.Ingest(context.Background(), rawMail(
		"From: someone@y.com",
		"Subject: hello",
		"Content-Type: text/plain",
		"",
		"body text",
	))

	if len(s.inserted) != 1 {
		t.Fatalf("inserted: got %d rows, want 1", len(s.inserted))
	}
	row := s.inserted[0]
	if row.To != "inbox@x.com" {
		t.Errorf("to: got %q, want the envelope recipient", row.To)
	}
	if row.From != "sender@x.com" {
		t.Errorf("from: got %q, want the envelope sender", row.From)
	}
	if len(f.attempts) != 2 {
		t.Errorf("forward attempts: got %v, want both targets", f.attempts)
	}
}

func TestForwardAddressSplitting(t *testing.T) {
	t.Parallel()

	targets := arguments.SplitAddresses("a@x.com;;  b@x.com")
	if len(targets) != 2 || targets[0] != "a@x.com" || targets[1] != "b@x.com" {
		t.Fatalf("targets: got %v, want [a@x.com b@x.com]", targets)
	}

	s := &fakeStore{}
	f := &fakeForwarder{failFor: map[string]error{"a@x.com": errors.New("relay refused")}}
	i := newTestIngester(s, f, targets)

	i.Ingest(context.Background(), rawMail(
		"Subject: x",
		"Content-Type: text/plain",
		"",
		"hi",
	))

	if len(f.attempts) != 2 {
		t.Fatalf("attempts: got %v, want two despite the first failing", f.attempts)
	}
	if f.attempts[0] != "a@x.com" || f.attempts[1] != "b@x.com" {
		t.Errorf("attempts: got %v", f.attempts)
	}
}

func TestIngestParseFailureStillForwards(t *testing.T) {
	t.Parallel()

	s := &fakeStore{}
	f := &fakeForwarder{}
	i := newTestIngester(s, f, []string{"a@x.com"})

	i.Ingest(context.Background(), &models.IncomingMail{Data: []byte("complete garbage")})

	if len(s.inserted) != 0 {
		t.Errorf("inserted: got %d rows, want 0 after a parse failure", len(s.inserted))
	}
	if len(f.attempts) != 1 {
		t.Errorf("attempts: got %v, want the forward to happen anyway", f.attempts)
	}
}

func TestIngestInsertFailureStillForwards(t *testing.T) {
	t.Parallel()

	s := &fakeStore{err: errors.New("database is down")}
	f := &fakeForwarder{}
	i := newTestIngester(s, f, []string{"a@x.com"})

	i.Ingest(context.Background(), rawMail(
		"Subject: x",
		"Content-Type: text/plain",
		"",
		"hi",
	))

	if len(f.attempts) != 1 {
		t.Errorf("attempts: got %v, want the forward to happen despite the insert failure", f.attempts)
	}
}

func TestIngestNoTargets(t *testing.T) {
	t.Parallel()

	s := &fakeStore{}
	f := &fakeForwarder{}
	i := newTestIngester(s, f, arguments.SplitAddresses(""))

	i.Ingest(context.Background(), rawMail(
		"Subject: x",
		"Content-Type: text/plain",
		"",
		"hi",
	))

	if len(f.attempts) != 0 {
		t.Errorf("attempts: got %v, want none", f.attempts)
	}
	if len(s.inserted) != 1 {
		t.Errorf("inserted: got %d rows, want 1", len(s.inserted))
	}
}
