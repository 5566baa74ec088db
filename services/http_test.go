package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/inconshreveable/log15"

	"github.com/stephane-martin/mailsink/arguments"
	"github.com/stephane-martin/mailsink/collectors"
	"github.com/stephane-martin/mailsink/extractors"
	"github.com/stephane-martin/mailsink/mailbox"
	"github.com/stephane-martin/mailsink/models"
)

func testLogger() log15.Logger {
	logger := log15.New()
	logger.SetHandler(log15.DiscardHandler())
	return logger
}

type fakeStore struct {
	rows []models.Email
	err  error
}

func (f *fakeStore) Name() string { return "fakeStore" }
func (f *fakeStore) Close() error { return nil }

func (f *fakeStore) InsertEmail(_ context.Context, _ models.Email) (int64, error) {
	return 0, errors.New("not implemented")
}

func (f *fakeStore) ListByRecipient(_ context.Context, _ string, _ int) ([]models.Email, error) {
	return f.rows, f.err
}

func strptr(s string) *string { return &s }

func testRouter(f *fakeStore) http.Handler {
	logger := testLogger()
	args := &arguments.Args{
		Mailbox: arguments.MailboxArgs{Domain: "sink.example.com"},
		SMTP:    arguments.SMTPArgs{MaxMessageSize: 1 << 20},
	}
	box := mailbox.NewService(f, extractors.NewRegistry(), logger)
	collector := collectors.NewChanCollector(10, logger)
	return NewRouter(args, box, collector, logger)
}

func TestEmailCreate(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "http://sink.example.com/email/create", nil)
	testRouter(&fakeStore{}).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", w.Code)
	}
	var body struct {
		Success bool `json:"success"`
		Data    struct {
			FetchEndpoint string `json:"fetch_endpoint"`
			Address       string `json:"address"`
			Mode          string `json:"mode"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Success {
		t.Error("success: got false")
	}
	if body.Data.Mode != "catch_all_worker_rule" {
		t.Errorf("mode: got %q", body.Data.Mode)
	}
	if !strings.HasSuffix(body.Data.Address, "@sink.example.com") {
		t.Errorf("address: got %q, want the configured domain", body.Data.Address)
	}
	local := strings.TrimSuffix(body.Data.Address, "@sink.example.com")
	if len(local) == 0 || strings.ToLower(local) != local {
		t.Errorf("local part: got %q, want non-empty lowercase", local)
	}
	if body.Data.FetchEndpoint != "http://sink.example.com/email/"+body.Data.Address {
		t.Errorf("fetch_endpoint: got %q", body.Data.FetchEndpoint)
	}
}

func TestEmailListWithParser(t *testing.T) {
	t.Parallel()

	f := &fakeStore{rows: []models.Email{
		{ID: 1, Subject: "code", To: "a@x.com", Text: strptr("one-time code is: 340325")},
	}}
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/email/a%40x.com?limit=5&parser=cursor", nil)
	testRouter(f).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200, body %s", w.Code, w.Body.String())
	}
	var body struct {
		Success bool           `json:"success"`
		Data    []models.Email `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Data) != 1 {
		t.Fatalf("rows: got %d, want 1", len(body.Data))
	}
	if body.Data[0].ParsedCode == nil || *body.Data[0].ParsedCode != "340325" {
		t.Errorf("parsed_code: got %v, want 340325", body.Data[0].ParsedCode)
	}
}

func TestEmailListStoreFailure(t *testing.T) {
	t.Parallel()

	f := &fakeStore{err: errors.New("db gone")}
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/email/a%40x.com", nil)
	testRouter(f).ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status: got %d, want 500", w.Code)
	}
	var body struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
		Details string `json:"details"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Success {
		t.Error("success: got true, want false")
	}
	if !strings.Contains(body.Details, "db gone") {
		t.Errorf("details: got %q, want the storage error", body.Details)
	}
}

func TestUnknownPathIs404(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	req := httptest.NewRequest("DELETE", "/email/a%40x.com", nil)
	testRouter(&fakeStore{}).ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want 404", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Invalid path") {
		t.Errorf("body: got %q", w.Body.String())
	}
}

func TestRootRedirectsToUI(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)
	testRouter(&fakeStore{}).ServeHTTP(w, req)

	if w.Code != http.StatusFound {
		t.Fatalf("status: got %d, want 302", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/ui" {
		t.Errorf("location: got %q, want /ui", loc)
	}
}

func TestSubmitMessage(t *testing.T) {
	t.Parallel()

	logger := testLogger()
	args := &arguments.Args{
		Mailbox: arguments.MailboxArgs{Domain: "sink.example.com"},
		SMTP:    arguments.SMTPArgs{MaxMessageSize: 1 << 20},
	}
	box := mailbox.NewService(&fakeStore{}, extractors.NewRegistry(), logger)
	collector := collectors.NewChanCollector(10, logger)
	r := NewRouter(args, box, collector, logger)

	raw := "From: a@x.com\r\nSubject: hi\r\n\r\nbody"
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/messages?from=env@x.com&to=inbox@x.com", strings.NewReader(raw))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusAccepted {
		t.Fatalf("status: got %d, want 202, body %s", w.Code, w.Body.String())
	}

	m, err := collector.Pull(make(chan struct{}))
	if err != nil {
		t.Fatalf("pull: %v", err)
	}
	if m.MailFrom != "env@x.com" {
		t.Errorf("mail_from: got %q", m.MailFrom)
	}
	if len(m.RcptTo) != 1 || m.RcptTo[0] != "inbox@x.com" {
		t.Errorf("rcpt_to: got %v", m.RcptTo)
	}
	if string(m.Data) != raw {
		t.Errorf("data: got %q", string(m.Data))
	}
}
