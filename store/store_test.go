package store

import (
	"context"
	"testing"
	"time"

	"github.com/inconshreveable/log15"

	"github.com/stephane-martin/mailsink/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	logger := log15.New()
	logger.SetHandler(log15.DiscardHandler())
	s, err := NewSQLiteStore(":memory:", logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := s.Prestart(); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func strptr(s string) *string { return &s }

func TestInsertAndList(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.InsertEmail(ctx, models.Email{
		Subject: "hi",
		From:    "a@x.com",
		To:      "User@Example.com",
		Text:    strptr("body"),
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if id <= 0 {
		t.Fatalf("id: got %d, want > 0", id)
	}

	rows, err := s.ListByRecipient(ctx, "user@example.com", 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows: got %d, want 1 (case-insensitive match)", len(rows))
	}
	got := rows[0]
	if got.Subject != "hi" || got.From != "a@x.com" || got.To != "User@Example.com" {
		t.Errorf("row: got %+v", got)
	}
	if got.Text == nil || *got.Text != "body" {
		t.Errorf("text: got %v, want body", got.Text)
	}
	if got.HTML != nil {
		t.Errorf("html: got %v, want null", *got.HTML)
	}
	if got.CreatedAt.IsZero() {
		t.Error("createdAt should be set")
	}
}

func TestListNewestFirstAndLimit(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		_, err := s.InsertEmail(ctx, models.Email{
			Subject:   string(rune('a' + i)),
			From:      "None",
			To:        "inbox@x.com",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}

	rows, err := s.ListByRecipient(ctx, "inbox@x.com", 3)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows: got %d, want 3", len(rows))
	}
	for i, want := range []string{"e", "d", "c"} {
		if rows[i].Subject != want {
			t.Errorf("row %d: got subject %q, want %q", i, rows[i].Subject, want)
		}
	}
}

func TestListUnknownRecipient(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	rows, err := s.ListByRecipient(context.Background(), "nobody@x.com", 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("rows: got %d, want 0", len(rows))
	}
}
