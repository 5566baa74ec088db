package store

import (
	"context"
	"time"

	"github.com/inconshreveable/log15"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/stephane-martin/mailsink/models"
)

// "from", "to" and "text" need quoting in SQLite; the schema keeps the
// historical column names of the service it replaces.
const schema = `
CREATE TABLE IF NOT EXISTS email (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	subject   TEXT NOT NULL DEFAULT 'None',
	"from"    TEXT NOT NULL DEFAULT 'None',
	"to"      TEXT NOT NULL DEFAULT 'None',
	html      TEXT,
	"text"    TEXT,
	createdAt TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS attachment (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	emailId     INTEGER NOT NULL REFERENCES email(id),
	filename    TEXT,
	disposition TEXT,
	mimeType    TEXT,
	size        INTEGER
);

CREATE INDEX IF NOT EXISTS email_to_idx ON email("to");
`

const insertStmt = `INSERT INTO email (subject, "from", "to", html, "text", createdAt) VALUES (?, ?, ?, ?, ?, ?)`

const selectStmt = `SELECT id, subject, "from", "to", html, "text", createdAt
FROM email WHERE LOWER("to") = LOWER(?) ORDER BY createdAt DESC, id DESC LIMIT ?`

type SQLiteStore struct {
	db     *sqlx.DB
	path   string
	logger log15.Logger
}

func NewSQLiteStore(path string, logger log15.Logger) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}
	// modernc sqlite serializes writes itself, but a single connection
	// avoids SQLITE_BUSY under concurrent readers.
	db.SetMaxOpenConns(1)
	return &SQLiteStore{db: db, path: path, logger: logger}, nil
}

func (s *SQLiteStore) Name() string { return "SQLiteStore" }

func (s *SQLiteStore) Prestart() error {
	if _, err := s.db.Exec(schema); err != nil {
		return errors.Wrap(err, "failed to apply schema")
	}
	s.logger.Debug("Database ready", "path", s.path)
	return nil
}

func (s *SQLiteStore) InsertEmail(ctx context.Context, row models.Email) (int64, error) {
	createdAt := row.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx, insertStmt,
		row.Subject, row.From, row.To, row.HTML, row.Text, createdAt)
	if err != nil {
		return 0, errors.Wrap(err, "insert email")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, errors.Wrap(err, "insert email")
	}
	return id, nil
}

func (s *SQLiteStore) ListByRecipient(ctx context.Context, addr string, limit int) ([]models.Email, error) {
	rows := make([]models.Email, 0, limit)
	err := s.db.SelectContext(ctx, &rows, selectStmt, addr, limit)
	if err != nil {
		return nil, errors.Wrap(err, "select emails")
	}
	return rows, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
