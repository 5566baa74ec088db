// Package store persists message rows in SQLite. Every statement is a
// single parameterized statement; there are no multi-statement
// transactions anywhere in the pipeline.
package store

import (
	"context"

	"github.com/inconshreveable/log15"
	"go.uber.org/fx"

	"github.com/stephane-martin/mailsink/arguments"
	"github.com/stephane-martin/mailsink/models"
	"github.com/stephane-martin/mailsink/utils"
)

type Store interface {
	utils.Service
	// InsertEmail writes one message row and returns its surrogate key.
	InsertEmail(ctx context.Context, row models.Email) (int64, error)
	// ListByRecipient returns the newest rows whose recipient equals
	// addr, compared case-insensitively.
	ListByRecipient(ctx context.Context, addr string, limit int) ([]models.Email, error)
	Close() error
}

type Params struct {
	fx.In
	Args   *arguments.Args `optional:"true"`
	Logger log15.Logger    `optional:"true"`
}

var Service = fx.Provide(func(lc fx.Lifecycle, params Params) (Store, error) {
	logger := params.Logger
	if logger == nil {
		logger = log15.New()
		logger.SetHandler(log15.DiscardHandler())
	}
	path := "mailsink.db"
	if params.Args != nil {
		path = params.Args.Storage.Path
	}
	s, err := NewSQLiteStore(path, logger)
	if err != nil {
		return nil, err
	}
	utils.Append(lc, s, logger)
	return s, nil
})
