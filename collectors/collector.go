// Package collectors queues incoming messages between the transports
// and the ingestion workers.
package collectors

import (
	"context"

	"github.com/inconshreveable/log15"
	"go.uber.org/fx"

	"github.com/stephane-martin/mailsink/arguments"
	"github.com/stephane-martin/mailsink/models"
)

type Collector interface {
	Push(stop <-chan struct{}, m *models.IncomingMail) error
	PushCtx(ctx context.Context, m *models.IncomingMail) error
	Pull(stop <-chan struct{}) (*models.IncomingMail, error)
	PullCtx(ctx context.Context) (*models.IncomingMail, error)
	Close() error
}

type Params struct {
	fx.In
	Args   *arguments.Args `optional:"true"`
	Logger log15.Logger    `optional:"true"`
}

var Service = fx.Provide(func(params Params) Collector {
	logger := params.Logger
	if logger == nil {
		logger = log15.New()
		logger.SetHandler(log15.DiscardHandler())
	}
	size := 0
	if params.Args != nil {
		size = params.Args.Collector.QueueSize
	}
	return NewChanCollector(size, logger)
})
