// Package forwarders re-delivers raw messages to downstream addresses
// through an SMTP relay. Forwarding is fire-and-forget per recipient:
// one attempt, no retry, no rollback.
package forwarders

import (
	"context"
	"fmt"

	"github.com/inconshreveable/log15"
	"go.uber.org/fx"

	"github.com/stephane-martin/mailsink/arguments"
	"github.com/stephane-martin/mailsink/models"
)

type Forwarder interface {
	// Forward makes one delivery attempt of the raw message to rcpt.
	Forward(ctx context.Context, rcpt string, mail *models.IncomingMail) error
}

func Build(args arguments.ForwardArgs, logger log15.Logger) (Forwarder, error) {
	scheme, host, port, username, password := args.Parsed()
	if host == "" {
		logger.Info("No forwarding relay configured")
		return new(DummyForwarder), nil
	}
	switch scheme {
	case "smtp", "smtps":
		logger.Info("Forwarding through SMTP relay", "scheme", scheme, "host", host, "port", port)
		return NewSMTPForwarder(scheme, host, port, username, password, logger), nil
	default:
		return nil, fmt.Errorf("unknown relay scheme: %s", scheme)
	}
}

type Params struct {
	fx.In
	Args   *arguments.Args `optional:"true"`
	Logger log15.Logger    `optional:"true"`
}

var Service = fx.Provide(func(params Params) (Forwarder, error) {
	logger := params.Logger
	if logger == nil {
		logger = log15.New()
		logger.SetHandler(log15.DiscardHandler())
	}
	if params.Args == nil {
		return new(DummyForwarder), nil
	}
	return Build(params.Args.Forward, logger)
})
