package services

import (
	"github.com/inconshreveable/log15"
	"github.com/urfave/cli"
	"go.uber.org/fx"

	"github.com/stephane-martin/mailsink/arguments"
	"github.com/stephane-martin/mailsink/collectors"
	"github.com/stephane-martin/mailsink/extractors"
	"github.com/stephane-martin/mailsink/forwarders"
	"github.com/stephane-martin/mailsink/ingest"
	"github.com/stephane-martin/mailsink/logging"
	"github.com/stephane-martin/mailsink/mailbox"
	"github.com/stephane-martin/mailsink/store"
)

// Builder is the composition root: every component is constructed here
// and handed its collaborators explicitly.
func Builder(c *cli.Context, args *arguments.Args, invoke fx.Option, logger log15.Logger) *fx.App {
	provides := []fx.Option{
		collectors.Service,
		forwarders.Service,
		store.Service,
		ingest.Service,
		mailbox.MailboxService,
		HTTPService,
		SMTPService,
		fx.Provide(
			func() *cli.Context { return c },
			func() *arguments.Args { return args },
			func() log15.Logger { return logger },
			func() extractors.Registry { return extractors.NewRegistry() },
			NewSMTPBackend,
		),
	}

	options := make([]fx.Option, 0)
	options = append(options, provides...)
	options = append(options, fx.Logger(logging.PrintfLogger{Logger: logger}))
	options = append(options, invoke)

	return fx.New(options...)
}
