package services

import (
	"fmt"

	"github.com/urfave/cli"
	"go.uber.org/fx"

	"github.com/stephane-martin/mailsink/arguments"
	"github.com/stephane-martin/mailsink/ingest"
	"github.com/stephane-martin/mailsink/logging"
)

// ServeAction runs the full service: SMTP sink, HTTP API and the
// ingestion workers, until a stop signal.
func ServeAction(c *cli.Context) error {
	args, err := arguments.GetArgs(c)
	if err != nil {
		err = fmt.Errorf("error validating cli arguments: %s", err)
		return cli.NewExitError(err.Error(), 1)
	}

	logger := logging.NewLogger(args)
	invoke := fx.Invoke(func(h *HTTPServer, s *SMTPServer, i *ingest.Ingester) {
		// bootstrap the application
	})

	app := Builder(c, args, invoke, logger)
	app.Run()
	return nil
}
