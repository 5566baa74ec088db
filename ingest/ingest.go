// Package ingest runs the write side: every collected message is
// parsed, persisted and forwarded, with each stage isolated so that a
// failure in one never cancels the others. Mail must keep flowing to
// the forward targets through a storage outage, and a parse failure
// must not cause silent mail loss.
package ingest

import (
	"bytes"
	"context"
	"runtime"

	"github.com/emersion/go-msgauth/dkim"
	"github.com/inconshreveable/log15"
	"github.com/oklog/ulid"
	"go.uber.org/fx"
	"golang.org/x/sync/errgroup"

	"github.com/stephane-martin/mailsink/arguments"
	"github.com/stephane-martin/mailsink/collectors"
	"github.com/stephane-martin/mailsink/forwarders"
	"github.com/stephane-martin/mailsink/metrics"
	"github.com/stephane-martin/mailsink/models"
	"github.com/stephane-martin/mailsink/parser"
	"github.com/stephane-martin/mailsink/store"
	"github.com/stephane-martin/mailsink/utils"
)

type Ingester struct {
	parser    *parser.Parser
	store     store.Store
	forwarder forwarders.Forwarder
	collector collectors.Collector
	targets   []string
	nbWorkers int
	noDKIM    bool
	logger    log15.Logger
}

func NewIngester(
	p *parser.Parser,
	s store.Store,
	f forwarders.Forwarder,
	c collectors.Collector,
	targets []string,
	nbWorkers int,
	noDKIM bool,
	logger log15.Logger,
) *Ingester {
	if nbWorkers <= 0 {
		nbWorkers = 1
	}
	return &Ingester{
		parser:    p,
		store:     s,
		forwarder: f,
		collector: c,
		targets:   targets,
		nbWorkers: nbWorkers,
		noDKIM:    noDKIM,
		logger:    logger,
	}
}

func (i *Ingester) Name() string { return "Ingester" }

// Start pulls from the collector until the context is done.
func (i *Ingester) Start(ctx context.Context) error {
	if i.collector == nil {
		<-ctx.Done()
		return nil
	}
	g, lCtx := errgroup.WithContext(ctx)
	for w := 0; w < i.nbWorkers; w++ {
		g.Go(func() error {
			for {
				m, err := i.collector.PullCtx(lCtx)
				if err == context.Canceled {
					return err
				}
				if err != nil {
					i.logger.Warn("Error fetching mail from collector", "error", err)
					continue
				}
				if m == nil {
					continue
				}
				i.Ingest(lCtx, m)
			}
		})
	}
	return g.Wait()
}

// Outcome is the result of one forward attempt.
type Outcome struct {
	Rcpt string
	Err  error
}

// Ingest drives one message through parse, persist and forward. It
// never returns an error: every failure is logged and the remaining
// stages still run. Forwarding in particular is attempted even when
// parsing or persistence failed.
func (i *Ingester) Ingest(ctx context.Context, m *models.IncomingMail) {
	logger := i.logger.New("uid", ulid.ULID(m.UID).String())

	parsed, err := i.parser.Parse(m)
	if err != nil {
		metrics.M().ParsingErrors.WithLabelValues(m.Family).Inc()
		logger.Warn("Failed to parse message, only forwarding it", "error", err)
	}

	if parsed != nil {
		if !i.noDKIM {
			i.verifyDKIM(m, logger)
		}
		// TODO: persist attachment rows; the attachment table and its
		// foreign key already exist in store.
		for _, att := range parsed.Attachments {
			logger.Info("Attachment observed",
				"filename", att.Name,
				"disposition", att.Disposition,
				"reported_type", att.ReportedType,
				"inferred_type", att.InferredType,
				"size", att.Size,
			)
		}

		row := parser.Normalize(parsed, m.BaseInfos)
		id, err := i.store.InsertEmail(ctx, row)
		if err != nil {
			metrics.M().InsertErrors.Inc()
			logger.Warn("Failed to persist message", "error", err)
		} else {
			logger.Info("Message persisted", "id", id, "to", row.To)
		}
	}

	for _, outcome := range i.forward(ctx, m) {
		if outcome.Err != nil {
			metrics.M().ForwardErrors.WithLabelValues(outcome.Rcpt).Inc()
			logger.Warn("Error forwarding message", "rcpt", outcome.Rcpt, "error", outcome.Err)
		} else {
			logger.Debug("Message forwarded", "rcpt", outcome.Rcpt)
		}
	}
}

// forward makes one attempt per configured target and collects every
// outcome; it never short-circuits on failure.
func (i *Ingester) forward(ctx context.Context, m *models.IncomingMail) []Outcome {
	outcomes := make([]Outcome, 0, len(i.targets))
	for _, rcpt := range i.targets {
		metrics.M().Forwarded.WithLabelValues(rcpt).Inc()
		outcomes = append(outcomes, Outcome{
			Rcpt: rcpt,
			Err:  i.forwarder.Forward(ctx, rcpt, m),
		})
	}
	return outcomes
}

func (i *Ingester) verifyDKIM(m *models.IncomingMail, logger log15.Logger) {
	verifications, err := dkim.Verify(bytes.NewReader(m.Data))
	if err != nil {
		logger.Debug("DKIM verification did not run", "error", err)
		return
	}
	for _, v := range verifications {
		if v.Err != nil {
			logger.Info("DKIM signature failed", "domain", v.Domain, "error", v.Err)
		} else {
			logger.Debug("DKIM signature verified", "domain", v.Domain, "identifier", v.Identifier)
		}
	}
}

type Params struct {
	fx.In
	Args      *arguments.Args      `optional:"true"`
	Store     store.Store          `optional:"true"`
	Forwarder forwarders.Forwarder `optional:"true"`
	Collector collectors.Collector `optional:"true"`
	Logger    log15.Logger         `optional:"true"`
}

var Service = fx.Provide(func(lc fx.Lifecycle, params Params) *Ingester {
	logger := params.Logger
	if logger == nil {
		logger = log15.New()
		logger.SetHandler(log15.DiscardHandler())
	}
	var targets []string
	noDKIM := false
	if params.Args != nil {
		targets = params.Args.Forward.Addresses
		noDKIM = params.Args.NoDKIM
	}
	i := NewIngester(
		parser.NewParser(logger),
		params.Store,
		params.Forwarder,
		params.Collector,
		targets,
		runtime.NumCPU(),
		noDKIM,
		logger,
	)
	utils.Append(lc, i, logger)
	return i
})
