package collectors

import (
	"context"
	"sync"

	"github.com/inconshreveable/log15"

	"github.com/stephane-martin/mailsink/metrics"
	"github.com/stephane-martin/mailsink/models"
	"github.com/stephane-martin/mailsink/utils"
)

type ChanCollector struct {
	ch     chan *models.IncomingMail
	once   sync.Once
	logger log15.Logger
}

func NewChanCollector(size int, logger log15.Logger) *ChanCollector {
	if size <= 0 {
		size = 10000
	}
	return &ChanCollector{
		ch:     make(chan *models.IncomingMail, size),
		logger: logger,
	}
}

func (c *ChanCollector) Push(stop <-chan struct{}, m *models.IncomingMail) error {
	m.UID = utils.NewULID()
	metrics.M().MailFrom.WithLabelValues(m.MailFrom).Inc()
	for _, r := range m.RcptTo {
		metrics.M().MailTo.WithLabelValues(r).Inc()
	}
	select {
	case c.ch <- m:
		metrics.M().CollectorSize.Inc()
		c.logger.Debug("New message pushed to collector")
		return nil
	case <-stop:
		return context.Canceled
	}
}

func (c *ChanCollector) PushCtx(ctx context.Context, m *models.IncomingMail) error {
	return c.Push(ctx.Done(), m)
}

func (c *ChanCollector) Pull(stop <-chan struct{}) (*models.IncomingMail, error) {
	select {
	case m, ok := <-c.ch:
		if ok {
			metrics.M().CollectorSize.Dec()
			return m, nil
		}
		return nil, context.Canceled
	case <-stop:
		return nil, context.Canceled
	}
}

func (c *ChanCollector) PullCtx(ctx context.Context) (*models.IncomingMail, error) {
	return c.Pull(ctx.Done())
}

func (c *ChanCollector) Close() error {
	c.once.Do(func() {
		c.logger.Debug("Closing collector")
		close(c.ch)
	})
	return nil
}
