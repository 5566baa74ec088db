package forwarders

import (
	"context"

	"github.com/stephane-martin/mailsink/models"
)

type DummyForwarder struct{}

func (DummyForwarder) Forward(_ context.Context, _ string, _ *models.IncomingMail) error {
	return nil
}
