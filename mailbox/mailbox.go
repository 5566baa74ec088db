// Package mailbox is the read side: recent messages for one recipient
// address, optionally run through a named extractor.
package mailbox

import (
	"context"
	"strconv"

	"github.com/inconshreveable/log15"
	"go.uber.org/fx"

	"github.com/stephane-martin/mailsink/extractors"
	"github.com/stephane-martin/mailsink/models"
	"github.com/stephane-martin/mailsink/store"
)

const (
	DefaultLimit = 10
	MinLimit     = 1
	MaxLimit     = 50
)

// ParseLimit is permissive by design: anything unparseable falls back
// to the default, parseable values are clamped into [MinLimit, MaxLimit].
func ParseLimit(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return DefaultLimit
	}
	if n < MinLimit {
		return MinLimit
	}
	if n > MaxLimit {
		return MaxLimit
	}
	return n
}

type Service struct {
	store      store.Store
	extractors extractors.Registry
	logger     log15.Logger
}

func NewService(s store.Store, reg extractors.Registry, logger log15.Logger) *Service {
	return &Service{store: s, extractors: reg, logger: logger}
}

// Recent returns the newest messages for addr. rawLimit is the
// unparsed limit query parameter. When extractorName names a registered
// extractor, it is applied to each row's text body and the result, if
// any, attached as parsed_code; rows without a match keep a null code.
func (s *Service) Recent(ctx context.Context, addr, rawLimit, extractorName string) ([]models.Email, error) {
	limit := ParseLimit(rawLimit)
	rows, err := s.store.ListByRecipient(ctx, addr, limit)
	if err != nil {
		return nil, err
	}

	extract, ok := s.extractors.Lookup(extractorName)
	if !ok {
		if extractorName != "" {
			s.logger.Debug("Unknown extractor requested", "name", extractorName)
		}
		return rows, nil
	}
	for i := range rows {
		if rows[i].Text == nil {
			continue
		}
		if code, found := extract(*rows[i].Text); found {
			rows[i].ParsedCode = &code
		}
	}
	return rows, nil
}

var MailboxService = fx.Provide(func(s store.Store, reg extractors.Registry, logger log15.Logger) *Service {
	return NewService(s, reg, logger)
})
