package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/inconshreveable/log15"
	"github.com/urfave/cli"

	"github.com/stephane-martin/mailsink/models"
	"github.com/stephane-martin/mailsink/parser"
)

// ParseAction is a one-shot debugging helper: parse and normalize a
// single raw message from stdin without touching storage or forwarding.
func ParseAction(c *cli.Context) error {
	logger := log15.New()
	logger.SetHandler(log15.LvlFilterHandler(log15.LvlWarn, log15.StreamHandler(os.Stderr, log15.LogfmtFormat())))

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return cli.NewExitError(fmt.Sprintf("error reading stdin: %s", err), 1)
	}
	m := &models.IncomingMail{
		BaseInfos: models.BaseInfos{
			Family:       "stdin",
			TimeReported: time.Now(),
		},
		Data: data,
	}
	parsed, err := parser.NewParser(logger).Parse(m)
	if err != nil {
		return cli.NewExitError(fmt.Sprintf("error parsing message: %s", err), 1)
	}
	row := parser.Normalize(parsed, m.BaseInfos)

	out := struct {
		models.Email
		Attachments []*models.Attachment `json:"attachments,omitempty"`
	}{Email: row, Attachments: parsed.Attachments}

	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return cli.NewExitError(fmt.Sprintf("error encoding result: %s", err), 1)
	}
	fmt.Println(string(b))
	return nil
}
