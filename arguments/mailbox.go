package arguments

import (
	"strings"

	"github.com/storozhukBM/verifier"
	"github.com/urfave/cli"
)

type MailboxArgs struct {
	// Domain is the recipient domain handed out by /email/create. A
	// catch-all rule at the mail provider is expected to route every
	// address under it to this service.
	Domain string
}

func (args *MailboxArgs) Populate(c *cli.Context) {
	args.Domain = strings.ToLower(strings.TrimSpace(c.GlobalString("domain")))
}

func (args MailboxArgs) Verify() error {
	v := verifier.New()
	v.That(len(args.Domain) > 0, "the mailbox domain is empty")
	v.That(!strings.Contains(args.Domain, "@"), "the mailbox domain must not contain '@'")
	return v.GetError()
}
