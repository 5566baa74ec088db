package arguments

import (
	"github.com/urfave/cli"
)

type Args struct {
	HTTP      HTTPArgs
	SMTP      SMTPArgs
	Logging   LoggingArgs
	Forward   ForwardArgs
	Storage   StorageArgs
	Mailbox   MailboxArgs
	Collector CollectorArgs
	NoDKIM    bool
}

type argsI interface {
	Populate(c *cli.Context)
	Verify() error
}

func GetArgs(c *cli.Context) (*Args, error) {
	args := new(Args)

	toInit := []argsI{
		&args.HTTP,
		&args.SMTP,
		&args.Logging,
		&args.Forward,
		&args.Storage,
		&args.Mailbox,
		&args.Collector,
	}

	for _, i := range toInit {
		i.Populate(c)
		err := i.Verify()
		if err != nil {
			return nil, err
		}
	}

	args.NoDKIM = c.GlobalBool("no-dkim")

	return args, nil
}
