package arguments

import (
	"strings"

	"github.com/storozhukBM/verifier"
	"github.com/urfave/cli"
)

type SMTPArgs struct {
	ListenAddr     string
	ListenPort     int
	MaxMessageSize int
}

func (args *SMTPArgs) Populate(c *cli.Context) {
	args.ListenAddr = strings.TrimSpace(c.GlobalString("smtp-addr"))
	args.ListenPort = c.GlobalInt("smtp-port")
	args.MaxMessageSize = c.GlobalInt("max-size")
}

func (args SMTPArgs) Verify() error {
	v := verifier.New()
	v.That(len(args.ListenAddr) > 0, "SMTP listen address is empty")
	v.That(args.ListenPort > 0, "SMTP listen port must be positive")
	v.That(args.MaxMessageSize >= 0, "the maximum message size must not be negative")
	return v.GetError()
}
