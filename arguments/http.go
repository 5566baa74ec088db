package arguments

import (
	"strings"

	"github.com/storozhukBM/verifier"
	"github.com/urfave/cli"
)

type HTTPArgs struct {
	ListenAddr string
	ListenPort int
}

func (args *HTTPArgs) Populate(c *cli.Context) {
	args.ListenAddr = strings.TrimSpace(c.GlobalString("http-addr"))
	args.ListenPort = c.GlobalInt("http-port")
}

func (args HTTPArgs) Verify() error {
	v := verifier.New()
	v.That(len(args.ListenAddr) > 0, "HTTP listen address is empty")
	v.That(args.ListenPort > 0, "HTTP listen port must be positive")
	return v.GetError()
}
