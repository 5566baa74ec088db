package arguments

import (
	"github.com/storozhukBM/verifier"
	"github.com/urfave/cli"
)

type CollectorArgs struct {
	QueueSize int
}

func (args *CollectorArgs) Populate(c *cli.Context) {
	args.QueueSize = c.GlobalInt("queue-size")
}

func (args CollectorArgs) Verify() error {
	v := verifier.New()
	v.That(args.QueueSize >= 0, "the queue size must not be negative")
	return v.GetError()
}
