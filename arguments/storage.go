package arguments

import (
	"strings"

	"github.com/storozhukBM/verifier"
	"github.com/urfave/cli"
)

type StorageArgs struct {
	Path string
}

func (args *StorageArgs) Populate(c *cli.Context) {
	args.Path = strings.TrimSpace(c.GlobalString("db"))
}

func (args StorageArgs) Verify() error {
	v := verifier.New()
	v.That(len(args.Path) > 0, "the database path is empty")
	return v.GetError()
}
