package arguments

import (
	"net"
	"net/url"
	"strings"

	"github.com/storozhukBM/verifier"
	"github.com/urfave/cli"
)

// ForwardArgs describes the best-effort forwarding setup: the
// destination addresses (semicolon-delimited setting, empty allowed)
// and the SMTP relay used to deliver to them.
type ForwardArgs struct {
	Addresses []string
	RelayURL  string
}

// SplitAddresses splits the raw forward setting on ';', trims each
// piece and drops empty ones.
func SplitAddresses(raw string) []string {
	addrs := make([]string, 0)
	for _, piece := range strings.Split(raw, ";") {
		piece = strings.TrimSpace(piece)
		if len(piece) > 0 {
			addrs = append(addrs, piece)
		}
	}
	return addrs
}

func (args *ForwardArgs) Populate(c *cli.Context) {
	args.Addresses = SplitAddresses(c.GlobalString("forward"))
	args.RelayURL = strings.TrimSpace(c.GlobalString("relay"))
}

func (args ForwardArgs) Parsed() (scheme, host, port, username, password string) {
	if args.RelayURL == "" {
		return "", "", "", "", ""
	}
	u, err := url.Parse(args.RelayURL)
	if err != nil {
		return "", "", "", "", ""
	}
	host, port, _ = net.SplitHostPort(u.Host)
	password, _ = u.User.Password()
	return strings.ToLower(strings.TrimSpace(u.Scheme)),
		strings.TrimSpace(host),
		strings.TrimSpace(port),
		strings.TrimSpace(u.User.Username()),
		strings.TrimSpace(password)
}

func (args ForwardArgs) Verify() error {
	if len(args.Addresses) == 0 {
		return nil
	}
	v := verifier.New()
	v.That(len(args.RelayURL) > 0, "forward addresses are set but no relay URL is configured")
	u, err := url.Parse(args.RelayURL)
	v.That(err == nil, "invalid relay URL")
	if err == nil {
		scheme := strings.ToLower(strings.TrimSpace(u.Scheme))
		v.That(scheme == "smtp" || scheme == "smtps", "relay URL scheme is not smtp")
		v.That(len(u.Host) > 0, "relay host is empty")
		h, p, err := net.SplitHostPort(u.Host)
		v.That(err == nil, "relay host must be host:port")
		v.That(len(h) > 0, "relay host is empty")
		v.That(len(p) > 0, "relay port is empty")
	}
	return v.GetError()
}
