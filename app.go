package main

import (
	"github.com/urfave/cli"

	"github.com/stephane-martin/mailsink/services"
)

func MakeApp() *cli.App {
	app := cli.NewApp()
	app.Name = "mailsink"
	app.Usage = "catch-all mailbox sink: store incoming mail, forward it, read it back over HTTP"
	app.Version = Version
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "http-addr",
			Usage:  "HTTP listen address",
			Value:  "127.0.0.1",
			EnvVar: "MAILSINK_HTTP_ADDR",
		},
		cli.IntFlag{
			Name:   "http-port",
			Usage:  "HTTP listen port",
			Value:  8080,
			EnvVar: "MAILSINK_HTTP_PORT",
		},
		cli.StringFlag{
			Name:   "smtp-addr",
			Usage:  "SMTP listen address",
			Value:  "0.0.0.0",
			EnvVar: "MAILSINK_SMTP_ADDR",
		},
		cli.IntFlag{
			Name:   "smtp-port",
			Usage:  "SMTP listen port",
			Value:  2525,
			EnvVar: "MAILSINK_SMTP_PORT",
		},
		cli.IntFlag{
			Name:   "max-size",
			Usage:  "maximum incoming message size in bytes",
			Value:  10 * 1024 * 1024,
			EnvVar: "MAILSINK_MAX_SIZE",
		},
		cli.StringFlag{
			Name:   "domain",
			Usage:  "recipient domain for generated addresses (a catch-all rule should route it here)",
			Value:  "localhost",
			EnvVar: "MAILSINK_DOMAIN",
		},
		cli.StringFlag{
			Name:   "forward",
			Usage:  "semicolon-delimited addresses to forward every received message to (empty: forward to nobody)",
			Value:  "",
			EnvVar: "MAILSINK_FORWARD",
		},
		cli.StringFlag{
			Name:   "relay",
			Usage:  "SMTP connection URL (eg. smtp://127.0.0.1:25) used to deliver forwarded messages",
			Value:  "",
			EnvVar: "MAILSINK_RELAY",
		},
		cli.StringFlag{
			Name:   "db",
			Usage:  "path of the sqlite database file",
			Value:  "mailsink.db",
			EnvVar: "MAILSINK_DB",
		},
		cli.IntFlag{
			Name:   "queue-size,q",
			Usage:  "size of the internal message queue",
			Value:  10000,
			EnvVar: "MAILSINK_QUEUE_SIZE",
		},
		cli.StringFlag{
			Name:   "loglevel",
			Usage:  "logging level",
			Value:  "info",
			EnvVar: "MAILSINK_LOGLEVEL",
		},
		cli.BoolFlag{
			Name:   "syslog",
			Usage:  "write logs to syslog instead of stderr",
			EnvVar: "MAILSINK_SYSLOG",
		},
		cli.BoolFlag{
			Name:   "no-dkim",
			Usage:  "do not verify DKIM signatures of received messages",
			EnvVar: "MAILSINK_NO_DKIM",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:   "serve",
			Usage:  "receive, store and forward messages, and serve the read API",
			Action: services.ServeAction,
		},
		{
			Name:   "parse",
			Usage:  "read one raw message from stdin and print the normalized record as JSON",
			Action: ParseAction,
		},
	}
	return app
}
