package logging

import (
	"log/syslog"
	"os"

	"github.com/inconshreveable/log15"
	"github.com/stephane-martin/mailsink/arguments"
)

func NewLogger(args *arguments.Args) log15.Logger {
	lvl, _ := log15.LvlFromString(args.Logging.LogLevel)
	logger := log15.New()

	if args.Logging.Syslog {
		logger.SetHandler(
			log15.LvlFilterHandler(
				lvl,
				log15.Must.SyslogHandler(
					syslog.LOG_INFO|syslog.LOG_DAEMON,
					"mailsink",
					log15.JsonFormat(),
				),
			),
		)
		return logger
	}

	logger.SetHandler(
		log15.LvlFilterHandler(
			lvl,
			log15.StreamHandler(
				os.Stderr,
				log15.LogfmtFormat(),
			),
		),
	)
	return logger
}
