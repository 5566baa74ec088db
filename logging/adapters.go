package logging

import (
	"fmt"
	"strings"

	"github.com/inconshreveable/log15"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type PrometheusLogger struct {
	Logger log15.Logger
}

func (a PrometheusLogger) Println(v ...interface{}) {
	a.Logger.Error(fmt.Sprintln(v...))
}

func PromLogger(logger log15.Logger) promhttp.Logger {
	return &PrometheusLogger{
		Logger: logger,
	}
}

// PrintfLogger routes fx's dependency injection chatter through log15.
type PrintfLogger struct {
	Logger log15.Logger
}

func (l PrintfLogger) Printf(format string, v ...interface{}) {
	msg := fmt.Sprintf(format, v...)
	if strings.HasPrefix(msg, "[Fx]") {
		msg2 := strings.TrimSpace(msg[4:])
		parts := strings.SplitN(msg2, "\t", 2)
		if len(parts) == 1 {
			l.Logger.Info(msg)
		} else {
			l.Logger.Debug("Dependency injection", "action", strings.TrimSpace(parts[0]), "details", strings.TrimSpace(parts[1]))
		}
	} else {
		l.Logger.Info(msg)
	}
}
