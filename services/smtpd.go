package services

import (
	"context"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/emersion/go-smtp"
	"github.com/inconshreveable/log15"
	"go.uber.org/fx"

	"github.com/stephane-martin/mailsink/arguments"
	"github.com/stephane-martin/mailsink/collectors"
	"github.com/stephane-martin/mailsink/metrics"
	"github.com/stephane-martin/mailsink/models"
	"github.com/stephane-martin/mailsink/utils"
)

// Backend hands every SMTP session to the collector. Sessions are
// anonymous: this is a catch-all sink, not a relay for authenticated
// users.
type Backend struct {
	Collector collectors.Collector
	Logger    log15.Logger
}

func NewSMTPBackend(collector collectors.Collector, logger log15.Logger) smtp.Backend {
	return &Backend{Collector: collector, Logger: logger}
}

func (b *Backend) NewSession(c *smtp.Conn) (smtp.Session, error) {
	addr := ""
	if c.Conn() != nil {
		addr = c.Conn().RemoteAddr().String()
	}
	if host, _, err := net.SplitHostPort(addr); err == nil {
		addr = host
	}
	metrics.M().Connections.WithLabelValues(addr, "smtp").Inc()
	return &session{backend: b, conn: c, addr: addr}, nil
}

type session struct {
	backend *Backend
	conn    *smtp.Conn
	addr    string
	from    string
	rcpts   []string
}

func (s *session) AuthPlain(username, password string) error {
	return smtp.ErrAuthUnsupported
}

func (s *session) Mail(from string, _ *smtp.MailOptions) error {
	s.from = from
	return nil
}

func (s *session) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.rcpts = append(s.rcpts, to)
	return nil
}

// Data reads the whole message into one buffer and queues it. It never
// reports pipeline failures to the SMTP client: once the bytes are
// read, the message is accepted.
func (s *session) Data(r io.Reader) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.backend.Logger.Info("Received SMTP message", "from", s.from, "nb_rcpt", len(s.rcpts), "size", len(b))
	incoming := &models.IncomingMail{
		BaseInfos: models.BaseInfos{
			MailFrom:     s.from,
			RcptTo:       s.rcpts,
			Addr:         s.addr,
			Helo:         s.conn.Hostname(),
			Family:       "smtp",
			TimeReported: time.Now(),
		},
		Data: b,
	}
	return s.backend.Collector.Push(context.Background().Done(), incoming)
}

func (s *session) Reset() {
	s.from = ""
	s.rcpts = nil
}

func (s *session) Logout() error {
	return nil
}

type SMTPServer struct {
	server   *smtp.Server
	listener net.Listener
	addr     string
	logger   log15.Logger
}

func (s *SMTPServer) Name() string { return "SMTPServer" }

func (s *SMTPServer) Prestart() error {
	l, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("SMTP Listen() has failed: %w", err)
	}
	s.listener = l
	return nil
}

func (s *SMTPServer) Start(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		_ = s.server.Close()
	}()
	err := s.server.Serve(s.listener)
	if err == smtp.ErrServerClosed {
		return nil
	}
	return err
}

func NewSMTPService(args *arguments.Args, backend smtp.Backend, logger log15.Logger) *SMTPServer {
	s := smtp.NewServer(backend)
	s.Domain = args.Mailbox.Domain
	s.ReadTimeout = 60 * time.Second
	s.WriteTimeout = 60 * time.Second
	s.MaxMessageBytes = int64(args.SMTP.MaxMessageSize)
	s.MaxRecipients = 0
	return &SMTPServer{
		server: s,
		addr:   net.JoinHostPort(args.SMTP.ListenAddr, fmt.Sprintf("%d", args.SMTP.ListenPort)),
		logger: logger,
	}
}

var SMTPService = fx.Provide(func(lc fx.Lifecycle, args *arguments.Args, backend smtp.Backend, logger log15.Logger) *SMTPServer {
	s := NewSMTPService(args, backend, logger)
	utils.Append(lc, s, logger)
	return s
})
