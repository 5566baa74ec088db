package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/inconshreveable/log15"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"

	"github.com/stephane-martin/mailsink/arguments"
	"github.com/stephane-martin/mailsink/collectors"
	"github.com/stephane-martin/mailsink/logging"
	"github.com/stephane-martin/mailsink/mailbox"
	"github.com/stephane-martin/mailsink/metrics"
	"github.com/stephane-martin/mailsink/models"
	"github.com/stephane-martin/mailsink/router"
	"github.com/stephane-martin/mailsink/utils"
)

type HTTPServer struct {
	server   *http.Server
	listener net.Listener
	addr     string
	logger   log15.Logger
}

func (s *HTTPServer) Name() string { return "HTTPServer" }

func (s *HTTPServer) Prestart() error {
	l, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("HTTP Listen() has failed: %w", err)
	}
	s.listener = l
	return nil
}

func (s *HTTPServer) Start(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(stopCtx)
	}()
	err := s.server.Serve(s.listener)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// NewRouter registers the HTTP surface. Registration order matters:
// /email/create must precede /email/:address so the literal path wins.
func NewRouter(args *arguments.Args, box *mailbox.Service, collector collectors.Collector, logger log15.Logger) *router.Router {
	r := router.New()

	r.Handle("GET", "/email/create", emailCreate(args.Mailbox.Domain))
	r.Handle("GET", "/email/:address", emailList(box, logger))
	r.Handle("POST", "/messages", submitMessage(args, collector, logger))

	r.Handle("GET", "/", func(w http.ResponseWriter, req *http.Request, _ router.Params) {
		http.Redirect(w, req, "/ui", http.StatusFound)
	})
	r.Handle("GET", "/ui", servePage(uiHTML))
	r.Handle("GET", "/help", servePage(helpHTML))

	r.Handle("GET", "/status", func(w http.ResponseWriter, _ *http.Request, _ router.Params) {
		w.WriteHeader(http.StatusOK)
	})
	metricsHandler := promhttp.HandlerFor(
		metrics.M().Registry,
		promhttp.HandlerOpts{
			DisableCompression: true,
			ErrorLog:           logging.PromLogger(logger),
			ErrorHandling:      promhttp.HTTPErrorOnError,
		},
	)
	r.Handle("GET", "/metrics", func(w http.ResponseWriter, req *http.Request, _ router.Params) {
		metricsHandler.ServeHTTP(w, req)
	})

	return r
}

func emailCreate(domain string) router.Handler {
	return func(w http.ResponseWriter, req *http.Request, _ router.Params) {
		address := utils.RandomLocalPart() + "@" + domain
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data": map[string]interface{}{
				"fetch_endpoint": externalURL(req, "/email/"+address),
				"address":        address,
				"mode":           "catch_all_worker_rule",
			},
		})
	}
}

func emailList(box *mailbox.Service, logger log15.Logger) router.Handler {
	return func(w http.ResponseWriter, req *http.Request, ps router.Params) {
		q := req.URL.Query()
		rows, err := box.Recent(req.Context(), ps["address"], q.Get("limit"), q.Get("parser"))
		if err != nil {
			logger.Warn("Error querying messages", "address", ps["address"], "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
				"success": false,
				"error":   "failed to fetch messages",
				"details": err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data":    rows,
		})
	}
}

// submitMessage accepts one raw message over HTTP, with optional
// envelope hints as from/to query parameters. It answers as soon as the
// message is queued; processing outcomes are not reported back, the
// same contract the SMTP path has.
func submitMessage(args *arguments.Args, collector collectors.Collector, logger log15.Logger) router.Handler {
	maxSize := int64(args.SMTP.MaxMessageSize)
	return func(w http.ResponseWriter, req *http.Request, _ router.Params) {
		metrics.M().Connections.WithLabelValues(clientIP(req), "http").Inc()

		body := req.Body
		if maxSize > 0 {
			body = http.MaxBytesReader(w, body, maxSize)
		}
		data, err := io.ReadAll(body)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{
				"success": false,
				"error":   "failed to read message body",
			})
			return
		}
		if len(data) == 0 {
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{
				"success": false,
				"error":   "empty message",
			})
			return
		}

		q := req.URL.Query()
		m := &models.IncomingMail{
			BaseInfos: models.BaseInfos{
				MailFrom:     strings.TrimSpace(q.Get("from")),
				RcptTo:       q["to"],
				Addr:         clientIP(req),
				Family:       "http",
				TimeReported: time.Now(),
			},
			Data: data,
		}
		if err := collector.PushCtx(req.Context(), m); err != nil {
			logger.Warn("Failed to enqueue message", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
				"success": false,
				"error":   "message queue unavailable",
			})
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]interface{}{"success": true})
	}
}

func servePage(page string) router.Handler {
	return func(w http.ResponseWriter, _ *http.Request, _ router.Params) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = io.WriteString(w, page)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func externalURL(req *http.Request, path string) string {
	scheme := "http"
	if req.TLS != nil || strings.EqualFold(req.Header.Get("X-Forwarded-Proto"), "https") {
		scheme = "https"
	}
	return scheme + "://" + req.Host + path
}

func clientIP(req *http.Request) string {
	host, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		return req.RemoteAddr
	}
	return host
}

func NewHTTPServer(args *arguments.Args, handler http.Handler, logger log15.Logger) *HTTPServer {
	addr := net.JoinHostPort(args.HTTP.ListenAddr, fmt.Sprintf("%d", args.HTTP.ListenPort))
	return &HTTPServer{
		server: &http.Server{
			Handler:      handler,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		addr:   addr,
		logger: logger,
	}
}

var HTTPService = fx.Provide(func(lc fx.Lifecycle, args *arguments.Args, box *mailbox.Service, collector collectors.Collector, logger log15.Logger) *HTTPServer {
	r := NewRouter(args, box, collector, logger)
	s := NewHTTPServer(args, r, logger)
	utils.Append(lc, s, logger)
	return s
})
