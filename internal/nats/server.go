package nats

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats-server/v2/server"
)

const (
	defaultPort  = 4222
	defaultHost  = "127.0.0.1"
	startTimeout = 5 * time.Second

	// Event messages are a few hundred bytes.
	maxPayload = 64 * 1024
)

// ServerOptions configures the embedded NATS server.
type ServerOptions struct {
	// Port 0 selects 4222; server.RANDOM_PORT picks a free one.
	Port   int
	Host   string
	Name   string
	Logger *slog.Logger
	// Debug forwards the server's debug output to Logger.
	Debug bool
}

// Server is the embedded NATS server that the bridge and local agents
// connect to when no external server is configured.
type Server struct {
	ns     *server.Server
	opts   ServerOptions
	logger *slog.Logger
}

// NewServer creates an embedded NATS server. It is not started.
func NewServer(opts ServerOptions) *Server {
	if opts.Port == 0 {
		opts.Port = defaultPort
	}
	if opts.Host == "" {
		opts.Host = defaultHost
	}
	if opts.Name == "" {
		opts.Name = "netled"
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Server{
		opts:   opts,
		logger: opts.Logger.With("component", "nats-server"),
	}
}

// Start launches the server and waits until it accepts clients.
func (s *Server) Start() error {
	ns, err := server.NewServer(&server.Options{
		Host:       s.opts.Host,
		Port:       s.opts.Port,
		ServerName: s.opts.Name,
		NoLog:      true,
		NoSigs:     true,
		MaxPayload: maxPayload,
	})
	if err != nil {
		return fmt.Errorf("failed to create NATS server: %w", err)
	}
	ns.SetLogger(&serverLogger{logger: s.logger}, s.opts.Debug, false)

	go ns.Start()

	if !ns.ReadyForConnections(startTimeout) {
		ns.Shutdown()
		return fmt.Errorf("NATS server not ready within %s", startTimeout)
	}

	s.ns = ns
	s.logger.Info("NATS server started", "url", s.ClientURL())
	return nil
}

// Stop shuts the server down and waits for client connections to close.
func (s *Server) Stop() {
	if s.ns == nil {
		return
	}
	s.logger.Info("Stopping NATS server")
	s.ns.Shutdown()
	s.ns.WaitForShutdown()
	s.ns = nil
}

// ClientURL returns the URL clients should connect to.
func (s *Server) ClientURL() string {
	if s.ns == nil {
		return fmt.Sprintf("nats://%s:%d", s.opts.Host, s.opts.Port)
	}
	return s.ns.ClientURL()
}

// IsRunning reports whether the server accepts connections.
func (s *Server) IsRunning() bool {
	return s.ns != nil && s.ns.Running()
}

// NumClients returns the number of connected clients.
func (s *Server) NumClients() int {
	if s.ns == nil {
		return 0
	}
	return s.ns.NumClients()
}

// NumSubscriptions returns the number of active subscriptions.
func (s *Server) NumSubscriptions() uint32 {
	if s.ns == nil {
		return 0
	}
	return s.ns.NumSubscriptions()
}

// serverLogger routes nats-server log lines into slog.
type serverLogger struct {
	logger *slog.Logger
}

func (l *serverLogger) log(level slog.Level, format string, v ...any) {
	l.logger.Log(context.Background(), level, fmt.Sprintf(format, v...))
}

func (l *serverLogger) Noticef(format string, v ...any) { l.log(slog.LevelInfo, format, v...) }
func (l *serverLogger) Warnf(format string, v ...any)   { l.log(slog.LevelWarn, format, v...) }
func (l *serverLogger) Errorf(format string, v ...any)  { l.log(slog.LevelError, format, v...) }
func (l *serverLogger) Fatalf(format string, v ...any)  { l.log(slog.LevelError, format, v...) }
func (l *serverLogger) Debugf(format string, v ...any)  { l.log(slog.LevelDebug, format, v...) }
func (l *serverLogger) Tracef(format string, v ...any)  { l.log(slog.LevelDebug, format, v...) }
