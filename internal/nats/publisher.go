package nats

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// ErrNotConnected is returned by Publish before Connect or after Close.
var ErrNotConnected = errors.New("not connected to NATS")

// Publisher sends connectivity messages. Platform agents and the publish
// command use it to feed a running daemon.
type Publisher struct {
	url    string
	name   string
	conn   *nats.Conn
	logger *slog.Logger
	mu     sync.RWMutex
}

// NewPublisher creates a publisher. name identifies the connection on the server.
func NewPublisher(url, name string, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	if name == "" {
		name = "netled-publisher"
	}
	return &Publisher{
		url:    url,
		name:   name,
		logger: logger.With("component", "nats-publisher"),
	}
}

// Connect dials the server.
func (p *Publisher) Connect() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn != nil {
		return nil
	}

	conn, err := nats.Connect(p.url,
		nats.Name(p.name),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(5),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				p.logger.Warn("NATS disconnected", "error", err)
			}
		}),
	)
	if err != nil {
		return fmt.Errorf("connect to NATS at %s: %w", p.url, err)
	}

	p.conn = conn
	p.logger.Debug("Connected to NATS", "url", p.url)
	return nil
}

// Publish sends m on its subject and waits until the server has it.
func (p *Publisher) Publish(m Message) error {
	p.mu.RLock()
	conn := p.conn
	p.mu.RUnlock()

	if conn == nil {
		return ErrNotConnected
	}

	data, err := Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal %s message: %w", m.Subject(), err)
	}
	if err := conn.Publish(m.Subject(), data); err != nil {
		return fmt.Errorf("publish %s: %w", m.Subject(), err)
	}
	if err := conn.Flush(); err != nil {
		return fmt.Errorf("flush %s: %w", m.Subject(), err)
	}

	p.logger.Debug("Published event", "subject", m.Subject())
	return nil
}

// IsConnected returns true if connected to NATS.
func (p *Publisher) IsConnected() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.conn != nil && p.conn.IsConnected()
}

// Close closes the NATS connection.
func (p *Publisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn != nil {
		p.conn.Close()
		p.conn = nil
	}
}
