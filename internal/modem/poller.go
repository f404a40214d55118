package modem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/smazurov/netled/internal/events"
	"github.com/smazurov/netled/internal/indicator"
	"github.com/smazurov/netled/internal/metrics"
	"go.bug.st/serial"
)

const (
	defaultBaudRate     = 115200
	defaultPollInterval = 10 * time.Second
	readTimeout         = 300 * time.Millisecond
	replyTimeout        = 3 * time.Second
)

// Opener opens the modem port.
type Opener func(device string, baudRate int) (io.ReadWriteCloser, error)

// Publisher receives signal events.
type Publisher interface {
	Publish(ev events.Event)
}

// Config selects the modem port and poll rate.
type Config struct {
	Device   string
	BaudRate int
	Interval time.Duration
}

// Poller queries AT+CSQ periodically and publishes signal changes.
type Poller struct {
	cfg       Config
	open      Opener
	publisher Publisher
	logger    *slog.Logger

	mu   sync.Mutex
	port io.ReadWriteCloser
	last *CSQ

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewPoller creates a poller on a real serial port.
func NewPoller(cfg Config, publisher Publisher, logger *slog.Logger) *Poller {
	return newPoller(cfg, openSerial, publisher, logger)
}

func newPoller(cfg Config, open Opener, publisher Publisher, logger *slog.Logger) *Poller {
	if cfg.BaudRate <= 0 {
		cfg.BaudRate = defaultBaudRate
	}
	if cfg.Interval <= 0 {
		cfg.Interval = defaultPollInterval
	}
	return &Poller{
		cfg:       cfg,
		open:      open,
		publisher: publisher,
		logger:    logger,
	}
}

func openSerial(device string, baudRate int) (io.ReadWriteCloser, error) {
	port, err := serial.Open(device, &serial.Mode{BaudRate: baudRate})
	if err != nil {
		return nil, fmt.Errorf("open serial port %q: %w", device, err)
	}
	if err := port.SetReadTimeout(readTimeout); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("set serial read timeout: %w", err)
	}
	return port, nil
}

// Start polls immediately and then on every interval until Stop.
func (p *Poller) Start(ctx context.Context) error {
	if p.cfg.Device == "" {
		return errors.New("modem device is empty")
	}
	if p.cancel != nil {
		return errors.New("modem poller already started")
	}
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.wg.Add(1)
	go p.run(ctx)

	p.logger.Info("Modem poller started", "device", p.cfg.Device, "baud", p.cfg.BaudRate, "interval", p.cfg.Interval)
	return nil
}

// Stop ends polling and closes the port.
func (p *Poller) Stop() {
	if p.cancel == nil {
		return
	}
	p.cancel()
	p.wg.Wait()
	p.cancel = nil
	p.closePort()
	p.logger.Info("Modem poller stopped")
}

func (p *Poller) run(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	for {
		if err := p.Poll(ctx); err != nil && ctx.Err() == nil {
			p.logger.Warn("Modem poll failed", "device", p.cfg.Device, "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Poll runs one AT+CSQ query and publishes the result if it changed. The port
// is reopened on the next poll after any failure.
func (p *Poller) Poll(ctx context.Context) error {
	csq, err := p.query(ctx)
	if err != nil {
		metrics.IncModemPollErrors()
		p.closePort()
		return err
	}

	measurement := csq.Measurement()
	if csq.RSSI != rssiUnknown {
		metrics.SetModemSignalDbm(measurement.GSM.Dbm)
	}

	p.mu.Lock()
	changed := p.last == nil || p.last.RSSI != csq.RSSI
	p.last = &csq
	p.mu.Unlock()

	if !changed {
		return nil
	}

	p.logger.Debug("Modem signal", "rssi", csq.RSSI, "ber", csq.BER, "dbm", measurement.GSM.Dbm, "level", measurement.GSM.Level)
	p.publisher.Publish(events.SignalStrengthChangedEvent{
		Technology:  indicator.RadioGSM,
		Measurement: measurement,
		Source:      "modem",
		Timestamp:   time.Now().Format(time.RFC3339),
	})
	return nil
}

func (p *Poller) query(ctx context.Context) (CSQ, error) {
	port, err := p.currentPort()
	if err != nil {
		return CSQ{}, err
	}

	if _, err := io.WriteString(port, "AT+CSQ\r"); err != nil {
		return CSQ{}, fmt.Errorf("write AT+CSQ: %w", err)
	}

	reply, err := readReply(ctx, port, time.Now().Add(replyTimeout))
	if err != nil {
		return CSQ{}, err
	}
	return ParseCSQ(reply)
}

func (p *Poller) currentPort() (io.ReadWriteCloser, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.port != nil {
		return p.port, nil
	}
	port, err := p.open(p.cfg.Device, p.cfg.BaudRate)
	if err != nil {
		return nil, err
	}
	p.port = port
	return port, nil
}

func (p *Poller) closePort() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.port != nil {
		_ = p.port.Close()
		p.port = nil
	}
}

// readReply reads until a final result code. The serial read timeout makes
// Read return 0 bytes while the modem is silent.
func readReply(ctx context.Context, r io.Reader, deadline time.Time) (string, error) {
	var sb strings.Builder
	buf := make([]byte, 128)

	for time.Now().Before(deadline) {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		n, err := r.Read(buf)
		if n > 0 {
			sb.Write(buf[:n])
			reply := sb.String()
			switch {
			case strings.Contains(reply, "\nOK"), strings.HasPrefix(reply, "OK"):
				return reply, nil
			case strings.Contains(reply, "ERROR"):
				return "", fmt.Errorf("modem replied with error: %q", strings.TrimSpace(reply))
			}
		}
		if err != nil {
			return "", fmt.Errorf("read modem reply: %w", err)
		}
	}
	return "", errors.New("timed out waiting for modem reply")
}
