// Package monitoring watches the kernel for network and radio changes and
// publishes connectivity events onto the bus.
package monitoring

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/jochenvg/go-udev"
	"github.com/smazurov/netled/internal/events"
)

const defaultPollInterval = 30 * time.Second

// NetState is the connectivity source queried on every trigger.
type NetState interface {
	WiFiEnabled() bool
	EthernetConnected() bool
}

// Publisher receives connectivity events.
type Publisher interface {
	Publish(ev events.Event)
}

// Option configures a NetMonitor.
type Option func(*NetMonitor)

// WithPollInterval sets the fallback poll period. Zero disables polling.
func WithPollInterval(d time.Duration) Option {
	return func(m *NetMonitor) {
		m.interval = d
	}
}

// WithoutUdev disables the netlink monitor and relies on polling only.
func WithoutUdev() Option {
	return func(m *NetMonitor) {
		m.useUdev = false
	}
}

// NetMonitor re-reads connectivity when udev reports a net or rfkill change
// and on a fixed interval.
type NetMonitor struct {
	state     NetState
	publisher Publisher
	logger    *slog.Logger
	interval  time.Duration
	useUdev   bool

	mu   sync.Mutex
	last *snapshot

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type snapshot struct {
	wifi     bool
	ethernet bool
}

// NewNetMonitor creates a monitor. Call Start to begin watching.
func NewNetMonitor(state NetState, publisher Publisher, logger *slog.Logger, opts ...Option) *NetMonitor {
	m := &NetMonitor{
		state:     state,
		publisher: publisher,
		logger:    logger,
		interval:  defaultPollInterval,
		useUdev:   true,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start publishes the current state and starts watching. A udev failure is
// logged and the monitor falls back to polling.
func (m *NetMonitor) Start(ctx context.Context) error {
	if m.cancel != nil {
		return errors.New("network monitor already started")
	}
	ctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel

	m.Refresh("startup")

	if m.useUdev {
		if err := m.startUdev(ctx); err != nil {
			m.logger.Warn("udev monitor unavailable, polling only", "error", err)
		}
	}

	if m.interval > 0 {
		m.wg.Add(1)
		go m.poll(ctx)
	}

	m.logger.Info("Network monitor started", "udev", m.useUdev, "poll_interval", m.interval)
	return nil
}

// Stop ends all watching goroutines.
func (m *NetMonitor) Stop() {
	if m.cancel == nil {
		return
	}
	m.cancel()
	m.wg.Wait()
	m.cancel = nil
	m.logger.Info("Network monitor stopped")
}

// Refresh reads the current state and publishes both channels. Duplicates are
// left to the indicator state machine.
func (m *NetMonitor) Refresh(source string) {
	current := m.read()

	m.mu.Lock()
	m.last = &current
	m.mu.Unlock()

	m.publish(current, source)
}

// check publishes only when the state differs from the last reading.
func (m *NetMonitor) check(source string) {
	current := m.read()

	m.mu.Lock()
	changed := m.last == nil || *m.last != current
	m.last = &current
	m.mu.Unlock()

	if changed {
		m.publish(current, source)
	}
}

func (m *NetMonitor) read() snapshot {
	return snapshot{
		wifi:     m.state.WiFiEnabled(),
		ethernet: m.state.EthernetConnected(),
	}
}

func (m *NetMonitor) publish(s snapshot, source string) {
	ts := time.Now().Format(time.RFC3339)
	m.logger.Debug("Connectivity state", "wifi", s.wifi, "ethernet", s.ethernet, "source", source)

	m.publisher.Publish(events.WiFiStateChangedEvent{Enabled: s.wifi, Source: source, Timestamp: ts})
	m.publisher.Publish(events.EthernetStateChangedEvent{Connected: s.ethernet, Source: source, Timestamp: ts})
}

func (m *NetMonitor) poll(ctx context.Context) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.check("poll")
		}
	}
}

func (m *NetMonitor) startUdev(ctx context.Context) error {
	u := udev.Udev{}
	mon := u.NewMonitorFromNetlink("udev")
	if mon == nil {
		return errors.New("failed to create udev monitor")
	}
	if err := mon.FilterAddMatchSubsystem("net"); err != nil {
		return err
	}
	if err := mon.FilterAddMatchSubsystem("rfkill"); err != nil {
		return err
	}

	deviceCh, errCh, err := mon.DeviceChan(ctx)
	if err != nil {
		return err
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-errCh:
				if !ok {
					errCh = nil
					continue
				}
				m.logger.Warn("udev monitor error", "error", err)
			case dev, ok := <-deviceCh:
				if !ok {
					m.logger.Warn("udev device channel closed")
					return
				}
				m.logger.Debug("udev event",
					"action", dev.Action(),
					"subsystem", dev.Subsystem(),
					"sysname", dev.Sysname())
				m.Refresh("udev")
			}
		}
	}()
	return nil
}
