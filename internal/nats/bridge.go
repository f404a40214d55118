package nats

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/smazurov/netled/internal/events"
)

const bridgeSource = "nats"

// EventPublisher receives bridged events.
type EventPublisher interface {
	Publish(ev events.Event)
}

// Bridge subscribes to the event subjects and republishes each message on the
// in-process bus.
type Bridge struct {
	url      string
	eventBus EventPublisher
	conn     *nats.Conn
	subs     []*nats.Subscription
	logger   *slog.Logger
	mu       sync.Mutex
}

// NewBridge creates a new NATS-to-EventBus bridge.
func NewBridge(url string, eventBus EventPublisher, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}

	return &Bridge{
		url:      url,
		eventBus: eventBus,
		logger:   logger.With("component", "nats-bridge"),
	}
}

// Start connects to NATS and subscribes to every event subject.
func (b *Bridge) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	conn, err := nats.Connect(b.url,
		nats.Name("netled-bridge"),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				b.logger.Warn("NATS bridge disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			b.logger.Info("NATS bridge reconnected")
		}),
	)
	if err != nil {
		return fmt.Errorf("connect to NATS at %s: %w", b.url, err)
	}
	b.conn = conn

	handlers := map[string]nats.MsgHandler{
		SubjectWiFi:     b.handleWiFi,
		SubjectEthernet: b.handleEthernet,
		SubjectHotspot:  b.handleHotspot,
		SubjectSignal:   b.handleSignal,
	}
	for subject, handler := range handlers {
		sub, err := conn.Subscribe(subject, handler)
		if err != nil {
			b.cleanup()
			return fmt.Errorf("subscribe %s: %w", subject, err)
		}
		b.subs = append(b.subs, sub)
	}

	// Subscriptions must reach the server before publishers send.
	if err := conn.Flush(); err != nil {
		b.cleanup()
		return fmt.Errorf("flush subscriptions: %w", err)
	}

	b.logger.Info("NATS bridge connected", "url", b.url, "subjects", SubjectEventsPrefix+".*")
	return nil
}

func (b *Bridge) handleWiFi(msg *nats.Msg) {
	m, err := decodeWiFi(msg.Data)
	if err != nil {
		b.dropped(msg, err)
		return
	}
	b.eventBus.Publish(events.WiFiStateChangedEvent{
		Enabled:   m.Enabled,
		Source:    bridgeSource,
		Timestamp: timestampOrNow(m.Timestamp),
	})
	b.logger.Debug("Bridged Wi-Fi event", "enabled", m.Enabled)
}

func (b *Bridge) handleEthernet(msg *nats.Msg) {
	m, err := decodeEthernet(msg.Data)
	if err != nil {
		b.dropped(msg, err)
		return
	}
	b.eventBus.Publish(events.EthernetStateChangedEvent{
		Connected: m.Connected,
		Source:    bridgeSource,
		Timestamp: timestampOrNow(m.Timestamp),
	})
	b.logger.Debug("Bridged Ethernet event", "connected", m.Connected)
}

func (b *Bridge) handleHotspot(msg *nats.Msg) {
	m, err := Unmarshal[HotspotMessage](msg.Data)
	if err != nil {
		b.dropped(msg, err)
		return
	}
	b.eventBus.Publish(events.HotspotStateChangedEvent{
		State:     m.State,
		Source:    bridgeSource,
		Timestamp: timestampOrNow(m.Timestamp),
	})
	b.logger.Debug("Bridged hotspot event", "state", m.State)
}

func (b *Bridge) handleSignal(msg *nats.Msg) {
	m, err := Unmarshal[SignalMessage](msg.Data)
	if err != nil {
		b.dropped(msg, err)
		return
	}
	b.eventBus.Publish(events.SignalStrengthChangedEvent{
		Technology:  m.Technology,
		Measurement: m.Measurement,
		Source:      bridgeSource,
		Timestamp:   timestampOrNow(m.Timestamp),
	})
	b.logger.Debug("Bridged signal event", "technology", m.Technology.String())
}

// errMissingState rejects Wi-Fi and Ethernet payloads without their state
// field; a missing field must not read as "off".
var errMissingState = errors.New("message has no state field")

func decodeWiFi(data []byte) (WiFiMessage, error) {
	var wire struct {
		Enabled   *bool  `json:"enabled"`
		Timestamp string `json:"timestamp"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return WiFiMessage{}, err
	}
	if wire.Enabled == nil {
		return WiFiMessage{}, fmt.Errorf("%w: enabled", errMissingState)
	}
	return WiFiMessage{Enabled: *wire.Enabled, Timestamp: wire.Timestamp}, nil
}

func decodeEthernet(data []byte) (EthernetMessage, error) {
	var wire struct {
		Connected *bool  `json:"connected"`
		Timestamp string `json:"timestamp"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return EthernetMessage{}, err
	}
	if wire.Connected == nil {
		return EthernetMessage{}, fmt.Errorf("%w: connected", errMissingState)
	}
	return EthernetMessage{Connected: *wire.Connected, Timestamp: wire.Timestamp}, nil
}

func (b *Bridge) dropped(msg *nats.Msg, err error) {
	b.logger.Warn("Dropping invalid event message", "error", err, "subject", msg.Subject)
}

func timestampOrNow(ts string) string {
	if ts != "" {
		return ts
	}
	return time.Now().Format(time.RFC3339)
}

// cleanup unsubscribes and closes connection.
func (b *Bridge) cleanup() {
	for _, sub := range b.subs {
		_ = sub.Unsubscribe()
	}
	b.subs = nil

	if b.conn != nil {
		b.conn.Close()
		b.conn = nil
	}
}

// Stop closes the bridge connection.
func (b *Bridge) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.cleanup()
	b.logger.Info("NATS bridge stopped")
}

// IsConnected returns true if the bridge is connected to NATS.
func (b *Bridge) IsConnected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conn != nil && b.conn.IsConnected()
}
