package led

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/smazurov/netled/internal/events"
	"github.com/smazurov/netled/internal/indicator"
	"github.com/smazurov/netled/internal/metrics"
)

// EthernetProbe reports whether Ethernet hardware is present and supported.
type EthernetProbe interface {
	EthernetAvailable() bool
}

// Manager subscribes to connectivity and signal events and drives the
// indicator LEDs through a Controller.
type Manager struct {
	controller    Controller
	controllerMux sync.RWMutex
	eventBus      *events.Bus
	ethernet      EthernetProbe
	machine       *indicator.StateMachine
	logger        *slog.Logger

	// applyMu makes state update and LED write one step, so a controller
	// swap cannot interleave with event handling.
	applyMu sync.Mutex

	// mu guards the subscription session. Handlers hold it for reading while
	// they run, so Unregister returns only after in-flight events finish.
	mu           sync.RWMutex
	registered   bool
	generation   uint64
	unsubscribes []func()
}

// NewManager creates an LED manager. A nil ethernet probe treats Ethernet as
// always available.
func NewManager(controller Controller, eventBus *events.Bus, ethernet EthernetProbe, logger *slog.Logger) *Manager {
	return &Manager{
		controller: controller,
		eventBus:   eventBus,
		ethernet:   ethernet,
		machine:    indicator.NewStateMachine(),
		logger:     logger,
	}
}

// Register subscribes to the event bus. Every channel is reset so the first
// event of the new session always reaches the LEDs.
func (m *Manager) Register() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.registered {
		return
	}

	m.machine.ResetAll()
	m.generation++
	gen := m.generation

	m.unsubscribes = []func(){
		m.eventBus.Subscribe(func(e events.WiFiStateChangedEvent) {
			m.deliver(gen, func() {
				m.HandleConnectivity(indicator.WiFiStateChanged{Enabled: e.Enabled})
			})
		}),
		m.eventBus.Subscribe(func(e events.EthernetStateChangedEvent) {
			m.deliver(gen, func() {
				m.HandleConnectivity(indicator.EthernetStateChanged{Connected: e.Connected})
			})
		}),
		m.eventBus.Subscribe(func(e events.HotspotStateChangedEvent) {
			m.deliver(gen, func() { m.handleHotspotCode(e.State) })
		}),
		m.eventBus.Subscribe(func(e events.SignalStrengthChangedEvent) {
			m.deliver(gen, func() { m.HandleSignal(e.Technology, e.Measurement) })
		}),
	}
	m.registered = true

	m.logger.Info("LED manager registered")
}

// Unregister unsubscribes from the event bus. No event is handled after it returns.
func (m *Manager) Unregister() {
	m.mu.Lock()
	if !m.registered {
		m.mu.Unlock()
		return
	}
	m.registered = false
	unsubscribes := m.unsubscribes
	m.unsubscribes = nil
	m.mu.Unlock()

	for _, unsub := range unsubscribes {
		unsub()
	}
	m.logger.Info("LED manager unregistered")
}

// deliver runs fn if the subscription session gen is still the active one.
func (m *Manager) deliver(gen uint64, fn func()) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.registered || m.generation != gen {
		return
	}
	fn()
}

// HandleConnectivity interprets a connectivity event and updates its indicator.
func (m *Manager) HandleConnectivity(ev indicator.ConnectivityEvent) {
	if h, ok := ev.(indicator.HotspotStateChanged); ok {
		m.logger.Debug("Hotspot state changed", "phase", h.Phase.String())
	}

	channel, on, ok := indicator.Interpret(ev)
	if !ok {
		metrics.IncEventsIgnored("no_indicator")
		return
	}

	if channel == indicator.ChannelEthernet && !m.ethernetAvailable() {
		m.logger.Debug("Ethernet not available, ignoring connectivity event", "connected", on)
		metrics.IncEventsIgnored("ethernet_unavailable")
		return
	}

	m.apply(channel, indicator.Binary(on))
}

// HandleSignal classifies a cellular measurement and updates the cellular indicator.
func (m *Manager) HandleSignal(tech indicator.RadioTechnology, measurement indicator.SignalMeasurement) {
	reading := measurement.Select(tech)
	class := indicator.Classify(tech, measurement)

	m.logger.Debug("Signal strength changed",
		"technology", tech.String(),
		"level", reading.Level,
		"dbm", reading.Dbm,
		"asu", reading.Asu,
		"class", class.String())

	m.apply(indicator.ChannelCellular, indicator.Level(class))
}

func (m *Manager) handleHotspotCode(code int) {
	phase, ok := indicator.ParseHotspotCode(code)
	if !ok {
		m.logger.Debug("Unknown hotspot state", "state", code)
		metrics.IncEventsIgnored("unknown_hotspot_state")
		return
	}
	m.HandleConnectivity(indicator.HotspotStateChanged{Phase: phase})
}

func (m *Manager) ethernetAvailable() bool {
	return m.ethernet == nil || m.ethernet.EthernetAvailable()
}

func (m *Manager) apply(channel indicator.Channel, state indicator.State) {
	m.applyMu.Lock()
	defer m.applyMu.Unlock()
	m.applyLocked(channel, state)
}

// applyLocked requires applyMu.
func (m *Manager) applyLocked(channel indicator.Channel, state indicator.State) {
	cmd, ok := m.machine.Apply(channel, state)
	if !ok {
		metrics.IncCommandsSuppressed(channel.String())
		return
	}
	m.dispatch(cmd)
}

// dispatch sends cmd to the controller. Failures are logged and not retried.
func (m *Manager) dispatch(cmd indicator.Command) {
	err := m.GetController().Set(cmd)

	changed := events.IndicatorChangedEvent{
		Channel:   cmd.Channel.String(),
		State:     cmd.State.String(),
		Value:     cmd.State.Value(),
		Timestamp: time.Now().Format(time.RFC3339),
	}

	switch {
	case errors.Is(err, ErrChannelNotMapped):
		m.logger.Debug("No LED for indicator channel", "channel", cmd.Channel.String(), "state", cmd.State.String())
	case err != nil:
		m.logger.Warn("Failed to set indicator LED",
			"channel", cmd.Channel.String(),
			"state", cmd.State.String(),
			"error", err)
		metrics.IncSinkFailures(cmd.Channel.String())
		changed.Error = err.Error()
	default:
		m.logger.Debug("Indicator updated", "channel", cmd.Channel.String(), "state", cmd.State.String())
		metrics.SetIndicatorValue(cmd.Channel.String(), cmd.State.Value())
	}

	m.eventBus.Publish(changed)
}

// SetController swaps the LED controller and replays the known indicator
// states onto it. Events arriving meanwhile are applied after the replay.
func (m *Manager) SetController(controller Controller) {
	m.applyMu.Lock()
	defer m.applyMu.Unlock()

	m.controllerMux.Lock()
	m.controller = controller
	m.controllerMux.Unlock()

	snapshot := m.machine.Snapshot()
	m.machine.ResetAll()
	for _, channel := range indicator.Channels() {
		if state, ok := snapshot[channel]; ok {
			m.applyLocked(channel, state)
		}
	}
	m.logger.Info("LED controller replaced", "replayed", len(snapshot))
}

// GetController returns the underlying LED controller for direct API access
func (m *Manager) GetController() Controller {
	m.controllerMux.RLock()
	defer m.controllerMux.RUnlock()
	return m.controller
}

// Available returns the channels the current controller can drive.
func (m *Manager) Available() []indicator.Channel {
	return m.GetController().Available()
}

// Snapshot returns the last dispatched state per channel.
func (m *Manager) Snapshot() map[indicator.Channel]indicator.State {
	return m.machine.Snapshot()
}

// Registered reports whether the manager currently receives bus events.
func (m *Manager) Registered() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.registered
}
