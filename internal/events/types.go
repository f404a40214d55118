package events

import "github.com/smazurov/netled/internal/indicator"

// Event type constants for kelindar/event.
const (
	TypeWiFiStateChanged uint32 = iota + 1
	TypeEthernetStateChanged
	TypeHotspotStateChanged
	TypeSignalStrengthChanged
	TypeIndicatorChanged
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// WiFiStateChangedEvent reports whether the Wi-Fi radio is enabled.
type WiFiStateChangedEvent struct {
	Enabled   bool   `json:"enabled" example:"true" doc:"Whether Wi-Fi is enabled"`
	Source    string `json:"source,omitempty" example:"netmon" doc:"Component that observed the change"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for WiFiStateChangedEvent.
func (e WiFiStateChangedEvent) Type() uint32 { return TypeWiFiStateChanged }

// EthernetStateChangedEvent reports whether Ethernet has a usable link.
type EthernetStateChangedEvent struct {
	Connected bool   `json:"connected" example:"true" doc:"Whether Ethernet is connected"`
	Source    string `json:"source,omitempty" example:"netmon" doc:"Component that observed the change"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for EthernetStateChangedEvent.
func (e EthernetStateChangedEvent) Type() uint32 { return TypeEthernetStateChanged }

// HotspotStateChangedEvent carries a raw access point state code (10-13).
type HotspotStateChangedEvent struct {
	State     int    `json:"state" example:"13" doc:"Access point state code: 10 closing, 11 closed, 12 opening, 13 open"`
	Source    string `json:"source,omitempty" example:"nats" doc:"Component that observed the change"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for HotspotStateChangedEvent.
func (e HotspotStateChangedEvent) Type() uint32 { return TypeHotspotStateChanged }

// SignalStrengthChangedEvent carries a raw cellular measurement.
type SignalStrengthChangedEvent struct {
	Technology  indicator.RadioTechnology   `json:"technology" doc:"Radio technology selecting the authoritative fields"`
	Measurement indicator.SignalMeasurement `json:"measurement" doc:"Raw signal measurement"`
	Source      string                      `json:"source,omitempty" example:"modem" doc:"Component that observed the change"`
	Timestamp   string                      `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for SignalStrengthChangedEvent.
func (e SignalStrengthChangedEvent) Type() uint32 { return TypeSignalStrengthChanged }

// IndicatorChangedEvent is published after a command was dispatched to the LED sink.
type IndicatorChangedEvent struct {
	Channel   string `json:"channel" example:"wifi" doc:"Indicator channel"`
	State     string `json:"state" example:"on" doc:"New indicator state"`
	Value     int    `json:"value" example:"1" doc:"Value written to hardware"`
	Error     string `json:"error,omitempty" doc:"Sink error, if the hardware write failed"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for IndicatorChangedEvent.
func (e IndicatorChangedEvent) Type() uint32 { return TypeIndicatorChanged }
