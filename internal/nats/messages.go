package nats

import (
	"encoding/json"

	"github.com/smazurov/netled/internal/indicator"
)

// SubjectEventsPrefix is the root of all connectivity subjects.
const SubjectEventsPrefix = "netled.events"

// Subjects for each event kind.
const (
	SubjectWiFi     = SubjectEventsPrefix + ".wifi"
	SubjectEthernet = SubjectEventsPrefix + ".ethernet"
	SubjectHotspot  = SubjectEventsPrefix + ".hotspot"
	SubjectSignal   = SubjectEventsPrefix + ".signal"
)

// Message is a payload published on one of the event subjects.
type Message interface {
	Subject() string
}

// WiFiMessage reports the Wi-Fi radio state.
type WiFiMessage struct {
	Enabled   bool   `json:"enabled"`
	Timestamp string `json:"timestamp,omitempty"`
}

// Subject implements Message.
func (WiFiMessage) Subject() string { return SubjectWiFi }

// EthernetMessage reports whether Ethernet has an address.
type EthernetMessage struct {
	Connected bool   `json:"connected"`
	Timestamp string `json:"timestamp,omitempty"`
}

// Subject implements Message.
func (EthernetMessage) Subject() string { return SubjectEthernet }

// HotspotMessage carries a raw access point state code.
type HotspotMessage struct {
	State     int    `json:"state"` // 10 closing, 11 closed, 12 opening, 13 open
	Timestamp string `json:"timestamp,omitempty"`
}

// Subject implements Message.
func (HotspotMessage) Subject() string { return SubjectHotspot }

// SignalMessage carries a raw cellular measurement.
type SignalMessage struct {
	Technology  indicator.RadioTechnology   `json:"technology"`
	Measurement indicator.SignalMeasurement `json:"measurement"`
	Timestamp   string                      `json:"timestamp,omitempty"`
}

// Subject implements Message.
func (SignalMessage) Subject() string { return SubjectSignal }

// Marshal serializes a message to JSON.
func Marshal(m Message) ([]byte, error) {
	return json.Marshal(m)
}

// Unmarshal deserializes a message of type T.
func Unmarshal[T Message](data []byte) (T, error) {
	var m T
	err := json.Unmarshal(data, &m)
	return m, err
}
