package indicator

// ConnectivityEvent is one of WiFiStateChanged, EthernetStateChanged or
// HotspotStateChanged.
type ConnectivityEvent interface {
	connectivityEvent()
}

// WiFiStateChanged reports whether the Wi-Fi radio is enabled.
type WiFiStateChanged struct {
	Enabled bool
}

// EthernetStateChanged reports whether Ethernet has a usable link.
// Only meaningful when Ethernet hardware is available.
type EthernetStateChanged struct {
	Connected bool
}

// HotspotStateChanged reports a hotspot phase transition.
type HotspotStateChanged struct {
	Phase HotspotPhase
}

func (WiFiStateChanged) connectivityEvent()     {}
func (EthernetStateChanged) connectivityEvent() {}
func (HotspotStateChanged) connectivityEvent()  {}

// HotspotPhase is the access point lifecycle phase.
type HotspotPhase int

const (
	HotspotClosing HotspotPhase = iota
	HotspotClosed
	HotspotOpening
	HotspotOpen
)

// Raw access point state codes used by platform broadcasts.
const (
	hotspotCodeClosing = 10
	hotspotCodeClosed  = 11
	hotspotCodeOpening = 12
	hotspotCodeOpen    = 13
)

// ParseHotspotCode converts a raw access point state code into a phase.
func ParseHotspotCode(code int) (HotspotPhase, bool) {
	switch code {
	case hotspotCodeClosing:
		return HotspotClosing, true
	case hotspotCodeClosed:
		return HotspotClosed, true
	case hotspotCodeOpening:
		return HotspotOpening, true
	case hotspotCodeOpen:
		return HotspotOpen, true
	default:
		return 0, false
	}
}

// Code returns the raw access point state code for the phase.
func (p HotspotPhase) Code() int {
	return hotspotCodeClosing + int(p)
}

func (p HotspotPhase) String() string {
	switch p {
	case HotspotClosing:
		return "closing"
	case HotspotClosed:
		return "closed"
	case HotspotOpening:
		return "opening"
	case HotspotOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Interpret maps a connectivity event onto a binary channel update.
// Hotspot transitions and unknown events yield ok == false.
//
// Ethernet results are always produced; callers must drop them when the
// Ethernet hardware is not available.
func Interpret(ev ConnectivityEvent) (channel Channel, on bool, ok bool) {
	switch e := ev.(type) {
	case WiFiStateChanged:
		return ChannelWiFi, e.Enabled, true
	case EthernetStateChanged:
		return ChannelEthernet, e.Connected, true
	default:
		return 0, false, false
	}
}
