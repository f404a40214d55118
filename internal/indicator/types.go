// Package indicator maps connectivity and radio signal events onto status
// indicator states.
//
// The package has no I/O. Callers feed it ConnectivityEvent values and
// SignalMeasurement values, and a StateMachine decides which Commands must
// reach the hardware sink.
package indicator

import "fmt"

// Channel identifies one physical status indicator.
type Channel int

const (
	ChannelWiFi Channel = iota
	ChannelEthernet
	ChannelCellular
)

// Channels returns every indicator channel in a stable order.
func Channels() []Channel {
	return []Channel{ChannelWiFi, ChannelEthernet, ChannelCellular}
}

func (c Channel) String() string {
	switch c {
	case ChannelWiFi:
		return "wifi"
	case ChannelEthernet:
		return "ethernet"
	case ChannelCellular:
		return "cellular"
	default:
		return fmt.Sprintf("channel(%d)", int(c))
	}
}

// ParseChannel converts a channel name back into a Channel.
func ParseChannel(name string) (Channel, bool) {
	for _, c := range Channels() {
		if c.String() == name {
			return c, true
		}
	}
	return 0, false
}

// SignalClass is the technology independent cellular strength bucket.
// Values are ordered: SignalNone < SignalPoor < ... < SignalGreat.
type SignalClass int

const (
	SignalNone SignalClass = iota
	SignalPoor
	SignalModerate
	SignalGood
	SignalGreat
)

func (s SignalClass) String() string {
	switch s {
	case SignalNone:
		return "none"
	case SignalPoor:
		return "poor"
	case SignalModerate:
		return "moderate"
	case SignalGood:
		return "good"
	case SignalGreat:
		return "great"
	default:
		return "unknown"
	}
}

// RadioTechnology selects which fields of a SignalMeasurement are authoritative.
type RadioTechnology int

const (
	RadioUnknown RadioTechnology = iota
	RadioGSM
	RadioCDMA
	RadioSIP
	RadioNone
)

func (r RadioTechnology) String() string {
	switch r {
	case RadioGSM:
		return "gsm"
	case RadioCDMA:
		return "cdma"
	case RadioSIP:
		return "sip"
	case RadioNone:
		return "none"
	default:
		return "unknown"
	}
}

// ParseRadioTechnology accepts the names produced by RadioTechnology.String.
// Unrecognized names map to RadioUnknown.
func ParseRadioTechnology(name string) RadioTechnology {
	switch name {
	case "gsm":
		return RadioGSM
	case "cdma":
		return RadioCDMA
	case "sip":
		return RadioSIP
	case "none":
		return RadioNone
	default:
		return RadioUnknown
	}
}

// MarshalText encodes the technology by name.
func (r RadioTechnology) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText decodes a technology name; unknown names become RadioUnknown.
func (r *RadioTechnology) UnmarshalText(text []byte) error {
	*r = ParseRadioTechnology(string(text))
	return nil
}

// Reading is one encoding of radio signal power as reported by the modem.
type Reading struct {
	Dbm   int `json:"dbm"`
	Asu   int `json:"asu"`
	Level int `json:"level"`
}

// SignalMeasurement holds the generic reading plus the per-technology ones.
type SignalMeasurement struct {
	Generic Reading `json:"generic"`
	GSM     Reading `json:"gsm"`
	CDMA    Reading `json:"cdma"`
}

// StateKind tells a binary indicator state from a leveled one.
type StateKind int

const (
	KindBinary StateKind = iota
	KindLevel
)

// State is either Binary(on) or Level(class). The zero value is Binary(false).
type State struct {
	kind  StateKind
	on    bool
	level SignalClass
}

// Binary returns an on/off state.
func Binary(on bool) State {
	return State{kind: KindBinary, on: on}
}

// Level returns a graded signal state.
func Level(class SignalClass) State {
	return State{kind: KindLevel, level: class}
}

// Kind reports whether the state is binary or leveled.
func (s State) Kind() StateKind { return s.kind }

// On reports the binary value. Leveled states are on unless the class is SignalNone.
func (s State) On() bool {
	if s.kind == KindLevel {
		return s.level != SignalNone
	}
	return s.on
}

// Class returns the signal class of a leveled state and SignalNone otherwise.
func (s State) Class() SignalClass {
	if s.kind == KindLevel {
		return s.level
	}
	return SignalNone
}

// Value is the integer written to hardware: 0/1 for binary states and the
// class ordinal for leveled ones.
func (s State) Value() int {
	if s.kind == KindLevel {
		return int(s.level)
	}
	if s.on {
		return 1
	}
	return 0
}

func (s State) String() string {
	if s.kind == KindLevel {
		return "level:" + s.level.String()
	}
	if s.on {
		return "on"
	}
	return "off"
}

// Command is one indicator update for the sink. Re-sending the same command is harmless.
type Command struct {
	Channel Channel
	State   State
}

func (c Command) String() string {
	return c.Channel.String() + "=" + c.State.String()
}
