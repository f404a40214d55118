package led

import (
	"errors"

	"github.com/smazurov/netled/internal/indicator"
)

// ErrChannelNotMapped is returned by Set when the board has no LED for a channel.
var ErrChannelNotMapped = errors.New("indicator channel has no LED on this board")

// Controller is the indicator sink. Implementations translate commands into
// board-specific LED writes.
type Controller interface {
	// Set applies one indicator command. Sending the same command twice
	// must leave the hardware unchanged.
	Set(cmd indicator.Command) error

	// Available returns the channels this controller can drive
	Available() []indicator.Channel
}

// Mapping names the sysfs LEDs used for each channel. Cellular takes either
// one LED (brightness carries the signal level) or several LEDs lit as a bar graph.
type Mapping struct {
	WiFi     string   `toml:"wifi"`
	Ethernet string   `toml:"ethernet"`
	Cellular []string `toml:"cellular"`
}

// Empty reports whether no channel is mapped.
func (m Mapping) Empty() bool {
	return m.WiFi == "" && m.Ethernet == "" && len(m.Cellular) == 0
}
