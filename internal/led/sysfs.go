package led

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/smazurov/netled/internal/indicator"
)

const sysfsLEDPath = "/sys/class/leds"

// sysfs implements Controller using Linux sysfs LED interface
type sysfs struct {
	root    string
	mapping Mapping
}

// newSysfs creates a sysfs LED controller rooted at root (normally /sys/class/leds)
func newSysfs(root string, mapping Mapping) *sysfs {
	if root == "" {
		root = sysfsLEDPath
	}
	return &sysfs{
		root:    root,
		mapping: mapping,
	}
}

// Set writes the command to the mapped LED brightness files
func (s *sysfs) Set(cmd indicator.Command) error {
	switch cmd.Channel {
	case indicator.ChannelWiFi:
		return s.setBinary(cmd.Channel, s.mapping.WiFi, cmd.State.On())
	case indicator.ChannelEthernet:
		return s.setBinary(cmd.Channel, s.mapping.Ethernet, cmd.State.On())
	case indicator.ChannelCellular:
		return s.setLevel(cmd.State.Value())
	default:
		return fmt.Errorf("%w: %s", ErrChannelNotMapped, cmd.Channel)
	}
}

func (s *sysfs) setBinary(channel indicator.Channel, name string, on bool) error {
	if name == "" {
		return fmt.Errorf("%w: %s", ErrChannelNotMapped, channel)
	}
	value := 0
	if on {
		value = 1
	}
	return s.writeBrightness(name, value)
}

// setLevel drives the cellular LEDs. A single LED gets the level as its
// brightness; several LEDs light the first level of them.
func (s *sysfs) setLevel(level int) error {
	leds := s.mapping.Cellular
	switch len(leds) {
	case 0:
		return fmt.Errorf("%w: %s", ErrChannelNotMapped, indicator.ChannelCellular)
	case 1:
		return s.writeBrightness(leds[0], level)
	}

	for i, name := range leds {
		value := 0
		if i < level {
			value = 1
		}
		if err := s.writeBrightness(name, value); err != nil {
			return err
		}
	}
	return nil
}

func (s *sysfs) writeBrightness(name string, value int) error {
	ledPath := filepath.Join(s.root, name)

	// Check if LED exists
	if _, err := os.Stat(ledPath); os.IsNotExist(err) {
		return fmt.Errorf("LED %q not found at %s", name, ledPath)
	}

	brightnessPath := filepath.Join(ledPath, "brightness")
	if err := os.WriteFile(brightnessPath, []byte(strconv.Itoa(value)), 0644); err != nil {
		return fmt.Errorf("failed to set LED brightness: %w", err)
	}

	return nil
}

// Available returns the channels that have at least one LED mapped
func (s *sysfs) Available() []indicator.Channel {
	channels := make([]indicator.Channel, 0, 3)
	if s.mapping.WiFi != "" {
		channels = append(channels, indicator.ChannelWiFi)
	}
	if s.mapping.Ethernet != "" {
		channels = append(channels, indicator.ChannelEthernet)
	}
	if len(s.mapping.Cellular) > 0 {
		channels = append(channels, indicator.ChannelCellular)
	}
	return channels
}
