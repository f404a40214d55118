package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/smazurov/netled/internal/led"
	"github.com/smazurov/netled/internal/logging"
)

// FileConfig is the part of the config file that is applied again on reload.
type FileConfig struct {
	LEDs    led.Mapping
	Logging logging.Config
}

// LoadFileConfig reads the reloadable sections of the config file.
//
// In [logging], level and format are global; any other key is a module level:
//
//	[logging]
//	level = "info"
//	led = "debug"
func LoadFileConfig(path string) (FileConfig, error) {
	cfg := FileConfig{
		Logging: logging.Config{
			Level:   "info",
			Format:  "text",
			Modules: make(map[string]string),
		},
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	var raw struct {
		LEDs    led.Mapping       `toml:"leds"`
		Logging map[string]string `toml:"logging"`
	}
	if err := toml.Unmarshal(data, &raw); err != nil {
		return cfg, fmt.Errorf("failed to parse TOML config: %w", err)
	}

	cfg.LEDs = raw.LEDs
	for key, value := range raw.Logging {
		switch key {
		case "level":
			cfg.Logging.Level = value
		case "format":
			cfg.Logging.Format = value
		default:
			cfg.Logging.Modules[key] = value
		}
	}

	return cfg, nil
}
