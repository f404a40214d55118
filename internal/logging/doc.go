// Package logging provides structured logging with per-module log level configuration.
//
// Output goes to stdout when a terminal, pipe or file is attached and to the
// systemd journal when journald is running; both when both are available.
//
// Initialize once at startup, then ask for module loggers:
//
//	logging.Initialize(logging.Config{
//		Level:   "info",
//		Format:  "text",
//		Modules: map[string]string{"led": "debug"},
//	})
//	logger := logging.GetLogger("led")
//	logger.Info("Indicator updated", "channel", "wifi")
//
// Levels can be changed later with SetLevels, for example after the config
// file was edited. Journal entries are tagged with SyslogIdentifier:
//
//	journalctl -t netled MODULE=led
package logging
