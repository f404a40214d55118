package led

import (
	"log/slog"

	"github.com/smazurov/netled/internal/indicator"
)

// noop implements Controller for boards without indicator LEDs
type noop struct {
	logger *slog.Logger
}

// newNoop creates a new no-op LED controller
func newNoop(logger *slog.Logger) *noop {
	return &noop{
		logger: logger,
	}
}

// Set logs the command but performs no LED write
func (n *noop) Set(cmd indicator.Command) error {
	n.logger.Debug("LED control not available (no-op)",
		"channel", cmd.Channel.String(),
		"state", cmd.State.String(),
		"value", cmd.State.Value())
	return nil
}

// Available returns an empty list since no LEDs are available
func (n *noop) Available() []indicator.Channel {
	return []indicator.Channel{}
}
