package led

import (
	"log/slog"
	"os"
	"strings"
)

const deviceTreeModelPath = "/proc/device-tree/model"

// boardMappings holds built-in LED names for boards with network LEDs.
var boardMappings = map[string]Mapping{
	"NanoPi R2S": {
		Ethernet: "nanopi-r2s:green:lan",
	},
	"NanoPi R4S": {
		Ethernet: "green:lan",
	},
	"Raspberry Pi": {
		WiFi: "ACT",
	},
}

// New creates an LED controller. An explicit mapping wins; otherwise the board
// is detected from the device tree. Falls back to no-op when nothing is mapped.
func New(logger *slog.Logger, mapping Mapping) Controller {
	return newController(logger, sysfsLEDPath, mapping, detectBoard())
}

func newController(logger *slog.Logger, root string, mapping Mapping, boardModel string) Controller {
	if !mapping.Empty() {
		logger.Info("Using configured LED mapping",
			"wifi", mapping.WiFi,
			"ethernet", mapping.Ethernet,
			"cellular", mapping.Cellular)
		return newSysfs(root, mapping)
	}

	logger.Info("Detecting board for LED control", "board_model", boardModel)

	for board, preset := range boardMappings {
		if strings.Contains(boardModel, board) {
			logger.Info("Detected board with network LEDs, using sysfs LED controller", "board", board)
			return newSysfs(root, preset)
		}
	}

	logger.Info("No LED support detected, using no-op controller", "board_model", boardModel)
	return newNoop(logger)
}

// detectBoard reads the device tree model to identify the board.
func detectBoard() string {
	data, err := os.ReadFile(deviceTreeModelPath)
	if err != nil {
		return "unknown"
	}

	// Device tree model contains null bytes, trim them
	model := strings.TrimRight(string(data), "\x00")
	return model
}
