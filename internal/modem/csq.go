// Package modem reads cellular signal strength from a serial AT modem.
package modem

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/smazurov/netled/internal/indicator"
)

// ErrNoCSQ is returned when a reply holds no +CSQ line.
var ErrNoCSQ = errors.New("no +CSQ line in modem reply")

const rssiUnknown = 99

// CSQ is the result of AT+CSQ. RSSI is the GSM asu (0-31, 99 unknown).
type CSQ struct {
	RSSI int
	BER  int
}

// ParseCSQ finds and parses the "+CSQ: <rssi>,<ber>" line in a modem reply.
func ParseCSQ(reply string) (CSQ, error) {
	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		rest, ok := strings.CutPrefix(line, "+CSQ:")
		if !ok {
			continue
		}

		rssiText, berText, ok := strings.Cut(rest, ",")
		if !ok {
			return CSQ{}, fmt.Errorf("malformed CSQ line %q", line)
		}
		rssi, err := strconv.Atoi(strings.TrimSpace(rssiText))
		if err != nil {
			return CSQ{}, fmt.Errorf("malformed CSQ rssi %q: %w", rssiText, err)
		}
		ber, err := strconv.Atoi(strings.TrimSpace(berText))
		if err != nil {
			return CSQ{}, fmt.Errorf("malformed CSQ ber %q: %w", berText, err)
		}
		return CSQ{RSSI: rssi, BER: ber}, nil
	}
	return CSQ{}, ErrNoCSQ
}

// Measurement converts the reply into a GSM signal measurement.
func (c CSQ) Measurement() indicator.SignalMeasurement {
	return indicator.SignalMeasurement{GSM: indicator.GSMReadingFromAsu(c.RSSI)}
}
