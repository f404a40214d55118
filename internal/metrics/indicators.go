// Package metrics provides Prometheus metrics for indicator dispatch and signal sources.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	indicatorValue = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "netled",
		Subsystem: "indicator",
		Name:      "value",
		Help:      "Last value dispatched to the indicator LED",
	}, []string{"channel"})

	commandsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "netled",
		Subsystem: "indicator",
		Name:      "commands_emitted_total",
		Help:      "Indicator commands dispatched to the LED sink",
	}, []string{"channel"})

	commandsSuppressed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "netled",
		Subsystem: "indicator",
		Name:      "commands_suppressed_total",
		Help:      "Indicator updates dropped because the state did not change",
	}, []string{"channel"})

	sinkFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "netled",
		Subsystem: "indicator",
		Name:      "sink_failures_total",
		Help:      "LED writes that returned an error",
	}, []string{"channel"})

	eventsIgnored = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "netled",
		Subsystem: "events",
		Name:      "ignored_total",
		Help:      "Events that produced no indicator update",
	}, []string{"reason"})

	modemSignalDbm = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "netled",
		Subsystem: "modem",
		Name:      "signal_dbm",
		Help:      "Last cellular signal power read from the modem",
	})

	modemPollErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "netled",
		Subsystem: "modem",
		Name:      "poll_errors_total",
		Help:      "Failed modem signal queries",
	})

	// Local cache for the API snapshot.
	valueCache   = make(map[string]int)
	valueCacheMu sync.RWMutex
)

// SetIndicatorValue records the value last written for a channel.
func SetIndicatorValue(channel string, value int) {
	indicatorValue.WithLabelValues(channel).Set(float64(value))
	commandsEmitted.WithLabelValues(channel).Inc()

	valueCacheMu.Lock()
	valueCache[channel] = value
	valueCacheMu.Unlock()
}

// IncCommandsSuppressed counts a deduplicated update.
func IncCommandsSuppressed(channel string) {
	commandsSuppressed.WithLabelValues(channel).Inc()
}

// IncSinkFailures counts a failed LED write.
func IncSinkFailures(channel string) {
	sinkFailures.WithLabelValues(channel).Inc()
}

// IncEventsIgnored counts an event that did not reach the state machine.
func IncEventsIgnored(reason string) {
	eventsIgnored.WithLabelValues(reason).Inc()
}

// SetModemSignalDbm records the last modem reading.
func SetModemSignalDbm(dbm int) {
	modemSignalDbm.Set(float64(dbm))
}

// IncModemPollErrors counts a failed modem query.
func IncModemPollErrors() {
	modemPollErrors.Inc()
}

// GetIndicatorValues returns the last dispatched value per channel.
func GetIndicatorValues() map[string]int {
	valueCacheMu.RLock()
	defer valueCacheMu.RUnlock()
	result := make(map[string]int, len(valueCache))
	for ch, v := range valueCache {
		result[ch] = v
	}
	return result
}
