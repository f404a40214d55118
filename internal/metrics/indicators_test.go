package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestSetIndicatorValue(t *testing.T) {
	before := testutil.ToFloat64(commandsEmitted.WithLabelValues("test-wifi"))

	SetIndicatorValue("test-wifi", 1)

	if got := testutil.ToFloat64(indicatorValue.WithLabelValues("test-wifi")); got != 1 {
		t.Errorf("indicator value = %v, want 1", got)
	}
	if got := testutil.ToFloat64(commandsEmitted.WithLabelValues("test-wifi")); got != before+1 {
		t.Errorf("commands emitted = %v, want %v", got, before+1)
	}

	values := GetIndicatorValues()
	if values["test-wifi"] != 1 {
		t.Errorf("GetIndicatorValues()[test-wifi] = %d, want 1", values["test-wifi"])
	}

	// Returned map is a copy
	values["test-wifi"] = 42
	if GetIndicatorValues()["test-wifi"] != 1 {
		t.Error("cache was modified through returned map")
	}
}

func TestCounters(t *testing.T) {
	tests := []struct {
		name  string
		inc   func()
		value func() float64
	}{
		{
			name:  "suppressed",
			inc:   func() { IncCommandsSuppressed("test-cellular") },
			value: func() float64 { return testutil.ToFloat64(commandsSuppressed.WithLabelValues("test-cellular")) },
		},
		{
			name:  "sink failures",
			inc:   func() { IncSinkFailures("test-ethernet") },
			value: func() float64 { return testutil.ToFloat64(sinkFailures.WithLabelValues("test-ethernet")) },
		},
		{
			name:  "ignored",
			inc:   func() { IncEventsIgnored("test-reason") },
			value: func() float64 { return testutil.ToFloat64(eventsIgnored.WithLabelValues("test-reason")) },
		},
		{
			name:  "modem errors",
			inc:   IncModemPollErrors,
			value: func() float64 { return testutil.ToFloat64(modemPollErrors) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := tt.value()
			tt.inc()
			if got := tt.value(); got != before+1 {
				t.Errorf("counter = %v, want %v", got, before+1)
			}
		})
	}
}

func TestSetModemSignalDbm(t *testing.T) {
	SetModemSignalDbm(-97)
	if got := testutil.ToFloat64(modemSignalDbm); got != -97 {
		t.Errorf("modem dbm = %v, want -97", got)
	}
}
