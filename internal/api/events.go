package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/netled/internal/api/models"
	"github.com/smazurov/netled/internal/events"
	"github.com/smazurov/netled/internal/indicator"
)

const apiSource = "api"

// registerEventRoutes lets tools and tests inject connectivity events. They
// take the same path through the bus as events from the monitors.
func (s *Server) registerEventRoutes() {
	registerEvent(s, "wifi", "Publish Wi-Fi State", func(_ context.Context, in *models.WiFiEventRequest) (*models.EventAcceptedResponse, error) {
		s.eventBus.Publish(events.WiFiStateChangedEvent{Enabled: in.Body.Enabled, Source: apiSource, Timestamp: now()})
		return accepted("wifi"), nil
	})

	registerEvent(s, "ethernet", "Publish Ethernet State", func(_ context.Context, in *models.EthernetEventRequest) (*models.EventAcceptedResponse, error) {
		s.eventBus.Publish(events.EthernetStateChangedEvent{Connected: in.Body.Connected, Source: apiSource, Timestamp: now()})
		return accepted("ethernet"), nil
	})

	// Unknown codes are accepted and ignored by the LED manager, like any unrecognized event.
	registerEvent(s, "hotspot", "Publish Hotspot State", func(_ context.Context, in *models.HotspotEventRequest) (*models.EventAcceptedResponse, error) {
		s.eventBus.Publish(events.HotspotStateChangedEvent{State: in.Body.State, Source: apiSource, Timestamp: now()})
		return accepted("hotspot"), nil
	})

	registerEvent(s, "signal", "Publish Signal Strength", func(_ context.Context, in *models.SignalEventRequest) (*models.EventAcceptedResponse, error) {
		s.eventBus.Publish(events.SignalStrengthChangedEvent{
			Technology:  indicator.ParseRadioTechnology(in.Body.Technology),
			Measurement: in.Measurement(),
			Source:      apiSource,
			Timestamp:   now(),
		})
		return accepted("signal"), nil
	})
}

func registerEvent[I any](s *Server, kind, summary string, handler func(context.Context, *I) (*models.EventAcceptedResponse, error)) {
	huma.Register(s.api, huma.Operation{
		OperationID: "post-" + kind + "-event",
		Method:      http.MethodPost,
		Path:        "/api/events/" + kind,
		Summary:     summary,
		Tags:        []string{"events"},
		Security:    withAuth(),
		Errors:      []int{400, 401, 422},
	}, handler)
}

func accepted(kind string) *models.EventAcceptedResponse {
	return &models.EventAcceptedResponse{
		Body: models.EventAcceptedData{Accepted: true, Event: kind},
	}
}

func now() string {
	return time.Now().Format(time.RFC3339)
}
