package api

import (
	"context"
	"net/http"
	"slices"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/sse"
	"github.com/smazurov/netled/internal/api/models"
	"github.com/smazurov/netled/internal/events"
	"github.com/smazurov/netled/internal/indicator"
)

func (s *Server) registerIndicatorRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "list-indicators",
		Method:      http.MethodGet,
		Path:        "/api/indicators",
		Summary:     "List Indicators",
		Description: "Last state dispatched to each indicator channel and whether the board has an LED for it",
		Tags:        []string{"indicators"},
		Security:    withAuth(),
		Errors:      []int{401, 503},
	}, func(_ context.Context, _ *struct{}) (*models.IndicatorsResponse, error) {
		if s.options.Indicators == nil {
			return nil, huma.Error503ServiceUnavailable("LED manager not running")
		}
		return &models.IndicatorsResponse{
			Body: models.IndicatorsData{Indicators: indicatorData(s.options.Indicators)},
		}, nil
	})

	sse.Register(s.api, huma.Operation{
		OperationID: "indicators-stream",
		Method:      http.MethodGet,
		Path:        "/api/indicators/stream",
		Summary:     "Indicator Event Stream",
		Description: "Server-Sent Events for every command dispatched to the LEDs",
		Tags:        []string{"indicators"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, map[string]any{
		"indicator-changed": events.IndicatorChangedEvent{},
	}, func(ctx context.Context, _ *struct{}, send sse.Sender) {
		eventCh := make(chan any, 10)
		unsubscribe := events.SubscribeToChannel[events.IndicatorChangedEvent](s.eventBus, eventCh)
		defer unsubscribe()

		for {
			select {
			case <-ctx.Done():
				return
			case event := <-eventCh:
				if err := send.Data(event); err != nil {
					return
				}
			}
		}
	})
}

func indicatorData(source IndicatorSource) []models.IndicatorData {
	snapshot := source.Snapshot()
	available := source.Available()

	result := make([]models.IndicatorData, 0, len(indicator.Channels()))
	for _, ch := range indicator.Channels() {
		data := models.IndicatorData{
			Channel:   ch.String(),
			Available: slices.Contains(available, ch),
		}
		if state, ok := snapshot[ch]; ok {
			data.Known = true
			data.State = state.String()
			data.Value = state.Value()
		}
		result = append(result, data)
	}
	return result
}
