package api

import (
	"bufio"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/smazurov/netled/internal/api/models"
	"github.com/smazurov/netled/internal/events"
	"github.com/smazurov/netled/internal/indicator"
	"github.com/smazurov/netled/internal/logging"
)

type fakeIndicators struct {
	snapshot   map[indicator.Channel]indicator.State
	available  []indicator.Channel
	registered bool
}

func (f *fakeIndicators) Snapshot() map[indicator.Channel]indicator.State { return f.snapshot }
func (f *fakeIndicators) Available() []indicator.Channel                  { return f.available }
func (f *fakeIndicators) Registered() bool                                { return f.registered }

func newTestAPI(t *testing.T, source IndicatorSource) (humatest.TestAPI, *events.Bus) {
	t.Helper()
	_, api := humatest.New(t)
	bus := events.New()
	s := &Server{
		api:      api,
		options:  &Options{EventBus: bus, Indicators: source},
		eventBus: bus,
		logger:   logging.GetLogger("api"),
	}
	s.registerRoutes()
	return api, bus
}

func TestListIndicators(t *testing.T) {
	source := &fakeIndicators{
		snapshot: map[indicator.Channel]indicator.State{
			indicator.ChannelWiFi:     indicator.Binary(true),
			indicator.ChannelCellular: indicator.Level(indicator.SignalGood),
		},
		available:  []indicator.Channel{indicator.ChannelWiFi, indicator.ChannelCellular},
		registered: true,
	}
	api, _ := newTestAPI(t, source)

	resp := api.Get("/api/indicators")
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.Code, resp.Body.String())
	}

	var body models.IndicatorsData
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Indicators) != 3 {
		t.Fatalf("got %d indicators, want 3", len(body.Indicators))
	}

	byChannel := make(map[string]models.IndicatorData)
	for _, ind := range body.Indicators {
		byChannel[ind.Channel] = ind
	}
	if wifi := byChannel["wifi"]; !wifi.Known || wifi.Value != 1 || !wifi.Available {
		t.Errorf("wifi = %+v", wifi)
	}
	if eth := byChannel["ethernet"]; eth.Known || eth.Available {
		t.Errorf("ethernet = %+v, want unknown and unavailable", eth)
	}
	if cell := byChannel["cellular"]; cell.Value != int(indicator.SignalGood) || cell.State != "level:good" {
		t.Errorf("cellular = %+v", cell)
	}
}

func TestListIndicators_NoManager(t *testing.T) {
	api, _ := newTestAPI(t, nil)
	if resp := api.Get("/api/indicators"); resp.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", resp.Code)
	}
}

func TestPostEvents(t *testing.T) {
	api, bus := newTestAPI(t, &fakeIndicators{})

	wifi := make(chan events.WiFiStateChangedEvent, 1)
	hotspot := make(chan events.HotspotStateChangedEvent, 1)
	signal := make(chan events.SignalStrengthChangedEvent, 1)
	ethernet := make(chan events.EthernetStateChangedEvent, 1)
	defer bus.Subscribe(func(e events.WiFiStateChangedEvent) { wifi <- e })()
	defer bus.Subscribe(func(e events.HotspotStateChangedEvent) { hotspot <- e })()
	defer bus.Subscribe(func(e events.SignalStrengthChangedEvent) { signal <- e })()
	defer bus.Subscribe(func(e events.EthernetStateChangedEvent) { ethernet <- e })()

	if resp := api.Post("/api/events/wifi", map[string]any{"enabled": true}); resp.Code != http.StatusOK {
		t.Fatalf("wifi status = %d, body = %s", resp.Code, resp.Body.String())
	}
	if e := receive(t, wifi); !e.Enabled || e.Source != "api" {
		t.Errorf("wifi event = %+v", e)
	}

	if resp := api.Post("/api/events/ethernet", map[string]any{"connected": false}); resp.Code != http.StatusOK {
		t.Fatalf("ethernet status = %d", resp.Code)
	}
	if e := receive(t, ethernet); e.Connected {
		t.Errorf("ethernet event = %+v", e)
	}

	if resp := api.Post("/api/events/hotspot", map[string]any{"state": 13}); resp.Code != http.StatusOK {
		t.Fatalf("hotspot status = %d", resp.Code)
	}
	if e := receive(t, hotspot); e.State != 13 {
		t.Errorf("hotspot event = %+v", e)
	}

	resp := api.Post("/api/events/signal", map[string]any{
		"technology": "gsm",
		"gsm":        map[string]any{"dbm": -79, "asu": 17, "level": 4},
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("signal status = %d, body = %s", resp.Code, resp.Body.String())
	}
	e := receive(t, signal)
	if e.Technology != indicator.RadioGSM || e.Measurement.GSM.Level != 4 {
		t.Errorf("signal event = %+v", e)
	}
	if got := indicator.Classify(e.Technology, e.Measurement); got != indicator.SignalGood {
		t.Errorf("class = %v, want good", got)
	}
}

func TestPostEvents_Validation(t *testing.T) {
	api, _ := newTestAPI(t, &fakeIndicators{})

	if resp := api.Post("/api/events/wifi", map[string]any{}); resp.Code != http.StatusUnprocessableEntity {
		t.Errorf("missing field status = %d, want 422", resp.Code)
	}
	if resp := api.Post("/api/events/signal", map[string]any{"technology": "lte"}); resp.Code != http.StatusUnprocessableEntity {
		t.Errorf("bad technology status = %d, want 422", resp.Code)
	}
}

func TestVersionAndHealth(t *testing.T) {
	api, _ := newTestAPI(t, &fakeIndicators{registered: true})

	resp := api.Get("/api/version")
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), `"version"`) {
		t.Errorf("version: %d %s", resp.Code, resp.Body.String())
	}

	resp = api.Get("/api/health")
	var health models.HealthData
	if err := json.Unmarshal(resp.Body.Bytes(), &health); err != nil {
		t.Fatal(err)
	}
	if health.Status != "ok" || !health.Registered {
		t.Errorf("health = %+v", health)
	}
}

func TestBasicAuth(t *testing.T) {
	bus := events.New()
	s := NewServer(&Options{
		AuthUsername: "admin",
		AuthPassword: "secret",
		EventBus:     bus,
		Indicators:   &fakeIndicators{},
	})

	get := func(path, auth string) int {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if auth != "" {
			req.Header.Set("Authorization", auth)
		}
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, req)
		return rec.Code
	}
	basic := func(user, pass string) string {
		return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+pass))
	}

	tests := []struct {
		name string
		path string
		auth string
		want int
	}{
		{"no credentials", "/api/indicators", "", http.StatusUnauthorized},
		{"wrong password", "/api/indicators", basic("admin", "nope"), http.StatusUnauthorized},
		{"bearer", "/api/indicators", "Bearer token", http.StatusUnauthorized},
		{"valid", "/api/indicators", basic("admin", "secret"), http.StatusOK},
		{"query auth", "/api/indicators?auth=" + base64.StdEncoding.EncodeToString([]byte("admin:secret")), "", http.StatusOK},
		{"health is public", "/api/health", "", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := get(tt.path, tt.auth); got != tt.want {
				t.Errorf("status = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	s := NewServer(&Options{EventBus: events.New()})

	req := httptest.NewRequest(http.MethodOptions, "/api/events/wifi", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Allow-Origin = %q", got)
	}
}

func TestMetricsHandlerMounted(t *testing.T) {
	s := NewServer(&Options{
		EventBus: events.New(),
		PrometheusHandler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("netled_up 1\n"))
		}),
	})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "netled_up") {
		t.Errorf("metrics: %d %q", rec.Code, rec.Body.String())
	}
}

func TestIndicatorStream(t *testing.T) {
	bus := events.New()
	s := NewServer(&Options{EventBus: bus, Indicators: &fakeIndicators{}})
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/indicators/stream")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Fatalf("Content-Type = %q", ct)
	}

	lines := make(chan string, 16)
	go func() {
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	// The handler subscribes after the headers are sent; publish until one arrives.
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()
	timeout := time.After(3 * time.Second)
	for {
		select {
		case <-ticker.C:
			bus.Publish(events.IndicatorChangedEvent{Channel: "wifi", State: "on", Value: 1})
		case line, ok := <-lines:
			if !ok {
				t.Fatal("stream closed")
			}
			data, isData := strings.CutPrefix(line, "data: ")
			if !isData {
				continue
			}
			var ev events.IndicatorChangedEvent
			if err := json.Unmarshal([]byte(data), &ev); err != nil {
				t.Fatalf("bad SSE payload %q: %v", data, err)
			}
			if ev.Channel != "wifi" || ev.Value != 1 {
				t.Errorf("event = %+v", ev)
			}
			return
		case <-timeout:
			t.Fatal("timed out waiting for SSE event")
		}
	}
}

func receive[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for bus event")
		var zero T
		return zero
	}
}
