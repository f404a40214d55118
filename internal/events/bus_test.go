package events

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/smazurov/netled/internal/indicator"
)

func TestBus_PublishSubscribe(t *testing.T) {
	bus := New()
	received := make(chan WiFiStateChangedEvent, 1)

	unsub := bus.Subscribe(func(e WiFiStateChangedEvent) {
		received <- e
	})
	defer unsub()

	bus.Publish(WiFiStateChangedEvent{Enabled: true, Source: "test"})

	got := <-received
	if !got.Enabled || got.Source != "test" {
		t.Errorf("received %+v, want enabled event from test", got)
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := New()
	received := make(chan EthernetStateChangedEvent, 1)

	unsub := bus.Subscribe(func(e EthernetStateChangedEvent) {
		received <- e
	})

	bus.Publish(EthernetStateChangedEvent{Connected: true})
	<-received

	unsub()

	bus.Publish(EthernetStateChangedEvent{Connected: false})
	select {
	case <-received:
		t.Fatal("Should not have received event after unsubscribe")
	case <-time.After(10 * time.Millisecond):
		// Expected - no event
	}
}

func TestBus_TypeSafety(t *testing.T) {
	bus := New()

	wifiReceived := make(chan bool, 1)
	hotspotReceived := make(chan bool, 1)

	unsub1 := bus.Subscribe(func(_ WiFiStateChangedEvent) {
		wifiReceived <- true
	})
	defer unsub1()

	unsub2 := bus.Subscribe(func(_ HotspotStateChangedEvent) {
		hotspotReceived <- true
	})
	defer unsub2()

	bus.Publish(WiFiStateChangedEvent{Enabled: true})
	<-wifiReceived

	select {
	case <-hotspotReceived:
		t.Fatal("Hotspot subscriber should NOT have received WiFiStateChangedEvent")
	case <-time.After(10 * time.Millisecond):
	}

	bus.Publish(HotspotStateChangedEvent{State: 13})
	<-hotspotReceived

	select {
	case <-wifiReceived:
		t.Fatal("Wi-Fi subscriber should NOT have received HotspotStateChangedEvent")
	case <-time.After(10 * time.Millisecond):
	}
}

func TestBus_ThreadSafety(_ *testing.T) {
	bus := New()
	var wg sync.WaitGroup
	numGoroutines := 10
	eventsPerGoroutine := 100
	expected := numGoroutines * eventsPerGoroutine

	receivedCh := make(chan bool, expected)

	unsub := bus.Subscribe(func(_ SignalStrengthChangedEvent) {
		receivedCh <- true
	})
	defer unsub()

	for range numGoroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range eventsPerGoroutine {
				bus.Publish(SignalStrengthChangedEvent{
					Technology: indicator.RadioGSM,
					Timestamp:  time.Now().Format(time.RFC3339),
				})
			}
		}()
	}

	wg.Wait()

	for range expected {
		<-receivedCh
	}
}

func TestBus_UnknownHandlerIsNoop(_ *testing.T) {
	bus := New()
	unsub := bus.Subscribe(func(_ string) {})
	unsub()
}

func TestSubscribeToChannel(t *testing.T) {
	bus := New()
	ch := make(chan any, 10)

	unsub := SubscribeToChannel[IndicatorChangedEvent](bus, ch)
	defer unsub()

	bus.Publish(IndicatorChangedEvent{Channel: "wifi", State: "on", Value: 1})

	received := <-ch
	ev, ok := received.(IndicatorChangedEvent)
	if !ok {
		t.Fatalf("Expected IndicatorChangedEvent, got %T", received)
	}
	if ev.Channel != "wifi" || ev.Value != 1 {
		t.Errorf("received %+v", ev)
	}
}

func TestSubscribeToChannel_NonBlocking(_ *testing.T) {
	bus := New()
	ch := make(chan any)

	unsub := SubscribeToChannel[IndicatorChangedEvent](bus, ch)
	defer unsub()

	done := make(chan bool, 1)
	go func() {
		bus.Publish(IndicatorChangedEvent{Channel: "wifi"})
		done <- true
	}()

	<-done
}

func TestSignalStrengthChangedEvent_JSONTechnology(t *testing.T) {
	data, err := json.Marshal(SignalStrengthChangedEvent{Technology: indicator.RadioCDMA})
	if err != nil {
		t.Fatalf("Failed to marshal: %v", err)
	}

	var result map[string]any
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}
	if result["technology"] != "cdma" {
		t.Errorf("technology = %v, want cdma", result["technology"])
	}
}
