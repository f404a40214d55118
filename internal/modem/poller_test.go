package modem

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/smazurov/netled/internal/events"
	"github.com/smazurov/netled/internal/indicator"
)

// fakeModem answers every AT+CSQ with the next queued reply.
type fakeModem struct {
	mu      sync.Mutex
	replies []string
	pending bytes.Buffer
	written bytes.Buffer
	closed  bool
}

func (f *fakeModem) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.written.Write(p)
	if strings.Contains(string(p), "AT+CSQ") && len(f.replies) > 0 {
		f.pending.WriteString(f.replies[0])
		f.replies = f.replies[1:]
	}
	return len(p), nil
}

func (f *fakeModem) Read(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pending.Len() == 0 {
		return 0, nil
	}
	return f.pending.Read(p)
}

func (f *fakeModem) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

type recorder struct {
	mu     sync.Mutex
	events []events.SignalStrengthChangedEvent
}

func (r *recorder) Publish(ev events.Event) {
	if e, ok := ev.(events.SignalStrengthChangedEvent); ok {
		r.mu.Lock()
		r.events = append(r.events, e)
		r.mu.Unlock()
	}
}

func (r *recorder) published() []events.SignalStrengthChangedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.SignalStrengthChangedEvent(nil), r.events...)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestPoller(modem *fakeModem, rec *recorder) (*Poller, *int) {
	opens := 0
	open := func(string, int) (io.ReadWriteCloser, error) {
		opens++
		return modem, nil
	}
	return newPoller(Config{Device: "/dev/ttyUSB2"}, open, rec, testLogger()), &opens
}

func TestPoller_PollPublishesChanges(t *testing.T) {
	modem := &fakeModem{replies: []string{
		"+CSQ: 18,99\r\nOK\r\n",
		"+CSQ: 18,99\r\nOK\r\n",
		"+CSQ: 4,99\r\nOK\r\n",
	}}
	rec := &recorder{}
	p, opens := newTestPoller(modem, rec)

	for range 3 {
		if err := p.Poll(context.Background()); err != nil {
			t.Fatalf("Poll() error = %v", err)
		}
	}

	got := rec.published()
	if len(got) != 2 {
		t.Fatalf("published %d events, want 2", len(got))
	}
	if got[0].Technology != indicator.RadioGSM || got[0].Measurement.GSM.Asu != 18 || got[0].Source != "modem" {
		t.Errorf("first event = %+v", got[0])
	}
	if got[1].Measurement.GSM.Level != 1 {
		t.Errorf("second level = %d, want 1", got[1].Measurement.GSM.Level)
	}
	if *opens != 1 {
		t.Errorf("port opened %d times, want 1", *opens)
	}
	if !strings.Contains(modem.written.String(), "AT+CSQ\r") {
		t.Errorf("written = %q", modem.written.String())
	}
}

func TestPoller_ErrorReplyReopensPort(t *testing.T) {
	modem := &fakeModem{replies: []string{"ERROR\r\n", "+CSQ: 12,0\r\nOK\r\n"}}
	rec := &recorder{}
	p, opens := newTestPoller(modem, rec)

	if err := p.Poll(context.Background()); err == nil {
		t.Fatal("Poll() error = nil for ERROR reply")
	}
	if !modem.closed {
		t.Error("port not closed after failure")
	}
	if err := p.Poll(context.Background()); err != nil {
		t.Fatalf("Poll() error = %v", err)
	}
	if *opens != 2 {
		t.Errorf("port opened %d times, want 2", *opens)
	}
	if len(rec.published()) != 1 {
		t.Errorf("published %d events, want 1", len(rec.published()))
	}
}

func TestPoller_OpenFailure(t *testing.T) {
	open := func(string, int) (io.ReadWriteCloser, error) {
		return nil, errors.New("no such device")
	}
	p := newPoller(Config{Device: "/dev/ttyUSB9"}, open, &recorder{}, testLogger())

	if err := p.Poll(context.Background()); err == nil {
		t.Error("Poll() error = nil when the port cannot be opened")
	}
}

func TestPoller_StartRequiresDevice(t *testing.T) {
	p := NewPoller(Config{}, &recorder{}, testLogger())
	if err := p.Start(context.Background()); err == nil {
		t.Error("Start() error = nil without a device")
	}
}

func TestPoller_StartPollsImmediately(t *testing.T) {
	modem := &fakeModem{replies: []string{"+CSQ: 20,99\r\nOK\r\n"}}
	rec := &recorder{}
	p, _ := newTestPoller(modem, rec)
	p.cfg.Interval = time.Hour

	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for len(rec.published()) == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	p.Stop()

	if len(rec.published()) != 1 {
		t.Fatalf("published %d events, want 1", len(rec.published()))
	}
	if !modem.closed {
		t.Error("Stop() did not close the port")
	}
}

func TestReadReply_Timeout(t *testing.T) {
	_, err := readReply(context.Background(), &fakeModem{}, time.Now().Add(20*time.Millisecond))
	if err == nil {
		t.Error("readReply() error = nil for a silent modem")
	}
}
