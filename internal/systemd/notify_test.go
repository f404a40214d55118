package systemd

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
)

type recordingNotify struct {
	mu     sync.Mutex
	states []string
	err    error
}

func (r *recordingNotify) notify(state string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, state)
	return r.err == nil, r.err
}

func (r *recordingNotify) sent() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.states...)
}

func newTestNotifier(rec *recordingNotify) *Notifier {
	return &Notifier{
		logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})),
		notify: rec.notify,
	}
}

func TestNotifier_States(t *testing.T) {
	rec := &recordingNotify{}
	n := newTestNotifier(rec)

	n.Ready()
	n.Status("3 indicators")
	n.Reloading()
	n.Stopping()

	want := []string{daemon.SdNotifyReady, "STATUS=3 indicators", daemon.SdNotifyReloading, daemon.SdNotifyStopping}
	got := rec.sent()
	if len(got) != len(want) {
		t.Fatalf("sent %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("state %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestNotifier_ErrorIsLogged(t *testing.T) {
	rec := &recordingNotify{err: errors.New("socket gone")}
	newTestNotifier(rec).Ready()
	if len(rec.sent()) != 1 {
		t.Error("notify not attempted")
	}
}

func TestNotifier_WatchdogPings(t *testing.T) {
	rec := &recordingNotify{}
	n := newTestNotifier(rec)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		n.watchdog(ctx, 5*time.Millisecond)
		close(done)
	}()

	deadline := time.Now().Add(time.Second)
	for len(rec.sent()) < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	<-done

	for _, s := range rec.sent() {
		if s != daemon.SdNotifyWatchdog {
			t.Errorf("sent %q, want watchdog pings only", s)
		}
	}
	if len(rec.sent()) < 2 {
		t.Errorf("sent %d pings, want at least 2", len(rec.sent()))
	}
}

func TestNotifier_WatchdogDisabled(t *testing.T) {
	t.Setenv("WATCHDOG_USEC", "")
	rec := &recordingNotify{}
	newTestNotifier(rec).Watchdog(context.Background())
	if len(rec.sent()) != 0 {
		t.Error("watchdog pinged without WATCHDOG_USEC")
	}
}
