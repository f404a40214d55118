package updater

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

func TestBackupStore_SaveRestore(t *testing.T) {
	dir := t.TempDir()
	exe := filepath.Join(dir, "netled")
	if err := os.WriteFile(exe, []byte("v1"), 0o755); err != nil {
		t.Fatal(err)
	}

	store, err := newBackupStore(filepath.Join(dir, "backup"), testLogger())
	if err != nil {
		t.Fatalf("newBackupStore: %v", err)
	}
	if store.info() != nil {
		t.Fatal("info() on empty store should be nil")
	}

	if err := store.save(exe, "1.0.0"); err != nil {
		t.Fatalf("save: %v", err)
	}
	info := store.info()
	if info == nil || info.Version != "1.0.0" || info.ExecPath != exe {
		t.Fatalf("info() = %+v", info)
	}

	if err := os.WriteFile(exe, []byte("v2"), 0o755); err != nil {
		t.Fatal(err)
	}
	if _, err := store.restore(); err != nil {
		t.Fatalf("restore: %v", err)
	}

	data, err := os.ReadFile(exe)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "v1" {
		t.Errorf("restored binary = %q, want v1", data)
	}
}

func TestBackupStore_MissingBinary(t *testing.T) {
	dir := t.TempDir()
	exe := filepath.Join(dir, "netled")
	if err := os.WriteFile(exe, []byte("v1"), 0o755); err != nil {
		t.Fatal(err)
	}

	store, err := newBackupStore(dir, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	if err := store.save(exe, "1.0.0"); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(filepath.Join(dir, backupFilename)); err != nil {
		t.Fatal(err)
	}

	if store.info() != nil {
		t.Error("info() should be nil when the backup binary is gone")
	}
	if _, err := store.restore(); err == nil {
		t.Error("restore() should fail without a backup")
	}
}

func TestUpdater_RollbackWithoutBackup(t *testing.T) {
	store, err := newBackupStore(t.TempDir(), testLogger())
	if err != nil {
		t.Fatal(err)
	}
	u := &Updater{backups: store, logger: testLogger()}

	_, err = u.Rollback()
	var upErr *Error
	if !errors.As(err, &upErr) || upErr.Code != ErrCodeNoBackup {
		t.Errorf("Rollback() error = %v, want %s", err, ErrCodeNoBackup)
	}
}

func TestIsNewer(t *testing.T) {
	tests := []struct {
		current string
		greater bool
		want    bool
	}{
		{"dev", false, true},
		{"1.0.0", true, true},
		{"1.0.0", false, false},
	}
	for _, tt := range tests {
		got := isNewer(tt.current, func(string) bool { return tt.greater })
		if got != tt.want {
			t.Errorf("isNewer(%q, %v) = %v, want %v", tt.current, tt.greater, got, tt.want)
		}
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := newError(ErrCodeApplyFailed, "failed", cause)
	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause")
	}
	if err.Error() != "APPLY_FAILED: failed: boom" {
		t.Errorf("Error() = %q", err.Error())
	}
}
