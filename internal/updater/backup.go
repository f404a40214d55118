package updater

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

const (
	backupFilename     = "netled.backup"
	backupInfoFilename = "backup.json"
)

// BackupInfo describes the binary saved before the last update.
type BackupInfo struct {
	Version   string    `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	ExecPath  string    `json:"exec_path"`
}

// backupStore keeps one copy of the previous binary next to a JSON sidecar.
type backupStore struct {
	dir    string
	logger *slog.Logger
}

func defaultBackupDir() (string, error) {
	cache, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate cache directory: %w", err)
	}
	return filepath.Join(cache, "netled", "backup"), nil
}

func newBackupStore(dir string, logger *slog.Logger) (*backupStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}
	return &backupStore{dir: dir, logger: logger}, nil
}

// info returns the current backup, or nil when none is usable.
func (b *backupStore) info() *BackupInfo {
	data, err := os.ReadFile(filepath.Join(b.dir, backupInfoFilename))
	if err != nil {
		return nil
	}

	var info BackupInfo
	if err := json.Unmarshal(data, &info); err != nil {
		b.logger.Warn("Failed to parse backup info", "error", err)
		return nil
	}

	if _, err := os.Stat(filepath.Join(b.dir, backupFilename)); err != nil {
		b.logger.Warn("Backup file missing", "dir", b.dir)
		return nil
	}
	return &info
}

// save copies execPath into the store, replacing any older backup.
func (b *backupStore) save(execPath, version string) error {
	if err := copyFile(execPath, filepath.Join(b.dir, backupFilename)); err != nil {
		return err
	}

	info := BackupInfo{
		Version:   version,
		CreatedAt: time.Now(),
		ExecPath:  execPath,
	}
	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal backup info: %w", err)
	}
	if err := os.WriteFile(filepath.Join(b.dir, backupInfoFilename), data, 0o644); err != nil {
		return fmt.Errorf("failed to write backup info: %w", err)
	}

	b.logger.Info("Backup created", "version", version, "dir", b.dir)
	return nil
}

// restore copies the backup over the executable it was taken from.
func (b *backupStore) restore() (*BackupInfo, error) {
	info := b.info()
	if info == nil {
		return nil, fmt.Errorf("no backup available")
	}
	if err := copyFile(filepath.Join(b.dir, backupFilename), info.ExecPath); err != nil {
		return nil, err
	}
	b.logger.Info("Backup restored", "version", info.Version)
	return info, nil
}

func copyFile(from, to string) error {
	src, err := os.Open(from)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", from, err)
	}
	defer src.Close()

	dst, err := os.OpenFile(to, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o755)
	if err != nil {
		return fmt.Errorf("failed to open %s for writing: %w", to, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return fmt.Errorf("failed to copy %s: %w", from, err)
	}
	return dst.Close()
}
