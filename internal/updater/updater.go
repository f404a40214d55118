// Package updater replaces the running netled binary with a newer GitHub
// release, keeping the previous binary for rollback.
package updater

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/creativeprojects/go-selfupdate"
	"github.com/smazurov/netled/internal/version"
)

// DefaultRepository is the GitHub slug releases are fetched from.
const DefaultRepository = "smazurov/netled"

// Options configures an Updater.
type Options struct {
	Repository string // GitHub slug, e.g. "smazurov/netled"
	Prerelease bool
	BackupDir  string // defaults to $XDG_CACHE_HOME/netled/backup
}

// ReleaseInfo compares the running version with the latest release.
type ReleaseInfo struct {
	CurrentVersion  string    `json:"current_version"`
	LatestVersion   string    `json:"latest_version"`
	ReleaseNotes    string    `json:"release_notes,omitempty"`
	ReleaseURL      string    `json:"release_url,omitempty"`
	PublishedAt     time.Time `json:"published_at"`
	AssetSize       int       `json:"asset_size"`
	UpdateAvailable bool      `json:"update_available"`
}

// Updater checks for, applies and rolls back binary updates.
type Updater struct {
	repository selfupdate.Repository
	updater    *selfupdate.Updater
	backups    *backupStore
	current    string
	logger     *slog.Logger
}

// New creates an Updater backed by GitHub releases.
func New(opts Options, logger *slog.Logger) (*Updater, error) {
	if opts.Repository == "" {
		opts.Repository = DefaultRepository
	}

	source, err := selfupdate.NewGitHubSource(selfupdate.GitHubConfig{})
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub source: %w", err)
	}

	up, err := selfupdate.NewUpdater(selfupdate.Config{
		Source:     source,
		Prerelease: opts.Prerelease,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create updater: %w", err)
	}

	dir := opts.BackupDir
	if dir == "" {
		if dir, err = defaultBackupDir(); err != nil {
			return nil, err
		}
	}
	backups, err := newBackupStore(dir, logger)
	if err != nil {
		return nil, err
	}

	return &Updater{
		repository: selfupdate.ParseSlug(opts.Repository),
		updater:    up,
		backups:    backups,
		current:    version.Version,
		logger:     logger,
	}, nil
}

// Check queries the latest release without downloading it.
func (u *Updater) Check(ctx context.Context) (*ReleaseInfo, *selfupdate.Release, error) {
	release, found, err := u.updater.DetectLatest(ctx, u.repository)
	if err != nil {
		return nil, nil, newError(ErrCodeCheckFailed, "failed to check for updates", err)
	}
	if !found {
		return nil, nil, newError(ErrCodeNotFound, "repository not found or has no releases", nil)
	}

	return &ReleaseInfo{
		CurrentVersion:  u.current,
		LatestVersion:   release.Version(),
		ReleaseNotes:    release.ReleaseNotes,
		ReleaseURL:      release.URL,
		PublishedAt:     release.PublishedAt,
		AssetSize:       release.AssetByteSize,
		UpdateAvailable: isNewer(u.current, release.GreaterThan),
	}, release, nil
}

// Apply installs the latest release over the running binary. A failed
// install restores the backup taken just before it.
func (u *Updater) Apply(ctx context.Context) (*ReleaseInfo, error) {
	info, release, err := u.Check(ctx)
	if err != nil {
		return nil, err
	}
	if !info.UpdateAvailable {
		return info, newError(ErrCodeNoUpdate, "already running the latest version", nil)
	}

	exe, err := selfupdate.ExecutablePath()
	if err != nil {
		return nil, newError(ErrCodeApplyFailed, "failed to get executable path", err)
	}
	if err := checkWritable(filepath.Dir(exe)); err != nil {
		return nil, newError(ErrCodeNotWritable, "cannot replace executable", err)
	}

	if err := u.backups.save(exe, u.current); err != nil {
		return nil, newError(ErrCodeBackupFailed, "failed to create backup", err)
	}

	u.logger.Info("Applying update", "from", u.current, "to", release.Version())
	if err := u.updater.UpdateTo(ctx, release, exe); err != nil {
		if _, restoreErr := u.backups.restore(); restoreErr != nil {
			u.logger.Error("Automatic rollback failed", "error", restoreErr)
		}
		return nil, newError(ErrCodeApplyFailed, "failed to apply update", err)
	}

	u.logger.Info("Update applied", "version", release.Version())
	return info, nil
}

// Rollback restores the binary saved by the last Apply.
func (u *Updater) Rollback() (*BackupInfo, error) {
	if u.backups.info() == nil {
		return nil, newError(ErrCodeNoBackup, "no backup available for rollback", nil)
	}
	info, err := u.backups.restore()
	if err != nil {
		return nil, newError(ErrCodeRollbackFailed, "failed to restore backup", err)
	}
	return info, nil
}

// Backup returns the saved binary's metadata, or nil.
func (u *Updater) Backup() *BackupInfo {
	return u.backups.info()
}

// isNewer treats development builds as always outdated.
func isNewer(current string, greaterThan func(string) bool) bool {
	return current == "dev" || greaterThan(current)
}

func checkWritable(dir string) error {
	f, err := os.CreateTemp(dir, ".netled.update.*")
	if err != nil {
		return err
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}
