package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/smazurov/netled/internal/logging"
	"github.com/smazurov/netled/internal/updater"
	"github.com/spf13/cobra"
)

// CreateUpdateCmd creates the update command. Restarting the service after
// an update is left to the operator or systemd.
func CreateUpdateCmd() *cobra.Command {
	var (
		opts     updater.Options
		check    bool
		rollback bool
	)

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update netled to the latest GitHub release",
		Example: `  netled update --check
  netled update
  netled update --rollback`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			up, err := updater.New(opts, logging.GetLogger("updater"))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			switch {
			case rollback:
				info, err := up.Rollback()
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "restored %s to %s\n", info.ExecPath, info.Version)
				return nil
			case check:
				info, _, err := up.Check(cmd.Context())
				if err != nil {
					return err
				}
				printRelease(out, info)
				if backup := up.Backup(); backup != nil {
					fmt.Fprintf(out, "rollback available: %s\n", backup.Version)
				}
				return nil
			}

			info, err := up.Apply(cmd.Context())
			var upErr *updater.Error
			if errors.As(err, &upErr) && upErr.Code == updater.ErrCodeNoUpdate {
				printRelease(out, info)
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "updated %s -> %s; restart netled to use it\n", info.CurrentVersion, info.LatestVersion)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Repository, "repository", updater.DefaultRepository, "GitHub repository slug")
	cmd.Flags().BoolVar(&opts.Prerelease, "prerelease", false, "Include prereleases")
	cmd.Flags().StringVar(&opts.BackupDir, "backup-dir", "", "Directory for the previous binary")
	cmd.Flags().BoolVar(&check, "check", false, "Only report whether an update is available")
	cmd.Flags().BoolVar(&rollback, "rollback", false, "Restore the binary saved by the last update")
	cmd.MarkFlagsMutuallyExclusive("check", "rollback")
	return cmd
}

func printRelease(w io.Writer, info *updater.ReleaseInfo) {
	if info.UpdateAvailable {
		fmt.Fprintf(w, "update available: %s -> %s\n", info.CurrentVersion, info.LatestVersion)
		if info.ReleaseURL != "" {
			fmt.Fprintln(w, info.ReleaseURL)
		}
		return
	}
	fmt.Fprintf(w, "up to date: %s\n", info.CurrentVersion)
}
