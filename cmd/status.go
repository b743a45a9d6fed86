package cmd

import (
	"fmt"
	"time"

	"github.com/inovacc/starcards/internal/application"
	"github.com/inovacc/starcards/internal/serverinfo"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether a web server is running",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	dir, err := application.GetApplicationDirectory()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	info := serverinfo.Running(dir)
	if info == nil {
		_, _ = fmt.Fprintln(out, "Web server: not running")
		_, _ = fmt.Fprintln(out, "Start it with: starcards web")

		return nil
	}

	_, _ = fmt.Fprintln(out, "Web server: running ✓")
	_, _ = fmt.Fprintf(out, "  URL:     %s\n", info.URL)
	_, _ = fmt.Fprintf(out, "  PID:     %d\n", info.PID)
	_, _ = fmt.Fprintf(out, "  Started: %s (%s ago)\n",
		info.StartedAt.Format("2006-01-02 15:04:05"),
		time.Since(info.StartedAt).Round(time.Second))

	if p, ok := serverinfo.FindProcess(info.PID); ok {
		_, _ = fmt.Fprintf(out, "  Binary:  %s (%s)\n", p.Path, p.BuildInfo)
	}

	return nil
}
