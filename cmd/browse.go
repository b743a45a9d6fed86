package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/inovacc/starcards/internal/application"
	"github.com/inovacc/starcards/internal/cli"
	"github.com/spf13/cobra"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Interactively browse entities",
	Long: `Open the interactive card browser.

Keys:
  enter  show details        f  add to favorites
  c      highlight orange    F  favorites (d removes)
  r      reload              /  filter
  q      quit`,
	Args: cobra.NoArgs,
	RunE: runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

// LogFileName receives log output while the terminal UI owns the screen
const LogFileName = "starcards.log"

func runBrowse(cmd *cobra.Command, _ []string) error {
	dir, err := application.GetApplicationDirectory()
	if err != nil {
		return err
	}

	logFile, err := os.OpenFile(filepath.Join(dir, LogFileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	defer func() { _ = logFile.Close() }()

	a, err := bootstrapWithLog(logFile)
	if err != nil {
		return err
	}
	defer a.Close()

	m := cli.NewBrowseModel(cmd.Context(), a.store)
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	_, err = p.Run()

	return err
}
