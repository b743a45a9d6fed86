package cmd

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/inovacc/starcards/internal/cli"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the entities of a category",
	Long: `Load the entities of the selected category and print them.

Output is styled when stdout is a terminal and tab separated otherwise.

Examples:
  starcards list
  starcards list --category planets
  starcards list --json | jq '.[].name'`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Print entities as JSON")
}

func runList(cmd *cobra.Command, _ []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.store.Load(cmd.Context()); err != nil {
		return err
	}

	snap := a.store.Snapshot()
	out := cmd.OutOrStdout()

	if listJSON {
		data, err := json.MarshalIndent(snap.Entities, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode entities: %w", err)
		}

		_, err = fmt.Fprintln(out, string(data))

		return err
	}

	styled := out == os.Stdout && term.IsTerminal(int(os.Stdout.Fd()))

	return cli.PrintEntities(out, snap, styled)
}
