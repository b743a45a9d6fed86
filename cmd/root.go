package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/inovacc/starcards/internal/application"
	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X github.com/inovacc/starcards/cmd.version=..."
var version = "dev"

var (
	flagAPIURL   string
	flagCategory categoryValue
	flagStorage  string
	flagLogJSON  bool
	flagVerbose  bool
)

var rootCmd = &cobra.Command{
	Use:   application.AppName,
	Short: "Browse Star Wars entities from the terminal or the browser",
	Long: `Starcards loads people, planets, vehicles and more from a SWAPI compatible
API and shows them as cards. Entities can be favorited and highlighted, in
an interactive terminal browser or in a local web UI that updates live.`,
	Version:      version,
	SilenceUsage: true,
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := rootCmd.ExecuteContext(ctx)

	stop()

	if err != nil {
		os.Exit(1)
	}
}

// GetRootCmd returns the root command for introspection purposes.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagAPIURL, "api-url", "", "Base URL of the entity API (overrides config and STARCARDS_API_URL)")
	pf.Var(&flagCategory, "category", "Entity category: people, planets, vehicles, starships, species, films")
	pf.StringVar(&flagStorage, "storage", "", "Favorites storage backend: bolt, sqlite, memory")
	pf.BoolVar(&flagLogJSON, "log-json", false, "Write logs as JSON")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")
}
