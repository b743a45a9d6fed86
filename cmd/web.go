package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/inovacc/starcards/internal/application"
	"github.com/inovacc/starcards/internal/server/web"
	"github.com/inovacc/starcards/internal/serverinfo"
	"github.com/inovacc/starcards/internal/state"
	"github.com/spf13/cobra"
)

var (
	webPort      int
	webHost      string
	webNoBrowser bool
)

func init() {
	rootCmd.AddCommand(webCmd)

	webCmd.Flags().IntVarP(&webPort, "port", "p", 0, "Port to run the web server on (default from config, 8080)")
	webCmd.Flags().StringVar(&webHost, "host", "", "Interface to bind (default from config, 127.0.0.1)")
	webCmd.Flags().BoolVar(&webNoBrowser, "no-browser", false, "Don't automatically open the browser")
}

var webCmd = &cobra.Command{
	Use:   "web",
	Short: "Start the web interface",
	Long: `Start a local web server that shows the entities as cards.

Pages update live over server-sent events whenever the store changes,
whether the change comes from the browser, the API or another client.

Examples:
  starcards web                    # Start on the configured port
  starcards web --port 9000        # Start on custom port
  starcards web --no-browser       # Don't auto-open browser`,
	Args: cobra.NoArgs,
	RunE: runWeb,
}

func runWeb(cmd *cobra.Command, _ []string) error {
	dir, err := application.GetApplicationDirectory()
	if err != nil {
		return err
	}

	// the running server holds the storage lock, so check before opening it
	if err := checkNotRunning(dir); err != nil {
		return err
	}

	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.Close()

	config := web.DefaultConfig()
	config.Host = a.cfg.WebHost
	config.Port = a.cfg.WebPort
	config.OpenBrowser = !webNoBrowser
	config.InfoDir = dir

	if webHost != "" {
		config.Host = webHost
	}

	if webPort != 0 {
		config.Port = webPort
	}

	server, err := web.New(a.store, config, a.logger)
	if err != nil {
		return fmt.Errorf("failed to create web server: %w", err)
	}

	ctx := cmd.Context()

	go initialLoad(ctx, a.store, a.logger)

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Starting web server on http://%s\n", server.Addr())

	if config.OpenBrowser {
		_, _ = fmt.Fprintln(out, "Opening browser...")
	} else {
		_, _ = fmt.Fprintf(out, "Open http://%s in your browser\n", server.Addr())
	}

	_, _ = fmt.Fprintln(out, "Press Ctrl+C to stop")

	return server.Start(ctx)
}

func checkNotRunning(dir string) error {
	if info := serverinfo.Running(dir); info != nil {
		return fmt.Errorf("a web server is already running at %s (pid %d)", info.URL, info.PID)
	}

	return nil
}

// initialLoad populates the store once the server is up. Failures are
// recorded by the store and shown on the page.
func initialLoad(ctx context.Context, st *state.Store, logger *slog.Logger) {
	if err := st.Load(ctx); err != nil && !errors.Is(err, state.ErrStaleLoad) && ctx.Err() == nil {
		logger.Debug("initial load failed", slog.Any("error", err))
	}
}
