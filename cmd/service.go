package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/inovacc/starcards/internal/application"
	"github.com/inovacc/starcards/internal/server/web"
	"github.com/kardianos/service"
	"github.com/spf13/cobra"
)

var servicePort int

var serviceCmd = &cobra.Command{
	Use:   "service",
	Short: "Manage the web server as a system service",
	Long: `Install, uninstall, start, stop, or check the status of the starcards web
server as a system service.

On Windows, this creates/manages a Windows Service.
On Linux/macOS, this creates/manages a systemd/launchd service.`,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

func init() {
	rootCmd.AddCommand(serviceCmd)
	serviceCmd.PersistentFlags().IntVarP(&servicePort, "port", "p", 0, "Port for the web server (default from config)")

	for _, action := range []struct {
		use   string
		short string
		run   func(service.Service) error
	}{
		{"install", "Install the web server as a system service", installService},
		{"uninstall", "Uninstall the system service", uninstallService},
		{"start", "Start the system service", startService},
		{"stop", "Stop the system service", stopService},
		{"status", "Check the system service status", statusService},
	} {
		serviceCmd.AddCommand(&cobra.Command{
			Use:   action.use,
			Short: action.short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				s, err := newService()
				if err != nil {
					return err
				}

				return action.run(s)
			},
		})
	}

	serviceCmd.AddCommand(&cobra.Command{
		Use:    "run",
		Short:  "Run under the service manager",
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := newService()
			if err != nil {
				return err
			}

			return s.Run()
		},
	})
}

// program implements service.Interface around the web server
type program struct {
	cancel context.CancelFunc
	done   chan error
}

func (p *program) Start(_ service.Service) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}

	dir, err := application.GetApplicationDirectory()
	if err != nil {
		a.Close()

		return err
	}

	config := web.DefaultConfig()
	config.Host = a.cfg.WebHost
	config.Port = a.cfg.WebPort
	config.OpenBrowser = false
	config.InfoDir = dir

	if servicePort != 0 {
		config.Port = servicePort
	}

	server, err := web.New(a.store, config, a.logger)
	if err != nil {
		a.Close()

		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan error, 1)

	// Start should not block. Do the actual work async.
	go func() {
		defer a.Close()

		go initialLoad(ctx, a.store, a.logger)

		p.done <- server.Start(ctx)
	}()

	return nil
}

func (p *program) Stop(_ service.Service) error {
	if p.cancel == nil {
		return nil
	}

	p.cancel()

	return <-p.done
}

func newService() (service.Service, error) {
	args := []string{"service", "run"}
	if servicePort != 0 {
		args = append(args, "--port", strconv.Itoa(servicePort))
	}

	svcConfig := &service.Config{
		Name:        "StarcardsWeb",
		DisplayName: "Starcards Web Server",
		Description: "Serves the starcards web interface",
		Arguments:   args,
	}

	s, err := service.New(&program{}, svcConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create service: %w", err)
	}

	return s, nil
}

func installService(s service.Service) error {
	fmt.Println("Installing starcards web service...")

	if err := s.Install(); err != nil {
		return fmt.Errorf("failed to install service: %w", err)
	}

	fmt.Println("✓ Service installed successfully!")
	fmt.Println("\nTo start the service, run:")
	fmt.Println("  starcards service start")

	return nil
}

func uninstallService(s service.Service) error {
	fmt.Println("Uninstalling starcards web service...")

	// Try to stop first
	_ = s.Stop()

	if err := s.Uninstall(); err != nil {
		return fmt.Errorf("failed to uninstall service: %w", err)
	}

	fmt.Println("✓ Service uninstalled successfully!")

	return nil
}

func startService(s service.Service) error {
	fmt.Println("Starting starcards web service...")

	if err := s.Start(); err != nil {
		return fmt.Errorf("failed to start service: %w", err)
	}

	fmt.Println("✓ Service started successfully!")
	fmt.Println("Check it with: starcards status")

	return nil
}

func stopService(s service.Service) error {
	fmt.Println("Stopping starcards web service...")

	if err := s.Stop(); err != nil {
		return fmt.Errorf("failed to stop service: %w", err)
	}

	fmt.Println("✓ Service stopped successfully!")

	return nil
}

func statusService(s service.Service) error {
	status, err := s.Status()
	if err != nil {
		return fmt.Errorf("failed to get service status: %w", err)
	}

	fmt.Printf("Service Status: ")

	switch status {
	case service.StatusRunning:
		fmt.Println("Running ✓")
	case service.StatusStopped:
		fmt.Println("Stopped")
	case service.StatusUnknown:
		fmt.Println("Unknown")
	default:
		fmt.Printf("%v\n", status)
	}

	return nil
}
