package cmd

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/shrimptools/taskviewer/internal/agents"
	"github.com/shrimptools/taskviewer/internal/config"
	"github.com/shrimptools/taskviewer/internal/profile"
	"github.com/shrimptools/taskviewer/internal/server"
	"github.com/shrimptools/taskviewer/internal/watch"
)

var (
	serveHost   string
	servePort   int
	staticDir   string
	openDash    bool
	noWatchMode bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard server",
	Long: `Start the dashboard HTTP server for all registered profiles.

Examples:
  taskviewer serve                   # serve on the configured host/port
  taskviewer serve --port 8080       # custom port
  taskviewer serve --open            # open the dashboard in a browser
  taskviewer serve --static-dir dist # serve a UI build from disk`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveHost, "host", "", "listen host (default from config)")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "listen port (default from config)")
	serveCmd.Flags().StringVar(&staticDir, "static-dir", "", "serve the dashboard UI from this directory instead of the embedded build")
	serveCmd.Flags().BoolVar(&openDash, "open", false, "open the dashboard in the default browser")
	serveCmd.Flags().BoolVar(&noWatchMode, "no-watch", false, "disable task file watching")
}

func runServe(cmd *cobra.Command, args []string) error {
	host := serveHost
	if host == "" {
		host = viper.GetString("server.host")
	}
	port := servePort
	if port == 0 {
		port = viper.GetInt("server.port")
	}

	registry, err := openRegistry()
	if err != nil {
		return fmt.Errorf("open profile registry: %w", err)
	}

	srv, err := server.New(server.Options{
		Host:            host,
		Port:            port,
		Registry:        registry,
		Agents:          agents.NewLoader(),
		GlobalAgentsDir: config.GetGlobalAgentsDir(),
		StaticDir:       staticDir,
		Logger:          logger,
	})
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	var wg sync.WaitGroup
	errChan := make(chan error, 2)
	srv.Start(&wg, errChan)

	var watcher *watch.Watcher
	if !noWatchMode && viper.GetBool("watch.enabled") {
		watcher, err = startWatcher(registry, srv)
		if err != nil {
			// Watching is an enhancement; the dashboard works without it.
			logger.Warn().Err(err).Msg("task file watching disabled")
			watcher = nil
		}
	}

	url := fmt.Sprintf("http://%s:%d", host, port)
	logger.Info().Str("url", url).Msg("dashboard ready, press Ctrl+C to stop")

	if openDash || viper.GetBool("server.openBrowser") {
		// Give the listener a moment before pointing a browser at it.
		time.Sleep(300 * time.Millisecond)
		if err := openBrowser(url); err != nil {
			logger.Warn().Err(err).Str("url", url).Msg("could not open browser")
		}
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	case err := <-errChan:
		logger.Error().Err(err).Msg("server failed")
	}

	if watcher != nil {
		watcher.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("server shutdown")
	}

	wg.Wait()
	logger.Info().Msg("stopped")
	return nil
}

// startWatcher wires every registered profile's task file into an fsnotify
// watcher feeding the server's change tracker.
func startWatcher(registry *profile.Registry, srv *server.Server) (*watch.Watcher, error) {
	watcher, err := watch.New(logger)
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	profiles, err := registry.List()
	if err != nil {
		watcher.Stop()
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	for _, p := range profiles {
		if err := watcher.Add(p.ID, p.TaskPath); err != nil {
			logger.Warn().Err(err).Str("profile", p.ID).Msg("cannot watch task file")
		}
	}

	watcher.Start()
	srv.TrackChanges(watcher.Changed())
	return watcher, nil
}

// openBrowser opens the URL in the platform's default browser.
func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
	return cmd.Start()
}
