package commands

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nixdorfer/dialogue/internal/config"
	"github.com/nixdorfer/dialogue/internal/event"
	"github.com/nixdorfer/dialogue/internal/gateway"
	"github.com/nixdorfer/dialogue/internal/history"
	"github.com/nixdorfer/dialogue/internal/identity"
	"github.com/nixdorfer/dialogue/internal/logging"
	"github.com/nixdorfer/dialogue/internal/server"
	"github.com/nixdorfer/dialogue/internal/storage"
)

var (
	servePort     int
	serveHostname string
	serveDir      string
	autoConnect   bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local facade server",
	Long: `Start the facade server that the presentation layer talks to.

The server exposes the gateway session, local conversation history and
an SSE event stream on a local HTTP port.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 7365, "Port to listen on")
	serveCmd.Flags().StringVar(&serveHostname, "hostname", "127.0.0.1", "Hostname to listen on")
	serveCmd.Flags().StringVar(&serveDir, "directory", "", "Working directory for .env lookup")
	serveCmd.Flags().BoolVar(&autoConnect, "connect", false, "Open the gateway session on startup")
}

func runServe(cmd *cobra.Command, args []string) error {
	paths := config.GetPaths()
	if err := paths.EnsurePaths(); err != nil {
		return err
	}

	appConfig, err := config.Load(serveDir)
	if err != nil {
		return err
	}

	level := logging.ParseLevel(appConfig.LogLevel)
	if logLevel != "" {
		level = logging.ParseLevel(logLevel)
	}
	if printLogs {
		logging.Init(logging.Config{Level: level, Pretty: true})
	} else if err := logging.InitFile(paths.LogPath(), level); err != nil {
		return err
	}

	logging.Info().Str("version", Version).Msg("starting dialogue")

	store, err := history.NewStore(storage.New(paths.StoragePath()))
	if err != nil {
		return err
	}

	bus := event.NewBus()
	defer bus.Close()

	session := gateway.NewSession(gateway.Config{
		URL:           appConfig.GatewayURL,
		Origin:        appConfig.Origin,
		UserAgent:     appConfig.UserAgent,
		ClientVersion: Version,
	}, identity.New(), bus)

	serverConfig := server.DefaultConfig()
	serverConfig.Hostname = serveHostname
	serverConfig.Port = servePort
	serverConfig.Version = Version
	serverConfig.NoticePath = paths.NoticePath()

	srv := server.New(serverConfig, appConfig, session, store, bus)

	if autoConnect {
		if err := session.Connect(cmd.Context()); err != nil {
			logging.Warn().Err(err).Msg("initial gateway connect failed")
		}
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logging.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("shutdown error")
		return err
	}

	logging.Info().Msg("stopped")
	return nil
}
