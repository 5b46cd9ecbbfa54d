// Package main provides the entry point for the Goode projection service.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jobrunner/goode/internal/app"
	"github.com/jobrunner/goode/internal/config"
	"github.com/jobrunner/goode/internal/projection"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

var cfgFile string

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "goode",
	Short: "Goode - Interrupted Homolosine Projection Service",
	Long: `Goode is a coordinate projection service built around the interrupted
Goode homolosine projection.

It provides a REST API for projecting geographic coordinates into the
homolosine plane and back, and for reprojecting the point layers of
registered GeoPackage datasets.

Features:
  - Interrupted Goode homolosine, sinusoidal and Mollweide projections
  - Batch forward and inverse transforms with exact round trips
  - GeoPackage point layer reprojection via SpatiaLite
  - Multiple storage backends (local, AWS S3, Azure, HTTP)
  - Hot-reload of GeoPackage datasets
  - TLS with automatic certificate management
  - Prometheus metrics`,
	RunE: runServer,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("Goode %s\n", version)
		fmt.Printf("  Commit:     %s\n", commit)
		fmt.Printf("  Build Date: %s\n", buildDate)
	},
}

var transformCmd = &cobra.Command{
	Use:   "transform <lon> <lat>",
	Short: "Project a single coordinate on the command line",
	Long: `Projects a single geographic coordinate (degrees) to the plane and
prints the planar coordinates along with the recovered geographic
coordinate, without starting the server.`,
	Args: cobra.ExactArgs(2),
	RunE: runTransform,
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "json", "log format (json, text)")

	// Server flags
	rootCmd.Flags().String("host", "0.0.0.0", "server host")
	rootCmd.Flags().Int("port", 8080, "server port")
	rootCmd.Flags().Bool("tls", false, "enable TLS")
	rootCmd.Flags().StringSlice("tls-domains", nil, "TLS domains")
	rootCmd.Flags().String("tls-email", "", "TLS email for Let's Encrypt")

	// Storage flags
	rootCmd.Flags().String("storage-type", "local", "storage type (local, s3, azure, http)")
	rootCmd.Flags().String("storage-path", "./data", "local storage path")

	// CORS flags
	rootCmd.Flags().StringSlice("cors", nil, "allowed CORS origins (e.g., https://example.com,*.sub.domain.tld)")

	// Projection flags
	rootCmd.Flags().String("projection", "Goode_Homolosine", "default projection name")
	rootCmd.Flags().Float64("semi-major", 6370997.0, "semi-major axis in meters")
	rootCmd.Flags().Float64("central-meridian", 0.0, "central meridian in degrees")

	// Transform flags
	rootCmd.Flags().Bool("with-properties", false, "include feature attributes in reprojection results")

	// Bind flags to viper
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag("server.host", rootCmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("server.port", rootCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("tls.enabled", rootCmd.Flags().Lookup("tls"))
	_ = viper.BindPFlag("tls.domains", rootCmd.Flags().Lookup("tls-domains"))
	_ = viper.BindPFlag("tls.email", rootCmd.Flags().Lookup("tls-email"))
	_ = viper.BindPFlag("storage.type", rootCmd.Flags().Lookup("storage-type"))
	_ = viper.BindPFlag("storage.local_path", rootCmd.Flags().Lookup("storage-path"))
	_ = viper.BindPFlag("server.cors.allowed_origins", rootCmd.Flags().Lookup("cors"))
	_ = viper.BindPFlag("projection.default", rootCmd.Flags().Lookup("projection"))
	_ = viper.BindPFlag("projection.semi_major", rootCmd.Flags().Lookup("semi-major"))
	_ = viper.BindPFlag("projection.central_meridian", rootCmd.Flags().Lookup("central-meridian"))
	_ = viper.BindPFlag("transform.with_properties", rootCmd.Flags().Lookup("with-properties"))

	transformCmd.Flags().String("projection", "Goode_Homolosine", "projection name")
	transformCmd.Flags().Float64("semi-major", 6370997.0, "semi-major axis in meters")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(transformCmd)
}

func initConfig() {
	config.Defaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
}

func runServer(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Setup logger
	logger := setupLogger(cfg.Logging)
	slog.SetDefault(logger)

	logger.Info("starting Goode",
		"version", version,
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"projection", cfg.Projection.Default,
		"storage_type", cfg.Storage.Type,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Initialize application
	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}

	// Start server in background
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", "address", cfg.Server.Address())
		if err := application.Start(ctx); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	// Wait for shutdown signal or server error
	select {
	case sig := <-sigChan:
		logger.Info("received shutdown signal", "signal", sig)
	case err := <-serverErr:
		logger.Error("server error", "error", err)
		cancel()
	case <-ctx.Done():
	}

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	logger.Info("shutting down server")
	if err := application.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		return err
	}

	logger.Info("server stopped")
	return nil
}

func runTransform(cmd *cobra.Command, args []string) error {
	var lon, lat float64
	if _, err := fmt.Sscanf(args[0], "%f", &lon); err != nil {
		return fmt.Errorf("invalid longitude %q", args[0])
	}
	if _, err := fmt.Sscanf(args[1], "%f", &lat); err != nil {
		return fmt.Errorf("invalid latitude %q", args[1])
	}

	name, _ := cmd.Flags().GetString("projection")
	semiMajor, _ := cmd.Flags().GetFloat64("semi-major")

	proj, err := projection.New(name, projection.Params{
		SemiMajor: semiMajor,
		SemiMinor: semiMajor,
	})
	if err != nil {
		return err
	}

	const degToRad = 0.017453292519943295
	x, y, err := proj.Forward(lon*degToRad, lat*degToRad)
	if err != nil {
		return err
	}
	rlon, rlat, err := proj.Inverse(x, y)
	if err != nil {
		return err
	}

	fmt.Printf("%s\n", proj.Name())
	fmt.Printf("  forward: (%.6f, %.6f) deg -> (%.3f, %.3f) m\n", lon, lat, x, y)
	fmt.Printf("  inverse: (%.3f, %.3f) m -> (%.10f, %.10f) deg\n", x, y, rlon/degToRad, rlat/degToRad)
	return nil
}

func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				a.Value = slog.StringValue(time.Now().UTC().Format(time.RFC3339))
			}
			return a
		},
	}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
