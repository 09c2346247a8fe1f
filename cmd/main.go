// Dashboard Snapshotter - Main Application
// Drives a headless browser to the admin dashboard, logs in when a
// login form is present, and writes a full-page screenshot to disk.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sazid/dashsnap/browser"
	"github.com/sazid/dashsnap/config"
	"github.com/sazid/dashsnap/logger"
	"github.com/sazid/dashsnap/snapshot"
	"github.com/sazid/dashsnap/storage"
)

// Application holds all components of the snapshot tool
type Application struct {
	config  *config.Config
	logger  *logger.Logger
	browser *browser.Browser
	db      *storage.Database
}

// Command line flags
var (
	configPath = flag.String("config", "config.yaml", "Path to configuration file")
	outputPath = flag.String("output", "", "Screenshot output path (overrides config)")
	targetURL  = flag.String("url", "", "Dashboard URL (overrides config)")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
)

func main() {
	flag.Parse()

	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		fmt.Println("Note: No .env file found, using environment variables")
	}

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Apply flag overrides
	if *outputPath != "" {
		cfg.Capture.OutputPath = *outputPath
	}
	if *targetURL != "" {
		cfg.Dashboard.URL = *targetURL
	}
	if *verbose {
		cfg.Logging.Level = "debug"
	}

	// Initialize logger
	log, err := logger.New(logger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		OutputFile: cfg.Logging.OutputFile,
	})
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	log.Info("Dashboard snapshotter starting...")
	log.Infof("Target: %s", cfg.Dashboard.URL)

	// Create application
	app, err := NewApplication(cfg, log)
	if err != nil {
		log.Errorf("Failed to initialize application: %v", err)
		os.Exit(1)
	}

	// Handle graceful shutdown
	setupGracefulShutdown(app)

	// Run the capture
	if err := app.Run(); err != nil {
		log.Errorf("Capture failed: %v", err)
		app.Close()
		os.Exit(1)
	}

	app.Close()
	log.Info("Capture completed successfully")
}

// NewApplication creates and initializes a new application instance
func NewApplication(cfg *config.Config, log *logger.Logger) (*Application, error) {
	app := &Application{
		config:  cfg,
		logger:  log,
		browser: browser.NewBrowser(cfg, log),
	}

	// Capture history is observability, not the product: a broken
	// history database must not block a capture.
	if cfg.Storage.Enabled {
		db, err := storage.NewDatabase(cfg.Storage.DatabasePath, log)
		if err != nil {
			log.WithError(err).Warn("Capture history unavailable, continuing without it")
		} else {
			app.db = db
		}
	}

	return app, nil
}

// Run executes one capture run and records its outcome
func (app *Application) Run() error {
	snapshotter := snapshot.NewSnapshotter(app.config, app.logger, app.browser)

	result, err := snapshotter.Run()
	app.recordRun(result, err)

	if err != nil {
		return err
	}

	app.logger.Infof("Screenshot written to %s", result.OutputPath)
	app.showTodayStats()
	return nil
}

// recordRun persists the run outcome to the capture history
func (app *Application) recordRun(result *snapshot.Result, runErr error) {
	if app.db == nil || result == nil {
		return
	}

	run := &storage.CaptureRun{
		URL:            result.URL,
		OutputPath:     result.OutputPath,
		LoginPerformed: result.LoginPerformed,
		Status:         "success",
		StartedAt:      result.StartedAt,
		DurationMS:     result.Duration().Milliseconds(),
	}
	if runErr != nil {
		run.Status = "failure"
		run.Error = runErr.Error()
	}

	if _, err := app.db.RecordRun(run); err != nil {
		app.logger.WithError(err).Warn("Failed to record capture run")
	}
}

// showTodayStats displays today's capture statistics
func (app *Application) showTodayStats() {
	if app.db == nil {
		return
	}

	stats, err := app.db.GetTodayStats()
	if err != nil {
		app.logger.WithError(err).Warn("Failed to get daily stats")
		return
	}

	app.logger.Infof("Today: %d runs, %d succeeded, %d failed", stats.Runs, stats.Successes, stats.Failures)
}

// Close cleans up application resources
func (app *Application) Close() {
	if app.browser != nil {
		app.browser.Close()
	}

	if app.db != nil {
		app.db.Close()
	}
}

// setupGracefulShutdown handles OS signals so an interrupted run still
// releases the browser session
func setupGracefulShutdown(app *Application) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		app.logger.Infof("Received signal: %v", sig)
		app.Close()
		os.Exit(1)
	}()
}
