// Package snapshot implements the dashboard capture procedure: launch a
// headless browser, navigate to the dashboard, log in when a login form
// is present, let polled data settle, and write a screenshot to disk.
// The steps run strictly in order with a single branch on whether the
// login control exists.
package snapshot

import (
	"errors"
	"fmt"
	"time"

	"github.com/sazid/dashsnap/auth"
	"github.com/sazid/dashsnap/config"
	"github.com/sazid/dashsnap/logger"
)

// Error taxonomy for a capture run. Every failure is fatal and
// propagates to the caller after the browser session is released.
var (
	ErrLaunch        = errors.New("browser launch failed")
	ErrNavigation    = errors.New("dashboard navigation failed")
	ErrMarkerTimeout = errors.New("readiness marker did not appear in time")
	ErrCapture       = errors.New("screenshot capture failed")
)

// Driver is the browser capability the procedure drives. It is
// implemented by browser.Browser; tests supply a scripted fake.
type Driver interface {
	Launch() error
	Navigate(url string) error
	WaitForText(text string, timeout time.Duration) error
	HasButton(text string) bool
	FillByPlaceholder(placeholder, value string) error
	ClickButton(text string) error
	Settle(d time.Duration)
	CaptureScreenshot(path string) error
	Close() error
}

// Result describes a completed or failed capture run
type Result struct {
	URL            string
	OutputPath     string
	LoginPerformed bool
	StartedAt      time.Time
	FinishedAt     time.Time
}

// Duration returns the wall-clock time the run took
func (r *Result) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Snapshotter drives a single dashboard capture run
type Snapshotter struct {
	config *config.Config
	logger *logger.Logger
	driver Driver
}

// NewSnapshotter creates a new snapshotter over the given driver
func NewSnapshotter(cfg *config.Config, log *logger.Logger, driver Driver) *Snapshotter {
	return &Snapshotter{
		config: cfg,
		logger: log.WithModule("snapshot"),
		driver: driver,
	}
}

// Run executes one capture run. The browser session, once launched, is
// closed exactly once on every exit path. No step is retried; the first
// failure wraps its category error and surfaces to the caller. On
// success the screenshot exists at the configured output path; on
// failure no new file is written.
func (s *Snapshotter) Run() (*Result, error) {
	result := &Result{
		URL:        s.config.Dashboard.URL,
		OutputPath: s.config.Capture.OutputPath,
		StartedAt:  time.Now(),
	}

	if err := s.driver.Launch(); err != nil {
		// Nothing was acquired, nothing to release.
		result.FinishedAt = time.Now()
		return result, fmt.Errorf("%w: %v", ErrLaunch, err)
	}
	defer s.driver.Close()

	err := s.capture(result)
	result.FinishedAt = time.Now()
	if err != nil {
		return result, err
	}

	s.logger.CaptureEvent(result.OutputPath, "success", result.Duration().Milliseconds())
	return result, nil
}

// capture runs the post-launch steps against an acquired session
func (s *Snapshotter) capture(result *Result) error {
	dash := s.config.Dashboard

	if err := s.driver.Navigate(dash.URL); err != nil {
		return fmt.Errorf("%w: %v", ErrNavigation, err)
	}

	// Wait for the dashboard shell to render
	if err := s.driver.WaitForText(dash.LoadedMarker, s.config.MarkerTimeout()); err != nil {
		return fmt.Errorf("%w: %v", ErrMarkerTimeout, err)
	}

	// Log in if the dashboard put a login form in front of the metrics
	authenticator := auth.NewAuthenticator(s.config, s.logger, s.driver)
	loggedIn, err := authenticator.LoginIfNeeded()
	result.LoginPerformed = loggedIn
	if err != nil {
		if errors.Is(err, auth.ErrLoginTimeout) {
			return fmt.Errorf("%w: %v", ErrMarkerTimeout, err)
		}
		return err
	}

	// Revenue figures arrive on a polling timer with no completion
	// signal, so give them a fixed window to render.
	s.driver.Settle(s.config.SettleDelay())

	if err := s.driver.CaptureScreenshot(s.config.Capture.OutputPath); err != nil {
		return fmt.Errorf("%w: %v", ErrCapture, err)
	}

	return nil
}
