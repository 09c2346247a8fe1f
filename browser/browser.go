// Package browser provides browser automation setup and management using Rod.
// It handles browser initialization, page management, marker waits, and
// screenshot capture.
package browser

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/sazid/dashsnap/config"
	"github.com/sazid/dashsnap/logger"
)

// Browser wraps the Rod browser with the operations the snapshot
// procedure needs: navigation, text-marker waits, form interaction,
// and screenshot capture.
type Browser struct {
	config  *config.Config
	logger  *logger.Logger
	browser *rod.Browser
	page    *rod.Page
}

// NewBrowser creates a new browser instance
func NewBrowser(cfg *config.Config, log *logger.Logger) *Browser {
	return &Browser{
		config: cfg,
		logger: log.WithModule("browser"),
	}
}

// Launch initializes and launches the headless browser and opens the
// initial page. Nothing is acquired if an error is returned.
func (b *Browser) Launch() error {
	b.logger.Info("Launching browser")

	l := launcher.New().
		Headless(b.config.Browser.Headless).
		Set("disable-dev-shm-usage").
		Set("no-first-run").
		Set("no-default-browser-check").
		Set("disable-background-networking").
		Set("disable-extensions").
		Set("disable-popup-blocking")

	// Set window size
	l = l.Set("window-size", fmt.Sprintf("%d,%d", b.config.Browser.ViewportWidth, b.config.Browser.ViewportHeight))

	// Launch browser
	url, err := l.Launch()
	if err != nil {
		return fmt.Errorf("failed to launch browser: %w", err)
	}

	// Connect to browser
	b.browser = rod.New().
		ControlURL(url).
		Timeout(b.config.GetTimeout())

	err = b.browser.Connect()
	if err != nil {
		return fmt.Errorf("failed to connect to browser: %w", err)
	}

	b.logger.Info("Browser launched successfully")

	// Create initial page
	return b.createPage()
}

// createPage creates a new page with the configured viewport
func (b *Browser) createPage() error {
	var err error
	b.page, err = b.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		// A session without a page is useless, release it.
		b.browser.Close()
		b.browser = nil
		return fmt.Errorf("failed to create page: %w", err)
	}

	// Set viewport
	err = b.page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             b.config.Browser.ViewportWidth,
		Height:            b.config.Browser.ViewportHeight,
		DeviceScaleFactor: 1,
		Mobile:            false,
	})
	if err != nil {
		b.logger.WithError(err).Warn("Failed to set viewport")
	}

	b.logger.Debug("Page created")
	return nil
}

// GetPage returns the current page
func (b *Browser) GetPage() *rod.Page {
	return b.page
}

// GetBrowser returns the browser instance
func (b *Browser) GetBrowser() *rod.Browser {
	return b.browser
}

// Navigate navigates the page to a URL and waits for the load event
func (b *Browser) Navigate(url string) error {
	b.logger.BrowserAction("navigate", url)

	err := b.page.Navigate(url)
	if err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}

	err = b.page.WaitLoad()
	if err != nil {
		return fmt.Errorf("page load failed: %w", err)
	}

	return nil
}

// WaitForText blocks until an element whose text content matches the
// given literal appears, or the timeout elapses.
func (b *Browser) WaitForText(text string, timeout time.Duration) error {
	start := time.Now()

	_, err := b.page.Timeout(timeout).ElementR("*", regexp.QuoteMeta(text))
	elapsed := time.Since(start).Milliseconds()

	if err != nil {
		b.logger.MarkerWait(text, false, elapsed)
		return fmt.Errorf("marker %q did not appear within %s: %w", text, timeout, err)
	}

	b.logger.MarkerWait(text, true, elapsed)
	return nil
}

// HasButton checks once, without waiting, whether a button with the
// given visible text is present on the page.
func (b *Browser) HasButton(text string) bool {
	has, _, err := b.page.HasR("button", regexp.QuoteMeta(text))
	if err != nil {
		b.logger.WithError(err).Debug("Button probe failed")
		return false
	}
	return has
}

// FillByPlaceholder fills the input located by its placeholder attribute
func (b *Browser) FillByPlaceholder(placeholder, value string) error {
	el, err := b.page.Element(fmt.Sprintf(`input[placeholder=%q]`, placeholder))
	if err != nil {
		return fmt.Errorf("failed to find input with placeholder %q: %w", placeholder, err)
	}

	if err := el.SelectAllText(); err != nil {
		return fmt.Errorf("failed to select input text: %w", err)
	}

	if err := el.Input(value); err != nil {
		return fmt.Errorf("failed to fill input %q: %w", placeholder, err)
	}

	return nil
}

// ClickButton clicks the button with the given visible text
func (b *Browser) ClickButton(text string) error {
	el, err := b.page.ElementR("button", regexp.QuoteMeta(text))
	if err != nil {
		return fmt.Errorf("failed to find button %q: %w", text, err)
	}

	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("failed to click button %q: %w", text, err)
	}

	return nil
}

// Settle pauses for a fixed duration so asynchronously polled data can
// finish rendering. There is no completion signal to wait on, the
// dashboard fetches its revenue figures on a timer.
func (b *Browser) Settle(d time.Duration) {
	b.logger.Debugf("Settling for %s before capture", d)
	time.Sleep(d)
}

// CaptureScreenshot captures a raster image of the current page state
// and writes it to the given file path.
func (b *Browser) CaptureScreenshot(path string) error {
	data, err := b.page.Screenshot(b.config.Capture.FullPage, nil)
	if err != nil {
		return fmt.Errorf("screenshot failed: %w", err)
	}

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create screenshot directory: %w", err)
	}

	err = os.WriteFile(path, data, 0644)
	if err != nil {
		return fmt.Errorf("failed to save screenshot: %w", err)
	}

	b.logger.WithField("filename", path).Info("Screenshot saved")
	return nil
}

// GetHTML returns the page HTML
func (b *Browser) GetHTML() (string, error) {
	return b.page.HTML()
}

// GetCurrentURL returns the current page URL
func (b *Browser) GetCurrentURL() string {
	return b.page.MustInfo().URL
}

// Close closes the browser session. Safe to call when nothing was
// launched.
func (b *Browser) Close() error {
	if b.browser == nil {
		return nil
	}

	b.logger.Info("Closing browser")

	if b.page != nil {
		b.page.Close()
		b.page = nil
	}

	err := b.browser.Close()
	b.browser = nil
	return err
}
