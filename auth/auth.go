// Package auth provides the dashboard login flow. The dashboard may or
// may not gate its metrics behind a login form, so authentication is a
// single probe-and-branch rather than a required step.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/sazid/dashsnap/config"
	"github.com/sazid/dashsnap/logger"
)

// Error types for authentication
var (
	ErrLoginTimeout = errors.New("login confirmation marker did not appear in time")
	ErrLoginFailed  = errors.New("login failed: could not submit credentials")
)

// PageDriver is the subset of browser operations the login flow needs
type PageDriver interface {
	HasButton(text string) bool
	FillByPlaceholder(placeholder, value string) error
	ClickButton(text string) error
	WaitForText(text string, timeout time.Duration) error
}

// Authenticator handles dashboard authentication
type Authenticator struct {
	config *config.Config
	logger *logger.Logger
	page   PageDriver
}

// NewAuthenticator creates a new authenticator
func NewAuthenticator(cfg *config.Config, log *logger.Logger, page PageDriver) *Authenticator {
	return &Authenticator{
		config: cfg,
		logger: log.WithModule("auth"),
		page:   page,
	}
}

// LoginIfNeeded probes once for the login control. If it is absent the
// dashboard is already accessible and no login is performed. If present,
// the credentials are filled, the control is activated, and the call
// blocks until the authenticated marker appears or the marker timeout
// elapses. Returns whether a login was performed.
func (a *Authenticator) LoginIfNeeded() (bool, error) {
	dash := a.config.Dashboard

	if !a.page.HasButton(dash.LoginButtonText) {
		a.logger.Info("No login control present, dashboard already accessible")
		return false, nil
	}

	a.logger.Info("Login control detected, authenticating")

	if err := a.page.FillByPlaceholder(dash.IDPlaceholder, dash.AdminID); err != nil {
		return false, fmt.Errorf("%w: %v", ErrLoginFailed, err)
	}

	if err := a.page.FillByPlaceholder(dash.PasswordPlaceholder, dash.AdminPassword); err != nil {
		return false, fmt.Errorf("%w: %v", ErrLoginFailed, err)
	}

	if err := a.page.ClickButton(dash.LoginButtonText); err != nil {
		return false, fmt.Errorf("%w: %v", ErrLoginFailed, err)
	}

	a.logger.Debug("Credentials submitted, waiting for confirmation marker")

	if err := a.page.WaitForText(dash.AuthenticatedMarker, a.config.MarkerTimeout()); err != nil {
		return true, fmt.Errorf("%w: %v", ErrLoginTimeout, err)
	}

	a.logger.Info("Authentication successful")
	return true, nil
}
