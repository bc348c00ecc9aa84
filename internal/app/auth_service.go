package app

import (
	"context"
	"fmt"
	"strings"

	"violet-client/internal/model"
)

const (
	msgMissingCredentials = "Please enter username and password"
	msgWelcome            = "Welcome back!"
	msgAuthFailed         = "Authentication failed"
	msgConnectionError    = "Connection error. Please try again."
	msgAccountCreated     = "Account created! Please login."
	msgLoggedOut          = "Logged out successfully"
)

// Restore adopts persisted credentials without contacting the backend, then
// loads the catalog. It reports whether a session was found.
func (o *Orchestrator) Restore(ctx context.Context) (bool, error) {
	o.slotsMu.Lock()
	creds, ok, err := o.session.Load(ctx)
	if err != nil {
		o.slotsMu.Unlock()
		o.logger.Error(logModule, "restore session failed", map[string]interface{}{"error": err})
		return false, err
	}
	if !ok {
		o.slotsMu.Unlock()
		return false, nil
	}

	o.mu.Lock()
	o.clearLocked()
	o.session.Adopt(creds.Token, creds.Username)
	o.session.SetUsername(creds.Username)
	o.epoch++
	o.mu.Unlock()
	o.slotsMu.Unlock()
	o.lookup.Flush()

	o.logger.Info(logModule, "session restored", map[string]interface{}{"username": creds.Username})
	_ = o.Refresh(ctx)
	return true, nil
}

// Login authenticates, persists the session and loads the catalog once. A
// rejected login never counts as an expired session. Whatever the previous
// session had selected, asked or staged is dropped.
func (o *Orchestrator) Login(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if err := o.session.Validate(username, password); err != nil {
		o.notifier.Error(msgMissingCredentials)
		return err
	}

	token, err := o.backend.Login(ctx, username, password)
	if err != nil {
		o.logger.Warn(logModule, "login failed", map[string]interface{}{"username": username, "error": err})
		o.notifier.Error(userMessage(err, msgAuthFailed, msgConnectionError))
		return fmt.Errorf("login failed: %w", err)
	}

	o.slotsMu.Lock()
	if err := o.session.Persist(ctx, token.AccessToken, username); err != nil {
		o.logger.Error(logModule, "persist session failed", map[string]interface{}{"error": err})
	}

	o.mu.Lock()
	o.clearLocked()
	o.session.Adopt(token.AccessToken, username)
	o.session.SetUsername(username)
	o.epoch++
	if o.openUploadOnLogin {
		o.pipeline.Open()
	}
	o.mu.Unlock()
	o.slotsMu.Unlock()
	o.lookup.Flush()

	o.logger.Info(logModule, "logged in", map[string]interface{}{"username": username})
	o.notifier.Success(msgWelcome)
	_ = o.Refresh(ctx)
	return nil
}

// Register creates an account without signing in and switches the form back
// to login mode.
func (o *Orchestrator) Register(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if err := o.session.Validate(username, password); err != nil {
		o.notifier.Error(msgMissingCredentials)
		return err
	}

	if err := o.backend.Register(ctx, username, password); err != nil {
		o.logger.Warn(logModule, "register failed", map[string]interface{}{"username": username, "error": err})
		o.notifier.Error(userMessage(err, msgAuthFailed, msgConnectionError))
		return fmt.Errorf("register failed: %w", err)
	}

	o.mu.Lock()
	o.session.Registered()
	o.mu.Unlock()

	o.notifier.Success(msgAccountCreated)
	return nil
}

// SubmitAuth runs login or register with the typed form fields.
func (o *Orchestrator) SubmitAuth(ctx context.Context) error {
	o.mu.Lock()
	form := o.session.Form()
	o.mu.Unlock()

	if form.Mode == model.AuthModeRegister {
		return o.Register(ctx, form.Username, form.Password)
	}
	return o.Login(ctx, form.Username, form.Password)
}

func (o *Orchestrator) SetAuthMode(mode model.AuthMode) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.session.SetMode(mode)
}

func (o *Orchestrator) SetUsername(username string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.session.SetUsername(username)
}

func (o *Orchestrator) SetPassword(password string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.session.SetPassword(password)
}

// Logout is purely local and always succeeds.
func (o *Orchestrator) Logout(ctx context.Context) {
	o.slotsMu.Lock()
	o.mu.Lock()
	o.resetLocked()
	o.mu.Unlock()

	o.lookup.Flush()
	err := o.session.Forget(ctx)
	o.slotsMu.Unlock()
	if err != nil {
		o.logger.Error(logModule, "clear session failed", map[string]interface{}{"error": err})
	}
	o.logger.Info(logModule, "logged out", nil)
	o.notifier.Success(msgLoggedOut)
}
