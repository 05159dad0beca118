// Package credentials owns the authorization token used by exports and its
// sign-in, sign-out and revocation lifecycle.
package credentials

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/JaimeStill/scribe/pkg/lifecycle"
)

// Manager holds the process-wide credential. It is unusable until both the
// identity provider and the export API client have initialized.
type Manager struct {
	provider Provider
	api      Initializer
	logger   *slog.Logger

	mu       sync.RWMutex
	state    State
	granting bool
	ready    *lifecycle.Gate
}

// New creates a manager in the unset state.
func New(provider Provider, api Initializer, logger *slog.Logger) *Manager {
	return &Manager{
		provider: provider,
		api:      api,
		logger:   logger.With("system", "credentials", "provider", provider.Name()),
		state:    unset(),
	}
}

// Start initializes the provider and the export API concurrently as startup
// hooks. Readiness is the join of both.
func (m *Manager) Start(lc *lifecycle.Coordinator) error {
	identity := lc.StartupGate("identity", m.provider.Init)
	api := lc.StartupGate("export-api", m.api.Init)
	ready := lifecycle.Join("credentials", identity, api)

	m.mu.Lock()
	m.ready = ready
	m.mu.Unlock()

	go func() {
		if err := ready.Wait(lc.Context()); err != nil {
			m.logger.Error("credential initialization failed", "error", err)
			return
		}
		m.logger.Info("credentials ready")
	}()

	return nil
}

// Ready reports whether both subsystems have initialized.
func (m *Manager) Ready() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ready != nil && m.ready.Ready()
}

// WaitReady blocks until the manager is ready, initialization fails or ctx is done.
func (m *Manager) WaitReady(ctx context.Context) error {
	m.mu.RLock()
	ready := m.ready
	m.mu.RUnlock()

	if ready == nil {
		return ErrNotReady
	}
	return ready.Wait(ctx)
}

// SignIn runs the provider's interactive consent flow and blocks until it
// resolves. On any failure the credential is left unset.
func (m *Manager) SignIn(ctx context.Context, prompt Prompt) error {
	if !m.Ready() {
		return ErrNotReady
	}

	m.mu.Lock()
	if m.granting {
		m.mu.Unlock()
		return ErrGrantInProgress
	}
	m.granting = true
	m.mu.Unlock()

	m.logger.InfoContext(ctx, "requesting grant")
	token, err := m.provider.Grant(ctx, prompt)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.granting = false

	if err != nil {
		m.state = unset()
		m.logger.WarnContext(ctx, "grant failed", "error", err)
		if errors.Is(err, ErrGrantDenied) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrGrantFailed, err)
	}

	m.state = valid(token)
	m.logger.InfoContext(ctx, "signed in", "account", token.Account)
	return nil
}

// SignOut revokes the held token with the provider and clears it. The local
// credential is cleared even when remote revocation fails.
func (m *Manager) SignOut(ctx context.Context) error {
	if !m.Ready() {
		return ErrNotReady
	}

	m.mu.RLock()
	token, ok := m.state.Token()
	m.mu.RUnlock()

	if !ok {
		return nil
	}

	if err := m.provider.Revoke(ctx, token); err != nil {
		m.logger.WarnContext(ctx, "token revocation failed", "error", err)
	}

	m.mu.Lock()
	if current, ok := m.state.Token(); ok && current.AccessToken == token.AccessToken {
		m.state = unset()
	}
	m.mu.Unlock()

	m.logger.InfoContext(ctx, "signed out", "account", token.Account)
	return nil
}

// Invalidate clears the credential without contacting the provider when
// the export API rejects token. A token other than the one held, such as
// one replaced by a later sign-in, leaves the credential untouched.
func (m *Manager) Invalidate(token Token, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.state.Token()
	if !ok || current.AccessToken != token.AccessToken {
		return
	}
	m.state = unset()
	m.logger.Warn("credential invalidated", "reason", reason)
}

// Valid reports whether a token is currently held.
func (m *Manager) Valid() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.Phase() == PhaseValid
}

// Token returns the held token while valid.
func (m *Manager) Token() (Token, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.Token()
}

// Status returns a display snapshot of the manager.
func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := Status{
		Provider: m.provider.Name(),
		Ready:    m.ready != nil && m.ready.Ready(),
		Phase:    m.state.Phase().String(),
		Granting: m.granting,
	}
	if m.ready != nil {
		if err := m.ready.Err(); err != nil {
			s.Error = err.Error()
		}
	}
	if token, ok := m.state.Token(); ok {
		s.Account = token.Account
		if !token.Expiry.IsZero() {
			expiry := token.Expiry
			s.Expiry = &expiry
		}
	}
	return s
}
