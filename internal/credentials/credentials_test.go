package credentials_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/scribe/internal/credentials"
	"github.com/JaimeStill/scribe/pkg/lifecycle"
)

type fakeInit struct {
	release chan struct{}
	err     error
}

func (f *fakeInit) Init(ctx context.Context) error {
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return f.err
}

type fakeProvider struct {
	fakeInit

	mu       sync.Mutex
	grantErr error
	block    chan struct{}
	revoked  []string
	grants   int
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Grant(ctx context.Context, prompt credentials.Prompt) (credentials.Token, error) {
	prompt(credentials.Challenge{VerificationURI: "https://example.com/device", UserCode: "ABCD-EFGH"})
	if p.block != nil {
		<-p.block
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.grants++
	if p.grantErr != nil {
		return credentials.Token{}, p.grantErr
	}
	return credentials.Token{
		AccessToken: "token-" + string(rune('0'+p.grants)),
		Account:     "user@example.com",
		Expiry:      time.Now().Add(time.Hour),
	}, nil
}

func (p *fakeProvider) Revoke(_ context.Context, token credentials.Token) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.revoked = append(p.revoked, token.AccessToken)
	return nil
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func started(t *testing.T, provider *fakeProvider, api *fakeInit) *credentials.Manager {
	t.Helper()

	lc := lifecycle.New()
	t.Cleanup(func() { lc.Shutdown(time.Second) })

	m := credentials.New(provider, api, discard())
	require.NoError(t, m.Start(lc))
	return m
}

func ready(t *testing.T, m *credentials.Manager) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, m.WaitReady(ctx))
}

func noPrompt(credentials.Challenge) {}

func TestNotReadyUntilBothSubsystemsInitialize(t *testing.T) {
	identity := make(chan struct{})
	api := make(chan struct{})

	provider := &fakeProvider{fakeInit: fakeInit{release: identity}}
	m := started(t, provider, &fakeInit{release: api})

	assert.False(t, m.Ready())
	assert.ErrorIs(t, m.SignIn(context.Background(), noPrompt), credentials.ErrNotReady)
	assert.ErrorIs(t, m.SignOut(context.Background()), credentials.ErrNotReady)

	close(identity)
	time.Sleep(20 * time.Millisecond)
	assert.False(t, m.Ready())

	close(api)
	ready(t, m)
	assert.True(t, m.Ready())
}

func TestReadinessFailure(t *testing.T) {
	provider := &fakeProvider{}
	m := started(t, provider, &fakeInit{err: errors.New("discovery unavailable")})

	err := m.WaitReady(context.Background())
	require.ErrorIs(t, err, lifecycle.ErrGateFailed)
	assert.False(t, m.Ready())
	assert.Contains(t, m.Status().Error, "discovery unavailable")
}

func TestUnstartedManagerIsNotReady(t *testing.T) {
	m := credentials.New(&fakeProvider{}, &fakeInit{}, discard())
	assert.False(t, m.Ready())
	assert.ErrorIs(t, m.WaitReady(context.Background()), credentials.ErrNotReady)
}

func TestSignInAndOut(t *testing.T) {
	provider := &fakeProvider{}
	m := started(t, provider, &fakeInit{})
	ready(t, m)

	assert.False(t, m.Valid())

	var challenge credentials.Challenge
	require.NoError(t, m.SignIn(context.Background(), func(c credentials.Challenge) { challenge = c }))
	assert.Equal(t, "ABCD-EFGH", challenge.UserCode)
	assert.True(t, m.Valid())

	token, ok := m.Token()
	require.True(t, ok)
	assert.Equal(t, "user@example.com", token.Account)

	status := m.Status()
	assert.Equal(t, "valid", status.Phase)
	assert.NotNil(t, status.Expiry)

	require.NoError(t, m.SignOut(context.Background()))
	assert.False(t, m.Valid())
	assert.Equal(t, []string{token.AccessToken}, provider.revoked)

	_, ok = m.Token()
	assert.False(t, ok)
}

func TestSignOutWhenUnsetIsNoop(t *testing.T) {
	provider := &fakeProvider{}
	m := started(t, provider, &fakeInit{})
	ready(t, m)

	require.NoError(t, m.SignOut(context.Background()))
	assert.Empty(t, provider.revoked)
}

func TestSignInFailureLeavesUnset(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr error
	}{
		{"denied", credentials.ErrGrantDenied, credentials.ErrGrantDenied},
		{"provider error", errors.New("network down"), credentials.ErrGrantFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &fakeProvider{grantErr: tt.err}
			m := started(t, provider, &fakeInit{})
			ready(t, m)

			err := m.SignIn(context.Background(), noPrompt)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.False(t, m.Valid())
			assert.False(t, m.Status().Granting)
		})
	}
}

func TestConcurrentSignInRefused(t *testing.T) {
	block := make(chan struct{})
	provider := &fakeProvider{block: block}
	m := started(t, provider, &fakeInit{})
	ready(t, m)

	prompted := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- m.SignIn(context.Background(), func(credentials.Challenge) { close(prompted) })
	}()

	<-prompted
	assert.True(t, m.Status().Granting)
	assert.ErrorIs(t, m.SignIn(context.Background(), noPrompt), credentials.ErrGrantInProgress)

	close(block)
	require.NoError(t, <-done)
	assert.True(t, m.Valid())
}

func TestInvalidate(t *testing.T) {
	provider := &fakeProvider{}
	m := started(t, provider, &fakeInit{})
	ready(t, m)

	require.NoError(t, m.SignIn(context.Background(), noPrompt))
	token, ok := m.Token()
	require.True(t, ok)
	m.Invalidate(token, "export rejected token")

	assert.False(t, m.Valid())
	assert.Empty(t, provider.revoked)
}

func TestInvalidateIgnoresReplacedToken(t *testing.T) {
	provider := &fakeProvider{}
	m := started(t, provider, &fakeInit{})
	ready(t, m)

	require.NoError(t, m.SignIn(context.Background(), noPrompt))
	stale, _ := m.Token()

	require.NoError(t, m.SignOut(context.Background()))
	require.NoError(t, m.SignIn(context.Background(), noPrompt))

	m.Invalidate(stale, "export rejected token")

	current, ok := m.Token()
	require.True(t, ok)
	assert.Equal(t, "token-2", current.AccessToken)
	assert.True(t, m.Valid())
}
