package credentials

import (
	"context"
	"fmt"
	"sync"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/coreos/go-oidc/v3/oidc"
)

// Entra signs in to Microsoft Entra ID with the device code flow for
// Azure Storage exports.
type Entra struct {
	cfg *Config

	mu    sync.RWMutex
	ready bool
}

// NewEntra creates an Entra provider.
func NewEntra(cfg *Config) *Entra {
	return &Entra{cfg: cfg}
}

func (e *Entra) Name() string { return ProviderEntra }

// Init checks the tenant's discovery document is reachable.
func (e *Entra) Init(ctx context.Context) error {
	if _, err := oidc.NewProvider(ctx, e.cfg.Issuer); err != nil {
		return fmt.Errorf("discover tenant %s: %w", e.cfg.TenantID, err)
	}

	e.mu.Lock()
	e.ready = true
	e.mu.Unlock()
	return nil
}

func (e *Entra) Grant(ctx context.Context, prompt Prompt) (Token, error) {
	e.mu.RLock()
	ready := e.ready
	e.mu.RUnlock()

	if !ready {
		return Token{}, ErrNotReady
	}

	cred, err := azidentity.NewDeviceCodeCredential(&azidentity.DeviceCodeCredentialOptions{
		TenantID: e.cfg.TenantID,
		ClientID: e.cfg.ClientID,
		UserPrompt: func(_ context.Context, msg azidentity.DeviceCodeMessage) error {
			prompt(Challenge{
				VerificationURI: msg.VerificationURL,
				UserCode:        msg.UserCode,
				Message:         msg.Message,
			})
			return nil
		},
	})
	if err != nil {
		return Token{}, fmt.Errorf("create device code credential: %w", err)
	}

	opts := policy.TokenRequestOptions{Scopes: e.cfg.Scopes}

	record, err := cred.Authenticate(ctx, &opts)
	if err != nil {
		return Token{}, fmt.Errorf("authenticate: %w", err)
	}

	tok, err := cred.GetToken(ctx, opts)
	if err != nil {
		return Token{}, fmt.Errorf("acquire token: %w", err)
	}

	return Token{
		AccessToken: tok.Token,
		Expiry:      tok.ExpiresOn,
		Account:     record.Username,
	}, nil
}

// Revoke is a no-op: Entra access tokens cannot be revoked individually and
// expire on their own.
func (e *Entra) Revoke(context.Context, Token) error {
	return nil
}

// NewProvider builds the provider named in cfg.
func NewProvider(cfg *Config) (Provider, error) {
	switch cfg.Provider {
	case ProviderGoogle:
		return NewGoogle(cfg, nil), nil
	case ProviderEntra:
		return NewEntra(cfg), nil
	default:
		return nil, fmt.Errorf("unknown credential provider %q", cfg.Provider)
	}
}
