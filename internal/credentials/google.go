package credentials

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// Google signs in with the OAuth 2.0 device authorization grant against an
// OpenID Connect issuer discovered at Init.
type Google struct {
	cfg    *Config
	client *http.Client

	mu         sync.RWMutex
	oauth      *oauth2.Config
	verifier   *oidc.IDTokenVerifier
	revocation string
}

type discoveryClaims struct {
	DeviceAuthorizationEndpoint string `json:"device_authorization_endpoint"`
	RevocationEndpoint          string `json:"revocation_endpoint"`
}

// NewGoogle creates a Google provider. Discovery runs in Init.
func NewGoogle(cfg *Config, client *http.Client) *Google {
	if client == nil {
		client = http.DefaultClient
	}
	return &Google{cfg: cfg, client: client}
}

func (g *Google) Name() string { return ProviderGoogle }

// Init fetches the issuer's discovery document.
func (g *Google) Init(ctx context.Context) error {
	ctx = oidc.ClientContext(ctx, g.client)

	provider, err := oidc.NewProvider(ctx, g.cfg.Issuer)
	if err != nil {
		return fmt.Errorf("discover issuer %s: %w", g.cfg.Issuer, err)
	}

	var claims discoveryClaims
	if err := provider.Claims(&claims); err != nil {
		return fmt.Errorf("decode discovery claims: %w", err)
	}
	if claims.DeviceAuthorizationEndpoint == "" {
		return fmt.Errorf("issuer %s does not support the device authorization grant", g.cfg.Issuer)
	}

	endpoint := provider.Endpoint()
	endpoint.DeviceAuthURL = claims.DeviceAuthorizationEndpoint

	g.mu.Lock()
	defer g.mu.Unlock()

	g.oauth = &oauth2.Config{
		ClientID:     g.cfg.ClientID,
		ClientSecret: g.cfg.ClientSecret,
		Endpoint:     endpoint,
		Scopes:       g.cfg.Scopes,
	}
	g.verifier = provider.Verifier(&oidc.Config{ClientID: g.cfg.ClientID})
	g.revocation = claims.RevocationEndpoint
	return nil
}

func (g *Google) Grant(ctx context.Context, prompt Prompt) (Token, error) {
	g.mu.RLock()
	cfg, verifier := g.oauth, g.verifier
	g.mu.RUnlock()

	if cfg == nil {
		return Token{}, ErrNotReady
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, g.client)

	auth, err := cfg.DeviceAuth(ctx)
	if err != nil {
		return Token{}, fmt.Errorf("request device code: %w", err)
	}

	prompt(Challenge{
		VerificationURI: verificationURI(auth),
		UserCode:        auth.UserCode,
		ExpiresAt:       auth.Expiry,
	})

	tok, err := cfg.DeviceAccessToken(ctx, auth)
	if err != nil {
		if denied(err) {
			return Token{}, ErrGrantDenied
		}
		return Token{}, fmt.Errorf("exchange device code: %w", err)
	}

	token := Token{
		AccessToken: tok.AccessToken,
		Expiry:      tok.Expiry,
	}

	if raw, ok := tok.Extra("id_token").(string); ok && raw != "" {
		idToken, err := verifier.Verify(ctx, raw)
		if err != nil {
			return Token{}, fmt.Errorf("verify id token: %w", err)
		}
		var claims struct {
			Email string `json:"email"`
		}
		if err := idToken.Claims(&claims); err == nil {
			token.Account = claims.Email
		}
	}

	return token, nil
}

// Revoke posts the access token to the issuer's revocation endpoint.
func (g *Google) Revoke(ctx context.Context, token Token) error {
	g.mu.RLock()
	endpoint := g.revocation
	g.mu.RUnlock()

	if endpoint == "" {
		return nil
	}

	form := url.Values{"token": {token.AccessToken}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("revoke token: unexpected status %d", resp.StatusCode)
	}
	return nil
}

func verificationURI(auth *oauth2.DeviceAuthResponse) string {
	if auth.VerificationURIComplete != "" {
		return auth.VerificationURIComplete
	}
	return auth.VerificationURI
}

func denied(err error) bool {
	var re *oauth2.RetrieveError
	return errors.As(err, &re) && re.ErrorCode == "access_denied"
}
