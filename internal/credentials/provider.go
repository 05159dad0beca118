package credentials

import (
	"context"
	"time"
)

// Token is an authorization grant held for export calls.
type Token struct {
	AccessToken string    `json:"-"`
	Expiry      time.Time `json:"expiry,omitzero"`
	Account     string    `json:"account,omitempty"`
}

// Challenge is what the user needs to complete an interactive grant on
// another device.
type Challenge struct {
	VerificationURI string    `json:"verification_uri"`
	UserCode        string    `json:"user_code"`
	Message         string    `json:"message,omitempty"`
	ExpiresAt       time.Time `json:"expires_at,omitzero"`
}

// Prompt presents a challenge to the user. It may be called at most once per grant.
type Prompt func(Challenge)

// Initializer is a subsystem that must finish asynchronous initialization
// before credentials can be used.
type Initializer interface {
	Init(ctx context.Context) error
}

// Provider runs the interactive consent flow of an identity provider.
type Provider interface {
	Initializer
	Name() string
	// Grant blocks until the user approves or denies consent.
	Grant(ctx context.Context, prompt Prompt) (Token, error)
	// Revoke invalidates the token with the provider.
	Revoke(ctx context.Context, token Token) error
}
