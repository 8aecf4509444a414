package openid

import (
	"context"

	"github.com/coreos/go-oidc"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

type Config struct {
	ClientID     string `envconfig:"GOOGLE_CLIENT_ID"`
	ClientSecret string `envconfig:"GOOGLE_CLIENT_SECRET" json:"-"`
	RedirectURL  string `envconfig:"GOOGLE_CALLBACK_URL" default:"http://localhost:8080/api/auth/google/callback"`
	Issuer       string `envconfig:"GOOGLE_ISSUER" default:"https://accounts.google.com"`
}

func (c Config) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// Profile is the subset of ID token claims used to sign a user in.
type Profile struct {
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

type Provider struct {
	verifier     *oidc.IDTokenVerifier
	oauth2Config oauth2.Config
}

func NewProvider(ctx context.Context, cfg Config) (*Provider, error) {
	provider, err := oidc.NewProvider(ctx, cfg.Issuer)
	if err != nil {
		return nil, errors.Wrap(err, "oidc.NewProvider")
	}
	return &Provider{
		verifier: provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
		oauth2Config: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
	}, nil
}

func (p *Provider) AuthURL(state string) string {
	return p.oauth2Config.AuthCodeURL(state)
}

// Exchange trades the authorization code for tokens and returns the verified profile.
func (p *Provider) Exchange(ctx context.Context, code string) (Profile, error) {
	oauth2Token, err := p.oauth2Config.Exchange(ctx, code)
	if err != nil {
		return Profile{}, errors.Wrap(err, "failed to exchange token")
	}
	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok {
		return Profile{}, errors.New("no id_token field in oauth2 token")
	}
	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return Profile{}, errors.Wrap(err, "failed to verify ID Token")
	}

	var profile Profile
	if err := idToken.Claims(&profile); err != nil {
		return Profile{}, errors.Wrap(err, "id token claims")
	}
	if profile.Email == "" {
		return Profile{}, errors.New("id token carries no email")
	}
	return profile, nil
}
