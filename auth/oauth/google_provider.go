package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/Yulian302/classroom-tokens/apperror"
	"github.com/Yulian302/classroom-tokens/config"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const expiryLayout = "2006-01-02T15:04:05Z"

// authorizedUser is the "authorized_user" credential document the bot loads
// back with the Google client libraries.
type authorizedUser struct {
	Token        string   `json:"token"`
	RefreshToken string   `json:"refresh_token"`
	TokenURI     string   `json:"token_uri"`
	ClientID     string   `json:"client_id"`
	ClientSecret string   `json:"client_secret"`
	Scopes       []string `json:"scopes"`
	Expiry       string   `json:"expiry,omitempty"`
}

type googleProvider struct {
	config  *oauth2.Config
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[*oauth2.Token]
}

// NewGoogleProvider reads the client secret file once and fixes the
// redirect URI to the one registered with Google.
func NewGoogleProvider(cfg config.OAuthConfig, breaker *gobreaker.CircuitBreaker[*oauth2.Token]) (*googleProvider, error) {
	secret, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read client secret file: %w", err)
	}
	return NewGoogleProviderFromJSON(secret, cfg.RedirectURI, cfg.Timeout, breaker)
}

func NewGoogleProviderFromJSON(secret []byte, redirectURI string, timeout time.Duration, breaker *gobreaker.CircuitBreaker[*oauth2.Token]) (*googleProvider, error) {
	oauthCfg, err := google.ConfigFromJSON(secret, Scopes...)
	if err != nil {
		return nil, fmt.Errorf("parse client secret file: %w", err)
	}
	oauthCfg.RedirectURL = redirectURI

	return &googleProvider{
		config:  oauthCfg,
		client:  &http.Client{Timeout: timeout},
		breaker: breaker,
	}, nil
}

func (p *googleProvider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

func (p *googleProvider) ExchangeCode(ctx context.Context, code string) (string, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.client)

	token, err := p.breaker.Execute(func() (*oauth2.Token, error) {
		return p.config.Exchange(ctx, code)
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", apperror.ErrExchangeFailed, err)
	}
	if token.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access token", apperror.ErrExchangeFailed)
	}

	creds := authorizedUser{
		Token:        token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenURI:     p.config.Endpoint.TokenURL,
		ClientID:     p.config.ClientID,
		ClientSecret: p.config.ClientSecret,
		Scopes:       p.config.Scopes,
	}
	if !token.Expiry.IsZero() {
		creds.Expiry = token.Expiry.UTC().Format(expiryLayout)
	}

	payload, err := json.Marshal(creds)
	if err != nil {
		return "", fmt.Errorf("%w: %w", apperror.ErrExchangeFailed, err)
	}
	return string(payload), nil
}

// IsProviderOutage keeps rejected codes from tripping the breaker; only
// transport failures and 5xx responses count against the provider.
func IsProviderOutage(err error) bool {
	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) && rerr.Response != nil {
		return rerr.Response.StatusCode >= http.StatusInternalServerError
	}
	return !errors.Is(err, context.Canceled)
}
