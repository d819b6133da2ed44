// Package oauth wraps Google sign-in: the consent URL and id-token verification.
package oauth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/idtoken"
	"google.golang.org/api/option"

	"cloudvault/internal/config"
)

var (
	// ErrNotConfigured is returned when no Google client id is set.
	ErrNotConfigured = errors.New("google sign-in is not configured")
	// ErrInvalidToken is returned for any id-token that fails verification.
	ErrInvalidToken = errors.New("invalid google id token")
)

// Identity is the verified subset of a Google id-token.
type Identity struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
}

// Provider builds consent URLs and verifies id-tokens.
type Provider interface {
	AuthURL(state string) (string, error)
	Verify(ctx context.Context, rawIDToken string) (*Identity, error)
}

type tokenValidator interface {
	Validate(ctx context.Context, idToken, audience string) (*idtoken.Payload, error)
}

// Google implements Provider against Google's OAuth endpoints.
type Google struct {
	cfg       *oauth2.Config
	validator tokenValidator
}

// NewGoogle builds the provider. The id-token validator fetches Google's signing certs over a traced client.
func NewGoogle(ctx context.Context, c config.AuthConfig) (*Google, error) {
	g := &Google{
		cfg: &oauth2.Config{
			ClientID:     c.GoogleClientID,
			ClientSecret: c.GoogleClientSecret,
			RedirectURL:  c.GoogleRedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
	}
	if c.GoogleClientID == "" {
		return g, nil
	}

	client := &http.Client{
		Timeout:   10 * time.Second,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
	v, err := idtoken.NewValidator(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("create id token validator: %w", err)
	}
	g.validator = v
	return g, nil
}

// AuthURL returns the Google consent screen URL carrying state.
func (g *Google) AuthURL(state string) (string, error) {
	if g.cfg.ClientID == "" {
		return "", ErrNotConfigured
	}
	return g.cfg.AuthCodeURL(state, oauth2.AccessTypeOnline, oauth2.SetAuthURLParam("prompt", "select_account")), nil
}

// Verify checks signature, expiry, issuer and audience (our client id) of an id-token.
func (g *Google) Verify(ctx context.Context, rawIDToken string) (*Identity, error) {
	if g.cfg.ClientID == "" || g.validator == nil {
		return nil, ErrNotConfigured
	}
	if rawIDToken == "" {
		return nil, ErrInvalidToken
	}
	payload, err := g.validator.Validate(ctx, rawIDToken, g.cfg.ClientID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return identityFromPayload(payload)
}

func identityFromPayload(p *idtoken.Payload) (*Identity, error) {
	if p == nil || p.Subject == "" {
		return nil, ErrInvalidToken
	}
	id := &Identity{Subject: p.Subject}
	id.Email, _ = p.Claims["email"].(string)
	id.Name, _ = p.Claims["name"].(string)
	id.Picture, _ = p.Claims["picture"].(string)

	// email_verified arrives as a bool, but some issuers send the string form.
	switch v := p.Claims["email_verified"].(type) {
	case bool:
		id.EmailVerified = v
	case string:
		id.EmailVerified = v == "true"
	}
	if id.Email == "" {
		return nil, fmt.Errorf("%w: missing email claim", ErrInvalidToken)
	}
	return id, nil
}
