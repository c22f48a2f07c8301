package channel

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenClockLeeway = 5 * time.Minute
	bearerPrefix     = "Bearer "
)

var ErrMissingToken = errors.New("missing bearer token")

// Authenticator verifies the bearer token the channel attaches to every inbound call.
// Signing keys come from the channel's JWKS endpoint and are refreshed in the background
// until the context given to NewAuthenticator is done.
type Authenticator struct {
	appID string
	keys  keyfunc.Keyfunc
	now   func() time.Time
}

func NewAuthenticator(ctx context.Context, appID, keysURL string) (*Authenticator, error) {
	if keysURL == "" {
		keysURL = DefaultOpenIDKeysURL
	}
	keys, err := keyfunc.NewDefaultCtx(ctx, []string{keysURL})
	if err != nil {
		return nil, fmt.Errorf("channel signing keys: %w", err)
	}
	return &Authenticator{
		appID: appID,
		keys:  keys,
		now:   time.Now,
	}, nil
}

// Authenticate validates authHeader ("Bearer <jwt>") against the channel's signing keys,
// issuer and this bot's app id.
func (a *Authenticator) Authenticate(_ context.Context, authHeader string) (jwt.MapClaims, error) {
	raw, ok := strings.CutPrefix(strings.TrimSpace(authHeader), bearerPrefix)
	if !ok || strings.TrimSpace(raw) == "" {
		return nil, ErrMissingToken
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(strings.TrimSpace(raw), claims, a.keys.Keyfunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(botFrameworkIssuer),
		jwt.WithAudience(a.appID),
		jwt.WithLeeway(tokenClockLeeway),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return nil, fmt.Errorf("verify channel token: %w", err)
	}
	return claims, nil
}
