// Package auth resolves bearer tokens into the identity of the calling user.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/wolfman30/careflow-portal/internal/apperr"
)

// Identity is the authenticated caller.
type Identity struct {
	UserID string
	Email  string
}

// Verifier turns a raw bearer token into an Identity. Implementations return
// an apperr Unauthorized error for empty, malformed, expired or forged tokens.
type Verifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

type claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// JWTVerifier validates HS256 session tokens issued by the identity provider.
type JWTVerifier struct {
	secret   []byte
	audience string
	leeway   time.Duration
}

// NewJWTVerifier builds a verifier for tokens signed with secret. An empty
// audience disables the aud check.
func NewJWTVerifier(secret, audience string) *JWTVerifier {
	return &JWTVerifier{
		secret:   []byte(secret),
		audience: audience,
		leeway:   30 * time.Second,
	}
}

// Verify implements Verifier.
func (v *JWTVerifier) Verify(_ context.Context, token string) (Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Identity{}, apperr.NewUnauthorized("Unauthorized")
	}
	if len(v.secret) == 0 {
		return Identity{}, apperr.Wrap(apperr.KindUnauthorized, "Unauthorized", errors.New("auth: jwt secret not configured"))
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(v.leeway),
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return v.secret, nil
	}, opts...)
	if err != nil || !parsed.Valid {
		return Identity{}, apperr.Wrap(apperr.KindUnauthorized, "Unauthorized", err)
	}
	if strings.TrimSpace(c.Subject) == "" {
		return Identity{}, apperr.NewUnauthorized("Unauthorized")
	}
	return Identity{UserID: c.Subject, Email: c.Email}, nil
}

// BearerToken extracts the token from an Authorization header value.
// It returns "" when the header is not a bearer credential.
func BearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

type identityKey struct{}

// WithIdentity stores id on ctx.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the identity placed by the auth middleware.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
