// Package auth provides bearer token verification for the organization manager.
//
// Two token populations are supported: legacy HS256 tokens signed with a
// shared secret, and ES256 tokens whose public keys are published in a remote
// JWKS endpoint. The signing algorithm is read from the token header and
// selects the verification path; claim validation is shared.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

var (
	// ErrMalformedToken indicates a token that could not be decoded.
	ErrMalformedToken = errors.New("malformed token")
	// ErrInvalidSignature indicates a signature that does not verify.
	ErrInvalidSignature = errors.New("invalid token signature")
	// ErrExpiredToken indicates an exp claim in the past.
	ErrExpiredToken = errors.New("token expired")
	// ErrUnknownKey indicates no signing key matches the token's key id,
	// even after refreshing the key set.
	ErrUnknownKey = errors.New("no signing key matches token key id")
	// ErrUnsupportedAlgorithm indicates a signing algorithm this verifier
	// is not configured to handle.
	ErrUnsupportedAlgorithm = errors.New("unsupported signing algorithm")
	// ErrInvalidClaims indicates claims that fail validation (issuer,
	// audience, missing exp or sub).
	ErrInvalidClaims = errors.New("invalid token claims")
)

// VerifierConfig holds token verification configuration.
type VerifierConfig struct {
	// JWKSURL is the remote key set endpoint for ES256 tokens. Optional if
	// Secret is set.
	JWKSURL string
	// Secret is the shared secret for HS256 tokens. Optional if JWKSURL is set.
	Secret string
	// Issuer, when non-empty, must match the token's iss claim.
	Issuer string
	// Audience, when non-empty, must be present in the token's aud claim.
	Audience string
}

// Verifier validates bearer tokens and extracts the owner subject.
type Verifier struct {
	keys     *JWKSCache
	secret   []byte
	issuer   string
	audience string
	logger   zerolog.Logger
}

// NewVerifier creates a Verifier. The HTTP client is used for key set
// fetches and should carry a bounded timeout; nil gets a 10 second default.
func NewVerifier(cfg VerifierConfig, client *http.Client, logger zerolog.Logger) *Verifier {
	v := &Verifier{
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		logger:   logger.With().Str("component", "token_verifier").Logger(),
	}
	if cfg.Secret != "" {
		v.secret = []byte(cfg.Secret)
	}
	if cfg.JWKSURL != "" {
		v.keys = NewJWKSCache(cfg.JWKSURL, client, logger)
	}
	return v
}

// Verify validates the token's signature and claims and returns the subject
// claim. The subject is the owner identifier scoping all record access.
func (v *Verifier) Verify(ctx context.Context, tokenStr string) (string, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256", "ES256"}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		switch t.Method.(type) {
		case *jwt.SigningMethodHMAC:
			if len(v.secret) == 0 {
				return nil, fmt.Errorf("%w: shared secret not configured", ErrUnsupportedAlgorithm)
			}
			return v.secret, nil
		case *jwt.SigningMethodECDSA:
			if v.keys == nil {
				return nil, fmt.Errorf("%w: key set URL not configured", ErrUnsupportedAlgorithm)
			}
			kid, _ := t.Header["kid"].(string)
			if kid == "" {
				return nil, fmt.Errorf("%w: token header missing kid", ErrMalformedToken)
			}
			return v.keys.Key(ctx, kid)
		default:
			return nil, ErrUnsupportedAlgorithm
		}
	}, opts...)
	if err != nil {
		v.logger.Debug().Err(err).Msg("token verification failed")
		return "", classifyTokenError(err)
	}

	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing sub claim", ErrInvalidClaims)
	}
	return claims.Subject, nil
}

// classifyTokenError maps golang-jwt errors onto this package's sentinels so
// callers can branch without importing the JWT library.
func classifyTokenError(err error) error {
	switch {
	case errors.Is(err, ErrUnknownKey),
		errors.Is(err, ErrUnsupportedAlgorithm),
		errors.Is(err, ErrMalformedToken):
		return err
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpiredToken
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSignature
	case errors.Is(err, jwt.ErrTokenInvalidIssuer),
		errors.Is(err, jwt.ErrTokenInvalidAudience),
		errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return ErrInvalidClaims
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformedToken
	default:
		return fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
}

// ExtractBearerToken returns the token from an Authorization header value of
// scheme Bearer, or "" when the scheme is absent or malformed.
func ExtractBearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
