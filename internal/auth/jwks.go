package auth

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	// jwksTTL is how long a fetched key set is trusted before a routine refresh.
	jwksTTL = time.Hour
	// unknownKidBackoff bounds refetches triggered by unknown key ids, so a
	// flood of bad tokens cannot stampede the identity provider.
	unknownKidBackoff = 30 * time.Second
)

// JWKSCache is a process-wide cache of ES256 public keys fetched from a
// remote JWKS endpoint. It starts empty and refetches on a key id miss at
// most once per backoff window per kid. Concurrent refreshes are harmless:
// the last writer wins and fetching is idempotent.
type JWKSCache struct {
	url    string
	client *http.Client
	logger zerolog.Logger

	mu        sync.RWMutex
	keys      map[string]*ecdsa.PublicKey
	fetchedAt time.Time
	missed    map[string]time.Time
}

// NewJWKSCache creates an empty cache for the given JWKS endpoint. A nil
// client gets a 10 second timeout so an identity provider outage degrades to
// an authentication failure instead of hanging the handler.
func NewJWKSCache(url string, client *http.Client, logger zerolog.Logger) *JWKSCache {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &JWKSCache{
		url:    url,
		client: client,
		logger: logger.With().Str("component", "jwks_cache").Logger(),
		missed: make(map[string]time.Time),
	}
}

// Key returns the public key for the given key id. A fresh cached key is
// returned directly; otherwise the key set is refetched and the lookup
// retried once. A kid that is still missing after a refetch is reported as
// ErrUnknownKey and not refetched again until the backoff expires.
func (c *JWKSCache) Key(ctx context.Context, kid string) (*ecdsa.PublicKey, error) {
	c.mu.RLock()
	key, ok := c.keys[kid]
	fresh := time.Since(c.fetchedAt) < jwksTTL
	missedAt, missedRecently := c.missed[kid]
	c.mu.RUnlock()

	if ok && fresh {
		return key, nil
	}
	if !ok && missedRecently && time.Since(missedAt) < unknownKidBackoff {
		return nil, ErrUnknownKey
	}

	// No lock is held across the fetch.
	keys, err := c.fetch(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.keys = keys
	c.fetchedAt = time.Now()
	key, ok = keys[kid]
	if ok {
		delete(c.missed, kid)
	} else {
		c.missed[kid] = time.Now()
	}
	c.mu.Unlock()

	if !ok {
		return nil, ErrUnknownKey
	}
	return key, nil
}

// jwk is a single entry of a JSON Web Key set.
type jwk struct {
	Kty string `json:"kty"`
	Crv string `json:"crv"`
	Kid string `json:"kid"`
	X   string `json:"x"`
	Y   string `json:"y"`
}

// fetch retrieves and parses the remote key set.
func (c *JWKSCache) fetch(ctx context.Context) (map[string]*ecdsa.PublicKey, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create key set request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch key set: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("key set request failed: %s", resp.Status)
	}

	var doc struct {
		Keys []jwk `json:"keys"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode key set: %w", err)
	}

	keys := make(map[string]*ecdsa.PublicKey, len(doc.Keys))
	for _, k := range doc.Keys {
		if k.Kid == "" {
			c.logger.Warn().Msg("key set entry missing kid, skipping")
			continue
		}
		key, err := parseECKey(k)
		if err != nil {
			c.logger.Warn().Err(err).Str("kid", k.Kid).Msg("skipping unparsable key set entry")
			continue
		}
		keys[k.Kid] = key
	}

	c.logger.Info().Int("keys", len(keys)).Msg("fetched signing key set")
	return keys, nil
}

// parseECKey converts a P-256 JWK entry into an ECDSA public key.
func parseECKey(k jwk) (*ecdsa.PublicKey, error) {
	if k.Kty != "EC" {
		return nil, fmt.Errorf("unsupported key type %q", k.Kty)
	}
	if k.Crv != "P-256" {
		return nil, fmt.Errorf("unsupported curve %q", k.Crv)
	}

	xBytes, err := decodeBase64URL(k.X)
	if err != nil {
		return nil, fmt.Errorf("decode x coordinate: %w", err)
	}
	yBytes, err := decodeBase64URL(k.Y)
	if err != nil {
		return nil, fmt.Errorf("decode y coordinate: %w", err)
	}

	return &ecdsa.PublicKey{
		Curve: elliptic.P256(),
		X:     new(big.Int).SetBytes(xBytes),
		Y:     new(big.Int).SetBytes(yBytes),
	}, nil
}

// decodeBase64URL decodes base64url input with or without padding.
func decodeBase64URL(s string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(strings.TrimRight(s, "="))
}
