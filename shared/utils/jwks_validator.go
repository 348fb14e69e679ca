package utils

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

var errUnknownKey = errors.New("unknown signing key")

type jsonWebKey struct {
	Kid string `json:"kid"`
	Kty string `json:"kty"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// JWKSValidator caches the RSA signing keys published by the identity provider
type JWKSValidator struct {
	url        string
	httpClient *http.Client

	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey
	fetchedAt time.Time

	// maxAge bounds how long a key set is trusted; minGap throttles refetches
	// triggered by unknown key ids
	maxAge time.Duration
	minGap time.Duration
	now    func() time.Time
}

// NewJWKSValidator creates a validator for the given key set URL
func NewJWKSValidator(url string, httpClient *http.Client) *JWKSValidator {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &JWKSValidator{
		url:        url,
		httpClient: httpClient,
		keys:       make(map[string]*rsa.PublicKey),
		maxAge:     24 * time.Hour,
		minGap:     time.Minute,
		now:        time.Now,
	}
}

// KeyfuncFor returns a jwt.Keyfunc whose key set fetches are bound to ctx
func (v *JWKSValidator) KeyfuncFor(ctx context.Context) jwt.Keyfunc {
	return func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		kid, _ := token.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("token header has no kid")
		}
		return v.Key(ctx, kid)
	}
}

// Key returns the public key for kid. A miss or a stale set triggers one
// refetch, at most once per minGap.
func (v *JWKSValidator) Key(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	key, fresh := v.lookup(kid)
	if key != nil && fresh {
		return key, nil
	}

	if err := v.refresh(ctx); err != nil {
		if key != nil {
			logrus.WithError(err).Warn("JWKS refresh failed, using cached key")
			return key, nil
		}
		return nil, err
	}

	if key, _ = v.lookup(kid); key == nil {
		return nil, fmt.Errorf("%w: %s", errUnknownKey, kid)
	}
	return key, nil
}

func (v *JWKSValidator) lookup(kid string) (*rsa.PublicKey, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.keys[kid], v.now().Sub(v.fetchedAt) < v.maxAge
}

func (v *JWKSValidator) refresh(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.fetchedAt.IsZero() && v.now().Sub(v.fetchedAt) < v.minGap {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.url, nil)
	if err != nil {
		return fmt.Errorf("build JWKS request: %w", err)
	}
	resp, err := v.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch JWKS: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("JWKS endpoint returned status %d", resp.StatusCode)
	}

	var set struct {
		Keys []jsonWebKey `json:"keys"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
		return fmt.Errorf("decode JWKS: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(set.Keys))
	for _, jwk := range set.Keys {
		if jwk.Kty != "RSA" {
			continue
		}
		key, err := jwk.rsaKey()
		if err != nil {
			logrus.WithError(err).WithField("kid", jwk.Kid).Warn("Skipping malformed JWK")
			continue
		}
		keys[jwk.Kid] = key
	}

	v.keys = keys
	v.fetchedAt = v.now()
	return nil
}

func (k jsonWebKey) rsaKey() (*rsa.PublicKey, error) {
	n, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil {
		return nil, fmt.Errorf("modulus: %w", err)
	}
	e, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil {
		return nil, fmt.Errorf("exponent: %w", err)
	}
	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(n),
		E: int(new(big.Int).SetBytes(e).Int64()),
	}, nil
}
