package utils

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pavitra93/menulink/shared/models"
)

// ErrInvalidToken is returned when a token cannot be verified
var ErrInvalidToken = errors.New("invalid token")

// TokenVerifier turns a bearer token into an identity using JWT claims.
// Exactly one of the HMAC secret or the JWKS validator is used.
type TokenVerifier struct {
	secret []byte
	jwks   *JWKSValidator
}

// NewHMACTokenVerifier verifies HS256 tokens signed with a shared secret
func NewHMACTokenVerifier(secret string) *TokenVerifier {
	return &TokenVerifier{secret: []byte(secret)}
}

// NewJWKSTokenVerifier verifies RS256 tokens against a key set
func NewJWKSTokenVerifier(validator *JWKSValidator) *TokenVerifier {
	return &TokenVerifier{jwks: validator}
}

// Identify verifies the token and extracts the identity claims
func (tv *TokenVerifier) Identify(ctx context.Context, tokenString string) (*models.Identity, error) {
	keyfunc := jwt.Keyfunc(tv.hmacKey)
	if tv.jwks != nil {
		keyfunc = tv.jwks.KeyfuncFor(ctx)
	}

	token, err := jwt.Parse(tokenString, keyfunc, jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	identity := &models.Identity{
		ID:    getClaimString(claims, "sub"),
		Email: getClaimString(claims, "email"),
		Roles: getClaimRoles(claims),
	}
	if identity.ID == "" && identity.Email == "" {
		return nil, fmt.Errorf("%w: no subject or email claim", ErrInvalidToken)
	}
	return identity, nil
}

func (tv *TokenVerifier) hmacKey(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return tv.secret, nil
}

// getClaimString safely extracts a string claim from JWT claims
func getClaimString(claims jwt.MapClaims, key string) string {
	if val, ok := claims[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}

// getClaimRoles accepts "roles" as a list or "role" as a single or space separated string
func getClaimRoles(claims jwt.MapClaims) []string {
	var roles []string
	if list, ok := claims["roles"].([]interface{}); ok {
		for _, r := range list {
			if s, ok := r.(string); ok && s != "" {
				roles = append(roles, s)
			}
		}
	}
	if role := getClaimString(claims, "role"); role != "" {
		roles = append(roles, strings.Fields(role)...)
	}
	return roles
}
