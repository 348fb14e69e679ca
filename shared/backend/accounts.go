package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/pavitra93/menulink/shared/models"
)

// Credentials is the sign-in / sign-up payload
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenEnvelope struct {
	Data struct {
		Token string `json:"token"`
	} `json:"data"`
	Token string `json:"token"`
}

func (t tokenEnvelope) value() string {
	if t.Data.Token != "" {
		return t.Data.Token
	}
	return t.Token
}

// SignIn exchanges credentials for a bearer token
func (c *Client) SignIn(ctx context.Context, creds Credentials) (string, error) {
	return c.issueToken(ctx, "/api/signin", creds)
}

// SignUp creates an account and returns its bearer token
func (c *Client) SignUp(ctx context.Context, creds Credentials) (string, error) {
	return c.issueToken(ctx, "/api/signup", creds)
}

func (c *Client) issueToken(ctx context.Context, path string, creds Credentials) (string, error) {
	var out tokenEnvelope
	if err := c.sendJSON(ctx, http.MethodPost, path, "", creds, &out); err != nil {
		return "", err
	}
	if out.value() == "" {
		return "", fmt.Errorf("backend returned no token")
	}
	return out.value(), nil
}

// SignOut revokes the token at the backend
func (c *Client) SignOut(ctx context.Context, token string) error {
	return c.sendJSON(ctx, http.MethodPost, "/api/logout", token, nil, nil)
}

// CurrentUser resolves an opaque token to its account
func (c *Client) CurrentUser(ctx context.Context, token string) (*models.Identity, error) {
	var out struct {
		ID    json.RawMessage `json:"id"`
		Email string          `json:"email"`
		Role  string          `json:"role"`
	}
	if err := c.getJSON(ctx, "/api/user", token, &out); err != nil {
		return nil, err
	}
	identity := &models.Identity{Email: out.Email}
	if len(out.ID) > 0 && string(out.ID) != "null" {
		identity.ID = strings.Trim(string(out.ID), `"`)
	}
	if out.Role != "" {
		identity.Roles = []string{out.Role}
	}
	return identity, nil
}

// Identify satisfies the session identity resolver for opaque tokens
func (c *Client) Identify(ctx context.Context, token string) (*models.Identity, error) {
	return c.CurrentUser(ctx, token)
}
