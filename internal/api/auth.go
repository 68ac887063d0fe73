package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/alextreichler/magicworld/internal/models"
)

// Login exchanges admin credentials for a bearer token.
func (c *Client) Login(ctx context.Context, creds models.Credentials) (string, error) {
	raw, err := c.doJSON(ctx, http.MethodPost, "/admin/login", "", creds)
	if errors.Is(err, ErrUnauthorized) {
		return "", &Error{Status: http.StatusUnauthorized, Message: "Invalid credentials"}
	}
	if err != nil {
		return "", err
	}
	var env models.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return "", fmt.Errorf("api: decode login: %w", err)
	}
	if !env.Success || env.Token == "" {
		return "", &Error{Status: http.StatusUnauthorized, Message: "Invalid credentials"}
	}
	return env.Token, nil
}

// Me checks that token is still accepted.
func (c *Client) Me(ctx context.Context, token string) error {
	_, err := c.doJSON(ctx, http.MethodGet, "/admin/me", token, nil)
	return err
}
