package services

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/muzik/internal/models"
	"github.com/desertthunder/muzik/internal/shared"
)

// Status is a snapshot of the client's configuration and token state. Secrets are masked.
type Status struct {
	Configured   bool      `json:"configured"`
	ClientID     string    `json:"client_id"`
	ClientSecret string    `json:"client_secret"`
	HasToken     bool      `json:"has_token"`
	TokenFresh   bool      `json:"token_fresh"`
	TokenExpiry  time.Time `json:"token_expiry,omitzero"`
	BaseURL      string    `json:"base_url"`
	Market       string    `json:"market"`
}

// Status reports configuration and token state without any network access.
func (c *CatalogClient) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Status{
		Configured:   c.IsConfigured(),
		ClientID:     shared.MaskSecret(c.creds.ClientID),
		ClientSecret: shared.MaskSecret(c.creds.ClientSecret),
		HasToken:     c.token != nil && c.token.AccessToken != "",
		TokenFresh:   c.tokenFresh(),
		BaseURL:      c.baseURL,
		Market:       c.market,
	}
	if c.token != nil {
		s.TokenExpiry = c.token.Expiry
	}
	return s
}

// TestConnection obtains a token and issues a one-result search.
func (c *CatalogClient) TestConnection(ctx context.Context) error {
	if err := c.EnsureFreshToken(ctx); err != nil {
		return err
	}
	if _, err := c.Search(ctx, "test", models.KindTrack, 1, 0); err != nil {
		return fmt.Errorf("test search failed: %w", err)
	}
	return nil
}
