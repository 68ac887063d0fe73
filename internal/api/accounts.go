package api

import (
	"context"
	"net/http"

	"github.com/alextreichler/magicworld/internal/models"
)

func (c *Client) ListAccounts(ctx context.Context) ([]models.PremiumAccount, error) {
	raw, err := c.doJSON(ctx, http.MethodGet, "/premium-accounts", "", nil)
	if err != nil {
		return nil, err
	}
	var accounts []models.PremiumAccount
	if err := decodeList(raw, &accounts, "accounts"); err != nil {
		return nil, err
	}
	return accounts, nil
}

func (c *Client) GetAccount(ctx context.Context, slug string) (*models.PremiumAccount, error) {
	raw, err := c.doJSON(ctx, http.MethodGet, "/premium-accounts/"+seg(slug), "", nil)
	if err != nil {
		return nil, err
	}
	var a models.PremiumAccount
	if err := decodeOne(raw, &a, "account"); err != nil {
		return nil, err
	}
	return &a, nil
}

func (c *Client) CreateAccount(ctx context.Context, token string, a models.PremiumAccount) error {
	a.ID = ""
	_, err := c.doJSON(ctx, http.MethodPost, "/premium-accounts/admin", token, a)
	return err
}

// UpdateAccount is addressed by id because the slug follows the title and
// may change with this very update.
func (c *Client) UpdateAccount(ctx context.Context, token string, a models.PremiumAccount) error {
	id := a.ID
	a.ID = ""
	_, err := c.doJSON(ctx, http.MethodPut, "/premium-accounts/"+seg(id), token, a)
	return err
}

func (c *Client) DeleteAccount(ctx context.Context, token, id string) error {
	_, err := c.doJSON(ctx, http.MethodDelete, "/premium-accounts/"+seg(id), token, nil)
	return err
}
