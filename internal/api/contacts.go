package api

import (
	"context"
	"net/http"

	"github.com/alextreichler/magicworld/internal/models"
)

// SendContact posts a public contact message and returns the server's
// confirmation text, if any.
func (c *Client) SendContact(ctx context.Context, msg models.ContactMessage) (string, error) {
	body := map[string]string{"name": msg.Name, "email": msg.Email, "message": msg.Message}
	raw, err := c.doJSON(ctx, http.MethodPost, "/contact", "", body)
	if err != nil {
		return "", err
	}
	return messageFrom(raw), nil
}

func (c *Client) ListContacts(ctx context.Context, token string) ([]models.ContactMessage, error) {
	raw, err := c.doJSON(ctx, http.MethodGet, "/contact", token, nil)
	if err != nil {
		return nil, err
	}
	var msgs []models.ContactMessage
	if err := decodeList(raw, &msgs, "messages", "contacts"); err != nil {
		return nil, err
	}
	return msgs, nil
}

func (c *Client) MarkContactRead(ctx context.Context, token, id string) error {
	_, err := c.doJSON(ctx, http.MethodPut, "/contact/read/"+seg(id), token, nil)
	return err
}

func (c *Client) DeleteContact(ctx context.Context, token, id string) error {
	_, err := c.doJSON(ctx, http.MethodDelete, "/contact/"+seg(id), token, nil)
	return err
}
