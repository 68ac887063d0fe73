package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"

	"github.com/alextreichler/magicworld/internal/models"
)

// OrderUpload is the customer's order plus the payment screenshot.
type OrderUpload struct {
	ProductName string
	Plan        string
	Price       float64
	Email       string
	Telegram    string
	FileName    string
	ContentType string
	File        io.Reader
}

// UploadOrder posts the order as multipart form data. New orders always
// start out pending.
func (c *Client) UploadOrder(ctx context.Context, o OrderUpload) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fields := [][2]string{
		{"productName", o.ProductName},
		{"plan", o.Plan},
		{"price", strconv.FormatFloat(o.Price, 'f', -1, 64)},
		{"email", o.Email},
		{"telegram", o.Telegram},
		{"status", models.PaymentPending},
	}
	for _, f := range fields {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return fmt.Errorf("api: build order form: %w", err)
		}
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, o.FileName))
	h.Set("Content-Type", o.ContentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return fmt.Errorf("api: build order form: %w", err)
	}
	if _, err := io.Copy(part, o.File); err != nil {
		return fmt.Errorf("api: copy screenshot: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("api: build order form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/orders/upload", &buf)
	if err != nil {
		return fmt.Errorf("api: build order request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	_, err = c.send(req, "")
	return err
}

func (c *Client) ListOrders(ctx context.Context, token string) ([]models.Order, error) {
	raw, err := c.doJSON(ctx, http.MethodGet, "/orders", token, nil)
	if err != nil {
		return nil, err
	}
	var orders []models.Order
	if err := decodeList(raw, &orders, "orders"); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *Client) SetPaymentStatus(ctx context.Context, token, id, status string) error {
	body := map[string]string{"status": status}
	_, err := c.doJSON(ctx, http.MethodPut, "/orders/payment/"+seg(id), token, body)
	return err
}

func (c *Client) SetOrderStatus(ctx context.Context, token, id, status string) error {
	body := map[string]string{"orderStatus": status}
	_, err := c.doJSON(ctx, http.MethodPut, "/orders/status/"+seg(id), token, body)
	return err
}

func (c *Client) DeleteOrder(ctx context.Context, token, id string) error {
	_, err := c.doJSON(ctx, http.MethodDelete, "/orders/"+seg(id), token, nil)
	return err
}
