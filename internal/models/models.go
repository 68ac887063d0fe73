package models

import (
	"time"

	"github.com/alextreichler/magicworld/internal/features"
)

type Price struct {
	Day  float64 `json:"day"`
	Week float64 `json:"week"`
}

type Product struct {
	ID              string        `json:"_id,omitempty"`
	Slug            string        `json:"slug"`
	Name            string        `json:"name"`
	Description     string        `json:"desc"`
	ImageURL        string        `json:"image"`
	Version         string        `json:"version"`
	Size            string        `json:"size"`
	Updated         string        `json:"updated"` // free text label, e.g. "2 days ago"
	Category        string        `json:"category"`
	Type            string        `json:"type,omitempty"` // "mods" or "games"
	Prices          Price         `json:"prices"`
	DownloadLink    string        `json:"downloadLink,omitempty"`
	StatusEnabled   bool          `json:"statusEnabled"`
	StatusLabel     string        `json:"statusLabel,omitempty"`
	FeaturesEnabled bool          `json:"featuresEnabled"`
	Features        features.Tree `json:"featuresData"`
	UpdatedAt       *time.Time    `json:"updatedAt,omitempty"`
}

// IsFree reports whether both plan prices are zero. A free product is
// delivered through its download link instead of the order flow.
func (p Product) IsFree() bool {
	return p.Prices.Day == 0 && p.Prices.Week == 0
}

// PriceFor returns the price of a plan ("1 Day" or "1 Week").
func (p Product) PriceFor(plan string) (float64, bool) {
	switch plan {
	case PlanDay:
		return p.Prices.Day, true
	case PlanWeek:
		return p.Prices.Week, true
	}
	return 0, false
}

// ShowStatusBadge is true when the badge is switched on and has a label.
func (p Product) ShowStatusBadge() bool {
	return p.StatusEnabled && p.StatusLabel != ""
}

type PremiumAccount struct {
	ID          string   `json:"_id,omitempty"`
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	Badges      []string `json:"type"`
	MainImage   string   `json:"img"`
	Gallery     []string `json:"gallery"`
	Description string   `json:"desc"`
	Price       float64  `json:"price"`
	IsAvailable bool     `json:"isAvailable"`
}

const (
	PlanDay  = "1 Day"
	PlanWeek = "1 Week"
)

const (
	PaymentPaid    = "paid"
	PaymentPending = "pending"

	OrderPending   = "pending"
	OrderDelivered = "delivered"
	OrderCancelled = "cancelled"
)

var (
	PaymentStatuses = []string{PaymentPaid, PaymentPending}
	OrderStatuses   = []string{OrderPending, OrderDelivered, OrderCancelled}
)

type Order struct {
	ID            string    `json:"_id"`
	ProductName   string    `json:"productName"`
	Plan          string    `json:"plan"`
	Price         float64   `json:"price"`
	Email         string    `json:"email"`
	Telegram      string    `json:"telegram"`
	PaymentStatus string    `json:"paymentStatus"`
	OrderStatus   string    `json:"orderStatus"`
	Screenshot    string    `json:"screenshot,omitempty"` // path relative to the API base URL
	CreatedAt     time.Time `json:"createdAt"`
}

type ContactMessage struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

// Envelope is the generic {success, message} body most API routes answer with.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Token   string `json:"token,omitempty"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
