// Package listing holds the search and filter rules behind the admin list
// screens and the storefront category pages.
package listing

import (
	"slices"
	"strings"

	"github.com/alextreichler/magicworld/internal/models"
)

// All disables a filter.
const All = "all"

// PageSize is how many products a category page shows per "load more" step.
const PageSize = 12

var (
	OrderFilters   = []string{All, models.PaymentPaid, models.PaymentPending, models.OrderDelivered, models.OrderCancelled}
	ProductFilters = []string{All, "mods", "games", "free", "paid"}
	AccountFilters = []string{All, "available", "sold"}
	ContactFilters = []string{All, "read", "unread"}
)

// Normalize lowercases filter and falls back to All when it is not one of
// allowed.
func Normalize(filter string, allowed []string) string {
	filter = strings.ToLower(strings.TrimSpace(filter))
	if slices.Contains(allowed, filter) {
		return filter
	}
	return All
}

// matches reports whether any field contains query, ignoring case. A blank
// query matches everything.
func matches(query string, fields ...string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

// Orders keeps orders matching query on email, telegram or product name,
// whose payment status or order status equals status.
func Orders(orders []models.Order, query, status string) []models.Order {
	status = Normalize(status, OrderFilters)
	out := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		if !matches(query, o.Email, o.Telegram, o.ProductName) {
			continue
		}
		if status != All && o.PaymentStatus != status && o.OrderStatus != status {
			continue
		}
		out = append(out, o)
	}
	return out
}

func Products(products []models.Product, query, kind string) []models.Product {
	kind = Normalize(kind, ProductFilters)
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if !matches(query, p.Name, p.Slug, p.Category) {
			continue
		}
		if !productKind(p, kind) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func productKind(p models.Product, kind string) bool {
	switch kind {
	case "free":
		return p.IsFree()
	case "paid":
		return !p.IsFree()
	case "mods", "games":
		return strings.EqualFold(strings.TrimSpace(p.Type), kind)
	}
	return true
}

func Accounts(accounts []models.PremiumAccount, query, availability string) []models.PremiumAccount {
	availability = Normalize(availability, AccountFilters)
	out := make([]models.PremiumAccount, 0, len(accounts))
	for _, a := range accounts {
		fields := append([]string{a.Title, a.Slug}, a.Badges...)
		if !matches(query, fields...) {
			continue
		}
		if availability == "available" && !a.IsAvailable || availability == "sold" && a.IsAvailable {
			continue
		}
		out = append(out, a)
	}
	return out
}

func Contacts(msgs []models.ContactMessage, query, filter string) []models.ContactMessage {
	filter = Normalize(filter, ContactFilters)
	out := make([]models.ContactMessage, 0, len(msgs))
	for _, m := range msgs {
		if !matches(query, m.Name, m.Email, m.Message) {
			continue
		}
		if filter == "read" && !m.Read || filter == "unread" && m.Read {
			continue
		}
		out = append(out, m)
	}
	return out
}

// Page returns the first n items and whether more remain.
func Page[T any](items []T, n int) ([]T, bool) {
	if n <= 0 {
		n = PageSize
	}
	if n >= len(items) {
		return items, false
	}
	return items[:n], true
}

func ValidPaymentStatus(s string) bool { return slices.Contains(models.PaymentStatuses, s) }

func ValidOrderStatus(s string) bool { return slices.Contains(models.OrderStatuses, s) }

// Unread counts messages not yet marked read.
func Unread(msgs []models.ContactMessage) int {
	n := 0
	for _, m := range msgs {
		if !m.Read {
			n++
		}
	}
	return n
}
