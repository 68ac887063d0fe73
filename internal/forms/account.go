package forms

import (
	"net/url"
	"strings"

	"github.com/alextreichler/magicworld/internal/models"
)

// AccountForm is the admin premium-account editor. The slug is never typed:
// it follows the title on every save.
type AccountForm struct {
	ID          string
	Title       string
	Badges      []string
	MainImage   string
	Gallery     []string
	Description string
	Price       float64
	IsAvailable bool
}

func NewAccountForm() AccountForm {
	return AccountForm{IsAvailable: true}
}

func FromAccount(a models.PremiumAccount) AccountForm {
	return AccountForm{
		ID:          a.ID,
		Title:       a.Title,
		Badges:      append([]string(nil), a.Badges...),
		MainImage:   a.MainImage,
		Gallery:     append([]string(nil), a.Gallery...),
		Description: a.Description,
		Price:       a.Price,
		IsAvailable: a.IsAvailable,
	}
}

// ParseAccountForm reads a posted account form. Badges and gallery images
// arrive as repeated "badge" and "gallery" fields.
func ParseAccountForm(v url.Values) (AccountForm, error) {
	f := AccountForm{
		ID:          strings.TrimSpace(v.Get("id")),
		Title:       strings.TrimSpace(v.Get("title")),
		MainImage:   strings.TrimSpace(v.Get("img")),
		Description: strings.TrimSpace(v.Get("desc")),
		IsAvailable: checked(v.Get("isAvailable")),
	}
	for _, b := range v["badge"] {
		if b = strings.TrimSpace(b); b != "" && !contains(f.Badges, b) {
			f.Badges = append(f.Badges, b)
		}
	}
	for _, g := range v["gallery"] {
		if g = strings.TrimSpace(g); g != "" && !contains(f.Gallery, g) {
			f.Gallery = append(f.Gallery, g)
		}
	}
	var err error
	f.Price, err = parseAmount("price", v.Get("price"))
	return f, err
}

func (f AccountForm) IsNew() bool { return f.ID == "" }

func (f AccountForm) Slug() string { return DeriveSlug(f.Title) }

func (f AccountForm) AddBadge(badge string) (AccountForm, error) {
	badge = strings.TrimSpace(badge)
	if badge == "" {
		return f, ErrBlank
	}
	if contains(f.Badges, badge) {
		return f, ErrDuplicate
	}
	f.Badges = append(append([]string(nil), f.Badges...), badge)
	return f, nil
}

func (f AccountForm) RemoveBadge(i int) AccountForm {
	f.Badges = without(f.Badges, i)
	return f
}

func (f AccountForm) AddGalleryImage(u string) (AccountForm, error) {
	u = strings.TrimSpace(u)
	if u == "" {
		return f, ErrBlank
	}
	if contains(f.Gallery, u) {
		return f, ErrDuplicate
	}
	f.Gallery = append(append([]string(nil), f.Gallery...), u)
	return f, nil
}

func (f AccountForm) RemoveGalleryImage(i int) AccountForm {
	f.Gallery = without(f.Gallery, i)
	return f
}

func (f AccountForm) Validate() error {
	if f.Title == "" {
		return invalid("title", "Title is required.")
	}
	if f.Slug() == "" {
		return invalid("title", "Title must contain letters or numbers.")
	}
	if f.MainImage == "" {
		return invalid("img", "Main image URL is required.")
	}
	if f.Price < 0 {
		return invalid("price", "Price cannot be negative.")
	}
	return nil
}

func (f AccountForm) Account() models.PremiumAccount {
	return models.PremiumAccount{
		ID:          f.ID,
		Slug:        f.Slug(),
		Title:       f.Title,
		Badges:      append([]string{}, f.Badges...),
		MainImage:   f.MainImage,
		Gallery:     append([]string{}, f.Gallery...),
		Description: f.Description,
		Price:       f.Price,
		IsAvailable: f.IsAvailable,
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// without returns a copy of list minus index i; a stale index is ignored.
func without(list []string, i int) []string {
	if i < 0 || i >= len(list) {
		return list
	}
	out := make([]string, 0, len(list)-1)
	out = append(out, list[:i]...)
	return append(out, list[i+1:]...)
}
