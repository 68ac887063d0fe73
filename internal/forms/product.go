package forms

import (
	"net/url"
	"strings"

	"github.com/alextreichler/magicworld/internal/features"
	"github.com/alextreichler/magicworld/internal/models"
)

type ProductType string

const (
	Paid ProductType = "paid"
	Free ProductType = "free"
)

// ProductForm is the state of the admin add/edit product screen. ProductType
// only exists here: the saved product is free when both prices are zero.
type ProductForm struct {
	OriginalSlug    string // slug the product was loaded with; empty when creating
	Name            string
	Slug            string
	Description     string
	ImageURL        string
	Version         string
	Size            string
	Updated         string
	Category        string
	Type            string
	ProductType     ProductType
	DayPrice        float64
	WeekPrice       float64
	DownloadLink    string
	StatusEnabled   bool
	StatusLabel     string
	FeaturesEnabled bool
	Features        features.Tree
}

func NewProductForm() ProductForm {
	return ProductForm{ProductType: Paid}
}

func FromProduct(p models.Product) ProductForm {
	f := ProductForm{
		OriginalSlug:    p.Slug,
		Name:            p.Name,
		Slug:            p.Slug,
		Description:     p.Description,
		ImageURL:        p.ImageURL,
		Version:         p.Version,
		Size:            p.Size,
		Updated:         p.Updated,
		Category:        p.Category,
		Type:            p.Type,
		ProductType:     Paid,
		DayPrice:        p.Prices.Day,
		WeekPrice:       p.Prices.Week,
		DownloadLink:    p.DownloadLink,
		StatusEnabled:   p.StatusEnabled,
		StatusLabel:     p.StatusLabel,
		FeaturesEnabled: p.FeaturesEnabled,
		Features:        p.Features,
	}
	if p.IsFree() {
		f.ProductType = Free
	}
	return f
}

// ParseProductForm reads a posted product form. With allowSlugOverride off
// the slug always follows the name; with it on a typed slug is kept and
// checked by Validate.
func ParseProductForm(v url.Values, allowSlugOverride bool) (ProductForm, error) {
	f := ProductForm{
		OriginalSlug:    strings.TrimSpace(v.Get("original_slug")),
		Description:     strings.TrimSpace(v.Get("desc")),
		ImageURL:        strings.TrimSpace(v.Get("image")),
		Version:         strings.TrimSpace(v.Get("version")),
		Size:            strings.TrimSpace(v.Get("size")),
		Updated:         strings.TrimSpace(v.Get("updated")),
		Category:        strings.TrimSpace(v.Get("category")),
		Type:            strings.ToLower(strings.TrimSpace(v.Get("type"))),
		ProductType:     Paid,
		DownloadLink:    strings.TrimSpace(v.Get("downloadLink")),
		StatusEnabled:   checked(v.Get("statusEnabled")),
		StatusLabel:     strings.TrimSpace(v.Get("statusLabel")),
		FeaturesEnabled: checked(v.Get("featuresEnabled")),
	}
	if ProductType(v.Get("productType")) == Free {
		f.ProductType = Free
	}
	f.SetName(v.Get("name"), v.Get("slug"), allowSlugOverride)

	var err error
	if f.DayPrice, err = parseAmount("prices.day", v.Get("prices.day")); err != nil {
		return f, err
	}
	if f.WeekPrice, err = parseAmount("prices.week", v.Get("prices.week")); err != nil {
		return f, err
	}
	if f.Features, err = features.Parse(v.Get("featuresData")); err != nil {
		return f, invalid("featuresData", "Feature data is corrupted. Reload the product and try again.")
	}
	return f, nil
}

// SetName updates the name and the slug that goes with it.
func (f *ProductForm) SetName(name, typedSlug string, allowSlugOverride bool) {
	f.Name = strings.TrimSpace(name)
	typedSlug = strings.TrimSpace(typedSlug)
	if allowSlugOverride && typedSlug != "" {
		f.Slug = typedSlug
		return
	}
	f.Slug = DeriveSlug(f.Name)
}

func (f ProductForm) IsNew() bool { return f.OriginalSlug == "" }

func (f ProductForm) IsFree() bool { return f.ProductType == Free }

// Validate returns the first problem that blocks saving, or nil.
func (f ProductForm) Validate() error {
	if f.Name == "" || f.Slug == "" || f.ImageURL == "" {
		return invalid("name", "Name, Slug, and Image URL are required.")
	}
	if !ValidSlug(f.Slug) {
		return invalid("slug", "Slug can only contain lowercase letters, numbers, and hyphens.")
	}
	switch f.Type {
	case "", "mods", "games":
	default:
		return invalid("type", "Type must be mods, games or none.")
	}
	if f.IsFree() {
		if f.DownloadLink == "" {
			return invalid("downloadLink", "Free products require a download link.")
		}
		return nil
	}
	if f.DayPrice < 0 || f.WeekPrice < 0 {
		return invalid("prices", "Prices cannot be negative.")
	}
	if f.DayPrice == 0 && f.WeekPrice == 0 {
		return invalid("prices", "Paid products must have at least one positive price.")
	}
	return nil
}

// Product builds what is sent to the API. Free products always go out with
// zero prices, whatever is left in the price fields.
func (f ProductForm) Product() models.Product {
	p := models.Product{
		Slug:            f.Slug,
		Name:            f.Name,
		Description:     f.Description,
		ImageURL:        f.ImageURL,
		Version:         f.Version,
		Size:            f.Size,
		Updated:         f.Updated,
		Category:        f.Category,
		Type:            f.Type,
		Prices:          models.Price{Day: f.DayPrice, Week: f.WeekPrice},
		StatusEnabled:   f.StatusEnabled,
		StatusLabel:     f.StatusLabel,
		FeaturesEnabled: f.FeaturesEnabled,
		Features:        f.Features,
	}
	if f.IsFree() {
		p.Prices = models.Price{}
		p.DownloadLink = f.DownloadLink
	}
	return p
}
