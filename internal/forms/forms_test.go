package forms

import (
	"net/url"
	"regexp"
	"testing"

	"github.com/alextreichler/magicworld/internal/features"
	"github.com/alextreichler/magicworld/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveSlug(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"My Cool Tool!!", "my-cool-tool"},
		{"  Leading and trailing  ", "leading-and-trailing"},
		{"already-a-slug", "already-a-slug"},
		{"Multiple   spaces -- and---dashes", "multiple-spaces-and-dashes"},
		{"under_score", "under-score"},
		{"Tom's Tool v2.0", "toms-tool-v20"},
		{"v1.2 Pro", "v12-pro"},
		{"---", ""},
		{"!!!", ""},
		{"", ""},
		{"Привет world", "world"},
		{"PUBG Mobile Hack", "pubg-mobile-hack"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, DeriveSlug(tt.input))
		})
	}
}

func TestDeriveSlugIsIdempotent(t *testing.T) {
	shape := regexp.MustCompile(`^[a-z0-9-]*$`)
	inputs := []string{"My Cool Tool!!", "-a--b-", " _x_ ", "Ünïcödé nämé", "a\tb\nc", "1 Week Pass", "--"}
	for _, in := range inputs {
		once := DeriveSlug(in)
		assert.Equal(t, once, DeriveSlug(once), "input %q", in)
		assert.Regexp(t, shape, once)
		assert.NotContains(t, once, "--")
		if once != "" {
			assert.NotEqual(t, byte('-'), once[0])
			assert.NotEqual(t, byte('-'), once[len(once)-1])
		}
	}
}

func TestValidSlug(t *testing.T) {
	assert.True(t, ValidSlug("my-cool-tool"))
	assert.True(t, ValidSlug("v2"))
	assert.False(t, ValidSlug(""))
	assert.False(t, ValidSlug("My-Tool"))
	assert.False(t, ValidSlug("my tool"))
	assert.False(t, ValidSlug("tool!"))
}

func paidForm() ProductForm {
	f := NewProductForm()
	f.SetName("My Cool Tool!!", "", false)
	f.ImageURL = "https://cdn.example.com/tool.png"
	f.DayPrice = 150
	f.WeekPrice = 700
	return f
}

func TestProductFormValidate(t *testing.T) {
	require.NoError(t, paidForm().Validate())

	tests := []struct {
		name    string
		mutate  func(*ProductForm)
		message string
	}{
		{"missing name", func(f *ProductForm) { f.SetName("", "", false) }, "Name, Slug, and Image URL are required."},
		{"missing image", func(f *ProductForm) { f.ImageURL = "" }, "Name, Slug, and Image URL are required."},
		{"bad slug", func(f *ProductForm) { f.Slug = "Bad Slug" }, "Slug can only contain lowercase letters, numbers, and hyphens."},
		{"bad type", func(f *ProductForm) { f.Type = "apps" }, "Type must be mods, games or none."},
		{"paid without price", func(f *ProductForm) { f.DayPrice, f.WeekPrice = 0, 0 }, "Paid products must have at least one positive price."},
		{"negative price", func(f *ProductForm) { f.DayPrice = -5 }, "Prices cannot be negative."},
		{"free without link", func(f *ProductForm) { f.ProductType = Free }, "Free products require a download link."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := paidForm()
			tt.mutate(&f)
			err := f.Validate()
			require.Error(t, err)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.message, verr.Message)
		})
	}
}

func TestProductFormScenarios(t *testing.T) {
	f := paidForm()
	assert.Equal(t, "my-cool-tool", f.Slug)

	f.ProductType = Free
	f.DownloadLink = ""
	require.Error(t, f.Validate())
	assert.Contains(t, f.Validate().Error(), "download link")

	f = paidForm()
	f.DayPrice, f.WeekPrice = 0, 0
	require.Error(t, f.Validate())
	assert.Contains(t, f.Validate().Error(), "price")
}

func TestProductFormFreeForcesZeroPrices(t *testing.T) {
	f := paidForm()
	f.ProductType = Free
	f.DownloadLink = "https://files.example.com/tool.zip"
	require.NoError(t, f.Validate())

	p := f.Product()
	assert.Equal(t, models.Price{}, p.Prices)
	assert.True(t, p.IsFree())
	assert.Equal(t, "https://files.example.com/tool.zip", p.DownloadLink)

	f = paidForm()
	f.DownloadLink = "https://stale.example.com"
	assert.Empty(t, f.Product().DownloadLink)
}

func TestFromProductDerivesType(t *testing.T) {
	free := FromProduct(models.Product{Slug: "x", Name: "X"})
	assert.Equal(t, Free, free.ProductType)
	assert.False(t, free.IsNew())

	paid := FromProduct(models.Product{Slug: "x", Name: "X", Prices: models.Price{Week: 10}})
	assert.Equal(t, Paid, paid.ProductType)
}

func TestParseProductForm(t *testing.T) {
	tree, err := features.New(features.Category{Name: "Gameplay"}).AddSection("Gameplay", "Aim")
	require.NoError(t, err)

	v := url.Values{
		"original_slug":   {"old-slug"},
		"name":            {"  Aim Helper  "},
		"slug":            {"custom-slug"},
		"image":           {"https://cdn/x.png"},
		"type":            {"Mods"},
		"productType":     {"paid"},
		"prices.day":      {"100"},
		"prices.week":     {""},
		"statusEnabled":   {"on"},
		"statusLabel":     {"Undetected"},
		"featuresEnabled": {"true"},
		"featuresData":    {tree.String()},
	}

	f, err := ParseProductForm(v, false)
	require.NoError(t, err)
	assert.Equal(t, "Aim Helper", f.Name)
	assert.Equal(t, "aim-helper", f.Slug, "slug follows the name when overrides are off")
	assert.Equal(t, "old-slug", f.OriginalSlug)
	assert.Equal(t, "mods", f.Type)
	assert.Equal(t, 100.0, f.DayPrice)
	assert.Zero(t, f.WeekPrice)
	assert.True(t, f.StatusEnabled)
	assert.True(t, f.FeaturesEnabled)
	assert.True(t, f.Features.Equal(tree))

	f, err = ParseProductForm(v, true)
	require.NoError(t, err)
	assert.Equal(t, "custom-slug", f.Slug)

	for _, bad := range []string{"lots", "NaN", "nan", "Inf", "+Inf", "-Inf", "1e400"} {
		v.Set("prices.week", bad)
		_, err = ParseProductForm(v, false)
		assert.EqualError(t, err, "Prices must be numbers.", bad)
	}

	v.Set("prices.week", "5")
	v.Set("featuresData", "{broken")
	_, err = ParseProductForm(v, false)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "featuresData", verr.Field)
}

func TestAccountForm(t *testing.T) {
	f := NewAccountForm()
	f.Title = "Max Level Account #1"
	f.MainImage = "https://cdn/acc.png"
	require.NoError(t, f.Validate())
	assert.Equal(t, "max-level-account-1", f.Slug())

	f2, err := f.AddBadge("OG")
	require.NoError(t, err)
	_, err = f2.AddBadge(" OG ")
	assert.ErrorIs(t, err, ErrDuplicate)
	_, err = f2.AddBadge("")
	assert.ErrorIs(t, err, ErrBlank)
	assert.Empty(t, f.Badges, "original form untouched")

	f3, err := f2.AddGalleryImage("https://cdn/1.png")
	require.NoError(t, err)
	_, err = f3.AddGalleryImage("https://cdn/1.png")
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.Equal(t, []string{"https://cdn/1.png"}, f3.Gallery)

	f4 := f3.RemoveGalleryImage(0).RemoveBadge(7)
	assert.Empty(t, f4.Gallery)
	assert.Equal(t, []string{"OG"}, f4.Badges)

	acc := f4.Account()
	assert.Equal(t, "max-level-account-1", acc.Slug)
	assert.NotNil(t, acc.Gallery)

	f.Price = -1
	assert.EqualError(t, f.Validate(), "Price cannot be negative.")
	f.Title = "!!!"
	assert.EqualError(t, f.Validate(), "Title must contain letters or numbers.")
}

func TestParseAccountFormDedups(t *testing.T) {
	f, err := ParseAccountForm(url.Values{
		"id":          {"abc"},
		"title":       {"Acc"},
		"badge":       {"OG", "OG", " ", "Rare"},
		"gallery":     {"a.png", "b.png", "a.png"},
		"price":       {"1999"},
		"isAvailable": {"on"},
	})
	require.NoError(t, err)
	assert.False(t, f.IsNew())
	assert.Equal(t, []string{"OG", "Rare"}, f.Badges)
	assert.Equal(t, []string{"a.png", "b.png"}, f.Gallery)
	assert.Equal(t, 1999.0, f.Price)
	assert.True(t, f.IsAvailable)
}

func TestParseAccountFormRejectsNonFinitePrice(t *testing.T) {
	for _, bad := range []string{"NaN", "Inf", "+Inf"} {
		_, err := ParseAccountForm(url.Values{"title": {"Acc"}, "price": {bad}})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr, bad)
		assert.Equal(t, "price", verr.Field)
	}
}

func TestContactAndLoginForms(t *testing.T) {
	ok := ContactForm{Name: "Ivan", Email: "ivan@example.com", Message: "Hi"}
	require.NoError(t, ok.Validate())

	missing := ok
	missing.Name = ""
	assert.EqualError(t, missing.Validate(), "Your name is required.")

	bad := ok
	bad.Email = "not-an-email"
	assert.EqualError(t, bad.Validate(), "Please enter a valid email address.")

	login := ParseLoginForm(url.Values{"email": {"admin@example.com"}, "password": {""}})
	assert.EqualError(t, login.Validate(), "Password is required.")

	assert.True(t, ValidEmail("a@b.co"))
	assert.False(t, ValidEmail("a@"))
}
