package handlers

import (
	"encoding/xml"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/alextreichler/magicworld/internal/api"
	"github.com/alextreichler/magicworld/internal/cache"
	"github.com/alextreichler/magicworld/internal/forms"
	"github.com/alextreichler/magicworld/internal/listing"
	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"
)

const publicSessionName = "public-session"

// PublicHandler serves the storefront pages.
type PublicHandler struct {
	Catalog         *cache.Catalog
	API             *api.Client
	Templates       *TemplateCache
	SessionStore    sessions.Store
	SiteURL         string
	TelegramContact string
}

// data starts the template data every storefront page gets.
func (h *PublicHandler) data(w http.ResponseWriter, r *http.Request) map[string]interface{} {
	session, _ := h.SessionStore.Get(r, publicSessionName)
	data := map[string]interface{}{
		"CsrfField": csrf.TemplateField(r),
		"Flashes":   GetFlash(session),
		"Telegram":  h.TelegramContact,
		"Path":      r.URL.Path,
	}
	session.Save(r, w)
	return data
}

func (h *PublicHandler) Index(w http.ResponseWriter, r *http.Request) {
	products, err := h.Catalog.ListProducts(r.Context(), "")
	if err != nil {
		slog.Warn("Home: could not load products", "error", err)
	}
	accounts, err := h.Catalog.ListAccounts(r.Context())
	if err != nil {
		slog.Warn("Home: could not load accounts", "error", err)
	}
	featured, _ := listing.Page(products, 6)
	available, _ := listing.Page(listing.Accounts(accounts, "", "available"), 3)

	data := h.data(w, r)
	data["Products"] = featured
	data["Accounts"] = available
	h.Templates.Render(w, http.StatusOK, "home.html", data)
}

func (h *PublicHandler) About(w http.ResponseWriter, r *http.Request) {
	h.Templates.Render(w, http.StatusOK, "about.html", h.data(w, r))
}

type categoryPage struct {
	Slug     string
	Title    string
	Subtitle string
	Empty    string
	PageSize int
	Filters  []string
}

var (
	hacksMods = categoryPage{
		Slug:     "hacks-mods",
		Title:    "Hacks & Mods",
		Subtitle: "Browse premium enhanced tools, optimized utilities, and refined modded resources.",
		Empty:    "No utilities available at the moment.",
		PageSize: 10,
	}
	utilitiesMods = categoryPage{
		Slug:     "utilities-mods",
		Title:    "Utilities & Mods",
		Subtitle: "Explore a refined selection of enhanced tools, modded utilities, and optimized resources.",
		Empty:    "No items available at the moment.",
		PageSize: listing.PageSize,
		Filters:  []string{listing.All, "mods", "games"},
	}
)

func (h *PublicHandler) HacksMods(w http.ResponseWriter, r *http.Request) {
	h.category(w, r, hacksMods)
}

func (h *PublicHandler) UtilitiesMods(w http.ResponseWriter, r *http.Request) {
	h.category(w, r, utilitiesMods)
}

// category renders a product grid. "Load more" is a link that asks for the
// next PageSize items on top of those already shown.
func (h *PublicHandler) category(w http.ResponseWriter, r *http.Request, c categoryPage) {
	products, err := h.Catalog.ListProducts(r.Context(), c.Slug)
	if err != nil {
		slog.Warn("Category: could not load products", "category", c.Slug, "error", err)
	}

	filter := listing.All
	if len(c.Filters) > 0 {
		filter = listing.Normalize(r.URL.Query().Get("type"), c.Filters)
		products = listing.Products(products, "", filter)
	}

	show, err := strconv.Atoi(r.URL.Query().Get("show"))
	if err != nil || show < c.PageSize {
		show = c.PageSize
	}
	visible, more := listing.Page(products, show)

	data := h.data(w, r)
	data["Category"] = c
	data["Products"] = visible
	data["Filter"] = filter
	data["HasMore"] = more
	data["NextShow"] = show + c.PageSize
	h.Templates.Render(w, http.StatusOK, "category.html", data)
}

func (h *PublicHandler) Accounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.Catalog.ListAccounts(r.Context())
	if err != nil {
		slog.Warn("Accounts: could not load accounts", "error", err)
	}
	data := h.data(w, r)
	data["Accounts"] = accounts
	h.Templates.Render(w, http.StatusOK, "accounts.html", data)
}

func (h *PublicHandler) AccountDetail(w http.ResponseWriter, r *http.Request) {
	account, err := h.Catalog.GetAccount(r.Context(), r.PathValue("slug"))
	if err != nil {
		if api.IsNotFound(err) {
			h.NotFound(w, r)
			return
		}
		slog.Error("Account detail: could not load account", "slug", r.PathValue("slug"), "error", err)
		h.errorPage(w, r, http.StatusBadGateway, "Could not load this account. Try again later.")
		return
	}
	data := h.data(w, r)
	data["Account"] = account
	h.Templates.Render(w, http.StatusOK, "account.html", data)
}

func (h *PublicHandler) ContactGet(w http.ResponseWriter, r *http.Request) {
	data := h.data(w, r)
	data["Form"] = forms.ContactForm{}
	h.Templates.Render(w, http.StatusOK, "contact.html", data)
}

func (h *PublicHandler) ContactPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data.", http.StatusBadRequest)
		return
	}
	form := forms.ParseContactForm(r.PostForm)
	renderErr := func(status int, msg string) {
		data := h.data(w, r)
		data["Form"] = form
		data["Error"] = msg
		h.Templates.Render(w, status, "contact.html", data)
	}

	if err := form.Validate(); err != nil {
		renderErr(http.StatusUnprocessableEntity, err.Error())
		return
	}
	msg, err := h.API.SendContact(r.Context(), form.ContactMessage())
	if err != nil {
		slog.Error("Contact message failed", "error", err)
		var apiErr *api.Error
		if errors.As(err, &apiErr) {
			renderErr(http.StatusBadGateway, api.Message(err, "Failed to send"))
			return
		}
		renderErr(http.StatusBadGateway, "Network error. Please try again.")
		return
	}
	if msg == "" {
		msg = "Message sent successfully!"
	}
	session, _ := h.SessionStore.Get(r, publicSessionName)
	redirectWithFlash(w, r, session, "success", msg, "/contact")
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// Sitemap lists the static pages and every product.
func (h *PublicHandler) Sitemap(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC().Format("2006-01-02")
	set := urlSet{XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	for _, p := range []string{"", "/categories/hacks-mods", "/categories/utilities-mods", "/categories/accounts", "/about", "/contact"} {
		set.URLs = append(set.URLs, sitemapURL{Loc: h.SiteURL + p, LastMod: now})
	}

	products, err := h.Catalog.ListProducts(r.Context(), "")
	if err != nil {
		slog.Warn("Sitemap: could not load products", "error", err)
	}
	for _, p := range products {
		mod := now
		if p.UpdatedAt != nil {
			mod = p.UpdatedAt.UTC().Format("2006-01-02")
		}
		set.URLs = append(set.URLs, sitemapURL{Loc: h.SiteURL + "/products/" + p.Slug, LastMod: mod})
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Write([]byte(xml.Header))
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		slog.Error("Sitemap encode failed", "error", err)
	}
}

func (h *PublicHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.errorPage(w, r, http.StatusNotFound, "Page not found.")
}

func (h *PublicHandler) errorPage(w http.ResponseWriter, r *http.Request, status int, msg string) {
	data := h.data(w, r)
	data["Status"] = status
	data["Message"] = msg
	h.Templates.Render(w, status, "error.html", data)
}
