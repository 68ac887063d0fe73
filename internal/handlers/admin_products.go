package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/alextreichler/magicworld/internal/api"
	"github.com/alextreichler/magicworld/internal/features"
	"github.com/alextreichler/magicworld/internal/forms"
	"github.com/alextreichler/magicworld/internal/listing"
)

func (h *AdminHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	kind := listing.Normalize(r.URL.Query().Get("type"), listing.ProductFilters)

	data := h.data(w, r)
	products, err := h.API.ListProducts(r.Context(), "")
	if err != nil {
		slog.Error("Admin: could not load products", "error", err)
		data["Error"] = api.Message(err, "Could not load products.")
	}
	data["Products"] = listing.Products(products, query, kind)
	data["Total"] = len(products)
	data["Query"] = query
	data["Filter"] = kind
	data["Filters"] = listing.ProductFilters
	h.Templates.Render(w, http.StatusOK, "admin_products.html", data)
}

// pendingOp is a destructive feature edit waiting for the admin to confirm.
type pendingOp struct {
	Value  string
	Prompt string
}

func (h *AdminHandler) renderProductForm(w http.ResponseWriter, r *http.Request, status int, form forms.ProductForm, alert string, pending *pendingOp) {
	data := h.data(w, r)
	data["Form"] = form
	data["Alert"] = alert
	data["Pending"] = pending
	data["AllowSlugOverride"] = h.AllowSlugOverride
	h.Templates.Render(w, status, "admin_product_form.html", data)
}

func (h *AdminHandler) NewProduct(w http.ResponseWriter, r *http.Request) {
	h.renderProductForm(w, r, http.StatusOK, forms.NewProductForm(), "", nil)
}

func (h *AdminHandler) EditProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.API.GetProduct(r.Context(), r.PathValue("slug"))
	if err != nil {
		h.apiFailed(w, r, err, "Product not found.", "/admin/products")
		return
	}
	h.renderProductForm(w, r, http.StatusOK, forms.FromProduct(*p), "", nil)
}

// SaveProduct handles every post of the product form. A post carrying a
// feature operation only edits the tree and shows the form again; anything
// else is a save.
func (h *AdminHandler) SaveProduct(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data.", http.StatusBadRequest)
		return
	}
	form, err := forms.ParseProductForm(r.PostForm, h.AllowSlugOverride)
	if err != nil {
		h.renderProductForm(w, r, http.StatusUnprocessableEntity, form, err.Error(), nil)
		return
	}
	if r.PostForm.Get("op") != "" || r.PostForm.Get("confirm_op") != "" {
		h.editFeatures(w, r, form)
		return
	}

	if err := form.Validate(); err != nil {
		h.renderProductForm(w, r, http.StatusUnprocessableEntity, form, err.Error(), nil)
		return
	}

	token := h.Sessions.Token(r)
	msg := "Product updated successfully!"
	if form.IsNew() {
		err = h.API.CreateProduct(r.Context(), token, form.Product())
		msg = "Product created successfully!"
	} else {
		err = h.API.UpdateProduct(r.Context(), token, form.OriginalSlug, form.Product())
	}
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			h.Sessions.Expire(w, r)
			return
		}
		slog.Error("Admin: saving product failed", "slug", form.Slug, "error", err)
		h.renderProductForm(w, r, http.StatusBadGateway, form, api.Message(err, "Failed to save changes"), nil)
		return
	}

	h.Catalog.InvalidateProducts(r.Context())
	slog.Info("Product saved", "slug", form.Slug, "new", form.IsNew())
	h.flash(w, r, "success", msg, "/admin/products")
}

func (h *AdminHandler) editFeatures(w http.ResponseWriter, r *http.Request, form forms.ProductForm) {
	op, err := parseFeatureOp(r.PostForm, form.Features)
	if err != nil {
		// The tree changed under the button, e.g. a double post. Nothing to do.
		h.renderProductForm(w, r, http.StatusOK, form, "", nil)
		return
	}

	tree, err := features.Apply(form.Features, op)
	switch {
	case errors.Is(err, features.ErrNeedsConfirmation):
		h.renderProductForm(w, r, http.StatusOK, form, "", &pendingOp{Value: r.PostForm.Get("op"), Prompt: confirmPrompt(op)})
		return
	case errors.Is(err, features.ErrCategoryExists):
		msg := "Category already exists!"
		if op.Kind == features.RenameCategory {
			msg = "Category name already exists!"
		}
		h.renderProductForm(w, r, http.StatusOK, form, msg, nil)
		return
	case err != nil:
		slog.Debug("Feature edit ignored", "op", op.Kind, "error", err)
	}
	form.Features = tree
	h.renderProductForm(w, r, http.StatusOK, form, "", nil)
}

// parseFeatureOp decodes a feature button. Its value is the operation kind
// followed by category, section and item indexes ("add-item:0:2"); the text
// comes from the input that belongs to the same row.
func parseFeatureOp(v url.Values, t features.Tree) (features.Op, error) {
	raw, confirmed := v.Get("confirm_op"), true
	if raw == "" {
		raw, confirmed = v.Get("op"), false
	}
	parts := strings.Split(raw, ":")
	op := features.Op{Kind: features.OpKind(parts[0]), Section: -1, Item: -1, Confirmed: confirmed}

	idx := []int{-1, -1, -1}
	for i, p := range parts[1:] {
		if i >= len(idx) {
			return op, features.ErrUnknownOp
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return op, features.ErrUnknownOp
		}
		idx[i] = n
	}
	key := func(prefix string, n int) string {
		s := prefix
		for _, i := range idx[:n] {
			s += "_" + strconv.Itoa(i)
		}
		return s
	}

	if op.Kind != features.AddCategory {
		names := t.Names()
		if idx[0] < 0 || idx[0] >= len(names) {
			return op, features.ErrStale
		}
		op.Category = names[idx[0]]
	}
	op.Section, op.Item = idx[1], idx[2]

	switch op.Kind {
	case features.AddCategory:
		op.Text = v.Get("new_category")
	case features.RenameCategory:
		op.Text = v.Get(key("category_name", 1))
	case features.AddSection:
		op.Text = v.Get(key("new_section", 1))
	case features.RenameSection:
		op.Text = v.Get(key("section_title", 2))
	case features.AddItem:
		op.Text = v.Get(key("new_item", 2))
	case features.EditItem:
		op.Text = v.Get(key("item", 3))
	case features.DeleteCategory, features.DeleteSection, features.DeleteItem:
	default:
		return op, features.ErrUnknownOp
	}
	return op, nil
}

func confirmPrompt(op features.Op) string {
	switch op.Kind {
	case features.DeleteCategory:
		return fmt.Sprintf("Delete category %q and all its content?", op.Category)
	case features.DeleteSection:
		return "Delete this section and all items?"
	}
	return "Delete this item?"
}

func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if !confirmed(r) {
		h.confirm(w, r, "Are you sure you want to delete this product?", r.URL.Path, "/admin/products", nil)
		return
	}
	slug := r.PathValue("slug")
	if err := h.API.DeleteProduct(r.Context(), h.Sessions.Token(r), slug); err != nil {
		h.apiFailed(w, r, err, "Failed to delete product", "/admin/products")
		return
	}
	h.Catalog.InvalidateProducts(r.Context())
	slog.Info("Product deleted", "slug", slug)
	h.flash(w, r, "success", "Product deleted successfully!", "/admin/products")
}

func (h *AdminHandler) BulkDeleteProducts(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data.", http.StatusBadRequest)
		return
	}
	slugs := r.PostForm["slug"]
	if len(slugs) == 0 {
		h.flash(w, r, "error", "Select at least one product.", "/admin/products")
		return
	}
	if !confirmed(r) {
		h.confirm(w, r, fmt.Sprintf("Delete %d selected products?", len(slugs)), r.URL.Path, "/admin/products", url.Values{"slug": slugs})
		return
	}
	if err := h.API.BulkDeleteProducts(r.Context(), h.Sessions.Token(r), slugs); err != nil {
		h.apiFailed(w, r, err, "Failed to delete products", "/admin/products")
		return
	}
	h.Catalog.InvalidateProducts(r.Context())
	slog.Info("Products deleted", "count", len(slugs))
	h.flash(w, r, "success", fmt.Sprintf("%d products deleted.", len(slugs)), "/admin/products")
}
