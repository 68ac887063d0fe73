package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/alextreichler/magicworld/internal/api"
	"github.com/alextreichler/magicworld/internal/forms"
	"github.com/alextreichler/magicworld/internal/listing"
)

func (h *AdminHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	availability := listing.Normalize(r.URL.Query().Get("availability"), listing.AccountFilters)

	data := h.data(w, r)
	accounts, err := h.API.ListAccounts(r.Context())
	if err != nil {
		slog.Error("Admin: could not load accounts", "error", err)
		data["Error"] = api.Message(err, "Could not load accounts.")
	}
	data["Accounts"] = listing.Accounts(accounts, query, availability)
	data["Total"] = len(accounts)
	data["Query"] = query
	data["Filter"] = availability
	data["Filters"] = listing.AccountFilters
	h.Templates.Render(w, http.StatusOK, "admin_accounts.html", data)
}

func (h *AdminHandler) renderAccountForm(w http.ResponseWriter, r *http.Request, status int, form forms.AccountForm, alert string) {
	data := h.data(w, r)
	data["Form"] = form
	data["Alert"] = alert
	h.Templates.Render(w, status, "admin_account_form.html", data)
}

func (h *AdminHandler) NewAccount(w http.ResponseWriter, r *http.Request) {
	h.renderAccountForm(w, r, http.StatusOK, forms.NewAccountForm(), "")
}

func (h *AdminHandler) EditAccount(w http.ResponseWriter, r *http.Request) {
	a, err := h.API.GetAccount(r.Context(), r.PathValue("slug"))
	if err != nil {
		h.apiFailed(w, r, err, "Account not found.", "/admin/accounts")
		return
	}
	h.renderAccountForm(w, r, http.StatusOK, forms.FromAccount(*a), "")
}

// SaveAccount works like SaveProduct: "op" posts edit the badge and gallery
// lists, everything else saves.
func (h *AdminHandler) SaveAccount(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data.", http.StatusBadRequest)
		return
	}
	form, err := forms.ParseAccountForm(r.PostForm)
	if err != nil {
		h.renderAccountForm(w, r, http.StatusUnprocessableEntity, form, err.Error())
		return
	}
	if op := r.PostForm.Get("op"); op != "" {
		form, alert := editAccountLists(form, op, r.PostForm.Get("new_badge"), r.PostForm.Get("new_gallery"))
		h.renderAccountForm(w, r, http.StatusOK, form, alert)
		return
	}

	if err := form.Validate(); err != nil {
		h.renderAccountForm(w, r, http.StatusUnprocessableEntity, form, err.Error())
		return
	}

	token := h.Sessions.Token(r)
	msg := "Account updated successfully!"
	if form.IsNew() {
		err = h.API.CreateAccount(r.Context(), token, form.Account())
		msg = "Account created successfully!"
	} else {
		err = h.API.UpdateAccount(r.Context(), token, form.Account())
	}
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			h.Sessions.Expire(w, r)
			return
		}
		slog.Error("Admin: saving account failed", "title", form.Title, "error", err)
		h.renderAccountForm(w, r, http.StatusBadGateway, form, api.Message(err, "Failed to save account"))
		return
	}

	h.Catalog.InvalidateAccounts(r.Context())
	slog.Info("Account saved", "slug", form.Slug(), "new", form.IsNew())
	h.flash(w, r, "success", msg, "/admin/accounts")
}

// editAccountLists applies one list edit: "add-badge", "add-gallery",
// "remove-badge:<i>" or "remove-gallery:<i>".
func editAccountLists(form forms.AccountForm, op, badge, image string) (forms.AccountForm, string) {
	kind, arg, _ := strings.Cut(op, ":")
	i, _ := strconv.Atoi(arg)

	var err error
	switch kind {
	case "add-badge":
		form, err = form.AddBadge(badge)
		if errors.Is(err, forms.ErrDuplicate) {
			return form, "Badge already added."
		}
	case "remove-badge":
		form = form.RemoveBadge(i)
	case "add-gallery":
		form, err = form.AddGalleryImage(image)
		if errors.Is(err, forms.ErrDuplicate) {
			return form, "Image already in gallery."
		}
	case "remove-gallery":
		form = form.RemoveGalleryImage(i)
	}
	return form, ""
}

func (h *AdminHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	if !confirmed(r) {
		h.confirm(w, r, "Delete this account permanently?", r.URL.Path, "/admin/accounts", nil)
		return
	}
	id := r.PathValue("id")
	if err := h.API.DeleteAccount(r.Context(), h.Sessions.Token(r), id); err != nil {
		h.apiFailed(w, r, err, "Failed to delete account", "/admin/accounts")
		return
	}
	h.Catalog.InvalidateAccounts(r.Context())
	slog.Info("Account deleted", "id", id)
	h.flash(w, r, "success", "Account deleted successfully!", "/admin/accounts")
}
