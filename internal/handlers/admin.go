package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/alextreichler/magicworld/internal/api"
	"github.com/alextreichler/magicworld/internal/cache"
	"github.com/alextreichler/magicworld/internal/forms"
	"github.com/alextreichler/magicworld/internal/listing"
	"github.com/alextreichler/magicworld/internal/session"
	"github.com/gorilla/csrf"
)

type AdminHandler struct {
	API               *api.Client
	Catalog           *cache.Catalog
	Sessions          *session.Manager
	Templates         *TemplateCache
	AllowSlugOverride bool
}

// SessionExpired is the session.Manager expiry callback: back to the login
// page with a note saying why.
func (h *AdminHandler) SessionExpired(w http.ResponseWriter, r *http.Request) {
	redirectWithFlash(w, r, h.Sessions.Get(r), "error", "Your session has expired. Please log in again.", "/admin/login")
}

func (h *AdminHandler) data(w http.ResponseWriter, r *http.Request) map[string]interface{} {
	s := h.Sessions.Get(r)
	data := map[string]interface{}{
		"CsrfField":  csrf.TemplateField(r),
		"Flashes":    GetFlash(s),
		"AdminEmail": h.Sessions.Email(r),
		"Path":       r.URL.Path,
	}
	if err := s.Save(r, w); err != nil {
		slog.Error("Failed to save session", "error", err)
	}
	return data
}

func (h *AdminHandler) flash(w http.ResponseWriter, r *http.Request, kind, msg, to string) {
	redirectWithFlash(w, r, h.Sessions.Get(r), kind, msg, to)
}

// apiFailed handles an error from an admin API call: a rejected token ends
// the session, anything else goes back to `back` with the server's message
// or fallback.
func (h *AdminHandler) apiFailed(w http.ResponseWriter, r *http.Request, err error, fallback, back string) {
	if errors.Is(err, api.ErrUnauthorized) {
		slog.Info("Admin token rejected, ending session", "path", r.URL.Path)
		h.Sessions.Expire(w, r)
		return
	}
	slog.Error("Admin API call failed", "path", r.URL.Path, "error", err)
	h.flash(w, r, "error", api.Message(err, fallback), back)
}

func (h *AdminHandler) LoginGet(w http.ResponseWriter, r *http.Request) {
	if h.Sessions.Authenticated(r) {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}
	data := h.data(w, r)
	data["Form"] = forms.LoginForm{}
	h.Templates.Render(w, http.StatusOK, "login.html", data)
}

func (h *AdminHandler) LoginPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data.", http.StatusBadRequest)
		return
	}
	form := forms.ParseLoginForm(r.PostForm)
	renderErr := func(status int, msg string) {
		form.Password = ""
		data := h.data(w, r)
		data["Form"] = form
		data["Error"] = msg
		h.Templates.Render(w, status, "login.html", data)
	}

	if err := form.Validate(); err != nil {
		renderErr(http.StatusUnprocessableEntity, err.Error())
		return
	}
	token, err := h.API.Login(r.Context(), form.Credentials())
	if err != nil {
		var apiErr *api.Error
		if errors.As(err, &apiErr) || errors.Is(err, api.ErrUnauthorized) {
			slog.Info("Admin login rejected", "email", form.Email)
			renderErr(http.StatusUnauthorized, "Invalid credentials")
			return
		}
		slog.Error("Admin login failed", "error", err)
		renderErr(http.StatusBadGateway, "Login failed. Try again later.")
		return
	}

	if err := h.Sessions.SetToken(w, r, token, form.Email); err != nil {
		slog.Error("Failed to save session", "error", err)
		http.Error(w, "Failed to save session", http.StatusInternalServerError)
		return
	}
	slog.Info("Login successful, redirecting to /admin", "email", form.Email)
	h.flash(w, r, "success", "Welcome back!", "/admin")
}

func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.Clear(w, r); err != nil {
		slog.Error("Failed to clear session", "error", err)
	}
	h.flash(w, r, "success", "Logged out successfully!", "/admin/login")
}

// AuthMiddleware lets only requests with an admin token through. Whether the
// token is still good is up to the API; see apiFailed.
func (h *AdminHandler) AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !h.Sessions.Authenticated(r) {
			slog.Debug("AuthMiddleware: not authenticated, redirecting to login", "path", r.URL.Path)
			h.flash(w, r, "error", "You must be logged in to access this page.", "/admin/login")
			return
		}
		next(w, r)
	}
}

// Dashboard checks the token with the API before anything else, then shows
// what needs attention.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	token := h.Sessions.Token(r)
	if err := h.API.Me(r.Context(), token); err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			h.Sessions.Expire(w, r)
			return
		}
		slog.Warn("Dashboard: token check failed", "error", err)
	}

	pending, unread := -1, -1
	if orders, err := h.API.ListOrders(r.Context(), token); err == nil {
		pending = len(listing.Orders(orders, "", "pending"))
	} else if errors.Is(err, api.ErrUnauthorized) {
		h.Sessions.Expire(w, r)
		return
	}
	if msgs, err := h.API.ListContacts(r.Context(), token); err == nil {
		unread = listing.Unread(msgs)
	} else if errors.Is(err, api.ErrUnauthorized) {
		h.Sessions.Expire(w, r)
		return
	}

	data := h.data(w, r)
	data["PendingOrders"] = pending
	data["UnreadMessages"] = unread
	h.Templates.Render(w, http.StatusOK, "admin.html", data)
}

// confirm renders the confirmation step for a destructive action. The same
// form is posted again to action with confirm=yes.
func (h *AdminHandler) confirm(w http.ResponseWriter, r *http.Request, prompt, action, back string, fields url.Values) {
	data := h.data(w, r)
	data["Prompt"] = prompt
	data["Action"] = action
	data["Back"] = back
	data["Fields"] = fields
	h.Templates.Render(w, http.StatusOK, "admin_confirm.html", data)
}

func isUnauthorized(err error) bool {
	return errors.Is(err, api.ErrUnauthorized)
}

func confirmed(r *http.Request) bool {
	return r.FormValue("confirm") == "yes"
}
