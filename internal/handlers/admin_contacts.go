package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/alextreichler/magicworld/internal/api"
	"github.com/alextreichler/magicworld/internal/listing"
)

func (h *AdminHandler) ListContacts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	filter := listing.Normalize(r.URL.Query().Get("filter"), listing.ContactFilters)

	msgs, err := h.API.ListContacts(r.Context(), h.Sessions.Token(r))
	if err != nil && isUnauthorized(err) {
		h.Sessions.Expire(w, r)
		return
	}

	data := h.data(w, r)
	if err != nil {
		slog.Error("Admin: could not load messages", "error", err)
		data["Error"] = api.Message(err, "Failed to load messages")
	}
	data["Messages"] = listing.Contacts(msgs, query, filter)
	data["Total"] = len(msgs)
	data["Unread"] = listing.Unread(msgs)
	data["Query"] = query
	data["Filter"] = filter
	data["Filters"] = listing.ContactFilters
	h.Templates.Render(w, http.StatusOK, "admin_contacts.html", data)
}

func (h *AdminHandler) MarkContactRead(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.API.MarkContactRead(r.Context(), h.Sessions.Token(r), id); err != nil {
		h.apiFailed(w, r, err, "Failed to update message", "/admin/contacts")
		return
	}
	h.flash(w, r, "success", "Message marked as read.", "/admin/contacts")
}

func (h *AdminHandler) DeleteContact(w http.ResponseWriter, r *http.Request) {
	if !confirmed(r) {
		h.confirm(w, r, "Delete this message?", r.URL.Path, "/admin/contacts", nil)
		return
	}
	id := r.PathValue("id")
	if err := h.API.DeleteContact(r.Context(), h.Sessions.Token(r), id); err != nil {
		h.apiFailed(w, r, err, "Failed to delete message", "/admin/contacts")
		return
	}
	slog.Info("Contact message deleted", "id", id)
	h.flash(w, r, "success", "Message deleted.", "/admin/contacts")
}

// BulkDeleteContacts deletes the selected messages one call at a time. It
// stops at the first rejected token; other failures are counted.
func (h *AdminHandler) BulkDeleteContacts(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data.", http.StatusBadRequest)
		return
	}
	ids := r.PostForm["id"]
	if len(ids) == 0 {
		h.flash(w, r, "error", "Select at least one message.", "/admin/contacts")
		return
	}
	if !confirmed(r) {
		h.confirm(w, r, fmt.Sprintf("Delete %d selected messages?", len(ids)), r.URL.Path, "/admin/contacts", url.Values{"id": ids})
		return
	}

	token := h.Sessions.Token(r)
	failed := 0
	for _, id := range ids {
		if err := h.API.DeleteContact(r.Context(), token, id); err != nil {
			if isUnauthorized(err) {
				h.Sessions.Expire(w, r)
				return
			}
			slog.Error("Bulk delete: message not deleted", "id", id, "error", err)
			failed++
		}
	}
	if failed > 0 {
		h.flash(w, r, "error", fmt.Sprintf("%d of %d messages could not be deleted.", failed, len(ids)), "/admin/contacts")
		return
	}
	h.flash(w, r, "success", fmt.Sprintf("%d messages deleted.", len(ids)), "/admin/contacts")
}
