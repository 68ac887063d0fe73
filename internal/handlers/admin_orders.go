package handlers

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/alextreichler/magicworld/internal/api"
	"github.com/alextreichler/magicworld/internal/listing"
	"github.com/alextreichler/magicworld/internal/models"
)

func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	status := listing.Normalize(r.URL.Query().Get("status"), listing.OrderFilters)

	orders, err := h.API.ListOrders(r.Context(), h.Sessions.Token(r))
	if err != nil && isUnauthorized(err) {
		h.Sessions.Expire(w, r)
		return
	}

	data := h.data(w, r)
	if err != nil {
		slog.Error("Admin: could not load orders", "error", err)
		data["Error"] = api.Message(err, "Failed to load orders")
	}
	data["Orders"] = listing.Orders(orders, query, status)
	data["Total"] = len(orders)
	data["Query"] = query
	data["Filter"] = status
	data["Filters"] = listing.OrderFilters
	data["PaymentStatuses"] = models.PaymentStatuses
	data["OrderStatuses"] = models.OrderStatuses
	h.Templates.Render(w, http.StatusOK, "admin_orders.html", data)
}

// backToOrders keeps the admin's search and filter across a mutation.
func backToOrders(r *http.Request) string {
	if q := r.FormValue("back"); q != "" && q[0] == '?' {
		return "/admin/orders" + q
	}
	return "/admin/orders"
}

func (h *AdminHandler) UpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	status := r.FormValue("status")
	back := backToOrders(r)
	if !listing.ValidPaymentStatus(status) {
		h.flash(w, r, "error", "Invalid update type", back)
		return
	}
	id := r.PathValue("id")
	if err := h.API.SetPaymentStatus(r.Context(), h.Sessions.Token(r), id, status); err != nil {
		h.apiFailed(w, r, err, "Failed to update order", back)
		return
	}
	slog.Info("Order payment status updated", "id", id, "status", status)
	h.flash(w, r, "success", "Order updated successfully!", back)
}

func (h *AdminHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	status := r.FormValue("orderStatus")
	back := backToOrders(r)
	if !listing.ValidOrderStatus(status) {
		h.flash(w, r, "error", "Invalid update type", back)
		return
	}
	id := r.PathValue("id")
	if err := h.API.SetOrderStatus(r.Context(), h.Sessions.Token(r), id, status); err != nil {
		h.apiFailed(w, r, err, "Failed to update order", back)
		return
	}
	slog.Info("Order status updated", "id", id, "status", status)
	h.flash(w, r, "success", "Order updated successfully!", back)
}

func (h *AdminHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	back := backToOrders(r)
	if !confirmed(r) {
		h.confirm(w, r, "Are you sure you want to delete this order? This action cannot be undone.", r.URL.Path, back, url.Values{"back": {r.FormValue("back")}})
		return
	}
	id := r.PathValue("id")
	if err := h.API.DeleteOrder(r.Context(), h.Sessions.Token(r), id); err != nil {
		h.apiFailed(w, r, err, "Failed to delete order", back)
		return
	}
	slog.Info("Order deleted", "id", id)
	h.flash(w, r, "success", "Order deleted successfully!", back)
}
