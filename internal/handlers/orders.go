package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/alextreichler/magicworld/internal/api"
	"github.com/alextreichler/magicworld/internal/cache"
	"github.com/alextreichler/magicworld/internal/checkout"
	"github.com/alextreichler/magicworld/internal/models"
	"github.com/gorilla/csrf"
)

// orderDoneDelay is how long the success message stays up before the page
// goes back to the product.
const orderDoneDelay = 1800 * time.Millisecond

type OrderHandler struct {
	Catalog   *cache.Catalog
	Checkout  *checkout.Service
	Templates *TemplateCache
	Public    *PublicHandler
	UPIID     string
}

func (h *OrderHandler) product(w http.ResponseWriter, r *http.Request) (*models.Product, bool) {
	p, err := h.Catalog.GetProduct(r.Context(), r.PathValue("slug"))
	if err != nil {
		if api.IsNotFound(err) {
			h.Public.NotFound(w, r)
			return nil, false
		}
		slog.Error("Could not load product", "slug", r.PathValue("slug"), "error", err)
		h.Public.errorPage(w, r, http.StatusBadGateway, "Could not load this product. Try again later.")
		return nil, false
	}
	return p, true
}

func (h *OrderHandler) render(w http.ResponseWriter, r *http.Request, status int, p *models.Product, sub *checkout.Submission) {
	data := h.Public.data(w, r)
	data["Product"] = p
	data["Order"] = sub
	data["UPIID"] = h.UPIID
	data["Plans"] = []string{models.PlanDay, models.PlanWeek}
	data["CsrfField"] = csrf.TemplateField(r)
	h.Templates.Render(w, status, "product.html", data)
}

// ProductPage shows a product. With ?plan= set on a paid product the order
// form is open for that plan.
func (h *OrderHandler) ProductPage(w http.ResponseWriter, r *http.Request) {
	p, ok := h.product(w, r)
	if !ok {
		return
	}
	var sub *checkout.Submission
	if plan := r.URL.Query().Get("plan"); plan != "" {
		var err error
		if sub, err = checkout.Open(*p, plan); err != nil {
			slog.Debug("Ignoring order request", "slug", p.Slug, "plan", plan, "error", err)
			sub = nil
		}
	}
	h.render(w, r, http.StatusOK, p, sub)
}

// SubmitOrder takes the order form with its screenshot and sends it on once.
func (h *OrderHandler) SubmitOrder(w http.ResponseWriter, r *http.Request) {
	p, ok := h.product(w, r)
	if !ok {
		return
	}

	parseErr := r.ParseMultipartForm(1 << 20)
	if errors.Is(parseErr, http.ErrNotMultipart) {
		parseErr = nil
	}

	sub, err := checkout.Open(*p, r.FormValue("plan"))
	if err != nil {
		h.render(w, r, http.StatusUnprocessableEntity, p, nil)
		return
	}
	if parseErr != nil {
		var tooBig *http.MaxBytesError
		if errors.As(parseErr, &tooBig) {
			sub.Message = checkout.MsgTooLarge
		} else {
			sub.Message = "Invalid form data."
		}
		h.render(w, r, http.StatusUnprocessableEntity, p, sub)
		return
	}

	in := checkout.Input{Email: r.FormValue("email"), Telegram: r.FormValue("telegram")}
	file, _, err := r.FormFile("screenshot")
	if err == nil {
		defer file.Close()
		in.File = file
	}

	if err := h.Checkout.Submit(r.Context(), sub, in); err != nil {
		status := http.StatusBadGateway
		if sub.State == checkout.Collecting {
			status = http.StatusUnprocessableEntity
		}
		h.render(w, r, status, p, sub)
		return
	}

	secs := strconv.FormatFloat(orderDoneDelay.Seconds(), 'f', -1, 64)
	w.Header().Set("Refresh", secs+"; url=/products/"+p.Slug)
	h.render(w, r, http.StatusOK, p, sub)
}
