package handlers

import (
	"net/http"
)

// Router bundles what the route table needs.
type Router struct {
	Public      *PublicHandler
	Orders      *OrderHandler
	Admin       *AdminHandler
	RateLimiter *RateLimiter
	StaticDir   string
}

func (rt *Router) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	pub, ord, adm := rt.Public, rt.Orders, rt.Admin
	limit := rt.RateLimiter.Middleware
	auth := adm.AuthMiddleware

	// Static Files
	fileServer := http.FileServer(http.Dir(rt.StaticDir))
	mux.Handle("GET /static/", http.StripPrefix("/static", fileServer))

	// Public Routes
	mux.HandleFunc("GET /{$}", pub.Index)
	mux.HandleFunc("GET /about", pub.About)
	mux.HandleFunc("GET /contact", pub.ContactGet)
	mux.HandleFunc("POST /contact", limit(pub.ContactPost))
	mux.HandleFunc("GET /categories/hacks-mods", pub.HacksMods)
	mux.HandleFunc("GET /categories/utilities-mods", pub.UtilitiesMods)
	mux.HandleFunc("GET /categories/accounts", pub.Accounts)
	mux.HandleFunc("GET /categories/accounts/{slug}", pub.AccountDetail)
	mux.HandleFunc("GET /products/{slug}", ord.ProductPage)
	mux.HandleFunc("POST /products/{slug}/order", limit(ord.SubmitOrder))
	mux.HandleFunc("GET /sitemap.xml", pub.Sitemap)

	mux.HandleFunc("GET /admin/login", adm.LoginGet)
	mux.HandleFunc("POST /admin/login", limit(adm.LoginPost))
	mux.HandleFunc("POST /admin/logout", adm.Logout)

	// Protected Routes
	mux.HandleFunc("GET /admin", auth(adm.Dashboard))

	mux.HandleFunc("GET /admin/products", auth(adm.ListProducts))
	mux.HandleFunc("GET /admin/products/new", auth(adm.NewProduct))
	mux.HandleFunc("GET /admin/products/{slug}/edit", auth(adm.EditProduct))
	mux.HandleFunc("POST /admin/products/save", auth(adm.SaveProduct))
	mux.HandleFunc("POST /admin/products/{slug}/delete", auth(adm.DeleteProduct))
	mux.HandleFunc("POST /admin/products/bulk-delete", auth(adm.BulkDeleteProducts))

	mux.HandleFunc("GET /admin/accounts", auth(adm.ListAccounts))
	mux.HandleFunc("GET /admin/accounts/new", auth(adm.NewAccount))
	mux.HandleFunc("GET /admin/accounts/{slug}/edit", auth(adm.EditAccount))
	mux.HandleFunc("POST /admin/accounts/save", auth(adm.SaveAccount))
	mux.HandleFunc("POST /admin/accounts/{id}/delete", auth(adm.DeleteAccount))

	mux.HandleFunc("GET /admin/orders", auth(adm.ListOrders))
	mux.HandleFunc("POST /admin/orders/{id}/payment", auth(adm.UpdatePaymentStatus))
	mux.HandleFunc("POST /admin/orders/{id}/status", auth(adm.UpdateOrderStatus))
	mux.HandleFunc("POST /admin/orders/{id}/delete", auth(adm.DeleteOrder))

	mux.HandleFunc("GET /admin/contacts", auth(adm.ListContacts))
	mux.HandleFunc("POST /admin/contacts/{id}/read", auth(adm.MarkContactRead))
	mux.HandleFunc("POST /admin/contacts/{id}/delete", auth(adm.DeleteContact))
	mux.HandleFunc("POST /admin/contacts/bulk-delete", auth(adm.BulkDeleteContacts))

	mux.HandleFunc("/", pub.NotFound)
	return mux
}

// CSRFFailure replaces gorilla/csrf's bare 403 page. An upload over the body
// limit also ends up here, since the token can't be read from a cut-off form.
func (h *PublicHandler) CSRFFailure(w http.ResponseWriter, r *http.Request) {
	h.errorPage(w, r, http.StatusForbidden, "Your form expired or was too large. Go back, reload the page and try again.")
}
