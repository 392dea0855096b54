package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ppum-cafe/foodcourt/internal/auth"
	"github.com/ppum-cafe/foodcourt/internal/handler"
	"github.com/ppum-cafe/foodcourt/internal/user"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth         *handler.AuthHandler
	User         *handler.UserHandler
	Stall        *handler.StallHandler
	Cart         *handler.CartHandler
	Order        *handler.OrderHandler
	StallOwner   *handler.StallOwnerHandler
	Admin        *handler.AdminHandler
	Notification *handler.NotificationHandler
	TokenManager *auth.TokenManager
}

func NewRouter(h Handlers) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	r.Route("/api", func(r chi.Router) {
		// Public: account creation and menu browsing.
		h.Auth.RegisterRoutes(r)
		h.Stall.RegisterRoutes(r)

		// Any authenticated user.
		r.Group(func(r chi.Router) {
			r.Use(h.TokenManager.Authentication)
			h.User.RegisterRoutes(r)
			h.Cart.RegisterRoutes(r)
			h.Order.RegisterRoutes(r)
			h.Notification.RegisterRoutes(r)
		})

		// Kitchen side.
		r.Group(func(r chi.Router) {
			r.Use(h.TokenManager.Authentication)
			r.Use(auth.RequireRole(user.RoleStallOwner))
			h.StallOwner.RegisterRoutes(r)
		})

		// Food-court management.
		r.Group(func(r chi.Router) {
			r.Use(h.TokenManager.Authentication)
			r.Use(auth.RequireRole(user.RoleAdmin))
			h.Admin.RegisterRoutes(r)
			h.Order.RegisterAdminRoutes(r)
		})
	})

	return r
}
