package routes

import (
	"net/http"

	"github.com/shashiranjanraj/karigar/app/controllers"
	"github.com/shashiranjanraj/karigar/pkg/identity"
	"github.com/shashiranjanraj/karigar/pkg/metrics"
	"github.com/shashiranjanraj/karigar/pkg/middleware"
	"github.com/shashiranjanraj/karigar/pkg/rbac"
	"github.com/shashiranjanraj/karigar/pkg/router"
)

// Deps carries everything route registration needs.
type Deps struct {
	Verifier identity.Verifier
	Roles    rbac.RoleLookup
	Users    *controllers.UserController
	Services *controllers.ServiceController
	Reviews  *controllers.ReviewController
	Orders   *controllers.OrderController
	Health   http.HandlerFunc
}

// RegisterAPI mounts the full route table. Guard order matters: the admin
// guard always runs after the auth guard, never alone.
func RegisterAPI(r *router.Router, d Deps) {
	auth := middleware.Auth(d.Verifier)
	admin := rbac.Admin(d.Roles)

	r.Get("/", "home", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("hello world")) //nolint:errcheck
	})
	r.Get("/healthz", "health", d.Health)
	r.Get("/metrics", "metrics", metrics.Handler())

	// public listings
	r.Get("/services", "services.index", d.Services.List)
	r.Get("/reviews", "reviews.index", d.Reviews.List)

	// user directory
	r.Post("/create-or-update-user", "users.sync", d.Users.CreateOrUpdate, auth)
	r.Post("/current-user", "users.current", d.Users.Current, auth)
	r.Put("/make-admin", "users.promote", d.Users.MakeAdmin, auth, admin)
	r.Post("/current-admin", "users.current_admin", d.Users.Current, auth, admin)

	// services
	r.Post("/services", "services.store", d.Services.Create, auth, admin)
	r.Get("/services/{id}", "services.show", d.Services.Get, auth)
	r.Delete("/services/{id}", "services.destroy", d.Services.Delete, auth, admin)

	// reviews
	r.Post("/reviews", "reviews.store", d.Reviews.Create, auth)

	// orders
	r.Get("/orders", "orders.index", d.Orders.List, auth)
	r.Post("/orders", "orders.store", d.Orders.Create, auth)
	r.Put("/orders/{id}", "orders.update", d.Orders.UpdateStatus, auth, admin)
}
