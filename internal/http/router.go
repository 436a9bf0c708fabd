package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pribylovaa/storefront/internal/http/handlers"
	"github.com/pribylovaa/storefront/internal/http/middleware"
)

// Options — параметры сборки HTTP-роутера.
type Options struct {
	Logger    *slog.Logger
	LoginPath string // куда route guard отправляет анонимного пользователя.
}

// NewRouter собирает http.Handler с chi, мидлварами и маршрутами фронта.
func NewRouter(sess handlers.Session, shop handlers.Shop, opts Options) http.Handler {
	if opts.LoginPath == "" {
		opts.LoginPath = "/auth/login"
	}

	root := chi.NewRouter()

	// Middleware (внешний -> внутренний). Отдельного дедлайна на запрос фронта нет:
	// таймаут навешивается на каждую попытку запроса к бэкенду (interceptors.WithTimeout).
	root.Use(
		middleware.Recover(),            // безопасно ловим паники
		middleware.RequestID(),          // X-Request-Id до логирования, он же уходит в бэкенд
		middleware.Logging(opts.Logger), // request-scoped логгер в контексте
	)

	h := handlers.New(sess, shop, opts.LoginPath)

	registerRoutes(root, h, middleware.RequireSession(sess.IsAuthenticated, opts.LoginPath))

	return root
}

// registerRoutes — единая точка регистрации маршрутов.
func registerRoutes(r chi.Router, h *handlers.Handlers, guard middleware.Middleware) {
	// анонимные
	r.Post("/auth/login", h.Login)
	r.Post("/auth/signup", h.Signup)
	r.Post("/auth/logout", h.Logout)
	r.Get("/auth/login", h.SessionInfo)
	r.Get("/auth/session", h.SessionInfo)

	// защищённые
	r.Group(func(r chi.Router) {
		r.Use(guard)

		r.Get("/categories", h.Categories)
		r.Get("/products", h.Products)

		r.Get("/cart", h.Cart)
		r.Post("/cart/items", h.AddToCart)
		r.Delete("/cart/items/{id}", h.RemoveFromCart)

		r.Post("/orders", h.PlaceOrder)
		r.Get("/orders", h.Orders)
		r.Get("/profile", h.Profile)

		r.Get("/admin/products", h.AdminListProducts)
		r.Post("/admin/products", h.AdminCreateProduct)
		r.Get("/admin/products/{id}", h.AdminGetProduct)
		r.Put("/admin/products/{id}", h.AdminUpdateProduct)
		r.Delete("/admin/products/{id}", h.AdminDeleteProduct)
	})
}
