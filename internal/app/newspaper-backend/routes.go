// Package newspaperbackend предоставляет маршруты для основного приложения.
package newspaperbackend

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	articleapprove "github.com/magabrotheeeer/newspaper-backend/internal/http/handlers/article/approve"
	articleapproved "github.com/magabrotheeeer/newspaper-backend/internal/http/handlers/article/approved"
	articlecreate "github.com/magabrotheeeer/newspaper-backend/internal/http/handlers/article/create"
	articledecline "github.com/magabrotheeeer/newspaper-backend/internal/http/handlers/article/decline"
	articlefeature "github.com/magabrotheeeer/newspaper-backend/internal/http/handlers/article/feature"
	articlelist "github.com/magabrotheeeer/newspaper-backend/internal/http/handlers/article/list"
	articleread "github.com/magabrotheeeer/newspaper-backend/internal/http/handlers/article/read"
	articleremove "github.com/magabrotheeeer/newspaper-backend/internal/http/handlers/article/remove"
	articletrending "github.com/magabrotheeeer/newspaper-backend/internal/http/handlers/article/trending"
	articleupdate "github.com/magabrotheeeer/newspaper-backend/internal/http/handlers/article/update"
	articleview "github.com/magabrotheeeer/newspaper-backend/internal/http/handlers/article/view"
	"github.com/magabrotheeeer/newspaper-backend/internal/http/handlers/health"
	notificationlist "github.com/magabrotheeeer/newspaper-backend/internal/http/handlers/notification/list"
	"github.com/magabrotheeeer/newspaper-backend/internal/http/handlers/payment/paymentcreate"
	publishercreate "github.com/magabrotheeeer/newspaper-backend/internal/http/handlers/publisher/create"
	publisherlist "github.com/magabrotheeeer/newspaper-backend/internal/http/handlers/publisher/list"
	taglist "github.com/magabrotheeeer/newspaper-backend/internal/http/handlers/tag/list"
	"github.com/magabrotheeeer/newspaper-backend/internal/http/handlers/user/grantpremium"
	userlist "github.com/magabrotheeeer/newspaper-backend/internal/http/handlers/user/list"
	"github.com/magabrotheeeer/newspaper-backend/internal/http/handlers/user/login"
	"github.com/magabrotheeeer/newspaper-backend/internal/http/handlers/user/logout"
	"github.com/magabrotheeeer/newspaper-backend/internal/http/handlers/user/makeadmin"
	"github.com/magabrotheeeer/newspaper-backend/internal/http/handlers/user/register"
	"github.com/magabrotheeeer/newspaper-backend/internal/http/handlers/user/role"
	"github.com/magabrotheeeer/newspaper-backend/internal/http/handlers/user/stats"
	"github.com/magabrotheeeer/newspaper-backend/internal/http/middlewarectx"
	"github.com/magabrotheeeer/newspaper-backend/internal/paymentprovider"
	articleservice "github.com/magabrotheeeer/newspaper-backend/internal/services/article"
	entitlementservice "github.com/magabrotheeeer/newspaper-backend/internal/services/entitlement"
	notificationservice "github.com/magabrotheeeer/newspaper-backend/internal/services/notification"
	userservice "github.com/magabrotheeeer/newspaper-backend/internal/services/user"
	"github.com/magabrotheeeer/newspaper-backend/internal/storage/repository"
	"github.com/magabrotheeeer/newspaper-backend/internal/ws"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, hub *ws.Hub, db *repository.Storage,
	userService *userservice.Service, entitlementService *entitlementservice.Service,
	articleService *articleservice.Service, notificationService *notificationservice.Service,
	providerClient *paymentprovider.Client, paymentCurrency string) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(logger, userService).ServeHTTP)
		r.Post("/login", login.New(logger, userService).ServeHTTP)
		r.Post("/logout", logout.New(logger, userService).ServeHTTP)

		r.Get("/users", userlist.New(logger, userService).ServeHTTP)
		r.Get("/users/statistics", stats.New(logger, userService).ServeHTTP)
		r.Get("/users/{email}/role", role.New(logger, entitlementService).ServeHTTP)

		r.Get("/articles", articlelist.New(logger, articleService).ServeHTTP)
		r.Get("/articles/approved", articleapproved.New(logger, articleService).ServeHTTP)
		r.Get("/articles/trending", articletrending.New(logger, articleService).ServeHTTP)
		r.Get("/articles/{id}", articleread.New(logger, articleService).ServeHTTP)
		r.Patch("/articles/{id}/view", articleview.New(logger, articleService).ServeHTTP)

		r.Get("/tags", taglist.New(logger, articleService).ServeHTTP)
		r.Get("/publishers", publisherlist.New(logger, db).ServeHTTP)

		// Группа изменяющих маршрутов с ограничением частоты
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Patch("/users/premium", grantpremium.New(logger, entitlementService).ServeHTTP)
			r.Patch("/users/admin/{email}", makeadmin.New(logger, entitlementService).ServeHTTP)
			r.Post("/articles", articlecreate.New(logger, articleService).ServeHTTP)
			r.Put("/articles/{id}", articleupdate.New(logger, articleService).ServeHTTP)
			r.Delete("/articles/{id}", articleremove.New(logger, articleService).ServeHTTP)
			r.Post("/publishers", publishercreate.New(logger, db).ServeHTTP)
			r.Post("/create-payment-intent", paymentcreate.New(logger, providerClient, paymentCurrency).ServeHTTP)
		})

		// Модерация и журнал уведомлений
		r.Route("/admin", func(r chi.Router) {
			r.Patch("/articles/{id}/approve", articleapprove.New(logger, articleService).ServeHTTP)
			r.Patch("/articles/{id}/decline", articledecline.New(logger, articleService).ServeHTTP)
			r.Patch("/articles/{id}/feature", articlefeature.New(logger, articleService).ServeHTTP)
			r.Get("/notifications", notificationlist.New(logger, notificationService).ServeHTTP)
		})
	})

	r.Get("/healthz", health.New(logger).ServeHTTP)
	r.Get("/ws", hub.ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
