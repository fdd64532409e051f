package main

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	getcurrency "smeta-backend/http-server/admin/get"
	upcurrency "smeta-backend/http-server/admin/update"
	"smeta-backend/http-server/calc"
	getestimate "smeta-backend/http-server/estimate/get"
	loadestimate "smeta-backend/http-server/estimate/load"
	saveestimate "smeta-backend/http-server/estimate/save"
	upestimate "smeta-backend/http-server/estimate/update"
	removeproduct "smeta-backend/http-server/products/remove"
	saveproduct "smeta-backend/http-server/products/save"
	"smeta-backend/http-server/products/search"
	gettemplate "smeta-backend/http-server/template/get"
	removetemplate "smeta-backend/http-server/template/remove"
	savetemplate "smeta-backend/http-server/template/save"
	"smeta-backend/internal/config"
	"smeta-backend/internal/middleware/auth"
	"smeta-backend/internal/service/templateload"
	"smeta-backend/internal/service/templates"
	"smeta-backend/internal/storage/mysql"
)

func routes(
	cfg config.Config,
	log *slog.Logger,
	storage *mysql.Storage,
	templateService *templates.Service,
	loadService *templateload.LoadService,
) *chi.Mux {
	router := chi.NewRouter()

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173"}
	}

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	router.Use(corsHandler.Handler)

	router.Use(middleware.RequestID)
	//ip пользователя
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	// Шаблоны
	router.Get("/api/templates", gettemplate.GetAllTemplates(log, templateService))
	router.Get("/api/templates/{id}", gettemplate.GetTemplate(log, templateService))

	// Сметы
	router.Post("/api/estimates", saveestimate.CreateEstimate(log, storage))
	router.Get("/api/estimates/{id}", getestimate.GetEstimate(log, storage))
	router.Post("/api/estimates/{id}/load-template", loadestimate.LoadTemplate(log, loadService))
	router.Patch("/api/estimates/{id}/items/{itemID}", upestimate.UpdateEstimateItem(log, storage))

	// Каталог
	router.Get("/api/products/search", search.SearchProducts(log, storage, cfg.SearchLimit))

	router.Post("/api/calc", calc.Calc(log))

	adminRouter := chi.NewRouter()
	adminRouter.Use(auth.BasicAuth(cfg.AdminLogin, cfg.AdminPass))

	adminRouter.Post("/templates", savetemplate.SaveTemplate(log, templateService))
	adminRouter.Delete("/templates/{id}", removetemplate.DeleteTemplate(log, templateService))
	adminRouter.Post("/products", saveproduct.CreateProduct(log, storage))
	adminRouter.Put("/products/{id}", saveproduct.UpdateProduct(log, storage))
	adminRouter.Delete("/products/{id}", removeproduct.DeleteProduct(log, storage))
	adminRouter.Get("/currency", getcurrency.GetCurrencyRates(log, storage))
	adminRouter.Put("/currency", upcurrency.UpdateCurrencyRates(log, storage))

	router.Mount("/api/admin", adminRouter)

	return router
}
