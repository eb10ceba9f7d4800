package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(apiHandler *APIHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)       // Basic request logging
	r.Use(middleware.Recoverer)    // Recover from panics
	r.Use(middleware.StripSlashes) // Ensure consistent path handling

	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Post("/signup", apiHandler.SignupHandler)
		r.Post("/login", apiHandler.LoginHandler)
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Get("/categories", apiHandler.ListCategoriesHandler)
		r.Get("/categories/{id}", apiHandler.GetCategoryHandler)
		r.Get("/news", apiHandler.ListNewsHandler)
		r.Get("/news/{id}", apiHandler.GetNewsHandler)
		r.Get("/tips", apiHandler.ListTipsHandler)
		r.Get("/tips/{id}", apiHandler.GetTipHandler)

		// User-authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(apiHandler.JWTAuthMiddleware)

			r.Get("/me", apiHandler.MeHandler)
			r.Post("/ask", apiHandler.AskHandler)
			r.Get("/chat-logs", apiHandler.ListChatLogsHandler)
			r.Get("/search-history", apiHandler.ListSearchHistoryHandler)

			r.Get("/favorites", apiHandler.ListFavoritesHandler)
			r.Get("/favorites/{newsID}", apiHandler.CheckFavoriteHandler)
			r.Put("/favorites/{newsID}", apiHandler.AddFavoriteHandler)
			r.Delete("/favorites/{newsID}", apiHandler.RemoveFavoriteHandler)

			// Content management
			r.Group(func(r chi.Router) {
				r.Use(apiHandler.RequireAdmin)

				r.Post("/categories", apiHandler.CreateCategoryHandler)
				r.Delete("/categories/{id}", apiHandler.DeleteCategoryHandler)
				r.Post("/news", apiHandler.CreateNewsHandler)
				r.Patch("/news/{id}", apiHandler.UpdateNewsHandler)
				r.Delete("/news/{id}", apiHandler.DeleteNewsHandler)
				r.Post("/tips", apiHandler.CreateTipHandler)
				r.Patch("/tips/{id}", apiHandler.UpdateTipHandler)
				r.Delete("/tips/{id}", apiHandler.DeleteTipHandler)

				r.Post("/admin/reload-cache", apiHandler.ReloadCacheHandler)
			})
		})
	})

	return r
}
