package router

import (
	"github.com/Totarae/URLShortenerFront/internal/handlers"
	"github.com/Totarae/URLShortenerFront/internal/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// NewRouter создаёт и настраивает маршрутизатор
func NewRouter(handler *handlers.Handler, logger *zap.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.LoggingMiddleware(logger)) // Подключаем логирование
	r.Use(middleware.GzipMiddleware)            // Gzip-сжатие

	r.Get("/", handler.Home)
	r.Get("/ping", handler.Ping)
	r.Post("/create", handler.CreateForm)
	r.Post("/upload", handler.UploadForm)

	r.Route("/api", func(r chi.Router) {
		r.Post("/create", handler.CreateJSON)
		r.Post("/upload", handler.UploadJSON)
	})

	return r
}
