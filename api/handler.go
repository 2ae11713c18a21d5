package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/htol/booksapi/config"
	"github.com/htol/booksapi/middleware"
	"github.com/htol/booksapi/service"
)

// NewHandler creates and returns the main HTTP handler (router) for the application
func NewHandler(svc *service.Service, env config.Env) http.Handler {
	er := errorRenderer{env: env}
	mux := http.NewServeMux()

	// Book routes
	mux.Handle("GET /api/books", withCORS(catchAsync(er, listBooksHandler(svc))))
	mux.Handle("POST /api/books", withCORS(catchAsync(er, createBookHandler(svc))))
	mux.Handle("GET /api/books/{id}", withCORS(catchAsync(er, getBookHandler(svc))))
	mux.Handle("PATCH /api/books/{id}", withCORS(catchAsync(er, updateBookHandler(svc))))
	mux.Handle("DELETE /api/books/{id}", withCORS(catchAsync(er, deleteBookHandler(svc))))
	mux.Handle("GET /api/latest-5-books", withCORS(catchAsync(er, latestBooksHandler(svc))))

	// Reports
	mux.Handle("GET /api/book-stats", withCORS(catchAsync(er, bookStatsHandler(svc))))
	mux.Handle("GET /api/monthly-stats/{year}", withCORS(catchAsync(er, monthlyPlanHandler(svc))))

	// CORS preflight for every API route
	mux.Handle("OPTIONS /api/", withCORS(http.NotFoundHandler()))

	mux.Handle("GET /{$}", welcomeHandler())
	mux.HandleFunc("GET /health", healthCheckHandler(svc))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.Handle("/", catchAsync(er, notFoundHandler()))

	// Apply middleware chain
	chain := middleware.Chain(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recovery(er.render),
		middleware.Metrics,
	)

	return chain(mux)
}
