package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/htol/booksapi/apperror"
	"github.com/htol/booksapi/book"
	"github.com/htol/booksapi/logger"
	"github.com/htol/booksapi/query"
	"github.com/htol/booksapi/service"
)

const welcomeMessage = "Welcome to the books API"

func listBooksHandler(svc *service.Service) apiFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		books, err := svc.ListBooks(r.Context(), query.FromValues(r.URL.Query()))
		if err != nil {
			return err
		}
		respondList(w, "books", books)
		return nil
	}
}

func latestBooksHandler(svc *service.Service) apiFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		books, err := svc.LatestBooks(r.Context(), query.FromValues(r.URL.Query()))
		if err != nil {
			return err
		}
		respondList(w, "books", books)
		return nil
	}
}

func getBookHandler(svc *service.Service) apiFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		b, err := svc.GetBook(r.Context(), r.PathValue("id"))
		if err != nil {
			return err
		}
		respond(w, http.StatusOK, "book", b)
		return nil
	}
}

func createBookHandler(svc *service.Service) apiFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		var in book.Book
		if err := decodeJSON(w, r, &in); err != nil {
			return err
		}
		created, err := svc.CreateBook(r.Context(), &in)
		if err != nil {
			return err
		}
		respond(w, http.StatusCreated, "book", created)
		return nil
	}
}

func updateBookHandler(svc *service.Service) apiFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		var u book.Update
		if err := decodeJSON(w, r, &u); err != nil {
			return err
		}
		updated, err := svc.UpdateBook(r.Context(), r.PathValue("id"), &u)
		if err != nil {
			return err
		}
		respond(w, http.StatusOK, "book", updated)
		return nil
	}
}

func deleteBookHandler(svc *service.Service) apiFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		if err := svc.DeleteBook(r.Context(), r.PathValue("id")); err != nil {
			return err
		}
		w.WriteHeader(http.StatusNoContent)
		return nil
	}
}

func bookStatsHandler(svc *service.Service) apiFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		stats, err := svc.BookStats(r.Context())
		if err != nil {
			return err
		}
		respond(w, http.StatusOK, "stats", stats)
		return nil
	}
}

func monthlyPlanHandler(svc *service.Service) apiFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		raw := r.PathValue("year")
		year, err := strconv.Atoi(raw)
		if err != nil {
			return &apperror.CastError{Path: "year", Value: raw, Err: err}
		}
		plan, err := svc.MonthlyPlan(r.Context(), year)
		if err != nil {
			return err
		}
		respond(w, http.StatusOK, "plan", plan)
		return nil
	}
}

func notFoundHandler() apiFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		return apperror.NotFound(fmt.Sprintf("Can't find %s on this server!", r.URL.Path))
	}
}

func welcomeHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprintln(w, welcomeMessage)
	})
}

func healthCheckHandler(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		// Check service health (database connection via service layer)
		if err := svc.Ping(ctx); err != nil {
			logger.Error("Health check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, errorEnvelope{
				Status:  "error",
				Message: "service unavailable",
			})
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
		})
	}
}
