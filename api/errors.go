package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/htol/booksapi/apperror"
	"github.com/htol/booksapi/config"
	"github.com/htol/booksapi/logger"
	"github.com/htol/booksapi/middleware"
)

// msgGeneric replaces the message of unexpected errors in production
const msgGeneric = "Something went very wrong!"

// apiFunc is a handler that reports failure by returning an error
type apiFunc func(w http.ResponseWriter, r *http.Request) error

type errorEnvelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type devErrorEnvelope struct {
	Status  string       `json:"status"`
	Error   *errorDetail `json:"error"`
	Message string       `json:"message"`
	Stack   string       `json:"stack"`
}

type errorDetail struct {
	Kind          string `json:"kind"`
	Type          string `json:"type"`
	StatusCode    int    `json:"statusCode"`
	Status        string `json:"status"`
	IsOperational bool   `json:"isOperational"`
	Message       string `json:"message"`
	Cause         string `json:"cause"`
}

// errorRenderer writes the failure envelope for the configured environment
type errorRenderer struct {
	env config.Env
}

func (er errorRenderer) render(w http.ResponseWriter, r *http.Request, err error) {
	appErr := apperror.Normalize(err)

	fields := []any{
		"error", err,
		"kind", appErr.Kind.String(),
		"status", appErr.StatusCode,
		"method", r.Method,
		"path", r.URL.Path,
		"request_id", middleware.RequestIDFrom(r.Context()),
	}
	if appErr.Operational {
		logger.Warn("Request failed", fields...)
	} else {
		logger.Error("Unexpected error", fields...)
	}

	if er.env == config.Development {
		writeJSON(w, appErr.StatusCode, devErrorEnvelope{
			Status:  appErr.Status(),
			Error:   describe(err, appErr),
			Message: appErr.Message,
			Stack:   appErr.Stack(),
		})
		return
	}

	if appErr.Operational {
		writeJSON(w, appErr.StatusCode, errorEnvelope{
			Status:  appErr.Status(),
			Message: appErr.Message,
		})
		return
	}

	writeJSON(w, http.StatusInternalServerError, errorEnvelope{
		Status:  "error",
		Message: msgGeneric,
	})
}

func describe(err error, appErr *apperror.Error) *errorDetail {
	root := err
	for next := errors.Unwrap(root); next != nil; next = errors.Unwrap(root) {
		root = next
	}
	return &errorDetail{
		Kind:          appErr.Kind.String(),
		Type:          fmt.Sprintf("%T", root),
		StatusCode:    appErr.StatusCode,
		Status:        appErr.Status(),
		IsOperational: appErr.Operational,
		Message:       appErr.Message,
		Cause:         err.Error(),
	}
}

// startedWriter records whether a response has begun
type startedWriter struct {
	http.ResponseWriter
	started bool
}

func (sw *startedWriter) WriteHeader(code int) {
	sw.started = true
	sw.ResponseWriter.WriteHeader(code)
}

func (sw *startedWriter) Write(b []byte) (int, error) {
	sw.started = true
	return sw.ResponseWriter.Write(b)
}

func (sw *startedWriter) Unwrap() http.ResponseWriter {
	return sw.ResponseWriter
}

// catchAsync adapts fn to http.Handler. A returned error or a panic is
// rendered through er; fn must only write its response on success.
// A panic after the response has started is only logged.
func catchAsync(er errorRenderer, fn apiFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &startedWriter{ResponseWriter: w}
		defer func() {
			p := recover()
			if p == nil {
				return
			}
			if p == http.ErrAbortHandler {
				panic(p)
			}
			err := apperror.Wrap(fmt.Errorf("panic: %v", p))
			if sw.started {
				logger.Error("panic after response started",
					"error", err,
					"path", r.URL.Path,
					"request_id", middleware.RequestIDFrom(r.Context()),
				)
				return
			}
			er.render(sw, r, err)
		}()

		if err := fn(sw, r); err != nil {
			er.render(sw, r, err)
		}
	})
}
