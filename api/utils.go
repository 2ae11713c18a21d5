package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	jsoniter "github.com/json-iterator/go"
	pkgerrors "github.com/pkg/errors"
	"golang.org/x/net/html/charset"

	"github.com/htol/booksapi/apperror"
	"github.com/htol/booksapi/logger"
)

// maxBodyBytes limits the size of JSON request bodies
const maxBodyBytes = 1 << 20

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

type successEnvelope struct {
	Status  string `json:"status"`
	Results *int   `json:"results,omitempty"`
	Data    any    `json:"data"`
}

// respond writes a success envelope with data under a single name
func respond(w http.ResponseWriter, statusCode int, name string, data any) {
	writeJSON(w, statusCode, successEnvelope{
		Status: "success",
		Data:   map[string]any{name: data},
	})
}

// respondList writes a success envelope with the result count
func respondList[T any](w http.ResponseWriter, name string, items []T) {
	n := len(items)
	writeJSON(w, http.StatusOK, successEnvelope{
		Status:  "success",
		Results: &n,
		Data:    map[string]any{name: items},
	})
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := jsonAPI.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

// decodeJSON reads a JSON object from the request body into v. An empty
// body leaves v untouched. A field of the wrong JSON type is reported as
// a cast failure on that field.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body, err := charset.NewReader(http.MaxBytesReader(w, r.Body, maxBodyBytes), bodyContentType(r.Header.Get("Content-Type")))
	if err != nil {
		return bodyError(err)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return bodyError(err)
	}

	data = bytes.TrimPrefix(data, utf8BOM)
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, v); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return pkgerrors.WithStack(&apperror.CastError{
				Path:  typeErr.Field,
				Value: rawField(data, typeErr.Field),
				Err:   err,
			})
		}
		return apperror.New(fmt.Sprintf("Invalid JSON body: %v.", err), http.StatusBadRequest)
	}
	return nil
}

// bodyContentType keeps an explicit charset label and otherwise names
// UTF-8, so the body is only transcoded when its label or byte order
// mark asks for it.
func bodyContentType(contentType string) string {
	if _, params, err := mime.ParseMediaType(contentType); err == nil && params["charset"] != "" {
		return contentType
	}
	return "application/json; charset=utf-8"
}

func bodyError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apperror.New("Request body too large.", http.StatusRequestEntityTooLarge)
	}
	return apperror.New("Unable to read request body.", http.StatusBadRequest)
}

// rawField returns the top-level field of a JSON object as text
func rawField(data []byte, field string) string {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return ""
	}
	raw, ok := fields[field]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
		w.Header().Set("Access-Control-Expose-Headers", "X-Request-ID")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		h.ServeHTTP(w, r)
	})
}
