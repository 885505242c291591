package middleware

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/yourorg/tenantcrm/internal/domain"
)

// ValidateJSONContentType middleware ensures POST/PUT requests have JSON content type
func ValidateJSONContentType(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost && r.Method != http.MethodPut && r.Method != http.MethodPatch {
				next.ServeHTTP(w, r)
				return
			}

			if r.ContentLength == 0 {
				next.ServeHTTP(w, r)
				return
			}

			contentType := r.Header.Get("Content-Type")
			if !strings.Contains(contentType, "application/json") {
				log.Warn("invalid content type",
					slog.String("path", r.URL.Path),
					slog.String("content_type", contentType),
					slog.String("method", r.Method),
				)
				writeError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// DecodeStrict decodes a JSON request body into dst, rejecting unknown
// fields and trailing garbage. Handlers use it so every endpoint validates
// body shape the same way instead of trusting whatever was sent.
func DecodeStrict(body io.Reader, dst interface{}) error {
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrBadRequest, decodeErrMessage(err))
	}
	// A second decode succeeding means multiple JSON documents were sent
	if dec.More() {
		return fmt.Errorf("%w: unexpected trailing data", domain.ErrBadRequest)
	}
	return nil
}

// decodeErrMessage keeps decoder errors client-safe: json package messages
// describe the payload, not server internals.
func decodeErrMessage(err error) string {
	if err == io.EOF {
		return "request body required"
	}
	return err.Error()
}
