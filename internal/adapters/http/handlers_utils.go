package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/harborlabs/contact-directory/internal/domain"
)

func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("request body must contain a single JSON value")
	}
	return nil
}

func readIP(r *http.Request) string {
	if xff := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); xff != "" {
		parts := strings.Split(xff, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}
	host := strings.TrimSpace(r.RemoteAddr)
	if idx := strings.LastIndex(host, ":"); idx > 0 {
		return host[:idx]
	}
	return host
}

func pathUUID(r *http.Request, param string) (uuid.UUID, error) {
	raw := chi.URLParam(r, param)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, domain.ErrNotFound
	}
	return id, nil
}

func writeMappedError(ctx context.Context, w http.ResponseWriter, operation string, err error) {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		logHTTPOperationError(ctx, operation, http.StatusBadRequest, "VALIDATION_ERROR", ve.Error(), err)
		writeFieldErrors(w, http.StatusBadRequest, "VALIDATION_ERROR", "request validation failed", ve.Fields)
		return
	}
	status, code, msg := mapDomainError(err)
	logHTTPOperationError(ctx, operation, status, code, msg, err)
	writeError(w, status, code, msg)
}

func writeValidationError(ctx context.Context, w http.ResponseWriter, operation string, err error) {
	code := "VALIDATION_ERROR"
	msg := err.Error()
	logHTTPOperationError(ctx, operation, http.StatusBadRequest, code, msg, err)
	writeError(w, http.StatusBadRequest, code, msg)
}
