package http

import (
	"context"
	"net/http"

	"github.com/harborlabs/contact-directory/internal/domain"
	"github.com/harborlabs/contact-directory/internal/ports"
)

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeMessage(w, http.StatusOK, "ok")
}

func (h *Handler) readyz(w http.ResponseWriter, _ *http.Request) {
	writeMessage(w, http.StatusOK, "ready")
}

func (h *Handler) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := bearerTokenFromHeader(r.Header.Get("Authorization"))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
			return
		}

		claims, err := h.service.Authorize(r.Context(), raw, domain.PolicyAuthenticated)
		if err != nil {
			status, code, msg := mapDomainError(err)
			writeError(w, status, code, msg)
			return
		}

		ctx := contextWithToken(r.Context(), raw, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requirePolicy gates a route on a named policy beyond plain authentication.
// It runs after authMiddleware, so claims are already in the request context.
func (h *Handler) requirePolicy(policyName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := tokenFromContext(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
				return
			}
			if _, err := h.service.Authorize(r.Context(), raw, policyName); err != nil {
				status, code, msg := mapDomainError(err)
				writeError(w, status, code, msg)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func contextWithToken(ctx context.Context, token string, claims ports.AuthClaims) context.Context {
	ctx = context.WithValue(ctx, ctxKeyTokenRaw, token)
	ctx = context.WithValue(ctx, ctxKeyClaims, claims)
	return ctx
}

func tokenFromContext(r *http.Request) (string, bool) {
	v := r.Context().Value(ctxKeyTokenRaw)
	token, ok := v.(string)
	return token, ok
}
