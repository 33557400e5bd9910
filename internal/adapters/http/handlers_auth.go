package http

import (
	"net/http"
	"strings"

	"github.com/harborlabs/contact-directory/internal/application"
)

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req application.RegisterRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "register", err)
		return
	}
	if req.IPAddress == "" {
		req.IPAddress = readIP(r)
	}

	res, err := h.service.Register(r.Context(), req, strings.TrimSpace(r.Header.Get("Idempotency-Key")))
	if err != nil {
		writeMappedError(r.Context(), w, "register", err)
		return
	}

	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req application.LoginRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "login", err)
		return
	}

	if req.IPAddress == "" {
		req.IPAddress = readIP(r)
	}
	if req.UserAgent == "" {
		req.UserAgent = r.UserAgent()
	}

	res, err := h.service.Login(r.Context(), req)
	if err != nil {
		writeMappedError(r.Context(), w, "login", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}
