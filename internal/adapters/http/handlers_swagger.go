package http

import (
	_ "embed"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"
)

//go:embed docs/contact-directory.openapi.yaml
var openAPISpec []byte

// swaggerHandler serves the swagger UI pointed at the embedded document.
func swaggerHandler() http.HandlerFunc {
	return httpSwagger.Handler(
		httpSwagger.URL("/swagger/openapi.yaml"),
	)
}

func (h *Handler) swaggerSpec(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(openAPISpec)
}
