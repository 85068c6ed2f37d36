package handler

import (
	"net/http"

	"github.com/pkordes/reactivities/backend/api"
)

// GetOpenAPI handles GET /openapi.yaml.
func (s *Server) GetOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck // the status line is already written.
	w.Write(api.OpenAPI)
}
