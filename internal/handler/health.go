package handler

import "context"

// GetHealth handles GET /healthz.
// It returns HTTP 200 with {"status":"ok"} when the server is running.
func (s *Server) GetHealth(_ context.Context, _ request) (responseObject, error) {
	return ok200(HealthResponse{Status: "ok"}), nil
}
