package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"ledgerviz/pkg/graphstyle"

	"go.uber.org/zap"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type CategoryStyleResponse struct {
	Category graphstyle.Category `json:"category"`
	Color    string              `json:"color"`
	RGBA     bool                `json:"rgba"`           // false when Color is a theme reference
	Size     int                 `json:"size,omitempty"` // only node categories have a size
}

type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// handleStyle serves GET /api/v1/graph/style
func (s *Server) handleStyle(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, graphstyle.Style())
}

// handleCategoryStyle serves GET /api/v1/graph/style/{category}
func (s *Server) handleCategoryStyle(w http.ResponseWriter, r *http.Request) {
	category, err := graphstyle.ParseCategory(r.PathValue("category"))
	if err != nil {
		s.writeError(w, http.StatusNotFound, "unknown_category", err.Error())
		return
	}

	color, _ := graphstyle.Color(category)
	size, _ := graphstyle.Size(category)
	s.writeJSON(w, http.StatusOK, CategoryStyleResponse{
		Category: category,
		Color:    color,
		RGBA:     graphstyle.IsRGBA(color),
		Size:     size,
	})
}

// handleLatestAll serves GET /api/v1/prices/latest
func (s *Server) handleLatestAll(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.prices.LatestAll())
}

// handleLatest serves GET /api/v1/prices/latest/{base}/{quote}
func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	pair := pairFromPath(r)
	price, ok := s.prices.Latest(pair)
	if !ok {
		s.writeError(w, http.StatusNotFound, "not_found", "no price for "+pair)
		return
	}
	s.writeJSON(w, http.StatusOK, price)
}

// handleHistory serves GET /api/v1/prices/history/{base}/{quote}
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	pair := pairFromPath(r)
	history := s.prices.History(pair)
	if history == nil {
		s.writeError(w, http.StatusNotFound, "not_found", "no history for "+pair)
		return
	}
	s.writeJSON(w, http.StatusOK, history)
}

// handleHealth serves GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	resp := HealthResponse{Status: "ok"}
	status := http.StatusOK
	if len(s.checks) > 0 {
		resp.Checks = make(map[string]string, len(s.checks))
	}
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			resp.Checks[name] = err.Error()
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}
	s.writeJSON(w, status, resp)
}

// pairFromPath joins the {base}/{quote} path segments into a WebSocket pair name.
func pairFromPath(r *http.Request) string {
	return strings.ToUpper(r.PathValue("base")) + "/" + strings.ToUpper(r.PathValue("quote"))
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("failed to write response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, code, message string) {
	s.writeJSON(w, status, ErrorResponse{Error: code, Message: message})
}
