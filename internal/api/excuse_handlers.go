package api

import (
	"encoding/json/v2"
	"net/http"
	"strconv"

	"github.com/alibiapp/alibi-server/internal/domain"
	"github.com/alibiapp/alibi-server/internal/http/response"
	"github.com/alibiapp/alibi-server/internal/search"
)

// GenerateRequest is the body for POST /api/excuses/generate.
type GenerateRequest struct {
	Situation string `json:"situation" validate:"required,max=200"`
	Tone      string `json:"tone" validate:"required,max=50"`
	Length    string `json:"length" validate:"required,max=50"`
	Seed      string `json:"seed" validate:"max=100"`
}

// AdjustRequest is the body for POST /api/excuses/adjust.
type AdjustRequest struct {
	ExcuseID  string `json:"excuseId" validate:"required"`
	Direction string `json:"direction" validate:"required,oneof=better worse"`
	Seed      string `json:"seed" validate:"max=100"`
}

// handleGenerate produces a fresh excuse via the LLM proxy (or the local
// catalog fallback) and persists it.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}
	if err := s.validator.Validate(req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	result, err := s.excuseService.Generate(r.Context(), req.Situation, req.Tone, req.Length, req.Seed)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, result, s.logger)
}

// handleAdjust refines a persisted excuse to be more or less believable.
func (s *Server) handleAdjust(w http.ResponseWriter, r *http.Request) {
	var req AdjustRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}
	if err := s.validator.Validate(req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	result, err := s.excuseService.Adjust(r.Context(), req.ExcuseID, req.Direction, req.Seed)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, result, s.logger)
}

// handleUltimate serves the Easter-egg generation path.
func (s *Server) handleUltimate(w http.ResponseWriter, r *http.Request) {
	result, err := s.excuseService.Generate(r.Context(), domain.UltimateSituation, "absurd", "long", "")
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, result, s.logger)
}

// handleLocalExcuse picks an excuse from the local catalog without persisting.
func (s *Server) handleLocalExcuse(w http.ResponseWriter, r *http.Request) {
	situation := r.URL.Query().Get("situation")
	if situation == "" {
		response.BadRequest(w, "situation query parameter is required", s.logger)
		return
	}

	record, err := s.excuseService.SelectLocal(
		situation,
		r.URL.Query().Get("tone"),
		r.URL.Query().Get("length"),
	)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, record, s.logger)
}

// handleCatalogStats reports the loaded catalog's shape.
func (s *Server) handleCatalogStats(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, s.excuseService.CatalogStats(), s.logger)
}

// handleSearch queries the full-text index over persisted excuses.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	params := search.DefaultSearchParams()
	params.Query = q.Get("q")
	params.Tone = q.Get("tone")
	params.Length = q.Get("length")
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			response.BadRequest(w, "limit must be an integer", s.logger)
			return
		}
		params.Limit = limit
	}

	result, err := s.excuseService.Search(r.Context(), params)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, result, s.logger)
}
