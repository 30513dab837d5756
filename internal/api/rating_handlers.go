package api

import (
	"encoding/json/v2"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/alibiapp/alibi-server/internal/domain"
	"github.com/alibiapp/alibi-server/internal/http/response"
)

// RateRequest is the body for POST /api/excuses/{id}/rate.
type RateRequest struct {
	Rating int `json:"rating" validate:"required,gte=1,lte=5"`
}

// TrackShareRequest is the optional body for POST /api/excuses/{id}/share.
type TrackShareRequest struct {
	ShareMethod string `json:"shareMethod" validate:"max=50"`
}

// handleRateExcuse records a 1-5 star rating and returns the updated aggregate.
func (s *Server) handleRateExcuse(w http.ResponseWriter, r *http.Request) {
	excuseID := chi.URLParam(r, "id")

	var req RateRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}
	if err := s.validator.Validate(req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	summary, err := s.ratingService.SubmitRating(r.Context(), excuseID, req.Rating)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, summary, s.logger)
}

// handleGetRating returns the rating aggregate for an excuse.
func (s *Server) handleGetRating(w http.ResponseWriter, r *http.Request) {
	excuseID := chi.URLParam(r, "id")

	summary, err := s.ratingService.GetSummary(r.Context(), excuseID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, summary, s.logger)
}

// handleTopRated lists excuses by average rating descending.
func (s *Server) handleTopRated(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			response.BadRequest(w, "limit must be an integer", s.logger)
			return
		}
		limit = parsed
	}

	top, err := s.ratingService.TopRated(r.Context(), limit)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	if top == nil {
		top = []*domain.TopRatedExcuse{}
	}

	response.Success(w, top, s.logger)
}

// handleTrackShare counts one share action. The body is optional; an absent
// or empty body counts the share with an unknown method.
func (s *Server) handleTrackShare(w http.ResponseWriter, r *http.Request) {
	excuseID := chi.URLParam(r, "id")

	var req TrackShareRequest
	if body, err := io.ReadAll(r.Body); err == nil && len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			response.BadRequest(w, "Invalid request body", s.logger)
			return
		}
	}
	if err := s.validator.Validate(req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	if err := s.ratingService.RecordShare(r.Context(), excuseID, req.ShareMethod); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, map[string]bool{"tracked": true}, s.logger)
}
