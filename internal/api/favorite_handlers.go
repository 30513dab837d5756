package api

import (
	"encoding/json/v2"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/alibiapp/alibi-server/internal/domain"
	"github.com/alibiapp/alibi-server/internal/http/response"
)

// AddFavoriteRequest is the body for POST /api/favorites.
type AddFavoriteRequest struct {
	ExcuseID string `json:"excuseId" validate:"required"`
	DeviceID string `json:"deviceId" validate:"required,max=100"`
}

// handleAddFavorite saves an excuse to a device's favorites.
func (s *Server) handleAddFavorite(w http.ResponseWriter, r *http.Request) {
	var req AddFavoriteRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}
	if err := s.validator.Validate(req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	favorite, err := s.favoriteService.Add(r.Context(), req.ExcuseID, req.DeviceID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, favorite, s.logger)
}

// handleListFavorites returns a device's favorites, newest first.
func (s *Server) handleListFavorites(w http.ResponseWriter, r *http.Request) {
	deviceID := r.URL.Query().Get("deviceId")
	if deviceID == "" {
		response.BadRequest(w, "deviceId query parameter is required", s.logger)
		return
	}

	favorites, err := s.favoriteService.List(r.Context(), deviceID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	if favorites == nil {
		favorites = []*domain.FavoriteWithExcuse{}
	}

	response.Success(w, favorites, s.logger)
}

// handleRemoveFavorite deletes one favorite, scoped to the owning device.
func (s *Server) handleRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	favoriteID := chi.URLParam(r, "id")

	deviceID := r.URL.Query().Get("deviceId")
	if deviceID == "" {
		response.BadRequest(w, "deviceId query parameter is required", s.logger)
		return
	}

	if err := s.favoriteService.Remove(r.Context(), favoriteID, deviceID); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}

// handleClearFavorites removes all of a device's favorites.
func (s *Server) handleClearFavorites(w http.ResponseWriter, r *http.Request) {
	deviceID := r.URL.Query().Get("deviceId")
	if deviceID == "" {
		response.BadRequest(w, "deviceId query parameter is required", s.logger)
		return
	}

	cleared, err := s.favoriteService.ClearAll(r.Context(), deviceID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, map[string]int{"cleared": cleared}, s.logger)
}
