package httpserver

import (
	"net/http"
)

type ratingRequest struct {
	Rating int `json:"rating"`
}

type ratingResponse struct {
	MovieID    string   `json:"movieId"`
	Rating     *float64 `json:"rating"`
	UserRating *int     `json:"userRating,omitempty"`
}

func (s *Server) handleRateMovie(w http.ResponseWriter, r *http.Request) {
	if !s.verifyBearer(r.Header.Get("Authorization")) {
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
		return
	}

	userID, err := userIDFromRequest(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	if userID == nil {
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
		return
	}

	movieID, err := movieIDParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	var req ratingRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}

	if _, err := s.catalog.RateMovie(r.Context(), movieID, req.Rating, *userID); err != nil {
		s.respondServiceError(w, err, "Failed to process rating")
		return
	}

	rating := req.Rating
	s.respondJSON(w, http.StatusOK, ratingResponse{
		MovieID:    movieID.String(),
		UserRating: &rating,
	})
}

func (s *Server) handleGetRating(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromRequest(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	movieID, err := movieIDParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	rating, userRating, err := s.catalog.GetRating(r.Context(), movieID, userID)
	if err != nil {
		s.respondServiceError(w, err, "Failed to fetch rating")
		return
	}

	s.respondJSON(w, http.StatusOK, ratingResponse{
		MovieID:    movieID.String(),
		Rating:     rating,
		UserRating: userRating,
	})
}

func (s *Server) handleDeleteRating(w http.ResponseWriter, r *http.Request) {
	if !s.verifyBearer(r.Header.Get("Authorization")) {
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
		return
	}

	userID, err := userIDFromRequest(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	if userID == nil {
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
		return
	}

	movieID, err := movieIDParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	deleted, err := s.catalog.DeleteRating(r.Context(), movieID, *userID)
	if err != nil {
		s.respondServiceError(w, err, "Failed to delete rating")
		return
	}
	if !deleted {
		s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
		return
	}

	s.respondJSON(w, http.StatusNoContent, nil)
}
