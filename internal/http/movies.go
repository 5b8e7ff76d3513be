package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jandiralceu/movies-catalog/internal/catalog"
	"github.com/jandiralceu/movies-catalog/internal/domain"
)

const maxRequestBody = 1 << 20 // 1 MiB

type errorResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type movieRequest struct {
	Title         string   `json:"title"`
	YearOfRelease int      `json:"yearOfRelease"`
	Genres        []string `json:"genres"`
}

type movieResponse struct {
	ID            string   `json:"id"`
	Slug          string   `json:"slug"`
	Title         string   `json:"title"`
	YearOfRelease int      `json:"yearOfRelease"`
	Genres        []string `json:"genres"`
	Rating        *float64 `json:"rating"`
	UserRating    *int     `json:"userRating"`
}

type movieListResponse struct {
	Items    []movieResponse `json:"items"`
	Page     int             `json:"page"`
	PageSize int             `json:"pageSize"`
	Total    int             `json:"total"`
}

func (s *Server) handleCreateMovie(w http.ResponseWriter, r *http.Request) {
	if !s.verifyBearer(r.Header.Get("Authorization")) {
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
		return
	}

	var req movieRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}

	movie := domain.Movie{
		Title:         strings.TrimSpace(req.Title),
		YearOfRelease: req.YearOfRelease,
		Genres:        trimGenres(req.Genres),
	}

	created, err := s.catalog.Create(r.Context(), &movie)
	if err != nil {
		s.respondServiceError(w, err, "Failed to create movie")
		return
	}
	if !created {
		s.respondError(w, http.StatusConflict, "ALREADY_EXISTS", "A movie with the same identity already exists")
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/movies/%s", movie.ID))
	s.respondJSON(w, http.StatusCreated, toMovieResponse(movie))
}

func (s *Server) handleGetMovie(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromRequest(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	idOrSlug := chi.URLParam(r, "idOrSlug")

	var movie domain.Movie
	if id, parseErr := uuid.Parse(idOrSlug); parseErr == nil {
		movie, err = s.catalog.GetByID(r.Context(), id, userID)
	} else {
		movie, err = s.catalog.GetBySlug(r.Context(), idOrSlug, userID)
	}
	if err != nil {
		s.respondServiceError(w, err, "Failed to fetch movie")
		return
	}

	s.respondJSON(w, http.StatusOK, toMovieResponse(movie))
}

func (s *Server) handleListMovies(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromRequest(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	opts, err := buildGetAllOptions(r.URL.Query(), userID)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	movies, err := s.catalog.GetAll(r.Context(), opts)
	if err != nil {
		s.respondServiceError(w, err, "Failed to list movies")
		return
	}

	total, err := s.catalog.GetCount(r.Context(), opts.Title, opts.Year)
	if err != nil {
		s.respondServiceError(w, err, "Failed to list movies")
		return
	}

	items := make([]movieResponse, 0, len(movies))
	for _, movie := range movies {
		items = append(items, toMovieResponse(movie))
	}

	s.respondJSON(w, http.StatusOK, movieListResponse{
		Items:    items,
		Page:     opts.Page,
		PageSize: opts.PageSize,
		Total:    total,
	})
}

func (s *Server) handleUpdateMovie(w http.ResponseWriter, r *http.Request) {
	if !s.verifyBearer(r.Header.Get("Authorization")) {
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
		return
	}

	id, err := movieIDParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	var req movieRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}

	movie := domain.Movie{
		ID:            id,
		Title:         strings.TrimSpace(req.Title),
		YearOfRelease: req.YearOfRelease,
		Genres:        trimGenres(req.Genres),
	}

	updated, err := s.catalog.Update(r.Context(), &movie)
	if err != nil {
		s.respondServiceError(w, err, "Failed to update movie")
		return
	}

	s.respondJSON(w, http.StatusOK, toMovieResponse(updated))
}

func (s *Server) handleDeleteMovie(w http.ResponseWriter, r *http.Request) {
	if !s.verifyBearer(r.Header.Get("Authorization")) {
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
		return
	}

	id, err := movieIDParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	deleted, err := s.catalog.DeleteByID(r.Context(), id)
	if err != nil {
		s.respondServiceError(w, err, "Failed to delete movie")
		return
	}
	if !deleted {
		s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
		return
	}

	s.respondJSON(w, http.StatusNoContent, nil)
}

// buildGetAllOptions parses the listing query parameters. Sort validation
// happens again in the catalog service; parsing here just rejects obvious
// garbage early.
func buildGetAllOptions(query url.Values, userID *uuid.UUID) (domain.GetAllOptions, error) {
	opts := domain.GetAllOptions{UserID: userID}

	if title := strings.TrimSpace(query.Get("title")); title != "" {
		opts.Title = &title
	}
	if raw := strings.TrimSpace(query.Get("year")); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			return opts, fmt.Errorf("invalid year value")
		}
		opts.Year = &year
	}
	if raw := strings.TrimSpace(query.Get("sortBy")); raw != "" {
		field, direction, err := domain.ParseSort(raw)
		if err != nil {
			return opts, err
		}
		opts.Sort = field
		opts.Direction = direction
	}
	if raw := strings.TrimSpace(query.Get("page")); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return opts, fmt.Errorf("invalid page value")
		}
		opts.Page = page
	}
	if raw := strings.TrimSpace(query.Get("pageSize")); raw != "" {
		pageSize, err := strconv.Atoi(raw)
		if err != nil || pageSize < 1 {
			return opts, fmt.Errorf("invalid pageSize value")
		}
		opts.PageSize = pageSize
	}

	return opts, nil
}

func toMovieResponse(movie domain.Movie) movieResponse {
	return movieResponse{
		ID:            movie.ID.String(),
		Slug:          movie.Slug,
		Title:         movie.Title,
		YearOfRelease: movie.YearOfRelease,
		Genres:        movie.Genres,
		Rating:        movie.Rating,
		UserRating:    movie.UserRating,
	}
}

func trimGenres(genres []string) []string {
	out := make([]string, 0, len(genres))
	for _, genre := range genres {
		out = append(out, strings.TrimSpace(genre))
	}
	return out
}

// movieIDParam requires the route's idOrSlug segment to be a movie id.
func movieIDParam(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "idOrSlug")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid movie id")
	}
	return id, nil
}

// userIDFromRequest extracts the optional requesting-user identity. The
// upstream auth layer is expected to set the header after verifying the
// caller.
func userIDFromRequest(r *http.Request) (*uuid.UUID, error) {
	raw := strings.TrimSpace(r.Header.Get("X-User-Id"))
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid X-User-Id header")
	}
	return &id, nil
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	return nil
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			s.logger.Printf("failed to encode response: %v", err)
		}
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, code, message string) {
	s.respondJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// respondServiceError maps catalog outcomes onto HTTP statuses: validation
// failures and absences are fully handled; anything else is a store error
// surfaced as 500.
func (s *Server) respondServiceError(w http.ResponseWriter, err error, logMessage string) {
	switch {
	case errors.Is(err, catalog.ErrValidation):
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, catalog.ErrAlreadyExists):
		s.respondError(w, http.StatusConflict, "ALREADY_EXISTS", "A movie with the same identity already exists")
	case errors.Is(err, catalog.ErrNotFound):
		s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
	default:
		s.logger.Printf("%s: %v", logMessage, err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", logMessage)
	}
}

func (s *Server) respondDecodeError(w http.ResponseWriter, err error) {
	var syntaxError *json.SyntaxError
	var typeError *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxError):
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Malformed JSON payload")
	case errors.As(err, &typeError):
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", fmt.Sprintf("Invalid value for field %s", typeError.Field))
	case errors.Is(err, io.EOF):
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Request body cannot be empty")
	default:
		s.respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Unable to parse request body")
	}
}

func (s *Server) verifyBearer(header string) bool {
	if header == "" {
		return false
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	return token == s.cfg.AuthToken
}
