// Package catalog orchestrates movie and rating persistence behind a
// single service: input validation, slug derivation, and existence
// checks happen here; everything else is delegated to the stores.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jandiralceu/movies-catalog/internal/domain"
	"github.com/jandiralceu/movies-catalog/internal/repository"
	"github.com/jandiralceu/movies-catalog/internal/slug"
)

// ErrValidation indicates caller-supplied data was rejected before any
// store access.
var ErrValidation = errors.New("catalog: validation failed")

// ErrNotFound mirrors the store's absence sentinel so callers only need
// one import to classify outcomes.
var ErrNotFound = repository.ErrNotFound

// ErrAlreadyExists indicates a write collided with another movie's
// identity, e.g. a title/year change whose derived slug is taken.
var ErrAlreadyExists = errors.New("catalog: movie already exists")

// MovieStore is the persistence contract the service needs for movies.
// *repository.MoviesRepository satisfies it.
type MovieStore interface {
	Create(ctx context.Context, movie domain.Movie) (bool, error)
	GetByID(ctx context.Context, id uuid.UUID, userID *uuid.UUID) (domain.Movie, error)
	GetBySlug(ctx context.Context, slug string, userID *uuid.UUID) (domain.Movie, error)
	GetAll(ctx context.Context, opts domain.GetAllOptions) ([]domain.Movie, error)
	GetCount(ctx context.Context, title *string, year *int) (int, error)
	Update(ctx context.Context, movie domain.Movie) (bool, error)
	DeleteByID(ctx context.Context, id uuid.UUID) (bool, error)
	ExistsByID(ctx context.Context, id uuid.UUID) (bool, error)
}

// RatingStore is the persistence contract the service needs for ratings.
// *repository.RatingsRepository satisfies it.
type RatingStore interface {
	Rate(ctx context.Context, movieID uuid.UUID, rating int, userID uuid.UUID) (bool, error)
	GetRating(ctx context.Context, movieID uuid.UUID) (*float64, error)
	GetRatingForUser(ctx context.Context, movieID, userID uuid.UUID) (*float64, *int, error)
	DeleteRating(ctx context.Context, movieID, userID uuid.UUID) (bool, error)
}

// Service is the only entry point other layers call into.
type Service struct {
	movies   MovieStore
	ratings  RatingStore
	validate *validator.Validate
	logger   *log.Logger
}

// NewService wires the catalog service with its backing stores.
func NewService(movies MovieStore, ratings RatingStore, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{
		movies:   movies,
		ratings:  ratings,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

// Create validates the movie, assigns an id when absent, derives the slug
// from title and year, and delegates to the store. False means the movie
// (by id or slug) already exists.
func (s *Service) Create(ctx context.Context, movie *domain.Movie) (bool, error) {
	if err := s.validateMovie(movie); err != nil {
		return false, err
	}
	if movie.ID == uuid.Nil {
		movie.ID = uuid.New()
	}
	movie.Slug = slug.Make(movie.Title, movie.YearOfRelease)
	created, err := s.movies.Create(ctx, *movie)
	if err != nil {
		s.logger.Printf("catalog: create movie %s: %v", movie.ID, err)
		return false, err
	}
	return created, nil
}

// GetByID returns the hydrated movie, enriched for the optional
// requesting user.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID, userID *uuid.UUID) (domain.Movie, error) {
	return s.movies.GetByID(ctx, id, userID)
}

// GetBySlug returns the hydrated movie looked up by its slug.
func (s *Service) GetBySlug(ctx context.Context, movieSlug string, userID *uuid.UUID) (domain.Movie, error) {
	return s.movies.GetBySlug(ctx, movieSlug, userID)
}

// GetAll lists movies for the given options after normalizing pagination
// and enforcing the sort allow-list; invalid sort fields never reach
// query construction.
func (s *Service) GetAll(ctx context.Context, opts domain.GetAllOptions) ([]domain.Movie, error) {
	switch opts.Sort {
	case "", domain.SortByTitle:
		opts.Sort = domain.SortByTitle
	case domain.SortByYear:
	default:
		return nil, fmt.Errorf("%w: unsupported sort field %q", ErrValidation, opts.Sort)
	}
	if opts.Page < 1 {
		opts.Page = domain.DefaultPage
	}
	if opts.PageSize < 1 || opts.PageSize > domain.MaxPageSize {
		opts.PageSize = domain.DefaultPageSize
	}
	return s.movies.GetAll(ctx, opts)
}

// GetCount reports the total number of movies matching the filters.
func (s *Service) GetCount(ctx context.Context, title *string, year *int) (int, error) {
	return s.movies.GetCount(ctx, title, year)
}

// Update validates the movie, checks existence first, and only then
// rewrites the record. ErrNotFound is returned without touching the store
// when the id is unknown; ErrAlreadyExists when the recomputed slug is
// taken by another movie and the store rolled the write back.
func (s *Service) Update(ctx context.Context, movie *domain.Movie) (domain.Movie, error) {
	if err := s.validateMovie(movie); err != nil {
		return domain.Movie{}, err
	}

	exists, err := s.movies.ExistsByID(ctx, movie.ID)
	if err != nil {
		return domain.Movie{}, err
	}
	if !exists {
		return domain.Movie{}, ErrNotFound
	}

	movie.Slug = slug.Make(movie.Title, movie.YearOfRelease)
	updated, err := s.movies.Update(ctx, *movie)
	if err != nil {
		s.logger.Printf("catalog: update movie %s: %v", movie.ID, err)
		return domain.Movie{}, err
	}
	if !updated {
		return domain.Movie{}, fmt.Errorf("%w: slug %q is taken", ErrAlreadyExists, movie.Slug)
	}
	return *movie, nil
}

// DeleteByID removes the movie with its genre and rating rows.
func (s *Service) DeleteByID(ctx context.Context, id uuid.UUID) (bool, error) {
	deleted, err := s.movies.DeleteByID(ctx, id)
	if err != nil {
		s.logger.Printf("catalog: delete movie %s: %v", id, err)
	}
	return deleted, err
}

// RateMovie upserts the user's rating after enforcing the 1-5 range and
// the movie's existence.
func (s *Service) RateMovie(ctx context.Context, movieID uuid.UUID, rating int, userID uuid.UUID) (bool, error) {
	if rating < domain.MinRating || rating > domain.MaxRating {
		return false, fmt.Errorf("%w: rating must be between %d and %d", ErrValidation, domain.MinRating, domain.MaxRating)
	}

	exists, err := s.movies.ExistsByID(ctx, movieID)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, ErrNotFound
	}

	ok, err := s.ratings.Rate(ctx, movieID, rating, userID)
	if err != nil {
		s.logger.Printf("catalog: rate movie %s: %v", movieID, err)
	}
	return ok, err
}

// GetRating returns the movie's aggregate rating and, when userID is set,
// that user's own rating. Both are nil when no matching data exists.
func (s *Service) GetRating(ctx context.Context, movieID uuid.UUID, userID *uuid.UUID) (*float64, *int, error) {
	if userID == nil {
		rating, err := s.ratings.GetRating(ctx, movieID)
		return rating, nil, err
	}
	return s.ratings.GetRatingForUser(ctx, movieID, *userID)
}

// DeleteRating removes the user's rating and reports whether one existed.
func (s *Service) DeleteRating(ctx context.Context, movieID, userID uuid.UUID) (bool, error) {
	return s.ratings.DeleteRating(ctx, movieID, userID)
}

func (s *Service) validateMovie(movie *domain.Movie) error {
	if err := s.validate.Struct(movie); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return fmt.Errorf("%w: field %s failed on %q", ErrValidation, fieldErrs[0].Field(), fieldErrs[0].Tag())
		}
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if movie.YearOfRelease > time.Now().Year() {
		return fmt.Errorf("%w: yearOfRelease cannot be in the future", ErrValidation)
	}
	for _, genre := range movie.Genres {
		if strings.TrimSpace(genre) == "" {
			return fmt.Errorf("%w: genre names cannot be blank", ErrValidation)
		}
	}
	return nil
}
