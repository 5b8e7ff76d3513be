package catalog

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jandiralceu/movies-catalog/internal/domain"
)

type fakeMovieStore struct {
	createCalled bool
	created      domain.Movie
	createResult bool

	exists       bool
	updateCalled bool
	updated      domain.Movie
	updateResult bool
	updateErr    error

	getAllCalled bool
	getAllOpts   domain.GetAllOptions
	getAllResult []domain.Movie
}

func (f *fakeMovieStore) Create(_ context.Context, movie domain.Movie) (bool, error) {
	f.createCalled = true
	f.created = movie
	return f.createResult, nil
}

func (f *fakeMovieStore) GetByID(_ context.Context, id uuid.UUID, _ *uuid.UUID) (domain.Movie, error) {
	return domain.Movie{ID: id}, nil
}

func (f *fakeMovieStore) GetBySlug(_ context.Context, slug string, _ *uuid.UUID) (domain.Movie, error) {
	return domain.Movie{Slug: slug}, nil
}

func (f *fakeMovieStore) GetAll(_ context.Context, opts domain.GetAllOptions) ([]domain.Movie, error) {
	f.getAllCalled = true
	f.getAllOpts = opts
	return f.getAllResult, nil
}

func (f *fakeMovieStore) GetCount(_ context.Context, _ *string, _ *int) (int, error) {
	return len(f.getAllResult), nil
}

func (f *fakeMovieStore) Update(_ context.Context, movie domain.Movie) (bool, error) {
	f.updateCalled = true
	f.updated = movie
	return f.updateResult, f.updateErr
}

func (f *fakeMovieStore) DeleteByID(_ context.Context, _ uuid.UUID) (bool, error) {
	return true, nil
}

func (f *fakeMovieStore) ExistsByID(_ context.Context, _ uuid.UUID) (bool, error) {
	return f.exists, nil
}

type fakeRatingStore struct {
	rateCalled bool
	ratedMovie uuid.UUID
	ratedUser  uuid.UUID
	rating     int

	aggregate    *float64
	userRating   *int
	forUserCalls int
	plainCalls   int
}

func (f *fakeRatingStore) Rate(_ context.Context, movieID uuid.UUID, rating int, userID uuid.UUID) (bool, error) {
	f.rateCalled = true
	f.ratedMovie = movieID
	f.ratedUser = userID
	f.rating = rating
	return true, nil
}

func (f *fakeRatingStore) GetRating(_ context.Context, _ uuid.UUID) (*float64, error) {
	f.plainCalls++
	return f.aggregate, nil
}

func (f *fakeRatingStore) GetRatingForUser(_ context.Context, _, _ uuid.UUID) (*float64, *int, error) {
	f.forUserCalls++
	return f.aggregate, f.userRating, nil
}

func (f *fakeRatingStore) DeleteRating(_ context.Context, _, _ uuid.UUID) (bool, error) {
	return true, nil
}

func newTestService(movies *fakeMovieStore, ratings *fakeRatingStore) *Service {
	return NewService(movies, ratings, log.New(io.Discard, "", 0))
}

func TestServiceCreate(t *testing.T) {
	movies := &fakeMovieStore{createResult: true}
	svc := newTestService(movies, &fakeRatingStore{})

	movie := domain.Movie{
		Title:         "The Shawshank Redemption",
		YearOfRelease: 1994,
		Genres:        []string{"drama"},
	}

	created, err := svc.Create(context.Background(), &movie)
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, movies.createCalled)
	assert.NotEqual(t, uuid.Nil, movie.ID)
	assert.Equal(t, "the-shawshank-redemption-1994", movie.Slug)
	assert.Equal(t, movie.Slug, movies.created.Slug)
}

func TestServiceCreateValidation(t *testing.T) {
	tests := []struct {
		name  string
		movie domain.Movie
	}{
		{"empty title", domain.Movie{YearOfRelease: 1994, Genres: []string{"drama"}}},
		{"zero year", domain.Movie{Title: "x", Genres: []string{"drama"}}},
		{"negative year", domain.Movie{Title: "x", YearOfRelease: -3, Genres: []string{"drama"}}},
		{"future year", domain.Movie{Title: "x", YearOfRelease: time.Now().Year() + 1, Genres: []string{"drama"}}},
		{"no genres", domain.Movie{Title: "x", YearOfRelease: 1994}},
		{"blank genre", domain.Movie{Title: "x", YearOfRelease: 1994, Genres: []string{"  "}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			movies := &fakeMovieStore{}
			svc := newTestService(movies, &fakeRatingStore{})

			movie := tt.movie
			_, err := svc.Create(context.Background(), &movie)
			require.ErrorIs(t, err, ErrValidation)
			assert.False(t, movies.createCalled, "store must never be reached on validation failure")
		})
	}
}

func TestServiceGetAll(t *testing.T) {
	movies := &fakeMovieStore{}
	svc := newTestService(movies, &fakeRatingStore{})

	_, err := svc.GetAll(context.Background(), domain.GetAllOptions{})
	require.NoError(t, err)
	assert.Equal(t, domain.SortByTitle, movies.getAllOpts.Sort)
	assert.Equal(t, domain.DefaultPage, movies.getAllOpts.Page)
	assert.Equal(t, domain.DefaultPageSize, movies.getAllOpts.PageSize)

	_, err = svc.GetAll(context.Background(), domain.GetAllOptions{Sort: domain.SortByYear, Page: 3, PageSize: 25})
	require.NoError(t, err)
	assert.Equal(t, domain.SortByYear, movies.getAllOpts.Sort)
	assert.Equal(t, 3, movies.getAllOpts.Page)
	assert.Equal(t, 25, movies.getAllOpts.PageSize)
}

func TestServiceGetAllRejectsUnknownSort(t *testing.T) {
	movies := &fakeMovieStore{}
	svc := newTestService(movies, &fakeRatingStore{})

	_, err := svc.GetAll(context.Background(), domain.GetAllOptions{Sort: "slug"})
	require.ErrorIs(t, err, ErrValidation)
	assert.False(t, movies.getAllCalled, "invalid sort must be rejected before query construction")
}

func TestServiceUpdate(t *testing.T) {
	movies := &fakeMovieStore{exists: true, updateResult: true}
	svc := newTestService(movies, &fakeRatingStore{})

	movie := domain.Movie{
		ID:            uuid.New(),
		Title:         "Heat",
		YearOfRelease: 1995,
		Genres:        []string{"crime"},
	}

	updated, err := svc.Update(context.Background(), &movie)
	require.NoError(t, err)
	assert.True(t, movies.updateCalled)
	assert.Equal(t, "heat-1995", updated.Slug)
}

func TestServiceUpdateNotFound(t *testing.T) {
	movies := &fakeMovieStore{exists: false}
	svc := newTestService(movies, &fakeRatingStore{})

	movie := domain.Movie{
		ID:            uuid.New(),
		Title:         "Ghost",
		YearOfRelease: 1990,
		Genres:        []string{"drama"},
	}

	_, err := svc.Update(context.Background(), &movie)
	require.ErrorIs(t, err, ErrNotFound)
	assert.False(t, movies.updateCalled, "update must not write when the movie does not exist")
}

func TestServiceUpdateSlugConflict(t *testing.T) {
	movies := &fakeMovieStore{exists: true, updateResult: false}
	svc := newTestService(movies, &fakeRatingStore{})

	movie := domain.Movie{
		ID:            uuid.New(),
		Title:         "Heat",
		YearOfRelease: 1995,
		Genres:        []string{"crime"},
	}

	_, err := svc.Update(context.Background(), &movie)
	require.ErrorIs(t, err, ErrAlreadyExists, "rolled-back update must not read as success")
	assert.True(t, movies.updateCalled)
}

func TestServiceLogsStoreFailures(t *testing.T) {
	var buf bytes.Buffer
	movies := &fakeMovieStore{exists: true, updateErr: errors.New("connection reset")}
	svc := NewService(movies, &fakeRatingStore{}, log.New(&buf, "", 0))

	movie := domain.Movie{
		ID:            uuid.New(),
		Title:         "Heat",
		YearOfRelease: 1995,
		Genres:        []string{"crime"},
	}

	_, err := svc.Update(context.Background(), &movie)
	require.Error(t, err)
	assert.Contains(t, buf.String(), "update movie")
	assert.Contains(t, buf.String(), "connection reset")
}

func TestServiceRateMovie(t *testing.T) {
	movies := &fakeMovieStore{exists: true}
	ratings := &fakeRatingStore{}
	svc := newTestService(movies, ratings)

	movieID := uuid.New()
	userID := uuid.New()

	ok, err := svc.RateMovie(context.Background(), movieID, 5, userID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, movieID, ratings.ratedMovie)
	assert.Equal(t, userID, ratings.ratedUser)
	assert.Equal(t, 5, ratings.rating)
}

func TestServiceRateMovieValidation(t *testing.T) {
	for _, rating := range []int{0, -1, 6, 100} {
		movies := &fakeMovieStore{exists: true}
		ratings := &fakeRatingStore{}
		svc := newTestService(movies, ratings)

		_, err := svc.RateMovie(context.Background(), uuid.New(), rating, uuid.New())
		require.ErrorIs(t, err, ErrValidation, "rating %d", rating)
		assert.False(t, ratings.rateCalled)
	}
}

func TestServiceRateMovieNotFound(t *testing.T) {
	movies := &fakeMovieStore{exists: false}
	ratings := &fakeRatingStore{}
	svc := newTestService(movies, ratings)

	_, err := svc.RateMovie(context.Background(), uuid.New(), 4, uuid.New())
	require.ErrorIs(t, err, ErrNotFound)
	assert.False(t, ratings.rateCalled)
}

func TestServiceGetRating(t *testing.T) {
	aggregate := 4.0
	userRating := 5
	ratings := &fakeRatingStore{aggregate: &aggregate, userRating: &userRating}
	svc := newTestService(&fakeMovieStore{}, ratings)

	got, gotUser, err := svc.GetRating(context.Background(), uuid.New(), nil)
	require.NoError(t, err)
	assert.Equal(t, &aggregate, got)
	assert.Nil(t, gotUser)
	assert.Equal(t, 1, ratings.plainCalls)
	assert.Equal(t, 0, ratings.forUserCalls)

	user := uuid.New()
	got, gotUser, err = svc.GetRating(context.Background(), uuid.New(), &user)
	require.NoError(t, err)
	assert.Equal(t, &aggregate, got)
	assert.Equal(t, &userRating, gotUser)
	assert.Equal(t, 1, ratings.forUserCalls)
}
