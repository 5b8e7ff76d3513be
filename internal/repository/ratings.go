package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RatingsRepository provides helpers for per-user movie ratings and their
// aggregates.
type RatingsRepository struct {
	pool *pgxpool.Pool
}

// Rate upserts the user's rating for a movie as a single atomic statement:
// an existing (userid, movieid) row is overwritten, otherwise one is
// inserted. There is no read-then-write window for concurrent upserts on
// the same pair to race through.
func (r *RatingsRepository) Rate(ctx context.Context, movieID uuid.UUID, rating int, userID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
        INSERT INTO ratings (userid, movieid, rating)
        VALUES ($1, $2, $3)
        ON CONFLICT (userid, movieid) DO UPDATE
        SET rating = excluded.rating
    `, userID, movieID, rating)
	if err != nil {
		return false, fmt.Errorf("upsert rating: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// GetRating returns the movie's aggregate rating rounded to one decimal,
// or nil when no ratings exist.
func (r *RatingsRepository) GetRating(ctx context.Context, movieID uuid.UUID) (*float64, error) {
	var rating *float64
	err := r.pool.QueryRow(ctx, `
        SELECT round(avg(rating), 1)::float8
        FROM ratings
        WHERE movieid = $1
    `, movieID).Scan(&rating)
	if err != nil {
		return nil, fmt.Errorf("aggregate rating: %w", err)
	}
	return rating, nil
}

// GetRatingForUser returns the aggregate rating together with the given
// user's own rating; either may be nil independently of the other.
func (r *RatingsRepository) GetRatingForUser(ctx context.Context, movieID, userID uuid.UUID) (*float64, *int, error) {
	var rating *float64
	var userRating *int
	err := r.pool.QueryRow(ctx, `
        SELECT round(avg(rating), 1)::float8,
               (SELECT rating FROM ratings
                WHERE movieid = $1 AND userid = $2
                LIMIT 1)
        FROM ratings
        WHERE movieid = $1
    `, movieID, userID).Scan(&rating, &userRating)
	if err != nil {
		return nil, nil, fmt.Errorf("aggregate user rating: %w", err)
	}
	return rating, userRating, nil
}

// DeleteRating removes exactly the one rating the user owns for the movie
// and reports whether a row was removed.
func (r *RatingsRepository) DeleteRating(ctx context.Context, movieID, userID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
        DELETE FROM ratings
        WHERE movieid = $1 AND userid = $2
    `, movieID, userID)
	if err != nil {
		return false, fmt.Errorf("delete rating: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
