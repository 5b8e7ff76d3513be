package domain

import "github.com/google/uuid"

// Movie represents the canonical movie entity in the database/service.
// Rating and UserRating are query-time enrichments, not stored columns;
// both stay nil when no rating data exists so "unrated" never reads as zero.
type Movie struct {
	ID            uuid.UUID `json:"id"`
	Slug          string    `json:"slug"`
	Title         string    `json:"title" validate:"required"`
	YearOfRelease int       `json:"yearOfRelease" validate:"required,gt=0"`
	Genres        []string  `json:"genres" validate:"required,min=1,dive,required,max=50"`
	Rating        *float64  `json:"rating,omitempty"`
	UserRating    *int      `json:"userRating,omitempty"`
}
