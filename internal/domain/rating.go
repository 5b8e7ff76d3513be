package domain

// MinRating and MaxRating bound the accepted rating value. The range is
// enforced once, by the catalog service, before any store access.
const (
	MinRating = 1
	MaxRating = 5
)
