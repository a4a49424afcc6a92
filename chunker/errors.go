package chunker

import "errors"

var (
	// ErrEstimatorRequired is returned when a token estimator is not provided.
	ErrEstimatorRequired = errors.New("token estimator required")

	// ErrInvalidBounds is returned when the token thresholds are not
	// ordered min <= target <= max.
	ErrInvalidBounds = errors.New("token bounds must satisfy min <= target <= max")
)
