package domain

import "errors"

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrProduceAPIFailure is returned when the produce query service request fails
	ErrProduceAPIFailure = errors.New("produce query service request failed")

	// ErrRecipeGenerationFailure is returned when the recipe generation service fails
	ErrRecipeGenerationFailure = errors.New("recipe generation failed")

	// ErrSearchSuperseded is returned when a newer search for the same session
	// replaced the one that produced the result
	ErrSearchSuperseded = errors.New("search superseded by a newer request")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrServiceUnavailable is returned when a required collaborator is not configured
	ErrServiceUnavailable = errors.New("service not configured")
)
