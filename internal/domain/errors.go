package domain

import "errors"

var (
	// ErrNotFound indicates resource not found
	ErrNotFound = errors.New("resource not found")
	// ErrInvalidRequest indicates invalid request
	ErrInvalidRequest = errors.New("invalid request")
	// ErrUnauthorized indicates unauthorized access
	ErrUnauthorized = errors.New("unauthorized")
	// ErrEmptyQuery indicates an empty or whitespace-only query; matching is
	// short-circuited, no lookup is attempted.
	ErrEmptyQuery = errors.New("empty query")
	// ErrNoKnowledge indicates no knowledge table has been loaded or activated
	ErrNoKnowledge = errors.New("knowledge base not loaded")
	// ErrGeneration indicates the generative model failed for one query. It is
	// always recovered before reaching the widget.
	ErrGeneration = errors.New("generation failed")
)
