package featprep

import (
	"errors"
)

var (
	// ErrNilExtractor is returned when a pipeline is constructed without an
	// extractor.
	ErrNilExtractor = errors.New("extractor must not be nil")

	// ErrEmptyBatch is returned when a batch size is not positive.
	ErrEmptyBatch = errors.New("batch size must be positive")
)
