package rag

import "errors"

// Sentinel error kinds for the pipeline. Wrap them with fmt.Errorf and
// %w so callers can classify failures with errors.Is.
var (
	// ErrSourceUnavailable: the content source itself (Drive listing,
	// web search) could not be reached. Fatal for the indexing call.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrExtractionFailed: one document's bytes could not be turned
	// into text. The document is skipped, the run continues.
	ErrExtractionFailed = errors.New("extraction failed")

	// ErrEmbeddingFailed: one piece of text could not be embedded. The
	// item is skipped, the run continues.
	ErrEmbeddingFailed = errors.New("embedding failed")

	// ErrGenerationFailed: the language model call failed while
	// producing an answer.
	ErrGenerationFailed = errors.New("generation failed")

	// ErrInvalidConfiguration: settings that can never work, reported
	// at construction time before any work starts.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)
