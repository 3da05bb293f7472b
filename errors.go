package ragdrive

import "github.com/teilomillet/ragdrive/rag"

// Error kinds surfaced by indexing and answering operations. Use
// errors.Is to classify failures.
var (
	// ErrSourceUnavailable means the content source itself could not be
	// reached. A whole indexing call fails with this error.
	ErrSourceUnavailable = rag.ErrSourceUnavailable

	// ErrExtractionFailed means one document's content could not be
	// turned into text. The item is skipped, the operation continues.
	ErrExtractionFailed = rag.ErrExtractionFailed

	// ErrEmbeddingFailed means one piece of text could not be embedded.
	// The item is skipped, the operation continues.
	ErrEmbeddingFailed = rag.ErrEmbeddingFailed

	// ErrGenerationFailed means the language model call failed while
	// producing an answer.
	ErrGenerationFailed = rag.ErrGenerationFailed

	// ErrInvalidConfiguration means the component was constructed with
	// settings that can never work, reported before any work starts.
	ErrInvalidConfiguration = rag.ErrInvalidConfiguration
)
