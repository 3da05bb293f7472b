package ragdrive

import (
	"context"
	"fmt"
	"strings"

	"github.com/teilomillet/gollm"
)

// DefaultSystemPrompt frames the model as an assistant that answers
// from the retrieved material.
const DefaultSystemPrompt = "You are a strategy assistant. Ground your answers in the provided context."

// NoInformationResponse is returned when retrieval finds nothing. The
// language model is not called in that case.
const NoInformationResponse = "I don't have any indexed information relevant to that question. Index the Drive folder or include web results, then try again."

// contextSeparator joins retrieved snippets in the prompt context.
const contextSeparator = "\n\n---\n\n"

// LanguageModel is the narrow slice of an LLM client the assistant
// needs.
type LanguageModel interface {
	Generate(ctx context.Context, prompt *gollm.Prompt) (string, error)
}

// gollmModel adapts a gollm.LLM to the LanguageModel interface.
type gollmModel struct {
	llm gollm.LLM
}

func (m gollmModel) Generate(ctx context.Context, prompt *gollm.Prompt) (string, error) {
	return m.llm.Generate(ctx, prompt)
}

// WrapLLM exposes a gollm client as a LanguageModel.
func WrapLLM(llm gollm.LLM) LanguageModel {
	return gollmModel{llm: llm}
}

// RetrievedDoc is one snippet of indexed content matched to a query.
type RetrievedDoc struct {
	ID      string
	Score   float64
	Content string
	Origin  string // "drive" or "web"
}

// Assistant answers questions from the vector index, optionally pulling
// in fresh web results first.
type Assistant struct {
	llm          LanguageModel
	embedder     Embedder
	index        VectorIndex
	indexer      *Indexer
	ledger       *Ledger
	topK         int
	searchTopK   int
	systemPrompt string
}

// AssistantOption configures an Assistant.
type AssistantOption func(*Assistant)

// WithTopK sets how many snippets retrieval returns.
func WithTopK(topK int) AssistantOption {
	return func(a *Assistant) {
		a.topK = topK
	}
}

// WithSearchTopK sets how many web pages an on-demand web search
// indexes.
func WithSearchTopK(topK int) AssistantOption {
	return func(a *Assistant) {
		a.searchTopK = topK
	}
}

// WithSystemPrompt replaces the default system prompt.
func WithSystemPrompt(prompt string) AssistantOption {
	return func(a *Assistant) {
		a.systemPrompt = prompt
	}
}

// WithIndexer attaches the indexer used for on-demand web indexing.
// The assistant also reads the indexer's ledger to recover chunk text
// during retrieval.
func WithIndexer(indexer *Indexer) AssistantOption {
	return func(a *Assistant) {
		a.indexer = indexer
		a.ledger = indexer.Ledger()
	}
}

// NewAssistant wires an answering pipeline around a language model, an
// embedder and a vector index.
func NewAssistant(llm LanguageModel, embedder Embedder, index VectorIndex, opts ...AssistantOption) (*Assistant, error) {
	if llm == nil {
		return nil, fmt.Errorf("%w: language model is required", ErrInvalidConfiguration)
	}
	if embedder == nil {
		return nil, fmt.Errorf("%w: embedder is required", ErrInvalidConfiguration)
	}
	if index == nil {
		return nil, fmt.Errorf("%w: vector index is required", ErrInvalidConfiguration)
	}

	a := &Assistant{
		llm:          llm,
		embedder:     embedder,
		index:        index,
		topK:         5,
		searchTopK:   3,
		systemPrompt: DefaultSystemPrompt,
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.topK <= 0 || a.searchTopK <= 0 {
		return nil, fmt.Errorf("%w: topK values must be positive", ErrInvalidConfiguration)
	}
	return a, nil
}

// Retrieve embeds the query and returns the closest indexed snippets,
// best match first. Chunk text comes from the session ledger when
// available; otherwise the stored metadata stands in.
func (a *Assistant) Retrieve(ctx context.Context, query string) ([]RetrievedDoc, error) {
	embedding, err := a.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: query: %v", ErrEmbeddingFailed, err)
	}

	matches, err := a.index.Query(ctx, embedding, a.topK, true)
	if err != nil {
		return nil, fmt.Errorf("retrieval query failed: %w", err)
	}

	docs := make([]RetrievedDoc, 0, len(matches))
	for _, m := range matches {
		docs = append(docs, RetrievedDoc{
			ID:      m.ID,
			Score:   m.Score,
			Content: a.snippetFor(m.ID, m.Metadata),
			Origin:  originOf(m.Metadata),
		})
	}
	return docs, nil
}

// snippetFor recovers the text behind a match. Preference order: the
// session ledger, the text stored in metadata, then a source/name
// reference line.
func (a *Assistant) snippetFor(id string, metadata map[string]interface{}) string {
	if a.ledger != nil {
		if text, ok := a.ledger.Text(id); ok {
			return text
		}
	}
	if text, ok := metadata["text"].(string); ok && text != "" {
		return text
	}
	source, _ := metadata["source"].(string)
	name, _ := metadata["name"].(string)
	return fmt.Sprintf("%s: %s", source, name)
}

// originOf classifies a match by its stored source: drive documents
// carry the literal "drive", web pages carry their URL.
func originOf(metadata map[string]interface{}) string {
	if source, ok := metadata["source"].(string); ok && source == "drive" {
		return "drive"
	}
	return "web"
}

// answerConfig holds per-call answer settings.
type answerConfig struct {
	includeWeb bool
	webPrompt  string
}

// AnswerOption configures a single Answer call.
type AnswerOption func(*answerConfig)

// WithWebResults makes the call search the web for prompt and index
// the results before retrieving. The search prompt is independent of
// the question being answered; an empty prompt skips the web pass.
func WithWebResults(prompt string) AnswerOption {
	return func(c *answerConfig) {
		c.includeWeb = true
		c.webPrompt = prompt
	}
}

// Answer retrieves context for the query and generates a response.
// With WithWebResults it first runs exactly one web indexing pass for
// the given search prompt; a failure there is logged and answering
// continues on whatever the index already holds. When retrieval finds
// nothing the fixed NoInformationResponse is returned without calling
// the model.
func (a *Assistant) Answer(ctx context.Context, query string, opts ...AnswerOption) (string, error) {
	var cfg answerConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.includeWeb && cfg.webPrompt != "" {
		if a.indexer == nil {
			return "", fmt.Errorf("%w: web results requested but no indexer attached", ErrInvalidConfiguration)
		}
		if _, err := a.indexer.IndexWebResults(ctx, cfg.webPrompt, a.searchTopK); err != nil {
			Warn("web indexing failed, answering from existing index", "prompt", cfg.webPrompt, "error", err)
		}
	}

	docs, err := a.Retrieve(ctx, query)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}
	if len(docs) == 0 {
		return NoInformationResponse, nil
	}

	prompt := gollm.NewPrompt(query,
		gollm.WithSystemPrompt(a.systemPrompt, gollm.CacheTypeEphemeral),
		gollm.WithContext(assembleContext(docs)),
	)

	response, err := a.llm.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	return response, nil
}

// assembleContext joins retrieved snippets into one prompt context,
// tagging each snippet with where it came from.
func assembleContext(docs []RetrievedDoc) string {
	parts := make([]string, 0, len(docs))
	for _, doc := range docs {
		tag := "[Web]"
		if doc.Origin == "drive" {
			tag = "[Drive]"
		}
		parts = append(parts, tag+" "+doc.Content)
	}
	return strings.Join(parts, contextSeparator)
}
