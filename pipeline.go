package ragdrive

import (
	"context"
	"errors"
	"fmt"

	"github.com/teilomillet/ragdrive/drive"
	"github.com/teilomillet/ragdrive/rag"
	"github.com/teilomillet/ragdrive/websearch"
)

// FileInfo describes one file available in a content store.
type FileInfo = drive.FileInfo

// WebResult is one web search hit.
type WebResult = websearch.Result

// Ledger tracks which chunk ids have been indexed this session.
type Ledger = rag.Ledger

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return rag.NewLedger()
}

// ContentStore lists and fetches documents from a managed source such
// as a shared Drive folder.
type ContentStore interface {
	// List returns one page of files. An empty next token ends paging.
	List(ctx context.Context, pageToken string) ([]FileInfo, string, error)

	// FetchBytes downloads a file's raw content. Used for PDFs.
	FetchBytes(ctx context.Context, fileID string) ([]byte, error)

	// ExportText returns a file's content as plain text. Used for
	// documents and presentations.
	ExportText(ctx context.Context, fileID string) (string, error)
}

// WebCollector searches the web and fetches page text.
type WebCollector interface {
	Search(ctx context.Context, query string, topK int) ([]WebResult, error)
	FetchPage(ctx context.Context, url string) (string, error)
}

// Indexer runs content through the chunk, embed, upsert pipeline. One
// bad document never aborts a run; only losing the source itself does.
type Indexer struct {
	store    ContentStore
	web      WebCollector
	chunker  Chunker
	embedder Embedder
	index    VectorIndex
	parser   *ParserManager
	ledger   *Ledger
}

// IndexerOption configures an Indexer.
type IndexerOption func(*Indexer)

// WithContentStore sets the managed document source.
func WithContentStore(store ContentStore) IndexerOption {
	return func(ix *Indexer) {
		ix.store = store
	}
}

// WithWebCollector sets the web search source.
func WithWebCollector(web WebCollector) IndexerOption {
	return func(ix *Indexer) {
		ix.web = web
	}
}

// WithChunker replaces the default 3000-character chunker.
func WithChunker(chunker Chunker) IndexerOption {
	return func(ix *Indexer) {
		ix.chunker = chunker
	}
}

// WithParserManager replaces the default parser set.
func WithParserManager(parser *ParserManager) IndexerOption {
	return func(ix *Indexer) {
		ix.parser = parser
	}
}

// WithLedger installs a ledger, for example one warmed from a previous
// session's snapshot.
func WithLedger(ledger *Ledger) IndexerOption {
	return func(ix *Indexer) {
		ix.ledger = ledger
	}
}

// NewIndexer wires an indexing pipeline around an embedder and a vector
// index. Both are required; sources are attached through options.
func NewIndexer(embedder Embedder, index VectorIndex, opts ...IndexerOption) (*Indexer, error) {
	if embedder == nil {
		return nil, fmt.Errorf("%w: embedder is required", ErrInvalidConfiguration)
	}
	if index == nil {
		return nil, fmt.Errorf("%w: vector index is required", ErrInvalidConfiguration)
	}

	chunker, err := NewChunker()
	if err != nil {
		return nil, err
	}

	ix := &Indexer{
		chunker:  chunker,
		embedder: embedder,
		index:    index,
		parser:   NewParserManager(),
		ledger:   NewLedger(),
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix, nil
}

// Ledger exposes the indexer's ledger so callers can snapshot it.
func (ix *Indexer) Ledger() *Ledger {
	return ix.ledger
}

// IndexContentSource walks every page of the content store, extracts
// text from each file, and indexes the chunks that are not already in
// the ledger. It returns the number of new upserts performed, so a
// second call over unchanged content returns zero. A listing failure
// aborts the whole call with ErrSourceUnavailable; failures on
// individual documents are logged and skipped.
func (ix *Indexer) IndexContentSource(ctx context.Context) (int, error) {
	if ix.store == nil {
		return 0, fmt.Errorf("%w: no content store configured", ErrInvalidConfiguration)
	}

	upserted := 0
	pageToken := ""
	for {
		files, nextToken, err := ix.store.List(ctx, pageToken)
		if err != nil {
			return upserted, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
		}

		for _, f := range files {
			n, err := ix.indexFile(ctx, f)
			if err != nil {
				Warn("skipping document", "id", f.ID, "name", f.Name, "error", err)
				continue
			}
			upserted += n
		}

		if nextToken == "" {
			break
		}
		pageToken = nextToken
	}

	Info("content source indexed", "upserts", upserted)
	return upserted, nil
}

// indexFile extracts, chunks and indexes a single file. It returns
// the number of chunks newly upserted for it; a file whose chunks are
// all in the ledger contributes zero.
func (ix *Indexer) indexFile(ctx context.Context, f FileInfo) (int, error) {
	text, err := ix.extractFile(ctx, f)
	if err != nil {
		return 0, err
	}
	if text == "" {
		Debug("document has no text", "id", f.ID, "name", f.Name)
		return 0, nil
	}

	metadata := map[string]interface{}{
		"name":   f.Name,
		"source": "drive",
	}
	return ix.indexText(ctx, f.ID, text, metadata)
}

// extractFile turns a listed file into plain text. PDFs are downloaded
// and parsed; everything else is exported as text by the store.
func (ix *Indexer) extractFile(ctx context.Context, f FileInfo) (string, error) {
	if f.MIMEType == drive.MimeTypePDF {
		data, err := ix.store.FetchBytes(ctx, f.ID)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrExtractionFailed, err)
		}
		doc, err := ix.parser.Parse(f.MIMEType, data)
		if err != nil {
			return "", err
		}
		return doc.Content, nil
	}

	text, err := ix.store.ExportText(ctx, f.ID)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	return text, nil
}

// IndexWebResults searches the web for the query and indexes the text
// of up to topK result pages. Each page is embedded whole, as a single
// record keyed by its URL, so re-indexing the same URL overwrites
// rather than duplicates. It returns the number of pages upserted. A
// failed search aborts with ErrSourceUnavailable; a page that cannot
// be fetched or embedded is skipped.
func (ix *Indexer) IndexWebResults(ctx context.Context, query string, topK int) (int, error) {
	if ix.web == nil {
		return 0, fmt.Errorf("%w: no web collector configured", ErrInvalidConfiguration)
	}

	results, err := ix.web.Search(ctx, query, topK)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	upserted := 0
	for _, r := range results {
		if r.URL == "" {
			continue
		}
		if ix.ledger.Seen(r.URL) {
			continue
		}

		text, err := ix.web.FetchPage(ctx, r.URL)
		if err != nil {
			Warn("skipping page", "url", r.URL, "error", err)
			continue
		}
		if text == "" {
			Debug("page has no paragraph text", "url", r.URL)
			continue
		}

		embedding, err := ix.embedder.Embed(ctx, text)
		if err != nil {
			Warn("skipping page", "url", r.URL, "error", err)
			continue
		}

		name := r.Title
		if name == "" {
			name = r.URL
		}
		record := Record{
			ID:     r.URL,
			Vector: embedding,
			Metadata: map[string]interface{}{
				"name":   name,
				"source": r.URL,
				"text":   text,
			},
		}
		if err := ix.index.Upsert(ctx, []Record{record}); err != nil {
			Warn("skipping page", "url", r.URL, "error", err)
			continue
		}
		ix.ledger.Record(r.URL, text)
		upserted++
	}

	Info("web results indexed", "query", query, "pages", upserted)
	return upserted, nil
}

// indexText chunks a source's text and upserts the chunks the ledger
// has not seen. It returns the number of chunks newly upserted, so a
// re-index of unchanged text returns zero without touching the
// embedder.
func (ix *Indexer) indexText(ctx context.Context, sourceID, text string, metadata map[string]interface{}) (int, error) {
	chunks := ix.chunker.Chunk(sourceID, text)

	var records []Record
	for _, chunk := range chunks {
		if ix.ledger.Seen(chunk.ID) {
			continue
		}

		embedding, err := ix.embedder.Embed(ctx, chunk.Text)
		if err != nil {
			Warn("embedding failed", "chunk", chunk.ID, "error", err)
			continue
		}

		meta := map[string]interface{}{
			"source_id": chunk.SourceID,
			"ordinal":   chunk.Ordinal,
			"text":      chunk.Text,
		}
		for k, v := range metadata {
			meta[k] = v
		}

		records = append(records, Record{
			ID:       chunk.ID,
			Vector:   embedding,
			Metadata: meta,
		})
	}

	if len(records) > 0 {
		if err := ix.index.Upsert(ctx, records); err != nil {
			return 0, fmt.Errorf("failed to upsert chunks for %s: %w", sourceID, err)
		}
		// Recorded only after the upsert succeeds, so a failed write
		// leaves the chunks eligible for a retry.
		for _, rec := range records {
			ix.ledger.Record(rec.ID, rec.Metadata["text"].(string))
		}
	}

	return len(records), nil
}

// IsSourceUnavailable reports whether err means the content source
// itself could not be reached.
func IsSourceUnavailable(err error) bool {
	return errors.Is(err, ErrSourceUnavailable)
}
