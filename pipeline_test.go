package ragdrive

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEmbedder produces deterministic vectors and counts calls.
type fakeEmbedder struct {
	calls   int
	failOn  string
	failAll bool
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	f.calls++
	if f.failAll || (f.failOn != "" && strings.Contains(text, f.failOn)) {
		return nil, errors.New("embedding service down")
	}
	return []float64{float64(len(text)), 1}, nil
}

func (f *fakeEmbedder) GetDimension() (int, error) {
	return 2, nil
}

// fakeStore serves a fixed file listing, optionally split across pages.
type fakeStore struct {
	pages    [][]FileInfo
	texts    map[string]string
	failList bool
	failIDs  map[string]bool
}

func (f *fakeStore) List(ctx context.Context, pageToken string) ([]FileInfo, string, error) {
	if f.failList {
		return nil, "", errors.New("drive unreachable")
	}
	page := 0
	if pageToken != "" {
		fmt.Sscanf(pageToken, "page-%d", &page)
	}
	if page >= len(f.pages) {
		return nil, "", nil
	}
	next := ""
	if page+1 < len(f.pages) {
		next = fmt.Sprintf("page-%d", page+1)
	}
	return f.pages[page], next, nil
}

func (f *fakeStore) FetchBytes(ctx context.Context, fileID string) ([]byte, error) {
	if f.failIDs[fileID] {
		return nil, errors.New("download failed")
	}
	return []byte(f.texts[fileID]), nil
}

func (f *fakeStore) ExportText(ctx context.Context, fileID string) (string, error) {
	if f.failIDs[fileID] {
		return "", errors.New("export failed")
	}
	return f.texts[fileID], nil
}

// fakeWeb serves canned search results and page text.
type fakeWeb struct {
	results     []WebResult
	pages       map[string]string
	failSearch  bool
	failFetch   map[string]bool
	searchCalls int
	lastQuery   string
}

func (f *fakeWeb) Search(ctx context.Context, query string, topK int) ([]WebResult, error) {
	f.searchCalls++
	f.lastQuery = query
	if f.failSearch {
		return nil, errors.New("serpapi unreachable")
	}
	if topK < len(f.results) {
		return f.results[:topK], nil
	}
	return f.results, nil
}

func (f *fakeWeb) FetchPage(ctx context.Context, url string) (string, error) {
	if f.failFetch[url] {
		return "", errors.New("connection refused")
	}
	return f.pages[url], nil
}

func newTestIndex(t *testing.T) VectorIndex {
	t.Helper()
	index, err := NewVectorIndex(WithType("memory"))
	require.NoError(t, err)
	require.NoError(t, index.Connect(context.Background()))
	return index
}

func TestIndexContentSourceIndexesAllPages(t *testing.T) {
	ctx := context.Background()
	store := &fakeStore{
		pages: [][]FileInfo{
			{
				{ID: "F1", Name: "strategy.gdoc", MIMEType: "application/vnd.google-apps.document"},
				{ID: "F2", Name: "notes.gdoc", MIMEType: "application/vnd.google-apps.document"},
			},
			{
				{ID: "F3", Name: "deck.gslides", MIMEType: "application/vnd.google-apps.presentation"},
			},
		},
		texts: map[string]string{
			"F1": strings.Repeat("a", 7000),
			"F2": "short document",
			"F3": "slide text",
		},
	}
	embedder := &fakeEmbedder{}
	index := newTestIndex(t)

	indexer, err := NewIndexer(embedder, index, WithContentStore(store))
	require.NoError(t, err)

	// F1 is 7000 chars and splits into three chunks, F2 and F3 one each
	count, err := indexer.IndexContentSource(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, count)
	assert.Equal(t, 5, embedder.calls)

	stats, err := index.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), stats.TotalCount)

	assert.True(t, indexer.Ledger().Seen("F1_chunk_0"))
	assert.True(t, indexer.Ledger().Seen("F1_chunk_2"))
	assert.True(t, indexer.Ledger().Seen("F3_chunk_0"))
}

func TestIndexContentSourceListFailureIsFatal(t *testing.T) {
	store := &fakeStore{failList: true}
	indexer, err := NewIndexer(&fakeEmbedder{}, newTestIndex(t), WithContentStore(store))
	require.NoError(t, err)

	_, err = indexer.IndexContentSource(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}

func TestIndexContentSourceSkipsFailedDocuments(t *testing.T) {
	store := &fakeStore{
		pages: [][]FileInfo{{
			{ID: "ok", Name: "fine.gdoc", MIMEType: "application/vnd.google-apps.document"},
			{ID: "broken", Name: "corrupt.pdf", MIMEType: "application/pdf"},
			{ID: "empty", Name: "blank.gdoc", MIMEType: "application/vnd.google-apps.document"},
		}},
		texts:   map[string]string{"ok": "usable text", "empty": ""},
		failIDs: map[string]bool{"broken": true},
	}
	indexer, err := NewIndexer(&fakeEmbedder{}, newTestIndex(t), WithContentStore(store))
	require.NoError(t, err)

	count, err := indexer.IndexContentSource(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestIndexContentSourceWarmLedgerSkipsEmbedding(t *testing.T) {
	ctx := context.Background()
	store := &fakeStore{
		pages: [][]FileInfo{{
			{ID: "F1", Name: "doc.gdoc", MIMEType: "application/vnd.google-apps.document"},
		}},
		texts: map[string]string{"F1": "stable content that does not change"},
	}
	embedder := &fakeEmbedder{}
	indexer, err := NewIndexer(embedder, newTestIndex(t), WithContentStore(store))
	require.NoError(t, err)

	count, err := indexer.IndexContentSource(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	firstRun := embedder.calls

	count, err = indexer.IndexContentSource(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count, "re-index of unchanged content performs no new upserts")
	assert.Equal(t, firstRun, embedder.calls, "re-index of unchanged content must not embed again")
}

func TestIndexContentSourceEmbeddingFailureSkipsChunk(t *testing.T) {
	ctx := context.Background()
	store := &fakeStore{
		pages: [][]FileInfo{{
			{ID: "good", Name: "a.gdoc", MIMEType: "application/vnd.google-apps.document"},
			{ID: "bad", Name: "b.gdoc", MIMEType: "application/vnd.google-apps.document"},
		}},
		texts: map[string]string{"good": "embeddable text", "bad": "poison text"},
	}
	embedder := &fakeEmbedder{failOn: "poison"}
	index := newTestIndex(t)
	indexer, err := NewIndexer(embedder, index, WithContentStore(store))
	require.NoError(t, err)

	count, err := indexer.IndexContentSource(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	stats, err := index.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalCount)
	assert.False(t, indexer.Ledger().Seen("bad_chunk_0"))
}

func TestIndexWebResultsCountsSuccessesOnly(t *testing.T) {
	web := &fakeWeb{
		results: []WebResult{
			{Title: "First", URL: "https://a.example/post"},
			{Title: "Second", URL: "https://b.example/post"},
			{Title: "Third", URL: "https://c.example/post"},
		},
		pages: map[string]string{
			"https://a.example/post": "paragraph text from a",
			"https://c.example/post": "paragraph text from c",
		},
		failFetch: map[string]bool{"https://b.example/post": true},
	}
	indexer, err := NewIndexer(&fakeEmbedder{}, newTestIndex(t), WithWebCollector(web))
	require.NoError(t, err)

	count, err := indexer.IndexWebResults(context.Background(), "market sizing", 3)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	assert.True(t, indexer.Ledger().Seen("https://a.example/post"))
	assert.False(t, indexer.Ledger().Seen("https://b.example/post"))
}

func TestIndexWebResultsEmbedsWholePageAsOneRecord(t *testing.T) {
	ctx := context.Background()
	web := &fakeWeb{
		results: []WebResult{
			{Title: "Long read", URL: "https://long.example/post"},
		},
		pages: map[string]string{
			"https://long.example/post": strings.Repeat("w", 7000),
		},
	}
	embedder := &fakeEmbedder{}
	index := newTestIndex(t)
	indexer, err := NewIndexer(embedder, index, WithWebCollector(web))
	require.NoError(t, err)

	count, err := indexer.IndexWebResults(ctx, "long reads", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, 1, embedder.calls, "page text is embedded whole, not chunked")

	stats, err := index.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalCount)

	matches, err := index.Query(ctx, []float64{7000, 1}, 1, true)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "https://long.example/post", matches[0].ID)
	assert.Equal(t, "Long read", matches[0].Metadata["name"])
	assert.Equal(t, "https://long.example/post", matches[0].Metadata["source"])

	// A second pass over the same result is a ledger hit and upserts nothing.
	count, err = indexer.IndexWebResults(ctx, "long reads", 1)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.Equal(t, 1, embedder.calls)
}

func TestIndexWebResultsSearchFailureIsFatal(t *testing.T) {
	web := &fakeWeb{failSearch: true}
	indexer, err := NewIndexer(&fakeEmbedder{}, newTestIndex(t), WithWebCollector(web))
	require.NoError(t, err)

	_, err = indexer.IndexWebResults(context.Background(), "anything", 3)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}

func TestIndexWebResultsSkipsEmptyPagesAndMissingURLs(t *testing.T) {
	web := &fakeWeb{
		results: []WebResult{
			{Title: "no url"},
			{Title: "empty page", URL: "https://empty.example"},
			{Title: "real page", URL: "https://real.example"},
		},
		pages: map[string]string{
			"https://empty.example": "",
			"https://real.example":  "actual paragraph content",
		},
	}
	indexer, err := NewIndexer(&fakeEmbedder{}, newTestIndex(t), WithWebCollector(web))
	require.NoError(t, err)

	count, err := indexer.IndexWebResults(context.Background(), "q", 3)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestIndexerRequiresConfiguredSources(t *testing.T) {
	indexer, err := NewIndexer(&fakeEmbedder{}, newTestIndex(t))
	require.NoError(t, err)

	_, err = indexer.IndexContentSource(context.Background())
	assert.ErrorIs(t, err, ErrInvalidConfiguration)

	_, err = indexer.IndexWebResults(context.Background(), "q", 3)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestNewIndexerValidation(t *testing.T) {
	_, err := NewIndexer(nil, newTestIndex(t))
	assert.ErrorIs(t, err, ErrInvalidConfiguration)

	_, err = NewIndexer(&fakeEmbedder{}, nil)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}
