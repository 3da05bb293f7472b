package rag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParserManagerRoutesByMIMEType(t *testing.T) {
	pm := NewParserManager()

	doc, err := pm.Parse("text/plain", []byte("hello world"))
	require.NoError(t, err)
	assert.Equal(t, "hello world", doc.Content)
	assert.Equal(t, "text", doc.Metadata["file_type"])
}

func TestParserManagerNormalizesMIMEParameters(t *testing.T) {
	pm := NewParserManager()

	doc, err := pm.Parse("text/plain; charset=utf-8", []byte("hÉllo"))
	require.NoError(t, err)
	assert.Equal(t, "hÉllo", doc.Content)
}

func TestParserManagerUnknownMIMEType(t *testing.T) {
	pm := NewParserManager()

	_, err := pm.Parse("image/png", []byte{0x89, 0x50})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExtractionFailed)
}

func TestParserManagerAddParser(t *testing.T) {
	pm := NewParserManager()
	pm.AddParser("text/markdown", NewTextParser())

	doc, err := pm.Parse("text/markdown", []byte("# heading"))
	require.NoError(t, err)
	assert.Equal(t, "# heading", doc.Content)
}

func TestPDFParserRejectsGarbage(t *testing.T) {
	parser := NewPDFParser()

	_, err := parser.Parse([]byte("this is not a pdf"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExtractionFailed)
}
