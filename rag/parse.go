package rag

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Document represents extracted text with its associated metadata. The
// Content field holds the text, while Metadata records where it came from.
type Document struct {
	Content  string
	Metadata map[string]string
}

// Parser defines the interface for text extraction implementations.
// Sources hand over raw bytes, so parsers never touch the filesystem.
type Parser interface {
	// Parse extracts text from raw document bytes. It returns an error
	// wrapping ErrExtractionFailed if the content cannot be processed.
	Parse(data []byte) (Document, error)
}

// ParserManager routes documents to the appropriate parser based on
// their MIME type.
type ParserManager struct {
	parsers map[string]Parser
}

// NewParserManager creates a ParserManager initialized with parsers for
// the common types: PDF and anything that is already plain text.
func NewParserManager() *ParserManager {
	pm := &ParserManager{
		parsers: make(map[string]Parser),
	}

	pm.parsers["application/pdf"] = NewPDFParser()
	pm.parsers["text/plain"] = NewTextParser()

	return pm
}

// Parse extracts text from the given bytes using the parser registered
// for the MIME type.
func (pm *ParserManager) Parse(mimeType string, data []byte) (Document, error) {
	GlobalLogger.Debug("starting extraction", "mime_type", mimeType, "size", len(data))
	parser, ok := pm.parsers[normalizeMIME(mimeType)]
	if !ok {
		GlobalLogger.Error("no parser available", "mime_type", mimeType)
		return Document{}, fmt.Errorf("%w: no parser for MIME type %s", ErrExtractionFailed, mimeType)
	}
	doc, err := parser.Parse(data)
	if err != nil {
		GlobalLogger.Error("extraction failed", "mime_type", mimeType, "error", err)
		return Document{}, err
	}
	return doc, nil
}

// AddParser registers a parser for a MIME type, replacing any existing
// registration.
func (pm *ParserManager) AddParser(mimeType string, parser Parser) {
	pm.parsers[normalizeMIME(mimeType)] = parser
}

// normalizeMIME strips parameters such as charset so lookups key on the
// bare media type.
func normalizeMIME(mimeType string) string {
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = mimeType[:i]
	}
	return strings.ToLower(strings.TrimSpace(mimeType))
}

// PDFParser extracts text from PDF bytes using ledongthuc/pdf.
type PDFParser struct{}

func NewPDFParser() *PDFParser {
	return &PDFParser{}
}

func (p *PDFParser) Parse(data []byte) (Document, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	var textBuilder strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			return Document{}, fmt.Errorf("%w: page %d: %v", ErrExtractionFailed, i, err)
		}
		textBuilder.WriteString(content)
		textBuilder.WriteString("\n\n")
	}

	return Document{
		Content: textBuilder.String(),
		Metadata: map[string]string{
			"file_type": "pdf",
		},
	}, nil
}

// TextParser handles content that is already plain text.
type TextParser struct{}

func NewTextParser() *TextParser {
	return &TextParser{}
}

func (p *TextParser) Parse(data []byte) (Document, error) {
	return Document{
		Content: string(data),
		Metadata: map[string]string{
			"file_type": "text",
		},
	}, nil
}
