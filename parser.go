package ragdrive

import (
	"github.com/teilomillet/ragdrive/rag"
)

// Document represents extracted text content with its metadata.
type Document = rag.Document

// Parser defines the interface for extracting text from raw document
// bytes.
type Parser = rag.Parser

// ParserManager routes documents to the right parser by MIME type.
type ParserManager = rag.ParserManager

// NewParserManager creates a manager that handles PDF and plain text
// content out of the box. Register additional MIME types with AddParser.
func NewParserManager() *ParserManager {
	return rag.NewParserManager()
}

// NewPDFParser creates a parser for PDF bytes.
func NewPDFParser() Parser {
	return rag.NewPDFParser()
}

// NewTextParser creates a parser for content that is already plain text.
func NewTextParser() Parser {
	return rag.NewTextParser()
}
