package parser

import (
	"context"

	"i18n-extract/internal/extract"
)

// ParseResult holds extraction output for a single file.
type ParseResult struct {
	// FilePath is the path the file was read from.
	FilePath string
	// Label is the file name attached to every message.
	Label string
	// Dialect is the grammar used to tokenize the file (javascript, typescript).
	Dialect string
	// Messages are the extracted messages in source order.
	Messages []extract.Message
	// Cached is set when Messages came from the scan cache.
	Cached bool
}

// Parser is the interface for all file format parsers.
type Parser interface {
	// CanParse returns true if this parser handles the given file extension.
	CanParse(ext string) bool
	// Parse extracts messages from the file at path, labelling them with label.
	Parse(ctx context.Context, path, label string) (*ParseResult, error)
}
