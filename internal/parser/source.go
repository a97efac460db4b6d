package parser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"i18n-extract/internal/cache"
	"i18n-extract/internal/extract"
	"i18n-extract/internal/lexer"
	"i18n-extract/internal/pickup"

	"github.com/rs/zerolog/log"
)

// SourceParser extracts pickup calls from JavaScript and TypeScript files.
// It holds no per-call state and may be shared between goroutines.
type SourceParser struct {
	table *pickup.Table
	cache *cache.ScanCache
}

// NewSourceParser creates a parser for the given pickup table. scanCache may
// be nil.
func NewSourceParser(table *pickup.Table, scanCache *cache.ScanCache) *SourceParser {
	return &SourceParser{table: table, cache: scanCache}
}

func (p *SourceParser) CanParse(ext string) bool {
	return lexer.ForExtension(strings.ToLower(ext)) != nil
}

func (p *SourceParser) Parse(ctx context.Context, path, label string) (*ParseResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read source file: %w", err)
	}

	result, err := p.ParseSource(ctx, source, filepath.Ext(path), label)
	if err != nil {
		return nil, err
	}
	result.FilePath = path
	return result, nil
}

// ParseSource extracts messages from in-memory source. ext selects the
// grammar. Syntax errors are returned as *lexer.SyntaxError.
func (p *SourceParser) ParseSource(ctx context.Context, source []byte, ext, label string) (*ParseResult, error) {
	lx := lexer.ForExtension(strings.ToLower(ext))
	if lx == nil {
		return nil, fmt.Errorf("unsupported file extension %q", ext)
	}

	result := &ParseResult{Label: label, Dialect: lx.Dialect()}

	var key string
	if p.cache != nil {
		key = p.cache.Key(label, source)
		if msgs, ok := p.cache.Get(ctx, key); ok {
			result.Messages = msgs
			result.Cached = true
			return result, nil
		}
	}

	msgs, err := extract.ParseFile(source, lx, p.table, label)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if p.cache != nil {
		if err := p.cache.Set(ctx, key, msgs); err != nil {
			log.Warn().Err(err).Str("file", label).Msg("Failed to cache scan result")
		}
	}

	result.Messages = msgs
	return result, nil
}
