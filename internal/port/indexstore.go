package port

import (
	"strings"

	"tcpou/internal/domain"
)

type IndexStore interface {
	GetDoc(id string) (domain.Document, error)

	// DeleteDoc removes a document together with its chunks, imports and
	// recorded parse errors.
	DeleteDoc(id string) error

	ListDocs() ([]domain.Document, error)

	GetChunk(id string) (domain.Chunk, error)

	GetChunksByDoc(docID string) ([]domain.Chunk, error)

	FindChunks(filter ChunkFilter) ([]domain.Chunk, error)

	GetImports(docID string) ([]string, error)

	GetParseErrors(docID string) ([]string, error)

	GetStats() (domain.Stats, error)

	UpdateStats(stats domain.Stats) error

	BatchIndex(files []IndexedFile) error

	Close() error
}

type IndexedFile struct {
	Doc     domain.Document
	Chunks  []domain.Chunk
	Imports []string
	Errors  []string
}

// ChunkFilter selects stored chunks. Empty fields match everything; Symbol
// is a case-insensitive substring match.
type ChunkFilter struct {
	Symbol string
	Kind   domain.ChunkKind
	Path   string
}

func (f ChunkFilter) Matches(c domain.Chunk) bool {
	if f.Kind != "" && c.Kind != f.Kind {
		return false
	}
	if f.Path != "" && c.FilePath != f.Path {
		return false
	}
	if f.Symbol != "" && !strings.Contains(strings.ToLower(c.Symbol), strings.ToLower(f.Symbol)) {
		return false
	}
	return true
}
