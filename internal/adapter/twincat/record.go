package twincat

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"maps"

	"tcpou/internal/domain"
)

// record is the neutral form of one emitted unit. Both output shapes are
// pure mappings of it.
type record struct {
	kind      domain.ChunkKind
	symbol    string
	code      string
	startLine int
	endLine   int
	metadata  map[string]any
}

type fileIdentity struct {
	id   string
	path string
}

func (r record) toChunk(file fileIdentity, ordinal int) domain.Chunk {
	return domain.Chunk{
		ID:        chunkID(file.id, r.kind, r.symbol, r.startLine, ordinal),
		Symbol:    r.symbol,
		StartLine: r.startLine,
		EndLine:   r.endLine,
		Code:      r.code,
		Kind:      r.kind,
		FileID:    file.id,
		FilePath:  file.path,
		Language:  domain.LanguageTwinCAT,
		Metadata:  maps.Clone(r.metadata),
	}
}

func (r record) toPipelineChunk() domain.PipelineChunk {
	return domain.PipelineChunk{
		Concept:   domain.ConceptFor(r.kind),
		Name:      r.symbol,
		Content:   r.code,
		StartLine: r.startLine,
		EndLine:   r.endLine,
		Metadata:  maps.Clone(r.metadata),
		Language:  domain.LanguageTwinCAT,
	}
}

// chunkID is stable for a given file, symbol and position. The ordinal
// separates records that share a symbol and line, such as two comments on
// one line.
func chunkID(fileID string, kind domain.ChunkKind, symbol string, startLine, ordinal int) string {
	data := fmt.Sprintf("%s|%s|%s|%d|%d", fileID, kind, symbol, startLine, ordinal)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:8])
}
