package domain

import "time"

const LanguageTwinCAT = "twincat"

type Document struct {
	ID      string
	Path    string
	ModTime time.Time
	Lang    string
}

type ChunkKind string

const (
	KindProgram       ChunkKind = "PROGRAM"
	KindFunction      ChunkKind = "FUNCTION"
	KindFunctionBlock ChunkKind = "FUNCTION_BLOCK"
	KindMethod        ChunkKind = "METHOD"
	KindAction        ChunkKind = "ACTION"
	KindProperty      ChunkKind = "PROPERTY"
	KindVariable      ChunkKind = "VARIABLE"
	KindField         ChunkKind = "FIELD"
	KindBlock         ChunkKind = "BLOCK"
	KindComment       ChunkKind = "COMMENT"
)

type Concept string

const (
	ConceptDefinition Concept = "DEFINITION"
	ConceptBlock      Concept = "BLOCK"
	ConceptComment    Concept = "COMMENT"
)

// ConceptFor maps a chunk kind to the concept used by the pipeline form.
func ConceptFor(k ChunkKind) Concept {
	switch k {
	case KindBlock:
		return ConceptBlock
	case KindComment:
		return ConceptComment
	default:
		return ConceptDefinition
	}
}

// Chunk is the persisted, self-contained form of an extracted unit.
type Chunk struct {
	ID        string         `json:"id"`
	Symbol    string         `json:"symbol"`
	StartLine int            `json:"start_line"`
	EndLine   int            `json:"end_line"`
	Code      string         `json:"code"`
	Kind      ChunkKind      `json:"chunk_kind"`
	FileID    string         `json:"file_id,omitempty"`
	FilePath  string         `json:"file_path,omitempty"`
	Language  string         `json:"language"`
	Metadata  map[string]any `json:"metadata"`
}

// PipelineChunk is the lighter form consumed by the merge stage.
type PipelineChunk struct {
	Concept   Concept        `json:"concept"`
	Name      string         `json:"name"`
	Content   string         `json:"content"`
	StartLine int            `json:"start_line"`
	EndLine   int            `json:"end_line"`
	Metadata  map[string]any `json:"metadata"`
	Language  string         `json:"language"`
}

// PipelineSettings are passed through to the merge stage untouched.
type PipelineSettings struct {
	MaxChunkSize   int     `json:"max_chunk_size"`
	MinChunkSize   int     `json:"min_chunk_size"`
	MergeThreshold float64 `json:"merge_threshold"`
	GreedyMerge    bool    `json:"greedy_merge"`
	SafeTokenLimit int     `json:"safe_token_limit"`
}

type PipelineBatch struct {
	Settings PipelineSettings `json:"settings"`
	Chunks   []PipelineChunk  `json:"chunks"`
	Errors   []string         `json:"errors,omitempty"`
}

type Stats struct {
	TotalDocs   int
	TotalChunks int
	ParseErrors int
}
