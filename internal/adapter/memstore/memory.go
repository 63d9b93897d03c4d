package memstore

import (
	"fmt"
	"slices"
	"sort"
	"sync"

	"tcpou/internal/domain"
	"tcpou/internal/port"
)

// MemoryStore is an in-process IndexStore used by tests and one-shot runs.
type MemoryStore struct {
	mu          sync.RWMutex
	docs        map[string]domain.Document
	chunks      map[string]domain.Chunk
	docChunks   map[string][]string
	imports     map[string][]string
	parseErrors map[string][]string
	stats       domain.Stats
}

var _ port.IndexStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs:        make(map[string]domain.Document),
		chunks:      make(map[string]domain.Chunk),
		docChunks:   make(map[string][]string),
		imports:     make(map[string][]string),
		parseErrors: make(map[string][]string),
	}
}

func (s *MemoryStore) GetDoc(id string) (domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return domain.Document{}, fmt.Errorf("document not found: %s", id)
	}
	return doc, nil
}

func (s *MemoryStore) DeleteDoc(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteChunks(id)
	delete(s.imports, id)
	delete(s.parseErrors, id)
	delete(s.docs, id)
	return nil
}

func (s *MemoryStore) ListDocs() ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := make([]domain.Document, 0, len(s.docs))
	for _, doc := range s.docs {
		docs = append(docs, doc)
	}
	return docs, nil
}

func (s *MemoryStore) GetChunk(id string) (domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chunk, ok := s.chunks[id]
	if !ok {
		return domain.Chunk{}, fmt.Errorf("chunk not found: %s", id)
	}
	return chunk, nil
}

func (s *MemoryStore) GetChunksByDoc(docID string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chunkIDs := s.docChunks[docID]
	chunks := make([]domain.Chunk, 0, len(chunkIDs))
	for _, id := range chunkIDs {
		if chunk, ok := s.chunks[id]; ok {
			chunks = append(chunks, chunk)
		}
	}
	return chunks, nil
}

func (s *MemoryStore) FindChunks(filter port.ChunkFilter) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var chunks []domain.Chunk
	for _, c := range s.chunks {
		if filter.Matches(c) {
			chunks = append(chunks, c)
		}
	}
	sort.Slice(chunks, func(i, j int) bool {
		if chunks[i].FilePath != chunks[j].FilePath {
			return chunks[i].FilePath < chunks[j].FilePath
		}
		if chunks[i].StartLine != chunks[j].StartLine {
			return chunks[i].StartLine < chunks[j].StartLine
		}
		return chunks[i].ID < chunks[j].ID
	})
	return chunks, nil
}

func (s *MemoryStore) GetImports(docID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.imports[docID]), nil
}

func (s *MemoryStore) GetParseErrors(docID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.parseErrors[docID]), nil
}

func (s *MemoryStore) GetStats() (domain.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats, nil
}

func (s *MemoryStore) UpdateStats(stats domain.Stats) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats = stats
	return nil
}

func (s *MemoryStore) BatchIndex(files []port.IndexedFile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, file := range files {
		s.deleteChunks(file.Doc.ID)
		s.docs[file.Doc.ID] = file.Doc

		ids := make([]string, 0, len(file.Chunks))
		for _, chunk := range file.Chunks {
			s.chunks[chunk.ID] = chunk
			ids = append(ids, chunk.ID)
		}
		s.docChunks[file.Doc.ID] = ids
		s.imports[file.Doc.ID] = slices.Clone(file.Imports)
		s.parseErrors[file.Doc.ID] = slices.Clone(file.Errors)
	}

	return nil
}

func (s *MemoryStore) deleteChunks(docID string) {
	for _, id := range s.docChunks[docID] {
		delete(s.chunks, id)
	}
	delete(s.docChunks, docID)
}

func (s *MemoryStore) Close() error {
	return nil
}
