package store

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"go.etcd.io/bbolt"

	"tcpou/internal/domain"
	"tcpou/internal/port"
)

var (
	bucketDocs        = []byte("docs")
	bucketChunks      = []byte("chunks")
	bucketBlobs       = []byte("blobs")
	bucketStats       = []byte("stats")
	bucketDocChunks   = []byte("doc_chunks")
	bucketImports     = []byte("imports")
	bucketParseErrors = []byte("parse_errors")
	keyStats          = []byte("corpus_stats")
)

var allBuckets = [][]byte{bucketDocs, bucketChunks, bucketBlobs, bucketStats, bucketDocChunks, bucketImports, bucketParseErrors}

type BoltStore struct {
	db *bbolt.DB
}

var _ port.IndexStore = (*BoltStore)(nil)

func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range allBuckets {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

type docMeta struct {
	Path    string `json:"path"`
	ModTime int64  `json:"mod_time"`
	Lang    string `json:"lang"`
}

// chunkMeta is everything but the code, which lives in the blobs bucket.
type chunkMeta struct {
	Symbol    string           `json:"symbol"`
	StartLine int              `json:"start_line"`
	EndLine   int              `json:"end_line"`
	Kind      domain.ChunkKind `json:"chunk_kind"`
	FileID    string           `json:"file_id"`
	FilePath  string           `json:"file_path"`
	Language  string           `json:"language"`
	Metadata  map[string]any   `json:"metadata"`
}

func newChunkMeta(c domain.Chunk) chunkMeta {
	return chunkMeta{
		Symbol:    c.Symbol,
		StartLine: c.StartLine,
		EndLine:   c.EndLine,
		Kind:      c.Kind,
		FileID:    c.FileID,
		FilePath:  c.FilePath,
		Language:  c.Language,
		Metadata:  c.Metadata,
	}
}

func (m chunkMeta) chunk(id string, code []byte) domain.Chunk {
	return domain.Chunk{
		ID:        id,
		Symbol:    m.Symbol,
		StartLine: m.StartLine,
		EndLine:   m.EndLine,
		Code:      string(code),
		Kind:      m.Kind,
		FileID:    m.FileID,
		FilePath:  m.FilePath,
		Language:  m.Language,
		Metadata:  m.Metadata,
	}
}

func decodeDoc(id string, data []byte) (domain.Document, error) {
	var meta docMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return domain.Document{}, err
	}
	return domain.Document{
		ID:      id,
		Path:    meta.Path,
		ModTime: time.Unix(meta.ModTime, 0),
		Lang:    meta.Lang,
	}, nil
}

func (s *BoltStore) GetDoc(id string) (domain.Document, error) {
	var doc domain.Document
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketDocs).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("document not found: %s", id)
		}
		var err error
		doc, err = decodeDoc(id, data)
		return err
	})
	return doc, err
}

func (s *BoltStore) DeleteDoc(id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := deleteChunks(tx, id); err != nil {
			return err
		}
		if err := tx.Bucket(bucketImports).Delete([]byte(id)); err != nil {
			return err
		}
		if err := tx.Bucket(bucketParseErrors).Delete([]byte(id)); err != nil {
			return err
		}
		return tx.Bucket(bucketDocs).Delete([]byte(id))
	})
}

func (s *BoltStore) ListDocs() ([]domain.Document, error) {
	var docs []domain.Document
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketDocs).ForEach(func(k, v []byte) error {
			doc, err := decodeDoc(string(k), v)
			if err != nil {
				return err
			}
			docs = append(docs, doc)
			return nil
		})
	})
	return docs, err
}

func (s *BoltStore) GetChunk(id string) (domain.Chunk, error) {
	var chunk domain.Chunk
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketChunks).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("chunk not found: %s", id)
		}
		var meta chunkMeta
		if err := json.Unmarshal(data, &meta); err != nil {
			return err
		}
		chunk = meta.chunk(id, tx.Bucket(bucketBlobs).Get([]byte(id)))
		return nil
	})
	return chunk, err
}

// GetChunksByDoc returns a document's chunks in extraction order.
func (s *BoltStore) GetChunksByDoc(docID string) ([]domain.Chunk, error) {
	var chunks []domain.Chunk
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketDocChunks).Get([]byte(docID))
		if data == nil {
			return nil
		}
		var chunkIDs []string
		if err := json.Unmarshal(data, &chunkIDs); err != nil {
			return err
		}
		chunkBucket := tx.Bucket(bucketChunks)
		blobBucket := tx.Bucket(bucketBlobs)
		for _, id := range chunkIDs {
			data := chunkBucket.Get([]byte(id))
			if data == nil {
				continue
			}
			var meta chunkMeta
			if err := json.Unmarshal(data, &meta); err != nil {
				continue
			}
			chunks = append(chunks, meta.chunk(id, blobBucket.Get([]byte(id))))
		}
		return nil
	})
	return chunks, err
}

// FindChunks scans every stored chunk. Results are ordered by path and
// start line.
func (s *BoltStore) FindChunks(filter port.ChunkFilter) ([]domain.Chunk, error) {
	var chunks []domain.Chunk
	err := s.db.View(func(tx *bbolt.Tx) error {
		blobBucket := tx.Bucket(bucketBlobs)
		return tx.Bucket(bucketChunks).ForEach(func(k, v []byte) error {
			var meta chunkMeta
			if err := json.Unmarshal(v, &meta); err != nil {
				return nil
			}
			c := meta.chunk(string(k), blobBucket.Get(k))
			if filter.Matches(c) {
				chunks = append(chunks, c)
			}
			return nil
		})
	})
	sortChunks(chunks)
	return chunks, err
}

func sortChunks(chunks []domain.Chunk) {
	sort.SliceStable(chunks, func(i, j int) bool {
		if chunks[i].FilePath != chunks[j].FilePath {
			return chunks[i].FilePath < chunks[j].FilePath
		}
		if chunks[i].StartLine != chunks[j].StartLine {
			return chunks[i].StartLine < chunks[j].StartLine
		}
		return chunks[i].Symbol < chunks[j].Symbol
	})
}

func (s *BoltStore) GetImports(docID string) ([]string, error) {
	return s.getStrings(bucketImports, docID)
}

func (s *BoltStore) GetParseErrors(docID string) ([]string, error) {
	return s.getStrings(bucketParseErrors, docID)
}

func (s *BoltStore) getStrings(bucket []byte, docID string) ([]string, error) {
	var out []string
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucket).Get([]byte(docID))
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, &out)
	})
	return out, err
}

func (s *BoltStore) GetStats() (domain.Stats, error) {
	var stats domain.Stats
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketStats).Get(keyStats)
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, &stats)
	})
	return stats, err
}

func (s *BoltStore) UpdateStats(stats domain.Stats) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(stats)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketStats).Put(keyStats, data)
	})
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

// BatchIndex writes all files in one transaction. Chunks already stored for
// a document are replaced.
func (s *BoltStore) BatchIndex(files []port.IndexedFile) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		docsBucket := tx.Bucket(bucketDocs)
		chunksBucket := tx.Bucket(bucketChunks)
		blobsBucket := tx.Bucket(bucketBlobs)
		docChunksBucket := tx.Bucket(bucketDocChunks)

		for _, file := range files {
			docID := []byte(file.Doc.ID)
			if err := deleteChunks(tx, file.Doc.ID); err != nil {
				return err
			}

			data, err := json.Marshal(docMeta{
				Path:    file.Doc.Path,
				ModTime: file.Doc.ModTime.Unix(),
				Lang:    file.Doc.Lang,
			})
			if err != nil {
				return err
			}
			if err := docsBucket.Put(docID, data); err != nil {
				return err
			}

			chunkIDs := make([]string, 0, len(file.Chunks))
			for _, chunk := range file.Chunks {
				data, err := json.Marshal(newChunkMeta(chunk))
				if err != nil {
					return err
				}
				if err := chunksBucket.Put([]byte(chunk.ID), data); err != nil {
					return err
				}
				if err := blobsBucket.Put([]byte(chunk.ID), []byte(chunk.Code)); err != nil {
					return err
				}
				chunkIDs = append(chunkIDs, chunk.ID)
			}

			if err := putJSON(docChunksBucket, docID, chunkIDs); err != nil {
				return err
			}
			if err := putJSON(tx.Bucket(bucketImports), docID, file.Imports); err != nil {
				return err
			}
			if err := putJSON(tx.Bucket(bucketParseErrors), docID, file.Errors); err != nil {
				return err
			}
		}
		return nil
	})
}

func putJSON(b *bbolt.Bucket, key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return b.Put(key, data)
}

func deleteChunks(tx *bbolt.Tx, docID string) error {
	docChunks := tx.Bucket(bucketDocChunks)
	data := docChunks.Get([]byte(docID))
	if data == nil {
		return nil
	}
	var chunkIDs []string
	if err := json.Unmarshal(data, &chunkIDs); err != nil {
		return err
	}
	chunkBucket := tx.Bucket(bucketChunks)
	blobBucket := tx.Bucket(bucketBlobs)
	for _, id := range chunkIDs {
		if err := chunkBucket.Delete([]byte(id)); err != nil {
			return err
		}
		if err := blobBucket.Delete([]byte(id)); err != nil {
			return err
		}
	}
	return docChunks.Delete([]byte(docID))
}
