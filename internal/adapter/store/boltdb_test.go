package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"

	"tcpou/config"
	"tcpou/internal/domain"
	"tcpou/internal/port"
)

func openStore(t *testing.T) *BoltStore {
	t.Helper()
	s, err := NewBoltStore(filepath.Join(t.TempDir(), "index.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleFile(docID, path string) port.IndexedFile {
	return port.IndexedFile{
		Doc: domain.Document{ID: docID, Path: path, ModTime: time.Unix(1700000000, 0), Lang: domain.LanguageTwinCAT},
		Chunks: []domain.Chunk{
			{
				ID: docID + "-1", Symbol: "FB_Motor", StartLine: 4, EndLine: 12,
				Code: "FUNCTION_BLOCK FB_Motor", Kind: domain.KindFunctionBlock,
				FileID: docID, FilePath: path, Language: domain.LanguageTwinCAT,
				Metadata: map[string]any{"kind": "function_block", "pou_name": "FB_Motor"},
			},
			{
				ID: docID + "-2", Symbol: "FB_Motor.bRunning", StartLine: 6, EndLine: 6,
				Code: "bRunning : BOOL;", Kind: domain.KindField,
				FileID: docID, FilePath: path, Language: domain.LanguageTwinCAT,
				Metadata: map[string]any{"var_class": "output", "retain": false, "hw_address": nil},
			},
		},
		Imports: []string{"EXTENDS FB_Base"},
		Errors:  []string{"Implementation parse error in FB_Motor: boom"},
	}
}

func TestBoltStore_BatchIndexRoundTrip(t *testing.T) {
	s := openStore(t)
	require.NoError(t, s.BatchIndex([]port.IndexedFile{sampleFile("doc1", "/p/FB_Motor.TcPOU")}))

	doc, err := s.GetDoc("doc1")
	require.NoError(t, err)
	assert.Equal(t, "/p/FB_Motor.TcPOU", doc.Path)
	assert.Equal(t, int64(1700000000), doc.ModTime.Unix())

	chunks, err := s.GetChunksByDoc("doc1")
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, "FB_Motor", chunks[0].Symbol)
	assert.Equal(t, "FUNCTION_BLOCK FB_Motor", chunks[0].Code)
	assert.Equal(t, domain.KindField, chunks[1].Kind)
	assert.Equal(t, "output", chunks[1].Metadata["var_class"])
	assert.Equal(t, false, chunks[1].Metadata["retain"])
	assert.Contains(t, chunks[1].Metadata, "hw_address")

	c, err := s.GetChunk("doc1-2")
	require.NoError(t, err)
	assert.Equal(t, "bRunning : BOOL;", c.Code)

	imports, err := s.GetImports("doc1")
	require.NoError(t, err)
	assert.Equal(t, []string{"EXTENDS FB_Base"}, imports)

	errs, err := s.GetParseErrors("doc1")
	require.NoError(t, err)
	assert.Len(t, errs, 1)
}

func TestBoltStore_ReindexReplacesChunks(t *testing.T) {
	s := openStore(t)
	require.NoError(t, s.BatchIndex([]port.IndexedFile{sampleFile("doc1", "/p/a.TcPOU")}))

	f := sampleFile("doc1", "/p/a.TcPOU")
	f.Chunks = f.Chunks[:1]
	f.Chunks[0].ID = "doc1-new"
	require.NoError(t, s.BatchIndex([]port.IndexedFile{f}))

	chunks, err := s.GetChunksByDoc("doc1")
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "doc1-new", chunks[0].ID)

	_, err = s.GetChunk("doc1-1")
	assert.Error(t, err)
}

func TestBoltStore_DeleteDoc(t *testing.T) {
	s := openStore(t)
	require.NoError(t, s.BatchIndex([]port.IndexedFile{
		sampleFile("doc1", "/p/a.TcPOU"),
		sampleFile("doc2", "/p/b.TcPOU"),
	}))

	require.NoError(t, s.DeleteDoc("doc1"))

	_, err := s.GetDoc("doc1")
	assert.Error(t, err)
	chunks, err := s.GetChunksByDoc("doc1")
	require.NoError(t, err)
	assert.Empty(t, chunks)
	imports, err := s.GetImports("doc1")
	require.NoError(t, err)
	assert.Empty(t, imports)

	docs, err := s.ListDocs()
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "doc2", docs[0].ID)
}

func TestBoltStore_FindChunks(t *testing.T) {
	s := openStore(t)
	require.NoError(t, s.BatchIndex([]port.IndexedFile{
		sampleFile("doc2", "/p/b.TcPOU"),
		sampleFile("doc1", "/p/a.TcPOU"),
	}))

	all, err := s.FindChunks(port.ChunkFilter{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "/p/a.TcPOU", all[0].FilePath)
	assert.Equal(t, 4, all[0].StartLine)

	fields, err := s.FindChunks(port.ChunkFilter{Kind: domain.KindField})
	require.NoError(t, err)
	assert.Len(t, fields, 2)

	bySymbol, err := s.FindChunks(port.ChunkFilter{Symbol: "brunning", Path: "/p/b.TcPOU"})
	require.NoError(t, err)
	require.Len(t, bySymbol, 1)
	assert.Equal(t, "doc2-2", bySymbol[0].ID)
}

func TestBoltStore_Stats(t *testing.T) {
	s := openStore(t)
	stats, err := s.GetStats()
	require.NoError(t, err)
	assert.Zero(t, stats.TotalDocs)

	require.NoError(t, s.UpdateStats(domain.Stats{TotalDocs: 3, TotalChunks: 40, ParseErrors: 1}))
	stats, err = s.GetStats()
	require.NoError(t, err)
	assert.Equal(t, domain.Stats{TotalDocs: 3, TotalChunks: 40, ParseErrors: 1}, stats)
}

func TestBoltStore_PrepareFreshStore(t *testing.T) {
	s := openStore(t)
	cfg := config.DefaultConfig()

	changed, err := s.Prepare(cfg, false)
	require.NoError(t, err)
	assert.Empty(t, changed)

	schema, err := s.Schema()
	require.NoError(t, err)
	assert.Equal(t, Schema{Version: CurrentSchemaVersion, ConfigHash: ComputeConfigHash(cfg)}, schema)
	assert.Len(t, upgrades, CurrentSchemaVersion)
}

func TestBoltStore_PrepareKeepsDataForSameConfig(t *testing.T) {
	s := openStore(t)
	cfg := config.DefaultConfig()
	_, err := s.Prepare(cfg, false)
	require.NoError(t, err)
	require.NoError(t, s.BatchIndex([]port.IndexedFile{sampleFile("doc1", "/p/a.TcPOU")}))

	rebuild, _, err := s.NeedsRebuild(cfg)
	require.NoError(t, err)
	assert.False(t, rebuild)

	changed, err := s.Prepare(cfg, false)
	require.NoError(t, err)
	assert.Empty(t, changed)
	docs, err := s.ListDocs()
	require.NoError(t, err)
	assert.Len(t, docs, 1)

	changed, err = s.Prepare(cfg, true)
	require.NoError(t, err)
	assert.Equal(t, "cleared: rebuild requested", changed)
	docs, err = s.ListDocs()
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestBoltStore_PrepareClearsOnConfigChange(t *testing.T) {
	s := openStore(t)
	_, err := s.Prepare(config.DefaultConfig(), false)
	require.NoError(t, err)
	require.NoError(t, s.BatchIndex([]port.IndexedFile{sampleFile("doc1", "/p/a.TcPOU")}))

	changed := config.DefaultConfig()
	changed.Index.Excludes = append(changed.Index.Excludes, "**/Test/**")
	rebuild, reason, err := s.NeedsRebuild(changed)
	require.NoError(t, err)
	assert.True(t, rebuild)
	assert.Equal(t, "index configuration changed", reason)

	msg, err := s.Prepare(changed, false)
	require.NoError(t, err)
	assert.Equal(t, "cleared: index configuration changed", msg)
	docs, err := s.ListDocs()
	require.NoError(t, err)
	assert.Empty(t, docs)

	rebuild, _, err = s.NeedsRebuild(changed)
	require.NoError(t, err)
	assert.False(t, rebuild)
}

func TestBoltStore_PrepareUpgradesAndRebuilds(t *testing.T) {
	cfg := config.DefaultConfig()
	setSchema := func(s *BoltStore, schema Schema) {
		require.NoError(t, s.db.Update(func(tx *bbolt.Tx) error {
			return putJSON(tx.Bucket(bucketStats), keySchema, schema)
		}))
	}

	s := openStore(t)
	setSchema(s, Schema{Version: 1, ConfigHash: ComputeConfigHash(cfg)})
	require.NoError(t, s.BatchIndex([]port.IndexedFile{sampleFile("doc1", "/p/a.TcPOU")}))
	msg, err := s.Prepare(cfg, false)
	require.NoError(t, err)
	assert.Equal(t, "upgraded schema v1 to v2", msg)
	docs, err := s.ListDocs()
	require.NoError(t, err)
	assert.Empty(t, docs, "v1 documents are re-extracted")

	setSchema(s, Schema{Version: CurrentSchemaVersion + 1})
	rebuild, reason, err := s.NeedsRebuild(cfg)
	require.NoError(t, err)
	assert.True(t, rebuild)
	assert.Contains(t, reason, "newer version")
	_, err = s.Prepare(cfg, false)
	require.NoError(t, err)
	schema, err := s.Schema()
	require.NoError(t, err)
	assert.Equal(t, CurrentSchemaVersion, schema.Version)
}

func TestBoltStore_ClearKeepsSchema(t *testing.T) {
	s := openStore(t)
	cfg := config.DefaultConfig()
	require.NoError(t, s.Migrate(cfg))
	require.NoError(t, s.BatchIndex([]port.IndexedFile{sampleFile("doc1", "/p/a.TcPOU")}))
	require.NoError(t, s.UpdateStats(domain.Stats{TotalDocs: 1}))

	require.NoError(t, s.Clear())

	docs, err := s.ListDocs()
	require.NoError(t, err)
	assert.Empty(t, docs)
	stats, err := s.GetStats()
	require.NoError(t, err)
	assert.Zero(t, stats.TotalDocs)

	schema, err := s.Schema()
	require.NoError(t, err)
	assert.Equal(t, CurrentSchemaVersion, schema.Version)
	assert.Equal(t, ComputeConfigHash(cfg), schema.ConfigHash)
}

func TestComputeConfigHash_PipelineSettingsDoNotMatter(t *testing.T) {
	a := config.DefaultConfig()
	b := config.DefaultConfig()
	b.Pipeline.MaxChunkSize = 99
	assert.Equal(t, ComputeConfigHash(a), ComputeConfigHash(b))
}
