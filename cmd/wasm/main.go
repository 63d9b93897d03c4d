//go:build js && wasm

package main

import (
	"encoding/json"
	"syscall/js"
	"time"

	"tcpou/internal/adapter/memstore"
	"tcpou/internal/adapter/twincat"
	"tcpou/internal/domain"
	"tcpou/internal/port"
)

var (
	store  *memstore.MemoryStore
	parser *twincat.Parser
)

func init() {
	store = memstore.NewMemoryStore()
	parser = twincat.NewParser()
}

func main() {
	c := make(chan struct{})

	js.Global().Set("tcpouExtract", js.FuncOf(extractContent))
	js.Global().Set("tcpouPipeline", js.FuncOf(pipelineContent))
	js.Global().Set("tcpouImports", js.FuncOf(importsContent))
	js.Global().Set("tcpouIndex", js.FuncOf(indexContent))
	js.Global().Set("tcpouChunks", js.FuncOf(findChunks))
	js.Global().Set("tcpouClear", js.FuncOf(clearIndex))
	js.Global().Set("tcpouStats", js.FuncOf(getStats))

	<-c
}

func extractContent(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return makeError("usage: tcpouExtract(filename, content)")
	}

	chunks, err := parser.ParseSource(args[0].String(), args[1].String())
	if err != nil {
		return makeError(err.Error())
	}
	return makeResult(map[string]interface{}{
		"chunks": chunks,
		"errors": parser.Errors(),
	})
}

func pipelineContent(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return makeError("usage: tcpouPipeline(content)")
	}

	batch, err := parser.ExtractBatch(args[0].String())
	if err != nil {
		return makeError(err.Error())
	}
	result, _ := json.Marshal(batch)
	return string(result)
}

func importsContent(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return makeError("usage: tcpouImports(content)")
	}
	return makeResult(map[string]interface{}{
		"imports": parser.ExtractImports(args[0].String()),
	})
}

func indexContent(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return makeError("usage: tcpouIndex(filename, content)")
	}

	filename := args[0].String()
	content := args[1].String()

	chunks, err := parser.ParseSource(filename, content)
	if err != nil {
		return makeError("extraction failed: " + err.Error())
	}
	parseErrors := parser.Errors()

	err = store.BatchIndex([]port.IndexedFile{{
		Doc: domain.Document{
			ID:      twincat.FileID(filename),
			Path:    filename,
			ModTime: time.Now(),
			Lang:    domain.LanguageTwinCAT,
		},
		Chunks:  chunks,
		Imports: parser.ExtractImports(content),
		Errors:  parseErrors,
	}})
	if err != nil {
		return makeError("indexing failed: " + err.Error())
	}

	store.UpdateStats(computeStats())

	return makeResult(map[string]interface{}{
		"success":  true,
		"chunks":   len(chunks),
		"errors":   parseErrors,
		"filename": filename,
	})
}

func findChunks(this js.Value, args []js.Value) interface{} {
	var filter port.ChunkFilter
	if len(args) > 0 {
		filter.Symbol = args[0].String()
	}
	if len(args) > 1 {
		filter.Kind = domain.ChunkKind(args[1].String())
	}

	chunks, err := store.FindChunks(filter)
	if err != nil {
		return makeError("lookup failed: " + err.Error())
	}
	return makeResult(map[string]interface{}{
		"chunks": chunks,
	})
}

func clearIndex(this js.Value, args []js.Value) interface{} {
	store = memstore.NewMemoryStore()
	return makeResult(map[string]interface{}{
		"success": true,
	})
}

func getStats(this js.Value, args []js.Value) interface{} {
	stats, _ := store.GetStats()
	docs, _ := store.ListDocs()

	filenames := make([]string, len(docs))
	for i, doc := range docs {
		filenames[i] = doc.Path
	}

	return makeResult(map[string]interface{}{
		"totalDocs":   stats.TotalDocs,
		"totalChunks": stats.TotalChunks,
		"parseErrors": stats.ParseErrors,
		"files":       filenames,
	})
}

func computeStats() domain.Stats {
	docs, _ := store.ListDocs()
	stats := domain.Stats{TotalDocs: len(docs)}
	for _, doc := range docs {
		chunks, _ := store.GetChunksByDoc(doc.ID)
		stats.TotalChunks += len(chunks)
		errs, _ := store.GetParseErrors(doc.ID)
		stats.ParseErrors += len(errs)
	}
	return stats
}

func makeError(msg string) interface{} {
	result, _ := json.Marshal(map[string]interface{}{
		"error": msg,
	})
	return string(result)
}

func makeResult(data map[string]interface{}) interface{} {
	result, _ := json.Marshal(data)
	return string(result)
}
