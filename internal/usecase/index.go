package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"tcpou/internal/adapter/cache"
	"tcpou/internal/adapter/fs"
	"tcpou/internal/adapter/twincat"
	"tcpou/internal/domain"
	"tcpou/internal/port"
)

// ExtractorFactory builds one extractor per worker.
type ExtractorFactory func() port.Extractor

// ProgressFunc is called once per extracted file, from a single goroutine.
type ProgressFunc func(processed, total int, currentFile string)

// IndexUseCase handles file indexing operations.
type IndexUseCase struct {
	store        port.IndexStore
	walker       port.FileWalker
	newExtractor ExtractorFactory
	imports      *cache.ImportCache
	workers      int
	log          logrus.FieldLogger
}

// NewIndexUseCase creates a new index use case.
func NewIndexUseCase(
	store port.IndexStore,
	walker port.FileWalker,
	newExtractor ExtractorFactory,
	workers int,
	log logrus.FieldLogger,
) *IndexUseCase {
	if workers <= 0 {
		workers = 1
	}
	return &IndexUseCase{
		store:        store,
		walker:       walker,
		newExtractor: newExtractor,
		imports:      cache.NewImportCache(1024, time.Hour),
		workers:      workers,
		log:          log,
	}
}

// IndexResult contains the results of an indexing operation.
type IndexResult struct {
	FilesIndexed  int
	FilesSkipped  int
	FilesDeleted  int
	ChunksCreated int
	ParseErrors   int
	Errors        []string
}

type indexJob struct {
	file     port.FileInfo
	existing *domain.Document
}

type indexOutcome struct {
	job  indexJob
	file port.IndexedFile
	err  error
}

// Index indexes files in the given directory. Unchanged files are skipped
// and documents whose files disappeared are removed.
func (u *IndexUseCase) Index(ctx context.Context, root string, progress ProgressFunc) (*IndexResult, error) {
	result := &IndexResult{}

	files, err := u.walker.Walk(root)
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	existingDocs, err := u.store.ListDocs()
	if err != nil {
		return nil, fmt.Errorf("failed to list existing docs: %w", err)
	}
	existingMap := make(map[string]domain.Document, len(existingDocs))
	for _, doc := range existingDocs {
		existingMap[doc.Path] = doc
	}

	seenPaths := make(map[string]bool, len(files))
	var jobs []indexJob
	for _, file := range files {
		seenPaths[file.Path] = true
		if existing, ok := existingMap[file.Path]; ok {
			if existing.ModTime.Unix() >= file.ModTime {
				result.FilesSkipped++
				continue
			}
			jobs = append(jobs, indexJob{file: file, existing: &existing})
			continue
		}
		jobs = append(jobs, indexJob{file: file})
	}

	outcomes := u.extractAll(ctx, jobs, progress)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var batch []port.IndexedFile
	for _, o := range outcomes {
		if o.err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("failed to index %s: %v", o.job.file.Path, o.err))
			u.log.WithError(o.err).WithField("path", o.job.file.Path).Warn("skipping file")
			if o.job.existing != nil {
				if err := u.store.DeleteDoc(o.job.existing.ID); err != nil {
					result.Errors = append(result.Errors, fmt.Sprintf("failed to delete old data for %s: %v", o.job.file.Path, err))
				}
			}
			continue
		}
		batch = append(batch, o.file)
		result.FilesIndexed++
		result.ChunksCreated += len(o.file.Chunks)
		result.ParseErrors += len(o.file.Errors)
	}

	if len(batch) > 0 {
		if err := u.store.BatchIndex(batch); err != nil {
			return nil, fmt.Errorf("failed to store index: %w", err)
		}
	}

	for path, doc := range existingMap {
		if seenPaths[path] {
			continue
		}
		if err := u.store.DeleteDoc(doc.ID); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("failed to delete %s: %v", path, err))
			continue
		}
		result.FilesDeleted++
	}

	stats, err := u.corpusStats()
	if err != nil {
		return nil, fmt.Errorf("failed to compute stats: %w", err)
	}
	if err := u.store.UpdateStats(stats); err != nil {
		return nil, fmt.Errorf("failed to update stats: %w", err)
	}

	u.log.WithFields(logrus.Fields{
		"indexed": result.FilesIndexed,
		"skipped": result.FilesSkipped,
		"deleted": result.FilesDeleted,
		"chunks":  result.ChunksCreated,
	}).Info("index updated")

	return result, nil
}

// extractAll runs the jobs on a fixed pool of workers. Each worker owns its
// extractor; the import cache is shared. Outcomes are sorted by path.
func (u *IndexUseCase) extractAll(ctx context.Context, jobs []indexJob, progress ProgressFunc) []indexOutcome {
	if len(jobs) == 0 {
		return nil
	}

	jobCh := make(chan indexJob)
	outCh := make(chan indexOutcome)

	var workersWg sync.WaitGroup
	for i := 0; i < min(u.workers, len(jobs)); i++ {
		workersWg.Add(1)
		go func() {
			defer workersWg.Done()
			ex := u.newExtractor()
			imports := cache.NewCachedImports(ex, u.imports)
			for job := range jobCh {
				file, err := extractFile(ex, imports, job.file)
				outCh <- indexOutcome{job: job, file: file, err: err}
			}
		}()
	}

	go func() {
		defer close(jobCh)
		for _, job := range jobs {
			select {
			case jobCh <- job:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		workersWg.Wait()
		close(outCh)
	}()

	outcomes := make([]indexOutcome, 0, len(jobs))
	for o := range outCh {
		outcomes = append(outcomes, o)
		if progress != nil {
			progress(len(outcomes), len(jobs), o.job.file.Path)
		}
	}

	sort.Slice(outcomes, func(i, j int) bool {
		return outcomes[i].job.file.Path < outcomes[j].job.file.Path
	})
	return outcomes
}

func extractFile(ex port.Extractor, imports *cache.CachedImports, file port.FileInfo) (port.IndexedFile, error) {
	content, err := fs.ReadFile(file.Path)
	if err != nil {
		return port.IndexedFile{}, fmt.Errorf("failed to read file: %w", err)
	}

	chunks, err := ex.ParseSource(file.Path, content)
	if err != nil {
		return port.IndexedFile{}, err
	}
	parseErrors := ex.Errors()

	return port.IndexedFile{
		Doc: domain.Document{
			ID:      twincat.FileID(file.Path),
			Path:    file.Path,
			ModTime: time.Unix(file.ModTime, 0),
			Lang:    twincat.DetectLanguage(file.Path),
		},
		Chunks:  chunks,
		Imports: imports.Imports(file.Path, content),
		Errors:  parseErrors,
	}, nil
}

func (u *IndexUseCase) corpusStats() (domain.Stats, error) {
	docs, err := u.store.ListDocs()
	if err != nil {
		return domain.Stats{}, err
	}
	stats := domain.Stats{TotalDocs: len(docs)}
	for _, doc := range docs {
		chunks, err := u.store.GetChunksByDoc(doc.ID)
		if err != nil {
			return domain.Stats{}, err
		}
		stats.TotalChunks += len(chunks)
		errs, err := u.store.GetParseErrors(doc.ID)
		if err != nil {
			return domain.Stats{}, err
		}
		stats.ParseErrors += len(errs)
	}
	return stats, nil
}
