package port

import "tcpou/internal/domain"

// Extractor turns one source file into chunks. Implementations keep the
// grammar errors of the most recent call, so one value must not be shared
// between goroutines.
type Extractor interface {
	ParseSource(path, content string) ([]domain.Chunk, error)

	Errors() []string

	ExtractImports(content string) []string
}
