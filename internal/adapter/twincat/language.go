package twincat

import (
	"path/filepath"
	"strings"

	"tcpou/internal/domain"
)

const Extension = ".tcpou"

// DetectLanguage returns the language tag for path, or "" when the file is
// not a TcPOU document. The extension match ignores case.
func DetectLanguage(path string) string {
	if strings.EqualFold(filepath.Ext(path), Extension) {
		return domain.LanguageTwinCAT
	}
	return ""
}
