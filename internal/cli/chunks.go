package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"tcpou/config"
	"tcpou/internal/adapter/store"
	"tcpou/internal/domain"
	"tcpou/internal/port"
)

var (
	chunksSymbol string
	chunksKind   string
	chunksFile   string
	chunksJSON   bool
	chunksCode   bool
)

var chunksCmd = &cobra.Command{
	Use:   "chunks",
	Short: "List indexed chunks",
	Long: `List chunks stored in the index, optionally filtered by symbol, kind or file.

Examples:
  tcpou chunks --symbol FB_Motor
  tcpou chunks --kind METHOD --json
  tcpou chunks --file POUs/MAIN.TcPOU --code`,
	RunE: runChunks,
}

func init() {
	rootCmd.AddCommand(chunksCmd)
	chunksCmd.Flags().StringVarP(&chunksSymbol, "symbol", "s", "", "case-insensitive symbol substring")
	chunksCmd.Flags().StringVarP(&chunksKind, "kind", "k", "", "chunk kind (PROGRAM, METHOD, FIELD, BLOCK, ...)")
	chunksCmd.Flags().StringVarP(&chunksFile, "file", "f", "", "only chunks of this file")
	chunksCmd.Flags().BoolVar(&chunksJSON, "json", false, "output as JSON")
	chunksCmd.Flags().BoolVar(&chunksCode, "code", false, "print chunk code")
}

func runChunks(cmd *cobra.Command, args []string) error {
	rootDir := GetRootDir()

	dbPath := config.IndexDBPath(rootDir)
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return fmt.Errorf("no index found. Run 'tcpou index' first")
	}

	st, err := store.NewBoltStore(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open index: %w", err)
	}
	defer st.Close()

	filter := port.ChunkFilter{
		Symbol: chunksSymbol,
		Kind:   domain.ChunkKind(strings.ToUpper(chunksKind)),
	}
	if chunksFile != "" {
		path := chunksFile
		if !filepath.IsAbs(path) {
			path = filepath.Join(rootDir, path)
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("invalid path: %w", err)
		}
		filter.Path = abs
	}

	chunks, err := st.FindChunks(filter)
	if err != nil {
		return fmt.Errorf("failed to read chunks: %w", err)
	}

	out := cmd.OutOrStdout()
	if chunksJSON {
		if chunks == nil {
			chunks = []domain.Chunk{}
		}
		return writeJSON(out, chunks)
	}

	var lastPath string
	for _, c := range chunks {
		if c.FilePath != lastPath {
			rel, err := filepath.Rel(rootDir, c.FilePath)
			if err != nil {
				rel = c.FilePath
			}
			fmt.Fprintf(out, "\n%s\n", rel)
			lastPath = c.FilePath
		}
		fmt.Fprintf(out, "  ")
		printChunks(out, []domain.Chunk{c}, chunksCode)
	}
	if len(chunks) == 0 {
		fmt.Fprintln(out, "No chunks found.")
	}
	return nil
}
