package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"tcpou/internal/adapter/fs"
	"tcpou/internal/adapter/twincat"
	"tcpou/internal/domain"
)

var (
	extractJSON     bool
	extractPipeline bool
	extractCode     bool
)

var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Extract chunks from a single .TcPOU file",
	Long: `Parse one .TcPOU file and print the chunks it yields. Grammar errors are
logged as warnings and extraction continues with the remaining sections.

Examples:
  tcpou extract FB_Motor.TcPOU
  tcpou extract FB_Motor.TcPOU --json
  tcpou extract FB_Motor.TcPOU --pipeline   # batch with merge settings`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().BoolVar(&extractJSON, "json", false, "output chunks as JSON")
	extractCmd.Flags().BoolVar(&extractPipeline, "pipeline", false, "output a pipeline batch as JSON")
	extractCmd.Flags().BoolVar(&extractCode, "code", false, "print chunk code in text output")
}

func runExtract(cmd *cobra.Command, args []string) error {
	path := args[0]
	if twincat.DetectLanguage(path) == "" {
		log.WithField("path", path).Warn("file does not have a .TcPOU extension")
	}

	content, err := fs.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	parser := twincat.NewParser(
		twincat.WithLogger(log.WithField("path", path)),
		twincat.WithPipelineSettings(GetConfig().Pipeline.Settings()),
	)
	out := cmd.OutOrStdout()

	if extractPipeline {
		batch, err := parser.ExtractBatch(content)
		if err != nil {
			return err
		}
		return writeJSON(out, batch)
	}

	chunks, err := parser.ParseSource(path, content)
	if err != nil {
		return err
	}
	if extractJSON {
		return writeJSON(out, chunks)
	}

	printChunks(out, chunks, extractCode)
	if errs := parser.Errors(); len(errs) > 0 {
		fmt.Fprintf(out, "\n%d grammar error(s):\n", len(errs))
		for _, e := range errs {
			fmt.Fprintf(out, "  - %s\n", e)
		}
	}
	return nil
}

func printChunks(w io.Writer, chunks []domain.Chunk, withCode bool) {
	if len(chunks) == 0 {
		fmt.Fprintln(w, "No chunks found.")
		return
	}
	for _, c := range chunks {
		fmt.Fprintf(w, "%-15s %-48s L%d-%d\n", c.Kind, c.Symbol, c.StartLine, c.EndLine)
		if withCode {
			fmt.Fprintf(w, "%s\n\n", c.Code)
		}
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
