package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"tcpou/internal/adapter/fs"
	"tcpou/internal/adapter/twincat"
)

var importsJSON bool

var importsCmd = &cobra.Command{
	Use:   "imports <file>...",
	Short: "List the dependencies declared by .TcPOU files",
	Long: `Print EXTENDS and IMPLEMENTS targets, VAR_EXTERNAL references and the
user-defined types each file's declaration refers to.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runImports,
}

func init() {
	rootCmd.AddCommand(importsCmd)
	importsCmd.Flags().BoolVar(&importsJSON, "json", false, "output as JSON")
}

func runImports(cmd *cobra.Command, args []string) error {
	parser := twincat.NewParser(twincat.WithLogger(log))
	out := cmd.OutOrStdout()

	results := make(map[string][]string, len(args))
	for _, path := range args {
		content, err := fs.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		results[path] = parser.ExtractImports(content)
	}

	if importsJSON {
		return writeJSON(out, results)
	}
	for _, path := range args {
		fmt.Fprintf(out, "%s\n", path)
		for _, imp := range results[path] {
			fmt.Fprintf(out, "  %s\n", imp)
		}
	}
	return nil
}
