package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/neilberkman/tickr/internal/core/export"
)

var (
	exportOutput   string
	exportFormat   string
	exportTag      string
	exportActivity string
	exportSince    string
	exportUntil    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export entries as a Markdown report or CSV",
	Long: `Export entries to stdout or a file.

The Markdown report is rendered through a mustache template; drop an
export_template.mustache next to config.toml to replace the built-in one.
CSV columns: id, activity, description, tags, elapsed, start, end.

Examples:
  tickr export
  tickr export --since monday -o week.md
  tickr export --format csv --tag work -o work.csv`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file path (default: stdout)")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "", "md or csv (default: from the output extension, else md)")
	exportCmd.Flags().StringVar(&exportTag, "tag", "", "Only entries with this tag")
	exportCmd.Flags().StringVar(&exportActivity, "activity", "", "Only activities containing this text")
	exportCmd.Flags().StringVar(&exportSince, "since", "", "Only entries started at or after this time")
	exportCmd.Flags().StringVar(&exportUntil, "until", "", "Only entries started before this time")
}

// exportFormatFor picks the format from the flag, then the output extension
func exportFormatFor(flag, output string) (string, error) {
	format := strings.ToLower(strings.TrimPrefix(flag, "."))
	if format == "" {
		if strings.EqualFold(filepath.Ext(output), ".csv") {
			return export.FormatCSV, nil
		}
		return export.FormatMarkdown, nil
	}
	switch format {
	case export.FormatMarkdown, "markdown":
		return export.FormatMarkdown, nil
	case export.FormatCSV:
		return export.FormatCSV, nil
	}
	return "", fmt.Errorf("unknown format %q (want md or csv)", flag)
}

func runExport(cmd *cobra.Command, args []string) error {
	format, err := exportFormatFor(exportFormat, exportOutput)
	if err != nil {
		return err
	}
	now := time.Now()
	filter, err := buildFilter(exportTag, exportActivity, exportSince, exportUntil, 0, now)
	if err != nil {
		return err
	}

	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	entries, err := a.store.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load entries: %w", err)
	}
	entries = filter.Apply(entries)

	var w io.Writer = os.Stdout
	if exportOutput != "" {
		f, err := os.Create(exportOutput)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() {
			_ = f.Close()
		}()
		w = f
	}

	switch format {
	case export.FormatCSV:
		err = export.CSV(w, entries)
	default:
		err = export.Markdown(w, entries, export.Options{Template: a.cfg.ExportTemplate, Now: now})
	}
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	if exportOutput != "" {
		fmt.Fprintf(os.Stderr, "Exported %d entries to %s\n", len(entries), exportOutput)
	}
	return nil
}
