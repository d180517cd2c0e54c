package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/bankfeed/internal/importer"
	"github.com/cleared-dev/bankfeed/internal/model"
)

const detectSampleRows = 3

func newDetectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "detect <file>",
		Short: "Show the detected column mapping of a bank CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}
			return runDetect(cmd.OutOrStdout(), string(data))
		},
	}
}

func runDetect(out io.Writer, text string) error {
	headers, rows, err := importer.Tokenize(text)
	if err != nil {
		return err
	}
	m := importer.DetectMapping(headers)

	fmt.Fprintf(out, "Headers: %s\n", strings.Join(headers, ", "))
	fmt.Fprintf(out, "Rows:    %d\n\n", len(rows))
	for _, f := range model.Fields {
		h := m.Get(f)
		if h == "" {
			h = "-"
		}
		fmt.Fprintf(out, "  %-12s %s\n", f, h)
	}

	if missing := m.Missing(); len(missing) > 0 {
		fmt.Fprintf(out, "\nMissing required fields: %v (use --map field=header)\n", missing)
	}

	if len(rows) > 0 {
		fmt.Fprintln(out, "\nSample:")
		for i, r := range rows {
			if i == detectSampleRows {
				break
			}
			fmt.Fprintf(out, "  %s\n", strings.Join(r, " | "))
		}
	}
	return nil
}
