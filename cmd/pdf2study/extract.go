package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thywilljoshua/pdf-to-study/internal/extract"
	"github.com/thywilljoshua/pdf-to-study/internal/progress"
)

func extractCmd(a *app) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "extract <pdf>",
		Short: "Extract text blocks, formulas and tables from a lecture PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pdfPath := args[0]
			if out == "" {
				out = a.path(extract.DefaultOutDir(pdfPath))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "🔍 Extracting content from: %s\n", pdfPath)
			doc, err := extract.Run(cmd.Context(), pdfPath, extract.Options{
				OutDir:   out,
				Progress: progress.New(),
				Logger:   a.log,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ Extracted %d pages, %d tables, %d formulas\n",
				len(doc.Pages), doc.TotalTables, doc.TotalFormulas)
			fmt.Fprintf(cmd.OutOrStdout(), "📁 Output: %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output directory (default: extracted/<pdf name>)")
	return cmd
}
