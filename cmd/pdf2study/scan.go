package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thywilljoshua/pdf-to-study/internal/scan"
)

func scanCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "scan [glob...]",
		Short: "Check generated pages for placeholders and broken structure",
		Long: `Scan reviews generated pages before they are shared: placeholder text,
generic filler, unbalanced markup, quizzes without exactly one correct answer,
unknown mermaid diagrams, charts without init code and unbalanced math.

Globs are relative to the configured root and default to html/**/*_interactive.html.
The command fails when any error-level finding is reported.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			patterns := args
			if len(patterns) == 0 {
				patterns = scan.DefaultPatterns
			}
			findings, files, err := scan.Paths(a.cfg.Root, patterns...)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, f := range findings {
				fmt.Fprintln(out, f.String())
			}
			fmt.Fprintf(out, "Scanned %d files, %d findings\n", files, len(findings))
			if scan.HasErrors(findings) {
				return fmt.Errorf("scan failed")
			}
			return nil
		},
	}
}
