package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thywilljoshua/pdf-to-study/internal/lectures"
)

func lecturesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lectures",
		Short: "Maintain the lecture index the portal reads",
	}
	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Rewrite html/lectures.json from html/ and pdfs/",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, list, err := lectures.Sync(a.cfg.Root)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, l := range list {
				pdf := dateStyle.Render("no pdf")
				if l.PDFPath != nil {
					pdf = idStyle.Render(*l.PDFPath)
				}
				fmt.Fprintf(out, "  %s  %s\n", titleStyle.Render(l.Title), pdf)
			}
			fmt.Fprintf(out, "✅ Wrote %s (%s)\n", path, countStyle.Render(fmt.Sprintf("%d lectures", len(list))))
			return nil
		},
	}
	cmd.AddCommand(syncCmd)
	return cmd
}
