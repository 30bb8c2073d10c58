package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thywilljoshua/pdf-to-study/internal/ai"
	"github.com/thywilljoshua/pdf-to-study/internal/generate"
	"github.com/thywilljoshua/pdf-to-study/internal/lectures"
	"github.com/thywilljoshua/pdf-to-study/internal/progress"
)

func generateCmd(a *app) *cobra.Command {
	var (
		expander    string
		model       string
		maxConcepts int
		noSync      bool
	)
	cmd := &cobra.Command{
		Use:   "generate <extracted-dir> [output.html]",
		Short: "Generate an interactive study page from an extracted lecture",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]
			gc := a.cfg.Generate
			if expander == "" {
				expander = gc.Expander
			}
			if model == "" {
				model = gc.Model
			}
			if maxConcepts <= 0 {
				maxConcepts = gc.MaxConcepts
			}

			out := ""
			if len(args) == 2 {
				out = args[1]
			} else {
				name := filepath.Base(filepath.Clean(dir))
				out = a.path(filepath.Join(gc.OutputDir, name+"_interactive.html"))
			}

			exp, closeFn, err := a.expander(cmd.Context(), expander, model)
			if err != nil {
				return err
			}
			defer closeFn()

			fmt.Fprintf(cmd.OutOrStdout(), "🚀 Generating interactive page from: %s\n", dir)
			res, err := generate.Run(cmd.Context(), dir, out, generate.Options{
				Expander:    exp,
				MaxConcepts: maxConcepts,
				Progress:    progress.New(),
				Logger:      a.log,
				PDFDir:      a.path(gc.PDFDir),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ %s: %d concepts, %d bytes\n", res.Title, res.Concepts, res.Bytes)
			fmt.Fprintf(cmd.OutOrStdout(), "📁 Output: %s\n", res.Path)

			if !noSync {
				if path, list, err := lectures.Sync(a.cfg.Root); err != nil {
					a.log.Warn("lecture index not updated", "err", err)
				} else {
					a.log.Debug("lecture index updated", "path", path, "count", len(list))
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&expander, "expander", "", "content expander: gemini|provider|none (default from config)")
	cmd.Flags().StringVar(&model, "model", "", "Gemini model for --expander gemini")
	cmd.Flags().IntVar(&maxConcepts, "max-concepts", 0, "maximum concepts to expand")
	cmd.Flags().BoolVar(&noSync, "no-sync", false, "skip rewriting html/lectures.json")
	return cmd
}

// expander builds the content expander. A Gemini expander without a key
// falls back to static content so a page can still be produced offline.
func (a *app) expander(ctx context.Context, kind, model string) (ai.Expander, func(), error) {
	noop := func() {}
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", "none", "off":
		return ai.Noop{}, noop, nil
	case "gemini":
		g, err := ai.NewGemini(ctx, a.cfg.Relay.APIKey, model, ai.WithJSONResponses())
		if err != nil {
			a.log.Warn("gemini unavailable, generating without AI expansion", "err", err)
			return ai.Noop{}, noop, nil
		}
		return ai.NewPromptExpander(g), noop, nil
	case "provider":
		db, configs, err := a.openProfile()
		if err != nil {
			return nil, noop, err
		}
		d, err := ai.NewDispatcher(configs.Get(), ai.WithBaseURL(a.localServerURL()))
		if err != nil {
			db.Close()
			return nil, noop, err
		}
		return ai.NewPromptExpander(d), func() { db.Close() }, nil
	}
	return nil, noop, fmt.Errorf("unknown expander %q (want gemini, provider or none)", kind)
}
