package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/thywilljoshua/pdf-to-study/internal/ai"
	"github.com/thywilljoshua/pdf-to-study/internal/config"
)

func aiCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ai",
		Short: "Manage the AI provider used by the study pages",
	}

	providers := &cobra.Command{
		Use:   "providers",
		Short: "List supported AI providers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printProviders(cmd.OutOrStdout())
		},
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show the saved provider (the key is masked)",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, configs, err := a.openProfile()
			if err != nil {
				return err
			}
			defer db.Close()
			printAIConfig(cmd.OutOrStdout(), configs.Get())
			return nil
		},
	}

	configure := &cobra.Command{
		Use:   "configure",
		Short: "Choose a provider, model and key interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, configs, err := a.openProfile()
			if err != nil {
				return err
			}
			defer db.Close()
			cfg, err := config.RunAIWizard(configs.Get())
			if err != nil {
				return err
			}
			if err := configs.Save(cfg); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "✅ Saved AI settings")
			printAIConfig(cmd.OutOrStdout(), configs.Get())
			return nil
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Forget the saved provider and fall back to the config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, configs, err := a.openProfile()
			if err != nil {
				return err
			}
			defer db.Close()
			return configs.Clear()
		},
	}

	var contextFile, serverURL string
	ask := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask the configured provider a question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pageContext := ""
			if contextFile != "" {
				raw, err := os.ReadFile(contextFile)
				if err != nil {
					return fmt.Errorf("reading context: %w", err)
				}
				pageContext = string(raw)
			}
			if serverURL == "" {
				serverURL = a.localServerURL()
			}

			db, configs, err := a.openProfile()
			if err != nil {
				return err
			}
			defer db.Close()

			sess := ai.NewSession(configs, pageContext, ai.WithDispatchOptions(ai.WithBaseURL(serverURL)))
			answer, err := sess.Ask(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				if ai.IsConfig(err) {
					return fmt.Errorf("%w (run `pdf2study ai configure`)", err)
				}
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), answer)
			return nil
		},
	}
	ask.Flags().StringVar(&contextFile, "context-file", "", "text file used as lecture context, e.g. extracted/<name>/text/full_text.txt")
	ask.Flags().StringVar(&serverURL, "server", "", "running pdf2study server for the proxy provider (default: localhost on the configured port)")

	cmd.AddCommand(providers, show, configure, clearCmd, ask)
	return cmd
}

func printProviders(out io.Writer) error {
	fmt.Fprintln(out, headerStyle.Render("AI providers"))
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, p := range ai.Providers() {
		needs := []string{}
		if p.NeedsKey {
			needs = append(needs, "key")
		}
		if p.NeedsEndpoint {
			needs = append(needs, "endpoint")
		}
		models := "any"
		if len(p.Models) > 0 {
			models = strings.Join(p.Models, ", ")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			titleStyle.Render(p.ID),
			p.Label,
			dateStyle.Render(strings.Join(needs, "+")),
			idStyle.Render(models),
		)
	}
	return w.Flush()
}

func printAIConfig(out io.Writer, cfg ai.AIConfig) {
	r := cfg.Redacted()
	label := r.Provider
	if p, ok := ai.Lookup(r.Provider); ok {
		label = p.Label
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "provider\t%s\n", titleStyle.Render(label))
	fmt.Fprintf(w, "model\t%s\n", orDash(r.Model))
	fmt.Fprintf(w, "endpoint\t%s\n", orDash(r.Endpoint))
	fmt.Fprintf(w, "key\t%s\n", idStyle.Render(orDash(r.APIKey)))
	w.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
