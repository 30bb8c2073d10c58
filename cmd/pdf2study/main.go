package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/thywilljoshua/pdf-to-study/internal/ai"
	"github.com/thywilljoshua/pdf-to-study/internal/config"
	"github.com/thywilljoshua/pdf-to-study/internal/storage"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	cfgPath string
	envFile string
	verbose bool

	cfg *config.Config
	log *slog.Logger
}

func (a *app) load() error {
	if err := config.LoadEnvFile(a.envFile); err != nil {
		return err
	}
	cfg, err := config.Load(a.cfgPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	level := slog.LevelInfo
	if a.verbose {
		level = slog.LevelDebug
	}
	a.cfg = cfg
	a.log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(a.log)
	return nil
}

// path resolves p against the configured root unless it is absolute.
func (a *app) path(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(a.cfg.Root, p)
}

// localServerURL is where a locally running `pdf2study serve` listens. The
// proxy provider posts to its /api/gemini relay.
func (a *app) localServerURL() string {
	return fmt.Sprintf("http://localhost:%d", a.cfg.Server.Port)
}

// openProfile opens the profile that holds notes, the saved AI provider
// and the last lecture pointer.
func (a *app) openProfile() (storage.Profile, *ai.ConfigStore, error) {
	db, err := storage.OpenProfile(a.cfg.Storage.Backend, a.path(a.cfg.Storage.Path))
	if err != nil {
		return nil, nil, err
	}
	return db, ai.NewConfigStore(db, ai.WithFallback(a.cfg.FallbackAI())), nil
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "pdf2study",
		Short:         "Turn lecture PDFs into interactive study pages",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
	}
	root.PersistentFlags().StringVar(&a.cfgPath, "config", config.FileName, "config file")
	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env.local", "dotenv file loaded before the config (existing env wins)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		extractCmd(a),
		generateCmd(a),
		serveCmd(a),
		notesCmd(a),
		aiCmd(a),
		lecturesCmd(a),
		scanCmd(a),
	)
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
