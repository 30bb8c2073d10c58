package main

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"runtime"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thywilljoshua/pdf-to-study/internal/generate"
	"github.com/thywilljoshua/pdf-to-study/internal/lectures"
	"github.com/thywilljoshua/pdf-to-study/internal/server"
)

var trailingJunk = regexp.MustCompile(`[^0-9A-Za-z._/\-]+$`)

// normalizeOpenPath cleans a path pasted from a shell or a browser bar:
// quotes, leading slashes and trailing punctuation are dropped.
func normalizeOpenPath(raw string) string {
	p := strings.TrimSpace(raw)
	p = strings.Trim(p, `"'`)
	p = strings.TrimLeft(p, "/")
	return trailingJunk.ReplaceAllString(p, "")
}

// openTarget resolves --open against root. A missing file falls back to the
// site root.
func openTarget(root, raw string) (string, bool) {
	target := normalizeOpenPath(raw)
	if target == "" {
		target = "index.html"
	}
	if _, err := os.Stat(filepath.Join(root, filepath.FromSlash(target))); err != nil {
		return "", false
	}
	return target, true
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}

func serveCmd(a *app) *cobra.Command {
	var (
		port        int
		host        string
		open        string
		watch       bool
		portalTitle string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve study pages, the notes/AI API and the Gemini relay",
		RunE: func(cmd *cobra.Command, args []string) error {
			sc := a.cfg.Server
			if cmd.Flags().Changed("port") {
				sc.Port = port
			}
			if cmd.Flags().Changed("host") {
				sc.Host = host
			}
			root := a.cfg.Root

			if _, err := os.Stat(filepath.Join(root, "index.html")); errors.Is(err, fs.ErrNotExist) {
				if _, err := generate.WritePortal(root, portalTitle); err != nil {
					return fmt.Errorf("writing portal: %w", err)
				}
			}
			if _, list, err := lectures.Sync(root); err != nil {
				a.log.Warn("lecture index not written", "err", err)
			} else {
				a.log.Info("lecture index written", "count", len(list))
			}

			db, configs, err := a.openProfile()
			if err != nil {
				return err
			}
			defer db.Close()

			srv := server.New(server.Config{
				Root:        root,
				CORSOrigins: sc.CORSOrigins,
				RateLimit:   sc.RateLimit,
				RateBurst:   sc.RateBurst,
				Relay: server.RelayConfig{
					APIKey:      a.cfg.Relay.APIKey,
					Model:       a.cfg.Relay.Model,
					Timeout:     a.cfg.RelayTimeout(),
					InsecureTLS: a.cfg.Relay.InsecureTLS,
				},
			}, db, configs, server.WithLogger(a.log))

			ctx := cmd.Context()
			if watch {
				go func() {
					if err := lectures.Watch(ctx, root, lectures.WatchOptions{Logger: a.log}); err != nil {
						a.log.Error("lecture watcher stopped", "err", err)
					}
				}()
			}

			out := cmd.OutOrStdout()
			addr := net.JoinHostPort(sc.Host, strconv.Itoa(sc.Port))
			err = srv.ListenAndServe(ctx, addr, func(bound net.Addr) {
				p := sc.Port
				if tcp, ok := bound.(*net.TCPAddr); ok {
					p = tcp.Port
				}
				base := fmt.Sprintf("http://localhost:%d/", p)
				fmt.Fprintf(out, "✅ Serving at %s\n", base)
				fmt.Fprintln(out, "   Gemini proxy endpoint: POST /api/gemini")
				if open == "" {
					return
				}
				target, ok := openTarget(root, open)
				if !ok {
					fmt.Fprintf(out, "⚠️ Open path not found: %s; opening root instead.\n", open)
				}
				fmt.Fprintf(out, "   Opening: %s\n", base+target)
				if err := openBrowser(base + target); err != nil {
					a.log.Warn("could not open browser", "err", err)
				}
			})
			fmt.Fprintln(out, "🛑 Server stopped.")
			return err
		},
	}
	cmd.Flags().IntVar(&port, "port", 8000, "port to listen on")
	cmd.Flags().StringVar(&host, "host", "0.0.0.0", "interface to bind")
	cmd.Flags().StringVar(&open, "open", "", "open this relative path after startup, e.g. html/Lec1_interactive.html")
	cmd.Flags().BoolVar(&watch, "watch", false, "rewrite html/lectures.json when pages or PDFs change")
	cmd.Flags().StringVar(&portalTitle, "portal-title", "Lectures", "title for a newly written index.html")
	return cmd
}
