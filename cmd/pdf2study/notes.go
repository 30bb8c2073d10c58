package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/thywilljoshua/pdf-to-study/internal/notes"
	"github.com/thywilljoshua/pdf-to-study/internal/storage"
)

// pageSuffix is appended to the lecture title in a generated page's
// <title>, which is what the page keys its notes by.
const pageSuffix = " - Interactive Learning"

func noteTitles(db storage.Profile) ([]string, error) {
	keys, err := db.Keys(notes.Key(""))
	if err != nil {
		return nil, err
	}
	var titles []string
	for _, k := range keys {
		if t, ok := notes.TitleFromKey(k); ok {
			titles = append(titles, t)
		}
	}
	sort.Strings(titles)
	return titles, nil
}

// resolveTitle accepts either the page title or the bare lecture title.
func resolveTitle(db storage.Profile, arg string) string {
	titles, err := noteTitles(db)
	if err != nil {
		return arg
	}
	for _, want := range []string{arg, arg + pageSuffix} {
		for _, t := range titles {
			if t == want {
				return t
			}
		}
	}
	if strings.HasSuffix(arg, pageSuffix) {
		return arg
	}
	return arg + pageSuffix
}

// parseNoteID accepts negative ids, which legacy notes are given when
// they are read without one.
func parseNoteID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid note id %q", s)
	}
	return id, nil
}

func notesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notes",
		Short: "Read and edit the notes taken on study pages",
	}

	withStore := func(title string, fn func(storage.Profile, *notes.Store) error) error {
		db, _, err := a.openProfile()
		if err != nil {
			return err
		}
		defer db.Close()
		return fn(db, notes.New(db, resolveTitle(db, title)))
	}

	list := &cobra.Command{
		Use:   "list [title]",
		Short: "List pages with notes, or the notes of one page",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				db, _, err := a.openProfile()
				if err != nil {
					return err
				}
				defer db.Close()
				titles, err := noteTitles(db)
				if err != nil {
					return err
				}
				return printPages(out, db, titles)
			}
			return withStore(args[0], func(_ storage.Profile, st *notes.Store) error {
				printNotes(out, st)
				return nil
			})
		},
	}

	var citation, section string
	add := &cobra.Command{
		Use:   "add <title> <body>",
		Short: "Add a note to a page",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(args[0], func(_ storage.Profile, st *notes.Store) error {
				n, err := st.Add(citation, args[1], section)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✅ Added note %s to %s\n", idStyle.Render(strconv.FormatInt(n.ID, 10)), st.Title())
				return nil
			})
		},
	}
	add.Flags().StringVar(&citation, "citation", "", "highlighted passage the note refers to")
	add.Flags().StringVar(&section, "section", "", "section heading")

	edit := &cobra.Command{
		Use:   "edit <title> <id> <body>",
		Short: "Replace a note's body",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseNoteID(args[1])
			if err != nil {
				return err
			}
			return withStore(args[0], func(_ storage.Profile, st *notes.Store) error {
				if _, ok := st.Get(id); !ok {
					return fmt.Errorf("note %d not found on %q", id, st.Title())
				}
				return st.Update(id, args[2])
			})
		},
	}

	del := &cobra.Command{
		Use:   "delete <title> <id>",
		Short: "Delete a note",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseNoteID(args[1])
			if err != nil {
				return err
			}
			return withStore(args[0], func(_ storage.Profile, st *notes.Store) error {
				return st.Delete(id)
			})
		},
	}

	active := &cobra.Command{
		Use:   "active <title> <id>",
		Short: "Make a note the active one",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseNoteID(args[1])
			if err != nil {
				return err
			}
			return withStore(args[0], func(_ storage.Profile, st *notes.Store) error {
				if _, ok := st.Get(id); !ok {
					return fmt.Errorf("note %d not found on %q", id, st.Title())
				}
				return st.SetActiveID(id)
			})
		},
	}

	var outPath, source string
	var tags []string
	export := &cobra.Command{
		Use:   "export <title>",
		Short: "Export a page's notes as Obsidian markdown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(args[0], func(_ storage.Profile, st *notes.Store) error {
				meta := notes.ExportMeta{SourceFile: source, Tags: tags, Generated: time.Now()}
				if outPath == "-" {
					return st.Export(cmd.OutOrStdout(), meta)
				}
				path := outPath
				if path == "" {
					path = notes.ExportFilename(strings.TrimSuffix(st.Title(), pageSuffix))
				}
				if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
					return err
				}
				f, err := os.Create(path)
				if err != nil {
					return err
				}
				if err := st.Export(f, meta); err != nil {
					f.Close()
					os.Remove(path)
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "📝 Exported to %s\n", path)
				return nil
			})
		},
	}
	export.Flags().StringVarP(&outPath, "out", "o", "", `output file, "-" for stdout (default: <title>.md)`)
	export.Flags().StringVar(&source, "source", "", "source PDF recorded in the frontmatter")
	export.Flags().StringSliceVar(&tags, "tag", nil, "extra frontmatter tags")

	cmd.AddCommand(list, add, edit, del, active, export)
	return cmd
}

func printPages(out io.Writer, db storage.Profile, titles []string) error {
	if len(titles) == 0 {
		fmt.Fprintln(out, "No notes yet.")
		return nil
	}
	fmt.Fprintln(out, headerStyle.Render("Pages with notes"))
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, t := range titles {
		st := notes.New(db, t)
		fmt.Fprintf(w, "%s\t%s\n", titleStyle.Render(t), countStyle.Render(strconv.Itoa(len(st.List()))+" notes"))
	}
	return w.Flush()
}

func printNotes(out io.Writer, st *notes.Store) {
	timeline := st.Timeline()
	if len(timeline) == 0 {
		fmt.Fprintf(out, "No notes on %s.\n", st.Title())
		return
	}
	activeID := int64(0)
	if n, ok := st.ActiveNote(); ok {
		activeID = n.ID
	}
	focusID, _ := st.FocusID()

	fmt.Fprintln(out, headerStyle.Render(st.Title()))
	for _, n := range timeline {
		mark := " "
		switch n.ID {
		case focusID:
			mark = markStyle.Render("★")
		case activeID:
			mark = markStyle.Render("›")
		}
		when := n.Timestamp
		if t := n.Time(); !t.IsZero() {
			when = t.Local().Format("2006-01-02 15:04")
		}
		header := fmt.Sprintf("%s %s  %s", mark, idStyle.Render(strconv.FormatInt(n.ID, 10)), dateStyle.Render(when))
		if n.Section != "" {
			header += "  " + titleStyle.Render(n.Section)
		}
		fmt.Fprintln(out, header)
		if n.Citation != "" {
			fmt.Fprintln(out, quoteStyle.Render("“"+n.Citation+"”"))
		}
		if n.Body != "" {
			fmt.Fprintln(out, "  "+strings.ReplaceAll(n.Body, "\n", "\n  "))
		}
	}
	if d := st.Draft(); d != "" {
		fmt.Fprintf(out, "\n%s %s\n", dateStyle.Render("draft:"), d)
	}
}
