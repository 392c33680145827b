package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/anatolykoptev/go_profile/internal/engine/assemble"
	"github.com/anatolykoptev/go_profile/internal/engine/profile"
	"github.com/anatolykoptev/go_profile/internal/engine/store"
	"github.com/anatolykoptev/go_profile/internal/toolutil"
)

// mainDocument is the file name of the main page inside a profile directory.
const mainDocument = "profile.html"

type extractOptions struct {
	markdown   bool
	ownDomains []string
	maxBytes   int
	entityID   string
	out        string
	save       bool
	db         string
}

func newExtractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <dir>",
		Short: "Extract a profile from a directory of saved pages",
		Long: `Extract reads <dir>/profile.html and every other <dir>/<section>.html as a
detail page, runs the extraction and writes the result as JSON. Detail file
names follow the site's section names; aliases such as
licenses-and-certifications or honors-and-awards are accepted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), args[0], resolveExtractOptions(cmd))
		},
	}
	cmd.Flags().Bool("markdown", false, "render descriptions as markdown instead of plain text")
	cmd.Flags().StringSlice("own-domains", []string{"linkedin.com", "lnkd.in"}, "hosts never reported as the personal website")
	cmd.Flags().Int("max-document-bytes", 0, "reject larger documents (0 = unlimited)")
	cmd.Flags().String("entity-id", "", "username to use when the page carries none")
	cmd.Flags().StringP("out", "o", "", "write JSON to this file instead of stdout")
	cmd.Flags().Bool("save", false, "persist the result to the SQLite profile store")
	cmd.Flags().String("db", "profiles.db", "SQLite database path used with --save")
	return cmd
}

func init() {
	rootCmd.AddCommand(newExtractCmd())
}

// configKey maps a flag name to its config file and PROFILECTL_ env key.
func configKey(flag string) string {
	return strings.ReplaceAll(flag, "-", "_")
}

// Flags set on the command line win over config file and environment values.
func resolveExtractOptions(cmd *cobra.Command) extractOptions {
	f := cmd.Flags()
	fromConfig := func(name string) bool {
		return !f.Changed(name) && viper.IsSet(configKey(name))
	}

	var o extractOptions
	o.markdown, _ = f.GetBool("markdown")
	if fromConfig("markdown") {
		o.markdown = viper.GetBool("markdown")
	}
	o.ownDomains, _ = f.GetStringSlice("own-domains")
	if fromConfig("own-domains") {
		o.ownDomains = splitList(viper.GetStringSlice(configKey("own-domains")))
	}
	o.maxBytes, _ = f.GetInt("max-document-bytes")
	if fromConfig("max-document-bytes") {
		o.maxBytes = viper.GetInt(configKey("max-document-bytes"))
	}
	o.entityID, _ = f.GetString("entity-id")
	o.out, _ = f.GetString("out")
	o.save, _ = f.GetBool("save")
	o.db, _ = f.GetString("db")
	if fromConfig("db") {
		o.db = viper.GetString("db")
	}
	return o
}

// splitList accepts both YAML lists and comma-separated environment values.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func runExtract(ctx context.Context, stdout, stderr io.Writer, dir string, o extractOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	in, err := readProfileDir(dir)
	if err != nil {
		return err
	}
	in.Source.EntityID = o.entityID

	a := assemble.New(assemble.Options{
		Markdown:         o.markdown,
		OwnDomains:       o.ownDomains,
		MaxDocumentBytes: o.maxBytes,
	})
	ex, err := a.Extract(in)
	if err != nil {
		return fmt.Errorf("extract %s: %w", dir, err)
	}
	for _, w := range ex.Metadata.Warnings {
		fmt.Fprintln(stderr, "warning:", w)
	}
	if err := ex.Err(); err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", dir, err)
	}

	data, err := json.MarshalIndent(ex, "", "  ")
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	data = append(data, '\n')
	if o.out != "" {
		if err := os.WriteFile(o.out, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", o.out, err)
		}
	} else if _, err := stdout.Write(data); err != nil {
		return err
	}

	if o.save {
		s, err := store.OpenSQLite(o.db)
		if err != nil {
			return err
		}
		defer s.Close()
		if err := s.Save(ctx, ex); err != nil {
			return fmt.Errorf("save: %w", err)
		}
		fmt.Fprintf(stderr, "saved %s to %s\n", ex.Profile.Username, o.db)
	}
	return nil
}

// readProfileDir loads the main page and the detail pages of dir.
func readProfileDir(dir string) (assemble.Input, error) {
	mainPath := filepath.Join(dir, mainDocument)
	info, err := os.Stat(mainPath)
	if err != nil {
		return assemble.Input{}, fmt.Errorf("%s: main document %s missing: %w", dir, mainDocument, err)
	}
	mainHTML, err := os.ReadFile(mainPath)
	if err != nil {
		return assemble.Input{}, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return assemble.Input{}, err
	}
	raw := make(map[string]string)
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || name == mainDocument || !strings.EqualFold(filepath.Ext(name), ".html") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return assemble.Input{}, err
		}
		raw[strings.TrimSuffix(name, filepath.Ext(name))] = string(data)
	}
	details, err := toolutil.NormDetails(raw)
	if err != nil {
		return assemble.Input{}, fmt.Errorf("%s: %w", dir, err)
	}

	locator := dir
	if abs, err := filepath.Abs(dir); err == nil {
		locator = abs
	}
	return assemble.Input{
		Main:    string(mainHTML),
		Details: details,
		Source: profile.Source{
			Locator:   locator,
			FetchedAt: info.ModTime().UTC(),
		},
	}, nil
}
