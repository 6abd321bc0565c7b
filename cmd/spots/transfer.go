package main

import (
	"bufio"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nikbrunner/spots/internal/exporter"
	"github.com/nikbrunner/spots/internal/importer"
)

var (
	exportFormat string
	exportOutput string

	importEnrich bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export saves to HTML, JSON or YAML",
	Long: `Export all saves. HTML is a bookmark file with one folder per category that
browsers can import; JSON and YAML hold every field.

Use -o - to write to stdout.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := exporter.ParseFormat(exportFormat)
		if err != nil {
			return err
		}

		e, err := loadEnv()
		if err != nil {
			return err
		}
		defer e.close()

		items, err := e.store.List()
		if err != nil {
			return err
		}

		now := time.Now()
		if exportOutput == "-" {
			return exporter.Export(cmd.OutOrStdout(), format, items, now)
		}

		path := exportOutput
		if path == "" {
			if path, err = exporter.DefaultExportPath(format, now); err != nil {
				return fmt.Errorf("default export path: %w", err)
			}
		}

		f, err := os.Create(path)
		if err != nil {
			return err
		}
		w := bufio.NewWriter(f)
		if err := exporter.Export(w, format, items, now); err != nil {
			f.Close()
			return err
		}
		if err := w.Flush(); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d saves to %s\n", len(items), path)
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <bookmarks.html>",
	Short: "Import post links from a browser bookmark file",
	Long: `Import the Instagram and TikTok post links of a bookmark HTML file. The
folder a link sits in becomes its category. Links already saved are
skipped.

With --enrich each post goes through the normal save flow (backend when
logged in, enrichment and geocoding when configured) instead of being
stored as is.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer file.Close()

		parsed, err := importer.ParseHTMLBookmarks(file, time.Now())
		if err != nil {
			return fmt.Errorf("parse bookmarks: %w", err)
		}

		e, err := loadEnv()
		if err != nil {
			return err
		}
		defer e.close()

		existing, err := e.store.List()
		if err != nil {
			return err
		}
		seen := make(map[string]bool, len(existing))
		for _, item := range existing {
			seen[item.URL] = true
		}

		coord := e.coordinator(nil)
		added, duplicates := 0, 0
		for _, post := range parsed.Posts {
			if seen[post.URL] {
				duplicates++
				continue
			}
			seen[post.URL] = true

			if importEnrich {
				res := coord.Save(cmd.Context(), post.CapturedPost)
				if !res.OK() {
					logger.Warn("import save failed", zap.String("url", post.URL), zap.Error(res.Err))
					continue
				}
				added++
				continue
			}

			if post.Category != "" {
				if _, err := e.store.AddCategory(post.Category); err != nil {
					return err
				}
			}
			if _, err := e.store.Append(post.Item()); err != nil {
				return err
			}
			added++
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d saves", added)
		if duplicates > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), " (%d duplicates skipped)", duplicates)
		}
		if len(parsed.Skipped) > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), " (%d non-post links ignored)", len(parsed.Skipped))
		}
		fmt.Fprintln(cmd.OutOrStdout())
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", string(exporter.FormatHTML), "Output format: html, json or yaml")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default ~/Downloads/spots-export-<date>.<ext>)")

	importCmd.Flags().BoolVar(&importEnrich, "enrich", false, "Save through the normal save flow")

	rootCmd.AddCommand(exportCmd, importCmd)
}
