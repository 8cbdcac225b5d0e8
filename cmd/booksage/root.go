package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/booksage/booksage/internal/layout"
	"github.com/booksage/booksage/internal/segment"
	"github.com/booksage/booksage/internal/source"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "booksage",
	Short: "Inspect the structure of technical books without a server",
	Long: `booksage analyzes a local book file (PDF, Markdown, HTML, or DOCX),
detects its chapter structure, and extracts the shell commands it teaches.

Usage:
  booksage chapters <file>
  booksage commands <file>
  booksage classify <summary.md>`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openBook opens a local file as a paged document source.
func openBook(path string) (source.Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return source.Open(f, filepath.Base(path))
}

// segmentBook derives the chapter list the same way the ingest pipeline
// does: embedded outline first, then font statistics, then one chapter
// spanning the whole document.
func segmentBook(src source.Source, maxLevel int) []segment.Chapter {
	total := src.PageCount()
	chapters := segment.FromOutline(src.Outline(), total, maxLevel)
	if len(chapters) == 0 {
		chapters = segment.Detect(src.Lines(0, total-1), total)
	}
	if len(chapters) == 0 {
		chapters = []segment.Chapter{{Title: "Full Book", StartPage: 0, EndPage: total - 1, Level: 1}}
	}
	return chapters
}

func bookProfile(src source.Source) layout.Profile {
	total := src.PageCount()
	return layout.ComputeProfile(src.Lines(0, total-1), layout.DefaultThresholds())
}
