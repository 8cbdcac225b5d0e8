package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/booksage/booksage/internal/layout"
	"github.com/booksage/booksage/internal/segment"
	"github.com/spf13/cobra"
)

var (
	chaptersJSON     bool
	chaptersSections bool
	chaptersMaxLevel int
)

var chaptersCmd = &cobra.Command{
	Use:   "chapters <file>",
	Short: "Detect and print the chapter structure of a book",
	Args:  cobra.ExactArgs(1),
	RunE:  runChapters,
}

func init() {
	rootCmd.AddCommand(chaptersCmd)
	chaptersCmd.Flags().BoolVar(&chaptersJSON, "json", false, "Output JSON instead of a table")
	chaptersCmd.Flags().BoolVar(&chaptersSections, "sections", false, "Also split each chapter into heading-delimited sections")
	chaptersCmd.Flags().IntVar(&chaptersMaxLevel, "max-level", segment.DefaultMaxLevel, "Deepest outline level to keep as a chapter")
}

func runChapters(cmd *cobra.Command, args []string) error {
	src, err := openBook(args[0])
	if err != nil {
		return err
	}
	defer src.Close()

	chapters := segmentBook(src, chaptersMaxLevel)

	if chaptersJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(chapters)
	}

	fmt.Fprintf(os.Stdout, "%d pages, %d chapters\n\n", src.PageCount(), len(chapters))
	for i, ch := range chapters {
		indent := ""
		if ch.Level > 1 {
			indent = "  "
		}
		fmt.Fprintf(os.Stdout, "%3d. %s%s (pages %d-%d)\n", i, indent, ch.Title, ch.StartPage+1, ch.EndPage+1)
		if chaptersSections {
			sections := segment.SplitSections(src.Lines(ch.StartPage, ch.EndPage), layout.DefaultThresholds())
			for _, sec := range sections {
				fmt.Fprintf(os.Stdout, "       - %s (p.%d, %d chars)\n", sec.Title, sec.Page+1, len(sec.Body))
			}
		}
	}
	return nil
}
