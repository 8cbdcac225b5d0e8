package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/booksage/booksage/internal/category"
	"github.com/spf13/cobra"
)

var (
	classifyTags    string
	classifyRebuild bool
)

var classifyCmd = &cobra.Command{
	Use:   "classify <summary.md>",
	Short: "Classify the sections of a Markdown summary into topic categories",
	Args:  cobra.ExactArgs(1),
	RunE:  runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)
	classifyCmd.Flags().StringVar(&classifyTags, "tags", "", "Comma-separated category tags to keep (default: all)")
	classifyCmd.Flags().BoolVar(&classifyRebuild, "rebuild", false, "Print the filtered summary as Markdown")
}

func runClassify(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}

	sections := category.Parse(string(data))
	var selected []string
	if classifyTags != "" {
		for _, t := range strings.Split(classifyTags, ",") {
			selected = append(selected, strings.ToUpper(strings.TrimSpace(t)))
		}
	}
	filtered := category.Filter(sections, selected)

	if classifyRebuild {
		fmt.Fprintln(os.Stdout, category.Rebuild(filtered))
		return nil
	}

	fmt.Fprintf(os.Stdout, "tags: %s\n\n", strings.Join(category.ActiveTags(sections), ", "))
	for _, sec := range filtered {
		fmt.Fprintf(os.Stdout, "%s  %s (%d chars)\n", category.Display(sec.Tag), sec.Title, len(sec.Content))
	}
	return nil
}
