package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/booksage/booksage/internal/command"
	"github.com/booksage/booksage/internal/pipeline"
	"github.com/booksage/booksage/internal/segment"
	"github.com/spf13/cobra"
)

var (
	commandsJSON     bool
	commandsMaxLevel int
)

var commandsCmd = &cobra.Command{
	Use:   "commands <file>",
	Short: "Extract the shell commands a book introduces, chapter by chapter",
	Args:  cobra.ExactArgs(1),
	RunE:  runCommands,
}

func init() {
	rootCmd.AddCommand(commandsCmd)
	commandsCmd.Flags().BoolVar(&commandsJSON, "json", false, "Output the full registry as JSON")
	commandsCmd.Flags().IntVar(&commandsMaxLevel, "max-level", segment.DefaultMaxLevel, "Deepest outline level to keep as a chapter")
}

func runCommands(cmd *cobra.Command, args []string) error {
	src, err := openBook(args[0])
	if err != nil {
		return err
	}
	defer src.Close()

	chapters := segmentBook(src, commandsMaxLevel)
	profile := bookProfile(src)

	reg := command.NewRegistry()
	for i, ch := range chapters {
		lines := src.Lines(ch.StartPage, ch.EndPage)
		cmds := command.FromBlocks(pipeline.Blocks(lines, profile))
		reg.Register(cmds, i, ch.Title)
	}

	if commandsJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(reg.Snapshot())
	}

	fmt.Fprintf(os.Stdout, "%d distinct commands across %d chapters\n", reg.Len(), len(chapters))
	for i, ch := range chapters {
		intro := reg.NewInChapter(i)
		if len(intro) == 0 {
			continue
		}
		fmt.Fprintf(os.Stdout, "\n## Chapter %d: %s\n\n", i, ch.Title)
		fmt.Fprintln(os.Stdout, "| Command | Flags |")
		fmt.Fprintln(os.Stdout, "|---------|-------|")
		for _, name := range intro {
			fmt.Fprintf(os.Stdout, "| %s | %s |\n", name, chapterFlags(reg, name, i))
		}
	}
	return nil
}

func chapterFlags(reg *command.Registry, name string, chapter int) string {
	entry, ok := reg.Info(name)
	if !ok {
		return ""
	}
	var flags []string
	for f := range entry.FlagsByChapter[chapter] {
		flags = append(flags, f)
	}
	sort.Strings(flags)
	return strings.Join(flags, ", ")
}
