package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"
)

var errStale = errors.New("generated files are out of date")

func (a *app) checkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [packages]",
		Short: "Report generated files that are out of date",
		Long: `Regenerate in memory and compare with the files on disk. A missing or
different file is reported with a line diff and the command exits with 1.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			targets, err := a.build(cmd, args)
			if err != nil {
				return err
			}

			stale := 0

			for _, t := range targets {
				path := filepath.Join(t.Dir, t.File.Filename)

				current, err := os.ReadFile(path)
				if err != nil && !errors.Is(err, fs.ErrNotExist) {
					return fmt.Errorf("read %s: %w", path, err)
				}

				if bytes.Equal(current, t.File.Content) {
					a.logger.Info("up to date", "file", path)
					continue
				}

				stale++

				if current == nil {
					color.New(color.FgYellow).Fprintf(cmd.OutOrStdout(), "%s: missing\n", path)
					continue
				}

				color.New(color.Bold).Fprintf(cmd.OutOrStdout(), "--- %s\n+++ %s (generated)\n", path, path)
				printDiff(cmd.OutOrStdout(), string(current), string(t.File.Content))
			}

			if stale > 0 {
				return fmt.Errorf("%w: %d file(s)", errStale, stale)
			}

			return nil
		},
	}

	addGenFlags(cmd)

	return cmd
}

// printDiff writes a line diff of before and after. Removed lines are
// prefixed with "-", added lines with "+".
func printDiff(w io.Writer, before, after string) {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	del := color.New(color.FgRed)
	ins := color.New(color.FgGreen)

	for _, d := range diffs {
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}

			line = strings.TrimSuffix(line, "\n")

			switch d.Type {
			case diffmatchpatch.DiffDelete:
				del.Fprintf(w, "-%s\n", line)
			case diffmatchpatch.DiffInsert:
				ins.Fprintf(w, "+%s\n", line)
			case diffmatchpatch.DiffEqual:
				fmt.Fprintf(w, " %s\n", line)
			}
		}
	}
}
