package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"parsegen/internal/pattern"
	"parsegen/parsekit"
)

func (a *app) normalizeCmd() *cobra.Command {
	var (
		groups  bool
		samples []string
	)

	cmd := &cobra.Command{
		Use:   "normalize <pattern>...",
		Short: "Print patterns with their capture group names repaired",
		Long: `Print each pattern with its capture group names repaired.

With --match, the repaired patterns are treated as the variants of a union, in
order, and every sample reports which of them match it. The first match is the
variant a generated parser builds.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			normalized := make([]string, 0, len(args))

			for _, arg := range args {
				res, err := pattern.Detail(arg)
				if err != nil {
					return err
				}

				fmt.Fprintln(out, res.Pattern)

				for _, name := range res.Renamed {
					color.New(color.FgCyan).Fprintf(cmd.ErrOrStderr(), "renamed group %s to %s%s\n", name, pattern.RepairPrefix, name)
				}

				if groups {
					gs, err := pattern.Groups(res.Pattern)
					if err != nil {
						return err
					}

					for _, g := range gs {
						fmt.Fprintf(out, "%d\t%s\n", g.Index, g.Name)
					}
				}

				normalized = append(normalized, res.Pattern)
			}

			if len(samples) == 0 {
				return nil
			}

			set := parsekit.NewSet(nil, normalized...)

			for _, s := range samples {
				idx, err := set.Matches(s)
				if err != nil {
					return err
				}

				if len(idx) == 0 {
					color.New(color.FgYellow).Fprintf(out, "%q: no match\n", s)
					continue
				}

				fmt.Fprintf(out, "%q: first %d, matches %s\n", s, idx[0], joinInts(idx))
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&groups, "groups", false, "also list the named capture groups")
	cmd.Flags().StringArrayVar(&samples, "match", nil, "report which patterns match this input (repeatable)")

	return cmd
}

func joinInts(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = strconv.Itoa(x)
	}

	return strings.Join(parts, ",")
}
