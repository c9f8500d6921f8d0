package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"parsegen/internal/expr"
)

var dumper = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

func (a *app) rewriteCmd() *cobra.Command {
	var (
		captures []string
		dump     bool
	)

	cmd := &cobra.Command{
		Use:   "rewrite <expr>",
		Short: "Print a construction expression with its capture references resolved",
		Long: `Parse a construction expression and print it with every capture reference
marked as $name. With --captures, references are checked against the given
group names.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src := args[0]

			e, err := expr.Parse(src)
			if err == nil {
				var opts []expr.Option
				if cmd.Flags().Changed("captures") {
					opts = append(opts, expr.WithCaptures(captures...))
				}

				e, err = expr.Rewrite(e, opts...)
			}

			if err != nil {
				printExprError(cmd.ErrOrStderr(), src, err)
				return err
			}

			if dump {
				dumper.Fdump(cmd.OutOrStdout(), e)
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), expr.Format(e))

			return nil
		},
	}

	cmd.Flags().StringSliceVar(&captures, "captures", nil, "capture group names the expression may read")
	cmd.Flags().BoolVar(&dump, "dump", false, "dump the rewritten tree instead of printing it")

	return cmd
}

// printExprError shows the source with a caret under the offending offset.
func printExprError(w io.Writer, src string, err error) {
	var xerr *expr.Error
	if !errors.As(err, &xerr) || xerr.Pos < 0 || xerr.Pos > len(src) {
		return
	}

	fmt.Fprintf(w, "  %s\n  %s", src, strings.Repeat(" ", xerr.Pos))
	color.New(color.FgRed).Fprintf(w, "^ %s\n", xerr.Kind)
}
