package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vanderheijden86/changetree/pkg/recipe"
)

func newRecipesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recipes",
		Short: "List the named view presets usable with --recipe",
		Long: `List the named view presets. Builtin recipes can be overridden or disabled
(name: null) in $XDG_CONFIG_HOME/ct/recipes.yaml and in .ct/recipes.yaml of the
current directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			l, err := recipe.LoadDefault()
			if err != nil {
				return err
			}
			for _, w := range l.Warnings() {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
			}
			return writeRecipes(cmd.OutOrStdout(), l.ListSummaries())
		},
	}
}

func writeRecipes(w io.Writer, summaries []recipe.Summary) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, s := range summaries {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", s.Name, s.Source, s.Description)
	}
	return tw.Flush()
}
