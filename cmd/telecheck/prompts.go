package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"telecheck-go/internal/prompts"
)

func newPromptsCommand() *cobra.Command {
	var show string

	cmd := &cobra.Command{
		Use:   "prompts",
		Short: "List the evaluation stages and their prompts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := prompts.Load()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if show != "" {
				stage, err := prompts.ParseStage(show)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, catalog.Prompt(stage))
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "STAGE\tOUTPUT\tPROMPT CHARS")
			for _, s := range prompts.Stages() {
				kind := "text"
				if s.Structured() {
					kind = "json"
				}
				fmt.Fprintf(tw, "%s\t%s\t%d\n", s, kind, len([]rune(catalog.Prompt(s))))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&show, "show", "", "Print the full prompt of one stage")
	return cmd
}
