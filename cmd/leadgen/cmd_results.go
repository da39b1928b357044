package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/leadmesh/leadgen/internal/projectconfig"
	"github.com/leadmesh/leadgen/internal/transcript"
)

func newResultsCommand() *cobra.Command {
	var resultsDir string

	cmd := &cobra.Command{
		Use:   "results",
		Short: "List saved transcripts",
		Long:  `List the transcripts saved by previous runs, newest first.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := resolveResultsDir(resultsDir)
			if err != nil {
				return err
			}

			names, err := transcript.List(dir)
			if err != nil {
				return err
			}
			if len(names) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No transcripts in %s\n", dir)
				return nil
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&resultsDir, "dir", "d", "", "Results directory (overrides .leadgen.yaml)")
	cmd.AddCommand(newResultsShowCommand(&resultsDir))

	return cmd
}

func newResultsShowCommand(resultsDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "show <transcript>",
		Short: "Print a saved transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := resolveResultsDir(*resultsDir)
			if err != nil {
				return err
			}

			rec, err := transcript.Read(filepath.Join(dir, args[0]))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Task:      %s\n", rec.TaskID)
			fmt.Fprintf(out, "Request:   %d leads for a %s in %s\n",
				rec.Request.LeadCount, rec.Request.FreelancerType, rec.Request.Location)
			fmt.Fprintf(out, "Started:   %s\n", rec.StartedAt.Format("2006-01-02 15:04:05"))
			if rec.Complete {
				fmt.Fprintf(out, "Status:    complete\n")
			} else if rec.ErrorMsg != "" {
				fmt.Fprintf(out, "Status:    failed (%s)\n", rec.ErrorMsg)
			} else {
				fmt.Fprintf(out, "Status:    incomplete\n")
			}
			fmt.Fprintln(out)

			for _, e := range rec.Entries {
				fmt.Fprintln(out, formatEntry(e))
			}
			return nil
		},
	}
}

// resolveResultsDir prefers the flag value, then the project config.
func resolveResultsDir(flagDir string) (string, error) {
	if flagDir != "" {
		return flagDir, nil
	}
	cfg, err := projectconfig.Load(".")
	if err != nil {
		return "", err
	}
	return cfg.Results.Dir, nil
}
