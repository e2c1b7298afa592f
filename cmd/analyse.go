package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/caledonia-energy/engage-cli/internal/store"
)

var (
	analyseSegment string
	analyseJSON    bool
)

var analyseCmd = &cobra.Command{
	Use:   "analyse [customer-id]",
	Short: "Classify contact priority without composing messages",
	Long:  "With no arguments, classifies every customer in the target segment. With a customer id, prints that customer's full assessment.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEngine(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")

		if len(args) == 1 {
			analysis, err := env.Engine.AnalyseOne(ctx, args[0])
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("customer %q not found", args[0])
			}
			if err != nil {
				return err
			}
			return enc.Encode(analysis)
		}

		segment := analyseSegment
		if segment == "" {
			segment = cfg.Engage.TargetSegment
		}
		if segment == "all" {
			segment = ""
		}

		analyses, err := env.Engine.AnalyseAll(ctx, store.Filter{Segment: segment})
		if err != nil {
			return err
		}

		if analyseJSON {
			return enc.Encode(analyses)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "CUSTOMER\tPRIORITY\tURGENCY\tRISK\tSOURCE\tTRIGGERS")
		for _, a := range analyses {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
				a.Name, a.Assessment.Priority, a.Assessment.Urgency,
				a.Assessment.RiskScore, a.Assessment.Source, a.Assessment.TriggerFactors)
		}
		w.Flush()
		return nil
	},
}

func init() {
	analyseCmd.Flags().StringVar(&analyseSegment, "segment", "", "customer segment to analyse (default from config, \"all\" for every segment)")
	analyseCmd.Flags().BoolVar(&analyseJSON, "json", false, "print JSON instead of a table")
	rootCmd.AddCommand(analyseCmd)
}
