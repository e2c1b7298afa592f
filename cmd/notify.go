package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/caledonia-energy/engage-cli/internal/model"
	"github.com/caledonia-energy/engage-cli/internal/store"
)

var (
	notifySegment string
	notifyLimit   int
	notifyJSON    bool
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Run a notification batch and print the ordered list",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEngine(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		segment := notifySegment
		if segment == "" {
			segment = cfg.Engage.TargetSegment
		}
		if segment == "all" {
			segment = ""
		}

		notifications, err := env.Engine.Run(ctx, store.Filter{
			Segment:     segment,
			OptedInOnly: true,
			Limit:       notifyLimit,
		})
		if err != nil {
			return err
		}

		if notifyJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(notifications)
		}

		printNotifications(notifications)
		return nil
	},
}

func printNotifications(notifications []model.Notification) {
	if len(notifications) == 0 {
		fmt.Println("No customers need contact.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CUSTOMER\tPRIORITY\tURGENCY\tRISK\tARCHETYPE\tCHANNEL\tSOURCE")
	for _, n := range notifications {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
			n.CustomerName, n.Priority, n.Urgency, n.RiskScore, n.Archetype, n.Channel, n.Source)
	}
	w.Flush()

	fmt.Printf("\n%d notifications\n", len(notifications))
}

func init() {
	notifyCmd.Flags().StringVar(&notifySegment, "segment", "", "customer segment to target (default from config, \"all\" for every segment)")
	notifyCmd.Flags().IntVar(&notifyLimit, "limit", 0, "max customers to process (0 = no limit)")
	notifyCmd.Flags().BoolVar(&notifyJSON, "json", false, "print JSON instead of a table")
	rootCmd.AddCommand(notifyCmd)
}
