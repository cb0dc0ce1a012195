package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	service "github.com/okian/sleeplab/internal/app"
	"github.com/okian/sleeplab/internal/domain/correlation"
)

func newFetchCommand(rt *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download sleep records into the raw file",
		Long: `Download every sleep record from the start date on and replace the raw
file with the response. A bad response leaves the previous file in place.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := rt.service(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			start, err := svc.FetchStart()
			if err != nil {
				return err
			}
			n, err := svc.Fetch(cmd.Context(), start)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "fetched %d records into %s\n", n, rt.cfg.RawFile)
			return nil
		},
	}
	cmd.Flags().String("start", "", "First day to fetch (YYYY-MM-DD, default: one year back)")
	return cmd
}

func newPrepCommand(rt *session) *cobra.Command {
	return &cobra.Command{
		Use:   "prep",
		Short: "Derive the dataset and write the snapshots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := rt.service(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			res, err := svc.Prepare(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d nights written to %s\n", res.Dataset.Len(), rt.cfg.ModifiedSnapshot)
			return nil
		},
	}
}

func newReportCommand(rt *session) *cobra.Command {
	var (
		format   string
		noCharts bool
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Prepare the dataset and report correlations",
		Long: `Prepare the dataset, correlate every reference column with the
candidates and write the report file. The report is echoed to stdout,
colored for terminals in text format.

Examples:
  sleeplab report                     # Text report and charts
  sleeplab report --format json       # JSON on stdout
  sleeplab report --no-charts         # Skip PNG output`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := rt.service(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			_, err = svc.Report(cmd.Context(), service.ReportOptions{
				Format: format,
				Charts: !noCharts,
			})
			return err
		},
	}
	cmd.Flags().StringVar(&format, "format", correlation.FormatText, "Output format (text|yaml|json)")
	cmd.Flags().BoolVar(&noCharts, "no-charts", false, "Do not render PNG charts")
	return cmd
}
