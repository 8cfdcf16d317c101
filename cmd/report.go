package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/frahmantamala/mercado-facil/internal/report"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

var (
	reportFrom         string
	reportTo           string
	reportMonths       int
	reportLimit        int
	reportIncludeEmpty bool
)

var reportCmd = &cobra.Command{
	Use:   "report <kind>",
	Short: "Print a report as JSON",
	Long: fmt.Sprintf(`Build a report straight from the configured store and print it as JSON.
Kinds: %s. Ranged reports default to the last 30 days.`, strings.Join(kindNames(), ", ")),
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		kind, err := report.ParseKind(args[0])
		if err != nil {
			return err
		}

		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}

		deps, err := initializeDependencies(ctx, cfg)
		if err != nil {
			return err
		}
		defer deps.Close(context.Background())

		params, err := reportParams(deps.ReportService.Now(), deps.ReportService.Location())
		if err != nil {
			return err
		}

		result, err := deps.ReportService.Run(ctx, kind, params)
		if err != nil {
			return err
		}
		return writeJSON(os.Stdout, result)
	},
}

func init() {
	reportCmd.Flags().StringVar(&reportFrom, "from", "", "first day of the range (YYYY-MM-DD)")
	reportCmd.Flags().StringVar(&reportTo, "to", "", "last day of the range (YYYY-MM-DD)")
	reportCmd.Flags().IntVar(&reportMonths, "months", 0, "trailing months for the monthly report")
	reportCmd.Flags().IntVar(&reportLimit, "limit", 0, "VIP customers or top products to list")
	reportCmd.Flags().BoolVar(&reportIncludeEmpty, "include-empty", false, "list categories without revenue")
}

func kindNames() []string {
	return lo.Map(report.Kinds(), func(k report.Kind, _ int) string { return string(k) })
}

// reportParams applies the same defaults as the HTTP endpoints.
func reportParams(now time.Time, loc *time.Location) (report.Params, error) {
	params := report.Params{
		Months:       reportMonths,
		Limit:        reportLimit,
		IncludeEmpty: reportIncludeEmpty,
	}

	if reportFrom == "" && reportTo == "" {
		params.Range = report.LastDays(now, report.DefaultRangeDays, loc)
		return params, nil
	}

	r, err := report.ParseDateRange(reportFrom, reportTo, loc)
	if err != nil {
		return params, err
	}
	params.Range = r
	return params, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
