package cmd

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"sjsage522/cruisewatch/internal/report"
	"sjsage522/cruisewatch/logger"
	apperrors "sjsage522/cruisewatch/pkg/errors"
	"sjsage522/cruisewatch/services/worker"
)

var (
	runFormat  string
	runIDs     []string
	runNoColor bool
)

func init() {
	runCmd.Flags().StringVar(&runFormat, "format", string(report.FormatTable), "Output format: table, markdown, html or json.")
	runCmd.Flags().StringSliceVar(&runIDs, "ids", nil, "Itinerary identifiers to load, overriding ITINERARY_IDS.")
	runCmd.Flags().BoolVar(&runNoColor, "no-color", false, "Disable colours in table output.")
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run [--format table|markdown|html|json] [--ids a,b]",
	Short: "Loads every itinerary once and prints the price report.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := report.ParseFormat(runFormat)
		if err != nil {
			return apperrors.NewConfiguration("invalid --format", err)
		}

		cfg, pricing, err := loadConfig(runIDs)
		if err != nil {
			return err
		}

		logger.ForWorker().Debug().
			Strs("itineraries", cfg.ItineraryIDs).
			Strs("cabin_types", pricing.Labels()).
			Msg("Running one aggregation")

		ctx := cmd.Context()
		services := initializeServices(ctx, cfg, pricing)
		defer services.Cleanup()

		w := worker.NewWorker(services.Aggregator, cfg.ItineraryIDs, pricing, cfg.BaseURL, services.Publisher, cfg.CrawlInterval)
		r, err := w.RunOnce(ctx)
		if err != nil {
			if r == nil {
				return err
			}
			// publish failures are already logged; the report still prints
			logger.ForWorker().Debug().Err(err).Msg("Continuing without publishing")
		}

		out := cmd.OutOrStdout()
		return report.Render(out, r, report.RenderOptions{
			Format: format,
			Color:  !runNoColor && isTerminal(out),
		})
	},
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
