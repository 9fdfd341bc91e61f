package main

import (
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/UnknownOlympus/dialysphere/internal/locator"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

func newLocateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "locate <postal-code>",
		Short: "Geocode the facilities sharing a postal code and print them as JSON lines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			postalCode := args[0]

			var bar *progressbar.ProgressBar
			var progress locator.ProgressFunc
			if isatty.IsTerminal(os.Stderr.Fd()) {
				bar = progressbar.NewOptions(len(a.dataset.Match(postalCode)),
					progressbar.OptionSetDescription("Geocoding "+postalCode),
					progressbar.OptionSetWriter(os.Stderr),
					progressbar.OptionShowCount(),
					progressbar.OptionClearOnFinish(),
				)
				progress = func(done, _ int) { _ = bar.Set(done) }
			}

			geocoder, err := a.geocoder(progress)
			if err != nil {
				return err
			}

			result, err := locator.NewLocator(a.log, a.dataset, geocoder, a.metrics).Locate(ctx, postalCode)
			if bar != nil {
				_ = bar.Finish()
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			for _, f := range result.Facilities {
				if encErr := enc.Encode(f); encErr != nil {
					return encErr
				}
			}

			return err
		},
	}
}
