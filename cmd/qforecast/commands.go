package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	forecaster "github.com/aouyang1/go-ensemble-forecaster"
	"github.com/aouyang1/go-ensemble-forecaster/feature"
	"github.com/aouyang1/go-ensemble-forecaster/models"
	"github.com/aouyang1/go-ensemble-forecaster/registry"
	"github.com/aouyang1/go-ensemble-forecaster/timedataset"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var configFile string

	rootCmd := &cobra.Command{
		Use:           "qforecast",
		Short:         "Ensemble forecasting of quarterly business metrics",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Config file (default ./qforecast.yaml)")

	rootCmd.AddCommand(forecastCmd(&configFile))
	rootCmd.AddCommand(decomposeCmd(&configFile))
	return rootCmd
}

func addCommonFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("input", "i", "", "Observation file (.json or .csv)")
	cmd.Flags().StringP("output", "o", "", "Output file (default stdout)")
	cmd.Flags().String("log-level", "info", "Log level (debug, info, warn, error)")
}

// forecastCmd trains the ensemble on the input and predicts the following quarters
func forecastCmd(configFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Forecast the quarters following the input series",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, *configFile)
			if err != nil {
				return err
			}
			setupLogger(cmd.ErrOrStderr(), cfg)

			obs, err := readObservations(cfg.Input)
			if err != nil {
				return fmt.Errorf("unable to read input, %w", err)
			}

			f, err := forecaster.New(&forecaster.Options{
				ModelOptions: &models.Options{
					PolynomialOrder: cfg.PolynomialOrder,
				},
				IntervalZScore: cfg.IntervalZScore,
			})
			if err != nil {
				return fmt.Errorf("unable to initialize forecaster, %w", err)
			}

			var extra feature.Extra
			if cfg.Calendar {
				extra, err = calendarExtra(obs, cfg.Periods)
				if err != nil {
					return err
				}
			}

			res, err := f.ForecastWithFeatures(obs, extra, cfg.Periods)
			if err != nil {
				return fmt.Errorf("unable to forecast, %w", err)
			}
			slog.Info("forecast complete",
				"periods", len(res.Predictions), "model_accuracy", res.ModelAccuracy,
				"has_seasonality", res.Metadata.HasSeasonality,
			)

			if cfg.Plot != "" {
				if err := writePlot(f, cfg.Plot, obs, res); err != nil {
					return err
				}
			}
			if cfg.ShowModels {
				if err := registry.TablePrint(cmd.ErrOrStderr(), f.ListModels(), "", "  ", 0); err != nil {
					return err
				}
			}

			return writeOutput(cmd.OutOrStdout(), cfg, func(w io.Writer) error {
				if cfg.Format == "table" {
					return res.TablePrint(w, "", "  ", 0)
				}
				return writeJSON(w, res)
			})
		},
	}

	addCommonFlags(cmd)
	cmd.Flags().IntP("periods", "p", 4, "Number of quarters to forecast")
	cmd.Flags().StringP("format", "f", "json", "Output format (json or table)")
	cmd.Flags().String("plot", "", "Write an html chart of the forecast to this file")
	cmd.Flags().Bool("calendar", false, "Add business day and holiday counts as features")
	cmd.Flags().Bool("show-models", false, "Print the trained models to stderr")
	cmd.Flags().Int("polynomial-order", 2, "Order of the polynomial estimator")
	cmd.Flags().Float64("interval-zscore", 1.96, "Z-score applied to the model disagreement interval")
	return cmd
}

// decomposeCmd prints the seasonal decomposition of the input
func decomposeCmd(configFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decompose",
		Short: "Decompose the input series into trend, seasonal and residual components",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, *configFile)
			if err != nil {
				return err
			}
			setupLogger(cmd.ErrOrStderr(), cfg)

			obs, err := readObservations(cfg.Input)
			if err != nil {
				return fmt.Errorf("unable to read input, %w", err)
			}

			f, err := forecaster.New(nil)
			if err != nil {
				return fmt.Errorf("unable to initialize forecaster, %w", err)
			}
			res, err := f.Decompose(obs)
			if err != nil {
				return fmt.Errorf("unable to decompose, %w", err)
			}

			return writeOutput(cmd.OutOrStdout(), cfg, func(w io.Writer) error {
				return writeJSON(w, res)
			})
		},
	}
	addCommonFlags(cmd)
	return cmd
}

// calendarExtra derives calendar features for the observed quarters and the forecast horizon
func calendarExtra(obs []timedataset.Observation, periodsAhead int) (feature.Extra, error) {
	td, err := timedataset.NewQuarterlyDataset(obs)
	if err != nil {
		return nil, fmt.Errorf("unable to create dataset, %w", err)
	}
	first := td.Periods[0]
	n := td.LastPeriod().Index() - first.Index() + 1 + max(periodsAhead, 0)
	return feature.CalendarFeatures(timedataset.GeneratePeriods(n, first)), nil
}

func setupLogger(w io.Writer, cfg *Config) {
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: cfg.slogLevel()})))
}

func writeOutput(stdout io.Writer, cfg *Config, write func(io.Writer) error) error {
	if cfg.Output == "" {
		return write(stdout)
	}
	file, err := os.Create(cfg.Output)
	if err != nil {
		return fmt.Errorf("unable to create output file, %w", err)
	}
	if err := write(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writePlot(f *forecaster.Forecaster, path string, obs []timedataset.Observation, res *forecaster.Results) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("unable to create plot file, %w", err)
	}
	if err := f.PlotForecast(file, obs, res); err != nil {
		file.Close()
		return fmt.Errorf("unable to plot forecast, %w", err)
	}
	slog.Debug("wrote forecast plot", "path", path, "last_period", res.Metadata.LastPeriod)
	return file.Close()
}
