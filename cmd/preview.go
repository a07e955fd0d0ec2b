package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/spotflux/config"
	"github.com/kilianp07/spotflux/core/normalize"
	"github.com/kilianp07/spotflux/infra/entsoe"
	"github.com/kilianp07/spotflux/pkg/pricefile"
)

var previewFormat string

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Fetch and normalize today's prices without writing anything",
	RunE:  preview,
}

func init() {
	previewCmd.Flags().StringVarP(&previewFormat, "format", "f", "json", "output format: json or csv")
	rootCmd.AddCommand(previewCmd)
}

func preview(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	periodStart := time.Now().UTC().Truncate(24 * time.Hour)
	periodEnd := periodStart.AddDate(0, 0, 1)

	client := entsoe.NewClient(cfg.Entsoe)
	doc, err := client.FetchDayAhead(ctx, periodStart, periodEnd)
	if err != nil {
		return fmt.Errorf("fetch day-ahead prices: %w", err)
	}

	normalizer := normalize.New(normalize.Derivation{
		Source:         cfg.Export.Source,
		VATRate:        cfg.Export.VATRate,
		SourcingMarkup: cfg.Export.SourcingMarkup,
		EnergyTax:      cfg.Export.EnergyTax,
	}, nil)
	prices, err := normalizer.Normalize(doc)
	if err != nil {
		return fmt.Errorf("normalize document: %w", err)
	}

	switch previewFormat {
	case "json":
		return pricefile.WriteJSON(os.Stdout, prices)
	case "csv":
		return pricefile.WriteCSV(os.Stdout, prices)
	default:
		return fmt.Errorf("unknown format %s", previewFormat)
	}
}
