package pricefile

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"time"

	"github.com/kilianp07/spotflux/core/model"
)

// WriteJSON writes the intervals to w as an indented JSON array.
func WriteJSON(w io.Writer, prices []model.SpotPrice) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(prices)
}

// WriteCSV writes the intervals to w with one row per interval.
func WriteCSV(w io.Writer, prices []model.SpotPrice) error {
	cw := csv.NewWriter(w)
	header := []string{"id", "source", "from", "till", "marketPrice", "marketPriceTax", "sourcingMarkupPrice", "energyTaxPrice"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, p := range prices {
		rec := []string{
			p.ID,
			p.Source,
			p.From.Format(time.RFC3339),
			p.Till.Format(time.RFC3339),
			strconv.FormatFloat(p.MarketPrice, 'f', -1, 64),
			strconv.FormatFloat(p.MarketPriceTax, 'f', -1, 64),
			strconv.FormatFloat(p.SourcingMarkupPrice, 'f', -1, 64),
			strconv.FormatFloat(p.EnergyTaxPrice, 'f', -1, 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
