package normalize

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/spotflux/core/model"
	"github.com/kilianp07/spotflux/core/resolution"
)

// Document is the provider-neutral form of a day-ahead price publication.
// The wire adapter decodes XML into this shape; the normalizer never sees XML.
type Document struct {
	Series []Series
}

// Series holds one period of uniformly sized intervals.
type Series struct {
	Period Period
}

// Period carries the start instant, the resolution code sizing every interval,
// and the ordered point values. Points have no timestamps of their own; the
// position in the slice determines the offset from Start.
type Period struct {
	Start      time.Time
	Resolution string
	Points     []Point
}

// Point is a single raw price in provider units (€/MWh).
type Point struct {
	PriceAmount float64
}

// IDGenerator mints interval identifiers. Injected so tests can be deterministic.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator is the production IDGenerator.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string { return uuid.NewString() }

// Derivation holds the fixed pricing parameters applied to every interval.
type Derivation struct {
	Source         string
	VATRate        float64
	SourcingMarkup float64
	EnergyTax      float64
}

// Normalizer flattens a Document into chronologically ordered SpotPrices.
type Normalizer struct {
	der Derivation
	ids IDGenerator
}

// New creates a Normalizer. A nil ids falls back to random UUIDs.
func New(der Derivation, ids IDGenerator) *Normalizer {
	if ids == nil {
		ids = UUIDGenerator{}
	}
	return &Normalizer{der: der, ids: ids}
}

// Normalize walks the document in order and emits one SpotPrice per point.
// A cursor starts at each period's start and advances by the resolved interval
// width, so consecutive intervals within a series are contiguous. Resolution
// failures abort with no partial output. An empty document is not an error.
func (n *Normalizer) Normalize(doc Document) ([]model.SpotPrice, error) {
	if len(doc.Series) == 0 {
		return nil, nil
	}

	prices := make([]model.SpotPrice, 0, totalPoints(doc))
	for _, series := range doc.Series {
		cursor := series.Period.Start
		for _, point := range series.Period.Points {
			end, err := resolution.PeriodEnd(cursor, series.Period.Resolution)
			if err != nil {
				return nil, fmt.Errorf("resolve interval end at %s: %w", cursor.Format(time.RFC3339), err)
			}

			perKWh := point.PriceAmount / 1000

			prices = append(prices, model.SpotPrice{
				ID:                  n.ids.NewID(),
				Source:              n.der.Source,
				From:                cursor,
				Till:                end,
				MarketPrice:         perKWh,
				MarketPriceTax:      perKWh * n.der.VATRate,
				SourcingMarkupPrice: n.der.SourcingMarkup,
				EnergyTaxPrice:      n.der.EnergyTax,
			})
			cursor = end
		}
	}
	return prices, nil
}

func totalPoints(doc Document) int {
	total := 0
	for _, s := range doc.Series {
		total += len(s.Period.Points)
	}
	return total
}
