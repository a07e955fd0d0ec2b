package entsoe

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"time"

	"github.com/kilianp07/spotflux/core/normalize"
)

// startLayout matches the publication's interval timestamps, which carry no
// seconds: 2024-01-01T00:00Z.
const startLayout = "2006-01-02T15:04Z07:00"

type publicationDocument struct {
	XMLName    xml.Name     `xml:"Publication_MarketDocument"`
	TimeSeries []timeSeries `xml:"TimeSeries"`
}

type timeSeries struct {
	Period period `xml:"Period"`
}

type period struct {
	TimeInterval timeInterval `xml:"timeInterval"`
	Resolution   string       `xml:"resolution"`
	Points       []point      `xml:"Point"`
}

type timeInterval struct {
	Start string `xml:"start"`
}

type point struct {
	Position    int    `xml:"position"`
	PriceAmount string `xml:"price.amount"`
}

// decodeDocument parses the raw XML body into the neutral document model.
func decodeDocument(body []byte) (normalize.Document, error) {
	var raw publicationDocument
	if err := xml.Unmarshal(body, &raw); err != nil {
		return normalize.Document{}, fmt.Errorf("unmarshal publication document: %w", err)
	}

	doc := normalize.Document{Series: make([]normalize.Series, 0, len(raw.TimeSeries))}
	for _, ts := range raw.TimeSeries {
		start, err := time.Parse(startLayout, ts.Period.TimeInterval.Start)
		if err != nil {
			return normalize.Document{}, fmt.Errorf("parse period start %q: %w", ts.Period.TimeInterval.Start, err)
		}

		points := make([]normalize.Point, 0, len(ts.Period.Points))
		for _, p := range ts.Period.Points {
			amount, err := strconv.ParseFloat(p.PriceAmount, 64)
			if err != nil {
				return normalize.Document{}, fmt.Errorf("parse price amount %q: %w", p.PriceAmount, err)
			}
			points = append(points, normalize.Point{PriceAmount: amount})
		}

		doc.Series = append(doc.Series, normalize.Series{Period: normalize.Period{
			Start:      start.UTC(),
			Resolution: ts.Period.Resolution,
			Points:     points,
		}})
	}
	return doc, nil
}
