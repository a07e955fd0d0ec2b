package influx

import (
	"context"
	"fmt"
	"net/http"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/kilianp07/spotflux/core/model"
	"github.com/kilianp07/spotflux/infra/logger"
)

const measurement = "spot_price"

// Config defines the connection parameters for the InfluxDB sink.
type Config struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("influx url is required")
	}
	if c.Org == "" || c.Bucket == "" {
		return fmt.Errorf("influx org and bucket are required")
	}
	return nil
}

// Sink writes spot prices to an InfluxDB bucket using the official client.
// Points are keyed by measurement, tags and timestamp, so re-inserting an
// interval after a partially failed run overwrites instead of duplicating.
type Sink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	org      string
	bucket   string
	log      logger.Logger
}

// NewSink creates a sink configured for the given InfluxDB endpoint.
func NewSink(cfg Config) *Sink {
	client := influxdb2.NewClientWithOptions(cfg.URL, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 10 * time.Second}))
	return &Sink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		org:      cfg.Org,
		bucket:   cfg.Bucket,
		log:      logger.New("influx-sink"),
	}
}

// Init pings the instance and ensures the target bucket exists. Idempotent.
func (s *Sink) Init(ctx context.Context) error {
	health, err := s.client.Health(ctx)
	if err != nil {
		return fmt.Errorf("influx health check: %w", err)
	}
	if health.Status != "pass" {
		return fmt.Errorf("influx health status: %s", health.Status)
	}

	if _, err := s.client.BucketsAPI().FindBucketByName(ctx, s.bucket); err == nil {
		return nil
	}

	org, err := s.client.OrganizationsAPI().FindOrganizationByName(ctx, s.org)
	if err != nil {
		return fmt.Errorf("find organization %s: %w", s.org, err)
	}
	if _, err := s.client.BucketsAPI().CreateBucketWithName(ctx, org, s.bucket); err != nil {
		return fmt.Errorf("create bucket %s: %w", s.bucket, err)
	}
	s.log.Infof("created bucket %s", s.bucket)
	return nil
}

// Insert writes one interval as a point timestamped at its start.
func (s *Sink) Insert(ctx context.Context, price model.SpotPrice) error {
	// The generated id is a field, not a tag: identity of a point is
	// measurement+source+time, so a re-run that re-delivers an interval
	// overwrites the earlier row instead of duplicating it.
	p := write.NewPointWithMeasurement(measurement).
		AddTag("source", price.Source).
		AddField("id", price.ID).
		AddField("marketPrice", price.MarketPrice).
		AddField("marketPriceTax", price.MarketPriceTax).
		AddField("sourcingMarkupPrice", price.SourcingMarkupPrice).
		AddField("energyTaxPrice", price.EnergyTaxPrice).
		AddField("till", price.Till.UTC().Format(time.RFC3339)).
		SetTime(price.From)
	if err := s.writeAPI.WritePoint(ctx, p); err != nil {
		return fmt.Errorf("write spot price point: %w", err)
	}
	return nil
}

// Close releases the underlying HTTP resources.
func (s *Sink) Close() { s.client.Close() }
