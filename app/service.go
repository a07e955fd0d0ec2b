package app

import (
	"context"
	"fmt"
	"time"

	"github.com/kilianp07/spotflux/config"
	"github.com/kilianp07/spotflux/core/export"
	"github.com/kilianp07/spotflux/core/normalize"
	"github.com/kilianp07/spotflux/infra/checkpoint"
	"github.com/kilianp07/spotflux/infra/entsoe"
	"github.com/kilianp07/spotflux/infra/influx"
	"github.com/kilianp07/spotflux/infra/logger"
	"github.com/kilianp07/spotflux/infra/metrics"
	"github.com/kilianp07/spotflux/infra/publish"
	"github.com/kilianp07/spotflux/pkg/retry"
)

// Service wires the exporter and its collaborators from the configuration.
type Service struct {
	exporter  *export.Exporter
	sink      *influx.Sink
	publisher *publish.MQTTPublisher
	log       logger.Logger
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	source := entsoe.NewClient(cfg.Entsoe)
	sink := influx.NewSink(cfg.Influx)
	store := checkpoint.NewFileStore(cfg.Checkpoint)
	normalizer := normalize.New(normalize.Derivation{
		Source:         cfg.Export.Source,
		VATRate:        cfg.Export.VATRate,
		SourcingMarkup: cfg.Export.SourcingMarkup,
		EnergyTax:      cfg.Export.EnergyTax,
	}, nil)
	policy := retry.Policy{
		InitialInterval: time.Duration(cfg.Export.RetryInitialMS) * time.Millisecond,
		MaxAttempts:     uint64(cfg.Export.RetryMaxAttempts),
	}

	svc := &Service{sink: sink, log: logg}
	opts := []export.Option{}
	if cfg.Publish.Enabled() {
		pub, err := publish.NewMQTTPublisher(cfg.Publish)
		if err != nil {
			return nil, fmt.Errorf("mqtt publisher: %w", err)
		}
		svc.publisher = pub
		opts = append(opts, export.WithPublisher(pub))
	}
	if cfg.Metrics.Enabled() {
		opts = append(opts, export.WithRecorder(metrics.NewPushRecorder(cfg.Metrics)))
	}

	svc.exporter = export.New(source, sink, store, normalizer, policy, logger.New("exporter"), opts...)
	return svc, nil
}

// Run executes one export cycle for the current day.
func (s *Service) Run(ctx context.Context) error {
	res, err := s.exporter.Run(ctx, time.Now())
	if err != nil {
		return err
	}
	s.log.Infof("run complete: fetched=%d written=%d skipped=%d", res.Fetched, res.Written, res.Skipped)
	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.sink.Close()
	if s.publisher != nil {
		s.publisher.Close()
	}
	return nil
}
