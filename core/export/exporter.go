package export

import (
	"context"
	"errors"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/spotflux/core/logger"
	"github.com/kilianp07/spotflux/core/model"
	"github.com/kilianp07/spotflux/core/normalize"
	"github.com/kilianp07/spotflux/core/resolution"
	"github.com/kilianp07/spotflux/pkg/retry"
)

// PriceSource fetches the raw day-ahead publication for a time window.
type PriceSource interface {
	FetchDayAhead(ctx context.Context, periodStart, periodEnd time.Time) (normalize.Document, error)
}

// PriceSink accepts one row per interval. Insert must be duplicate-tolerant:
// a run that fails mid-loop is retried wholesale, so intervals written before
// the failure are delivered again on the next run.
type PriceSink interface {
	Init(ctx context.Context) error
	Insert(ctx context.Context, price model.SpotPrice) error
}

// CheckpointStore persists export progress between runs. Read returns
// (nil, nil) when no checkpoint exists yet.
type CheckpointStore interface {
	Read(ctx context.Context) (*model.Checkpoint, error)
	Write(ctx context.Context, cp model.Checkpoint) error
}

// Publisher pushes the run's future intervals to downstream consumers.
// Publication is best-effort and never fails the run.
type Publisher interface {
	PublishFuturePrices(ctx context.Context, prices []model.SpotPrice) error
}

// Recorder receives the run outcome for observability. Best-effort as well.
type Recorder interface {
	RecordRun(ctx context.Context, res Result, dur time.Duration, runErr error) error
}

// Result summarizes one export cycle.
type Result struct {
	Fetched  int
	Written  int
	Skipped  int
	LastFrom time.Time
}

// Exporter runs one ingestion cycle: fetch, normalize, reconcile against the
// checkpoint, write new intervals, persist the new checkpoint.
type Exporter struct {
	source     PriceSource
	sink       PriceSink
	store      CheckpointStore
	publisher  Publisher
	recorder   Recorder
	normalizer *normalize.Normalizer
	policy     retry.Policy
	log        logger.Logger
	now        func() time.Time
}

// Option configures optional collaborators.
type Option func(*Exporter)

// WithPublisher attaches a future-price publisher.
func WithPublisher(p Publisher) Option { return func(e *Exporter) { e.publisher = p } }

// WithRecorder attaches a run recorder.
func WithRecorder(r Recorder) Option { return func(e *Exporter) { e.recorder = r } }

// WithClock overrides the reference clock used for the future-interval cut.
func WithClock(now func() time.Time) Option { return func(e *Exporter) { e.now = now } }

// New builds an Exporter. A nil logger falls back to a nop.
func New(source PriceSource, sink PriceSink, store CheckpointStore, n *normalize.Normalizer, policy retry.Policy, log logger.Logger, opts ...Option) *Exporter {
	e := &Exporter{
		source:     source,
		sink:       sink,
		store:      store,
		normalizer: n,
		policy:     policy,
		log:        log,
		now:        time.Now,
	}
	if e.log == nil {
		e.log = nopLogger{}
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes one cycle for the calendar day containing ref (UTC). The
// returned Result is valid only when err is nil.
func (e *Exporter) Run(ctx context.Context, ref time.Time) (Result, error) {
	started := e.now()
	res, err := e.run(ctx, ref)
	if e.recorder != nil {
		if rerr := e.recorder.RecordRun(ctx, res, e.now().Sub(started), err); rerr != nil {
			e.log.Warnf("record run: %v", rerr)
		}
	}
	return res, err
}

func (e *Exporter) run(ctx context.Context, ref time.Time) (Result, error) {
	var res Result
	now := e.now()

	e.log.Infof("initializing sink")
	if err := e.policy.Do(ctx, func() error { return e.sink.Init(ctx) }); err != nil {
		return res, wrap(SinkWriteFailed, err)
	}

	e.log.Infof("reading previous checkpoint")
	var prev *model.Checkpoint
	if err := e.policy.Do(ctx, func() error {
		cp, err := e.store.Read(ctx)
		if err != nil {
			return err
		}
		prev = cp
		return nil
	}); err != nil {
		return res, wrap(CheckpointIOFailed, err)
	}

	periodStart := ref.UTC().Truncate(24 * time.Hour)
	periodEnd := periodStart.AddDate(0, 0, 1)
	e.log.Infof("retrieving day-ahead prices between %s and %s", periodStart.Format(time.RFC3339), periodEnd.Format(time.RFC3339))

	var doc normalize.Document
	if err := e.policy.Do(ctx, func() error {
		d, err := e.source.FetchDayAhead(ctx, periodStart, periodEnd)
		if err != nil {
			return err
		}
		doc = d
		return nil
	}); err != nil {
		return res, wrap(FetchFailed, err)
	}

	prices, err := e.normalizer.Normalize(doc)
	if err != nil {
		if errors.Is(err, resolution.ErrUnknownResolution) {
			return res, wrap(UnknownResolution, err)
		}
		return res, wrap(ParseFailed, err)
	}
	res.Fetched = len(prices)
	e.log.Infof("retrieved %d day-ahead prices", len(prices))
	e.logPriceSummary(prices)

	var future []model.SpotPrice
	var lastFrom time.Time
	wrote := false
	for _, price := range prices {
		if price.Till.After(now) {
			future = append(future, price)
		}

		isNew := prev == nil || price.From.After(prev.LastFrom)
		if !isNew {
			e.log.Debugw("skipping interval, already written", map[string]any{
				"from": price.From, "till": price.Till,
			})
			res.Skipped++
			continue
		}

		p := price
		if err := e.policy.Do(ctx, func() error { return e.sink.Insert(ctx, p) }); err != nil {
			return res, wrap(SinkWriteFailed, err)
		}
		lastFrom = price.From
		wrote = true
		res.Written++
	}

	if wrote {
		e.log.Infof("writing new checkpoint, lastFrom=%s", lastFrom.Format(time.RFC3339))
		cp := model.Checkpoint{FutureSpotPrices: future, LastFrom: lastFrom}
		if err := e.policy.Do(ctx, func() error { return e.store.Write(ctx, cp) }); err != nil {
			return res, wrap(CheckpointIOFailed, err)
		}
		res.LastFrom = lastFrom
	} else {
		e.log.Infof("no new intervals, leaving checkpoint untouched")
	}

	if e.publisher != nil && len(future) > 0 {
		if err := e.publisher.PublishFuturePrices(ctx, future); err != nil {
			e.log.Warnf("publish future prices: %v", err)
		}
	}

	return res, nil
}

func (e *Exporter) logPriceSummary(prices []model.SpotPrice) {
	if len(prices) == 0 {
		return
	}
	values := make([]float64, len(prices))
	for i, p := range prices {
		values[i] = p.MarketPrice
	}
	e.log.Infof("market price €/kWh min=%.4f mean=%.4f max=%.4f",
		floats.Min(values), stat.Mean(values, nil), floats.Max(values))
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)         {}
func (nopLogger) Debugw(string, map[string]any) {}
func (nopLogger) Infof(string, ...any)          {}
func (nopLogger) Warnf(string, ...any)          {}
func (nopLogger) Errorf(string, ...any)         {}
