package runner

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/abdul-hamid-achik/gqltester/packages/core/fixture"
	"github.com/abdul-hamid-achik/gqltester/packages/core/suite"
)

var (
	// ErrInterrupted is returned when the caller's context is cancelled
	// before every suite finished.
	ErrInterrupted = errors.New("run interrupted")
	// ErrSuiteTimeout is returned when a suite does not finish within the
	// configured suite timeout.
	ErrSuiteTimeout = errors.New("suite timed out")
)

// CaseRunner runs one fixture. *Runner implements it.
type CaseRunner interface {
	Run(ctx context.Context, ref fixture.Ref) *Outcome
}

// Observer is notified from a single goroutine as the run progresses.
type Observer interface {
	SuiteStarted(suite string, fixtures int)
	OutcomeReady(o *Outcome)
}

type nopObserver struct{}

func (nopObserver) SuiteStarted(string, int) {}
func (nopObserver) OutcomeReady(*Outcome)    {}

// Orchestrator runs batches of fixtures suite by suite.
type Orchestrator struct {
	runner CaseRunner
	config Config
	logger *zap.Logger
}

func NewOrchestrator(runner CaseRunner, cfg Config, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		runner: runner,
		config: cfg.WithDefaults(),
		logger: logger,
	}
}

// Run executes batches in order. Within a suite fixtures run on a bounded
// pool unless the config asks for sequential execution. Cancelling ctx stops
// dispatching; fixtures already running get the grace period to finish
// before they are cancelled too. Outcomes collected so far are always
// returned in the report.
func (o *Orchestrator) Run(ctx context.Context, batches []suite.Batch, obs Observer) (*Report, error) {
	if obs == nil {
		obs = nopObserver{}
	}

	start := time.Now()
	report := &Report{}
	defer func() {
		report.Duration = time.Since(start)
	}()

	workCtx, stop := o.workContext(ctx)
	defer stop()

	for _, batch := range batches {
		if ctx.Err() != nil {
			break
		}

		obs.SuiteStarted(batch.Suite, len(batch.Fixtures))
		o.logger.Debug("running suite",
			zap.String("suite", batch.Suite),
			zap.Int("fixtures", len(batch.Fixtures)),
			zap.Bool("sequential", o.config.Sequential))

		var err error
		if o.config.Sequential {
			err = o.runSequential(ctx, workCtx, batch, report, obs)
		} else {
			err = o.runPooled(ctx, workCtx, batch, report, obs)
		}

		if err != nil {
			report.Interrupted = errors.Is(err, ErrInterrupted)
			report.TimedOut = errors.Is(err, ErrSuiteTimeout)
			return report, err
		}
	}

	if ctx.Err() != nil {
		report.Interrupted = true
		return report, ErrInterrupted
	}
	return report, nil
}

// workContext returns the context fixtures run under. It outlives ctx by the
// grace period.
func (o *Orchestrator) workContext(ctx context.Context) (context.Context, context.CancelFunc) {
	workCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	grace := o.config.GracePeriod
	var timer atomic.Pointer[time.Timer]

	stopAfter := context.AfterFunc(ctx, func() {
		if grace <= 0 {
			cancel()
			return
		}
		o.logger.Debug("interrupted, waiting for in-flight fixtures", zap.Duration("grace", grace))
		timer.Store(time.AfterFunc(grace, cancel))
	})

	return workCtx, func() {
		stopAfter()
		if t := timer.Load(); t != nil {
			t.Stop()
		}
		cancel()
	}
}

func (o *Orchestrator) runSequential(ctx, workCtx context.Context, batch suite.Batch, report *Report, obs Observer) error {
	for _, ref := range batch.Fixtures {
		if ctx.Err() != nil {
			return ErrInterrupted
		}
		out := o.runner.Run(workCtx, ref)
		if out.Interrupted() {
			continue
		}
		report.add(out)
		obs.OutcomeReady(out)
	}
	return nil
}

func (o *Orchestrator) runPooled(ctx, workCtx context.Context, batch suite.Batch, report *Report, obs Observer) error {
	suiteCtx, cancel := context.WithTimeout(workCtx, o.config.SuiteTimeout)
	defer cancel()

	stopped := func() bool {
		return ctx.Err() != nil || suiteCtx.Err() != nil
	}

	results := make(chan *Outcome)
	g := new(errgroup.Group)
	g.SetLimit(o.config.Workers)

	go func() {
		defer close(results)
		for _, ref := range batch.Fixtures {
			ref := ref
			if stopped() {
				break
			}
			g.Go(func() error {
				if stopped() {
					return nil
				}
				results <- o.runner.Run(suiteCtx, ref)
				return nil
			})
		}
		_ = g.Wait()
	}()

	for out := range results {
		if out.Interrupted() {
			continue
		}
		report.add(out)
		obs.OutcomeReady(out)
	}

	switch {
	case ctx.Err() != nil:
		return ErrInterrupted
	case errors.Is(suiteCtx.Err(), context.DeadlineExceeded):
		o.logger.Warn("suite timed out",
			zap.String("suite", batch.Suite),
			zap.Duration("timeout", o.config.SuiteTimeout))
		return fmt.Errorf("%w: %s after %s", ErrSuiteTimeout, batch.Suite, o.config.SuiteTimeout)
	}
	return nil
}
