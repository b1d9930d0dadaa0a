package runner

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/abdul-hamid-achik/gqltester/packages/compare"
	"github.com/abdul-hamid-achik/gqltester/packages/core/fixture"
	"github.com/abdul-hamid-achik/gqltester/packages/expectation"
	"github.com/abdul-hamid-achik/gqltester/packages/http"
)

// Runner runs single fixtures. It is safe for concurrent use.
type Runner struct {
	client   *http.Client
	resolver *expectation.Resolver
	config   Config
	logger   *zap.Logger
}

type Option func(*Runner)

// WithClient replaces the query executor built from the config.
func WithClient(client *http.Client) Option {
	return func(r *Runner) {
		r.client = client
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func NewRunner(cfg Config, opts ...Option) *Runner {
	r := &Runner{
		config: cfg.WithDefaults(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.client == nil {
		clientOpts := []http.ClientOption{
			http.WithTimeout(r.config.Timeout),
			http.WithMaxAttempts(r.config.MaxAttempts),
			http.WithRetryDelay(r.config.RetryDelay),
			http.WithUserAgent(r.config.UserAgent),
			http.WithDefaultHeaders(r.config.Headers),
			http.WithLogger(r.logger.Named("http")),
		}
		if r.config.RateLimit > 0 {
			clientOpts = append(clientOpts, http.WithRateLimit(r.config.RateLimit, r.config.Workers))
		}
		r.client = http.NewClient(clientOpts...)
	}

	r.resolver = expectation.NewResolver(r.client, r.config.RegressionURL, r.logger.Named("expectation"))
	return r
}

// Run executes the fixture named by ref against the server under test.
// It never returns nil and never panics on bad input; every failure is
// described by the outcome's status.
func (r *Runner) Run(ctx context.Context, ref fixture.Ref) *Outcome {
	start := time.Now()
	out := &Outcome{Ref: ref, Name: ref.Name()}
	defer func() {
		out.Duration = time.Since(start)
	}()

	path := ref.Path(r.config.TestsDir)
	fx, err := fixture.Load(path)
	if err != nil {
		out.Status = StatusFixtureError
		out.Err = err
		return out
	}

	expected, err := r.resolver.Resolve(ctx, fx, ref)
	if err != nil {
		var regErr *expectation.RegressionError
		if errors.As(err, &regErr) {
			out.Status = StatusServerError
			out.HTTPStatus = regErr.Status
			out.Attempts = 1
			out.Err = err
			out.interrupted = regErr.Err != nil && ctx.Err() != nil
			return out
		}
		out.Status = StatusFixtureError
		out.Err = err
		return out
	}
	out.Expected = expected

	resp, attempts, err := r.client.ExecuteWithRetry(ctx, r.config.URL, http.Query{
		Text:      fx.Query,
		Variables: fx.Variables,
	})
	out.Attempts = attempts
	if resp != nil {
		out.HTTPStatus = resp.StatusCode
		out.Actual = resp.Canonical
	}

	if err != nil || !resp.IsOK() {
		out.Status = StatusServerError
		out.Err = err
		out.interrupted = err != nil && ctx.Err() != nil
		return out
	}

	r.logger.Debug("response received",
		zap.String("fixture", ref.String()),
		zap.String("request_id", resp.RequestID),
		zap.Duration("latency", resp.Duration))

	if attempts > 1 {
		r.logger.Warn("fixture needed retries",
			zap.String("fixture", ref.String()),
			zap.Int("attempts", attempts))
	}

	if compare.Strings(expected, resp.Canonical) {
		out.Status = StatusPassed
		return out
	}

	out.Status = StatusFailed
	out.Diff = compare.Diff(expected, resp.Canonical)

	if r.config.Replace {
		if err := replaceExpectation(path, resp.Canonical); err != nil {
			r.logger.Error("replacing expectation",
				zap.String("fixture", ref.String()),
				zap.Error(err))
			out.ReplaceErr = err
		} else {
			out.Replaced = true
		}
	}

	return out
}
