// Package expectation turns the last section of a fixture into the
// canonical response a test is compared against.
package expectation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/abdul-hamid-achik/gqltester/packages/canonical"
	"github.com/abdul-hamid-achik/gqltester/packages/core/fixture"
	"github.com/abdul-hamid-achik/gqltester/packages/http"
)

// RegressionMarker is the expectation section that asks for a live lookup.
const RegressionMarker = "URL"

var (
	// ErrInvalidExpectation is returned when a literal expectation is not JSON.
	ErrInvalidExpectation = errors.New("expectation is not valid JSON")
	// ErrNoRegressionTarget is returned for a bare URL marker when no
	// regression server is configured.
	ErrNoRegressionTarget = errors.New("expectation asks for a regression server but none is configured")
)

// RegressionError reports a regression lookup that did not return HTTP 200.
// Status is 0 when the request failed in transport.
type RegressionError struct {
	URL    string
	Status int
	Err    error
}

func (e *RegressionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("regression server %s failed: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("regression server %s returned with %d", e.URL, e.Status)
}

func (e *RegressionError) Unwrap() error {
	return e.Err
}

// Kind tells how an expectation section is resolved.
type Kind int

const (
	KindLiteral Kind = iota
	KindRegression
)

func (k Kind) String() string {
	if k == KindRegression {
		return "regression"
	}
	return "literal"
}

// Source is a classified expectation section.
type Source struct {
	Kind Kind
	// Text is the raw section for literal sources.
	Text string
	// URL is the address embedded after the marker, if any.
	URL string
}

// Classify inspects an expectation section. "URL" alone, or followed by
// whitespace and an address, is a regression marker; anything else is
// literal JSON.
func Classify(section string) Source {
	trimmed := strings.TrimSpace(section)
	if trimmed == RegressionMarker {
		return Source{Kind: KindRegression}
	}
	if rest, ok := strings.CutPrefix(trimmed, RegressionMarker); ok && rest != "" && isSpace(rest[0]) {
		if fields := strings.Fields(rest); len(fields) == 1 {
			return Source{Kind: KindRegression, URL: fields[0]}
		}
	}
	return Source{Kind: KindLiteral, Text: section}
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// Executor is the single-attempt half of the query executor.
type Executor interface {
	Execute(ctx context.Context, url string, q http.Query) (*http.Response, error)
}

type Resolver struct {
	executor      Executor
	regressionURL string
	logger        *zap.Logger
}

// NewResolver builds a resolver. A non-empty regressionURL overrides the
// expectation of every fixture.
func NewResolver(executor Executor, regressionURL string, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		executor:      executor,
		regressionURL: regressionURL,
		logger:        logger,
	}
}

// Resolve returns the canonical expected response for fx.
func (r *Resolver) Resolve(ctx context.Context, fx *fixture.Fixture, ref fixture.Ref) (string, error) {
	src := Classify(fx.Expectation)

	if r.regressionURL != "" || src.Kind == KindRegression {
		target := r.regressionURL
		if target == "" {
			target = src.URL
		}
		if target == "" {
			return "", ErrNoRegressionTarget
		}
		return r.fromRegression(ctx, target, fx, ref)
	}

	return Literal(src.Text)
}

// Literal canonicalizes a commented JSON expectation.
func Literal(text string) (string, error) {
	out, ok := canonical.JSON(canonical.StripComments(text))
	if !ok {
		return "", ErrInvalidExpectation
	}
	return out, nil
}

func (r *Resolver) fromRegression(ctx context.Context, target string, fx *fixture.Fixture, ref fixture.Ref) (string, error) {
	r.logger.Debug("resolving expectation from regression server",
		zap.String("fixture", ref.String()),
		zap.String("url", target))

	resp, err := r.executor.Execute(ctx, target, http.Query{Text: fx.Query, Variables: fx.Variables})
	if err != nil {
		return "", &RegressionError{URL: target, Err: err}
	}
	if !resp.IsOK() {
		return "", &RegressionError{URL: target, Status: resp.StatusCode}
	}
	return resp.Canonical, nil
}
