// Package mock provides a fake GraphQL server that answers with the
// expectations stored in gqltester fixtures.
package mock

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/abdul-hamid-achik/gqltester/packages/core/fixture"
	"github.com/abdul-hamid-achik/gqltester/packages/core/suite"
	"github.com/abdul-hamid-achik/gqltester/packages/expectation"
)

const notFoundBody = `{"errors":[{"message":"no fixture matches this query and variables"}]}`

// Server is a mock GraphQL server based on fixture files
type Server struct {
	router *Router
	addr   string
	delay  time.Duration
	logger *zap.Logger
}

// Option is a functional option for Server
type Option func(*Server)

// WithPort listens on all interfaces at port
func WithPort(port int) Option {
	return func(s *Server) {
		s.addr = fmt.Sprintf(":%d", port)
	}
}

// WithAddr sets the listen address, for example "127.0.0.1:0"
func WithAddr(addr string) Option {
	return func(s *Server) {
		s.addr = addr
	}
}

// WithDelay adds a delay to all responses
func WithDelay(delay time.Duration) Option {
	return func(s *Server) {
		s.delay = delay
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a new mock server
func NewServer(opts ...Option) *Server {
	s := &Server{
		router: NewRouter(),
		addr:   ":4000",
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoadFixture registers the fixture at ref. Fixtures whose expectation
// comes from a regression server have no static answer and are skipped;
// loaded reports whether a route was added.
func (s *Server) LoadFixture(root string, ref fixture.Ref) (loaded bool, err error) {
	fx, err := fixture.Load(ref.Path(root))
	if err != nil {
		return false, fmt.Errorf("%s: %w", ref, err)
	}

	src := expectation.Classify(fx.Expectation)
	if src.Kind == expectation.KindRegression {
		s.logger.Debug("skipping regression fixture", zap.String("fixture", ref.String()))
		return false, nil
	}

	body, err := expectation.Literal(src.Text)
	if err != nil {
		return false, fmt.Errorf("%s: %w", ref, err)
	}

	s.router.AddRoute(&Route{
		Ref:       ref,
		Name:      ref.Name(),
		Query:     fx.Query,
		Variables: fx.Variables,
		Response: &MockResponse{
			StatusCode:  http.StatusOK,
			ContentType: "application/json",
			Body:        body,
		},
	})
	return true, nil
}

// LoadBatches registers every fixture of batches and stops at the first
// fixture that cannot be read.
func (s *Server) LoadBatches(root string, batches []suite.Batch) (loaded, skipped int, err error) {
	for _, b := range batches {
		for _, ref := range b.Fixtures {
			ok, err := s.LoadFixture(root, ref)
			if err != nil {
				return loaded, skipped, err
			}
			if ok {
				loaded++
			} else {
				skipped++
			}
		}
	}
	return loaded, skipped, nil
}

// Handler returns the HTTP handler answering GraphQL requests. It accepts
// form-encoded POSTs and GET query parameters.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRequest)
	return mux
}

// StartWithContext serves until ctx is cancelled, then shuts down gracefully
func (s *Server) StartWithContext(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	server := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("mock server starting",
		zap.String("addr", ln.Addr().String()),
		zap.Int("routes", s.router.Len()))

	err := server.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		<-done
		return nil
	}
	return err
}

func (s *Server) handleRequest(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if s.delay > 0 {
		select {
		case <-r.Context().Done():
			return
		case <-time.After(s.delay):
		}
	}

	if r.Method != http.MethodPost && r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET, POST")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	query := r.Form.Get("query")
	route := s.router.Match(query, r.Form.Get("variables"))
	if route == nil {
		s.logger.Info("no matching fixture",
			zap.String("method", r.Method),
			zap.Duration("elapsed", time.Since(start)))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(notFoundBody))
		return
	}

	resp := route.Response
	for key, value := range resp.Headers {
		w.Header().Set(key, value)
	}
	w.Header().Set("Content-Type", resp.ContentType)
	w.WriteHeader(resp.StatusCode)
	_, _ = w.Write([]byte(resp.Body))

	s.logger.Debug("served fixture",
		zap.String("fixture", route.Ref.String()),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))
}

// GetRoutes returns all registered routes
func (s *Server) GetRoutes() []*Route {
	return s.router.routes
}
