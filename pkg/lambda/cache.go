package lambda

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// Phase is the lifecycle state of a HandlerCache.
type Phase int32

const (
	Uninitialized Phase = iota
	Initializing
	Ready
)

func (p Phase) String() string {
	switch p {
	case Initializing:
		return "initializing"
	case Ready:
		return "ready"
	default:
		return "uninitialized"
	}
}

// BuildFunc constructs the handler the cache hands out.
type BuildFunc func(ctx context.Context) (http.Handler, error)

// BuildObserver is told how long each construction attempt took and whether
// it failed.
type BuildObserver func(duration time.Duration, err error)

// slot is one immutable state of the cache. A nil slot means Uninitialized.
type slot struct {
	phase   Phase
	handler http.Handler
	pending *pendingBuild
}

// pendingBuild is shared by every caller waiting on the same construction.
// handler and err are written before done is closed.
type pendingBuild struct {
	done    chan struct{}
	handler http.Handler
	err     error
}

// HandlerCache memoizes the application handler for the lifetime of the
// process. Concurrent callers arriving during a cold start share a single
// construction; a failed construction leaves the cache empty so the next
// caller retries.
type HandlerCache struct {
	build    BuildFunc
	timeout  time.Duration
	logger   *logrus.Logger
	observer BuildObserver

	state atomic.Pointer[slot]
}

// CacheOption configures a HandlerCache.
type CacheOption func(*HandlerCache)

// WithBuildTimeout bounds a single construction attempt.
func WithBuildTimeout(timeout time.Duration) CacheOption {
	return func(c *HandlerCache) {
		c.timeout = timeout
	}
}

// WithLogger sets the logger used for construction events.
func WithLogger(logger *logrus.Logger) CacheOption {
	return func(c *HandlerCache) {
		c.logger = logger
	}
}

// WithBuildObserver registers a callback for construction attempts.
func WithBuildObserver(observer BuildObserver) CacheOption {
	return func(c *HandlerCache) {
		c.observer = observer
	}
}

// NewHandlerCache creates an empty cache around build.
func NewHandlerCache(build BuildFunc, opts ...CacheOption) *HandlerCache {
	c := &HandlerCache{build: build}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logrus.New()
	}
	return c
}

// Phase reports the current lifecycle state.
func (c *HandlerCache) Phase() Phase {
	if s := c.state.Load(); s != nil {
		return s.phase
	}
	return Uninitialized
}

// GetOrCreate returns the cached handler, constructing it on first use.
//
// The caller that moves the cache out of Uninitialized starts the build;
// everyone else arriving before it completes waits for that same build. The
// build runs detached from any one caller's cancellation, so a caller whose
// ctx ends stops waiting without abandoning the construction.
func (c *HandlerCache) GetOrCreate(ctx context.Context) (http.Handler, error) {
	for {
		current := c.state.Load()
		if current != nil {
			switch current.phase {
			case Ready:
				return current.handler, nil
			case Initializing:
				return c.await(ctx, current.pending)
			}
		}

		next := &slot{
			phase:   Initializing,
			pending: &pendingBuild{done: make(chan struct{})},
		}
		if !c.state.CompareAndSwap(current, next) {
			continue
		}

		go c.initialize(context.WithoutCancel(ctx), next)
		return c.await(ctx, next.pending)
	}
}

// Dispatch serves r with the cached handler, reporting construction
// failures to the caller instead of writing a response.
func (c *HandlerCache) Dispatch(w http.ResponseWriter, r *http.Request) error {
	handler, err := c.GetOrCreate(r.Context())
	if err != nil {
		return err
	}
	handler.ServeHTTP(w, r)
	return nil
}

// Close resets a ready cache and closes the handler when it is an io.Closer.
func (c *HandlerCache) Close() error {
	current := c.state.Load()
	if current == nil || current.phase != Ready {
		return nil
	}
	if !c.state.CompareAndSwap(current, nil) {
		return nil
	}
	if closer, ok := current.handler.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func (c *HandlerCache) await(ctx context.Context, pending *pendingBuild) (http.Handler, error) {
	select {
	case <-pending.done:
		if pending.err != nil {
			return nil, pending.err
		}
		return pending.handler, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// buildResult is the outcome of one call to the build function.
type buildResult struct {
	handler http.Handler
	err     error
}

func (c *HandlerCache) initialize(ctx context.Context, claimed *slot) {
	pending := claimed.pending
	defer close(pending.done)

	c.logger.Info("Bootstrapping application")

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	results := make(chan buildResult, 1)
	go func() {
		handler, err := c.runBuild(ctx)
		results <- buildResult{handler: handler, err: err}
	}()

	// the build may ignore ctx, so the deadline is enforced here as well
	var result buildResult
	select {
	case result = <-results:
	case <-ctx.Done():
		result.err = fmt.Errorf("bootstrap did not finish within %s: %w", c.timeout, ctx.Err())
		go c.discardLate(results)
	}
	duration := time.Since(start)

	if c.observer != nil {
		c.observer(duration, result.err)
	}

	if result.err != nil {
		pending.err = result.err
		c.state.CompareAndSwap(claimed, nil)
		c.logger.WithError(result.err).WithField("duration_ms", duration.Milliseconds()).Error("Application bootstrap failed")
		return
	}

	pending.handler = result.handler
	c.state.CompareAndSwap(claimed, &slot{phase: Ready, handler: result.handler})
	c.logger.WithField("duration_ms", duration.Milliseconds()).Info("Application ready")
}

// discardLate waits for a build abandoned on timeout and closes its handler.
func (c *HandlerCache) discardLate(results <-chan buildResult) {
	result := <-results
	if result.err != nil {
		return
	}
	c.logger.Warn("Discarding application built after the bootstrap timeout")
	if closer, ok := result.handler.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			c.logger.WithError(err).Error("Failed to close discarded application")
		}
	}
}

func (c *HandlerCache) runBuild(ctx context.Context) (handler http.Handler, err error) {
	defer func() {
		if r := recover(); r != nil {
			handler = nil
			err = fmt.Errorf("bootstrap panicked: %v", r)
		}
	}()

	handler, err = c.build(ctx)
	if err == nil && handler == nil {
		err = fmt.Errorf("bootstrap returned no handler")
	}
	return handler, err
}
