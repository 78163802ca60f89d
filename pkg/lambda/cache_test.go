package lambda

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubHandler struct {
	id     int32
	closed atomic.Bool
}

func (h *stubHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, "ok")
}

func (h *stubHandler) Close() error {
	h.closed.Store(true)
	return nil
}

func quietLogger() *logrus.Logger {
	logger, _ := test.NewNullLogger()
	return logger
}

func TestHandlerCacheSingleBuildUnderConcurrency(t *testing.T) {
	var builds atomic.Int32
	release := make(chan struct{})

	cache := NewHandlerCache(func(ctx context.Context) (http.Handler, error) {
		n := builds.Add(1)
		<-release
		return &stubHandler{id: n}, nil
	}, WithLogger(quietLogger()))

	const callers = 64
	results := make([]http.Handler, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = cache.GetOrCreate(context.Background())
		}(i)
	}

	require.Eventually(t, func() bool {
		return cache.Phase() == Initializing
	}, time.Second, time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), builds.Load())
	assert.Equal(t, Ready, cache.Phase())
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Same(t, results[0], results[i])
	}
}

func TestHandlerCacheWarmCallsReuseHandler(t *testing.T) {
	var builds atomic.Int32
	cache := NewHandlerCache(func(ctx context.Context) (http.Handler, error) {
		builds.Add(1)
		return &stubHandler{}, nil
	}, WithLogger(quietLogger()))

	first, err := cache.GetOrCreate(context.Background())
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := cache.GetOrCreate(context.Background())
		require.NoError(t, err)
		assert.Same(t, first, again)
	}
	assert.Equal(t, int32(1), builds.Load())
}

func TestHandlerCacheRetriesAfterFailure(t *testing.T) {
	var builds atomic.Int32
	cache := NewHandlerCache(func(ctx context.Context) (http.Handler, error) {
		if builds.Add(1) == 1 {
			return nil, errors.New("database unavailable")
		}
		return &stubHandler{}, nil
	}, WithLogger(quietLogger()))

	_, err := cache.GetOrCreate(context.Background())
	require.EqualError(t, err, "database unavailable")
	assert.Equal(t, Uninitialized, cache.Phase())

	handler, err := cache.GetOrCreate(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, handler)
	assert.Equal(t, Ready, cache.Phase())
	assert.Equal(t, int32(2), builds.Load())
}

func TestHandlerCacheConcurrentWaitersShareFailure(t *testing.T) {
	var builds atomic.Int32
	release := make(chan struct{})
	cache := NewHandlerCache(func(ctx context.Context) (http.Handler, error) {
		builds.Add(1)
		<-release
		return nil, errors.New("migration failed")
	}, WithLogger(quietLogger()))

	const callers = 8
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		go func() {
			_, err := cache.GetOrCreate(context.Background())
			errs <- err
		}()
	}

	require.Eventually(t, func() bool {
		return cache.Phase() == Initializing
	}, time.Second, time.Millisecond)
	close(release)

	for i := 0; i < callers; i++ {
		err := <-errs
		// Callers arriving after the reset start a fresh build that fails the same way.
		assert.EqualError(t, err, "migration failed")
	}
	assert.Equal(t, Uninitialized, cache.Phase())
}

func TestHandlerCacheRecoversFromPanic(t *testing.T) {
	var builds atomic.Int32
	cache := NewHandlerCache(func(ctx context.Context) (http.Handler, error) {
		if builds.Add(1) == 1 {
			panic("route registration conflict")
		}
		return &stubHandler{}, nil
	}, WithLogger(quietLogger()))

	_, err := cache.GetOrCreate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "route registration conflict")
	assert.Equal(t, Uninitialized, cache.Phase())

	_, err = cache.GetOrCreate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Ready, cache.Phase())
}

func TestHandlerCacheRejectsNilHandler(t *testing.T) {
	cache := NewHandlerCache(func(ctx context.Context) (http.Handler, error) {
		return nil, nil
	}, WithLogger(quietLogger()))

	_, err := cache.GetOrCreate(context.Background())
	require.EqualError(t, err, "bootstrap returned no handler")
	assert.Equal(t, Uninitialized, cache.Phase())
}

func TestHandlerCacheWaiterCancellationDoesNotPoison(t *testing.T) {
	var builds atomic.Int32
	release := make(chan struct{})
	cache := NewHandlerCache(func(ctx context.Context) (http.Handler, error) {
		builds.Add(1)
		select {
		case <-release:
			return &stubHandler{}, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}, WithLogger(quietLogger()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := cache.GetOrCreate(ctx)
		done <- err
	}()

	require.Eventually(t, func() bool {
		return cache.Phase() == Initializing
	}, time.Second, time.Millisecond)
	cancel()

	assert.ErrorIs(t, <-done, context.Canceled)
	assert.Equal(t, Initializing, cache.Phase())

	close(release)
	handler, err := cache.GetOrCreate(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, handler)
	assert.Equal(t, int32(1), builds.Load())
}

func TestHandlerCacheBuildTimeout(t *testing.T) {
	cache := NewHandlerCache(func(ctx context.Context) (http.Handler, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}, WithLogger(quietLogger()), WithBuildTimeout(20*time.Millisecond))

	_, err := cache.GetOrCreate(context.Background())
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, Uninitialized, cache.Phase())
}

func TestHandlerCacheBuildTimeoutIgnoredByBuild(t *testing.T) {
	release := make(chan struct{})
	late := &stubHandler{id: 1}
	var builds atomic.Int32

	cache := NewHandlerCache(func(ctx context.Context) (http.Handler, error) {
		if builds.Add(1) == 1 {
			<-release
			return late, nil
		}
		return &stubHandler{id: 2}, nil
	}, WithLogger(quietLogger()), WithBuildTimeout(20*time.Millisecond))
	defer close(release)

	start := time.Now()
	_, err := cache.GetOrCreate(context.Background())
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 400*time.Millisecond)
	assert.Equal(t, Uninitialized, cache.Phase())

	handler, err := cache.GetOrCreate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), handler.(*stubHandler).id)
	assert.Equal(t, Ready, cache.Phase())

	release <- struct{}{}
	require.Eventually(t, late.closed.Load, time.Second, 5*time.Millisecond)

	current, err := cache.GetOrCreate(context.Background())
	require.NoError(t, err)
	assert.Same(t, handler, current)
}

func TestHandlerCacheObserverSeesEveryAttempt(t *testing.T) {
	var mu sync.Mutex
	var observed []error

	var builds atomic.Int32
	cache := NewHandlerCache(func(ctx context.Context) (http.Handler, error) {
		if builds.Add(1) == 1 {
			return nil, errors.New("first attempt fails")
		}
		return &stubHandler{}, nil
	}, WithLogger(quietLogger()), WithBuildObserver(func(_ time.Duration, err error) {
		mu.Lock()
		defer mu.Unlock()
		observed = append(observed, err)
	}))

	_, _ = cache.GetOrCreate(context.Background())
	_, _ = cache.GetOrCreate(context.Background())
	_, _ = cache.GetOrCreate(context.Background())

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, observed, 2)
	assert.Error(t, observed[0])
	assert.NoError(t, observed[1])
}

func TestHandlerCacheDispatch(t *testing.T) {
	t.Run("ServesCachedHandler", func(t *testing.T) {
		cache := NewHandlerCache(func(ctx context.Context) (http.Handler, error) {
			return &stubHandler{}, nil
		}, WithLogger(quietLogger()))

		recorder := httptest.NewRecorder()
		err := cache.Dispatch(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
		assert.Equal(t, "ok", recorder.Body.String())
	})

	t.Run("ReportsBuildFailure", func(t *testing.T) {
		cache := NewHandlerCache(func(ctx context.Context) (http.Handler, error) {
			return nil, errors.New("no database")
		}, WithLogger(quietLogger()))

		recorder := httptest.NewRecorder()
		err := cache.Dispatch(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
		require.EqualError(t, err, "no database")
		assert.Zero(t, recorder.Body.Len())
	})
}

func TestHandlerCacheClose(t *testing.T) {
	var builds atomic.Int32
	cache := NewHandlerCache(func(ctx context.Context) (http.Handler, error) {
		builds.Add(1)
		return &stubHandler{}, nil
	}, WithLogger(quietLogger()))

	require.NoError(t, cache.Close())

	handler, err := cache.GetOrCreate(context.Background())
	require.NoError(t, err)

	require.NoError(t, cache.Close())
	assert.True(t, handler.(*stubHandler).closed.Load())
	assert.Equal(t, Uninitialized, cache.Phase())

	_, err = cache.GetOrCreate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), builds.Load())
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "uninitialized", Uninitialized.String())
	assert.Equal(t, "initializing", Initializing.String())
	assert.Equal(t, "ready", Ready.String())
}
