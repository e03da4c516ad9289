package daemon

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/pixelpane/pixelpane/internal/config"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testServerConfig() config.ServerConfig {
	return config.ServerConfig{
		ListenAddr:      "127.0.0.1:0",
		MetricsAddr:     "", // metrics listener is exercised separately
		ReadTimeout:     time.Second,
		WriteTimeout:    time.Second,
		ShutdownTimeout: time.Second,
	}
}

func TestStartStopsOnContextCancel(t *testing.T) {
	m := NewManager(testServerConfig(), http.NotFoundHandler())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Start(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err, "context cancellation is the normal shutdown path")
	case <-time.After(3 * time.Second):
		t.Fatal("manager did not shut down")
	}
}

func TestRunnerFailureStopsManager(t *testing.T) {
	m := NewManager(testServerConfig(), http.NotFoundHandler())
	boom := errors.New("boom")
	m.AddRunner("failing", func(ctx context.Context) error { return boom })

	err := m.Start(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, "runner failing")
}

func TestRunnerCancellationIsNotAnError(t *testing.T) {
	m := NewManager(testServerConfig(), http.NotFoundHandler())
	m.AddRunner("loop", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Start(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("manager did not shut down")
	}
}

func TestShutdownHooksRunLIFO(t *testing.T) {
	m := NewManager(testServerConfig(), http.NotFoundHandler())

	var mu sync.Mutex
	var order []string
	record := func(name string) ShutdownHook {
		return func(ctx context.Context) error {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, name)
			return nil
		}
	}
	m.RegisterShutdownHook("first", record("first"))
	m.RegisterShutdownHook("second", record("second"))
	m.RegisterShutdownHook("third", record("third"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Start(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"third", "second", "first"}, order)
}

func TestHookFailureDoesNotBlockOthers(t *testing.T) {
	m := NewManager(testServerConfig(), http.NotFoundHandler())

	ran := make(chan struct{}, 1)
	m.RegisterShutdownHook("inner", func(ctx context.Context) error {
		ran <- struct{}{}
		return nil
	})
	m.RegisterShutdownHook("outer", func(ctx context.Context) error {
		return errors.New("cleanup failed")
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Start(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	select {
	case <-ran:
	default:
		t.Fatal("later hook failure must not skip earlier hooks")
	}
}

func TestStartTwiceFails(t *testing.T) {
	m := NewManager(testServerConfig(), http.NotFoundHandler())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Start(ctx) }()
	time.Sleep(50 * time.Millisecond)

	err := m.Start(ctx)
	assert.ErrorContains(t, err, "already started")

	cancel()
	require.NoError(t, <-done)
}

func TestMetricsListener(t *testing.T) {
	cfg := testServerConfig()
	cfg.MetricsAddr = "127.0.0.1:0"
	m := NewManager(cfg, http.NotFoundHandler())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Start(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	require.NoError(t, <-done)
}
