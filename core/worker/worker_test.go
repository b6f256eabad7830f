package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/AgbodesiImoagene/coingro-controller/core/coingro"
)

// fakeController records calls for loop assertions.
type fakeController struct {
	mu             sync.Mutex
	state          State
	startupCalls   int
	processCalls   int
	stoppedCalls   int
	cleanupCalls   int
	processErr     error
	stopAfterCalls int
}

func (f *fakeController) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *fakeController) SetState(state State) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = state
}

func (f *fakeController) Startup(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.startupCalls++
	return nil
}

func (f *fakeController) Process(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.processCalls++
	return f.processErr
}

func (f *fakeController) ProcessStopped(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stoppedCalls++
	return nil
}

func (f *fakeController) Cleanup() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleanupCalls++
}

func testWorker(c Controller) *Worker {
	w := New(c, Config{ProcessThrottleSecs: 1, HeartbeatInterval: 120, RetryTimeout: 1}, zap.NewNop())
	// Tight timings so tests run fast.
	w.throttle = 10 * time.Millisecond
	w.retryTimeout = 10 * time.Millisecond
	return w
}

func TestWorker_IterationRunning(t *testing.T) {
	c := &fakeController{state: StateRunning}
	w := testWorker(c)

	state := w.iteration(context.Background(), "")

	assert.Equal(t, StateRunning, state)
	assert.Equal(t, 1, c.startupCalls)
	assert.Equal(t, 1, c.processCalls)
	assert.Equal(t, 0, c.stoppedCalls)
}

func TestWorker_IterationStopped(t *testing.T) {
	c := &fakeController{state: StateStopped}
	w := testWorker(c)

	state := w.iteration(context.Background(), StateRunning)

	assert.Equal(t, StateStopped, state)
	assert.Equal(t, 0, c.startupCalls)
	assert.Equal(t, 1, c.stoppedCalls)
}

func TestWorker_StartupOnlyOnTransition(t *testing.T) {
	c := &fakeController{state: StateRunning}
	w := testWorker(c)

	state := w.iteration(context.Background(), "")
	state = w.iteration(context.Background(), state)
	w.iteration(context.Background(), state)

	assert.Equal(t, 1, c.startupCalls)
	assert.Equal(t, 3, c.processCalls)
}

func TestWorker_TemporaryErrorKeepsRunning(t *testing.T) {
	c := &fakeController{
		state:      StateRunning,
		processErr: coingro.NewTemporaryError(errors.New("bot starting up")),
	}
	w := testWorker(c)

	state := w.iteration(context.Background(), StateRunning)

	assert.Equal(t, StateRunning, state)
	assert.Equal(t, StateRunning, c.State())
}

func TestWorker_OperationalErrorStops(t *testing.T) {
	c := &fakeController{
		state:      StateRunning,
		processErr: errors.New("database gone"),
	}
	w := testWorker(c)

	w.iteration(context.Background(), StateRunning)

	assert.Equal(t, StateStopped, c.State())
}

func TestWorker_RunCleansUpOnCancel(t *testing.T) {
	c := &fakeController{state: StateRunning}
	w := testWorker(c)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not shut down")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	assert.Equal(t, 1, c.cleanupCalls)
	assert.GreaterOrEqual(t, c.processCalls, 1)
}

func TestWorker_Throttle(t *testing.T) {
	c := &fakeController{state: StateRunning}
	w := testWorker(c)
	w.throttle = 50 * time.Millisecond

	start := time.Now()
	w.iteration(context.Background(), StateRunning)

	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestIsTemporary(t *testing.T) {
	assert.True(t, IsTemporary(coingro.NewTemporaryError(errors.New("boom"))))
	assert.False(t, IsTemporary(errors.New("boom")))
	assert.False(t, IsTemporary(nil))
}
