package worker

import (
	"context"
	"errors"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/AgbodesiImoagene/coingro-controller/core/version"
)

// Config holds the loop timing internals.
type Config struct {
	// ProcessThrottleSecs is the minimum duration of one loop iteration.
	ProcessThrottleSecs int `mapstructure:"process_throttle_secs" default:"5"`
	// HeartbeatInterval is the interval in seconds between heartbeat logs.
	// Zero disables the heartbeat.
	HeartbeatInterval int `mapstructure:"heartbeat_interval" default:"120"`
	// RetryTimeout is the sleep in seconds after a temporary error.
	RetryTimeout int `mapstructure:"retry_timeout" default:"30"`
}

// State is the controller run state.
type State string

const (
	// StateRunning means the controller reconciles bots each iteration.
	StateRunning State = "running"
	// StateStopped means the controller idles until restarted.
	StateStopped State = "stopped"
)

// Controller is the reconcile target driven by the worker loop.
type Controller interface {
	// State returns the current run state.
	State() State
	// SetState transitions the run state.
	SetState(state State)
	// Startup runs once on every transition into the running state.
	Startup(ctx context.Context) error
	// Process runs one reconcile iteration.
	Process(ctx context.Context) error
	// ProcessStopped runs one iteration while stopped.
	ProcessStopped(ctx context.Context) error
	// Cleanup releases resources on shutdown.
	Cleanup()
}

type temporary interface {
	Temporary() bool
}

// IsTemporary reports whether err is marked as retryable.
func IsTemporary(err error) bool {
	var t temporary
	return errors.As(err, &t) && t.Temporary()
}

// Worker runs the throttled controller loop.
type Worker struct {
	controller Controller
	logger     *zap.Logger

	throttle      time.Duration
	heartbeat     time.Duration
	retryTimeout  time.Duration
	lastHeartbeat time.Time
}

// New creates a worker around the given controller.
func New(controller Controller, cfg Config, logger *zap.Logger) *Worker {
	throttle := cfg.ProcessThrottleSecs
	if throttle <= 0 {
		throttle = 5
	}
	retry := cfg.RetryTimeout
	if retry <= 0 {
		retry = 30
	}
	return &Worker{
		controller:   controller,
		logger:       logger,
		throttle:     time.Duration(throttle) * time.Second,
		heartbeat:    time.Duration(cfg.HeartbeatInterval) * time.Second,
		retryTimeout: time.Duration(retry) * time.Second,
	}
}

// Run executes the worker loop until the context is cancelled, then cleans
// up the controller.
func (w *Worker) Run(ctx context.Context) {
	w.logger.Info("Starting worker", zap.String("version", version.Version))

	var oldState State
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Worker shutting down")
			w.controller.Cleanup()
			return
		default:
		}
		oldState = w.iteration(ctx, oldState)
	}
}

// iteration runs one throttled loop pass and returns the state it observed.
func (w *Worker) iteration(ctx context.Context, oldState State) State {
	state := w.controller.State()

	if state != oldState {
		if oldState != "" {
			w.logger.Info("Changing state",
				zap.String("from", string(oldState)),
				zap.String("to", string(state)))
		} else {
			w.logger.Info("Changing state", zap.String("to", string(state)))
		}
		if state == StateRunning {
			if err := w.controller.Startup(ctx); err != nil {
				w.logger.Error("Startup failed", zap.Error(err))
			}
		}
		// Reset so the heartbeat logs on the first iteration after a
		// state change.
		w.lastHeartbeat = time.Time{}
	}

	switch state {
	case StateStopped:
		w.throttled(ctx, func(ctx context.Context) {
			if err := w.controller.ProcessStopped(ctx); err != nil {
				w.logger.Error("Stopped-state processing failed", zap.Error(err))
			}
		})
	case StateRunning:
		w.throttled(ctx, w.processRunning)
	}

	if w.heartbeat > 0 && time.Since(w.lastHeartbeat) > w.heartbeat {
		w.logger.Info("Controller heartbeat",
			zap.Int("pid", os.Getpid()),
			zap.String("version", version.Version),
			zap.String("state", string(state)))
		w.lastHeartbeat = time.Now()
	}

	return state
}

// throttled runs fn and sleeps the remainder of the throttle interval so
// each iteration takes at least that long.
func (w *Worker) throttled(ctx context.Context, fn func(ctx context.Context)) {
	start := time.Now()
	fn(ctx)
	elapsed := time.Since(start)

	if sleep := w.throttle - elapsed; sleep > 0 {
		w.logger.Debug("Throttling iteration",
			zap.Duration("sleep", sleep),
			zap.Duration("elapsed", elapsed))
		select {
		case <-ctx.Done():
		case <-time.After(sleep):
		}
	}
}

func (w *Worker) processRunning(ctx context.Context) {
	err := w.controller.Process(ctx)
	if err == nil {
		return
	}

	if IsTemporary(err) {
		w.logger.Warn("Temporary error, retrying",
			zap.Error(err),
			zap.Duration("retry_in", w.retryTimeout))
		select {
		case <-ctx.Done():
		case <-time.After(w.retryTimeout):
		}
		return
	}

	w.logger.Error("Operational error, stopping controller", zap.Error(err))
	w.controller.SetState(StateStopped)
}
