package preset

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/gray-logic-av/internal/routing"
)

// commandBudget bounds the routing work of a recall. Step delays are
// added on top by recallTimeout.
const commandBudget = 60 * time.Second

// Router makes one route. *routing.Dispatcher implements it.
type Router interface {
	MakeRoute(ctx context.Context, inputID, outputID string) error
}

// Listener receives every finished execution.
type Listener interface {
	PresetRecalled(exec Execution)
}

// Recorder receives recall outcomes for metrics.
type Recorder interface {
	RecordPresetRecall(status string, duration time.Duration)
}

// Options configures an Engine.
type Options struct {
	Registry *Registry
	Router   Router
	Logger   Logger
	Recorder Recorder
}

// Engine recalls presets through the router.
//
// Thread Safety: Recall is safe for concurrent use.
type Engine struct {
	registry *Registry
	router   Router
	logger   Logger
	recorder Recorder

	listeners  []Listener
	listenerMu sync.RWMutex
}

// NewEngine creates a preset engine. Registry and Router are required.
func NewEngine(opts Options) (*Engine, error) {
	if opts.Registry == nil {
		return nil, fmt.Errorf("%w: registry", ErrMissingDependency)
	}
	if opts.Router == nil {
		return nil, fmt.Errorf("%w: router", ErrMissingDependency)
	}
	if opts.Logger == nil {
		opts.Logger = noopLogger{}
	}
	return &Engine{
		registry: opts.Registry,
		router:   opts.Router,
		logger:   opts.Logger,
		recorder: opts.Recorder,
	}, nil
}

// Registry returns the engine's preset registry.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// AddListener registers l for finished executions.
func (e *Engine) AddListener(l Listener) {
	e.listenerMu.Lock()
	e.listeners = append(e.listeners, l)
	e.listenerMu.Unlock()
}

// Recall runs every step of a preset and returns the execution record.
//
// Returns:
//   - *Execution: outcome of the recall, including per-step failures
//   - error: ErrPresetNotFound or ErrPresetDisabled; step failures are
//     reported in the Execution, not as an error
func (e *Engine) Recall(ctx context.Context, presetID, trigger string) (*Execution, error) {
	p, err := e.registry.Get(presetID)
	if err != nil {
		return nil, err
	}
	if p.Disabled {
		return nil, ErrPresetDisabled
	}

	ctx, cancel := context.WithTimeout(ctx, recallTimeout(p.Steps))
	defer cancel()

	exec := &Execution{
		ID:         uuid.NewString(),
		PresetID:   p.ID,
		PresetName: p.Name,
		Trigger:    trigger,
		StepsTotal: len(p.Steps),
		StartedAt:  time.Now().UTC(),
	}

	e.logger.Info("preset recall started",
		"preset_id", p.ID,
		"execution_id", exec.ID,
		"steps", len(p.Steps),
		"trigger", trigger,
	)

	aborted := false
	for _, group := range groupSteps(p.Steps) {
		if aborted {
			exec.StepsSkipped += len(group)
			continue
		}

		if ctx.Err() != nil {
			exec.StepsSkipped += len(group)
			exec.Status = StatusCancelled
			aborted = true
			continue
		}

		failures := e.runGroup(ctx, group)
		exec.StepsCompleted += len(group) - len(failures)
		exec.StepsFailed += len(failures)
		exec.Failures = append(exec.Failures, failures...)

		for _, f := range failures {
			if !p.Steps[f.StepIndex].ContinueOnError {
				aborted = true
				break
			}
		}
	}

	exec.CompletedAt = time.Now().UTC()
	duration := exec.CompletedAt.Sub(exec.StartedAt)
	exec.DurationMS = duration.Milliseconds()

	switch {
	case exec.Status == StatusCancelled:
	case exec.StepsFailed > 0 && aborted:
		exec.Status = StatusFailed
	case exec.StepsFailed > 0:
		exec.Status = StatusPartial
	default:
		exec.Status = StatusCompleted
	}

	e.logger.Info("preset recall complete",
		"preset_id", p.ID,
		"execution_id", exec.ID,
		"status", exec.Status,
		"completed", exec.StepsCompleted,
		"failed", exec.StepsFailed,
		"skipped", exec.StepsSkipped,
		"duration_ms", exec.DurationMS,
	)

	if e.recorder != nil {
		e.recorder.RecordPresetRecall(string(exec.Status), duration)
	}
	e.notify(*exec)

	return exec, nil
}

// runGroup runs every step of a group concurrently and returns the
// failures ordered by step index.
func (e *Engine) runGroup(ctx context.Context, group []indexedStep) []StepFailure {
	results := make([]*StepFailure, len(group))

	var wg sync.WaitGroup
	for i, st := range group {
		wg.Add(1)
		go func(i int, st indexedStep) {
			defer wg.Done()
			if err := e.runStep(ctx, st); err != nil {
				results[i] = &StepFailure{
					StepIndex: st.index,
					Input:     st.Input,
					Output:    st.Output,
					ErrorCode: errorCode(err),
					ErrorMsg:  err.Error(),
				}
			}
		}(i, st)
	}
	wg.Wait()

	var failures []StepFailure
	for _, f := range results {
		if f != nil {
			failures = append(failures, *f)
		}
	}
	return failures
}

func (e *Engine) runStep(ctx context.Context, st indexedStep) error {
	if st.DelayMS > 0 {
		timer := time.NewTimer(time.Duration(st.DelayMS) * time.Millisecond)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return fmt.Errorf("step delayed: %w", ctx.Err())
		}
	}

	if err := e.router.MakeRoute(ctx, st.Input, st.Output); err != nil {
		return err
	}

	e.logger.Debug("preset step routed", "step", st.index, "input", st.Input, "output", st.Output)
	return nil
}

func (e *Engine) notify(exec Execution) {
	e.listenerMu.RLock()
	listeners := make([]Listener, len(e.listeners))
	copy(listeners, e.listeners)
	e.listenerMu.RUnlock()

	for _, l := range listeners {
		func() {
			defer func() {
				if r := recover(); r != nil {
					e.logger.Error("preset listener panic recovered", "panic", r)
				}
			}()
			l.PresetRecalled(exec)
		}()
	}
}

// errorCode classifies a step error. Context errors are reported as
// "cancelled"; route errors use the routing status names.
func errorCode(err error) string {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "cancelled"
	}
	return routing.StatusOf(err)
}
