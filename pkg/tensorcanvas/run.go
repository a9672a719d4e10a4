package tensorcanvas

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/randalmurphal/tensorcanvas/pkg/tensorcanvas/backend"
	"github.com/randalmurphal/tensorcanvas/pkg/tensorcanvas/observability"
	"github.com/randalmurphal/tensorcanvas/pkg/tensorcanvas/varstore"
	"go.opentelemetry.io/otel/trace"
)

// RunResult describes one execution of the compiled graph.
type RunResult struct {
	// RunID keys the values saved to the value store.
	RunID string
	// Duration covers evaluation and saving.
	Duration time.Duration
	// Saved is the number of values written to the value store.
	Saved int
}

// Run evaluates the compiled graph once. When a value store is configured,
// every bound variable's value is saved under a fresh run ID; a failed
// save is logged and skipped.
//
// Returns ErrNotCompiled if there is no successfully compiled graph.
func (b *Builder) Run(ctx context.Context) (result RunResult, runErr error) {
	if b.graph == nil {
		return RunResult{}, ErrNotCompiled
	}

	result.RunID = uuid.NewString()
	startTime := time.Now()
	observability.LogRunStart(b.cfg.logger, result.RunID)

	var span trace.Span
	if b.cfg.tracingEnabled {
		ctx, span = b.cfg.spans.StartRunSpan(ctx, result.RunID)
		defer func() {
			b.cfg.spans.EndSpanWithError(span, runErr)
		}()
	}

	runErr = b.graph.Run(ctx)
	if runErr == nil {
		result.Saved = b.saveValues(result.RunID)
	}

	result.Duration = time.Since(startTime)
	durationMs := float64(result.Duration.Microseconds()) / 1000
	b.cfg.metrics.RecordRun(ctx, runErr == nil, result.Duration)
	if runErr != nil {
		runErr = fmt.Errorf("run: %w", runErr)
		observability.LogRunError(b.cfg.logger, result.RunID, runErr, durationMs)
		return result, runErr
	}
	observability.LogRunComplete(b.cfg.logger, result.RunID, durationMs, result.Saved)
	return result, nil
}

// saveValues copies every bound variable into the value store.
func (b *Builder) saveValues(runID string) int {
	if b.cfg.values == nil {
		return 0
	}
	saved := 0
	for _, h := range b.store.Handles() {
		bh, ok := b.store.Get(h).Backend()
		if !ok {
			continue
		}
		value, err := b.graph.Value(bh)
		if err == nil {
			err = b.cfg.values.Save(runID, h.String(), value)
		}
		if err != nil {
			observability.LogValueStoreError(b.cfg.logger, runID, h.String(), err)
			continue
		}
		saved++
	}
	return saved
}

// Feed writes values into a managed variable of the compiled graph, for
// example the batch behind an Input node. len(data) must match its shape.
func (b *Builder) Feed(h varstore.Handle, data []float64) error {
	if b.graph == nil {
		return ErrNotCompiled
	}
	v := b.store.Get(h)
	if !v.Managed {
		return fmt.Errorf("feed %s: %w", h, ErrNotManaged)
	}
	bh, ok := v.Backend()
	if !ok {
		return fmt.Errorf("feed %s: %w", h, ErrUnboundVariable)
	}
	if err := b.graph.Set(bh, data); err != nil {
		return fmt.Errorf("feed %s: %w", h, err)
	}
	return nil
}

// Value copies a variable's current value out of the compiled graph.
func (b *Builder) Value(h varstore.Handle) (backend.Tensor, error) {
	if b.graph == nil {
		return backend.Tensor{}, ErrNotCompiled
	}
	bh, ok := b.store.Get(h).Backend()
	if !ok {
		return backend.Tensor{}, fmt.Errorf("value %s: %w", h, ErrUnboundVariable)
	}
	t, err := b.graph.Value(bh)
	if err != nil {
		return backend.Tensor{}, fmt.Errorf("value %s: %w", h, err)
	}
	return t, nil
}

// Compiled reports whether the last Compile succeeded.
func (b *Builder) Compiled() bool {
	return b.graph != nil
}
