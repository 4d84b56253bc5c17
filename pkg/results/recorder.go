package results

import (
	"context"
	"sync"
	"time"

	"github.com/marmos91/smbenum/internal/logger"
	"github.com/marmos91/smbenum/pkg/browse"
)

// RunSaver persists a finished run. *Store implements it.
type RunSaver interface {
	SaveRun(ctx context.Context, run *Run) error
}

// Recorder is a browse.Observer that buffers each run's objects, keyed by
// the run ID carried in the context, until Finish saves them with the
// run's result. It is safe for concurrent runs.
type Recorder struct {
	saver RunSaver

	mu      sync.Mutex
	pending map[string][]Object
}

// NewRecorder returns a Recorder saving through saver.
func NewRecorder(saver RunSaver) *Recorder {
	return &Recorder{saver: saver, pending: make(map[string][]Object)}
}

// Object implements browse.Observer. Objects outside a run are ignored.
func (r *Recorder) Object(ctx context.Context, obj browse.ObjectResult) {
	runID := browse.RunIDFromContext(ctx)
	if runID == "" {
		return
	}

	o := Object{
		Share:       obj.Share,
		Path:        obj.Path(),
		Category:    obj.Category.String(),
		TypeCode:    uint32(obj.Type),
		ACL:         obj.ACL,
		Permissions: obj.Permissions,
		Hidden:      obj.Hidden,
		Depth:       obj.Depth,
	}
	if obj.Err != nil {
		o.Error = obj.Err.Error()
	}

	r.mu.Lock()
	o.Seq = len(r.pending[runID])
	r.pending[runID] = append(r.pending[runID], o)
	r.mu.Unlock()
}

// Finish saves res with the objects buffered for its run and forgets them.
func (r *Recorder) Finish(ctx context.Context, res browse.HostResult, maxDepth int) error {
	r.mu.Lock()
	objects := r.pending[res.RunID]
	delete(r.pending, res.RunID)
	r.mu.Unlock()

	run := NewRun(res, maxDepth)
	run.Objects = objects

	if err := r.saver.SaveRun(ctx, run); err != nil {
		logger.Warn("Failed to record run", logger.RunID(res.RunID), logger.Err(err))
		return err
	}
	logger.Debug("Run recorded", logger.RunID(res.RunID), logger.Entries(len(objects)))
	return nil
}

// Pending returns how many runs have buffered objects.
func (r *Recorder) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

// NewRun converts a finished HostResult into a Run without objects.
func NewRun(res browse.HostResult, maxDepth int) *Run {
	return &Run{
		ID:         res.RunID,
		Host:       res.Host,
		Locator:    res.Locator,
		User:       res.User,
		MaxDepth:   maxDepth,
		Code:       res.Code,
		Outcome:    res.Outcome(),
		Message:    res.Message,
		Succeeds:   res.Succeeds,
		Fails:      res.Fails,
		StartedAt:  time.Now().Add(-res.Duration),
		DurationMs: res.Duration.Milliseconds(),
	}
}

// Result converts a stored run back into a HostResult.
func (r *Run) Result() browse.HostResult {
	return browse.HostResult{
		Code:     r.Code,
		Message:  r.Message,
		Succeeds: r.Succeeds,
		Fails:    r.Fails,
		RunID:    r.ID,
		Host:     r.Host,
		User:     r.User,
		Locator:  r.Locator,
		Duration: time.Duration(r.DurationMs) * time.Millisecond,
	}
}
