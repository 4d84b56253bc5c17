// Package browse implements the recursive browse-and-aggregate walk over an
// SMB host and the per-target orchestration around it.
package browse

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/codes"

	"github.com/marmos91/smbenum/internal/logger"
	"github.com/marmos91/smbenum/internal/telemetry"
	"github.com/marmos91/smbenum/pkg/classify"
	"github.com/marmos91/smbenum/pkg/locator"
	"github.com/marmos91/smbenum/pkg/metrics"
	"github.com/marmos91/smbenum/pkg/smbclient"
)

// Session is what the engine needs from a connection handle.
// *smbclient.Handle implements it.
type Session interface {
	List(ctx context.Context, loc locator.Locator) ([]smbclient.Entry, error)
	Stat(ctx context.Context, loc locator.Locator, typ smbclient.EntryType) (smbclient.Stat, error)
	User() string
}

// Engine walks a host depth first and aggregates the outcome of every entry.
// It holds no per-run state and may be shared by concurrent runs as long as
// each run uses its own Session.
type Engine struct {
	observer Observer
	metrics  metrics.BrowseMetrics
}

// NewEngine returns an Engine. Both arguments may be nil.
func NewEngine(observer Observer, m metrics.BrowseMetrics) *Engine {
	return &Engine{observer: observer, metrics: m}
}

// Browse lists loc and stats every entry in delivery order. Containers are
// descended while depth < maxDepth. A failed stat is counted and the walk
// moves on; a failed listing at any level is critical and unwinds at once,
// skipping the remaining siblings at every level.
//
// There is no cycle detection: maxDepth is the only bound.
func (e *Engine) Browse(ctx context.Context, s Session, loc locator.Locator, maxDepth, depth int) HostResult {
	ctx, span := telemetry.StartBrowseSpan(ctx, loc.String(), depth, telemetry.Level(loc.Level().String()))
	defer span.End()

	res := e.browse(ctx, s, loc, maxDepth, depth)

	span.SetAttributes(telemetry.Result(res.Code, res.Succeeds, res.Fails)...)
	if res.IsCritical() {
		span.SetStatus(codes.Error, res.Message)
	}
	return res
}

func (e *Engine) browse(ctx context.Context, s Session, loc locator.Locator, maxDepth, depth int) HostResult {
	entries, err := s.List(ctx, loc)
	if err != nil {
		failure := smbclient.Classify(err)
		var se *smbclient.StatusError
		if errors.As(err, &se) {
			telemetry.SetAttributes(ctx, telemetry.NTStatus(se.Status))
		}
		logger.DebugCtx(ctx, "Listing failed", logger.Path(loc.String()), logger.Depth(depth),
			logger.KeyFailure, string(failure), logger.Err(err))
		return HostResult{
			Code:    criticalCode(failure),
			Message: fmt.Sprintf("unable to list %s: %v", loc, err),
		}
	}

	telemetry.SetAttributes(ctx, telemetry.Entries(len(entries)))

	res := HostResult{Code: CodeSuccess}
	var firstFailure string

	for _, entry := range entries {
		child := loc.Join(entry.Name)
		obj := e.object(s, child, entry, depth)

		st, err := s.Stat(ctx, child, entry.Type)
		if err != nil {
			if smbclient.Classify(err) == smbclient.FailureCancelled {
				return HostResult{
					Code:     CodeCancelled,
					Message:  fmt.Sprintf("cancelled at %s: %v", child, err),
					Succeeds: res.Succeeds,
					Fails:    res.Fails,
				}
			}

			res.Fails++
			obj.Err = err
			if firstFailure == "" {
				firstFailure = fmt.Sprintf("%s: %v", child, err)
			}
			e.emit(ctx, obj)
			continue
		}

		res.Succeeds++
		obj.ACL = st.ACL
		obj.Permissions = classify.ACLFor(obj.Category, st.ACL)
		e.emit(ctx, obj)

		if !obj.Category.IsContainer() || depth >= maxDepth {
			continue
		}

		sub := e.Browse(ctx, s, child, maxDepth, depth+1)
		res.Succeeds += sub.Succeeds
		res.Fails += sub.Fails

		if sub.IsCritical() {
			res.Code = sub.Code
			res.Message = sub.Message
			return res
		}
		if sub.IsPartial() && firstFailure == "" {
			firstFailure = sub.Message
		}
	}

	if res.Fails > 0 {
		res.Code = CodePartial
		res.Message = fmt.Sprintf("%d of %d entries under %s could not be read; first: %s",
			res.Fails, res.Visited(), loc, firstFailure)
	}
	return res
}

func (e *Engine) object(s Session, child locator.Locator, entry smbclient.Entry, depth int) ObjectResult {
	cat := classify.Type(entry.Type)
	return ObjectResult{
		User:        s.User(),
		Host:        child.Host,
		Share:       child.Share,
		Object:      child.Object,
		Type:        entry.Type,
		Hidden:      cat.IsShare() && classify.Hidden(entry.Name),
		Category:    cat,
		Permissions: classify.ACL(0),
		Depth:       depth,
	}
}

func (e *Engine) emit(ctx context.Context, obj ObjectResult) {
	metrics.RecordObject(e.metrics, obj.Category.String(), obj.OK())
	if e.observer != nil {
		e.observer.Object(ctx, obj)
	}
}
