package browse

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/codes"

	"github.com/marmos91/smbenum/internal/logger"
	"github.com/marmos91/smbenum/internal/telemetry"
	"github.com/marmos91/smbenum/pkg/locator"
	"github.com/marmos91/smbenum/pkg/metrics"
	"github.com/marmos91/smbenum/pkg/smbclient"
)

type runIDKey struct{}

// WithRunID returns a context carrying the run identifier Target will use.
// Without one, Target generates a UUID.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey{}, id)
}

// RunIDFromContext returns the run identifier stored in ctx, if any.
func RunIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey{}).(string)
	return id
}

// Browser runs whole targets: it owns handle acquisition and release around
// one Engine walk.
type Browser struct {
	manager *smbclient.Manager
	engine  *Engine
	metrics metrics.BrowseMetrics
}

// NewBrowser returns a Browser creating handles through manager.
func NewBrowser(manager *smbclient.Manager, observer Observer, m metrics.BrowseMetrics) *Browser {
	return &Browser{
		manager: manager,
		engine:  NewEngine(observer, m),
		metrics: m,
	}
}

// Target browses the locator target down to maxDepth levels below it.
//
// The handle is released on every path. A malformed locator or a handle
// that cannot be created yields a critical result without any browsing.
func (b *Browser) Target(ctx context.Context, target string, maxDepth int) HostResult {
	start := time.Now()

	runID := RunIDFromContext(ctx)
	if runID == "" {
		runID = uuid.NewString()
		ctx = WithRunID(ctx, runID)
	}

	res := b.target(ctx, runID, target, maxDepth)
	res.RunID = runID
	res.Duration = time.Since(start)

	metrics.RecordRun(b.metrics, res.Outcome(), res.Duration)
	return res
}

func (b *Browser) target(ctx context.Context, runID, target string, maxDepth int) HostResult {
	loc, err := locator.Parse(target)
	if err != nil {
		logger.Warn("Rejected target", logger.RunID(runID), logger.Target(target), logger.Err(err))
		return HostResult{
			Code:    CodeMalformedLocator,
			Message: err.Error(),
			Locator: target,
		}
	}

	lc := logger.NewLogContext(runID, loc.Host).WithShare(loc.Share)
	port := loc.Port
	if port == 0 {
		port = b.manager.Options().Port
	}
	ctx, span := telemetry.StartTargetSpan(ctx, loc.Host, port, maxDepth,
		telemetry.RunID(runID), telemetry.Share(loc.Share))
	defer span.End()
	if tid := telemetry.TraceID(ctx); tid != "" {
		lc = lc.WithTrace(tid, telemetry.SpanID(ctx))
	}
	ctx = logger.WithContext(ctx, lc)

	base := HostResult{Host: loc.Host, Locator: loc.String()}

	h, err := b.manager.Create(ctx, loc)
	if err != nil {
		logger.ErrorCtx(ctx, "Cannot create connection handle", logger.Err(err))
		telemetry.RecordError(ctx, err)
		base.Code = CodeConnectionInit
		base.Message = fmt.Sprintf("cannot connect to %s: %v", loc.Host, err)
		return base
	}
	defer b.manager.Destroy(h)

	ctx = logger.WithContext(ctx, lc.WithUser(h.User()))
	span.SetAttributes(telemetry.Username(h.User()))
	logger.InfoCtx(ctx, "Browsing target", logger.Target(loc.String()), logger.KeyMaxDepth, maxDepth)

	res := b.engine.Browse(ctx, h, loc, maxDepth, 0)
	res.Host = base.Host
	res.Locator = base.Locator
	res.User = h.User()

	span.SetAttributes(telemetry.Result(res.Code, res.Succeeds, res.Fails)...)
	if res.IsCritical() {
		span.SetStatus(codes.Error, res.Message)
	}

	args := []any{logger.Code(res.Code), logger.KeyOutcome, res.Outcome(),
		logger.KeySucceeds, res.Succeeds, logger.KeyFails, res.Fails,
		logger.KeyDurationMs, lc.DurationMs()}
	switch {
	case res.IsCritical():
		logger.ErrorCtx(ctx, "Target aborted", append(args, logger.KeyError, res.Message)...)
	case res.IsPartial():
		logger.WarnCtx(ctx, "Target browsed with failures", args...)
	default:
		logger.InfoCtx(ctx, "Target browsed", args...)
	}
	return res
}
