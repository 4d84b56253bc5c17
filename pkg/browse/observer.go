package browse

import "context"

// Observer receives every visited entry in traversal order, whether or not
// it could be stat'ed. Implementations must not block for long: the walk
// waits for them.
type Observer interface {
	Object(ctx context.Context, obj ObjectResult)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, obj ObjectResult)

// Object implements Observer.
func (f ObserverFunc) Object(ctx context.Context, obj ObjectResult) { f(ctx, obj) }

// Observers fans an entry out to several observers in order. Nil members
// are skipped.
type Observers []Observer

// Object implements Observer.
func (os Observers) Object(ctx context.Context, obj ObjectResult) {
	for _, o := range os {
		if o != nil {
			o.Object(ctx, obj)
		}
	}
}

// Collector is an Observer that keeps every entry in memory.
type Collector struct {
	Objects []ObjectResult
}

// Object implements Observer.
func (c *Collector) Object(_ context.Context, obj ObjectResult) {
	c.Objects = append(c.Objects, obj)
}
