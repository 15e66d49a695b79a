package resilience

import (
	"context"

	"golang.org/x/sync/singleflight"
)

// SingleFlight collapses concurrent loads of one key into a single call.
type SingleFlight struct {
	group singleflight.Group
}

func (g *SingleFlight) Do(key string, fn func() (any, error)) (any, error, bool) {
	return g.group.Do(key, fn)
}

// DoContext is Do for request-scoped callers: a caller whose context ends
// stops waiting, while the shared call keeps running for the others.
func (g *SingleFlight) DoContext(ctx context.Context, key string, fn func() (any, error)) (any, bool, error) {
	select {
	case res := <-g.group.DoChan(key, fn):
		return res.Val, res.Shared, res.Err
	case <-ctx.Done():
		return nil, false, ctx.Err()
	}
}

func (g *SingleFlight) Forget(key string) {
	g.group.Forget(key)
}
