// Package pool wraps github.com/jackc/puddle/v2's generic resource pool
// as the driver's connection pool (spec §5). puddle already solves
// bounded concurrent checkout/check-in with idle eviction and
// constructor/destructor hooks, so this package is a thin, typed
// adapter rather than a hand-rolled channel pool — the teacher's
// channel-based pool (go/go/driver.go's getConn/putConn) is the simpler
// shape this replaces once real concurrent checkout semantics (blocking
// with context cancellation, max-lifetime eviction) are required.
package pool

import (
	"context"

	"github.com/jackc/puddle/v2"
	"github.com/pkg/errors"
)

// Pool manages a bounded set of resources of type T (here, always a
// *connio.Conn-wrapping value from the root package) with a
// caller-supplied constructor and destructor.
type Pool[T any] struct {
	inner *puddle.Pool[T]
}

// Config mirrors puddle's constructor/destructor/MaxSize knobs plus the
// statement-cache-size-adjacent MinIdle the spec's pool model wants
// (puddle has no native min-idle concept, so New pre-warms MinIdle
// resources itself).
type Config[T any] struct {
	Constructor func(ctx context.Context) (T, error)
	Destructor  func(T)
	MaxSize     int32
	MinIdle     int32
}

// New builds a Pool and, if cfg.MinIdle > 0, eagerly constructs that many
// resources so the first MinIdle callers never pay a cold-start cost.
func New[T any](ctx context.Context, cfg Config[T]) (*Pool[T], error) {
	inner, err := puddle.NewPool(&puddle.Config[T]{
		Constructor: func(ctx context.Context) (T, error) { return cfg.Constructor(ctx) },
		Destructor:  cfg.Destructor,
		MaxSize:     cfg.MaxSize,
	})
	if err != nil {
		return nil, errors.Wrap(err, "pool: constructing puddle pool")
	}

	p := &Pool[T]{inner: inner}
	for i := int32(0); i < cfg.MinIdle; i++ {
		if err := inner.CreateResource(ctx); err != nil {
			// Pre-warming is best-effort: a transient dial failure here
			// shouldn't block pool construction, since Acquire will
			// retry the constructor on demand.
			break
		}
	}
	return p, nil
}

// Acquire checks out a resource, blocking until one is available, ctx is
// cancelled, or the constructor fails. The caller must call Release (or
// Destroy, for a poisoned resource) on the returned handle exactly once.
func (p *Pool[T]) Acquire(ctx context.Context) (*puddle.Resource[T], error) {
	res, err := p.inner.Acquire(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "pool: acquire")
	}
	return res, nil
}

// Stat exposes puddle's pool statistics for observability.
func (p *Pool[T]) Stat() *puddle.Stat { return p.inner.Stat() }

// Close destroys every resource and stops accepting new Acquire calls.
func (p *Pool[T]) Close() { p.inner.Close() }
