package pool

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolAcquireReleaseReusesResource(t *testing.T) {
	var constructed int32
	var destroyed int32

	p, err := New(context.Background(), Config[int]{
		Constructor: func(ctx context.Context) (int, error) {
			n := atomic.AddInt32(&constructed, 1)
			return int(n), nil
		},
		Destructor: func(int) { atomic.AddInt32(&destroyed, 1) },
		MaxSize:    2,
	})
	require.NoError(t, err)
	defer p.Close()

	res, err := p.Acquire(context.Background())
	require.NoError(t, err)
	res.Release()

	res2, err := p.Acquire(context.Background())
	require.NoError(t, err)
	res2.Release()

	// The second acquire should reuse the idle resource rather than
	// constructing a fresh one.
	assert.Equal(t, int32(1), atomic.LoadInt32(&constructed))
}

func TestPoolMinIdlePreWarms(t *testing.T) {
	var constructed int32
	p, err := New(context.Background(), Config[int]{
		Constructor: func(ctx context.Context) (int, error) {
			return int(atomic.AddInt32(&constructed, 1)), nil
		},
		MaxSize: 4,
		MinIdle: 3,
	})
	require.NoError(t, err)
	defer p.Close()

	assert.Equal(t, int32(3), atomic.LoadInt32(&constructed))
	assert.Equal(t, int32(3), p.Stat().IdleResources())
}

func TestPoolAcquireRespectsContextCancellation(t *testing.T) {
	p, err := New(context.Background(), Config[int]{
		Constructor: func(ctx context.Context) (int, error) { return 1, nil },
		MaxSize:     1,
	})
	require.NoError(t, err)
	defer p.Close()

	held, err := p.Acquire(context.Background())
	require.NoError(t, err)
	defer held.Release()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = p.Acquire(ctx)
	require.Error(t, err)
}

func TestPoolDestroyDropsResource(t *testing.T) {
	var destroyed int32
	p, err := New(context.Background(), Config[int]{
		Constructor: func(ctx context.Context) (int, error) { return 1, nil },
		Destructor:  func(int) { atomic.AddInt32(&destroyed, 1) },
		MaxSize:     1,
	})
	require.NoError(t, err)
	defer p.Close()

	res, err := p.Acquire(context.Background())
	require.NoError(t, err)
	res.Destroy()

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&destroyed) == 1
	}, time.Second, 10*time.Millisecond)
}
