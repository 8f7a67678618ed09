package bodycrop

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Pool assembles samples from a Dataset with a bounded number of workers
type Pool struct {
	// ds is the dataset samples are read from
	ds *Dataset
	// size of pool
	size int
}

// NewPool creates a worker pool of the given size, a size below one is
// treated as one
func NewPool(ds *Dataset, size int) *Pool {

	if size < 1 {
		size = 1
	}

	return &Pool{
		ds:   ds,
		size: size,
	}
}

// Size returns the number of workers
func (p *Pool) Size() int {
	return p.size
}

// Run assembles the samples at the given indices and passes each to fn.  The
// sample is closed once fn returns, so fn must not keep it.  fn may be called
// concurrently.  The first error cancels outstanding work and is returned.
func (p *Pool) Run(ctx context.Context, indices []int, fn func(*Sample) error) error {

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.size)

	for _, idx := range indices {

		if gctx.Err() != nil {
			break
		}

		idx := idx

		g.Go(func() error {

			if err := gctx.Err(); err != nil {
				return err
			}

			s, err := p.ds.Get(idx)

			if err != nil {
				return err
			}

			defer s.Close()

			return fn(s)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	return ctx.Err()
}

// RunAll runs fn over every sample in the dataset
func (p *Pool) RunAll(ctx context.Context, fn func(*Sample) error) error {

	indices := make([]int, p.ds.Len())

	for i := range indices {
		indices[i] = i
	}

	return p.Run(ctx, indices, fn)
}
