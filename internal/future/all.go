package future

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// AllMap turns a map of futures into a future of a map holding their values.
//
// The join is fail-fast: the first rejection rejects the result, and the
// context handed to the remaining waiters is cancelled. No partial map is
// ever delivered.
func AllMap[K comparable, T any](ctx context.Context, fs map[K]*Future[T]) *Future[map[K]T] {
	out, resolve, reject := New[map[K]T]()

	go func() {
		g, gctx := errgroup.WithContext(ctx)

		var mu sync.Mutex
		results := make(map[K]T, len(fs))

		for key, f := range fs {
			g.Go(func() error {
				v, err := f.Await(gctx)
				if err != nil {
					return err
				}
				mu.Lock()
				results[key] = v
				mu.Unlock()
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			reject(err)
			return
		}
		resolve(results)
	}()

	return out
}
