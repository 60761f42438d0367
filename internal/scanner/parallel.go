package scanner

import (
	"context"
	"runtime"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Result is the outcome of processing one scanned package
type Result[T any] struct {
	Package ScannedPackage
	Value   T
	Err     error
}

// Process runs fn over pkgs with at most workers calls in flight and
// returns one result per package, in input order. A failing package does
// not stop the others; only cancellation of ctx does.
func Process[T any](ctx context.Context, pkgs []ScannedPackage, workers int, fn func(context.Context, ScannedPackage) (T, error)) ([]Result[T], error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]Result[T], len(pkgs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, pkg := range pkgs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			v, err := fn(ctx, pkg)
			if err != nil {
				logrus.Debugf("Processing %s failed: %v", pkg.Path, err)
			}
			results[i] = Result[T]{Package: pkg, Value: v, Err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
