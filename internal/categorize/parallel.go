package categorize

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// CategorizeAll categorizes offers on up to workers goroutines (0 means
// GOMAXPROCS). The result is index-aligned with offers. It stops scheduling
// new work once ctx is done and returns the context error.
func (m *Matcher) CategorizeAll(ctx context.Context, offers []Offer, matchItemsLimit, workers int) ([]CategorizedOffer, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	out := make([]CategorizedOffer, len(offers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range offers {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = m.CategorizeOffer(offers[i], matchItemsLimit)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
