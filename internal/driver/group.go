package driver

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// RunAll runs every driver in its own goroutine. The first failure cancels
// the others and is returned.
func RunAll(ctx context.Context, drivers ...*Driver) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, d := range drivers {
		g.Go(func() error {
			if err := d.Run(ctx); err != nil {
				return fmt.Errorf("character %q: %w", d.cfg.Character, err)
			}
			return nil
		})
	}
	return g.Wait()
}
