// seehuhn.de/go/raster - band algebra and colour correction for raster images
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package parallel implements the data-parallel loops used by the raster
// engines.
package parallel

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Workers returns n if it is positive, and the number of usable CPUs
// otherwise.
func Workers(n int) int {
	if n > 0 {
		return n
	}
	return runtime.GOMAXPROCS(0)
}

// For calls fn(start, end) for consecutive ranges which together cover
// [0, n).  The ranges are processed concurrently by at most workers
// goroutines, and For returns once all calls have completed.
func For(workers, n int, fn func(start, end int)) {
	if n <= 0 {
		return
	}

	workers = min(Workers(workers), n)
	if workers == 1 {
		fn(0, n)
		return
	}

	chunkSize := (n + workers - 1) / workers

	var g errgroup.Group
	for i := range workers {
		start := i * chunkSize
		end := min(start+chunkSize, n)
		if start >= n {
			break
		}
		g.Go(func() error {
			fn(start, end)
			return nil
		})
	}
	g.Wait()
}

// Each calls fn(ctx, i) for every i in [0, n), using at most workers
// goroutines.  After the first error, or once ctx is cancelled, no new
// calls are started and the first error is returned.
func Each(ctx context.Context, workers, n int, fn func(ctx context.Context, i int) error) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(Workers(workers))
	for i := range n {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(gctx, i)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
