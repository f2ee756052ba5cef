package raster

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ParallelRows splits [0, rows) into contiguous bands and runs fn on each
// band concurrently, returning once every band is done. fn must only write
// to rows inside its band. workers <= 0 means runtime.NumCPU().
func ParallelRows(rows, workers int, fn func(r0, r1 int)) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > rows {
		workers = rows
	}
	if workers <= 1 {
		if rows > 0 {
			fn(0, rows)
		}
		return
	}

	rowsPerWorker := (rows + workers - 1) / workers
	var g errgroup.Group
	g.SetLimit(workers)
	for start := 0; start < rows; start += rowsPerWorker {
		r0, r1 := start, min(start+rowsPerWorker, rows)
		g.Go(func() error {
			fn(r0, r1)
			return nil
		})
	}
	_ = g.Wait()
}
