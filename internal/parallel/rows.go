package parallel

// minRowsPerBand keeps tiny targets from paying per-job overhead.
const minRowsPerBand = 4

// Rows splits [0, height) into contiguous bands and calls fn(y0, y1) for each
// band on the pool, returning once all bands are done. fn must only write
// output rows in [y0, y1).
func (p *WorkerPool) Rows(height int, fn func(y0, y1 int)) {
	if height <= 0 {
		return
	}
	bands := min(p.workers*4, (height+minRowsPerBand-1)/minRowsPerBand)
	bands = max(bands, 1)
	step := (height + bands - 1) / bands

	jobs := make([]func(), 0, bands)
	for y0 := 0; y0 < height; y0 += step {
		y1 := min(y0+step, height)
		jobs = append(jobs, func() { fn(y0, y1) })
	}
	p.ExecuteAll(jobs)
}
