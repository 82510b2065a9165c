package kernel

import (
	"runtime"
	"sync"
)

// Parallel is the data-parallel Resizer. It partitions the output array into
// leading-axis slabs and fills them on a pool of worker goroutines, the way
// an accelerator-backed kernel would partition the grid. The call is still
// blocking and returns only once every worker has finished, so callers see
// the same contract as the serial implementation.
type Parallel struct {
	workers int
}

// NewParallel returns a Resizer running on the given number of workers.
// A non-positive count falls back to the number of CPUs.
func NewParallel(workers int) *Parallel {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Parallel{workers: workers}
}

// Resize resamples data from shape to outShape using the requested order.
// Each worker writes a disjoint slab of the output, so no two goroutines
// ever touch the same output element.
func (p *Parallel) Resize(data []float64, shape, outShape []int, order Order) ([]float64, error) {
	plan, err := newResizePlan(data, shape, outShape, order)
	if err != nil {
		return nil, err
	}

	leading := outShape[0]
	workers := p.workers
	if workers > leading {
		workers = leading
	}
	slabSize := (leading + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		lo := w * slabSize
		hi := lo + slabSize
		if hi > leading {
			hi = leading
		}
		if lo >= hi {
			break
		}

		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			plan.run(lo, hi)
		}(lo, hi)
	}
	wg.Wait()

	return plan.dst, nil
}
