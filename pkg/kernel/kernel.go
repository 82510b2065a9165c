// Package kernel provides the array-resize primitive behind volume
// resampling. The numerical core is expressed once and exposed through the
// Resizer interface so the surrounding system can select between the serial
// implementation and the data-parallel one without touching the resampling
// logic.
//
// Out-of-bounds samples always take the nearest in-bounds value (edge
// extension) and no anti-aliasing prefilter is applied, matching the
// behavior expected by the resampling pipeline.
package kernel

import (
	"fmt"
	"math"
)

// Order is the degree of the interpolation kernel. Degree 0 (nearest
// neighbor) is used for label masks so no fractional labels are introduced;
// degree 3 (cubic) is used for continuous-valued intensity images.
type Order int

const (
	// NearestNeighbor selects degree-0 interpolation.
	NearestNeighbor Order = 0

	// Cubic selects degree-3 interpolation (Catmull-Rom tensor product).
	Cubic Order = 3
)

// Resizer resamples a flat C-order array of the given shape onto a new
// shape. Implementations are blocking: the full output array is in host
// memory when Resize returns.
type Resizer interface {
	Resize(data []float64, shape, outShape []int, order Order) ([]float64, error)
}

// Serial is the plain single-goroutine Resizer.
type Serial struct{}

// NewSerial returns a Resizer that processes the output array sequentially.
func NewSerial() *Serial {
	return &Serial{}
}

// Resize resamples data from shape to outShape using the requested order.
func (s *Serial) Resize(data []float64, shape, outShape []int, order Order) ([]float64, error) {
	plan, err := newResizePlan(data, shape, outShape, order)
	if err != nil {
		return nil, err
	}
	plan.run(0, outShape[0])
	return plan.dst, nil
}

// tap is a single source sample contribution along one axis.
type tap struct {
	index  int
	weight float64
}

// resizePlan precomputes, per axis and per output position, which source
// samples contribute and with what weights. Running the plan over a range of
// leading-axis positions only reads the tables, so disjoint ranges can be
// filled concurrently.
type resizePlan struct {
	src        []float64
	dst        []float64
	shape      []int
	outShape   []int
	srcStrides []int
	dstStrides []int
	// taps[axis][outPos] lists the contributing source positions on that axis.
	taps [][][]tap
}

func newResizePlan(data []float64, shape, outShape []int, order Order) (*resizePlan, error) {
	if len(shape) == 0 || len(shape) != len(outShape) {
		return nil, fmt.Errorf("resize: %d input axes but %d output axes", len(shape), len(outShape))
	}
	if order != NearestNeighbor && order != Cubic {
		return nil, fmt.Errorf("resize: unsupported interpolation order %d", order)
	}
	n := 1
	for i, s := range shape {
		if s <= 0 || outShape[i] <= 0 {
			return nil, fmt.Errorf("resize: non-positive extent in %v -> %v", shape, outShape)
		}
		n *= s
	}
	if len(data) != n {
		return nil, fmt.Errorf("resize: data length %d does not match shape %v", len(data), shape)
	}
	outN := 1
	for _, s := range outShape {
		outN *= s
	}

	p := &resizePlan{
		src:        data,
		dst:        make([]float64, outN),
		shape:      append([]int(nil), shape...),
		outShape:   append([]int(nil), outShape...),
		srcStrides: strides(shape),
		dstStrides: strides(outShape),
		taps:       make([][][]tap, len(shape)),
	}
	for axis := range shape {
		p.taps[axis] = axisTaps(shape[axis], outShape[axis], order)
	}
	return p, nil
}

// axisTaps builds the contribution table for one axis. The source coordinate
// of output position i follows the pixel-center convention
// c = (i+0.5)*in/out - 0.5, so an identity resize maps every sample onto
// itself for both orders.
func axisTaps(in, out int, order Order) [][]tap {
	scale := float64(in) / float64(out)
	taps := make([][]tap, out)
	for i := 0; i < out; i++ {
		c := (float64(i)+0.5)*scale - 0.5
		switch order {
		case NearestNeighbor:
			taps[i] = []tap{{index: clampIndex(int(math.Round(c)), in), weight: 1}}
		case Cubic:
			base := int(math.Floor(c))
			t := c - float64(base)
			w := catmullRomWeights(t)
			group := make([]tap, 0, 4)
			for k := 0; k < 4; k++ {
				group = append(group, tap{
					index:  clampIndex(base-1+k, in),
					weight: w[k],
				})
			}
			taps[i] = group
		}
	}
	return taps
}

// catmullRomWeights returns the four Catmull-Rom weights for fractional
// offset t in [0, 1). The weights sum to one, so constant inputs are
// reproduced exactly and t = 0 degenerates to the identity.
func catmullRomWeights(t float64) [4]float64 {
	t2 := t * t
	t3 := t2 * t
	return [4]float64{
		-0.5*t + t2 - 0.5*t3,
		1 - 2.5*t2 + 1.5*t3,
		0.5*t + 2*t2 - 1.5*t3,
		-0.5*t2 + 0.5*t3,
	}
}

// clampIndex applies the edge-extension boundary mode.
func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// run fills dst for leading-axis positions [lo, hi). Writes are confined to
// that slab, so concurrent runs over disjoint ranges never touch the same
// output element.
func (p *resizePlan) run(lo, hi int) {
	coords := make([]int, len(p.outShape))
	for i0 := lo; i0 < hi; i0++ {
		coords[0] = i0
		p.fillAxis(1, i0*p.dstStrides[0], coords)
	}
}

// fillAxis walks the remaining output axes depth-first; at the innermost
// level it accumulates the tensor-product sum over the per-axis taps.
func (p *resizePlan) fillAxis(axis, dstOffset int, coords []int) {
	if axis == len(p.outShape) {
		p.dst[dstOffset] = p.sample(0, 0, 1, coords)
		return
	}
	for i := 0; i < p.outShape[axis]; i++ {
		coords[axis] = i
		p.fillAxis(axis+1, dstOffset+i*p.dstStrides[axis], coords)
	}
}

// sample accumulates the interpolated value for the output coordinate in
// coords by recursing over the tap table of each axis.
func (p *resizePlan) sample(axis, srcOffset int, weight float64, coords []int) float64 {
	if axis == len(p.shape) {
		return weight * p.src[srcOffset]
	}
	var sum float64
	for _, tp := range p.taps[axis][coords[axis]] {
		if tp.weight == 0 {
			continue
		}
		sum += p.sample(axis+1, srcOffset+tp.index*p.srcStrides[axis], weight*tp.weight, coords)
	}
	return sum
}

func strides(shape []int) []int {
	s := make([]int, len(shape))
	stride := 1
	for i := len(shape) - 1; i >= 0; i-- {
		s[i] = stride
		stride *= shape[i]
	}
	return s
}
