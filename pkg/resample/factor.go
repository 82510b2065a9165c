package resample

import (
	"fmt"
	"math"

	"voxelops/internal/models"
)

// ResizeFactor computes the per-axis factor that maps an array shape onto
// the grid implied by a target spacing, together with the rounded target
// shape itself.
//
// The computation is deliberately two-pass. The first-pass factor
// oldSpacing/newSpacing almost never produces an integer shape, so the shape
// is rounded and the factor is then recomputed as newShape/shape. The
// recomputed factor is the one that exactly reproduces the rounded shape and
// is the only factor the interpolation kernel may be driven by; feeding the
// first-pass value to the kernel would reintroduce the rounding error this
// function exists to remove.
//
// shape and the spacings must be given in the same axis order.
func ResizeFactor(shape []int, spacing, targetSpacing []float64) (factor []float64, newShape []int, err error) {
	if len(spacing) != len(shape) || len(targetSpacing) != len(shape) {
		return nil, nil, fmt.Errorf("%w: %d axes with %d spacing and %d target spacing entries",
			models.ErrShapeMismatch, len(shape), len(spacing), len(targetSpacing))
	}
	for i := range shape {
		if spacing[i] <= 0 {
			return nil, nil, fmt.Errorf("%w: spacing[%d] = %g", models.ErrInvalidSpacing, i, spacing[i])
		}
		if targetSpacing[i] <= 0 {
			return nil, nil, fmt.Errorf("%w: target spacing[%d] = %g", models.ErrInvalidSpacing, i, targetSpacing[i])
		}
	}

	factor = make([]float64, len(shape))
	newShape = make([]int, len(shape))
	for i := range shape {
		// First pass: spacing ratio, then round to the authoritative extent.
		rounded := math.Round(float64(shape[i]) * spacing[i] / targetSpacing[i])
		if rounded <= 0 {
			return nil, nil, fmt.Errorf("%w: axis %d collapses to %g samples (extent %d, spacing %g -> %g)",
				models.ErrDegenerateGeometry, i, rounded, shape[i], spacing[i], targetSpacing[i])
		}
		newShape[i] = int(rounded)

		// Second pass: the factor that reproduces the rounded extent exactly.
		factor[i] = rounded / float64(shape[i])
	}
	return factor, newShape, nil
}
