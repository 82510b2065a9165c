// Package resample implements anisotropic resampling of volumetric images
// onto a new voxel spacing. The physical extent and the spatial metadata
// (origin, direction) of the input are preserved; only the sampling grid
// changes.
package resample

import (
	"fmt"
	"log"
	"time"

	"voxelops/internal/models"
	"voxelops/pkg/kernel"
)

// Resampler resamples volumes through an interpolation kernel. It holds no
// per-call state, so a single Resampler may be shared across goroutines.
type Resampler struct {
	kernel  kernel.Resizer
	verbose bool
}

// New creates a resampler backed by the given kernel.
func New(k kernel.Resizer) *Resampler {
	return &Resampler{kernel: k}
}

// NewVerbose creates a resampler that logs grid geometry and elapsed time
// for every call. The log output is advisory and never affects the result.
func NewVerbose(k kernel.Resizer) *Resampler {
	return &Resampler{kernel: k, verbose: true}
}

// Resample produces a new volume on a grid with the requested spacing.
//
// targetSpacing must carry one positive entry per image axis, in physical
// axis order. order selects the interpolation degree: use
// kernel.NearestNeighbor for label masks and kernel.Cubic for intensity
// images; the choice is the caller's, the resampler does not infer image
// semantics. The input volume is never mutated.
func (r *Resampler) Resample(vol *models.Volume, targetSpacing []float64, order kernel.Order) (*models.Volume, error) {
	start := time.Now()

	if err := vol.Validate(); err != nil {
		return nil, fmt.Errorf("resample: %w", err)
	}
	if len(targetSpacing) != vol.Dims() {
		return nil, fmt.Errorf("resample: %w: %d target spacing entries for %d axes",
			models.ErrShapeMismatch, len(targetSpacing), vol.Dims())
	}

	// Align the array axes with the spacing vector. The inverse transform
	// below must mirror this step exactly.
	aligned, alignedShape := reverseAxes(vol.Data, vol.Shape)

	// Two-pass factor computation; the rounded shape is the authoritative
	// new extent and all failure modes are detected here, before the kernel
	// is ever invoked.
	_, newShape, err := ResizeFactor(alignedShape, vol.Spacing, targetSpacing)
	if err != nil {
		return nil, fmt.Errorf("resample: %w", err)
	}

	if r.verbose {
		log.Printf("resampling grid %v (spacing %v) -> %v (spacing %v), order %d",
			alignedShape, vol.Spacing, newShape, targetSpacing, order)
	}

	resized, err := r.kernel.Resize(aligned, alignedShape, newShape, order)
	if err != nil {
		return nil, fmt.Errorf("resample: interpolation kernel: %w", err)
	}

	// Undo the axis alignment so the output array is in the input's native
	// order again.
	native, nativeShape := reverseAxes(resized, newShape)

	// Origin and direction are carried over unchanged; spacing is the
	// caller's requested value, not a derived approximation.
	_, origin, direction := vol.CopyGeometry()
	out := &models.Volume{
		Data:      native,
		Shape:     nativeShape,
		Spacing:   append([]float64(nil), targetSpacing...),
		Origin:    origin,
		Direction: direction,
	}

	if r.verbose {
		log.Printf("resampling took %.2f seconds", time.Since(start).Seconds())
	}
	return out, nil
}
