package models

import (
	"errors"
	"fmt"
)

// Error values surfaced by the volume operations. Callers are expected to
// match them with errors.Is; every failure is detected synchronously and no
// partial result is ever returned alongside one of these.
var (
	// ErrShapeMismatch indicates an axis-count or extent mismatch between a
	// volume and a companion value (target spacing, mask).
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrInvalidSpacing indicates a zero or negative spacing entry.
	ErrInvalidSpacing = errors.New("invalid spacing")

	// ErrLabelNotFound indicates that a requested label value does not occur
	// anywhere in a mask.
	ErrLabelNotFound = errors.New("label not found in mask")

	// ErrDegenerateGeometry indicates that a resampling target shape rounded
	// to zero or below on some axis.
	ErrDegenerateGeometry = errors.New("degenerate geometry")
)

// Volume is an n-dimensional (typically 3-D) scalar sample array together
// with its spatial metadata.
//
// Data is stored flat in C order over Shape, slowest axis first. For scans
// loaded from NIfTI files the array order is (z, y, x) while Spacing, Origin
// and Direction follow the physical axis order (x, y, z) - the reverse of the
// array order. Operations that need the two aligned reorder the array
// explicitly rather than reinterpreting the metadata.
type Volume struct {
	// Data holds the voxel samples as a flat array in row-major order.
	Data []float64

	// Shape is the extent of each array axis, slowest axis first.
	Shape []int

	// Spacing is the physical distance between adjacent samples per axis,
	// in mm, in physical axis order.
	Spacing []float64

	// Origin is the physical coordinate of the first sample.
	Origin []float64

	// Direction is the row-major axis-to-physical-space rotation matrix
	// (dims x dims entries). An empty slice means identity.
	Direction []float64
}

// BoundingBox describes an axis-aligned sub-region of a volume's index
// space, one (start, size) pair per array axis.
//
// After clamping the invariant holds per axis: 0 <= Start and
// Start+Size <= volume extent.
type BoundingBox struct {
	Start []int
	Size  []int
}

// NewVolume allocates a zero-filled volume with the given array shape and
// identity geometry metadata (unit spacing, zero origin).
func NewVolume(shape []int) *Volume {
	dims := len(shape)
	n := 1
	for _, s := range shape {
		n *= s
	}
	spacing := make([]float64, dims)
	for i := range spacing {
		spacing[i] = 1.0
	}
	return &Volume{
		Data:    make([]float64, n),
		Shape:   append([]int(nil), shape...),
		Spacing: spacing,
		Origin:  make([]float64, dims),
	}
}

// Dims returns the number of array axes.
func (v *Volume) Dims() int {
	return len(v.Shape)
}

// NumVoxels returns the total number of samples implied by Shape.
func (v *Volume) NumVoxels() int {
	n := 1
	for _, s := range v.Shape {
		n *= s
	}
	return n
}

// Strides returns the flat-index stride of each array axis in C order.
func (v *Volume) Strides() []int {
	strides := make([]int, len(v.Shape))
	stride := 1
	for i := len(v.Shape) - 1; i >= 0; i-- {
		strides[i] = stride
		stride *= v.Shape[i]
	}
	return strides
}

// Index converts a multi-axis coordinate to a flat Data index.
// The coordinate is given in array order, matching Shape.
func (v *Volume) Index(coords []int) int {
	idx := 0
	for i, c := range coords {
		idx = idx*v.Shape[i] + c
	}
	return idx
}

// Validate checks the internal consistency of the volume: Data length must
// match Shape, and Spacing/Origin must carry one entry per axis.
func (v *Volume) Validate() error {
	if len(v.Data) != v.NumVoxels() {
		return fmt.Errorf("%w: data length %d does not match shape %v", ErrShapeMismatch, len(v.Data), v.Shape)
	}
	if len(v.Spacing) != len(v.Shape) {
		return fmt.Errorf("%w: %d spacing entries for %d axes", ErrShapeMismatch, len(v.Spacing), len(v.Shape))
	}
	if len(v.Origin) != 0 && len(v.Origin) != len(v.Shape) {
		return fmt.Errorf("%w: %d origin entries for %d axes", ErrShapeMismatch, len(v.Origin), len(v.Shape))
	}
	for i, s := range v.Spacing {
		if s <= 0 {
			return fmt.Errorf("%w: spacing[%d] = %g", ErrInvalidSpacing, i, s)
		}
	}
	return nil
}

// SameExtent reports whether two volumes cover the same index space.
func (v *Volume) SameExtent(o *Volume) bool {
	if len(v.Shape) != len(o.Shape) {
		return false
	}
	for i := range v.Shape {
		if v.Shape[i] != o.Shape[i] {
			return false
		}
	}
	return true
}

// CopyGeometry returns copies of the spatial metadata so derived volumes
// never alias the input's slices.
func (v *Volume) CopyGeometry() (spacing, origin, direction []float64) {
	return append([]float64(nil), v.Spacing...),
		append([]float64(nil), v.Origin...),
		append([]float64(nil), v.Direction...)
}
