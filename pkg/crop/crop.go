// Package crop extracts padded, boundary-clamped sub-volumes around a
// labeled region of a segmentation mask.
package crop

import (
	"fmt"
	"math"

	"voxelops/internal/models"
)

// UniformPadding returns a per-axis padding vector with the same amount on
// every axis.
func UniformPadding(dims, padding int) []int {
	p := make([]int, dims)
	for i := range p {
		p[i] = padding
	}
	return p
}

// BoundingBoxOf computes the tight axis-aligned bounding box of all mask
// samples equal to label, in array axis order. It fails with
// models.ErrLabelNotFound when the label does not occur in the mask.
func BoundingBoxOf(mask *models.Volume, label int) (models.BoundingBox, error) {
	dims := mask.Dims()
	lo := make([]int, dims)
	hi := make([]int, dims)
	for i := range lo {
		lo[i] = mask.Shape[i]
		hi[i] = -1
	}

	coords := make([]int, dims)
	for _, v := range mask.Data {
		if int(math.Round(v)) == label {
			for i, c := range coords {
				if c < lo[i] {
					lo[i] = c
				}
				if c > hi[i] {
					hi[i] = c
				}
			}
		}
		for i := dims - 1; i >= 0; i-- {
			coords[i]++
			if coords[i] < mask.Shape[i] {
				break
			}
			coords[i] = 0
		}
	}

	if hi[0] < 0 {
		return models.BoundingBox{}, fmt.Errorf("%w: label %d", models.ErrLabelNotFound, label)
	}

	size := make([]int, dims)
	for i := range size {
		size[i] = hi[i] - lo[i] + 1
	}
	return models.BoundingBox{Start: lo, Size: size}, nil
}

// expandAndClamp pads the tight box and clamps it against the image extent.
//
// The lower side drops its padding entirely on any axis where the padded
// start would leave the index space (the start snaps back to the tight
// start). On the upper side the padding deficit is absorbed into size
// growth bounded by the image extent, so the box touches but never exceeds
// the boundary.
func expandAndClamp(box models.BoundingBox, extent, padding []int) models.BoundingBox {
	dims := len(extent)
	start := make([]int, dims)
	size := make([]int, dims)

	for i := 0; i < dims; i++ {
		start[i] = box.Start[i] - padding[i]
		size[i] = box.Size[i] + padding[i]

		if start[i] <= 0 {
			start[i] = box.Start[i]
		}
		if start[i]+size[i] >= extent[i] {
			size[i] = box.Size[i] + (extent[i] - (start[i] + box.Size[i]))
		}
	}
	return models.BoundingBox{Start: start, Size: size}
}

// Crop extracts the sub-volume of img around the given label of mask,
// expanded by padding (one entry per array axis) and clamped to the image
// boundary. The returned volume carries the input's spacing and direction
// and an origin advanced to the cropped start; img and mask are not
// modified.
//
// mask must cover the same index space as img. Crop fails with
// models.ErrShapeMismatch when the extents differ and with
// models.ErrLabelNotFound when label is absent from mask.
func Crop(img, mask *models.Volume, label int, padding []int) (*models.Volume, error) {
	if err := img.Validate(); err != nil {
		return nil, fmt.Errorf("crop: %w", err)
	}
	if !img.SameExtent(mask) {
		return nil, fmt.Errorf("crop: %w: image extent %v, mask extent %v",
			models.ErrShapeMismatch, img.Shape, mask.Shape)
	}
	if len(padding) != img.Dims() {
		return nil, fmt.Errorf("crop: %w: %d padding entries for %d axes",
			models.ErrShapeMismatch, len(padding), img.Dims())
	}

	tight, err := BoundingBoxOf(mask, label)
	if err != nil {
		return nil, fmt.Errorf("crop: %w", err)
	}

	box := expandAndClamp(tight, img.Shape, padding)
	return Extract(img, box)
}

// Extract copies the region described by box out of img into a new volume,
// adjusting the origin to the physical position of the box start. The box
// must satisfy the post-clamp invariant 0 <= start and
// start+size <= extent on every axis.
func Extract(img *models.Volume, box models.BoundingBox) (*models.Volume, error) {
	dims := img.Dims()
	if len(box.Start) != dims || len(box.Size) != dims {
		return nil, fmt.Errorf("extract: %w: box %v/%v for %d axes",
			models.ErrShapeMismatch, box.Start, box.Size, dims)
	}
	for i := 0; i < dims; i++ {
		if box.Start[i] < 0 || box.Size[i] <= 0 || box.Start[i]+box.Size[i] > img.Shape[i] {
			return nil, fmt.Errorf("extract: %w: box start %v size %v exceeds extent %v",
				models.ErrShapeMismatch, box.Start, box.Size, img.Shape)
		}
	}

	out := models.NewVolume(box.Size)
	srcStrides := img.Strides()

	coords := make([]int, dims)
	for dst := range out.Data {
		src := 0
		for i := range coords {
			src += (box.Start[i] + coords[i]) * srcStrides[i]
		}
		out.Data[dst] = img.Data[src]

		for i := dims - 1; i >= 0; i-- {
			coords[i]++
			if coords[i] < box.Size[i] {
				break
			}
			coords[i] = 0
		}
	}

	spacing, origin, direction := img.CopyGeometry()
	out.Spacing = spacing
	out.Direction = direction
	out.Origin = shiftOrigin(origin, direction, spacing, box.Start)
	return out, nil
}

// shiftOrigin advances the origin to the physical coordinate of the box
// start. The start vector is in array order and is reversed into physical
// axis order before the spacing and direction are applied.
func shiftOrigin(origin, direction, spacing []float64, start []int) []float64 {
	dims := len(start)
	if len(origin) != dims {
		return origin
	}

	offset := make([]float64, dims)
	for i := 0; i < dims; i++ {
		offset[i] = float64(start[dims-1-i]) * spacing[i]
	}

	shifted := make([]float64, dims)
	copy(shifted, origin)
	if len(direction) == dims*dims {
		for r := 0; r < dims; r++ {
			for c := 0; c < dims; c++ {
				shifted[r] += direction[r*dims+c] * offset[c]
			}
		}
	} else {
		for i := 0; i < dims; i++ {
			shifted[i] += offset[i]
		}
	}
	return shifted
}
