package crop

import (
	"errors"
	"testing"

	"voxelops/internal/models"
)

// maskWithBlock builds a cubic mask volume with a block of the given label
// at [start, start+size) on every axis.
func maskWithBlock(extent int, label, start, size int) *models.Volume {
	mask := models.NewVolume([]int{extent, extent, extent})
	for z := start; z < start+size; z++ {
		for y := start; y < start+size; y++ {
			for x := start; x < start+size; x++ {
				mask.Data[mask.Index([]int{z, y, x})] = float64(label)
			}
		}
	}
	return mask
}

// rampVolume builds an image volume whose samples encode their own flat
// index, so extraction offsets are easy to verify.
func rampVolume(extent int) *models.Volume {
	img := models.NewVolume([]int{extent, extent, extent})
	for i := range img.Data {
		img.Data[i] = float64(i)
	}
	return img
}

// TestTightBoundingBox verifies the unpadded box around a known block.
func TestTightBoundingBox(t *testing.T) {
	mask := maskWithBlock(50, 1, 12, 7)

	box, err := BoundingBoxOf(mask, 1)
	if err != nil {
		t.Fatalf("BoundingBoxOf failed: %v", err)
	}
	for i := 0; i < 3; i++ {
		if box.Start[i] != 12 || box.Size[i] != 7 {
			t.Errorf("axis %d: box start %d size %d, want start 12 size 7", i, box.Start[i], box.Size[i])
		}
	}
}

// TestCropLowerClamp reproduces the lower-boundary clamping case: extent
// 100, tight box start 2 size 10, padding 5. The padded start would be
// negative, so the start snaps back to the tight start while the size still
// grows by the padding: final box start 2, size 15.
func TestCropLowerClamp(t *testing.T) {
	img := rampVolume(100)
	mask := maskWithBlock(100, 1, 2, 10)

	out, err := Crop(img, mask, 1, UniformPadding(3, 5))
	if err != nil {
		t.Fatalf("Crop failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		if out.Shape[i] != 15 {
			t.Errorf("axis %d: cropped extent %d, want 15", i, out.Shape[i])
		}
	}
	// First sample must come from index (2,2,2) of the source.
	want := float64(img.Index([]int{2, 2, 2}))
	if out.Data[0] != want {
		t.Errorf("first cropped sample = %g, want source voxel (2,2,2) = %g", out.Data[0], want)
	}
}

// TestCropUpperClamp reproduces the upper-boundary clamping case: extent 20,
// tight box start 15 size 3, and padding large enough to trip both clamps.
// The start snaps back to 15 and the size may only absorb the in-bounds part
// of the padding: final size 20-15 = 5, touching the boundary exactly.
func TestCropUpperClamp(t *testing.T) {
	img := rampVolume(20)
	mask := maskWithBlock(20, 1, 15, 3)

	out, err := Crop(img, mask, 1, UniformPadding(3, 16))
	if err != nil {
		t.Fatalf("Crop failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		if out.Shape[i] != 5 {
			t.Errorf("axis %d: cropped extent %d, want 5", i, out.Shape[i])
		}
	}
	// The box must end exactly at the image boundary.
	last := out.Data[len(out.Data)-1]
	want := float64(img.Index([]int{19, 19, 19}))
	if last != want {
		t.Errorf("last cropped sample = %g, want source voxel (19,19,19) = %g", last, want)
	}
}

// TestCropNoClampNeeded checks the interior case where the padded box fits
// without touching either boundary.
func TestCropNoClampNeeded(t *testing.T) {
	img := rampVolume(60)
	mask := maskWithBlock(60, 2, 20, 10)

	out, err := Crop(img, mask, 2, UniformPadding(3, 4))
	if err != nil {
		t.Fatalf("Crop failed: %v", err)
	}

	// start 16, size 14 per axis.
	for i := 0; i < 3; i++ {
		if out.Shape[i] != 14 {
			t.Errorf("axis %d: cropped extent %d, want 14", i, out.Shape[i])
		}
	}
	if got, want := out.Data[0], float64(img.Index([]int{16, 16, 16})); got != want {
		t.Errorf("first cropped sample = %g, want source voxel (16,16,16) = %g", got, want)
	}
}

// TestCropOriginAdjustment verifies that the cropped volume's origin moves
// to the physical position of the box start while spacing and direction are
// preserved.
func TestCropOriginAdjustment(t *testing.T) {
	img := rampVolume(60)
	img.Spacing = []float64{1.5, 2.0, 3.0} // (x, y, z)
	img.Origin = []float64{-10, 20, -30}
	img.Direction = []float64{1, 0, 0, 0, 1, 0, 0, 0, 1}
	mask := maskWithBlock(60, 1, 20, 10)

	out, err := Crop(img, mask, 1, UniformPadding(3, 4))
	if err != nil {
		t.Fatalf("Crop failed: %v", err)
	}

	// Box start is 16 on every array axis; the physical offset per axis is
	// start * spacing in (x, y, z) order.
	wantOrigin := []float64{-10 + 16*1.5, 20 + 16*2.0, -30 + 16*3.0}
	for i := range wantOrigin {
		if out.Origin[i] != wantOrigin[i] {
			t.Errorf("origin[%d] = %g, want %g", i, out.Origin[i], wantOrigin[i])
		}
		if out.Spacing[i] != img.Spacing[i] {
			t.Errorf("spacing[%d] changed: %g", i, out.Spacing[i])
		}
	}
	for i := range img.Direction {
		if out.Direction[i] != img.Direction[i] {
			t.Errorf("direction[%d] changed: %g", i, out.Direction[i])
		}
	}
}

// TestCropLabelNotFound requires a LabelNotFound failure rather than an
// empty or garbage box when the label is absent.
func TestCropLabelNotFound(t *testing.T) {
	img := rampVolume(10)
	mask := models.NewVolume([]int{10, 10, 10})
	// Mask contains labels {0, 1, 2} only.
	mask.Data[0] = 1
	mask.Data[1] = 2

	_, err := Crop(img, mask, 5, UniformPadding(3, 2))
	if !errors.Is(err, models.ErrLabelNotFound) {
		t.Errorf("got error %v, want ErrLabelNotFound", err)
	}
}

// TestCropShapeMismatch requires a shape-mismatch failure when image and
// mask extents differ.
func TestCropShapeMismatch(t *testing.T) {
	img := rampVolume(10)
	mask := maskWithBlock(12, 1, 2, 4)

	_, err := Crop(img, mask, 1, UniformPadding(3, 2))
	if !errors.Is(err, models.ErrShapeMismatch) {
		t.Errorf("got error %v, want ErrShapeMismatch", err)
	}
}

// TestExtractRejectsOutOfRangeBox guards the post-clamp invariant at the
// extraction layer.
func TestExtractRejectsOutOfRangeBox(t *testing.T) {
	img := rampVolume(10)

	cases := []models.BoundingBox{
		{Start: []int{-1, 0, 0}, Size: []int{2, 2, 2}},
		{Start: []int{0, 0, 0}, Size: []int{11, 2, 2}},
		{Start: []int{9, 9, 9}, Size: []int{2, 2, 2}},
		{Start: []int{0, 0, 0}, Size: []int{0, 2, 2}},
	}
	for _, box := range cases {
		if _, err := Extract(img, box); err == nil {
			t.Errorf("expected error for box %+v, got nil", box)
		}
	}
}
