package preview

import (
	"bytes"
	"image/png"
	"testing"

	"voxelops/internal/models"
)

// gradientVolume fills a (z, y, x) volume where each sample equals its
// flat index, making slice contents easy to predict.
func gradientVolume(t *testing.T, nz, ny, nx int) *models.Volume {
	t.Helper()
	v := models.NewVolume([]int{nz, ny, nx})
	for i := range v.Data {
		v.Data[i] = float64(i)
	}
	return v
}

func TestExtractSliceAxial(t *testing.T) {
	vol := gradientVolume(t, 3, 2, 4)
	plane, w, h, err := ExtractSlice(vol, "z", 1)
	if err != nil {
		t.Fatalf("ExtractSlice returned error: %v", err)
	}
	if w != 4 || h != 2 {
		t.Fatalf("plane is %dx%d, want 4x2", w, h)
	}
	// Slice z=1 starts at flat index 1*2*4 = 8.
	for i, v := range plane {
		if v != float64(8+i) {
			t.Fatalf("plane[%d] = %g, want %g", i, v, float64(8+i))
		}
	}
}

func TestExtractSliceCoronal(t *testing.T) {
	vol := gradientVolume(t, 3, 2, 4)
	plane, w, h, err := ExtractSlice(vol, "y", 1)
	if err != nil {
		t.Fatalf("ExtractSlice returned error: %v", err)
	}
	if w != 4 || h != 3 {
		t.Fatalf("plane is %dx%d, want 4x3", w, h)
	}
	// Row z picks x-run at (z, y=1): flat start (z*2+1)*4.
	for z := 0; z < 3; z++ {
		for x := 0; x < 4; x++ {
			want := float64((z*2+1)*4 + x)
			if got := plane[z*4+x]; got != want {
				t.Fatalf("plane[%d,%d] = %g, want %g", z, x, got, want)
			}
		}
	}
}

func TestExtractSliceSagittal(t *testing.T) {
	vol := gradientVolume(t, 2, 3, 4)
	plane, w, h, err := ExtractSlice(vol, "x", 2)
	if err != nil {
		t.Fatalf("ExtractSlice returned error: %v", err)
	}
	if w != 3 || h != 2 {
		t.Fatalf("plane is %dx%d, want 3x2", w, h)
	}
	for z := 0; z < 2; z++ {
		for y := 0; y < 3; y++ {
			want := float64((z*3+y)*4 + 2)
			if got := plane[z*3+y]; got != want {
				t.Fatalf("plane[%d,%d] = %g, want %g", z, y, got, want)
			}
		}
	}
}

func TestExtractSliceRejects(t *testing.T) {
	vol := gradientVolume(t, 2, 2, 2)
	if _, _, _, err := ExtractSlice(vol, "w", 0); err == nil {
		t.Error("expected error for invalid axis")
	}
	if _, _, _, err := ExtractSlice(vol, "z", 5); err == nil {
		t.Error("expected error for out-of-range position")
	}
	if _, _, _, err := ExtractSlice(vol, "z", -1); err == nil {
		t.Error("expected error for negative position")
	}
}

func TestWindowGray(t *testing.T) {
	w := Window{Low: 0, High: 100, OutLow: 5, OutHigh: 255}
	if g := w.gray(-10); g != 5 {
		t.Errorf("gray below window = %d, want 5", g)
	}
	if g := w.gray(200); g != 255 {
		t.Errorf("gray above window = %d, want 255", g)
	}
	if g := w.gray(0); g != 5 {
		t.Errorf("gray at low = %d, want 5", g)
	}
	if g := w.gray(100); g != 255 {
		t.Errorf("gray at high = %d, want 255", g)
	}
	if g := w.gray(50); g != 130 {
		t.Errorf("gray at midpoint = %d, want 130", g)
	}
}

func TestRenderSliceFlip(t *testing.T) {
	plane := []float64{0, 0, 100, 100}
	w := Window{Low: 0, High: 100, OutLow: 0, OutHigh: 255}

	img := RenderSlice(plane, 2, 2, w, false)
	if img.GrayAt(0, 0).Y != 0 || img.GrayAt(0, 1).Y != 255 {
		t.Error("unflipped render has wrong row order")
	}

	flipped := RenderSlice(plane, 2, 2, w, true)
	if flipped.GrayAt(0, 0).Y != 255 || flipped.GrayAt(0, 1).Y != 0 {
		t.Error("flipped render has wrong row order")
	}
}

func TestCentralCoronalPNG(t *testing.T) {
	vol := gradientVolume(t, 8, 6, 10)
	var buf bytes.Buffer
	if err := CentralCoronalPNG(vol, &buf); err != nil {
		t.Fatalf("CentralCoronalPNG returned error: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("output is not a decodable png: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != 10 || bounds.Dy() != 8 {
		t.Errorf("preview is %dx%d, want 10x8", bounds.Dx(), bounds.Dy())
	}
}
