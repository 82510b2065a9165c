// Package preview renders quick-look 2-D images from 3-D volumes for visual
// QC of processing output.
package preview

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"sort"

	"gonum.org/v1/gonum/stat"

	"voxelops/internal/models"
)

// Window holds the display scaling applied before quantizing samples to
// 8-bit gray. Samples at or below Low map to OutLow, samples at or above
// High map to OutHigh.
type Window struct {
	Low     float64
	High    float64
	OutLow  uint8
	OutHigh uint8
}

// DefaultWindow computes the standard QC window: the 0.001 and 99.999
// percentiles of the samples stretched onto gray levels 5..255. The tails
// are clipped so a handful of hot voxels cannot wash out the image.
func DefaultWindow(samples []float64) Window {
	sorted := make([]float64, len(samples))
	copy(sorted, samples)
	sort.Float64s(sorted)

	w := Window{OutLow: 5, OutHigh: 255}
	if len(sorted) == 0 {
		return w
	}
	w.Low = stat.Quantile(0.00001, stat.Empirical, sorted, nil)
	w.High = stat.Quantile(0.99999, stat.Empirical, sorted, nil)
	return w
}

func (w Window) gray(v float64) uint8 {
	if w.High <= w.Low {
		return w.OutLow
	}
	t := (v - w.Low) / (w.High - w.Low)
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return uint8(float64(w.OutLow) + t*float64(w.OutHigh-w.OutLow) + 0.5)
}

// ExtractSlice pulls a 2-D plane out of a 3-D volume along one array axis.
// The volume's array order is (z, y, x); axis "z" yields an axial slice,
// "y" a coronal one and "x" a sagittal one.
func ExtractSlice(vol *models.Volume, axis string, position int) ([]float64, int, int, error) {
	if err := vol.Validate(); err != nil {
		return nil, 0, 0, fmt.Errorf("invalid volume: %w", err)
	}
	if vol.Dims() != 3 {
		return nil, 0, 0, fmt.Errorf("slice extraction requires a 3-D volume, got %d axes", vol.Dims())
	}
	nz, ny, nx := vol.Shape[0], vol.Shape[1], vol.Shape[2]

	switch axis {
	case "z", "Z":
		if position < 0 || position >= nz {
			return nil, 0, 0, fmt.Errorf("slice position %d outside axis extent %d", position, nz)
		}
		plane := make([]float64, ny*nx)
		copy(plane, vol.Data[position*ny*nx:(position+1)*ny*nx])
		return plane, nx, ny, nil

	case "y", "Y":
		if position < 0 || position >= ny {
			return nil, 0, 0, fmt.Errorf("slice position %d outside axis extent %d", position, ny)
		}
		plane := make([]float64, nz*nx)
		for z := 0; z < nz; z++ {
			copy(plane[z*nx:(z+1)*nx], vol.Data[(z*ny+position)*nx:(z*ny+position)*nx+nx])
		}
		return plane, nx, nz, nil

	case "x", "X":
		if position < 0 || position >= nx {
			return nil, 0, 0, fmt.Errorf("slice position %d outside axis extent %d", position, nx)
		}
		plane := make([]float64, nz*ny)
		for z := 0; z < nz; z++ {
			for y := 0; y < ny; y++ {
				plane[z*ny+y] = vol.Data[(z*ny+y)*nx+position]
			}
		}
		return plane, ny, nz, nil
	}
	return nil, 0, 0, fmt.Errorf("invalid axis: %s (must be x, y, or z)", axis)
}

// RenderSlice converts a plane from ExtractSlice into an 8-bit grayscale
// image. When flip is true the rows are reversed so the head of a scan
// ends up at the top of the picture.
func RenderSlice(plane []float64, width, height int, w Window, flip bool) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for row := 0; row < height; row++ {
		src := row
		if flip {
			src = height - 1 - row
		}
		for col := 0; col < width; col++ {
			img.SetGray(col, row, color.Gray{Y: w.gray(plane[src*width+col])})
		}
	}
	return img
}

// CentralCoronalPNG writes the flipped central coronal slice of a volume
// as a windowed grayscale PNG, the standard quick-look produced after a
// processing run.
func CentralCoronalPNG(vol *models.Volume, out io.Writer) error {
	if vol.Dims() != 3 {
		return fmt.Errorf("preview requires a 3-D volume, got %d axes", vol.Dims())
	}
	plane, width, height, err := ExtractSlice(vol, "y", vol.Shape[1]/2)
	if err != nil {
		return fmt.Errorf("failed to extract central slice: %w", err)
	}
	img := RenderSlice(plane, width, height, DefaultWindow(vol.Data), true)
	if err := png.Encode(out, img); err != nil {
		return fmt.Errorf("failed to encode preview png: %w", err)
	}
	return nil
}
