// Package stats computes per-region intensity and shape statistics from an
// intensity volume and an integer label mask covering the same grid.
package stats

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"voxelops/internal/models"
)

// IntensityStats summarizes the image samples under one mask label.
type IntensityStats struct {
	Label  int
	Name   string
	Count  int
	Mean   float64
	StdDev float64
	Median float64
	Min    float64
	Max    float64
}

// ShapeStats summarizes the geometry of one labelled region in physical
// space.
type ShapeStats struct {
	Label int
	Name  string

	// VolumeML is the region volume in milliliters, voxel count times the
	// physical voxel volume converted from mm3.
	VolumeML float64

	// Centroid is the physical (x, y, z) center of mass in millimeters.
	Centroid [3]float64

	// Elongation and Flatness are ratios of the principal axis lengths of
	// the voxel position covariance: sqrt(l2/l1) and sqrt(l3/l2) with
	// eigenvalues sorted descending.
	Elongation float64
	Flatness   float64
}

// LabelNames maps mask label numbers to human-readable region names.
// Labels without an entry are reported by number.
type LabelNames map[int]string

func (n LabelNames) name(label int) string {
	if name, ok := n[label]; ok {
		return name
	}
	return fmt.Sprintf("label-%d", label)
}

// Labels returns the sorted set of non-background labels present in the
// mask. Background (label 0) is excluded.
func Labels(mask *models.Volume) ([]int, error) {
	if err := mask.Validate(); err != nil {
		return nil, fmt.Errorf("invalid mask: %w", err)
	}
	seen := make(map[int]bool)
	for _, v := range mask.Data {
		label := int(math.Round(v))
		if label != 0 {
			seen[label] = true
		}
	}
	labels := make([]int, 0, len(seen))
	for label := range seen {
		labels = append(labels, label)
	}
	sort.Ints(labels)
	return labels, nil
}

// Intensity computes intensity statistics for every non-background label
// in the mask. Image and mask must share the same grid.
func Intensity(img, mask *models.Volume, names LabelNames) ([]IntensityStats, error) {
	if err := img.Validate(); err != nil {
		return nil, fmt.Errorf("invalid image: %w", err)
	}
	if !mask.SameExtent(img) {
		return nil, fmt.Errorf("%w: image shape %v, mask shape %v", models.ErrShapeMismatch, img.Shape, mask.Shape)
	}

	labels, err := Labels(mask)
	if err != nil {
		return nil, err
	}

	samples := make(map[int][]float64, len(labels))
	for i, v := range mask.Data {
		label := int(math.Round(v))
		if label == 0 {
			continue
		}
		samples[label] = append(samples[label], img.Data[i])
	}

	out := make([]IntensityStats, 0, len(labels))
	for _, label := range labels {
		vals := samples[label]
		sorted := make([]float64, len(vals))
		copy(sorted, vals)
		sort.Float64s(sorted)

		s := IntensityStats{
			Label:  label,
			Name:   names.name(label),
			Count:  len(vals),
			Mean:   stat.Mean(vals, nil),
			Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
			Min:    floats.Min(vals),
			Max:    floats.Max(vals),
		}
		if len(vals) > 1 {
			s.StdDev = stat.StdDev(vals, nil)
		}
		out = append(out, s)
	}
	return out, nil
}

// Shape computes physical shape statistics for every non-background label
// in the mask, using its spacing, origin and direction metadata.
func Shape(mask *models.Volume, names LabelNames) ([]ShapeStats, error) {
	labels, err := Labels(mask)
	if err != nil {
		return nil, err
	}
	if mask.Dims() != 3 {
		return nil, fmt.Errorf("shape statistics require a 3-D mask, got %d axes", mask.Dims())
	}

	voxelVolumeMM3 := mask.Spacing[0] * mask.Spacing[1] * mask.Spacing[2]

	type accum struct {
		count     int
		positions [][3]float64
	}
	regions := make(map[int]*accum, len(labels))
	for _, label := range labels {
		regions[label] = &accum{}
	}

	nz, ny, nx := mask.Shape[0], mask.Shape[1], mask.Shape[2]
	i := 0
	for z := 0; z < nz; z++ {
		for y := 0; y < ny; y++ {
			for x := 0; x < nx; x++ {
				label := int(math.Round(mask.Data[i]))
				i++
				if label == 0 {
					continue
				}
				r := regions[label]
				r.count++
				r.positions = append(r.positions, physicalPoint(mask, x, y, z))
			}
		}
	}

	out := make([]ShapeStats, 0, len(labels))
	for _, label := range labels {
		r := regions[label]
		s := ShapeStats{
			Label:    label,
			Name:     names.name(label),
			VolumeML: float64(r.count) * voxelVolumeMM3 / 1000.0,
		}
		s.Centroid = centroid(r.positions)
		s.Elongation, s.Flatness = principalAxisRatios(r.positions, s.Centroid)
		out = append(out, s)
	}
	return out, nil
}

// physicalPoint maps voxel indices in (x, y, z) order to millimeter
// coordinates via spacing, direction and origin.
func physicalPoint(vol *models.Volume, x, y, z int) [3]float64 {
	idx := [3]float64{
		float64(x) * vol.Spacing[0],
		float64(y) * vol.Spacing[1],
		float64(z) * vol.Spacing[2],
	}
	var p [3]float64
	if len(vol.Direction) == 9 {
		for r := 0; r < 3; r++ {
			p[r] = vol.Origin[r]
			for c := 0; c < 3; c++ {
				p[r] += vol.Direction[r*3+c] * idx[c]
			}
		}
		return p
	}
	for r := 0; r < 3; r++ {
		p[r] = vol.Origin[r] + idx[r]
	}
	return p
}

func centroid(points [][3]float64) [3]float64 {
	var c [3]float64
	for _, p := range points {
		for i := 0; i < 3; i++ {
			c[i] += p[i]
		}
	}
	n := float64(len(points))
	for i := 0; i < 3; i++ {
		c[i] /= n
	}
	return c
}

// principalAxisRatios computes elongation and flatness from the
// eigenvalues of the 3x3 position covariance matrix. Degenerate regions
// (too few voxels or collapsed axes) report zero ratios.
func principalAxisRatios(points [][3]float64, center [3]float64) (elongation, flatness float64) {
	if len(points) < 4 {
		return 0, 0
	}

	cov := mat.NewSymDense(3, nil)
	n := float64(len(points))
	for r := 0; r < 3; r++ {
		for c := r; c < 3; c++ {
			var sum float64
			for _, p := range points {
				sum += (p[r] - center[r]) * (p[c] - center[c])
			}
			cov.SetSym(r, c, sum/n)
		}
	}

	var eig mat.EigenSym
	if !eig.Factorize(cov, false) {
		return 0, 0
	}
	vals := eig.Values(nil)
	sort.Float64s(vals)
	// vals ascending: l3 <= l2 <= l1.
	l1, l2, l3 := vals[2], vals[1], vals[0]
	if l1 > 0 && l2 > 0 {
		elongation = math.Sqrt(l2 / l1)
	}
	if l2 > 0 && l3 >= 0 {
		flatness = math.Sqrt(l3 / l2)
	}
	return elongation, flatness
}
