// Package volumeio reads and writes volumetric scans in NIfTI-1 format and
// exposes small probes for header-level properties.
package volumeio

import (
	"fmt"

	"github.com/henghuang/nifti"

	"voxelops/internal/models"
)

// safelyLoadImage consumes panics emitted by the nifti library, which are
// inappropriate and must be captured in order to turn them into recoverable
// errors.
func safelyLoadImage(filename string, rdata bool) (parsed nifti.Nifti1Image, err error) {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			err = fmt.Errorf("%v", panicErr)
		}
	}()

	parsed.LoadImage(filename, rdata)

	return
}

// safelyLoadHeader is the header-only variant of safelyLoadImage.
func safelyLoadHeader(filename string) (parsed nifti.Nifti1Header, err error) {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			err = fmt.Errorf("%v", panicErr)
		}
	}()

	parsed.LoadHeader(filename)

	return
}

// Read loads a .nii or .nii.gz file into a Volume. The sample array is
// stored in (z, y, x) order while spacing, origin and direction follow the
// physical (x, y, z) order, as documented on models.Volume. Multi-frame
// (4-D) files are rejected.
func Read(filename string) (*models.Volume, error) {
	img, err := safelyLoadImage(filename, true)
	if err != nil {
		return nil, fmt.Errorf("failed to load NIfTI image %s: %w", filename, err)
	}
	hdr, err := safelyLoadHeader(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to load NIfTI header %s: %w", filename, err)
	}

	dims := img.GetDims()
	nx, ny, nz, nt := dims[0], dims[1], dims[2], dims[3]
	if nt > 1 {
		return nil, fmt.Errorf("%s: %d time frames, only single-frame volumes are supported", filename, nt)
	}
	if nx <= 0 || ny <= 0 || nz <= 0 {
		return nil, fmt.Errorf("%s: empty image extent %dx%dx%d", filename, nx, ny, nz)
	}

	vol := models.NewVolume([]int{nz, ny, nx})
	for z := 0; z < nz; z++ {
		for y := 0; y < ny; y++ {
			for x := 0; x < nx; x++ {
				vol.Data[(z*ny+y)*nx+x] = float64(img.GetAt(x, y, z, 0))
			}
		}
	}

	spacing := []float64{float64(hdr.Pixdim[1]), float64(hdr.Pixdim[2]), float64(hdr.Pixdim[3])}
	for i, s := range spacing {
		if s <= 0 {
			return nil, fmt.Errorf("%s: %w: pixdim[%d] = %g", filename, models.ErrInvalidSpacing, i+1, s)
		}
	}
	vol.Spacing = spacing

	if hdr.SformCode > 0 {
		rows := [][4]float32{hdr.SrowX, hdr.SrowY, hdr.SrowZ}
		vol.Origin = []float64{float64(rows[0][3]), float64(rows[1][3]), float64(rows[2][3])}
		vol.Direction = make([]float64, 9)
		for r := 0; r < 3; r++ {
			for c := 0; c < 3; c++ {
				vol.Direction[r*3+c] = float64(rows[r][c]) / spacing[c]
			}
		}
	} else {
		vol.Origin = []float64{float64(hdr.QoffsetX), float64(hdr.QoffsetY), float64(hdr.QoffsetZ)}
		vol.Direction = []float64{1, 0, 0, 0, 1, 0, 0, 0, 1}
	}

	return vol, nil
}

// Dimensions returns the number of spatial dimensions recorded in the file
// header.
func Dimensions(filename string) (int, error) {
	hdr, err := safelyLoadHeader(filename)
	if err != nil {
		return 0, fmt.Errorf("failed to load NIfTI header %s: %w", filename, err)
	}
	return int(hdr.Dim[0]), nil
}

// niftiTypeNames maps NIfTI datatype codes to readable names.
var niftiTypeNames = map[int16]string{
	2:    "uint8",
	4:    "int16",
	8:    "int32",
	16:   "float32",
	64:   "float64",
	256:  "int8",
	512:  "uint16",
	768:  "uint32",
	1024: "int64",
	1280: "uint64",
}

// PixelType returns the name of the sample type recorded in the file
// header.
func PixelType(filename string) (string, error) {
	hdr, err := safelyLoadHeader(filename)
	if err != nil {
		return "", fmt.Errorf("failed to load NIfTI header %s: %w", filename, err)
	}
	name, ok := niftiTypeNames[hdr.Datatype]
	if !ok {
		return "", fmt.Errorf("%s: unknown NIfTI datatype code %d", filename, hdr.Datatype)
	}
	return name, nil
}
