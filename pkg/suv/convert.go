package suv

import (
	"fmt"
	"os"

	"voxelops/pkg/c3d"
)

// ConvertBqToSUV rescales a becquerel PET image into SUV units. The scale
// factor is derived from the metadata of one DICOM file of the series and
// applied through the external tool's scale template.
func ConvertBqToSUV(tool *c3d.Tool, dicomPath, in, out string) error {
	f, err := os.Open(dicomPath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", dicomPath, err)
	}
	defer f.Close()

	params, err := ReadParameters(f)
	if err != nil {
		return err
	}
	factor, err := params.ScaleFactor()
	if err != nil {
		return err
	}
	return tool.Scale(in, factor, out)
}
