package volumeio

import (
	"bufio"
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strings"

	"voxelops/internal/models"
)

// nifti1Header is the fixed 348-byte NIfTI-1 header layout. Fields are
// written in declaration order with no padding, so the struct must stay
// byte-compatible with the on-disk format.
type nifti1Header struct {
	SizeofHdr     int32
	DataType      [10]byte
	DbName        [18]byte
	Extents       int32
	SessionError  int16
	Regular       byte
	DimInfo       byte
	Dim           [8]int16
	IntentP1      float32
	IntentP2      float32
	IntentP3      float32
	IntentCode    int16
	Datatype      int16
	Bitpix        int16
	SliceStart    int16
	Pixdim        [8]float32
	VoxOffset     float32
	SclSlope      float32
	SclInter      float32
	SliceEnd      int16
	SliceCode     byte
	XyztUnits     byte
	CalMax        float32
	CalMin        float32
	SliceDuration float32
	Toffset       float32
	Glmax         int32
	Glmin         int32
	Descrip       [80]byte
	AuxFile       [24]byte
	QformCode     int16
	SformCode     int16
	QuaternB      float32
	QuaternC      float32
	QuaternD      float32
	QoffsetX      float32
	QoffsetY      float32
	QoffsetZ      float32
	SrowX         [4]float32
	SrowY         [4]float32
	SrowZ         [4]float32
	IntentName    [16]byte
	Magic         [4]byte
}

const (
	niftiHeaderSize = 348
	niftiVoxOffset  = 352
	niftiFloat32    = 16
)

// buildHeader fills a NIfTI-1 header for a 3-D float32 volume. The sform
// affine carries the direction, spacing and origin; the qform is left
// unset.
func buildHeader(vol *models.Volume) (nifti1Header, error) {
	if vol.Dims() != 3 {
		return nifti1Header{}, fmt.Errorf("write: only 3-D volumes are supported, got %d axes", vol.Dims())
	}
	if err := vol.Validate(); err != nil {
		return nifti1Header{}, fmt.Errorf("write: %w", err)
	}

	nz, ny, nx := vol.Shape[0], vol.Shape[1], vol.Shape[2]

	hdr := nifti1Header{
		SizeofHdr: niftiHeaderSize,
		Datatype:  niftiFloat32,
		Bitpix:    32,
		VoxOffset: niftiVoxOffset,
		SclSlope:  1,
		XyztUnits: 2, // millimeters
		SformCode: 1,
		Magic:     [4]byte{'n', '+', '1', 0},
	}
	hdr.Dim = [8]int16{3, int16(nx), int16(ny), int16(nz), 1, 1, 1, 1}
	hdr.Pixdim = [8]float32{1,
		float32(vol.Spacing[0]), float32(vol.Spacing[1]), float32(vol.Spacing[2]),
		1, 1, 1, 1,
	}

	dir := vol.Direction
	if len(dir) != 9 {
		dir = []float64{1, 0, 0, 0, 1, 0, 0, 0, 1}
	}
	origin := vol.Origin
	if len(origin) != 3 {
		origin = []float64{0, 0, 0}
	}
	rows := [3]*[4]float32{&hdr.SrowX, &hdr.SrowY, &hdr.SrowZ}
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			rows[r][c] = float32(dir[r*3+c] * vol.Spacing[c])
		}
		rows[r][3] = float32(origin[r])
	}
	hdr.QoffsetX = float32(origin[0])
	hdr.QoffsetY = float32(origin[1])
	hdr.QoffsetZ = float32(origin[2])

	return hdr, nil
}

// Write stores the volume as a single-file NIfTI-1 image. Filenames ending
// in .gz are gzip-compressed. Samples are written as little-endian float32
// in x-fastest order, matching the array layout the reader produces.
func Write(vol *models.Volume, filename string) error {
	hdr, err := buildHeader(vol)
	if err != nil {
		return err
	}

	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filename, err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	var w io.Writer = bw
	var gz *gzip.Writer
	if strings.HasSuffix(filename, ".gz") {
		gz = gzip.NewWriter(bw)
		w = gz
	}

	if err := writeVolume(w, hdr, vol); err != nil {
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}

	if gz != nil {
		if err := gz.Close(); err != nil {
			return fmt.Errorf("failed to finish %s: %w", filename, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", filename, err)
	}
	return nil
}

func writeVolume(w io.Writer, hdr nifti1Header, vol *models.Volume) error {
	if err := binary.Write(w, binary.LittleEndian, hdr); err != nil {
		return err
	}
	// Four zero bytes: no header extensions.
	if _, err := w.Write([]byte{0, 0, 0, 0}); err != nil {
		return err
	}

	samples := make([]float32, len(vol.Data))
	for i, v := range vol.Data {
		samples[i] = float32(v)
	}
	return binary.Write(w, binary.LittleEndian, samples)
}
