// Package suv derives standardized-uptake-value conversion parameters from
// PET DICOM metadata. The becquerel image itself is converted elsewhere;
// this package only produces the scale factor.
package suv

import (
	"fmt"
	"io"
	"strconv"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/dicomtag"
	"github.com/suyashkumar/dicom/element"
)

// Parameters holds the two DICOM-sourced quantities needed for SUV
// conversion of a becquerel PET image.
type Parameters struct {
	// WeightKg is the patient weight in kilograms (tag 0010,1030).
	WeightKg float64

	// TotalDoseMBq is the injected radionuclide dose in megabecquerel,
	// converted from the becquerel value of tag 0018,1074.
	TotalDoseMBq float64
}

// ScaleFactor returns the multiplier that converts becquerel samples to
// SUV. The denominator is the injected dose per body weight expressed in
// kBq/mL.
func (p Parameters) ScaleFactor() (float64, error) {
	if p.WeightKg <= 0 {
		return 0, fmt.Errorf("suv: non-positive patient weight %g kg", p.WeightKg)
	}
	if p.TotalDoseMBq <= 0 {
		return 0, fmt.Errorf("suv: non-positive total dose %g MBq", p.TotalDoseMBq)
	}
	denominator := (p.TotalDoseMBq / p.WeightKg) * 1000
	return 1 / denominator, nil
}

var (
	patientWeightTag = dicomtag.Tag{Group: 0x0010, Element: 0x1030}
	totalDoseTag     = dicomtag.Tag{Group: 0x0018, Element: 0x1074}
)

// safelyParse consumes panics emitted by the dicom library so malformed
// files surface as errors.
func safelyParse(p dicom.Parser, opts dicom.ParseOptions) (parsed *element.DataSet, err error) {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			err = fmt.Errorf("%v", panicErr)
		}
	}()

	return p.Parse(opts)
}

// ReadParameters extracts the SUV parameters from a PET DICOM stream. The
// radionuclide dose lives inside the radiopharmaceutical information
// sequence, so nested elements are walked as well.
func ReadParameters(r io.Reader) (Parameters, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return Parameters{}, fmt.Errorf("failed to read dicom stream: %w", err)
	}

	p, err := dicom.NewParserFromBytes(raw, nil)
	if err != nil {
		return Parameters{}, fmt.Errorf("failed to create dicom parser: %w", err)
	}
	parsed, err := safelyParse(p, dicom.ParseOptions{DropPixelData: true})
	if parsed == nil || err != nil {
		return Parameters{}, fmt.Errorf("error reading dicom: %v", err)
	}

	var params Parameters
	var haveWeight, haveDose bool
	walkElements(parsed.Elements, func(elem *element.Element) {
		switch {
		case elem.Tag.Compare(patientWeightTag) == 0:
			if v, ok := firstFloat(elem.Value); ok {
				params.WeightKg = v
				haveWeight = true
			}
		case elem.Tag.Compare(totalDoseTag) == 0:
			if v, ok := firstFloat(elem.Value); ok {
				params.TotalDoseMBq = v / 1e6
				haveDose = true
			}
		}
	})

	if !haveWeight {
		return Parameters{}, fmt.Errorf("suv: patient weight tag (0010,1030) not found")
	}
	if !haveDose {
		return Parameters{}, fmt.Errorf("suv: radionuclide total dose tag (0018,1074) not found")
	}
	return params, nil
}

// walkElements visits every element including the items nested inside
// sequences.
func walkElements(elems []*element.Element, visit func(*element.Element)) {
	for _, elem := range elems {
		if elem == nil {
			continue
		}
		visit(elem)
		for _, v := range elem.Value {
			if nested, ok := v.(*element.Element); ok {
				walkElements([]*element.Element{nested}, visit)
			}
		}
	}
}

// firstFloat extracts the first numeric entry of a decoded element value;
// decimal-string values are parsed.
func firstFloat(values []interface{}) (float64, bool) {
	for _, v := range values {
		switch t := v.(type) {
		case float64:
			return t, true
		case float32:
			return float64(t), true
		case string:
			if f, err := strconv.ParseFloat(t, 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}
