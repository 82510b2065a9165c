// Package c3d renders the fixed-argument command templates for the external
// voxel-processing tool and executes them as child processes. The argument
// layout of every template is part of the contract with the tool and must
// not be rearranged.
package c3d

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// Runner executes a rendered command. The default implementation shells out
// to the tool binary; tests substitute a recorder so templates can be
// verified without the tool installed.
type Runner interface {
	Run(dir, name string, args ...string) error
}

// execRunner runs commands with os/exec and folds captured output into the
// returned error.
type execRunner struct{}

func (execRunner) Run(dir, name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Tool invokes the voxel-processing command-line tool.
type Tool struct {
	binary string
	runner Runner
}

// New returns a Tool using the given binary name (usually "c3d") and the
// default process runner.
func New(binary string) *Tool {
	if binary == "" {
		binary = "c3d"
	}
	return &Tool{binary: binary, runner: execRunner{}}
}

// NewWithRunner returns a Tool with a custom Runner, used in tests.
func NewWithRunner(binary string, r Runner) *Tool {
	t := New(binary)
	t.runner = r
	return t
}

func (t *Tool) run(args ...string) error {
	return t.runner.Run("", t.binary, args...)
}

// formatFloat renders a float the way the tool expects, without a trailing
// exponent for ordinary magnitudes.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Scale multiplies every sample by factor.
func (t *Tool) Scale(in string, factor float64, out string) error {
	return t.run(in, "-scale", formatFloat(factor), "-o", out)
}

// Shift adds a constant to every sample.
func (t *Tool) Shift(in string, amount int, out string) error {
	return t.run(in, "-shift", strconv.Itoa(amount), "-o", out)
}

// Replace maps sample values pairwise: each even entry of pairs is replaced
// by the following odd entry. Entries may be "nan", "inf" or "-inf".
func (t *Tool) Replace(in string, pairs []string, out string) error {
	if len(pairs) == 0 || len(pairs)%2 != 0 {
		return fmt.Errorf("replace: intensity pairs must come in (old, new) couples, got %d entries", len(pairs))
	}
	args := []string{in, "-replace"}
	args = append(args, pairs...)
	args = append(args, "-o", out)
	return t.run(args...)
}

// Binarize maps every non-zero sample to one.
func (t *Tool) Binarize(in, out string) error {
	return t.run(in, "-binarize", "-o", out)
}

// RetainLabels keeps only the listed label values and zeroes the rest.
func (t *Tool) RetainLabels(in string, labels []int, out string) error {
	if len(labels) == 0 {
		return fmt.Errorf("retain-labels: no labels given")
	}
	args := []string{in, "-retain-labels"}
	for _, l := range labels {
		args = append(args, strconv.Itoa(l))
	}
	args = append(args, "-o", out)
	return t.run(args...)
}

// ResliceIdentity reslices an image onto the grid of a reference image.
// interpolation is one of "nearest", "linear" or "cubic".
func (t *Tool) ResliceIdentity(reference, in, out, interpolation string) error {
	return t.run(reference, in, "-interpolation", interpolation, "-reslice-identity", "-o", out)
}

// RemoveOverlays zeroes every sample of in that lies under a non-zero
// sample of the reference image.
func (t *Tool) RemoveOverlays(reference, in, out string) error {
	return t.run(reference,
		"-binarize", "-popas", "BIN",
		"-push", "BIN", "-replace", "1", "0", "0", "1", "-popas", "INVBIN",
		"-push", "INVBIN", in, "-times",
		"-o", out)
}

// Add sums two images voxel-wise.
func (t *Tool) Add(a, b, out string) error {
	return t.run(a, b, "-add", "-o", out)
}

// SumStack sums every image in dir matching the glob pattern. The command
// runs with dir as working directory so the matched names stay relative,
// the way the tool's accumulator expects them.
func (t *Tool) SumStack(dir, pattern, out string) error {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return fmt.Errorf("sum-stack: bad pattern %q: %w", pattern, err)
	}
	if len(matches) == 0 {
		return fmt.Errorf("sum-stack: no images match %q in %s", pattern, dir)
	}

	args := make([]string, 0, len(matches)+4)
	for _, m := range matches {
		args = append(args, filepath.Base(m))
	}
	args = append(args, "-accum", "-add", "-endaccum", "-o", out)
	return t.runner.Run(dir, t.binary, args...)
}

// SplitLeftRight splits a binary mask into left and right halves across the
// centroid plane, writing L-<name>.nii.gz and R-<name>.nii.gz into outDir.
func (t *Tool) SplitLeftRight(mask, outDir string) error {
	stem := filepath.Base(mask)
	stem = strings.SplitN(stem, ".", 2)[0]
	left := filepath.Join(outDir, "L-"+stem+".nii.gz")
	right := filepath.Join(outDir, "R-"+stem+".nii.gz")

	return t.run(mask,
		"-as", "SEG", "-cmv", "-pop", "-pop",
		"-thresh", "50%", "inf", "1", "0", "-as", "MASK",
		"-push", "SEG", "-times", "-o", left,
		"-push", "MASK", "-replace", "1", "0", "0", "1",
		"-push", "SEG", "-times", "-o", right)
}

// CentralSlicePNG extracts the central coronal slice as an 8-bit PNG with
// percentile window scaling.
func (t *Tool) CentralSlicePNG(in, out string) error {
	return t.run(in,
		"-slice", "y", "50%",
		"-flip", "y",
		"-type", "uchar",
		"-stretch", "0.001%", "99.999%", "5", "255",
		"-o", out)
}
