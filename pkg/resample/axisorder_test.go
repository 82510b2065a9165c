package resample

import "testing"

// TestReverseAxesRoundTrip verifies that applying the axis reversal twice
// returns the original array and shape, which is what makes the forward and
// inverse steps of the resampler safe to share one function.
func TestReverseAxesRoundTrip(t *testing.T) {
	shapes := [][]int{
		{6},
		{2, 3},
		{2, 3, 4},
		{3, 1, 2, 2},
	}

	for _, shape := range shapes {
		n := 1
		for _, s := range shape {
			n *= s
		}
		data := make([]float64, n)
		for i := range data {
			data[i] = float64(i)
		}

		rev, revShape := reverseAxes(data, shape)
		back, backShape := reverseAxes(rev, revShape)

		for i := range shape {
			if revShape[i] != shape[len(shape)-1-i] {
				t.Errorf("shape %v: reversed shape %v", shape, revShape)
			}
			if backShape[i] != shape[i] {
				t.Errorf("shape %v: round-trip shape %v", shape, backShape)
			}
		}
		for i := range data {
			if back[i] != data[i] {
				t.Fatalf("shape %v: sample %d not restored: got %g", shape, i, back[i])
			}
		}
	}
}

// TestReverseAxesTranspose2D checks the transform against a hand-written
// 2-D transpose.
func TestReverseAxesTranspose2D(t *testing.T) {
	// 2x3 array:
	//   0 1 2
	//   3 4 5
	data := []float64{0, 1, 2, 3, 4, 5}

	rev, revShape := reverseAxes(data, []int{2, 3})

	if revShape[0] != 3 || revShape[1] != 2 {
		t.Fatalf("reversed shape = %v, want [3 2]", revShape)
	}
	want := []float64{0, 3, 1, 4, 2, 5}
	for i := range want {
		if rev[i] != want[i] {
			t.Errorf("sample %d: got %g, want %g", i, rev[i], want[i])
		}
	}
}
