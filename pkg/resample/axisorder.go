package resample

// Array samples arrive in the reverse of the physical axis order: a scan is
// stored (z, y, x) while its spacing reads (x, y, z). The resampling math
// must run with the two aligned, so the array is put through an explicit
// axis-reversal transform on the way in and the exact inverse on the way
// out. Keeping the transform in one named function (rather than an inline
// transpose at each end) is what guarantees the forward and inverse steps
// cannot drift apart.

// reverseAxes returns a copy of the flat C-order array with its axis order
// reversed, together with the reversed shape. Applying it twice is the
// identity, so the same function serves as its own inverse.
func reverseAxes(data []float64, shape []int) ([]float64, []int) {
	dims := len(shape)
	outShape := reversedInts(shape)
	if dims <= 1 {
		return append([]float64(nil), data...), outShape
	}

	inStrides := make([]int, dims)
	stride := 1
	for i := dims - 1; i >= 0; i-- {
		inStrides[i] = stride
		stride *= shape[i]
	}

	// Stride of input axis i seen from the output's C-order layout: output
	// axis j corresponds to input axis dims-1-j.
	outStrides := make([]int, dims)
	stride = 1
	for j := dims - 1; j >= 0; j-- {
		outStrides[dims-1-j] = stride
		stride *= outShape[j]
	}

	out := make([]float64, len(data))
	coords := make([]int, dims)
	for src := range data {
		dst := 0
		for i := 0; i < dims; i++ {
			dst += coords[i] * outStrides[i]
		}
		out[dst] = data[src]

		for i := dims - 1; i >= 0; i-- {
			coords[i]++
			if coords[i] < shape[i] {
				break
			}
			coords[i] = 0
		}
	}
	return out, outShape
}

func reversedInts(s []int) []int {
	out := make([]int, len(s))
	for i, v := range s {
		out[len(s)-1-i] = v
	}
	return out
}
