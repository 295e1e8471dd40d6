package tensor

import "math/rand"

// Mat is a dense row-major matrix of float32 values. R and C are the row
// and column counts; Data holds the flattened values. No bounds checking
// is performed beyond what Go slices provide; out-of-range indices panic.
type Mat struct {
	R, C int
	Data []float32
}

// NewMat allocates a zero-initialised matrix with the given dimensions.
func NewMat(r, c int) Mat {
	if r < 0 || c < 0 {
		panic("negative dimension for matrix")
	}
	return Mat{R: r, C: c, Data: make([]float32, r*c)}
}

// NewMatFromData wraps existing data. It checks that the data length
// matches r*c.
func NewMatFromData(r, c int, data []float32) Mat {
	if r*c != len(data) {
		panic("data length mismatch")
	}
	return Mat{R: r, C: c, Data: data}
}

// Row returns a view of the i-th row. Modifications to the returned slice
// update the underlying matrix.
func (m *Mat) Row(i int) []float32 {
	if i < 0 || i >= m.R {
		panic("row index out of range")
	}
	start := i * m.C
	return m.Data[start : start+m.C]
}

// MatVecT computes dst = xᵀM for a row vector x of length R, writing the
// C results into dst. dst must have length >= C.
func (m *Mat) MatVecT(dst, x []float32) {
	if len(x) < m.R || len(dst) < m.C {
		panic("matvec buffer too small")
	}
	for j := 0; j < m.C; j++ {
		dst[j] = 0
	}
	for i := 0; i < m.R; i++ {
		xi := x[i]
		if xi == 0 {
			continue
		}
		row := m.Data[i*m.C : i*m.C+m.C]
		for j, v := range row {
			dst[j] += xi * v
		}
	}
}

// FillRand fills the matrix with reproducible pseudo-random values in a
// small range around zero. The same seed always produces the same matrix.
func FillRand(m *Mat, seed int64) {
	rng := rand.New(rand.NewSource(seed))
	for i := range m.Data {
		m.Data[i] = (rng.Float32() - 0.5) * 0.02
	}
}
