// Package numeric provides small linear-algebra and deterministic-reduction
// helpers shared by the geometry and units packages. The 4x4 homogeneous
// matrix multiplication is backed by gonum/mat (grounded on the
// gonum.org/v1/gonum dependency carried by the spatialmodel/inmap example
// repo) rather than hand-rolled loops.
package numeric

import "gonum.org/v1/gonum/mat"

// Vec3 is a plain 3D vector/point.
type Vec3 struct {
	X, Y, Z float64
}

func (a Vec3) Add(b Vec3) Vec3 { return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }
func (a Vec3) Sub(b Vec3) Vec3 { return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }
func (a Vec3) Scale(s float64) Vec3 {
	return Vec3{a.X * s, a.Y * s, a.Z * s}
}
func (a Vec3) Dot(b Vec3) float64 { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }
func (a Vec3) Cross(b Vec3) Vec3 {
	return Vec3{
		a.Y*b.Z - a.Z*b.Y,
		a.Z*b.X - a.X*b.Z,
		a.X*b.Y - a.Y*b.X,
	}
}

func (a Vec3) LengthSq() float64 { return a.Dot(a) }

// Mat4 is a 4x4 homogeneous transform, row-major.
type Mat4 [4][4]float64

// Identity4 returns the 4x4 identity matrix.
func Identity4() Mat4 {
	var m Mat4
	for i := 0; i < 4; i++ {
		m[i][i] = 1.0
	}
	return m
}

// Mul multiplies two 4x4 matrices (a * b) using gonum/mat for the underlying
// dense multiply.
func (a Mat4) Mul(b Mat4) Mat4 {
	da := mat.NewDense(4, 4, flatten(a))
	db := mat.NewDense(4, 4, flatten(b))
	var dc mat.Dense
	dc.Mul(da, db)
	var out Mat4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			out[i][j] = dc.At(i, j)
		}
	}
	return out
}

// Apply transforms a point through this 4x4 homogeneous matrix.
func (a Mat4) Apply(p Vec3) Vec3 {
	h := [4]float64{p.X, p.Y, p.Z, 1.0}
	var out [4]float64
	for i := 0; i < 4; i++ {
		sum := 0.0
		for j := 0; j < 4; j++ {
			sum += a[i][j] * h[j]
		}
		out[i] = sum
	}
	return Vec3{out[0], out[1], out[2]}
}

// ApplyAll transforms a slice of points, preserving order.
func (a Mat4) ApplyAll(pts []Vec3) []Vec3 {
	out := make([]Vec3, len(pts))
	for i, p := range pts {
		out[i] = a.Apply(p)
	}
	return out
}

func flatten(m Mat4) []float64 {
	out := make([]float64, 0, 16)
	for i := 0; i < 4; i++ {
		out = append(out, m[i][:]...)
	}
	return out
}

// KahanSum performs a fixed-order Kahan-compensated summation, used by the
// deterministic runner's sample reductions (spec §5: "backend-parallel
// computations converge to a deterministic reduction order").
func KahanSum(values []float64) float64 {
	sum := 0.0
	c := 0.0
	for _, v := range values {
		y := v - c
		t := sum + y
		c = (t - sum) - y
		sum = t
	}
	return sum
}

// KahanMean returns the Kahan-summed mean of values, or 0 for an empty slice.
func KahanMean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return KahanSum(values) / float64(len(values))
}
