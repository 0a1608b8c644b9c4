package pertpy

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Vec is a single point in reciprocal (or real) space
type Vec [3]float64

// ReshapePoints converts pts into an N×3 matrix with one point per row. pts
// may be given either as N rows of 3 coordinates or as 3 rows of N
// coordinates, the layout Perturbo writes. A 3×3 input is read as rows.
func ReshapePoints(pts [][]float64) (*mat.Dense, error) {
	rows := len(pts)
	if rows == 0 {
		return nil, &ShapeError{Want: "Nx3 or 3xN"}
	}
	cols := len(pts[0])
	for _, r := range pts {
		if len(r) != cols {
			return nil, &ShapeError{Rows: rows, Cols: len(r),
				Want: "rectangular array"}
		}
	}
	switch {
	case cols == 3:
		ret := mat.NewDense(rows, 3, nil)
		for i, r := range pts {
			ret.SetRow(i, r)
		}
		return ret, nil
	case rows == 3 && cols > 0:
		ret := mat.NewDense(cols, 3, nil)
		for j, r := range pts {
			ret.SetCol(j, r)
		}
		return ret, nil
	}
	return nil, &ShapeError{Rows: rows, Cols: cols, Want: "Nx3 or 3xN"}
}

// Cryst2Cart changes the basis of the row vectors in points. With forward
// set, crystal coordinates are multiplied by the basis to give cartesian
// ones; otherwise cartesian coordinates are multiplied by its inverse. The
// basis is recipLat (rows b1, b2, b3 in 2pi/a) unless realSpace is set, in
// which case it is lat (rows a1, a2, a3 in alat).
func Cryst2Cart(points mat.Matrix, lat, recipLat mat.Matrix, forward,
	realSpace bool) (*mat.Dense, error) {
	basis := recipLat
	if realSpace {
		basis = lat
	}
	if isNil(basis) {
		return nil, &ShapeError{Want: "3x3 basis, got nil"}
	}
	if r, c := basis.Dims(); r != 3 || c != 3 {
		return nil, &ShapeError{Rows: r, Cols: c, Want: "3x3 basis"}
	}
	if _, c := points.Dims(); c != 3 {
		r, _ := points.Dims()
		return nil, &ShapeError{Rows: r, Cols: c, Want: "Nx3"}
	}
	var ret mat.Dense
	if forward {
		ret.Mul(points, basis)
		return &ret, nil
	}
	var inv mat.Dense
	if err := inv.Inverse(basis); err != nil {
		return nil, fmt.Errorf("inverting basis: %w", err)
	}
	ret.Mul(points, &inv)
	return &ret, nil
}

// CheckConsistency reports whether cart and cryst describe the same points
// in the reciprocal basis recipLat, within tol.
func CheckConsistency(cart, cryst, recipLat mat.Matrix, tol float64) error {
	got, err := Cryst2Cart(cryst, nil, recipLat, true, false)
	if err != nil {
		return err
	}
	if !mat.EqualApprox(got, cart, tol) {
		return fmt.Errorf("cartesian and crystal points disagree beyond %g", tol)
	}
	return nil
}

// ComputeDistances returns the Euclidean distance between point and each
// row of points
func ComputeDistances(points mat.Matrix, point Vec) []float64 {
	r, _ := points.Dims()
	ret := make([]float64, r)
	row := make([]float64, 3)
	for i := 0; i < r; i++ {
		mat.Row(row, i, points)
		ret[i] = floats.Distance(row, point[:], 2)
	}
	return ret
}

// FindPoint returns the indices of every row of points within maxDist of
// point, in increasing order. When nothing is that close and nearest is
// set, the index of the closest row is returned instead, taking the lowest
// index among ties.
func FindPoint(point Vec, points mat.Matrix, maxDist float64,
	nearest bool) []int {
	dists := ComputeDistances(points, point)
	var ret []int
	for i, d := range dists {
		if d <= maxDist {
			ret = append(ret, i)
		}
	}
	if len(ret) == 0 && nearest && len(dists) > 0 {
		ret = []int{floats.MinIdx(dists)}
	}
	return ret
}

// ConvertPoint2Path returns the path coordinates of the rows FindPoint
// matches
func ConvertPoint2Path(point Vec, points mat.Matrix, path []float64,
	maxDist float64, nearest bool) []float64 {
	idx := FindPoint(point, points, maxDist, nearest)
	ret := make([]float64, len(idx))
	for i, j := range idx {
		ret[i] = path[j]
	}
	return ret
}

// ConvertPath2Point returns the rows of points whose path coordinate is
// within atol + rtol*|pathCoord| of pathCoord. When none are and nearest is
// set, the row with the closest path coordinate is returned.
func ConvertPath2Point(pathCoord float64, points mat.Matrix, path []float64,
	atol, rtol float64, nearest bool) []Vec {
	tol := atol + rtol*math.Abs(pathCoord)
	diffs := make([]float64, len(path))
	var idx []int
	for i, p := range path {
		diffs[i] = math.Abs(p - pathCoord)
		if diffs[i] <= tol {
			idx = append(idx, i)
		}
	}
	if len(idx) == 0 && nearest && len(diffs) > 0 {
		idx = []int{floats.MinIdx(diffs)}
	}
	ret := make([]Vec, len(idx))
	for i, j := range idx {
		ret[i] = rowVec(points, j)
	}
	return ret
}

// isNil reports whether m is nil or holds a nil *mat.Dense
func isNil(m mat.Matrix) bool {
	if m == nil {
		return true
	}
	d, ok := m.(*mat.Dense)
	return ok && d == nil
}

func rowVec(m mat.Matrix, i int) (v Vec) {
	for j := range v {
		v[j] = m.At(i, j)
	}
	return
}
