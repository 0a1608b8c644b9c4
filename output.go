package pertpy

import (
	"fmt"
	"io"

	"gonum.org/v1/gonum/mat"
)

// Quiet suppresses informational output from the command line tool
var Quiet bool

func PrintMat(out io.Writer, matr mat.Matrix) {
	r, c := matr.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			fmt.Fprintf(out, "%12.5f", matr.At(i, j))
		}
		fmt.Fprint(out, "\n")
	}
}

func PrintVec(out io.Writer, v []float64) {
	for i := range v {
		if i > 0 && (i%6) == 0 {
			fmt.Fprint(out, "\n")
		}
		fmt.Fprintf(out, "%14.6E", v[i])
	}
	fmt.Fprint(out, "\n")
}

// PrintPoints writes the points of db in its current units, one per line,
// next to their path coordinates
func PrintPoints(out io.Writer, db *RecipPtDB) {
	fmt.Fprintf(out, "%5s%14s%12s%12s%12s\n",
		"POINT", "PATH", "X", "Y", "Z")
	for i := 0; i < db.Len(); i++ {
		fmt.Fprintf(out, "%5d%14.6f", i, db.Path[i])
		for j := 0; j < 3; j++ {
			fmt.Fprintf(out, "%12.5f", db.Points.At(i, j))
		}
		fmt.Fprint(out, "\n")
	}
}
