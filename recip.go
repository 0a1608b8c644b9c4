package pertpy

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Default search tolerances
const (
	DefaultMaxDist = 0.025
	DefaultAtol    = 1e-8
	DefaultRtol    = 1e-5
)

// specialPoints are the high-symmetry points of the fcc Brillouin zone in
// crystal coordinates
var specialPoints = map[string]Vec{
	"Gamma": {0, 0, 0},
	"X":     {0.5, 0, 0.5},
	"L":     {0.5, 0.5, 0.5},
	"W":     {0.5, 0.25, 0.75},
	"K":     {0.375, 0.375, 0.75},
	"U":     {0.625, 0.25, 0.625},
}

// SpecialPoints returns a fresh copy of the default labels
func SpecialPoints() map[string]Vec {
	ret := make(map[string]Vec, len(specialPoints))
	for k, v := range specialPoints {
		ret[k] = v
	}
	return ret
}

// RecipPtDB is a set of points in reciprocal space held in both crystal and
// cartesian (2pi/a) coordinates, together with a 1-D path coordinate for
// each point and a set of labeled points.
//
// Row i of PointsCart and PointsCryst must be the same physical point.
// NewRecipPtDB does not check this; see CheckConsistency.
type RecipPtDB struct {
	PointsCart  *mat.Dense
	PointsCryst *mat.Dense
	// Points aliases whichever of PointsCart and PointsCryst matches Units
	Points    *mat.Dense
	Path      []float64
	PathUnits string
	Labels    map[string]Vec
	units     Unit
}

type Option func(*RecipPtDB)

// WithPath sets the path coordinate of each point. It must have one entry
// per point.
func WithPath(path []float64) Option {
	return func(db *RecipPtDB) {
		db.Path = append([]float64(nil), path...)
	}
}

func WithPathUnits(units string) Option {
	return func(db *RecipPtDB) {
		db.PathUnits = units
	}
}

// WithLabels replaces the default special-point labels
func WithLabels(labels map[string]Vec) Option {
	return func(db *RecipPtDB) {
		db.Labels = make(map[string]Vec, len(labels))
		for k, v := range labels {
			db.Labels[k] = v
		}
	}
}

// NewRecipPtDB builds a RecipPtDB from the same points given in cartesian
// and crystal coordinates. units selects the coordinates exposed through
// Points.
func NewRecipPtDB(cart, cryst [][]float64, units string,
	opts ...Option) (*RecipPtDB, error) {
	u, err := ParseUnit(units)
	if err != nil {
		return nil, err
	}
	pcart, err := ReshapePoints(cart)
	if err != nil {
		return nil, err
	}
	pcryst, err := ReshapePoints(cryst)
	if err != nil {
		return nil, err
	}
	return newRecipPtDB(pcart, pcryst, u, opts...)
}

func newRecipPtDB(cart, cryst *mat.Dense, u Unit,
	opts ...Option) (*RecipPtDB, error) {
	n, _ := cart.Dims()
	if r, c := cryst.Dims(); r != n {
		return nil, &ShapeError{Rows: r, Cols: c,
			Want: "same number of points as cartesian input"}
	}
	db := &RecipPtDB{
		PointsCart:  cart,
		PointsCryst: cryst,
		PathUnits:   "arbitrary",
	}
	for _, opt := range opts {
		opt(db)
	}
	if db.Path == nil {
		db.Path = make([]float64, n)
		for i := range db.Path {
			db.Path[i] = float64(i)
		}
	} else if len(db.Path) != n {
		return nil, &ShapeError{Rows: len(db.Path), Cols: 1,
			Want: "one path coordinate per point"}
	}
	if len(db.Labels) == 0 {
		db.Labels = SpecialPoints()
	}
	db.setUnits(u)
	return db, nil
}

// FromLattice builds a RecipPtDB from points given in units, deriving the
// other coordinates from the lattice vectors lat (rows a1, a2, a3 in alat)
// and reciprocal lattice vectors recipLat (rows b1, b2, b3 in 2pi/a).
func FromLattice(points [][]float64, units string, lat, recipLat mat.Matrix,
	opts ...Option) (*RecipPtDB, error) {
	u, err := ParseUnit(units)
	if err != nil {
		return nil, err
	}
	pts, err := ReshapePoints(points)
	if err != nil {
		return nil, err
	}
	var cart, cryst *mat.Dense
	switch u {
	case Cartesian:
		cart = pts
		cryst, err = Cryst2Cart(pts, lat, recipLat, false, false)
	case Crystal:
		cryst = pts
		cart, err = Cryst2Cart(pts, lat, recipLat, true, false)
	}
	if err != nil {
		return nil, err
	}
	return newRecipPtDB(cart, cryst, u, opts...)
}

// Len returns the number of points
func (db *RecipPtDB) Len() int {
	r, _ := db.PointsCart.Dims()
	return r
}

func (db *RecipPtDB) Units() Unit { return db.units }

// SetUnits switches the coordinates exposed through Points. On error the
// database is left unchanged.
func (db *RecipPtDB) SetUnits(name string) error {
	u, err := ParseUnit(name)
	if err != nil {
		return err
	}
	db.setUnits(u)
	return nil
}

func (db *RecipPtDB) setUnits(u Unit) {
	db.units = u
	switch u {
	case Cartesian:
		db.Points = db.PointsCart
	case Crystal:
		db.Points = db.PointsCryst
	}
}

// ScalePath linearly maps Path onto [lo, hi], sending its minimum to lo and
// its maximum to hi
func (db *RecipPtDB) ScalePath(lo, hi float64) error {
	if len(db.Path) == 0 {
		return &DegenerateRangeError{}
	}
	pmin, pmax := floats.Min(db.Path), floats.Max(db.Path)
	if pmax == pmin {
		return &DegenerateRangeError{Value: pmin}
	}
	floats.AddConst(-pmin, db.Path)
	floats.Scale((hi-lo)/(pmax-pmin), db.Path)
	floats.AddConst(lo, db.Path)
	return nil
}

// Distances returns the distance from point, given in the current units, to
// each stored point
func (db *RecipPtDB) Distances(point Vec) []float64 {
	return ComputeDistances(db.Points, point)
}

// Find returns the indices of the stored points within maxDist of point.
// See FindPoint.
func (db *RecipPtDB) Find(point Vec, maxDist float64, nearest bool) []int {
	return FindPoint(point, db.Points, maxDist, nearest)
}

// Point2Path returns the path coordinates of the points Find matches
func (db *RecipPtDB) Point2Path(point Vec, maxDist float64,
	nearest bool) []float64 {
	return ConvertPoint2Path(point, db.Points, db.Path, maxDist, nearest)
}

// Path2Point returns the points, in the current units, whose path coordinate
// matches pathCoord. See ConvertPath2Point.
func (db *RecipPtDB) Path2Point(pathCoord, atol, rtol float64,
	nearest bool) []Vec {
	return ConvertPath2Point(pathCoord, db.Points, db.Path, atol, rtol,
		nearest)
}

// AddLabels merges labels into Labels, overwriting existing names
func (db *RecipPtDB) AddLabels(labels map[string]Vec) {
	if db.Labels == nil {
		db.Labels = make(map[string]Vec, len(labels))
	}
	for k, v := range labels {
		db.Labels[k] = v
	}
}

// RemoveLabels deletes each of names from Labels. If any name is missing, a
// *KeyNotFoundError is returned and nothing is removed.
func (db *RecipPtDB) RemoveLabels(names ...string) error {
	for _, name := range names {
		if _, ok := db.Labels[name]; !ok {
			return &KeyNotFoundError{Key: name}
		}
	}
	for _, name := range names {
		delete(db.Labels, name)
	}
	return nil
}
