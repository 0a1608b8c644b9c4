package pertpy

import (
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// energyUnits gives the size of each energy unit in eV
var energyUnits = map[string]float64{
	"ry":   13.605693122994,
	"ha":   27.211386245988,
	"ev":   1,
	"mev":  1e-3,
	"cm-1": 1 / 8065.543937,
	"thz":  1 / 241.799050402,
}

// UnitsDict holds arrays of values, keyed by a 1-based index such as a band
// or mode number, that share a single energy unit
type UnitsDict struct {
	Data  map[int][]float64
	Units string
}

// NewUnitsDict checks units and wraps data without copying it
func NewUnitsDict(data map[int][]float64, units string) (*UnitsDict, error) {
	if _, ok := energyUnits[strings.ToLower(units)]; !ok {
		return nil, &InvalidUnitError{Name: units}
	}
	if data == nil {
		data = make(map[int][]float64)
	}
	return &UnitsDict{Data: data, Units: units}, nil
}

// Convert rescales every value in u to the energy unit to
func (u *UnitsDict) Convert(to string) error {
	f, ok := energyUnits[strings.ToLower(to)]
	if !ok {
		return &InvalidUnitError{Name: to}
	}
	factor := energyUnits[strings.ToLower(u.Units)] / f
	for _, v := range u.Data {
		floats.Scale(factor, v)
	}
	u.Units = to
	return nil
}

// Indices returns the keys of u in increasing order
func (u *UnitsDict) Indices() []int {
	ret := make([]int, 0, len(u.Data))
	for k := range u.Data {
		ret = append(ret, k)
	}
	sort.Ints(ret)
	return ret
}

// Max returns the largest value across all entries, or 0 when u is empty
func (u *UnitsDict) Max() (max float64) {
	first := true
	for _, v := range u.Data {
		if len(v) == 0 {
			continue
		}
		if m := floats.Max(v); first || m > max {
			max = m
			first = false
		}
	}
	return
}

// Min returns the smallest value across all entries, or 0 when u is empty
func (u *UnitsDict) Min() (min float64) {
	first := true
	for _, v := range u.Data {
		if len(v) == 0 {
			continue
		}
		if m := floats.Min(v); first || m < min {
			min = m
			first = false
		}
	}
	return
}
