package pertpy

import "strings"

// Unit is the coordinate system reciprocal points are expressed in
type Unit int

const (
	Crystal Unit = iota
	Cartesian
)

func (u Unit) String() string {
	return []string{
		"crystal",
		"cartesian",
	}[u]
}

// unitNames maps every accepted spelling of a coordinate unit to its Unit
var unitNames = map[string]Unit{
	"crystal":    Crystal,
	"cryst":      Crystal,
	"crys":       Crystal,
	"frac":       Crystal,
	"fractional": Crystal,
	"cartesian":  Cartesian,
	"cart":       Cartesian,
	"tpiba":      Cartesian,
	"2pi/a":      Cartesian,
	"2pi/alat":   Cartesian,
}

// ParseUnit canonicalizes name against the synonym table. Case and
// surrounding whitespace are ignored.
func ParseUnit(name string) (Unit, error) {
	u, ok := unitNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, &InvalidUnitError{Name: name}
	}
	return u, nil
}
