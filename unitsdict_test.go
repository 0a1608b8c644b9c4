package pertpy

import (
	"errors"
	"reflect"
	"testing"
)

func TestUnitsDictConvert(t *testing.T) {
	tests := []struct {
		from string
		to   string
		in   []float64
		want []float64
		eps  float64
	}{
		{"Ry", "eV", []float64{1, -0.5}, []float64{13.605693122994, -6.802846561497}, 1e-12},
		{"eV", "meV", []float64{1.5}, []float64{1500}, 1e-9},
		{"Ha", "Ry", []float64{1}, []float64{2}, 1e-12},
		{"meV", "THz", []float64{1000}, []float64{241.799050402}, 1e-9},
		{"eV", "cm-1", []float64{1}, []float64{8065.543937}, 1e-6},
	}
	for _, test := range tests {
		u, err := NewUnitsDict(map[int][]float64{1: test.in}, test.from)
		if err != nil {
			t.Fatal(err)
		}
		if err := u.Convert(test.to); err != nil {
			t.Fatal(err)
		}
		if !eql(u.Data[1], test.want, test.eps) || u.Units != test.to {
			t.Errorf("%s -> %s: got %v %s, wanted %v", test.from, test.to,
				u.Data[1], u.Units, test.want)
		}
	}
}

func TestUnitsDictErrors(t *testing.T) {
	if _, err := NewUnitsDict(nil, "kcal"); !errors.Is(err, ErrInvalidUnit) {
		t.Errorf("got %v, wanted invalid unit", err)
	}
	u, err := NewUnitsDict(map[int][]float64{1: {1}}, "eV")
	if err != nil {
		t.Fatal(err)
	}
	if err := u.Convert("kelvin"); !errors.Is(err, ErrInvalidUnit) {
		t.Errorf("got %v, wanted invalid unit", err)
	}
	if u.Units != "eV" || u.Data[1][0] != 1 {
		t.Errorf("failed Convert changed the data to %v %s", u.Data, u.Units)
	}
}

func TestUnitsDictStats(t *testing.T) {
	u, err := NewUnitsDict(map[int][]float64{
		3: {0.5, 2},
		1: {-1, 0},
		2: {4, 1},
	}, "Ry")
	if err != nil {
		t.Fatal(err)
	}
	if got := u.Indices(); !reflect.DeepEqual(got, []int{1, 2, 3}) {
		t.Errorf("got indices %v, wanted [1 2 3]", got)
	}
	if u.Max() != 4 || u.Min() != -1 {
		t.Errorf("got range [%g, %g], wanted [-1, 4]", u.Min(), u.Max())
	}
	empty, _ := NewUnitsDict(nil, "eV")
	if empty.Max() != 0 || empty.Min() != 0 || len(empty.Indices()) != 0 {
		t.Error("empty dict should have zero range and no indices")
	}
}
