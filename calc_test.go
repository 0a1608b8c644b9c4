package pertpy

import (
	"errors"
	"io/fs"
	"reflect"
	"strings"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestLoadCalcInfo(t *testing.T) {
	info, err := LoadCalcInfo("testfiles/si_bands.yml")
	if err != nil {
		t.Fatal(err)
	}
	if info.CalcMode() != "bands" || info.Prefix() != "si" {
		t.Errorf("got mode %q prefix %q", info.CalcMode(), info.Prefix())
	}
	if !nearby(info.Alat(), 10.2631, 1e-12) {
		t.Errorf("got alat %g, wanted 10.2631", info.Alat())
	}
	if !mat.Equal(info.Lat(), fccLat) {
		t.Errorf("got lattice\n%v", mat.Formatted(info.Lat()))
	}
	if !mat.Equal(info.RecipLat(), fccRecipLat) {
		t.Errorf("got reciprocal lattice\n%v", mat.Formatted(info.RecipLat()))
	}
}

func TestLoadCalcInfoErrors(t *testing.T) {
	_, err := LoadCalcInfo("testfiles/missing.yml")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("got %v, wanted not exist", err)
	}
	short := `
input parameters:
  after conversion:
    calc_mode: bands
basic data:
  lattice vectors:
    a1: [1, 0]
`
	if _, err := ParseCalcInfo([]byte(short)); !errors.Is(err, ErrShape) {
		t.Errorf("got %v, wanted shape error", err)
	}
	if _, err := ParseCalcInfo([]byte("basic data: {alat: 1}")); err == nil {
		t.Error("missing calc_mode accepted")
	}
}

func TestLoadBands(t *testing.T) {
	disp, err := LoadBands("testfiles/si_bands.yml")
	if err != nil {
		t.Fatal(err)
	}
	if disp.Kpt.Len() != 6 || disp.Kpt.Units() != Crystal {
		t.Fatalf("got %d k-points in %v", disp.Kpt.Len(), disp.Kpt.Units())
	}
	if !eql(disp.Kpt.Path, []float64{0, 0.5, 1, 1.25, 1.5, 2}, 0) {
		t.Errorf("got path %v", disp.Kpt.Path)
	}
	if got := rowVec(disp.Kpt.PointsCart, 1); got != (Vec{0, 1, 0}) {
		t.Errorf("got X at %v, wanted [0 1 0]", got)
	}
	if disp.Energies.Units != "eV" {
		t.Errorf("got energy units %q, wanted eV", disp.Energies.Units)
	}
	if got := disp.Energies.Indices(); !reflect.DeepEqual(got, []int{1, 2}) {
		t.Errorf("got bands %v, wanted [1 2]", got)
	}
	if got := labelPath(t, disp.Kpt, "L"); !eql(got, []float64{1}, 0) {
		t.Errorf("got L at %v, wanted [1]", got)
	}
}

func labelPath(t *testing.T, db *RecipPtDB, label string) []float64 {
	t.Helper()
	pt, ok := db.Labels[label]
	if !ok {
		t.Fatalf("no label %q", label)
	}
	return db.Point2Path(pt, DefaultMaxDist, false)
}

const phdispYAML = `
input parameters:
  after conversion:
    calc_mode: phdisp
    prefix: si
basic data:
  alat: 10.2631
  lattice vectors:
    a1: [-0.5, 0.0, 0.5]
    a2: [0.0, 0.5, 0.5]
    a3: [-0.5, 0.5, 0.0]
  reciprocal lattice vectors:
    b1: [-1.0, -1.0, 1.0]
    b2: [1.0, 1.0, 1.0]
    b3: [-1.0, 1.0, -1.0]
phdisp:
  q-point coordinate units: cartesian
  q-point coordinates:
    - [0.0, 0.0, 0.0]
    - [0.0, 1.0, 0.0]
  q-path coordinates: [0.0, 1.0]
  phonon mode:
    1: [0.0, 17.5]
    2: [0.0, 17.5]
    3: [0.0, 51.3]
`

func TestParsePhdisp(t *testing.T) {
	disp, err := ParsePhdisp([]byte(phdispYAML))
	if err != nil {
		t.Fatal(err)
	}
	if disp.Kpt.Units() != Cartesian {
		t.Errorf("got units %v, wanted cartesian", disp.Kpt.Units())
	}
	if got := rowVec(disp.Kpt.PointsCryst, 1); !eql(got[:],
		[]float64{0, 0.5, 0.5}, 1e-12) {
		t.Errorf("got X at %v in crystal, wanted [0 0.5 0.5]", got)
	}
	if disp.Energies.Units != "meV" || disp.Energies.Max() != 51.3 {
		t.Errorf("got max %g %s, wanted 51.3 meV", disp.Energies.Max(),
			disp.Energies.Units)
	}
	if _, err := ParseBands([]byte(phdispYAML)); err == nil ||
		!strings.Contains(err.Error(), "phdisp") {
		t.Errorf("got %v, wanted calculation mode error", err)
	}
}

func TestParseBandsShape(t *testing.T) {
	bad := strings.Replace(phdispYAML, "3: [0.0, 51.3]", "3: [0.0]", 1)
	if _, err := ParsePhdisp([]byte(bad)); !errors.Is(err, ErrShape) {
		t.Errorf("got %v, wanted shape error", err)
	}
}

func TestLoadDispersion(t *testing.T) {
	disp, err := LoadDispersion("testfiles/si_bands.yml")
	if err != nil {
		t.Fatal(err)
	}
	if disp.CalcMode() != "bands" {
		t.Errorf("got mode %q", disp.CalcMode())
	}
}
