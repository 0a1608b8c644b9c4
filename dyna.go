package pertpy

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gonum.org/v1/gonum/mat"
)

// DynaSource supplies the arrays of a dynamics-run calculation, as stored
// in its cdyna and tet HDF5 files
type DynaSource interface {
	// Kpoints returns every k-point in crystal coordinates
	Kpoints() ([][]float64, error)
	// BandEnergies returns the nk×nb band energies in Ry
	BandEnergies() ([][]float64, error)
	NumRuns() (int, error)
	// Run returns the raw data of run irun, counting from 1
	Run(irun int) (RawDynaRun, error)
}

// RawDynaRun is a single run as read from a DynaSource
type RawDynaRun struct {
	TimeStep float64
	// Snaps holds one nk×nb occupation matrix per time step
	Snaps [][][]float64
	// EField is nil when the run had no electric field
	EField []float64
}

// DynaIndivRun is a single simulation within a dynamics-run calculation
type DynaIndivRun struct {
	NumSteps  int
	TimeStep  float64
	TimeUnits string
	// Snap holds the nk×nb occupations at each step
	Snap   []*mat.Dense
	EField Vec
}

// DynaRun is a dynamics-run calculation: the k-points and band structure of
// the setup calculation plus every individual run
type DynaRun struct {
	*CalcInfo
	Kpt   *RecipPtDB
	Bands *UnitsDict
	runs  []*DynaIndivRun
}

// NewDynaRun assembles a DynaRun from the metadata in info and the arrays
// in src
func NewDynaRun(info *CalcInfo, src DynaSource) (*DynaRun, error) {
	if err := info.checkMode("dynamics-run"); err != nil {
		return nil, err
	}
	kpts, err := src.Kpoints()
	if err != nil {
		return nil, fmt.Errorf("reading k-points: %w", err)
	}
	kpt, err := FromLattice(kpts, "crystal", info.Lat(), info.RecipLat())
	if err != nil {
		return nil, err
	}
	energies, err := src.BandEnergies()
	if err != nil {
		return nil, fmt.Errorf("reading band energies: %w", err)
	}
	bands, err := bandsByIndex(energies, kpt.Len())
	if err != nil {
		return nil, err
	}
	nruns, err := src.NumRuns()
	if err != nil {
		return nil, fmt.Errorf("reading run count: %w", err)
	}
	d := &DynaRun{CalcInfo: info, Kpt: kpt, Bands: bands}
	for irun := 1; irun <= nruns; irun++ {
		raw, err := src.Run(irun)
		if err != nil {
			return nil, fmt.Errorf("reading dynamics run %d: %w", irun, err)
		}
		run, err := newIndivRun(raw)
		if err != nil {
			return nil, fmt.Errorf("dynamics run %d: %w", irun, err)
		}
		d.runs = append(d.runs, run)
	}
	return d, nil
}

// ErrNoHDF5 is returned by LoadDynaRun when pertpy was built without the
// hdf5 tag
var ErrNoHDF5 = errors.New("built without HDF5 support, rebuild with -tags hdf5")

// LoadDynaRun reads a dynamics-run calculation from the cdyna HDF5 file it
// writes, the tet HDF5 file of its setup calculation, and its
// pert_output.yml
func LoadDynaRun(cdynaPath, tetPath, yamlPath string) (*DynaRun, error) {
	for _, p := range []string{yamlPath, cdynaPath, tetPath} {
		if _, err := os.Stat(p); err != nil {
			return nil, err
		}
	}
	info, err := LoadCalcInfo(yamlPath)
	if err != nil {
		return nil, err
	}
	src, closer, err := openDynaSource(cdynaPath, tetPath)
	if err != nil {
		return nil, err
	}
	defer closer()
	return NewDynaRun(info, src)
}

func bandsByIndex(energies [][]float64, nk int) (*UnitsDict, error) {
	if len(energies) != nk {
		return nil, &ShapeError{Rows: len(energies), Cols: 0,
			Want: fmt.Sprintf("%d k-points", nk)}
	}
	data := make(map[int][]float64)
	for ik, row := range energies {
		if len(row) != len(energies[0]) {
			return nil, &ShapeError{Rows: len(energies), Cols: len(row),
				Want: fmt.Sprintf("%d bands at k-point %d", len(energies[0]),
					ik+1)}
		}
		for ib, e := range row {
			if data[ib+1] == nil {
				data[ib+1] = make([]float64, nk)
			}
			data[ib+1][ik] = e
		}
	}
	return NewUnitsDict(data, "Ry")
}

func newIndivRun(raw RawDynaRun) (*DynaIndivRun, error) {
	// a dynamics run must have at least one snap
	if len(raw.Snaps) == 0 {
		return nil, &ShapeError{Want: "at least one snapshot"}
	}
	run := &DynaIndivRun{
		NumSteps:  len(raw.Snaps),
		TimeStep:  raw.TimeStep,
		TimeUnits: "fs",
	}
	for i, s := range raw.Snaps {
		if len(s) == 0 || len(s[0]) == 0 {
			return nil, &ShapeError{Want: fmt.Sprintf("non-empty snap %d", i+1)}
		}
		m := mat.NewDense(len(s), len(s[0]), nil)
		for ik, row := range s {
			if len(row) != len(s[0]) {
				return nil, &ShapeError{Rows: len(s), Cols: len(row),
					Want: "rectangular snapshot"}
			}
			m.SetRow(ik, row)
		}
		run.Snap = append(run.Snap, m)
	}
	switch len(raw.EField) {
	case 0:
	case 3:
		copy(run.EField[:], raw.EField)
	default:
		return nil, &ShapeError{Rows: 1, Cols: len(raw.EField),
			Want: "3-vector electric field"}
	}
	return run, nil
}

// Len returns the number of runs
func (d *DynaRun) Len() int { return len(d.runs) }

// Run returns run i, counting from 1
func (d *DynaRun) Run(i int) (*DynaIndivRun, error) {
	if i <= 0 || i > len(d.runs) {
		return nil, fmt.Errorf("run %d out of range [1, %d]", i, len(d.runs))
	}
	return d.runs[i-1], nil
}

// WriteInfo writes a summary of each run to w
func (d *DynaRun) WriteInfo(w io.Writer) {
	fmt.Fprintf(w, "\nThis simulation has %d runs\n", len(d.runs))
	for i, r := range d.runs {
		fmt.Fprintf(w, "%30s: %d\n", "Dynamics run", i+1)
		fmt.Fprintf(w, "%30s: %d\n", "Number of steps", r.NumSteps)
		fmt.Fprintf(w, "%30s: %g\n", "Time step (fs)", r.TimeStep)
		fmt.Fprintf(w, "%30s: ", "Electric field (V/cm)")
		PrintVec(w, r.EField[:])
		fmt.Fprint(w, "\n")
	}
}
