//go:build hdf5

package pertpy

import (
	"fmt"

	"gonum.org/v1/hdf5"
)

// h5Group is satisfied by both *hdf5.File and *hdf5.Group
type h5Group interface {
	OpenDataset(name string) (*hdf5.Dataset, error)
	LinkExists(name string) bool
}

// h5DynaSource reads a dynamics-run from the cdyna file it writes and the
// tet file of the setup calculation
type h5DynaSource struct {
	cdyna, tet *hdf5.File
}

func openDynaSource(cdynaPath, tetPath string) (DynaSource, func() error,
	error) {
	cdyna, err := hdf5.OpenFile(cdynaPath, hdf5.F_ACC_RDONLY)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s: %w", cdynaPath, err)
	}
	tet, err := hdf5.OpenFile(tetPath, hdf5.F_ACC_RDONLY)
	if err != nil {
		cdyna.Close()
		return nil, nil, fmt.Errorf("opening %s: %w", tetPath, err)
	}
	closer := func() error {
		err := cdyna.Close()
		if terr := tet.Close(); err == nil {
			err = terr
		}
		return err
	}
	return &h5DynaSource{cdyna: cdyna, tet: tet}, closer, nil
}

func (s *h5DynaSource) Kpoints() ([][]float64, error) {
	return readMatrix(s.tet, "kpts_all_crys_coord")
}

func (s *h5DynaSource) BandEnergies() ([][]float64, error) {
	return readMatrix(s.cdyna, "band_structure_ryd")
}

func (s *h5DynaSource) NumRuns() (int, error) {
	return readInt(s.cdyna, "num_runs")
}

func (s *h5DynaSource) Run(irun int) (raw RawDynaRun, err error) {
	g, err := s.cdyna.OpenGroup(fmt.Sprintf("dynamics_run_%d", irun))
	if err != nil {
		return raw, err
	}
	defer g.Close()
	nsteps, err := readInt(g, "num_steps")
	if err != nil {
		return raw, err
	}
	if raw.TimeStep, err = readFloat(g, "time_step_fs"); err != nil {
		return raw, err
	}
	for i := 1; i <= nsteps; i++ {
		snap, err := readMatrix(g, fmt.Sprintf("snap_t_%d", i))
		if err != nil {
			return raw, err
		}
		raw.Snaps = append(raw.Snaps, snap)
	}
	// the field is only written when it is nonzero
	if g.LinkExists("efield") {
		if raw.EField, err = readVector(g, "efield"); err != nil {
			return raw, err
		}
	}
	return raw, nil
}

// readData opens dataset name in g and reads it into a flat slice along
// with its dimensions
func readData(g h5Group, name string) ([]float64, []uint, error) {
	ds, err := g.OpenDataset(name)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s: %w", name, err)
	}
	defer ds.Close()
	space := ds.Space()
	defer space.Close()
	dims, _, err := space.SimpleExtentDims()
	if err != nil {
		return nil, nil, fmt.Errorf("shape of %s: %w", name, err)
	}
	n := uint(1)
	for _, d := range dims {
		n *= d
	}
	ret := make([]float64, n)
	if n > 0 {
		if err := ds.Read(&ret); err != nil {
			return nil, nil, fmt.Errorf("reading %s: %w", name, err)
		}
	}
	return ret, dims, nil
}

func readMatrix(g h5Group, name string) ([][]float64, error) {
	flat, dims, err := readData(g, name)
	if err != nil {
		return nil, err
	}
	if len(dims) != 2 {
		return nil, fmt.Errorf("%s: %w", name,
			&ShapeError{Rows: len(dims), Want: "2-D dataset"})
	}
	rows, cols := int(dims[0]), int(dims[1])
	ret := make([][]float64, rows)
	for i := range ret {
		ret[i] = flat[i*cols : (i+1)*cols]
	}
	return ret, nil
}

func readVector(g h5Group, name string) ([]float64, error) {
	flat, _, err := readData(g, name)
	return flat, err
}

func readFloat(g h5Group, name string) (float64, error) {
	flat, _, err := readData(g, name)
	if err != nil {
		return 0, err
	}
	if len(flat) != 1 {
		return 0, fmt.Errorf("%s: %w", name,
			&ShapeError{Rows: len(flat), Cols: 1, Want: "scalar"})
	}
	return flat[0], nil
}

// readInt reads a scalar integer stored with either 4 or 8 bytes
func readInt(g h5Group, name string) (int, error) {
	ds, err := g.OpenDataset(name)
	if err != nil {
		return 0, fmt.Errorf("opening %s: %w", name, err)
	}
	defer ds.Close()
	dtype, err := ds.Datatype()
	if err != nil {
		return 0, fmt.Errorf("type of %s: %w", name, err)
	}
	defer dtype.Close()
	switch dtype.Size() {
	case 4:
		var v int32
		err = ds.Read(&v)
		return int(v), err
	case 8:
		var v int64
		err = ds.Read(&v)
		return int(v), err
	}
	return 0, fmt.Errorf("%s: unsupported integer size %d", name,
		dtype.Size())
}
