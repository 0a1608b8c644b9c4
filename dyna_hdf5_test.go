//go:build hdf5

package pertpy

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/hdf5"
)

type h5Creator interface {
	CreateDataset(name string, dtype *hdf5.Datatype,
		dspace *hdf5.Dataspace) (*hdf5.Dataset, error)
}

func writeDataset(t *testing.T, g h5Creator, name string, dims []uint,
	dtype *hdf5.Datatype, data interface{}) {
	t.Helper()
	space, err := hdf5.CreateSimpleDataspace(dims, nil)
	require.NoError(t, err)
	defer space.Close()
	ds, err := g.CreateDataset(name, dtype, space)
	require.NoError(t, err)
	defer ds.Close()
	require.NoError(t, ds.Write(data))
}

// writeDynaFiles writes a two-run calculation over three k-points and two
// bands, with a field only in the second run
func writeDynaFiles(t *testing.T, dir string) (cdyna, tet string) {
	t.Helper()
	tet = filepath.Join(dir, "si_tet.h5")
	f, err := hdf5.CreateFile(tet, hdf5.F_ACC_TRUNC)
	require.NoError(t, err)
	kpts := []float64{0, 0, 0, 0, 0.5, 0.5, 0.5, 0.5, 0.5}
	writeDataset(t, f, "kpts_all_crys_coord", []uint{3, 3},
		hdf5.T_NATIVE_DOUBLE, &kpts)
	require.NoError(t, f.Close())

	cdyna = filepath.Join(dir, "si_cdyna.h5")
	f, err = hdf5.CreateFile(cdyna, hdf5.F_ACC_TRUNC)
	require.NoError(t, err)
	defer f.Close()
	bands := []float64{0.1, 0.4, 0.2, 0.5, 0.3, 0.6}
	writeDataset(t, f, "band_structure_ryd", []uint{3, 2},
		hdf5.T_NATIVE_DOUBLE, &bands)
	nruns := int32(2)
	writeDataset(t, f, "num_runs", []uint{1}, hdf5.T_NATIVE_INT32, &nruns)
	runs := []struct {
		step  float64
		snaps [][]float64
		field []float64
	}{
		{1, [][]float64{{1, 0, 0, 0, 0, 0}, {0.5, 0, 0.5, 0, 0, 0}}, nil},
		{2.5, [][]float64{{1, 0, 0, 0, 0, 0}}, []float64{0, 0, 100}},
	}
	for i, r := range runs {
		g, err := f.CreateGroup(fmt.Sprintf("dynamics_run_%d", i+1))
		require.NoError(t, err)
		nsteps := int32(len(r.snaps))
		writeDataset(t, g, "num_steps", []uint{1}, hdf5.T_NATIVE_INT32,
			&nsteps)
		step := r.step
		writeDataset(t, g, "time_step_fs", []uint{1},
			hdf5.T_NATIVE_DOUBLE, &step)
		for j := range r.snaps {
			snap := r.snaps[j]
			writeDataset(t, g, fmt.Sprintf("snap_t_%d", j+1),
				[]uint{3, 2}, hdf5.T_NATIVE_DOUBLE, &snap)
		}
		if r.field != nil {
			field := r.field
			writeDataset(t, g, "efield", []uint{3},
				hdf5.T_NATIVE_DOUBLE, &field)
		}
		require.NoError(t, g.Close())
	}
	return cdyna, tet
}

func TestLoadDynaRun(t *testing.T) {
	dir := t.TempDir()
	cdyna, tet := writeDynaFiles(t, dir)
	src, err := os.ReadFile("testfiles/si_bands.yml")
	require.NoError(t, err)
	yml := filepath.Join(dir, "pert_output.yml")
	require.NoError(t, os.WriteFile(yml, []byte(strings.Replace(string(src),
		"calc_mode: bands", "calc_mode: dynamics-run", 1)), 0644))

	d, err := LoadDynaRun(cdyna, tet, yml)
	require.NoError(t, err)
	assert.Equal(t, 2, d.Len())
	assert.Equal(t, 3, d.Kpt.Len())
	assert.Equal(t, []float64{0.4, 0.5, 0.6}, d.Bands.Data[2])

	r1, err := d.Run(1)
	require.NoError(t, err)
	assert.Equal(t, 2, r1.NumSteps)
	assert.Equal(t, Vec{}, r1.EField)
	assert.Equal(t, 0.5, r1.Snap[1].At(1, 0))

	r2, err := d.Run(2)
	require.NoError(t, err)
	assert.Equal(t, 2.5, r2.TimeStep)
	assert.Equal(t, Vec{0, 0, 100}, r2.EField)

	var b strings.Builder
	d.WriteInfo(&b)
	assert.Contains(t, b.String(), "This simulation has 2 runs")
}

func TestLoadDynaRunBandsFile(t *testing.T) {
	cdyna, tet := writeDynaFiles(t, t.TempDir())
	_, err := LoadDynaRun(cdyna, tet, "testfiles/si_bands.yml")
	assert.Error(t, err)
}
