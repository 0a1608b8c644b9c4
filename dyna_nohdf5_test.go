//go:build !hdf5

package pertpy

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDynaRunNoHDF5(t *testing.T) {
	dir := t.TempDir()
	cdyna := filepath.Join(dir, "si_cdyna.h5")
	tet := filepath.Join(dir, "si_tet.h5")
	for _, f := range []string{cdyna, tet} {
		if err := os.WriteFile(f, nil, 0644); err != nil {
			t.Fatal(err)
		}
	}
	_, err := LoadDynaRun(cdyna, tet, "testfiles/si_bands.yml")
	if !errors.Is(err, ErrNoHDF5) {
		t.Errorf("got %v, wanted %v", err, ErrNoHDF5)
	}
}
