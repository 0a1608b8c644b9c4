//go:build !hdf5

package pertpy

func openDynaSource(cdynaPath, tetPath string) (DynaSource, func() error,
	error) {
	return nil, nil, ErrNoHDF5
}
