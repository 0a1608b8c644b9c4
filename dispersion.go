package pertpy

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Dispersion is the result of a bands or phdisp calculation: a path of
// reciprocal points and the energies of each band or mode along it
type Dispersion struct {
	*CalcInfo
	// Kpt holds the k-points of a bands run or the q-points of a phdisp run
	Kpt      *RecipPtDB
	Energies *UnitsDict
}

type bandsSection struct {
	PointUnits string            `yaml:"k-point coordinate units"`
	Points     [][]float64       `yaml:"k-point coordinates"`
	PathUnits  string            `yaml:"k-path coordinate units"`
	Path       []float64         `yaml:"k-path coordinates"`
	Units      string            `yaml:"energy units"`
	Energies   map[int][]float64 `yaml:"band index"`
}

type phdispSection struct {
	PointUnits string            `yaml:"q-point coordinate units"`
	Points     [][]float64       `yaml:"q-point coordinates"`
	PathUnits  string            `yaml:"q-path coordinate units"`
	Path       []float64         `yaml:"q-path coordinates"`
	Units      string            `yaml:"phonon energy units"`
	Energies   map[int][]float64 `yaml:"phonon mode"`
}

func newDispersion(info *CalcInfo, s bandsSection,
	defUnits string) (*Dispersion, error) {
	if s.PointUnits == "" {
		s.PointUnits = "crystal"
	}
	if s.Units == "" {
		s.Units = defUnits
	}
	opts := []Option{}
	if s.Path != nil {
		opts = append(opts, WithPath(s.Path))
	}
	if s.PathUnits != "" {
		opts = append(opts, WithPathUnits(s.PathUnits))
	}
	kpt, err := FromLattice(s.Points, s.PointUnits, info.Lat(),
		info.RecipLat(), opts...)
	if err != nil {
		return nil, fmt.Errorf("reciprocal points: %w", err)
	}
	n := kpt.Len()
	for i, e := range s.Energies {
		if len(e) != n {
			return nil, fmt.Errorf("energies of index %d: %w", i,
				&ShapeError{Rows: len(e), Cols: 1,
					Want: fmt.Sprintf("%d values", n)})
		}
	}
	energies, err := NewUnitsDict(s.Energies, s.Units)
	if err != nil {
		return nil, err
	}
	return &Dispersion{CalcInfo: info, Kpt: kpt, Energies: energies}, nil
}

// ParseBands builds the Dispersion of a bands calculation from the contents
// of its pert_output.yml
func ParseBands(data []byte) (*Dispersion, error) {
	info, err := ParseCalcInfo(data)
	if err != nil {
		return nil, err
	}
	if err := info.checkMode("bands"); err != nil {
		return nil, err
	}
	var doc struct {
		Bands bandsSection `yaml:"bands"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing bands: %w", err)
	}
	return newDispersion(info, doc.Bands, "eV")
}

// ParsePhdisp builds the Dispersion of a phdisp calculation from the
// contents of its pert_output.yml
func ParsePhdisp(data []byte) (*Dispersion, error) {
	info, err := ParseCalcInfo(data)
	if err != nil {
		return nil, err
	}
	if err := info.checkMode("phdisp"); err != nil {
		return nil, err
	}
	var doc struct {
		Phdisp phdispSection `yaml:"phdisp"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing phdisp: %w", err)
	}
	return newDispersion(info, bandsSection(doc.Phdisp), "meV")
}

func LoadBands(path string) (*Dispersion, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseBands(data)
}

func LoadPhdisp(path string) (*Dispersion, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParsePhdisp(data)
}

// LoadDispersion dispatches on the calculation mode recorded in path
func LoadDispersion(path string) (*Dispersion, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	info, err := ParseCalcInfo(data)
	if err != nil {
		return nil, err
	}
	switch info.CalcMode() {
	case "bands":
		return ParseBands(data)
	case "phdisp":
		return ParsePhdisp(data)
	}
	return nil, fmt.Errorf("no dispersion for calculation mode %q",
		info.CalcMode())
}
