package pertpy

import (
	"errors"
	"fmt"
	"os"

	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"
)

// CalcInfo is the calculation metadata Perturbo writes to pert_output.yml
type CalcInfo struct {
	Input struct {
		Converted struct {
			CalcMode string `yaml:"calc_mode"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"after conversion"`
	} `yaml:"input parameters"`
	Basic struct {
		Alat      float64 `yaml:"alat"`
		AlatUnits string  `yaml:"alat units"`
		LatVecs   struct {
			A1 []float64 `yaml:"a1"`
			A2 []float64 `yaml:"a2"`
			A3 []float64 `yaml:"a3"`
		} `yaml:"lattice vectors"`
		LatUnits     string `yaml:"lattice vector units"`
		RecipLatVecs struct {
			B1 []float64 `yaml:"b1"`
			B2 []float64 `yaml:"b2"`
			B3 []float64 `yaml:"b3"`
		} `yaml:"reciprocal lattice vectors"`
		RecipLatUnits string `yaml:"reciprocal lattice vector units"`
	} `yaml:"basic data"`
}

func (c *CalcInfo) CalcMode() string { return c.Input.Converted.CalcMode }

func (c *CalcInfo) Prefix() string { return c.Input.Converted.Prefix }

func (c *CalcInfo) Alat() float64 { return c.Basic.Alat }

// Lat returns the lattice vectors a1, a2, a3 as the rows of a matrix, in
// units of alat
func (c *CalcInfo) Lat() *mat.Dense {
	v := c.Basic.LatVecs
	return basis(v.A1, v.A2, v.A3)
}

// RecipLat returns the reciprocal lattice vectors b1, b2, b3 as the rows of
// a matrix, in units of 2pi/alat
func (c *CalcInfo) RecipLat() *mat.Dense {
	v := c.Basic.RecipLatVecs
	return basis(v.B1, v.B2, v.B3)
}

func basis(rows ...[]float64) *mat.Dense {
	ret := mat.NewDense(3, 3, nil)
	for i, r := range rows {
		ret.SetRow(i, r)
	}
	return ret
}

func (c *CalcInfo) validate() error {
	if c.CalcMode() == "" {
		return errors.New("missing calc_mode")
	}
	l, r := c.Basic.LatVecs, c.Basic.RecipLatVecs
	for _, v := range [][]float64{l.A1, l.A2, l.A3, r.B1, r.B2, r.B3} {
		if len(v) != 3 {
			return &ShapeError{Rows: 1, Cols: len(v), Want: "3-vector"}
		}
	}
	return nil
}

// ParseCalcInfo decodes and validates the metadata in data
func ParseCalcInfo(data []byte) (*CalcInfo, error) {
	var c CalcInfo
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing calculation info: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("calculation info: %w", err)
	}
	return &c, nil
}

// LoadCalcInfo reads the calculation metadata from the YAML file at path
func LoadCalcInfo(path string) (*CalcInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseCalcInfo(data)
}

// checkMode returns an error unless c was produced by calculation mode want
func (c *CalcInfo) checkMode(want string) error {
	if got := c.CalcMode(); got != want {
		return fmt.Errorf("calculation mode is %q, want %q", got, want)
	}
	return nil
}
