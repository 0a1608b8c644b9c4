package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ntBre/pertpy"
	"github.com/ntBre/pertpy/regress"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	debug  bool
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "pertpy",
	Short: "Post-processing and regression testing for Perturbo",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if debug {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		return err
	},
	SilenceUsage: true,
}

var testCmd = &cobra.Command{
	Use:   "test [names...]",
	Short: "Run perturbo regression tests and compare against references",
	Long: `Runs each named test (or every test under the tests_perturbo
directory when none are given) through test_utils/run_interactive.sh and
compares the files listed in its pert_input.yml with the references.`,
	RunE: runTests,
}

var bandsCmd = &cobra.Command{
	Use:   "bands FILE",
	Short: "Print the dispersion from a bands or phdisp pert_output.yml",
	Args:  cobra.ExactArgs(1),
	RunE:  printBands,
}

var findCmd = &cobra.Command{
	Use:   "find FILE X Y Z",
	Short: "Find a reciprocal point on the path of a dispersion calculation",
	Args:  cobra.ExactArgs(4),
	RunE:  findPoint,
}

var dynaCmd = &cobra.Command{
	Use:   "dyna CDYNA TET",
	Short: "Summarize the runs of a dynamics-run calculation",
	Long: `Reads the prefix_cdyna.h5 and prefix_tet.h5 files of a dynamics-run
calculation along with its pert_output.yml and prints the number of steps,
time step and electric field of each run. Requires a build with -tags hdf5.`,
	Args: cobra.ExactArgs(2),
	RunE: printDyna,
}

var infoCmd = &cobra.Command{
	Use:   "info FILE",
	Short: "Print the calculation info and lattice from a pert_output.yml",
	Args:  cobra.ExactArgs(1),
	RunE:  printInfo,
}

var (
	root        string
	keep        bool
	tags        []string
	excludeTags []string

	window      string
	energyUnits string
	plotOut     string

	units   string
	maxDist float64
	exact   bool

	points bool

	dynaYaml string
)

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"whether to print debugging information")
	rootCmd.PersistentFlags().BoolVarP(&pertpy.Quiet, "quiet", "q", false,
		"print nothing but errors")

	testCmd.Flags().StringVar(&root, "root", ".",
		"directory containing the test suite")
	testCmd.Flags().BoolVar(&keep, "keep", false,
		"keep perturbo outputs after comparison")
	testCmd.Flags().StringSliceVar(&tags, "tags", nil,
		"only run tests with one of these tags")
	testCmd.Flags().StringSliceVar(&excludeTags, "exclude-tags", nil,
		"skip tests with any of these tags")

	bandsCmd.Flags().StringVar(&window, "window", "",
		"only print energies in lo,hi")
	bandsCmd.Flags().StringVar(&energyUnits, "units", "",
		"convert energies to these units")
	bandsCmd.Flags().StringVar(&plotOut, "out", "",
		"also plot the dispersion to this image file (png, svg, pdf)")

	dynaCmd.Flags().StringVar(&dynaYaml, "yaml", "pert_output.yml",
		"pert_output.yml of the dynamics-run calculation")

	infoCmd.Flags().BoolVar(&points, "points", false,
		"also print the reciprocal points of a dispersion calculation")

	findCmd.Flags().StringVar(&units, "units", "crystal",
		"units of the query point")
	findCmd.Flags().Float64Var(&maxDist, "max-dist", pertpy.DefaultMaxDist,
		"distance within which points match")
	findCmd.Flags().BoolVar(&exact, "exact", false,
		"don't fall back to the nearest point")

	rootCmd.AddCommand(testCmd, bandsCmd, findCmd, infoCmd, dynaCmd)
}

func stdout() io.Writer {
	if pertpy.Quiet {
		return io.Discard
	}
	return os.Stdout
}

func runTests(cmd *cobra.Command, args []string) error {
	defer logger.Sync()
	names := args
	if len(names) == 0 {
		var err error
		names, err = regress.ListTests(root)
		if err != nil {
			return err
		}
	}
	d := &regress.Driver{
		Root:        root,
		Keep:        keep,
		Tags:        tags,
		ExcludeTags: excludeTags,
		Logger:      logger,
	}
	out := stdout()
	var failed int
	for _, name := range names {
		results, err := d.Run(cmd.Context(), name)
		if errors.Is(err, regress.ErrSkipped) {
			fmt.Fprintf(out, "%-30s SKIP\n", name)
			continue
		}
		if err != nil {
			logger.Error("Test failed to run", zap.String("test", name),
				zap.Error(err))
			fmt.Fprintf(out, "%-30s ERROR\n", name)
			failed++
			continue
		}
		status := "PASS"
		for _, r := range results {
			if r.Err != nil {
				status = "FAIL"
				fmt.Fprintf(out, "%v\n", r.Err)
				continue
			}
			if !r.Equal {
				status = "FAIL"
				fmt.Fprintf(out, "files %s and %s do not match\n%s\n",
					r.RefPath, r.NewPath, r.Diff)
			}
		}
		if status == "FAIL" {
			failed++
		}
		fmt.Fprintf(out, "%-30s %s\n", name, status)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d tests failed", failed, len(names))
	}
	return nil
}

func parseWindow(s string) (*[2]float64, error) {
	if s == "" {
		return nil, nil
	}
	fields := strings.Split(s, ",")
	if len(fields) != 2 {
		return nil, fmt.Errorf("window %q: want lo,hi", s)
	}
	var w [2]float64
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, fmt.Errorf("window %q: %w", s, err)
		}
		w[i] = v
	}
	return &w, nil
}

func printBands(cmd *cobra.Command, args []string) error {
	w, err := parseWindow(window)
	if err != nil {
		return err
	}
	disp, err := pertpy.LoadDispersion(args[0])
	if err != nil {
		return err
	}
	if energyUnits != "" {
		if err := disp.Energies.Convert(energyUnits); err != nil {
			return err
		}
	}
	lines := pertpy.DispersionLines(disp.Kpt, disp.Energies, w)
	ticks := pertpy.LabelTicks(disp.Kpt)
	pertpy.WriteDispersion(stdout(), lines, ticks, disp.Energies.Units)
	if plotOut != "" {
		return pertpy.SaveDispersion(plotOut, lines, ticks,
			disp.Energies.Units)
	}
	return nil
}

func printDyna(cmd *cobra.Command, args []string) error {
	d, err := pertpy.LoadDynaRun(args[0], args[1], dynaYaml)
	if err != nil {
		return err
	}
	d.WriteInfo(stdout())
	return nil
}

func findPoint(cmd *cobra.Command, args []string) error {
	disp, err := pertpy.LoadDispersion(args[0])
	if err != nil {
		return err
	}
	if err := disp.Kpt.SetUnits(units); err != nil {
		return err
	}
	var pt pertpy.Vec
	for i, a := range args[1:] {
		if pt[i], err = strconv.ParseFloat(a, 64); err != nil {
			return err
		}
	}
	out := stdout()
	idx := disp.Kpt.Find(pt, maxDist, !exact)
	if len(idx) == 0 {
		fmt.Fprintln(out, "no matching point")
		return nil
	}
	for _, i := range idx {
		fmt.Fprintf(out, "%5d%14.6f\n", i, disp.Kpt.Path[i])
	}
	return nil
}

func printInfo(cmd *cobra.Command, args []string) error {
	info, err := pertpy.LoadCalcInfo(args[0])
	if err != nil {
		return err
	}
	out := stdout()
	fmt.Fprintf(out, "%30s: %s\n", "Calculation mode", info.CalcMode())
	fmt.Fprintf(out, "%30s: %s\n", "Prefix", info.Prefix())
	fmt.Fprintf(out, "%30s: %g %s\n", "Lattice constant", info.Alat(),
		info.Basic.AlatUnits)
	fmt.Fprintln(out, "LATTICE VECTORS (alat)")
	pertpy.PrintMat(out, info.Lat())
	fmt.Fprintln(out, "RECIPROCAL LATTICE VECTORS (2pi/alat)")
	pertpy.PrintMat(out, info.RecipLat())
	if !points {
		return nil
	}
	disp, err := pertpy.LoadDispersion(args[0])
	if err != nil {
		return err
	}
	pertpy.PrintPoints(out, disp.Kpt)
	return nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
