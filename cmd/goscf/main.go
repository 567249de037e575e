// Command goscf runs restricted Hartree-Fock calculations from the command
// line: it reads a plain-text geometry, an optional YAML configuration, and
// reports the converged energy and orbital spectrum.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dairdre/goscf/chem"
	"github.com/dairdre/goscf/logging"
	"github.com/dairdre/goscf/scf"
)

var (
	basisName  string
	unit       string
	charge     int
	configPath string
	logLevel   string
	logFile    string
	mulliken   bool
	gradStep   float64
)

var rootCmd = &cobra.Command{
	Use:   "goscf",
	Short: "Restricted Hartree-Fock on Gaussian basis sets",
	Long: `goscf computes restricted Hartree-Fock energies with a native
McMurchie-Davidson integral engine, Schwarz-screened two-electron
integrals, and DIIS-accelerated SCF iterations.`,
	Version:       "0.2.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var runCmd = &cobra.Command{
	Use:   "run <geometry.xyz>",
	Short: "Run an SCF calculation on the given geometry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mol, cfg, log, cleanup, err := setup(args[0])
		if err != nil {
			return err
		}
		defer cleanup()

		drv, err := scf.NewDriver(mol, basisName, cfg, scf.WithLogger(log))
		if err != nil {
			return err
		}
		res, err := drv.Run(signalContext(cmd.Context()))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "state              %s\n", res.State)
		fmt.Fprintf(out, "iterations         %d\n", res.Iterations)
		fmt.Fprintf(out, "total energy       %.10f Ha\n", res.Energy)
		fmt.Fprintf(out, "electronic energy  %.10f Ha\n", res.Electronic)
		fmt.Fprintf(out, "nuclear repulsion  %.10f Ha\n", res.NuclearRepulsion)
		if res.DispersionEnergy != 0 {
			fmt.Fprintf(out, "dispersion         %.10f Ha\n", res.DispersionEnergy)
		}
		fmt.Fprintln(out, "orbital energies (Ha):")
		nocc := mol.NElectrons() / 2
		for i, e := range res.Orbitals.Energies {
			occ := "virt"
			if i < nocc {
				occ = "occ "
			}
			fmt.Fprintf(out, "  %3d  %s  %12.6f\n", i+1, occ, e)
		}

		if mulliken {
			charges := scf.Mulliken(mol, drv.Registry(), res.Density, drv.Overlap())
			fmt.Fprintln(out, "mulliken charges:")
			for i, q := range charges {
				fmt.Fprintf(out, "  %-4s %+.4f\n", mol.Atoms[i].Label, q)
			}
		}
		if !res.Converged {
			return fmt.Errorf("scf did not converge: %s", res.State)
		}
		return nil
	},
}

var gradCmd = &cobra.Command{
	Use:   "grad <geometry.xyz>",
	Short: "Compute the nuclear gradient by central finite differences",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mol, cfg, log, cleanup, err := setup(args[0])
		if err != nil {
			return err
		}
		defer cleanup()

		grad, err := scf.Gradient(signalContext(cmd.Context()), mol, basisName, cfg,
			gradStep, scf.WithLogger(log))
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "gradient (Ha/Bohr):")
		for i, g := range grad {
			fmt.Fprintf(out, "  %-4s %12.8f %12.8f %12.8f\n", mol.Atoms[i].Label, g[0], g[1], g[2])
		}
		return nil
	},
}

// setup loads the geometry and configuration shared by the subcommands.
func setup(geomPath string) (*chem.Molecule, scf.Config, *logging.Logger, func(), error) {
	noop := func() {}
	text, err := os.ReadFile(geomPath)
	if err != nil {
		return nil, scf.Config{}, nil, noop, err
	}
	mol, err := chem.ParseXYZ(string(text), unit)
	if err != nil {
		return nil, scf.Config{}, nil, noop, err
	}
	mol.Charge = charge

	cfg := scf.DefaultConfig()
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, scf.Config{}, nil, noop, err
		}
		if cfg, err = scf.LoadConfig(data); err != nil {
			return nil, scf.Config{}, nil, noop, err
		}
	}

	outputs := []logging.Output{logging.NewConsoleOutput()}
	var fileOut *logging.WriterOutput
	if logFile != "" {
		fo, err := logging.NewFileOutput(logFile)
		if err != nil {
			return nil, scf.Config{}, nil, noop, err
		}
		outputs = append(outputs, fo)
		fileOut = fo
	}
	log := logging.NewLogger(logging.Config{
		Severity: logging.ParseSeverity(logLevel),
		Outputs:  outputs,
	})
	cleanup := func() {
		_ = log.Sync()
		if fileOut != nil {
			_ = fileOut.Close()
		}
	}
	return mol, cfg, log, cleanup, nil
}

// signalContext cancels on SIGINT/SIGTERM so a long SCF run stops cleanly
// between iterations.
func signalContext(parent context.Context) context.Context {
	ctx, _ := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	return ctx
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&basisName, "basis", "b", "sto-3g", "basis set name")
	rootCmd.PersistentFlags().StringVarP(&unit, "unit", "u", "angstrom", "geometry length unit (angstrom or bohr)")
	rootCmd.PersistentFlags().IntVarP(&charge, "charge", "c", 0, "total molecular charge")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log severity (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "also log to this file")
	runCmd.Flags().BoolVar(&mulliken, "mulliken", false, "print Mulliken population charges")
	gradCmd.Flags().Float64Var(&gradStep, "step", scf.DefaultGradientStep, "finite-difference displacement (Bohr)")
	rootCmd.AddCommand(runCmd, gradCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
