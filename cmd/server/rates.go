package main

import (
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Simplici0/estimator/internal/pricing"
	"github.com/Simplici0/estimator/internal/ratestore"
)

var ratesExportOut string

var ratesCmd = &cobra.Command{
	Use:   "rates",
	Short: "Manage the rate configuration",
}

var ratesImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the rate configuration with a YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rc, err := readRatesFile(args[0])
		if err != nil {
			return err
		}

		a, err := openApp(cmd.Context(), cfg, zap.L())
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.rates.Save(cmd.Context(), rc); err != nil {
			return err
		}
		cmd.Printf("imported %d rates from %s\n", len(ratestore.Rows(rc)), args[0])
		printProblems(cmd, rc)
		return nil
	},
}

var ratesExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the rate configuration as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context(), cfg, zap.L())
		if err != nil {
			return err
		}
		defer a.Close()

		rc, err := a.rates.Load(cmd.Context())
		if err != nil {
			return err
		}

		var w io.Writer = cmd.OutOrStdout()
		if ratesExportOut != "" {
			f, err := os.Create(ratesExportOut)
			if err != nil {
				return eris.Wrap(err, "create export file")
			}
			defer f.Close()
			w = f
		}
		return ratestore.WriteYAML(w, rc)
	},
}

var ratesCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Report rate configuration problems",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context(), cfg, zap.L())
		if err != nil {
			return err
		}
		defer a.Close()

		rc, err := a.rates.Load(cmd.Context())
		if err != nil {
			return err
		}
		if n := printProblems(cmd, rc); n > 0 {
			return eris.Errorf("rate configuration has %d problem(s)", n)
		}
		cmd.Println("rate configuration is complete")
		return nil
	},
}

func readRatesFile(path string) (pricing.RateConfiguration, error) {
	f, err := os.Open(path)
	if err != nil {
		return pricing.RateConfiguration{}, eris.Wrapf(err, "open %s", path)
	}
	defer f.Close()
	return ratestore.ReadYAML(f)
}

func printProblems(cmd *cobra.Command, rc pricing.RateConfiguration) int {
	problems := pricing.Problems(rc)
	for _, p := range problems {
		cmd.PrintErrln("problem:", p.Error())
	}
	return len(problems)
}

func init() {
	ratesExportCmd.Flags().StringVarP(&ratesExportOut, "out", "o", "", "write to file instead of stdout")
	ratesCmd.AddCommand(ratesImportCmd, ratesExportCmd, ratesCheckCmd)
	rootCmd.AddCommand(ratesCmd)
}
