package main

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Simplici0/estimator/internal/money"
	"github.com/Simplici0/estimator/internal/pricing"
)

type estimateFlags struct {
	projectType string
	complexity  string
	pages       int
	features    []string
	timeline    string
	techStack   string
	clientType  string
	currency    string
	ratesFile   string
	asJSON      bool
}

var estFlags estimateFlags

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Calculate an estimate from the command line",
	Example: `  estimator estimate --project-type website --complexity moderate --pages 5 \
    --feature cms --feature auth --client-type startup`,
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := estFlags.inputs()
		if err != nil {
			return err
		}

		var rc pricing.RateConfiguration
		if estFlags.ratesFile != "" {
			rc, err = readRatesFile(estFlags.ratesFile)
		} else {
			a, openErr := openApp(cmd.Context(), cfg, zap.L())
			if openErr != nil {
				return openErr
			}
			defer a.Close()
			rc, err = a.rates.Load(cmd.Context())
		}
		if err != nil {
			return err
		}

		b, err := pricing.Calculate(in, rc)
		if err != nil {
			return err
		}

		if estFlags.asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(b)
		}
		return printBreakdown(cmd.OutOrStdout(), in, b)
	},
}

func (f estimateFlags) inputs() (pricing.CalculatorInputs, error) {
	in := pricing.CalculatorInputs{
		ProjectType:         pricing.ProjectType(f.projectType),
		Complexity:          pricing.Complexity(f.complexity),
		NumPages:            f.pages,
		TimelineUrgency:     pricing.TimelineUrgency(f.timeline),
		TechStackComplexity: pricing.TechStack(f.techStack),
		ClientType:          pricing.ClientType(f.clientType),
	}
	for _, raw := range f.features {
		feat := pricing.Feature(raw)
		if !slices.Contains(pricing.AllFeatures(), feat) {
			return in, &pricing.InputError{Field: "feature", Reason: fmt.Sprintf("unknown feature %q", raw)}
		}
		in.Features.Set(feat, true)
	}

	currency, err := money.ParseCurrency(f.currency)
	if err != nil {
		return in, err
	}
	in.Currency = currency

	return in, pricing.ValidateInputs(in)
}

func printBreakdown(w io.Writer, in pricing.CalculatorInputs, b pricing.CostBreakdown) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	row := func(label string, v float64) {
		s, _ := money.Format(v, in.Currency)
		fmt.Fprintf(tw, "%s\t%s\n", label, s)
	}

	row("Base cost", b.BaseCost)
	row(fmt.Sprintf("Pages (%d)", in.NumPages), b.PageCost)
	for _, f := range pricing.AllFeatures() {
		if in.Features.Enabled(f) {
			row("  "+string(f), b.FeatureCosts[f])
		}
	}
	row("Features", b.TotalFeatureCost)
	fmt.Fprintf(tw, "Complexity (%s)\tx%.2f\n", in.Complexity, b.ComplexityMultiplier)
	row("Subtotal", b.Subtotal)
	fmt.Fprintf(tw, "Timeline (%s)\tx%.2f\n", in.TimelineUrgency, b.TimelineMultiplier)
	fmt.Fprintf(tw, "Tech stack (%s)\tx%.2f\n", in.TechStackComplexity, b.TechStackMultiplier)
	fmt.Fprintf(tw, "Client type (%s)\tx%.2f\n", in.ClientType, b.ClientTypeMultiplier)
	row("Total", b.Total)

	rng, err := money.FormatRange(b.Range, in.Currency)
	if err != nil {
		return err
	}
	fmt.Fprintf(tw, "Range\t%s\n", rng)
	for _, fb := range b.Fallbacks {
		fmt.Fprintf(tw, "Default used\t%s\n", fb)
	}
	return tw.Flush()
}

func init() {
	f := estimateCmd.Flags()
	f.StringVar(&estFlags.projectType, "project-type", "website", "project type")
	f.StringVar(&estFlags.complexity, "complexity", "moderate", "complexity")
	f.IntVar(&estFlags.pages, "pages", 1, "number of pages")
	f.StringArrayVar(&estFlags.features, "feature", nil, "enabled feature (repeatable)")
	f.StringVar(&estFlags.timeline, "timeline", "normal", "timeline urgency")
	f.StringVar(&estFlags.techStack, "tech-stack", "standard", "tech stack complexity")
	f.StringVar(&estFlags.clientType, "client-type", "small-business", "client type")
	f.StringVar(&estFlags.currency, "currency", "", "display currency (ISO 4217)")
	f.StringVar(&estFlags.ratesFile, "rates", "", "read rates from a YAML file instead of the database")
	f.BoolVar(&estFlags.asJSON, "json", false, "print the breakdown as JSON")
	rootCmd.AddCommand(estimateCmd)
}
