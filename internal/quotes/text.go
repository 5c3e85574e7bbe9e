package quotes

import (
	"bytes"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/Simplici0/estimator/internal/money"
	"github.com/Simplici0/estimator/internal/pricing"
)

// Text renders q as a plain-text summary suitable for pasting into an email.
func Text(q Quote) (string, error) {
	var buf bytes.Buffer
	b := q.Breakdown
	in := q.Inputs

	fmt.Fprintf(&buf, "Estimate %s\n", q.ID)
	fmt.Fprintf(&buf, "Created: %s\n", q.CreatedAt.UTC().Format("2006-01-02 15:04 MST"))
	if contact := contactLine(q); contact != "" {
		fmt.Fprintf(&buf, "Contact: %s\n", contact)
	}
	fmt.Fprintf(&buf, "Project: %s, %s complexity, %d pages\n", in.ProjectType, in.Complexity, in.NumPages)
	fmt.Fprintf(&buf, "Timeline: %s / Tech stack: %s / Client: %s\n", in.TimelineUrgency, in.TechStackComplexity, in.ClientType)
	fmt.Fprintf(&buf, "Features: %s\n\n", enabledFeatures(in.Features))

	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', tabwriter.AlignRight)
	amount := func(label string, v float64) error {
		s, err := money.Format(v, q.Currency)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%s\t%s\t\n", label, s)
		return nil
	}
	factor := func(label string, v float64) {
		fmt.Fprintf(tw, "%s\tx%.2f\t\n", label, v)
	}

	if err := amount("Base cost", b.BaseCost); err != nil {
		return "", err
	}
	if err := amount("Pages", b.PageCost); err != nil {
		return "", err
	}
	for _, f := range pricing.AllFeatures() {
		if !in.Features.Enabled(f) {
			continue
		}
		if err := amount("Feature: "+string(f), b.FeatureCosts[f]); err != nil {
			return "", err
		}
	}
	factor("Complexity", b.ComplexityMultiplier)
	if err := amount("Subtotal", b.Subtotal); err != nil {
		return "", err
	}
	factor("Timeline", b.TimelineMultiplier)
	factor("Tech stack", b.TechStackMultiplier)
	factor("Client type", b.ClientTypeMultiplier)
	if err := amount("Total", b.Total); err != nil {
		return "", err
	}
	if err := tw.Flush(); err != nil {
		return "", err
	}

	rng, err := money.FormatRange(b.Range, q.Currency)
	if err != nil {
		return "", err
	}
	fmt.Fprintf(&buf, "\nExpected range: %s\n", rng)
	if len(b.Fallbacks) > 0 {
		fmt.Fprintf(&buf, "Defaults used: %s\n", strings.Join(b.Fallbacks, ", "))
	}
	return buf.String(), nil
}

func contactLine(q Quote) string {
	switch {
	case q.ContactName != "" && q.ContactEmail != "":
		return fmt.Sprintf("%s <%s>", q.ContactName, q.ContactEmail)
	case q.ContactEmail != "":
		return q.ContactEmail
	default:
		return q.ContactName
	}
}

func enabledFeatures(f pricing.Features) string {
	var names []string
	for _, feat := range pricing.AllFeatures() {
		if f.Enabled(feat) {
			names = append(names, string(feat))
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ", ")
}
