package pricing

import (
	"fmt"
	"slices"
)

// MaxPages bounds the page count accepted from the estimate form.
const MaxPages = 1000

// ProjectTypes returns the project types in display order.
func ProjectTypes() []ProjectType {
	return []ProjectType{ProjectWebsite, ProjectApp, ProjectEcommerce, ProjectSaaS, ProjectOther}
}

// Complexities returns the complexity levels in display order.
func Complexities() []Complexity {
	return []Complexity{ComplexitySimple, ComplexityModerate, ComplexityComplex}
}

// TimelineUrgencies returns the timeline options in display order.
func TimelineUrgencies() []TimelineUrgency {
	return []TimelineUrgency{TimelineNormal, TimelineFast, TimelineUrgent}
}

// TechStacks returns the tech stack options in display order.
func TechStacks() []TechStack {
	return []TechStack{TechStackStandard, TechStackAdvanced, TechStackCuttingEdge}
}

// ClientTypes returns the client categories in display order.
func ClientTypes() []ClientType {
	return []ClientType{
		ClientPersonal,
		ClientStartup,
		ClientSmallBusiness,
		ClientMediumBusiness,
		ClientEnterprise,
		ClientCharity,
		ClientNonProfit,
	}
}

// AllFeatures returns every feature in display order.
func AllFeatures() []Feature {
	return []Feature{FeatureCMS, FeatureAuth, FeaturePayment, FeatureAPI, FeatureRealtime, FeatureAnalytics}
}

// InputError reports a malformed calculator input field.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// ValidateInputs checks inputs against the closed option sets. Calculate
// does not call it; the form layer is expected to.
func ValidateInputs(in CalculatorInputs) error {
	if !slices.Contains(ProjectTypes(), in.ProjectType) {
		return &InputError{Field: "projectType", Reason: fmt.Sprintf("must be one of %v", ProjectTypes())}
	}
	if !slices.Contains(Complexities(), in.Complexity) {
		return &InputError{Field: "complexity", Reason: fmt.Sprintf("must be one of %v", Complexities())}
	}
	if in.NumPages < 0 {
		return &InputError{Field: "numPages", Reason: "must be greater than or equal to 0"}
	}
	if in.NumPages > MaxPages {
		return &InputError{Field: "numPages", Reason: fmt.Sprintf("must be at most %d", MaxPages)}
	}
	if !slices.Contains(TimelineUrgencies(), in.TimelineUrgency) {
		return &InputError{Field: "timelineUrgency", Reason: fmt.Sprintf("must be one of %v", TimelineUrgencies())}
	}
	if !slices.Contains(TechStacks(), in.TechStackComplexity) {
		return &InputError{Field: "techStackComplexity", Reason: fmt.Sprintf("must be one of %v", TechStacks())}
	}
	if !slices.Contains(ClientTypes(), in.ClientType) {
		return &InputError{Field: "clientType", Reason: fmt.Sprintf("must be one of %v", ClientTypes())}
	}
	return nil
}
