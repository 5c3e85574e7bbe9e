package pricing

// ProjectType identifies the kind of project being estimated.
type ProjectType string

const (
	ProjectWebsite   ProjectType = "website"
	ProjectApp       ProjectType = "app"
	ProjectEcommerce ProjectType = "ecommerce"
	ProjectSaaS      ProjectType = "saas"
	ProjectOther     ProjectType = "other"
)

// Complexity describes the size of the job itself.
type Complexity string

const (
	ComplexitySimple   Complexity = "simple"
	ComplexityModerate Complexity = "moderate"
	ComplexityComplex  Complexity = "complex"
)

// TimelineUrgency describes how quickly the client needs delivery.
type TimelineUrgency string

const (
	TimelineNormal TimelineUrgency = "normal"
	TimelineFast   TimelineUrgency = "fast"
	TimelineUrgent TimelineUrgency = "urgent"
)

// TechStack describes how sophisticated the requested technology is.
type TechStack string

const (
	TechStackStandard    TechStack = "standard"
	TechStackAdvanced    TechStack = "advanced"
	TechStackCuttingEdge TechStack = "cutting-edge"
)

// ClientType is the pricing category of the client.
type ClientType string

const (
	ClientPersonal       ClientType = "personal"
	ClientStartup        ClientType = "startup"
	ClientSmallBusiness  ClientType = "small-business"
	ClientMediumBusiness ClientType = "medium-business"
	ClientEnterprise     ClientType = "enterprise"
	ClientCharity        ClientType = "charity"
	ClientNonProfit      ClientType = "non-profit"
)

// Feature is an optional capability priced as an additive increment.
type Feature string

const (
	FeatureCMS       Feature = "cms"
	FeatureAuth      Feature = "auth"
	FeaturePayment   Feature = "payment"
	FeatureAPI       Feature = "api"
	FeatureRealtime  Feature = "realtime"
	FeatureAnalytics Feature = "analytics"
)

// Features holds one flag per optional capability.
type Features struct {
	CMS       bool `json:"cms" yaml:"cms"`
	Auth      bool `json:"auth" yaml:"auth"`
	Payment   bool `json:"payment" yaml:"payment"`
	API       bool `json:"api" yaml:"api"`
	Realtime  bool `json:"realtime" yaml:"realtime"`
	Analytics bool `json:"analytics" yaml:"analytics"`
}

// Enabled reports whether the flag for feature is set.
func (f Features) Enabled(feature Feature) bool {
	switch feature {
	case FeatureCMS:
		return f.CMS
	case FeatureAuth:
		return f.Auth
	case FeaturePayment:
		return f.Payment
	case FeatureAPI:
		return f.API
	case FeatureRealtime:
		return f.Realtime
	case FeatureAnalytics:
		return f.Analytics
	default:
		return false
	}
}

// Set turns the flag for feature on or off. Unknown features are ignored.
func (f *Features) Set(feature Feature, on bool) {
	switch feature {
	case FeatureCMS:
		f.CMS = on
	case FeatureAuth:
		f.Auth = on
	case FeaturePayment:
		f.Payment = on
	case FeatureAPI:
		f.API = on
	case FeatureRealtime:
		f.Realtime = on
	case FeatureAnalytics:
		f.Analytics = on
	}
}

// CalculatorInputs are the project parameters selected by the user.
type CalculatorInputs struct {
	ProjectType         ProjectType     `json:"projectType"`
	Complexity          Complexity      `json:"complexity"`
	NumPages            int             `json:"numPages"`
	Features            Features        `json:"features"`
	TimelineUrgency     TimelineUrgency `json:"timelineUrgency"`
	TechStackComplexity TechStack       `json:"techStackComplexity"`
	ClientType          ClientType      `json:"clientType"`

	// Currency is display-only and never used in the computation.
	Currency string `json:"currency"`
}

// RateConfiguration holds every rate the engine needs. It is loaded fresh
// for each calculation and must be fully populated.
type RateConfiguration struct {
	BaseRates             map[ProjectType]float64     `json:"baseRates" yaml:"base_rates"`
	FeatureCosts          map[Feature]float64         `json:"featureCosts" yaml:"feature_costs"`
	ComplexityMultipliers map[Complexity]float64      `json:"complexityMultipliers" yaml:"complexity_multipliers"`
	TimelineMultipliers   map[TimelineUrgency]float64 `json:"timelineMultipliers" yaml:"timeline_multipliers"`
	TechStackMultipliers  map[TechStack]float64       `json:"techStackMultipliers" yaml:"tech_stack_multipliers"`
	ClientTypeMultipliers map[ClientType]float64      `json:"clientTypeMultipliers" yaml:"client_type_multipliers"`
	PageCostPerPage       float64                     `json:"pageCostPerPage" yaml:"page_cost_per_page"`
}

// NewRateConfiguration returns a configuration with every map allocated.
func NewRateConfiguration() RateConfiguration {
	return RateConfiguration{
		BaseRates:             make(map[ProjectType]float64),
		FeatureCosts:          make(map[Feature]float64),
		ComplexityMultipliers: make(map[Complexity]float64),
		TimelineMultipliers:   make(map[TimelineUrgency]float64),
		TechStackMultipliers:  make(map[TechStack]float64),
		ClientTypeMultipliers: make(map[ClientType]float64),
	}
}

// Range is the rounded uncertainty band around the point estimate.
type Range struct {
	Min int64 `json:"min"`
	Max int64 `json:"max"`
}

// CostBreakdown contains every intermediate value of a calculation.
type CostBreakdown struct {
	BaseCost             float64             `json:"baseCost"`
	PageCost             float64             `json:"pageCost"`
	FeatureCosts         map[Feature]float64 `json:"featureCosts"`
	TotalFeatureCost     float64             `json:"totalFeatureCost"`
	ComplexityMultiplier float64             `json:"complexityMultiplier"`
	TimelineMultiplier   float64             `json:"timelineMultiplier"`
	TechStackMultiplier  float64             `json:"techStackMultiplier"`
	ClientTypeMultiplier float64             `json:"clientTypeMultiplier"`
	Subtotal             float64             `json:"subtotal"`
	Total                float64             `json:"total"`
	Range                Range               `json:"range"`

	// Fallbacks lists the "<category>.<key>" lookups that were absent and
	// resolved to a default value.
	Fallbacks []string `json:"fallbacks,omitempty"`
}
