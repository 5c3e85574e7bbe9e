package pricing

import "errors"

// Rate categories named by configuration errors.
const (
	CategoryBaseRates             = "baseRates"
	CategoryFeatureCosts          = "featureCosts"
	CategoryComplexityMultipliers = "complexityMultipliers"
	CategoryTimelineMultipliers   = "timelineMultipliers"
	CategoryTechStackMultipliers  = "techStackMultipliers"
	CategoryClientTypeMultipliers = "clientTypeMultipliers"
	CategoryPageCostPerPage       = "pageCostPerPage"
	CategoryTotal                 = "total"
)

// ConfigError reports a missing or invalid rate category. It must be fixed
// by an administrator; it is never retried or defaulted.
type ConfigError struct {
	Category string
	Message  string
}

func (e *ConfigError) Error() string {
	return e.Message
}

var (
	ErrBaseRatesRequired = &ConfigError{
		Category: CategoryBaseRates,
		Message:  "Base rates are required from database",
	}
	ErrFeatureCostsRequired = &ConfigError{
		Category: CategoryFeatureCosts,
		Message:  "Feature costs are required from database",
	}
	ErrComplexityMultipliersRequired = &ConfigError{
		Category: CategoryComplexityMultipliers,
		Message:  "Complexity multipliers are required from database",
	}
	ErrTimelineMultipliersRequired = &ConfigError{
		Category: CategoryTimelineMultipliers,
		Message:  "Timeline multipliers are required from database",
	}
	ErrTechStackMultipliersRequired = &ConfigError{
		Category: CategoryTechStackMultipliers,
		Message:  "Tech stack multipliers are required from database",
	}
	ErrClientTypeMultipliersRequired = &ConfigError{
		Category: CategoryClientTypeMultipliers,
		Message:  "Client type multipliers are required from database",
	}
	ErrPageCostRequired = &ConfigError{
		Category: CategoryPageCostPerPage,
		Message:  "Page cost per page is required from database and must be greater than 0",
	}
	// ErrTotalOutOfRange is returned when rates that pass Validate still
	// produce a total that is not finite or a range that does not fit int64.
	ErrTotalOutOfRange = &ConfigError{
		Category: CategoryTotal,
		Message:  "Estimate total is out of range; rate values are too large",
	}
)

// IsConfigError reports whether err is, or wraps, a rate configuration error.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
