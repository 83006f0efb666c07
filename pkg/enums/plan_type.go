package enums

import "fmt"

// PlanType is the subscription tier that gates product features.
type PlanType string

const (
	PlanTypeFree     PlanType = "free"
	PlanTypePro      PlanType = "pro"
	PlanTypeBusiness PlanType = "business"
)

var validPlanTypes = []PlanType{
	PlanTypeFree,
	PlanTypePro,
	PlanTypeBusiness,
}

// String implements fmt.Stringer.
func (p PlanType) String() string {
	return string(p)
}

// IsValid reports whether the value is known.
func (p PlanType) IsValid() bool {
	for _, candidate := range validPlanTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// IsPaid reports whether the tier unlocks pro features.
func (p PlanType) IsPaid() bool {
	return p == PlanTypePro || p == PlanTypeBusiness
}

// ParsePlanType converts raw input into a PlanType.
func ParsePlanType(value string) (PlanType, error) {
	for _, candidate := range validPlanTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid plan type %q", value)
}
