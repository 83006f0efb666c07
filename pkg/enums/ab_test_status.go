package enums

import "fmt"

// ABTestStatus tracks the lifecycle of a profile A/B test.
type ABTestStatus string

const (
	ABTestStatusDraft     ABTestStatus = "draft"
	ABTestStatusRunning   ABTestStatus = "running"
	ABTestStatusPaused    ABTestStatus = "paused"
	ABTestStatusCompleted ABTestStatus = "completed"
)

var validABTestStatuses = []ABTestStatus{
	ABTestStatusDraft,
	ABTestStatusRunning,
	ABTestStatusPaused,
	ABTestStatusCompleted,
}

// IsValid reports whether the value is known.
func (s ABTestStatus) IsValid() bool {
	for _, candidate := range validABTestStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether the lifecycle allows moving to next.
func (s ABTestStatus) CanTransitionTo(next ABTestStatus) bool {
	switch s {
	case ABTestStatusDraft:
		return next == ABTestStatusRunning
	case ABTestStatusRunning:
		return next == ABTestStatusPaused || next == ABTestStatusCompleted
	case ABTestStatusPaused:
		return next == ABTestStatusRunning || next == ABTestStatusCompleted
	default:
		return false
	}
}

// ParseABTestStatus converts raw input into an ABTestStatus.
func ParseABTestStatus(value string) (ABTestStatus, error) {
	for _, candidate := range validABTestStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid ab test status %q", value)
}
