package enums

import "fmt"

// IntegrationService identifies a supported third-party integration.
type IntegrationService string

const (
	IntegrationServiceGoogleAnalytics IntegrationService = "google_analytics"
	IntegrationServiceFacebookPixel   IntegrationService = "facebook_pixel"
	IntegrationServiceMailchimp       IntegrationService = "mailchimp"
)

var validIntegrationServices = []IntegrationService{
	IntegrationServiceGoogleAnalytics,
	IntegrationServiceFacebookPixel,
	IntegrationServiceMailchimp,
}

// IsValid reports whether the value is known.
func (i IntegrationService) IsValid() bool {
	for _, candidate := range validIntegrationServices {
		if candidate == i {
			return true
		}
	}
	return false
}

// ParseIntegrationService converts raw input into an IntegrationService.
func ParseIntegrationService(value string) (IntegrationService, error) {
	for _, candidate := range validIntegrationServices {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid integration service %q", value)
}
