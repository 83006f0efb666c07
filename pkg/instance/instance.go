package instance

import "os"

// GetID returns the process instance identifier used in log fields. Heroku
// style dynos expose DYNO; container platforms expose HOSTNAME.
func GetID() string {
	if id := os.Getenv("DYNO"); id != "" {
		return id
	}
	if id := os.Getenv("HOSTNAME"); id != "" {
		return id
	}
	return "local"
}
