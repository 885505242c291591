package featureflags

import (
	"os"
	"strings"
)

// DashboardCache gates the in-memory dashboard aggregation cache so
// operators can force every dashboard request to hit the store.
const DashboardCache = "dashboard_cache"

// Enabled returns true if a flag is enabled via environment variable.
// Flags are read from env as FLAG_<NAME>=true/1/yes (case-insensitive)
func Enabled(name string) bool {
	v := os.Getenv("FLAG_" + strings.ToUpper(name))
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
