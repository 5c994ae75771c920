// Package fingerprinting describes the environment a client runs in, for
// the driver headers sent with every query.
package fingerprinting

import (
	"fmt"
	"os"
	"runtime"
	"strings"
)

const product = "fauna-decode"

// hostMarkers maps an environment variable to the platform that sets it.
var hostMarkers = []struct {
	env      string
	platform string
}{
	{"NETLIFY_IMAGES_CDN_DOMAIN", "Netlify"},
	{"VERCEL", "Vercel"},
	{"AWS_LAMBDA_FUNCTION_VERSION", "AWS Lambda"},
	{"GOOGLE_CLOUD_PROJECT", "GCP Compute Instances"},
	{"WEBSITE_FUNCTIONS_AZUREMONITOR_CATEGORIES", "Azure Cloud Functions"},
}

// EnvironmentOS return the OS name of the current environment
func EnvironmentOS() string {
	switch envOS := runtime.GOOS; envOS {
	case "windows", "darwin", "linux":
		return envOS
	default:
		return "unknown"
	}
}

// Environment return the name of the hosting platform, "Unknown" when none
// is recognized.
func Environment() string {
	for _, marker := range hostMarkers {
		if _, ok := os.LookupEnv(marker.env); ok {
			return marker.platform
		}
	}

	if strings.Contains(os.Getenv("PATH"), ".heroku") {
		return "Heroku"
	}

	if strings.Contains(os.Getenv("_"), "google") {
		return "GCP Cloud Functions"
	}

	if _, ok := os.LookupEnv("WEBSITE_INSTANCE_ID"); ok &&
		strings.Contains(os.Getenv("ORYX_ENV_TYPE"), "AppService") {
		return "Azure Compute"
	}

	return "Unknown"
}

// Runtime returns the value of the runtime header.
func Runtime() string {
	return fmt.Sprintf("env=%s; os=%s; go=%s", Environment(), EnvironmentOS(), runtime.Version())
}

// UserAgent returns the user agent for the given driver version.
func UserAgent(version string) string {
	return product + "/" + version
}
