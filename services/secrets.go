// services/secrets.go
package services

import (
	"os"
)

// Secrets the pipeline cannot run without: the store connection (credential
// embedded in the DSN) and the email transport credential/sender.
var requiredSecrets = []string{
	"DATABASE_URL",
	"EMAIL_API_KEY",
	"EMAIL_FROM",
}

// MissingSecrets returns the names of required secrets that are not set.
// The trigger surface turns a non-empty list into a 500 so operators see
// exactly what is misconfigured.
func MissingSecrets() []string {
	var missing []string
	for _, name := range requiredSecrets {
		if os.Getenv(name) == "" {
			missing = append(missing, name)
		}
	}
	return missing
}
