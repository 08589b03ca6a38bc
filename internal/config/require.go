package config

import "log"

// MustNonEmpty aborts startup when a required setting is missing. Running
// without a signing key would mean running in an insecure mode, so we refuse
// to start instead.
func MustNonEmpty(value, envName string) {
	if value == "" {
		log.Fatalf("missing required env %s", envName)
	}
}
