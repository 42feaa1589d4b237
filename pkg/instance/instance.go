package instance

import (
	"os"

	"github.com/Mahbub-Sajon/srs-publications-server/pkg/env"
)

// GetID names the running process in logs. SRS_INSTANCE_ID wins over the
// platform's DYNO, then the hostname.
func GetID() string {
	if id := env.Get("SRS_INSTANCE_ID", env.Get("DYNO", "")); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "local"
}
