// Package version exposes the release version embedded at build time.
package version

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var versionContent string

// Get returns the voyagent release version, whitespace trimmed.
func Get() string {
	return strings.TrimSpace(versionContent)
}
