package version

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var raw string

// Version is the release version from the VERSION file.
var Version = strings.TrimSpace(raw)
