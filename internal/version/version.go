// Package version holds build-time identity for --version. A one-line
// banner is all a headless proxy process needs.
package version

import (
	"log"
)

var (
	Name    = "pacproxy"
	Version = "v0.0.1"
	Commit  = "none"
	Date    = "nowish"
)

// PrintVersionInfo writes a short identity banner to vlog. extendedInfo
// additionally includes the commit and build date.
func PrintVersionInfo(extendedInfo bool, vlog *log.Logger) {
	vlog.Printf("%s %s\n", Name, Version)
	if extendedInfo {
		vlog.Printf("  commit: %s\n", Commit)
		vlog.Printf("   built: %s\n", Date)
	}
}
