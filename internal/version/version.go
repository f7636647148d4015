package version

import "fmt"

// Values are injected at build time using -ldflags.
var (
	Version   = "1.0.0"
	Built     = ""
	GitCommit = ""
)

// String renders the one-line version banner printed for -v.
func String(program string) string {
	banner := fmt.Sprintf("%s v.%s", program, Version)
	if GitCommit != "" {
		banner += fmt.Sprintf(" (%s)", GitCommit)
	}
	return banner
}
