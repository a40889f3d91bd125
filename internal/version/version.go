// Package version holds the engine version and the build metadata shown by the CLI.
package version

import (
	"strings"

	"github.com/fatih/color"
)

// Engine is the engine version reported by initialize and get-version.
// It identifies the detection contract and never changes at runtime.
const Engine = "1.0.0"

// Build metadata, overridable via -ldflags "-X langid/internal/version.GitCommit=...".
var (
	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// GitMessage is an optional git commit message.
	GitMessage = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

var (
	majorColor = color.New(color.FgYellow, color.Bold)
	minorColor = color.New(color.FgGreen, color.Bold)
	patchColor = color.New(color.FgBlue, color.Bold)
)

// Colored renders Engine with one color per component. fatih/color drops the
// escapes when stdout is not a terminal or NO_COLOR is set.
func Colored() string {
	parts := strings.SplitN(Engine, ".", 3)
	if len(parts) != 3 {
		return Engine
	}
	return majorColor.Sprint(parts[0]) + "." + minorColor.Sprint(parts[1]) + "." + patchColor.Sprint(parts[2])
}
