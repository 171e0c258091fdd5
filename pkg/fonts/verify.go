package fonts

import (
	"context"
	"os/exec"
	"strings"
)

// Report describes the outcome of a font availability check.
type Report struct {
	Platform  Platform `json:"platform"`
	Family    string   `json:"family"`
	Checked   bool     `json:"checked"`   // whether an installation check ran
	Installed bool     `json:"installed"` // meaningful only when Checked
}

// Verify reports whether the family resolved for the current platform
// appears to be installed. On macOS and Windows the family ships with the
// OS, so the check is skipped and Installed is assumed true. On other
// platforms the fontconfig database is consulted via fc-list; when fc-list
// is unavailable the report carries Checked=false and callers should treat
// availability as unknown.
//
// This is diagnostics only. Rendering never consults Verify - a missing
// font degrades silently to substituted glyphs, which is exactly why the
// result is worth surfacing to operators.
func Verify(ctx context.Context) Report {
	p := Detect()
	return verify(ctx, p, Resolve(p))
}

// VerifyFamily checks an explicit family name, used when the operator
// overrides the resolved font in configuration.
func VerifyFamily(ctx context.Context, family string) Report {
	return verify(ctx, Detect(), family)
}

func verify(ctx context.Context, p Platform, family string) Report {
	r := Report{Platform: p, Family: family}
	if p == PlatformDarwin || p == PlatformWindows {
		r.Checked = true
		r.Installed = true
		return r
	}

	if _, err := exec.LookPath("fc-list"); err != nil {
		return r
	}

	out, err := exec.CommandContext(ctx, "fc-list", ":", "family").Output()
	if err != nil {
		return r
	}
	r.Checked = true
	r.Installed = listsFamily(string(out), family)
	return r
}

// listsFamily scans fc-list output for the family name. fc-list prints
// comma-separated aliases per line, so match per entry, not per substring.
func listsFamily(out, family string) bool {
	for _, line := range strings.Split(out, "\n") {
		for _, name := range strings.Split(line, ",") {
			if strings.EqualFold(strings.TrimSpace(name), family) {
				return true
			}
		}
	}
	return false
}
