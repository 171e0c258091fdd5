// Package fonts resolves a CJK-capable font family for diagram rendering.
//
// Graphviz selects glyphs by font family name at render time. On macOS and
// Windows a suitable Japanese font ships with the OS; on Linux and other
// hosts one has to be installed separately (fonts-noto-cjk or equivalent).
// The resolver maps the host platform to the family name that should be
// passed to the graph, node, and edge font attributes.
//
// Resolution is a pure mapping - it never touches the filesystem and never
// fails. If the resolved family is missing on the host, Graphviz silently
// substitutes its own default and Japanese text renders as boxes. Use
// [Verify] to surface that condition to operators.
package fonts

import "runtime"

// Platform is the host category used for font selection.
// The zero value behaves like PlatformOther.
type Platform int

const (
	// PlatformOther covers Linux, BSDs, and any unrecognized host.
	// CJK coverage depends on a system font package being installed.
	PlatformOther Platform = iota
	// PlatformDarwin covers macOS hosts.
	PlatformDarwin
	// PlatformWindows covers Windows hosts.
	PlatformWindows
)

// Font family names per platform. The Darwin and Windows families ship with
// the OS; NotoCJK must be provided by the fonts-noto-cjk system package.
const (
	HiraginoSans = "Hiragino Sans"
	MSGothic     = "MS Gothic"
	NotoCJK      = "Noto Sans CJK JP"
)

// String returns the platform name for logs and diagnostics.
func (p Platform) String() string {
	switch p {
	case PlatformDarwin:
		return "darwin"
	case PlatformWindows:
		return "windows"
	default:
		return "other"
	}
}

// Classify maps a GOOS-style identifier to a platform category.
// Every input maps to exactly one category; unrecognized identifiers
// (including the empty string) fall into PlatformOther.
func Classify(goos string) Platform {
	switch goos {
	case "darwin":
		return PlatformDarwin
	case "windows":
		return PlatformWindows
	default:
		return PlatformOther
	}
}

// Detect classifies the platform the process is running on.
func Detect() Platform {
	return Classify(runtime.GOOS)
}

// Resolve returns the font family to request for the given platform.
// The result is always non-empty; unknown platform values resolve the
// same as PlatformOther.
//
// Resolve does not check that the family exists on the host. On
// PlatformOther the returned name is only correct when the documented
// system font package is installed - when it is not, the rendering
// backend falls back silently and the failure shows up as missing
// glyphs in the output, not as an error.
func Resolve(p Platform) string {
	switch p {
	case PlatformDarwin:
		return HiraginoSans
	case PlatformWindows:
		return MSGothic
	default:
		return NotoCJK
	}
}

// Default resolves the font for the current process. Call once at startup
// and pass the result down explicitly rather than re-detecting per render.
func Default() string {
	return Resolve(Detect())
}

// Candidates returns the documented fallback chain for a platform, starting
// with the family Resolve returns. Only the first entry is ever requested;
// the rest are recorded for operators choosing a manual override.
func Candidates(p Platform) []string {
	switch p {
	case PlatformDarwin:
		return []string{HiraginoSans, "Hiragino Kaku Gothic ProN", "Osaka"}
	case PlatformWindows:
		return []string{MSGothic, "Yu Gothic", "Meiryo"}
	default:
		return []string{NotoCJK, "Noto Sans CJK", "IPAGothic", "TakaoGothic"}
	}
}
