package window

// Traits are the per-OS native construction flags for the overlay window.
// This is a behavioral contract, not a mechanical detail: on Windows the
// embedded browser control renders transparent undecorated windows
// unreliably, so the native layer stays opaque there and visual transparency
// is produced by the rendered content instead.
type Traits struct {
	// Transparent enables native window transparency.
	Transparent bool

	// Decorated keeps the title bar and borders. The overlay is always
	// undecorated.
	Decorated bool

	// SkipTaskbar hides the window from the taskbar or dock.
	SkipTaskbar bool

	// AllWorkspaces keeps the window visible on every workspace.
	AllWorkspaces bool
}

var overlayTraitsByOS = map[string]Traits{
	"darwin": {
		Transparent:   true,
		Decorated:     false,
		SkipTaskbar:   true,
		AllWorkspaces: true,
	},
	"windows": {
		// WebView2 composition bug: no native transparency here.
		Transparent: false,
		Decorated:   false,
		SkipTaskbar: true,
	},
	"linux": {
		Transparent: true,
		Decorated:   false,
		SkipTaskbar: true,
	},
}

// OverlayTraits returns the construction flags for the given GOOS. Unknown
// platforms get the Linux row.
func OverlayTraits(goos string) Traits {
	if traits, ok := overlayTraitsByOS[goos]; ok {
		return traits
	}
	return overlayTraitsByOS["linux"]
}
