package window

import "testing"

func TestOverlayTraitsWindowsIsOpaque(t *testing.T) {
	traits := OverlayTraits("windows")

	if traits.Transparent {
		t.Error("Windows overlay must not use native transparency")
	}
}

func TestOverlayTraitsTransparentPlatforms(t *testing.T) {
	for _, goos := range []string{"darwin", "linux"} {
		traits := OverlayTraits(goos)
		if !traits.Transparent {
			t.Errorf("%s overlay should use native transparency", goos)
		}
	}
}

func TestOverlayTraitsCommonFlags(t *testing.T) {
	for _, goos := range []string{"darwin", "windows", "linux"} {
		traits := OverlayTraits(goos)

		if traits.Decorated {
			t.Errorf("%s overlay must be undecorated", goos)
		}
		if !traits.SkipTaskbar {
			t.Errorf("%s overlay must skip the taskbar", goos)
		}
	}
}

func TestOverlayTraitsUnknownOSFallsBack(t *testing.T) {
	got := OverlayTraits("plan9")
	want := OverlayTraits("linux")

	if got != want {
		t.Errorf("unknown OS should fall back to the linux row: got %+v, want %+v", got, want)
	}
}
