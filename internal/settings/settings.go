// Package settings persists the per-user application settings record.
package settings

// Position is a window position in physical pixels.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Size is a window size in physical pixels.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// OverlaySettings configures the caption overlay window.
type OverlaySettings struct {
	Enabled         bool     `json:"enabled"`
	Position        Position `json:"position"`
	Size            Size     `json:"size"`
	PositionPreset  string   `json:"positionPreset"` // semantic anchor: "top", "bottom", "custom"
	Opacity         float64  `json:"opacity"`        // [0,1]
	ClickThrough    bool     `json:"clickThrough"`
	AlwaysOnTop     bool     `json:"alwaysOnTop"`
	DisplayMode     string   `json:"displayMode"` // "lastOnly" or "scrolling"
	BackgroundColor string   `json:"backgroundColor"`
}

// FontSettings configures caption text rendering.
type FontSettings struct {
	Family     string  `json:"family"`
	Size       int     `json:"size"`
	Weight     int     `json:"weight"`
	Color      string  `json:"color"`
	Align      string  `json:"align"`
	LineHeight float64 `json:"lineHeight"`
}

// ConnectionSettings configures the caption source connection used by the
// UI layer. The shell only persists it.
type ConnectionSettings struct {
	YjsServerURL string `json:"yjsServerUrl"`
	AutoConnect  bool   `json:"autoConnect"`
}

// AppSettings is the root persisted settings record.
type AppSettings struct {
	Overlay         OverlaySettings    `json:"overlay"`
	Font            FontSettings       `json:"font"`
	Connection      ConnectionSettings `json:"connection"`
	LastSessionCode *string            `json:"lastSessionCode"`
	Theme           string             `json:"theme"` // "system", "light", "dark"
}

// Default returns the full default settings record.
func Default() AppSettings {
	return AppSettings{
		Overlay: OverlaySettings{
			Enabled:         false,
			Position:        Position{X: 500, Y: 600},
			Size:            Size{Width: 600, Height: 160},
			PositionPreset:  "bottom",
			Opacity:         0.95,
			ClickThrough:    false,
			AlwaysOnTop:     true,
			DisplayMode:     "lastOnly",
			BackgroundColor: "#000000",
		},
		Font: FontSettings{
			Family:     "Inter, system-ui, sans-serif",
			Size:       32,
			Weight:     500,
			Color:      "#ffffff",
			Align:      "justify",
			LineHeight: 1.3,
		},
		Connection: ConnectionSettings{
			YjsServerURL: "wss://tekstiks.ee/kk",
			AutoConnect:  true,
		},
		LastSessionCode: nil,
		Theme:           "system",
	}
}

// Clone returns a deep copy of the record. All fields are value types except
// the optional session code.
func (s AppSettings) Clone() AppSettings {
	out := s
	if s.LastSessionCode != nil {
		code := *s.LastSessionCode
		out.LastSessionCode = &code
	}
	return out
}
