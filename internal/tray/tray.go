// Package tray sets up the system tray entry.
package tray

import (
	"github.com/wailsapp/wails/v3/pkg/application"
)

// Options configures the tray entry.
type Options struct {
	// Icon is the tray icon content in PNG bytes.
	Icon []byte

	// Tooltip is the hover text for the tray icon.
	Tooltip string

	// OnShowMain fires when the user asks for the main window, either via
	// the menu entry or by clicking the icon.
	OnShowMain func()

	// OnShowOverlay fires when the user switches to overlay-only mode.
	OnShowOverlay func()

	// OnQuit fires when the user picks quit from the menu.
	OnQuit func()
}

// Setup creates the tray icon and menu on the application. The tray lives for
// the lifetime of the application; Wails removes it on quit.
func Setup(app *application.App, opts Options) *application.SystemTray {
	tray := app.SystemTray.New()

	if len(opts.Icon) > 0 {
		tray.SetIcon(opts.Icon)
	}
	if opts.Tooltip != "" {
		tray.SetTooltip(opts.Tooltip)
	}

	menu := application.NewMenu()
	menu.Add("Näita peaaken").OnClick(func(_ *application.Context) {
		if opts.OnShowMain != nil {
			opts.OnShowMain()
		}
	})
	menu.Add("Näita ülekatet").OnClick(func(_ *application.Context) {
		if opts.OnShowOverlay != nil {
			opts.OnShowOverlay()
		}
	})
	menu.AddSeparator()
	menu.Add("Välju").OnClick(func(_ *application.Context) {
		if opts.OnQuit != nil {
			opts.OnQuit()
		}
	})
	tray.SetMenu(menu)

	// Clicking the icon matches the first menu entry.
	tray.OnClick(func() {
		if opts.OnShowMain != nil {
			opts.OnShowMain()
		}
	})

	return tray
}
