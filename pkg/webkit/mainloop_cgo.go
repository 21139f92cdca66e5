//go:build webkit_cgo

package webkit

import (
	"sync"

	"github.com/diamondburned/gotk4/pkg/glib/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"
)

var (
	initOnce sync.Once
	mainLoop *glib.MainLoop
)

// InitMainThread initializes GTK. Must run before any window is created;
// idempotent.
func InitMainThread() {
	initOnce.Do(func() {
		gtk.Init()
		mainLoop = glib.NewMainLoop(nil, false)
	})
}

// RunMainLoop pumps the GLib main loop until QuitMainLoop.
func RunMainLoop() {
	InitMainThread()
	mainLoop.Run()
}

// QuitMainLoop stops the main loop.
func QuitMainLoop() {
	if mainLoop != nil {
		mainLoop.Quit()
	}
}

// IdleAdd schedules fn on the GLib main loop.
func IdleAdd(fn func()) {
	glib.IdleAdd(func() bool {
		fn()
		return false
	})
}
