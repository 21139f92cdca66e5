//go:build webkit_cgo

package webkit

import (
	"github.com/diamondburned/gotk4/pkg/gdk/v4"
)

// ListDisplays enumerates attached monitors via GDK.
func ListDisplays() []Display {
	InitMainThread()

	disp := gdk.DisplayGetDefault()
	if disp == nil {
		return nil
	}

	monitors := disp.Monitors()
	n := int(monitors.NItems())
	out := make([]Display, 0, n)
	for i := 0; i < n; i++ {
		mon, ok := monitors.Item(uint(i)).Cast().(*gdk.Monitor)
		if !ok {
			continue
		}
		geo := mon.Geometry()
		out = append(out, Display{
			ID: i,
			Bounds: Rect{
				X:      geo.X(),
				Y:      geo.Y(),
				Width:  geo.Width(),
				Height: geo.Height(),
			},
			Primary: i == 0,
		})
	}
	return out
}
