//go:build !webkit_cgo

package webkit

// ListDisplays enumerates attached displays. Non-CGO builds report a single
// synthetic display so display resolution still has something to fall back
// to.
func ListDisplays() []Display {
	return []Display{
		{ID: 0, Bounds: Rect{X: 0, Y: 0, Width: 1920, Height: 1080}, Primary: true},
	}
}
