//go:build webkit_cgo

package webkit

// IsNativeAvailable reports whether the native WebKitGTK backend is compiled in.
func IsNativeAvailable() bool { return true }
