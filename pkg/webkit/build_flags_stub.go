//go:build !webkit_cgo

package webkit

// IsNativeAvailable reports whether the native WebKitGTK backend is compiled in.
// In non-CGO builds, this returns false and window methods are logical no-ops.
func IsNativeAvailable() bool { return false }
