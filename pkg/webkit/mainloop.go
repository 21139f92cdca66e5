//go:build !webkit_cgo

package webkit

var quitCh = make(chan struct{})

// RunMainLoop blocks until QuitMainLoop is called. Non-CGO builds have no
// GTK loop to pump, so this is a plain wait.
func RunMainLoop() {
	<-quitCh
}

// QuitMainLoop unblocks RunMainLoop.
func QuitMainLoop() {
	select {
	case <-quitCh:
	default:
		close(quitCh)
	}
}

// IdleAdd schedules fn on the UI loop. Without a GTK loop it runs inline.
func IdleAdd(fn func()) {
	fn()
}
