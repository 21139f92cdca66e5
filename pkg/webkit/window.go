//go:build !webkit_cgo

package webkit

import (
	"sync"
	"sync/atomic"
)

var windowIDCounter uint64

// Window represents a top-level window hosting a WebView. In non-CGO builds
// it is a logical no-op backend that tracks the state it was asked to apply;
// event emission is driven by tests or not at all.
type Window struct {
	id     uint64
	config *Config

	mu         sync.Mutex
	destroyed  bool
	url        string
	title      string
	bounds     Rect
	fullscreen bool
	maximized  bool

	injected []string

	onLoadFinished func()
	onURIChanged   func(string)
	onTitleChanged func(string)
	onClose        func()
	onKeyPress     func(key string) bool
}

// NewWindow constructs a Window and announces it on the creation stream.
func NewWindow(cfg *Config) (*Window, error) {
	if cfg == nil {
		cfg = GetDefaultConfig()
	}
	w := &Window{
		id:     atomic.AddUint64(&windowIDCounter, 1),
		config: cfg,
	}
	publishWindowCreated(w)
	return w, nil
}

// ID returns the process-unique window identifier.
func (w *Window) ID() uint64 { return w.id }

// LoadURL starts loading the given URL.
func (w *Window) LoadURL(url string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.destroyed {
		return ErrWindowDestroyed
	}
	if url == "" {
		return ErrInvalidURL
	}
	w.url = url
	return nil
}

// CurrentURL returns the last loaded or navigated-to URL.
func (w *Window) CurrentURL() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.url
}

// Title returns the current page title.
func (w *Window) Title() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.title
}

// SetBounds moves and resizes the window.
func (w *Window) SetBounds(r Rect) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.destroyed {
		return ErrWindowDestroyed
	}
	w.bounds = r
	return nil
}

// Fullscreen makes the window fullscreen on its current display.
func (w *Window) Fullscreen() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.destroyed {
		return ErrWindowDestroyed
	}
	w.fullscreen = true
	return nil
}

// Maximize maximizes the window on its current display.
func (w *Window) Maximize() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.destroyed {
		return ErrWindowDestroyed
	}
	w.maximized = true
	return nil
}

// Close destroys the window. Closing an already-destroyed window is a no-op.
func (w *Window) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.destroyed = true
	return nil
}

// IsDestroyed reports whether the native window is gone.
func (w *Window) IsDestroyed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.destroyed
}

// InjectScript evaluates JavaScript in the page context, fire-and-forget.
func (w *Window) InjectScript(js string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.destroyed {
		return ErrWindowDestroyed
	}
	// Stored for tests; no engine in this build.
	w.injected = append(w.injected, js)
	return nil
}

// OnLoadFinished registers the load-completion handler.
func (w *Window) OnLoadFinished(fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onLoadFinished = fn
}

// OnURIChanged registers the navigation handler.
func (w *Window) OnURIChanged(fn func(uri string)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onURIChanged = fn
}

// OnTitleChanged registers the title handler.
func (w *Window) OnTitleChanged(fn func(title string)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onTitleChanged = fn
}

// OnClose registers the handler invoked when the window is closed from
// outside (user hotkey, window manager).
func (w *Window) OnClose(fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onClose = fn
}

// OnKeyPress registers a key handler. Returning true consumes the event and
// suppresses the page's default handling.
func (w *Window) OnKeyPress(fn func(key string) bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onKeyPress = fn
}

// ClearHandlers removes every registered event handler. Called before
// programmatic teardown so close events do not re-enter session logic.
func (w *Window) ClearHandlers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onLoadFinished = nil
	w.onURIChanged = nil
	w.onTitleChanged = nil
	w.onClose = nil
	w.onKeyPress = nil
}
