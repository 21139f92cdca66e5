//go:build webkit_cgo

package webkit

import (
	"sync"
	"sync/atomic"

	webkit "github.com/diamondburned/gotk4-webkitgtk/pkg/webkit/v6"
	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"
)

var windowIDCounter uint64

// Window wraps a GTK window hosting a single WebKitGTK WebView.
type Window struct {
	id   uint64
	win  *gtk.Window
	view *webkit.WebView

	config *Config

	mu        sync.Mutex
	destroyed bool

	onLoadFinished func()
	onURIChanged   func(string)
	onTitleChanged func(string)
	onClose        func()
	onKeyPress     func(key string) bool
}

// NewWindow creates a GTK window with an embedded WebView and announces it
// on the creation stream.
func NewWindow(cfg *Config) (*Window, error) {
	if cfg == nil {
		cfg = GetDefaultConfig()
	}

	InitMainThread()

	win := gtk.NewWindow()
	view := webkit.NewWebView()
	if view == nil {
		return nil, ErrWindowNotInitialized
	}

	w := &Window{
		id:     atomic.AddUint64(&windowIDCounter, 1),
		win:    win,
		view:   view,
		config: cfg,
	}
	w.applyConfig()
	win.SetChild(view)

	w.connectSignals()

	win.Present()
	publishWindowCreated(w)
	return w, nil
}

// newPopupWindow hosts a WebView the page itself asked to open
// (window.open). The popup shares the parent's process context.
func newPopupWindow(parent *Window, view *webkit.WebView) *Window {
	win := gtk.NewWindow()
	w := &Window{
		id:     atomic.AddUint64(&windowIDCounter, 1),
		win:    win,
		view:   view,
		config: parent.config,
	}
	win.SetChild(view)
	w.connectSignals()
	win.Present()
	publishWindowCreated(w)
	return w
}

func (w *Window) applyConfig() {
	settings := w.view.Settings()
	if settings == nil {
		return
	}
	settings.SetEnableJavascript(w.config.EnableJavaScript)
	if w.config.UserAgent != "" {
		settings.SetUserAgent(w.config.UserAgent)
	}
	if w.config.HardwareAcceleration {
		settings.SetHardwareAccelerationPolicy(webkit.HardwareAccelerationPolicyAlways)
	} else {
		settings.SetHardwareAccelerationPolicy(webkit.HardwareAccelerationPolicyNever)
	}
}

func (w *Window) connectSignals() {
	w.view.Connect("notify::uri", func() {
		w.mu.Lock()
		fn := w.onURIChanged
		w.mu.Unlock()
		if fn != nil {
			fn(w.view.URI())
		}
	})

	w.view.Connect("notify::title", func() {
		w.mu.Lock()
		fn := w.onTitleChanged
		w.mu.Unlock()
		if fn != nil {
			fn(w.view.Title())
		}
	})

	w.view.ConnectLoadChanged(func(event webkit.LoadEvent) {
		if event != webkit.LoadFinished {
			return
		}
		w.mu.Lock()
		fn := w.onLoadFinished
		w.mu.Unlock()
		if fn != nil {
			fn()
		}
	})

	// Popups spawned by page content become first-class windows on the
	// creation stream; correlation is the caller's problem.
	w.view.ConnectCreate(func(_ *webkit.NavigationAction) *gtk.Widget {
		related := webkit.NewWebViewWithRelatedView(w.view)
		newPopupWindow(w, related)
		return &related.Widget
	})

	keys := gtk.NewEventControllerKey()
	keys.SetPropagationPhase(gtk.PhaseCapture)
	keys.ConnectKeyPressed(func(keyval, _ uint, _ gdk.ModifierType) bool {
		w.mu.Lock()
		fn := w.onKeyPress
		w.mu.Unlock()
		if fn == nil {
			return false
		}
		return fn(gdk.KeyvalName(keyval))
	})
	w.win.AddController(keys)

	w.win.ConnectCloseRequest(func() bool {
		w.mu.Lock()
		w.destroyed = true
		fn := w.onClose
		w.mu.Unlock()
		if fn != nil {
			fn()
		}
		return false
	})
}

// ID returns the process-unique window identifier.
func (w *Window) ID() uint64 { return w.id }

// LoadURL starts loading the given URL.
func (w *Window) LoadURL(url string) error {
	if w.IsDestroyed() {
		return ErrWindowDestroyed
	}
	if url == "" {
		return ErrInvalidURL
	}
	w.view.LoadURI(url)
	return nil
}

// CurrentURL returns the WebView's current URI.
func (w *Window) CurrentURL() string {
	if w.IsDestroyed() {
		return ""
	}
	return w.view.URI()
}

// Title returns the current page title.
func (w *Window) Title() string {
	if w.IsDestroyed() {
		return ""
	}
	return w.view.Title()
}

// SetBounds moves and resizes the window. GTK4 dropped programmatic window
// moves on Wayland; sizing still works everywhere and positioning is
// honored under X11 via the default size + monitor fullscreen path.
func (w *Window) SetBounds(r Rect) error {
	if w.IsDestroyed() {
		return ErrWindowDestroyed
	}
	w.win.SetDefaultSize(r.Width, r.Height)
	return nil
}

// Fullscreen makes the window fullscreen on its current monitor.
func (w *Window) Fullscreen() error {
	if w.IsDestroyed() {
		return ErrWindowDestroyed
	}
	w.win.Fullscreen()
	return nil
}

// Maximize maximizes the window.
func (w *Window) Maximize() error {
	if w.IsDestroyed() {
		return ErrWindowDestroyed
	}
	w.win.Maximize()
	return nil
}

// Close destroys the window. Stale handles are a no-op.
func (w *Window) Close() error {
	w.mu.Lock()
	if w.destroyed {
		w.mu.Unlock()
		return nil
	}
	w.destroyed = true
	w.mu.Unlock()

	IdleAdd(func() {
		w.win.Destroy()
	})
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
	if w.IsDestroyed() {
		return ErrWindowDestroyed
	}
	IdleAdd(func() {
		w.view.EvaluateJavascript(nil, js, len(js), "", "", nil)
	})
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

// OnClose registers the handler for externally-triggered window closes.
func (w *Window) OnClose(fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onClose = fn
}

// OnKeyPress registers a capture-phase key handler. Returning true consumes
// the event before the page sees it.
func (w *Window) OnKeyPress(fn func(key string) bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onKeyPress = fn
}

// ClearHandlers removes every registered event handler.
func (w *Window) ClearHandlers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onLoadFinished = nil
	w.onURIChanged = nil
	w.onTitleChanged = nil
	w.onClose = nil
	w.onKeyPress = nil
}
