package session

import (
	"context"

	"github.com/deckpilot/deckpilot/pkg/webkit"
)

// Window is the slice of the webkit window surface the session layer needs.
// Narrowed to an interface so the lifecycle and activation logic is testable
// without GTK.
type Window interface {
	ID() uint64
	LoadURL(url string) error
	CurrentURL() string
	Title() string
	SetBounds(r webkit.Rect) error
	Fullscreen() error
	Maximize() error
	Close() error
	IsDestroyed() bool
	SendKey(k webkit.Key) error
	EvalScript(ctx context.Context, js string) (string, error)
	OnLoadFinished(fn func())
	OnURIChanged(fn func(uri string))
	OnTitleChanged(fn func(title string))
	OnClose(fn func())
	OnKeyPress(fn func(key string) bool)
	ClearHandlers()
}

// WindowSystem creates windows and exposes the process-wide window creation
// stream used for notes-popup correlation.
type WindowSystem interface {
	NewWindow(cfg *webkit.Config) (Window, error)
	OnWindowCreated(hook func(Window)) (cancel func())
}

// NativeSystem is the production WindowSystem backed by pkg/webkit.
type NativeSystem struct{}

// NewWindow creates a native window.
func (NativeSystem) NewWindow(cfg *webkit.Config) (Window, error) {
	return webkit.NewWindow(cfg)
}

// OnWindowCreated subscribes to the native creation stream.
func (NativeSystem) OnWindowCreated(hook func(Window)) (cancel func()) {
	return webkit.OnWindowCreated(func(w *webkit.Window) {
		hook(w)
	})
}

// CredentialChecker reports whether a signed-in account session exists.
// External collaborator; the controller never manages sign-in itself.
type CredentialChecker interface {
	IsSignedIn(ctx context.Context) bool
}

// Event is a state-change notification pushed to the settings surface.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// EventSink receives session events. Publish must not block.
type EventSink interface {
	Publish(e Event)
}
