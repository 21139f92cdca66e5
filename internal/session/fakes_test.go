package session

import (
	"context"
	"sync"

	"github.com/deckpilot/deckpilot/pkg/webkit"
)

// fakeWindow records every operation the session layer performs so tests
// can assert ordering and dispatch counts without GTK.
type fakeWindow struct {
	mu         sync.Mutex
	id         uint64
	url        string
	title      string
	bounds     []webkit.Rect
	fullscreen bool
	maximized  bool
	closed     bool
	keys       []webkit.Key
	evalResult string
	evalErr    error

	onLoadFinished func()
	onURIChanged   func(string)
	onTitleChanged func(string)
	onClose        func()
	onKeyPress     func(string) bool

	closeOrder *[]uint64
}

func (w *fakeWindow) ID() uint64 { return w.id }

func (w *fakeWindow) LoadURL(url string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return webkit.ErrWindowDestroyed
	}
	w.url = url
	return nil
}

func (w *fakeWindow) CurrentURL() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.url
}

func (w *fakeWindow) Title() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.title
}

func (w *fakeWindow) SetBounds(r webkit.Rect) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.bounds = append(w.bounds, r)
	return nil
}

func (w *fakeWindow) Fullscreen() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.fullscreen = true
	return nil
}

func (w *fakeWindow) Maximize() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.maximized = true
	return nil
}

func (w *fakeWindow) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	if w.closeOrder != nil {
		*w.closeOrder = append(*w.closeOrder, w.id)
	}
	return nil
}

func (w *fakeWindow) IsDestroyed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}

func (w *fakeWindow) SendKey(k webkit.Key) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return webkit.ErrWindowDestroyed
	}
	w.keys = append(w.keys, k)
	return nil
}

func (w *fakeWindow) EvalScript(ctx context.Context, js string) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.evalResult, w.evalErr
}

func (w *fakeWindow) OnLoadFinished(fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onLoadFinished = fn
}

func (w *fakeWindow) OnURIChanged(fn func(string)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onURIChanged = fn
}

func (w *fakeWindow) OnTitleChanged(fn func(string)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onTitleChanged = fn
}

func (w *fakeWindow) OnClose(fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onClose = fn
}

func (w *fakeWindow) OnKeyPress(fn func(string) bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onKeyPress = fn
}

func (w *fakeWindow) ClearHandlers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onLoadFinished = nil
	w.onURIChanged = nil
	w.onTitleChanged = nil
	w.onClose = nil
	w.onKeyPress = nil
}

func (w *fakeWindow) emitLoadFinished() {
	w.mu.Lock()
	fn := w.onLoadFinished
	w.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (w *fakeWindow) emitURIChanged(uri string) {
	w.mu.Lock()
	w.url = uri
	fn := w.onURIChanged
	w.mu.Unlock()
	if fn != nil {
		fn(uri)
	}
}

func (w *fakeWindow) emitTitleChanged(title string) {
	w.mu.Lock()
	w.title = title
	fn := w.onTitleChanged
	w.mu.Unlock()
	if fn != nil {
		fn(title)
	}
}

func (w *fakeWindow) emitClose() {
	w.mu.Lock()
	fn := w.onClose
	w.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (w *fakeWindow) pressKey(key string) bool {
	w.mu.Lock()
	fn := w.onKeyPress
	w.mu.Unlock()
	if fn == nil {
		return false
	}
	return fn(key)
}

func (w *fakeWindow) sentKeys() []webkit.Key {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]webkit.Key, len(w.keys))
	copy(out, w.keys)
	return out
}

func (w *fakeWindow) countKey(code string) int {
	n := 0
	for _, k := range w.sentKeys() {
		if k.Code == code {
			n++
		}
	}
	return n
}

// fakeSystem mimics the process-wide creation stream: every window it
// creates, including popups "spawned by the page", is published to
// registered hooks.
type fakeSystem struct {
	mu         sync.Mutex
	nextID     uint64
	windows    []*fakeWindow
	hooks      map[uint64]func(Window)
	hookSeq    uint64
	closeOrder []uint64
}

func newFakeSystem() *fakeSystem {
	return &fakeSystem{hooks: make(map[uint64]func(Window))}
}

func (s *fakeSystem) NewWindow(cfg *webkit.Config) (Window, error) {
	return s.createWindow(), nil
}

func (s *fakeSystem) OnWindowCreated(hook func(Window)) (cancel func()) {
	s.mu.Lock()
	s.hookSeq++
	id := s.hookSeq
	s.hooks[id] = hook
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.hooks, id)
		s.mu.Unlock()
	}
}

func (s *fakeSystem) createWindow() *fakeWindow {
	s.mu.Lock()
	s.nextID++
	w := &fakeWindow{id: s.nextID, closeOrder: &s.closeOrder}
	s.windows = append(s.windows, w)
	hooks := make([]func(Window), 0, len(s.hooks))
	for _, h := range s.hooks {
		hooks = append(hooks, h)
	}
	s.mu.Unlock()

	for _, h := range hooks {
		h(w)
	}
	return w
}

// spawnPopup simulates the hosted UI opening a window of its own.
func (s *fakeSystem) spawnPopup() *fakeWindow {
	return s.createWindow()
}

func (s *fakeSystem) hookCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.hooks)
}

// recordingSink captures published events.
type recordingSink struct {
	mu     sync.Mutex
	events []Event
}

func (r *recordingSink) Publish(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingSink) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}
