package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/deckpilot/deckpilot/pkg/webkit"
)

const (
	// Notes popup is inset from the display edge before being maximized;
	// issuing move and maximize together makes the window system maximize
	// on the wrong display.
	notesInsetMargin   = 50
	notesMaximizeDelay = 400 * time.Millisecond
)

// OpenRequest describes one presentation open.
type OpenRequest struct {
	URL                 string
	PresentationDisplay webkit.Display
	NotesDisplay        webkit.Display
	Config              *webkit.Config
}

// WindowManager owns creation, positioning, and teardown of the
// presentation/notes window pair. The notes popup is spawned by the hosted
// UI, not by us; the manager correlates it off the process-wide creation
// stream, exactly once per open.
type WindowManager struct {
	sys WindowSystem
	log zerolog.Logger

	// onCloseRequested is invoked when either window wants the whole
	// session gone: Escape in either window, or an OS-level close.
	onCloseRequested func()

	// onNotesBound is invoked after a notes popup is correlated and
	// positioned.
	onNotesBound func(Window)

	maximizeDelay time.Duration

	mu           sync.Mutex
	presentation Window
	notes        Window
	notesDisplay webkit.Display
	cancelHook   func()
}

// NewWindowManager creates a manager over the given window system.
func NewWindowManager(sys WindowSystem, log zerolog.Logger) *WindowManager {
	return &WindowManager{
		sys:           sys,
		log:           log,
		maximizeDelay: notesMaximizeDelay,
	}
}

// SetCloseRequestedHandler registers the close-everything callback.
func (m *WindowManager) SetCloseRequestedHandler(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onCloseRequested = fn
}

// SetNotesBoundHandler registers the notes-correlation callback.
func (m *WindowManager) SetNotesBoundHandler(fn func(Window)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onNotesBound = fn
}

// Open tears down any existing pair, creates the presentation window
// fullscreen on its display, registers the one-shot notes correlation hook,
// and only then starts the URL load. Hook-before-load is load-bearing: the
// popup can be spawned at any point after navigation starts, and a late
// hook could misbind an unrelated window.
func (m *WindowManager) Open(req OpenRequest) (Window, error) {
	m.Close()

	w, err := m.sys.NewWindow(req.Config)
	if err != nil {
		return nil, fmt.Errorf("create presentation window: %w", err)
	}

	if err := w.SetBounds(req.PresentationDisplay.Bounds); err != nil {
		m.log.Debug().Err(err).Msg("position presentation window")
	}
	if err := w.Fullscreen(); err != nil {
		m.log.Debug().Err(err).Msg("fullscreen presentation window")
	}

	m.mu.Lock()
	m.presentation = w
	m.notesDisplay = req.NotesDisplay
	m.cancelHook = m.sys.OnWindowCreated(func(nw Window) {
		m.bindNotes(nw)
	})
	m.mu.Unlock()

	m.attachCloseHandlers(w)

	if err := w.LoadURL(req.URL); err != nil {
		m.Close()
		return nil, fmt.Errorf("load presentation url: %w", err)
	}

	return w, nil
}

// bindNotes decides whether a newly created window is "the" notes popup.
// The only correlation signals are ordering and identity: the window must
// not be the presentation window itself, and only the first such window per
// open is taken. The hook deregisters immediately on match.
func (m *WindowManager) bindNotes(nw Window) {
	m.mu.Lock()
	if m.presentation == nil || m.notes != nil || nw.ID() == m.presentation.ID() {
		m.mu.Unlock()
		return
	}
	m.notes = nw
	cancel := m.cancelHook
	m.cancelHook = nil
	disp := m.notesDisplay
	onBound := m.onNotesBound
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	m.log.Info().Uint64("window", nw.ID()).Int("display", disp.ID).Msg("notes window bound")

	// Reposition first, maximize after a settle delay. Both at once and
	// the window maximizes on the display it was created on.
	if err := nw.SetBounds(disp.Bounds.Inset(notesInsetMargin)); err != nil {
		m.log.Debug().Err(err).Msg("position notes window")
	}
	time.AfterFunc(m.maximizeDelay, func() {
		if nw.IsDestroyed() {
			return
		}
		if err := nw.Maximize(); err != nil {
			m.log.Debug().Err(err).Msg("maximize notes window")
		}
	})

	m.attachCloseHandlers(nw)

	if onBound != nil {
		onBound(nw)
	}
}

// attachCloseHandlers wires Escape and OS-close on a window to the
// close-everything callback. Escape is consumed so the hosted content never
// sees it; the controller owns that key while a session is open.
func (m *WindowManager) attachCloseHandlers(w Window) {
	w.OnKeyPress(func(key string) bool {
		if key != "Escape" {
			return false
		}
		m.requestClose()
		return true
	})
	w.OnClose(func() {
		m.requestClose()
	})
}

func (m *WindowManager) requestClose() {
	m.mu.Lock()
	fn := m.onCloseRequested
	m.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Close tears the pair down: notes first, then presentation, each with its
// handlers removed before close so our own teardown does not race the
// event-driven session reset. Idempotent; stale or already-destroyed
// handles are nothing-to-do, never errors.
func (m *WindowManager) Close() {
	m.mu.Lock()
	notes := m.notes
	pres := m.presentation
	cancel := m.cancelHook
	m.notes = nil
	m.presentation = nil
	m.cancelHook = nil
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if notes != nil {
		notes.ClearHandlers()
		if err := notes.Close(); err != nil {
			m.log.Debug().Err(err).Msg("close notes window")
		}
	}
	if pres != nil {
		pres.ClearHandlers()
		if err := pres.Close(); err != nil {
			m.log.Debug().Err(err).Msg("close presentation window")
		}
	}
}

// CloseNotes closes only the notes popup, keeping the presentation up.
func (m *WindowManager) CloseNotes() {
	m.mu.Lock()
	notes := m.notes
	m.notes = nil
	m.mu.Unlock()

	if notes != nil {
		notes.ClearHandlers()
		if err := notes.Close(); err != nil {
			m.log.Debug().Err(err).Msg("close notes window")
		}
	}
}

// Presentation returns the live presentation window, or nil.
func (m *WindowManager) Presentation() Window {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.presentation
}

// Notes returns the bound notes window, or nil. The reference is advisory:
// after its owner is gone it must not be trusted beyond the current event
// loop turn.
func (m *WindowManager) Notes() Window {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.notes
}
