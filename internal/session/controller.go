package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/deckpilot/deckpilot/internal/config"
	"github.com/deckpilot/deckpilot/internal/display"
	"github.com/deckpilot/deckpilot/pkg/webkit"
)

// goToSlideStepCap bounds the synthetic key presses one go-to-slide may
// emit. The hosted UI has no jump affordance, so jumps are stepped.
const goToSlideStepCap = 100

// Options wires a Controller.
type Options struct {
	System    WindowSystem
	Displays  *display.Resolver
	Prefs     func() *config.Config
	Creds     CredentialChecker
	Events    EventSink
	WebConfig *webkit.Config
	Delays    Delays
	Logger    zerolog.Logger
}

// Controller sequences window creation, presentation-mode activation, and
// notes activation, and exposes the command surface consumed by the HTTP
// layer. All slide tracking is best-effort and heuristic.
type Controller struct {
	wm       *WindowManager
	tracker  *Tracker
	displays *display.Resolver
	prefs    func() *config.Config
	creds    CredentialChecker
	events   EventSink
	webCfg   *webkit.Config
	delays   Delays
	log      zerolog.Logger

	mu   sync.Mutex
	sess *Session
	// gen invalidates timers and observers of superseded opens: a pending
	// timer whose generation no longer matches is a no-op when it fires.
	gen uint64
}

// NewController builds the controller and wires window-close propagation.
func NewController(opts Options) *Controller {
	if opts.Prefs == nil {
		opts.Prefs = config.Get
	}
	if opts.WebConfig == nil {
		opts.WebConfig = webkit.GetDefaultConfig()
	}
	if opts.Delays == (Delays{}) {
		opts.Delays = DefaultDelays()
	}

	c := &Controller{
		wm:       NewWindowManager(opts.System, opts.Logger),
		tracker:  &Tracker{},
		displays: opts.Displays,
		prefs:    opts.Prefs,
		creds:    opts.Creds,
		events:   opts.Events,
		webCfg:   opts.WebConfig,
		delays:   opts.Delays,
		log:      opts.Logger,
	}
	c.wm.SetCloseRequestedHandler(func() {
		c.Close(context.Background())
	})
	c.wm.SetNotesBoundHandler(func(Window) {
		c.mu.Lock()
		if c.sess != nil && c.sess.State != StateClosed {
			c.sess.State = StateReady
		}
		c.mu.Unlock()
		c.publish(Event{Type: "notes-opened"})
	})
	return c
}

// Windows exposes the lifecycle manager (settings surface, tests).
func (c *Controller) Windows() *WindowManager { return c.wm }

// Open closes any current session and opens url. The previous pair is torn
// down synchronously before the new window exists; pending activation
// timers of the old session are invalidated by the generation bump.
func (c *Controller) Open(ctx context.Context, url string, withNotes bool) error {
	if url == "" {
		return fmt.Errorf("open: url required")
	}

	cfg := c.prefs()

	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.mu.Unlock()

	req := OpenRequest{
		URL:                 url,
		PresentationDisplay: c.displays.Resolve(cfg.Displays.Presentation),
		NotesDisplay:        c.displays.Resolve(cfg.Displays.Notes),
		Config:              c.webCfg,
	}

	w, err := c.wm.Open(req)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.sess = &Session{URL: url, WithNotes: withNotes, State: StateLoading, gen: gen}
	c.mu.Unlock()
	c.tracker.Start()

	w.OnLoadFinished(func() { c.handleLoadFinished(gen, w) })
	w.OnURIChanged(func(uri string) { c.handleNavigated(gen, w, uri) })
	w.OnTitleChanged(func(title string) { c.setTitle(gen, title) })

	c.log.Info().Str("url", url).Bool("with_notes", withNotes).Msg("presentation opened")
	c.publish(Event{Type: "session-opened", Data: map[string]any{"url": url}})
	return nil
}

// OpenPreset opens the deck bound to preset slot n (1-based).
func (c *Controller) OpenPreset(ctx context.Context, n int, withNotes bool) error {
	cfg := c.prefs()
	if n < 1 || n > len(cfg.Presets) {
		return ErrNoPreset
	}
	preset := cfg.Presets[n-1]
	if preset.URL == "" {
		return ErrNoPreset
	}
	return c.Open(ctx, preset.URL, withNotes)
}

// handleLoadFinished arms the present trigger and the notes fallback timer.
func (c *Controller) handleLoadFinished(gen uint64, w Window) {
	c.mu.Lock()
	if c.stale(gen) {
		c.mu.Unlock()
		return
	}
	withNotes := c.sess.WithNotes
	c.mu.Unlock()

	time.AfterFunc(c.delays.PresentSettle, func() {
		c.mu.Lock()
		if c.stale(gen) {
			c.mu.Unlock()
			return
		}
		if c.sess.State == StateLoading {
			c.sess.State = StatePresentTriggered
			if !c.sess.WithNotes {
				// No notes leg; the session is as interactive as it gets.
				c.sess.State = StateReady
			}
		}
		c.mu.Unlock()

		if err := w.SendKey(keyPresent); err != nil {
			c.log.Debug().Err(err).Msg("present trigger dispatch")
		}
		c.log.Debug().Msg("present mode triggered")
	})

	if withNotes {
		time.AfterFunc(c.delays.NotesFallback, func() {
			c.fireNotesTrigger(gen, w, TriggerFallback)
		})
	}
}

// handleNavigated watches URL changes for the present-mode pattern and arms
// the notes settle timer at most once.
func (c *Controller) handleNavigated(gen uint64, w Window, uri string) {
	if !isPresentModeURL(uri) {
		return
	}

	c.mu.Lock()
	if c.stale(gen) || !c.sess.WithNotes || c.sess.sKeySent || c.sess.notesScheduled {
		c.mu.Unlock()
		return
	}
	c.sess.notesScheduled = true
	c.mu.Unlock()

	time.AfterFunc(c.delays.NotesSettle, func() {
		c.fireNotesTrigger(gen, w, TriggerNavigation)
	})
}

// fireNotesTrigger sends the notes toggle exactly once per open session,
// regardless of which paths race to it.
func (c *Controller) fireNotesTrigger(gen uint64, w Window, src TriggerSource) {
	c.mu.Lock()
	if c.stale(gen) || c.sess.sKeySent {
		c.mu.Unlock()
		return
	}
	c.sess.sKeySent = true
	if c.sess.State == StatePresentTriggered || c.sess.State == StateLoading {
		c.sess.State = StateNotesTriggered
	}
	c.mu.Unlock()

	if err := w.SendKey(keyNotesToggle); err != nil {
		c.log.Debug().Err(err).Msg("notes trigger dispatch")
		return
	}
	c.log.Info().Stringer("source", src).Msg("notes toggle triggered")
}

func (c *Controller) setTitle(gen uint64, title string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stale(gen) || title == "" {
		return
	}
	c.sess.Title = title
}

// stale reports whether gen belongs to a superseded open. Caller holds mu.
func (c *Controller) stale(gen uint64) bool {
	return c.sess == nil || c.gen != gen
}

// Close tears down the session. Idempotent: closing with nothing open
// succeeds as a no-op.
func (c *Controller) Close(ctx context.Context) error {
	c.mu.Lock()
	wasOpen := c.sess != nil
	c.gen++
	c.sess = nil
	c.mu.Unlock()

	c.tracker.Reset()
	c.wm.Close()

	if wasOpen {
		c.log.Info().Msg("presentation closed")
		c.publish(Event{Type: "session-closed"})
	}
	return nil
}

// Reload closes and reopens the same URL. The deck restarts at slide 1;
// position is deliberately not restored (single-machine recovery must not
// guess at seek behavior). Reload is never replicated to backups.
func (c *Controller) Reload(ctx context.Context) error {
	c.mu.Lock()
	if c.sess == nil {
		c.mu.Unlock()
		return ErrNoSession
	}
	url := c.sess.URL
	withNotes := c.sess.WithNotes
	c.mu.Unlock()

	if err := c.Close(ctx); err != nil {
		return err
	}
	return c.Open(ctx, url, withNotes)
}

// Next advances one slide.
func (c *Controller) Next(ctx context.Context) error {
	w, err := c.requirePresentation()
	if err != nil {
		return err
	}
	if err := w.SendKey(keyNext); err != nil {
		c.log.Debug().Err(err).Msg("next dispatch")
	}
	cur := c.tracker.Next()
	c.publish(Event{Type: "slide-changed", Data: map[string]any{"currentSlide": cur}})
	return nil
}

// Previous goes back one slide; at slide 1 it succeeds without moving.
func (c *Controller) Previous(ctx context.Context) error {
	w, err := c.requirePresentation()
	if err != nil {
		return err
	}
	cur, _ := c.tracker.Slide()
	if cur > 1 {
		if err := w.SendKey(keyPrevious); err != nil {
			c.log.Debug().Err(err).Msg("previous dispatch")
		}
	}
	cur = c.tracker.Previous()
	c.publish(Event{Type: "slide-changed", Data: map[string]any{"currentSlide": cur}})
	return nil
}

// GoToSlide steps to slide n with repeated next/previous presses. The
// hosted UI has no direct jump affordance; stepping stays inside
// presentation mode where a deep-link renavigation would not.
func (c *Controller) GoToSlide(ctx context.Context, n int) error {
	if n < 1 {
		return fmt.Errorf("go-to-slide: slide must be >= 1")
	}
	w, err := c.requirePresentation()
	if err != nil {
		return err
	}

	cur, _ := c.tracker.Slide()
	if cur == 0 {
		cur = 1
	}
	steps := n - cur
	if steps > goToSlideStepCap {
		steps = goToSlideStepCap
		n = cur + steps
	} else if steps < -goToSlideStepCap {
		steps = -goToSlideStepCap
		n = cur + steps
	}

	key := keyNext
	if steps < 0 {
		key = keyPrevious
		steps = -steps
	}
	for i := 0; i < steps; i++ {
		if err := w.SendKey(key); err != nil {
			c.log.Debug().Err(err).Msg("go-to-slide dispatch")
			break
		}
	}
	c.tracker.Set(n)
	c.publish(Event{Type: "slide-changed", Data: map[string]any{"currentSlide": n}})
	return nil
}

// ToggleVideo plays/pauses a video on the current slide.
func (c *Controller) ToggleVideo(ctx context.Context) error {
	w, err := c.requirePresentation()
	if err != nil {
		return err
	}
	if err := w.SendKey(keyVideoToggle); err != nil {
		c.log.Debug().Err(err).Msg("video toggle dispatch")
	}
	return nil
}

// NotesOpen requests the speaker-notes popup. No-op when already open; the
// trigger shares the session's once-flag so a pending fallback timer cannot
// double-toggle it closed again.
func (c *Controller) NotesOpen(ctx context.Context) error {
	w, err := c.requirePresentation()
	if err != nil {
		return err
	}
	if c.wm.Notes() != nil {
		return nil
	}

	c.mu.Lock()
	if c.sess != nil {
		c.sess.sKeySent = true
	}
	c.mu.Unlock()

	if err := w.SendKey(keyNotesToggle); err != nil {
		c.log.Debug().Err(err).Msg("notes open dispatch")
	}
	c.log.Info().Stringer("source", TriggerCommand).Msg("notes toggle triggered")
	return nil
}

// NotesClose closes the notes popup if present.
func (c *Controller) NotesClose(ctx context.Context) error {
	if _, err := c.requirePresentation(); err != nil {
		return err
	}
	c.wm.CloseNotes()
	return nil
}

// NotesScroll scrolls the notes popup; up when up is true.
func (c *Controller) NotesScroll(ctx context.Context, up bool) error {
	w := c.wm.Notes()
	if w == nil {
		return ErrNoNotes
	}
	key := keyNotesScrollDown
	if up {
		key = keyNotesScrollUp
	}
	if err := w.SendKey(key); err != nil {
		c.log.Debug().Err(err).Msg("notes scroll dispatch")
	}
	return nil
}

// NotesZoom zooms the notes popup; in when in is true.
func (c *Controller) NotesZoom(ctx context.Context, in bool) error {
	w := c.wm.Notes()
	if w == nil {
		return ErrNoNotes
	}
	key := keyNotesZoomOut
	if in {
		key = keyNotesZoomIn
	}
	if err := w.SendKey(key); err != nil {
		c.log.Debug().Err(err).Msg("notes zoom dispatch")
	}
	return nil
}

// Status reports current session state. When a notes popup exists it is
// scraped best-effort; a parseable scrape overrides the optimistic counter
// for this read, a failed one is silent.
func (c *Controller) Status(ctx context.Context) Status {
	if notes := c.wm.Notes(); notes != nil {
		c.scrape(ctx, notes)
	}

	c.mu.Lock()
	sess := c.sess
	var st Status
	if sess == nil {
		st.State = StateClosed.String()
	} else {
		st.PresentationOpen = true
		st.PresentationURL = sess.URL
		st.PresentationTitle = sess.Title
		st.State = sess.State.String()
	}
	c.mu.Unlock()

	if st.PresentationOpen {
		st.NotesOpen = c.wm.Notes() != nil
		cur, total := c.tracker.Slide()
		if cur > 0 {
			st.CurrentSlide = &cur
		}
		if total > 0 {
			st.TotalSlides = &total
		}
	}

	if c.creds != nil {
		st.SignedIn = c.creds.IsSignedIn(ctx)
	}
	return st
}

// scrape evaluates the slide-indicator query in the notes popup. Failures
// (element absent, window busy, navigation in flight) are routine during
// page loads and never surface to the status caller.
func (c *Controller) scrape(ctx context.Context, notes Window) {
	sctx, cancel := context.WithTimeout(ctx, c.delays.ScrapeTimeout)
	defer cancel()

	out, err := notes.EvalScript(sctx, slidePositionScript)
	if err != nil {
		c.log.Trace().Err(err).Msg("slide scrape failed")
		return
	}
	pos, total, err := parseSlidePosition(out)
	if err != nil {
		c.log.Trace().Err(err).Msg("slide scrape unparseable")
		return
	}
	c.tracker.Observe(pos, total)
}

func (c *Controller) requirePresentation() (Window, error) {
	w := c.wm.Presentation()
	if w == nil {
		return nil, ErrNoSession
	}
	return w, nil
}

func (c *Controller) publish(e Event) {
	if c.events != nil {
		c.events.Publish(e)
	}
}
