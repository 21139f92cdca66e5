package session

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deckpilot/deckpilot/internal/display"
	"github.com/deckpilot/deckpilot/pkg/webkit"
)

const presentURL = "https://docs.google.com/presentation/d/abc/present"

func testDelays() Delays {
	return Delays{
		PresentSettle: time.Millisecond,
		NotesSettle:   time.Millisecond,
		NotesFallback: 25 * time.Millisecond,
		ScrapeTimeout: 50 * time.Millisecond,
	}
}

func newTestController(sys *fakeSystem, sink EventSink) *Controller {
	resolver := display.NewResolver(func() []webkit.Display {
		p, n := testDisplays()
		return []webkit.Display{p, n}
	})
	c := NewController(Options{
		System:   sys,
		Displays: resolver,
		Events:   sink,
		Delays:   testDelays(),
		Logger:   zerolog.Nop(),
	})
	c.wm.maximizeDelay = time.Millisecond
	return c
}

func waitKeyCount(t *testing.T, w *fakeWindow, code string, want int) {
	t.Helper()
	require.Eventually(t, func() bool {
		return w.countKey(code) == want
	}, time.Second, 2*time.Millisecond, "expected %d %s presses, have %d", want, code, w.countKey(code))
}

func TestActivationPresentTriggerAfterLoad(t *testing.T) {
	sys := newFakeSystem()
	c := newTestController(sys, nil)
	ctx := context.Background()

	require.NoError(t, c.Open(ctx, presentURL, false))
	pres := sys.windows[0]

	pres.emitLoadFinished()
	waitKeyCount(t, pres, "F5", 1)

	keys := pres.sentKeys()
	require.NotEmpty(t, keys)
	assert.True(t, keys[0].Ctrl, "present trigger is Ctrl+F5")

	st := c.Status(ctx)
	assert.Equal(t, StateReady.String(), st.State, "no notes leg: ready after present trigger")
}

func TestNotesTriggerViaNavigationFiresOnce(t *testing.T) {
	sys := newFakeSystem()
	c := newTestController(sys, nil)
	ctx := context.Background()

	require.NoError(t, c.Open(ctx, presentURL, true))
	pres := sys.windows[0]

	pres.emitLoadFinished()
	pres.emitURIChanged(presentURL)
	waitKeyCount(t, pres, "KeyS", 1)

	// Let the fallback timer expire; the once-flag must hold.
	time.Sleep(3 * testDelays().NotesFallback)
	assert.Equal(t, 1, pres.countKey("KeyS"), "navigation path and fallback timer must not both fire")
}

func TestNotesTriggerViaFallbackWhenNavigationNeverMatches(t *testing.T) {
	sys := newFakeSystem()
	c := newTestController(sys, nil)
	ctx := context.Background()

	require.NoError(t, c.Open(ctx, presentURL, true))
	pres := sys.windows[0]

	pres.emitLoadFinished()
	// Editor navigation must not arm the notes trigger.
	pres.emitURIChanged("https://docs.google.com/presentation/d/abc/edit")

	waitKeyCount(t, pres, "KeyS", 1)
	time.Sleep(2 * testDelays().NotesFallback)
	assert.Equal(t, 1, pres.countKey("KeyS"))
}

func TestNotesTriggerBothPathsRacingFiresOnce(t *testing.T) {
	sys := newFakeSystem()
	c := newTestController(sys, nil)
	ctx := context.Background()

	require.NoError(t, c.Open(ctx, presentURL, true))
	pres := sys.windows[0]

	pres.emitLoadFinished()
	// Repeated present-mode navigations race the fallback timer; the
	// observer is at-most-once and the flag dedupes the rest.
	for i := 0; i < 5; i++ {
		pres.emitURIChanged(presentURL)
	}
	time.Sleep(3 * testDelays().NotesFallback)
	assert.Equal(t, 1, pres.countKey("KeyS"))
}

func TestStaleActivationTimerIsNoOpAfterReopen(t *testing.T) {
	sys := newFakeSystem()
	c := newTestController(sys, nil)
	ctx := context.Background()

	require.NoError(t, c.Open(ctx, presentURL, true))
	first := sys.windows[0]
	first.emitLoadFinished() // arms present settle + notes fallback

	// Supersede before any timer fires.
	require.NoError(t, c.Open(ctx, "https://docs.google.com/presentation/d/xyz/present", false))
	second := sys.windows[1]
	second.emitLoadFinished()

	time.Sleep(3 * testDelays().NotesFallback)
	assert.Equal(t, 0, first.countKey("KeyS"), "stale fallback must not fire into the old session")
	assert.Equal(t, 0, second.countKey("KeyS"), "stale fallback must not leak into the new window")
	waitKeyCount(t, second, "F5", 1)
}

func TestNextPreviousTracking(t *testing.T) {
	sys := newFakeSystem()
	c := newTestController(sys, nil)
	ctx := context.Background()

	require.NoError(t, c.Open(ctx, presentURL, false))
	pres := sys.windows[0]

	for i := 0; i < 3; i++ {
		require.NoError(t, c.Next(ctx))
	}
	st := c.Status(ctx)
	require.NotNil(t, st.CurrentSlide)
	assert.Equal(t, 4, *st.CurrentSlide)
	assert.Equal(t, 3, pres.countKey("ArrowRight"))

	for i := 0; i < 10; i++ {
		require.NoError(t, c.Previous(ctx))
	}
	st = c.Status(ctx)
	require.NotNil(t, st.CurrentSlide)
	assert.Equal(t, 1, *st.CurrentSlide, "previous never drops below slide 1")
}

func TestPreviousAtSlideOneSendsNoKey(t *testing.T) {
	sys := newFakeSystem()
	c := newTestController(sys, nil)
	ctx := context.Background()

	require.NoError(t, c.Open(ctx, presentURL, false))
	pres := sys.windows[0]

	require.NoError(t, c.Previous(ctx), "previous at slide 1 still reports success")
	assert.Equal(t, 0, pres.countKey("ArrowLeft"))
}

func TestCommandsWithoutSessionReturnErrNoSession(t *testing.T) {
	sys := newFakeSystem()
	c := newTestController(sys, nil)
	ctx := context.Background()

	assert.ErrorIs(t, c.Next(ctx), ErrNoSession)
	assert.ErrorIs(t, c.Previous(ctx), ErrNoSession)
	assert.ErrorIs(t, c.ToggleVideo(ctx), ErrNoSession)
	assert.ErrorIs(t, c.Reload(ctx), ErrNoSession)
	assert.ErrorIs(t, c.GoToSlide(ctx, 3), ErrNoSession)
}

func TestStatusWithNoSession(t *testing.T) {
	sys := newFakeSystem()
	c := newTestController(sys, nil)

	st := c.Status(context.Background())
	assert.False(t, st.PresentationOpen)
	assert.False(t, st.NotesOpen)
	assert.Nil(t, st.CurrentSlide)
	assert.Nil(t, st.TotalSlides)
	assert.Equal(t, StateClosed.String(), st.State)
}

func TestReloadPreservesURL(t *testing.T) {
	sys := newFakeSystem()
	c := newTestController(sys, nil)
	ctx := context.Background()

	require.NoError(t, c.Open(ctx, presentURL, false))
	require.NoError(t, c.Next(ctx))
	require.NoError(t, c.Reload(ctx))

	st := c.Status(ctx)
	assert.True(t, st.PresentationOpen)
	assert.Equal(t, presentURL, st.PresentationURL)
	require.NotNil(t, st.CurrentSlide)
	assert.Equal(t, 1, *st.CurrentSlide, "reload restarts tracking at slide 1")

	require.Len(t, sys.windows, 2)
	assert.True(t, sys.windows[0].IsDestroyed())
	assert.False(t, sys.windows[1].IsDestroyed())
}

func TestGoToSlideSteps(t *testing.T) {
	sys := newFakeSystem()
	c := newTestController(sys, nil)
	ctx := context.Background()

	require.NoError(t, c.Open(ctx, presentURL, false))
	pres := sys.windows[0]

	require.NoError(t, c.GoToSlide(ctx, 5))
	assert.Equal(t, 4, pres.countKey("ArrowRight"), "slide 1 to 5 is four forward steps")

	require.NoError(t, c.GoToSlide(ctx, 2))
	assert.Equal(t, 3, pres.countKey("ArrowLeft"), "slide 5 to 2 is three back steps")

	st := c.Status(ctx)
	require.NotNil(t, st.CurrentSlide)
	assert.Equal(t, 2, *st.CurrentSlide)

	assert.Error(t, c.GoToSlide(ctx, 0))
}

func TestStatusScrapeOverridesOptimisticCounter(t *testing.T) {
	sys := newFakeSystem()
	c := newTestController(sys, nil)
	ctx := context.Background()

	require.NoError(t, c.Open(ctx, presentURL, true))
	require.NoError(t, c.Next(ctx)) // optimistic: 2

	notes := sys.spawnPopup()
	notes.evalResult = "7/20"

	st := c.Status(ctx)
	require.NotNil(t, st.CurrentSlide)
	assert.Equal(t, 7, *st.CurrentSlide, "parseable scrape wins over the counter")
	require.NotNil(t, st.TotalSlides)
	assert.Equal(t, 20, *st.TotalSlides)
}

func TestStatusScrapeFailureKeepsOptimisticCounter(t *testing.T) {
	sys := newFakeSystem()
	c := newTestController(sys, nil)
	ctx := context.Background()

	require.NoError(t, c.Open(ctx, presentURL, true))
	require.NoError(t, c.Next(ctx))

	notes := sys.spawnPopup()
	notes.evalResult = "" // indicator absent mid-navigation

	st := c.Status(ctx)
	require.NotNil(t, st.CurrentSlide)
	assert.Equal(t, 2, *st.CurrentSlide, "failed scrape is silent")
	assert.Nil(t, st.TotalSlides)
}

func TestNotesCommands(t *testing.T) {
	sys := newFakeSystem()
	c := newTestController(sys, nil)
	ctx := context.Background()

	require.NoError(t, c.Open(ctx, presentURL, false))

	assert.ErrorIs(t, c.NotesScroll(ctx, true), ErrNoNotes)
	assert.ErrorIs(t, c.NotesZoom(ctx, true), ErrNoNotes)

	notes := sys.spawnPopup()
	require.NoError(t, c.NotesScroll(ctx, true))
	require.NoError(t, c.NotesScroll(ctx, false))
	require.NoError(t, c.NotesZoom(ctx, true))
	require.NoError(t, c.NotesZoom(ctx, false))
	assert.Equal(t, 1, notes.countKey("ArrowUp"))
	assert.Equal(t, 1, notes.countKey("ArrowDown"))
	assert.Equal(t, 1, notes.countKey("Equal"))
	assert.Equal(t, 1, notes.countKey("Minus"))

	require.NoError(t, c.NotesClose(ctx))
	assert.True(t, notes.IsDestroyed())
	st := c.Status(ctx)
	assert.True(t, st.PresentationOpen)
	assert.False(t, st.NotesOpen)
}

func TestNotesOpenCommandSharesOnceFlag(t *testing.T) {
	sys := newFakeSystem()
	c := newTestController(sys, nil)
	ctx := context.Background()

	require.NoError(t, c.Open(ctx, presentURL, true))
	pres := sys.windows[0]
	pres.emitLoadFinished() // arms the fallback timer

	require.NoError(t, c.NotesOpen(ctx))
	waitKeyCount(t, pres, "KeyS", 1)

	time.Sleep(3 * testDelays().NotesFallback)
	assert.Equal(t, 1, pres.countKey("KeyS"), "manual notes open must suppress the fallback toggle")
}

func TestEscapeClosesSession(t *testing.T) {
	sys := newFakeSystem()
	c := newTestController(sys, nil)
	ctx := context.Background()

	require.NoError(t, c.Open(ctx, presentURL, true))
	pres := sys.windows[0]
	notes := sys.spawnPopup()

	assert.True(t, pres.pressKey("Escape"))
	assert.True(t, pres.IsDestroyed())
	assert.True(t, notes.IsDestroyed())

	st := c.Status(ctx)
	assert.False(t, st.PresentationOpen)
	assert.Nil(t, st.CurrentSlide)
}

func TestExternalWindowCloseResetsSession(t *testing.T) {
	sys := newFakeSystem()
	c := newTestController(sys, nil)
	ctx := context.Background()

	require.NoError(t, c.Open(ctx, presentURL, false))
	pres := sys.windows[0]

	pres.emitClose()

	st := c.Status(ctx)
	assert.False(t, st.PresentationOpen)
	assert.Nil(t, st.CurrentSlide)
	assert.Equal(t, "", st.PresentationURL)
}

func TestTitleTracking(t *testing.T) {
	sys := newFakeSystem()
	c := newTestController(sys, nil)
	ctx := context.Background()

	require.NoError(t, c.Open(ctx, presentURL, false))
	sys.windows[0].emitTitleChanged("Quarterly Review - Google Slides")

	st := c.Status(ctx)
	assert.Equal(t, "Quarterly Review - Google Slides", st.PresentationTitle)
}

func TestEventsPublished(t *testing.T) {
	sys := newFakeSystem()
	sink := &recordingSink{}
	c := newTestController(sys, sink)
	ctx := context.Background()

	require.NoError(t, c.Open(ctx, presentURL, false))
	require.NoError(t, c.Next(ctx))
	require.NoError(t, c.Close(ctx))

	types := sink.types()
	assert.Contains(t, types, "session-opened")
	assert.Contains(t, types, "slide-changed")
	assert.Contains(t, types, "session-closed")
}

func TestOpenPreset(t *testing.T) {
	sys := newFakeSystem()
	c := newTestController(sys, nil)
	ctx := context.Background()

	// Default config has empty preset slots.
	assert.ErrorIs(t, c.OpenPreset(ctx, 1, true), ErrNoPreset)
	assert.ErrorIs(t, c.OpenPreset(ctx, 9, true), ErrNoPreset)
}
