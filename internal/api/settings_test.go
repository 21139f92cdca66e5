package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deckpilot/deckpilot/internal/config"
	"github.com/deckpilot/deckpilot/internal/db"
	"github.com/deckpilot/deckpilot/internal/display"
	"github.com/deckpilot/deckpilot/pkg/webkit"
)

type fakeBackupSource struct {
	statuses map[string]string
}

func (f *fakeBackupSource) Statuses() map[string]string { return f.statuses }

type fakeRecents struct {
	entries []db.HistoryEntry
	err     error
	limit   int
}

func (f *fakeRecents) Recent(_ context.Context, limit int) ([]db.HistoryEntry, error) {
	f.limit = limit
	return f.entries, f.err
}

func testDisplayResolver() *display.Resolver {
	return display.NewResolver(func() []webkit.Display {
		return []webkit.Display{
			{ID: 0, Bounds: webkit.Rect{Width: 1920, Height: 1080}, Primary: true},
			{ID: 1, Bounds: webkit.Rect{X: 1920, Width: 1920, Height: 1080}},
		}
	})
}

func doGet(t *testing.T, h http.HandlerFunc, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestHandleDisplays(t *testing.T) {
	s := NewSettingsHandler(testDisplayResolver(), nil, nil, nil, zerolog.Nop())

	rec := doGet(t, s.HandleDisplays, "/displays")
	require.Equal(t, http.StatusOK, rec.Code)

	var got []webkit.Display
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.True(t, got[0].Primary)
	assert.Equal(t, 1, got[1].ID)
}

func TestHandleBackupStatus(t *testing.T) {
	src := &fakeBackupSource{statuses: map[string]string{
		"10.0.0.2": "connected",
		"10.0.0.3": "disconnected",
	}}
	s := NewSettingsHandler(testDisplayResolver(), src, nil, nil, zerolog.Nop())

	rec := doGet(t, s.HandleBackupStatus, "/backup-status")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"10.0.0.2":"connected","10.0.0.3":"disconnected"}`, rec.Body.String())
}

func TestHandleBackupStatusWithoutReplication(t *testing.T) {
	s := NewSettingsHandler(testDisplayResolver(), nil, nil, nil, zerolog.Nop())

	rec := doGet(t, s.HandleBackupStatus, "/backup-status")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{}`, rec.Body.String())
}

func TestHandleRecents(t *testing.T) {
	recents := &fakeRecents{entries: []db.HistoryEntry{
		{ID: 2, URL: "https://example.com/two", Title: "Two", OpenedAt: time.Now()},
		{ID: 1, URL: "https://example.com/one", OpenedAt: time.Now().Add(-time.Hour)},
	}}
	s := NewSettingsHandler(testDisplayResolver(), nil, recents, nil, zerolog.Nop())

	rec := doGet(t, s.HandleRecents, "/recents?limit=5")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, recents.limit)

	var got []db.HistoryEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "https://example.com/two", got[0].URL)
}

func TestHandleRecentsWithoutStore(t *testing.T) {
	s := NewSettingsHandler(testDisplayResolver(), nil, nil, nil, zerolog.Nop())

	rec := doGet(t, s.HandleRecents, "/recents")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String(), "no store still answers with an empty list")
}

func TestHandleRecentsQueryFailureIsEmptyList(t *testing.T) {
	recents := &fakeRecents{err: assert.AnError}
	s := NewSettingsHandler(testDisplayResolver(), nil, recents, nil, zerolog.Nop())

	rec := doGet(t, s.HandleRecents, "/recents")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

// loadConfigForTest backs the preference handlers with a real config file in
// a temp XDG dir.
func loadConfigForTest(t *testing.T) {
	t.Helper()
	t.Setenv("ENV", "")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	_, err := config.Load()
	require.NoError(t, err)
}

func doSettingsPost(t *testing.T, h http.HandlerFunc, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestHandleSetPreferencesPersists(t *testing.T) {
	loadConfigForTest(t)
	s := NewSettingsHandler(testDisplayResolver(), nil, nil, nil, zerolog.Nop())

	rec := doSettingsPost(t, s.HandleSetPreferences, "/preferences", `{"displays.notes": 2}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, config.Get().Displays.Notes)

	// The GET side serves the updated store.
	rec = doGet(t, s.HandleGetPreferences, "/preferences")
	require.Equal(t, http.StatusOK, rec.Code)
	var prefs map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &prefs))
	displays, ok := prefs["displays"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 2, displays["notes"])

	// Untouched keys survive the partial update.
	assert.Equal(t, config.DefaultControlPort, config.Get().Server.ControlPort)
}

func TestHandleSetPreferencesRejectsInvalidUpdate(t *testing.T) {
	loadConfigForTest(t)
	s := NewSettingsHandler(testDisplayResolver(), nil, nil, nil, zerolog.Nop())

	rec := doSettingsPost(t, s.HandleSetPreferences, "/preferences", `{"mode":"follower"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, config.ModeStandalone, config.Get().Mode, "rejected update must not apply")

	rec = doSettingsPost(t, s.HandleSetPreferences, "/preferences", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleSetPresetPersistsSlot(t *testing.T) {
	loadConfigForTest(t)
	s := NewSettingsHandler(testDisplayResolver(), nil, nil, nil, zerolog.Nop())

	rec := doSettingsPost(t, s.HandleSetPreset, "/presets",
		`{"preset":2,"name":"Town Hall","url":"https://docs.google.com/presentation/d/abc/present"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	presets := config.Get().Presets
	require.Len(t, presets, config.PresetSlots)
	assert.Equal(t, "Town Hall", presets[1].Name)
	assert.Equal(t, "https://docs.google.com/presentation/d/abc/present", presets[1].URL)
	assert.Equal(t, "", presets[0].URL, "other slots untouched")

	rec = doGet(t, s.HandleGetPresets, "/presets")
	require.Equal(t, http.StatusOK, rec.Code)
	var got []config.Preset
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, config.PresetSlots)
	assert.Equal(t, "Town Hall", got[1].Name)
}

func TestHandleSetPresetValidation(t *testing.T) {
	loadConfigForTest(t)
	s := NewSettingsHandler(testDisplayResolver(), nil, nil, nil, zerolog.Nop())

	for _, body := range []string{`{"preset":0}`, `{"preset":4}`, `{}`} {
		rec := doSettingsPost(t, s.HandleSetPreset, "/presets", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %s", body)
	}
}

func TestHandleEventsWithoutHub(t *testing.T) {
	s := NewSettingsHandler(testDisplayResolver(), nil, nil, nil, zerolog.Nop())

	rec := doGet(t, s.HandleEvents, "/events")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
