package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/deckpilot/deckpilot/internal/config"
	"github.com/deckpilot/deckpilot/internal/db"
	"github.com/deckpilot/deckpilot/internal/display"
)

// BackupStatusSource reports the current per-backup health map.
type BackupStatusSource interface {
	Statuses() map[string]string
}

// RecentLister lists recent deck opens.
type RecentLister interface {
	Recent(ctx context.Context, limit int) ([]db.HistoryEntry, error)
}

// SettingsHandler serves the settings surface consumed by the desktop
// settings screen and the browser-based remote UI.
type SettingsHandler struct {
	displays *display.Resolver
	backups  BackupStatusSource
	recents  RecentLister
	hub      *Hub
	log      zerolog.Logger
}

// NewSettingsHandler creates the settings handler. backups and recents may
// be nil when the instance has no replication or history store.
func NewSettingsHandler(displays *display.Resolver, backups BackupStatusSource, recents RecentLister, hub *Hub, log zerolog.Logger) *SettingsHandler {
	return &SettingsHandler{displays: displays, backups: backups, recents: recents, hub: hub, log: log}
}

// HandleGetPreferences serves GET /preferences.
func (h *SettingsHandler) HandleGetPreferences(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, config.Snapshot())
}

// HandleSetPreferences serves POST /preferences with a partial key/value
// update. Invalid updates are rejected without touching the stored config.
func (h *SettingsHandler) HandleSetPreferences(w http.ResponseWriter, r *http.Request) {
	_, partial, ok := decodeBody[map[string]any](w, r)
	if !ok {
		return
	}
	if len(partial) == 0 {
		writeError(w, http.StatusBadRequest, "no preferences given")
		return
	}
	if _, err := config.Apply(partial); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeSuccess(w, "preferences updated")
}

// HandlePreferencesSchema serves GET /preferences/schema.
func (h *SettingsHandler) HandlePreferencesSchema(w http.ResponseWriter, r *http.Request) {
	data, err := config.SchemaJSON()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

// HandleGetPresets serves GET /presets.
func (h *SettingsHandler) HandleGetPresets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, config.Get().Presets)
}

type presetUpdate struct {
	Preset int    `json:"preset"`
	Name   string `json:"name"`
	URL    string `json:"url"`
}

// HandleSetPreset serves POST /presets, binding one of the three slots.
func (h *SettingsHandler) HandleSetPreset(w http.ResponseWriter, r *http.Request) {
	_, req, ok := decodeBody[presetUpdate](w, r)
	if !ok {
		return
	}
	if req.Preset < 1 || req.Preset > config.PresetSlots {
		writeError(w, http.StatusBadRequest, "preset must be 1, 2, or 3")
		return
	}

	presets := make([]config.Preset, config.PresetSlots)
	copy(presets, config.Get().Presets)
	presets[req.Preset-1] = config.Preset{Name: req.Name, URL: req.URL}

	if _, err := config.Apply(map[string]any{"presets": presets}); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeSuccess(w, "preset saved")
}

// HandleDisplays serves GET /displays.
func (h *SettingsHandler) HandleDisplays(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.displays.List())
}

// HandleBackupStatus serves GET /backup-status. Instances without
// replication report an empty map.
func (h *SettingsHandler) HandleBackupStatus(w http.ResponseWriter, r *http.Request) {
	statuses := map[string]string{}
	if h.backups != nil {
		statuses = h.backups.Statuses()
	}
	writeJSON(w, http.StatusOK, statuses)
}

// HandleRecents serves GET /recents?limit=.
func (h *SettingsHandler) HandleRecents(w http.ResponseWriter, r *http.Request) {
	if h.recents == nil {
		writeJSON(w, http.StatusOK, []db.HistoryEntry{})
		return
	}
	limit := 20
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = n
		}
	}
	entries, err := h.recents.Recent(r.Context(), limit)
	if err != nil {
		h.log.Warn().Err(err).Msg("history query failed")
		writeJSON(w, http.StatusOK, []db.HistoryEntry{})
		return
	}
	if entries == nil {
		entries = []db.HistoryEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// HandleEvents serves GET /events, upgrading to a websocket push stream.
func (h *SettingsHandler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		writeError(w, http.StatusNotFound, "events not available")
		return
	}
	h.hub.ServeWS(w, r)
}
