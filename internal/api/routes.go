package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// ControlRouter builds the command surface served on the control port.
// The same shape is what a primary calls on each backup.
func ControlRouter(h *Handler, middleware ...mux.MiddlewareFunc) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware...)

	r.HandleFunc("/status", h.HandleStatus).Methods(http.MethodGet)

	r.HandleFunc("/open", h.HandleOpen).Methods(http.MethodPost)
	r.HandleFunc("/open-with-notes", h.HandleOpenWithNotes).Methods(http.MethodPost)
	r.HandleFunc("/open-preset", h.HandleOpenPreset).Methods(http.MethodPost)
	r.HandleFunc("/close", h.HandleClose).Methods(http.MethodPost)
	r.HandleFunc("/reload", h.HandleReload).Methods(http.MethodPost)

	r.HandleFunc("/next", h.HandleNext).Methods(http.MethodPost)
	r.HandleFunc("/previous", h.HandlePrevious).Methods(http.MethodPost)
	r.HandleFunc("/go-to-slide", h.HandleGoToSlide).Methods(http.MethodPost)
	r.HandleFunc("/toggle-video", h.HandleToggleVideo).Methods(http.MethodPost)

	r.HandleFunc("/notes/open", h.HandleNotesOpen).Methods(http.MethodPost)
	r.HandleFunc("/notes/close", h.HandleNotesClose).Methods(http.MethodPost)
	r.HandleFunc("/notes/scroll-up", h.HandleNotesScroll(true)).Methods(http.MethodPost)
	r.HandleFunc("/notes/scroll-down", h.HandleNotesScroll(false)).Methods(http.MethodPost)
	r.HandleFunc("/notes/zoom-in", h.HandleNotesZoom(true)).Methods(http.MethodPost)
	r.HandleFunc("/notes/zoom-out", h.HandleNotesZoom(false)).Methods(http.MethodPost)

	return r
}

// SettingsRouter builds the settings surface served on the settings port.
// It carries the control surface too so the remote UI needs one base URL.
func SettingsRouter(h *Handler, s *SettingsHandler, middleware ...mux.MiddlewareFunc) *mux.Router {
	r := ControlRouter(h, middleware...)

	r.HandleFunc("/preferences", s.HandleGetPreferences).Methods(http.MethodGet)
	r.HandleFunc("/preferences", s.HandleSetPreferences).Methods(http.MethodPost)
	r.HandleFunc("/preferences/schema", s.HandlePreferencesSchema).Methods(http.MethodGet)

	r.HandleFunc("/presets", s.HandleGetPresets).Methods(http.MethodGet)
	r.HandleFunc("/presets", s.HandleSetPreset).Methods(http.MethodPost)

	r.HandleFunc("/displays", s.HandleDisplays).Methods(http.MethodGet)
	r.HandleFunc("/backup-status", s.HandleBackupStatus).Methods(http.MethodGet)
	r.HandleFunc("/recents", s.HandleRecents).Methods(http.MethodGet)
	r.HandleFunc("/events", s.HandleEvents).Methods(http.MethodGet)

	return r
}
