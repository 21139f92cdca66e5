// Package api exposes the machine-to-machine control surface and the
// settings surface over HTTP.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/deckpilot/deckpilot/internal/session"
)

// Commander is the session controller surface the HTTP layer drives.
type Commander interface {
	Open(ctx context.Context, url string, withNotes bool) error
	OpenPreset(ctx context.Context, n int, withNotes bool) error
	Close(ctx context.Context) error
	Reload(ctx context.Context) error
	Next(ctx context.Context) error
	Previous(ctx context.Context) error
	GoToSlide(ctx context.Context, n int) error
	ToggleVideo(ctx context.Context) error
	NotesOpen(ctx context.Context) error
	NotesClose(ctx context.Context) error
	NotesScroll(ctx context.Context, up bool) error
	NotesZoom(ctx context.Context, in bool) error
	Status(ctx context.Context) session.Status
}

// Forwarder mirrors an operator command to the configured backups.
// Fire-and-forget; nil when this instance is not a primary.
type Forwarder interface {
	Forward(command string, body []byte)
}

// Handler serves the control surface.
type Handler struct {
	cmd Commander
	fwd Forwarder
	log zerolog.Logger
}

// NewHandler creates a control handler. fwd may be nil.
func NewHandler(cmd Commander, fwd Forwarder, log zerolog.Logger) *Handler {
	return &Handler{cmd: cmd, fwd: fwd, log: log}
}

type openRequest struct {
	URL string `json:"url"`
}

type presetRequest struct {
	Preset int `json:"preset"`
}

type slideRequest struct {
	Slide int `json:"slide"`
}

// HandleStatus serves GET /status. Never errors: a closed session reports
// presentationOpen false with null slide fields.
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.cmd.Status(r.Context()))
}

// HandleOpen serves POST /open.
func (h *Handler) HandleOpen(w http.ResponseWriter, r *http.Request) {
	h.handleOpen(w, r, false, "open")
}

// HandleOpenWithNotes serves POST /open-with-notes.
func (h *Handler) HandleOpenWithNotes(w http.ResponseWriter, r *http.Request) {
	h.handleOpen(w, r, true, "open-with-notes")
}

func (h *Handler) handleOpen(w http.ResponseWriter, r *http.Request, withNotes bool, command string) {
	body, req, ok := decodeBody[openRequest](w, r)
	if !ok {
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}
	if err := h.cmd.Open(r.Context(), req.URL, withNotes); err != nil {
		h.commandError(w, command, err)
		return
	}
	h.forward(command, body)
	writeSuccess(w, "presentation opened")
}

// HandleOpenPreset serves POST /open-preset.
func (h *Handler) HandleOpenPreset(w http.ResponseWriter, r *http.Request) {
	body, req, ok := decodeBody[presetRequest](w, r)
	if !ok {
		return
	}
	if req.Preset < 1 || req.Preset > 3 {
		writeError(w, http.StatusBadRequest, "preset must be 1, 2, or 3")
		return
	}
	if err := h.cmd.OpenPreset(r.Context(), req.Preset, true); err != nil {
		h.commandError(w, "open-preset", err)
		return
	}
	h.forward("open-preset", body)
	writeSuccess(w, "preset opened")
}

// HandleClose serves POST /close. The response is written before teardown
// runs: teardown is scheduled for the next tick so a hung or throwing
// window operation cannot delay or corrupt the caller's response.
func (h *Handler) HandleClose(w http.ResponseWriter, r *http.Request) {
	h.forward("close", nil)
	writeSuccess(w, "closing")
	go func() {
		if err := h.cmd.Close(context.Background()); err != nil {
			h.log.Warn().Err(err).Msg("deferred close failed")
		}
	}()
}

// HandleReload serves POST /reload. Reload recovers a single malfunctioning
// machine; it is deliberately never forwarded to backups.
func (h *Handler) HandleReload(w http.ResponseWriter, r *http.Request) {
	if err := h.cmd.Reload(r.Context()); err != nil {
		h.commandError(w, "reload", err)
		return
	}
	writeSuccess(w, "presentation reloaded")
}

// HandleNext serves POST /next.
func (h *Handler) HandleNext(w http.ResponseWriter, r *http.Request) {
	if err := h.cmd.Next(r.Context()); err != nil {
		h.commandError(w, "next", err)
		return
	}
	h.forward("next", nil)
	writeSuccess(w, "")
}

// HandlePrevious serves POST /previous.
func (h *Handler) HandlePrevious(w http.ResponseWriter, r *http.Request) {
	if err := h.cmd.Previous(r.Context()); err != nil {
		h.commandError(w, "previous", err)
		return
	}
	h.forward("previous", nil)
	writeSuccess(w, "")
}

// HandleGoToSlide serves POST /go-to-slide.
func (h *Handler) HandleGoToSlide(w http.ResponseWriter, r *http.Request) {
	_, req, ok := decodeBody[slideRequest](w, r)
	if !ok {
		return
	}
	if req.Slide < 1 {
		writeError(w, http.StatusBadRequest, "slide must be a positive integer")
		return
	}
	if err := h.cmd.GoToSlide(r.Context(), req.Slide); err != nil {
		h.commandError(w, "go-to-slide", err)
		return
	}
	writeSuccess(w, "")
}

// HandleToggleVideo serves POST /toggle-video.
func (h *Handler) HandleToggleVideo(w http.ResponseWriter, r *http.Request) {
	if err := h.cmd.ToggleVideo(r.Context()); err != nil {
		h.commandError(w, "toggle-video", err)
		return
	}
	h.forward("toggle-video", nil)
	writeSuccess(w, "")
}

// HandleNotesOpen serves POST /notes/open.
func (h *Handler) HandleNotesOpen(w http.ResponseWriter, r *http.Request) {
	if err := h.cmd.NotesOpen(r.Context()); err != nil {
		h.commandError(w, "notes/open", err)
		return
	}
	h.forward("notes/open", nil)
	writeSuccess(w, "")
}

// HandleNotesClose serves POST /notes/close.
func (h *Handler) HandleNotesClose(w http.ResponseWriter, r *http.Request) {
	if err := h.cmd.NotesClose(r.Context()); err != nil {
		h.commandError(w, "notes/close", err)
		return
	}
	h.forward("notes/close", nil)
	writeSuccess(w, "")
}

// HandleNotesScroll serves POST /notes/scroll-up and /notes/scroll-down.
func (h *Handler) HandleNotesScroll(up bool) http.HandlerFunc {
	command := "notes/scroll-down"
	if up {
		command = "notes/scroll-up"
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.cmd.NotesScroll(r.Context(), up); err != nil {
			h.commandError(w, command, err)
			return
		}
		h.forward(command, nil)
		writeSuccess(w, "")
	}
}

// HandleNotesZoom serves POST /notes/zoom-in and /notes/zoom-out.
func (h *Handler) HandleNotesZoom(in bool) http.HandlerFunc {
	command := "notes/zoom-out"
	if in {
		command = "notes/zoom-in"
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.cmd.NotesZoom(r.Context(), in); err != nil {
			h.commandError(w, command, err)
			return
		}
		h.forward(command, nil)
		writeSuccess(w, "")
	}
}

// commandError maps controller errors onto the envelope: missing session or
// notes window is the caller asking for something that is not there (404);
// everything else is a window-system failure reported per-request (500).
func (h *Handler) commandError(w http.ResponseWriter, command string, err error) {
	h.log.Warn().Err(err).Str("command", command).Msg("command failed")
	switch {
	case errors.Is(err, session.ErrNoSession), errors.Is(err, session.ErrNoNotes), errors.Is(err, session.ErrNoPreset):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (h *Handler) forward(command string, body []byte) {
	if h.fwd != nil {
		h.fwd.Forward(command, body)
	}
}

// decodeBody reads and decodes a JSON body, keeping the raw bytes for
// replication. An empty body decodes to the zero request.
func decodeBody[T any](w http.ResponseWriter, r *http.Request) ([]byte, T, bool) {
	var req T
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return nil, req, false
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return body, req, true
	}
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return nil, req, false
	}
	return body, req, true
}
