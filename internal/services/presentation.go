// Package services glues the session controller to the stores around it.
package services

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/deckpilot/deckpilot/internal/db"
	"github.com/deckpilot/deckpilot/internal/session"
)

// PresentationService wraps the session controller with open-history
// recording. It is the Commander the HTTP layer drives.
type PresentationService struct {
	ctrl    *session.Controller
	history *db.HistoryStore
	log     zerolog.Logger

	mu            sync.Mutex
	recordedURL   string
	recordedTitle string
}

// NewPresentationService creates the service; history may be nil.
func NewPresentationService(ctrl *session.Controller, history *db.HistoryStore, log zerolog.Logger) *PresentationService {
	return &PresentationService{ctrl: ctrl, history: history, log: log}
}

// Open opens a deck and records it in the open history.
func (s *PresentationService) Open(ctx context.Context, url string, withNotes bool) error {
	if err := s.ctrl.Open(ctx, url, withNotes); err != nil {
		return err
	}
	s.recordOpen(ctx, url, withNotes)
	return nil
}

// OpenPreset opens a preset slot and records the resolved URL.
func (s *PresentationService) OpenPreset(ctx context.Context, n int, withNotes bool) error {
	if err := s.ctrl.OpenPreset(ctx, n, withNotes); err != nil {
		return err
	}
	st := s.ctrl.Status(ctx)
	s.recordOpen(ctx, st.PresentationURL, withNotes)
	return nil
}

// Status reports session state and opportunistically backfills the scraped
// deck title into the history record once it is known.
func (s *PresentationService) Status(ctx context.Context) session.Status {
	st := s.ctrl.Status(ctx)
	s.backfillTitle(ctx, st)
	return st
}

// Close delegates to the controller.
func (s *PresentationService) Close(ctx context.Context) error { return s.ctrl.Close(ctx) }

// Reload delegates to the controller.
func (s *PresentationService) Reload(ctx context.Context) error { return s.ctrl.Reload(ctx) }

// Next delegates to the controller.
func (s *PresentationService) Next(ctx context.Context) error { return s.ctrl.Next(ctx) }

// Previous delegates to the controller.
func (s *PresentationService) Previous(ctx context.Context) error { return s.ctrl.Previous(ctx) }

// GoToSlide delegates to the controller.
func (s *PresentationService) GoToSlide(ctx context.Context, n int) error {
	return s.ctrl.GoToSlide(ctx, n)
}

// ToggleVideo delegates to the controller.
func (s *PresentationService) ToggleVideo(ctx context.Context) error { return s.ctrl.ToggleVideo(ctx) }

// NotesOpen delegates to the controller.
func (s *PresentationService) NotesOpen(ctx context.Context) error { return s.ctrl.NotesOpen(ctx) }

// NotesClose delegates to the controller.
func (s *PresentationService) NotesClose(ctx context.Context) error { return s.ctrl.NotesClose(ctx) }

// NotesScroll delegates to the controller.
func (s *PresentationService) NotesScroll(ctx context.Context, up bool) error {
	return s.ctrl.NotesScroll(ctx, up)
}

// NotesZoom delegates to the controller.
func (s *PresentationService) NotesZoom(ctx context.Context, in bool) error {
	return s.ctrl.NotesZoom(ctx, in)
}

func (s *PresentationService) recordOpen(ctx context.Context, url string, withNotes bool) {
	if s.history == nil || url == "" {
		return
	}
	s.mu.Lock()
	s.recordedURL = url
	s.recordedTitle = ""
	s.mu.Unlock()

	if err := s.history.RecordOpen(ctx, url, "", withNotes); err != nil {
		s.log.Warn().Err(err).Msg("failed to record open history")
	}
}

func (s *PresentationService) backfillTitle(ctx context.Context, st session.Status) {
	if s.history == nil || !st.PresentationOpen || st.PresentationTitle == "" {
		return
	}
	s.mu.Lock()
	stale := st.PresentationURL != s.recordedURL || st.PresentationTitle == s.recordedTitle
	if !stale {
		s.recordedTitle = st.PresentationTitle
	}
	s.mu.Unlock()
	if stale {
		return
	}
	if err := s.history.UpdateTitle(ctx, st.PresentationURL, st.PresentationTitle); err != nil {
		s.log.Warn().Err(err).Msg("failed to backfill history title")
	}
}
