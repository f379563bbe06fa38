package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"

	"github.com/getsentry/sentry-go"
	"github.com/keesschollaart/sprintgoal/internal/model"
	"github.com/keesschollaart/sprintgoal/internal/repository"
)

const (
	EventPageView     = "PageView"
	EventSaveSettings = "SaveSettings"
	EventExport       = "Export"
)

// Tracker delivers telemetry events.
type Tracker interface {
	TrackEvent(ctx context.Context, name string, props map[string]string) error
}

// SentryTracker sends events as info level Sentry messages.
type SentryTracker struct{}

func (SentryTracker) TrackEvent(ctx context.Context, name string, props map[string]string) error {
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}

	event := sentry.NewEvent()
	event.Level = sentry.LevelInfo
	event.Message = name
	event.Tags = props

	if hub.CaptureEvent(event) == nil {
		return errors.New("sentry dropped telemetry event")
	}
	return nil
}

// LogTracker writes events to the structured log.
type LogTracker struct{}

func (LogTracker) TrackEvent(_ context.Context, name string, props map[string]string) error {
	args := make([]any, 0, len(props)*2+2)
	args = append(args, "event", name)
	for k, v := range props {
		args = append(args, k, v)
	}
	slog.Info("telemetry event", args...)
	return nil
}

type TelemetryService struct {
	data    repository.ExtensionDataRepository
	tracker Tracker
}

func NewTelemetryService(data repository.ExtensionDataRepository, tracker Tracker) *TelemetryService {
	return &TelemetryService{
		data:    data,
		tracker: tracker,
	}
}

// OptOut reads the opt-out flag. Any failure reads as false; the error
// only tells which path was taken.
func (s *TelemetryService) OptOut(ctx context.Context) (bool, error) {
	raw, err := s.data.Value(ctx, model.TelemetryOptOutKey)
	if errors.Is(err, repository.ErrValueNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	var optOut bool
	err = json.Unmarshal(raw, &optOut)
	if err != nil {
		return false, fmt.Errorf("%w: invalid opt-out value: %w", ErrStorageUnavailable, err)
	}
	return optOut, nil
}

func (s *TelemetryService) SetOptOut(ctx context.Context, optOut bool) error {
	err := s.data.SetValue(ctx, model.TelemetryOptOutKey, optOut)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	return nil
}

// Track sends an event unless the organization opted out. Failures are
// logged and swallowed.
func (s *TelemetryService) Track(ctx context.Context, wc *model.WebContext, name string, props map[string]string) {
	if s == nil || s.tracker == nil {
		return
	}

	optOut, _ := s.OptOut(ctx)
	if optOut {
		return
	}

	tags := make(map[string]string, len(props)+2)
	maps.Copy(tags, props)
	if wc != nil {
		tags["extensionId"] = wc.ExtensionID
		tags["projectId"] = wc.Project.ID
	}

	err := s.tracker.TrackEvent(ctx, name, tags)
	if err != nil {
		slog.Debug("telemetry event dropped", "event", name, "error", err)
	}
}
