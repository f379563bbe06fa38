package service

import (
	"context"
	"testing"

	"github.com/keesschollaart/sprintgoal/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptOut(t *testing.T) {
	data := newFakeData()
	svc := NewTelemetryService(data, &fakeTracker{})

	optOut, err := svc.OptOut(context.Background())
	require.NoError(t, err)
	assert.False(t, optOut)

	require.NoError(t, svc.SetOptOut(context.Background(), true))
	optOut, err = svc.OptOut(context.Background())
	require.NoError(t, err)
	assert.True(t, optOut)
}

func TestOptOut_ReadFailure(t *testing.T) {
	data := newFakeData()
	data.readErr = assert.AnError
	svc := NewTelemetryService(data, &fakeTracker{})

	optOut, err := svc.OptOut(context.Background())
	assert.False(t, optOut)
	assert.Equal(t, KindStorageUnavailable, KindOf(err))
}

func TestOptOut_InvalidValue(t *testing.T) {
	data := newFakeData()
	data.put(model.TelemetryOptOutKey, "yes")
	svc := NewTelemetryService(data, &fakeTracker{})

	optOut, err := svc.OptOut(context.Background())
	assert.False(t, optOut)
	assert.Equal(t, KindStorageUnavailable, KindOf(err))
}

func TestSetOptOut_WriteFailure(t *testing.T) {
	data := newFakeData()
	data.writeErr = assert.AnError
	svc := NewTelemetryService(data, &fakeTracker{})

	err := svc.SetOptOut(context.Background(), true)
	assert.Equal(t, KindStorageUnavailable, KindOf(err))
}

func TestTrack(t *testing.T) {
	tracker := &fakeTracker{}
	svc := NewTelemetryService(newFakeData(), tracker)

	svc.Track(context.Background(), testWebContext(), EventPageView, map[string]string{"page": "tab"})

	require.Len(t, tracker.events, 1)
	assert.Equal(t, EventPageView, tracker.events[0].name)
	assert.Equal(t, map[string]string{
		"page":        "tab",
		"extensionId": "sprint-goal",
		"projectId":   "p1",
	}, tracker.events[0].props)
}

func TestTrack_OptedOut(t *testing.T) {
	data := newFakeData()
	data.put(model.TelemetryOptOutKey, true)
	tracker := &fakeTracker{}
	svc := NewTelemetryService(data, tracker)

	svc.Track(context.Background(), testWebContext(), EventPageView, nil)
	assert.Empty(t, tracker.events)
}

func TestTrack_OptOutUnreadableStillTracks(t *testing.T) {
	data := newFakeData()
	data.readErr = assert.AnError
	tracker := &fakeTracker{}
	svc := NewTelemetryService(data, tracker)

	svc.Track(context.Background(), testWebContext(), EventPageView, nil)
	assert.Len(t, tracker.events, 1)
}

func TestTrack_NilServiceIsNoop(t *testing.T) {
	var svc *TelemetryService
	assert.NotPanics(t, func() {
		svc.Track(context.Background(), testWebContext(), EventPageView, nil)
	})
}

func TestLogTracker(t *testing.T) {
	err := LogTracker{}.TrackEvent(context.Background(), EventExport, map[string]string{"rows": "2"})
	assert.NoError(t, err)
}
