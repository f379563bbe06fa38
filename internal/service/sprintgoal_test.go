package service

import (
	"context"
	"testing"

	"github.com/keesschollaart/sprintgoal/internal/cookie"
	"github.com/keesschollaart/sprintgoal/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tabFixture struct {
	data    *fakeData
	work    *fakeWork
	tracker *fakeTracker
	cookies *cookie.MemoryStore
	svc     *SprintGoalService
}

func newTabFixture() *tabFixture {
	f := &tabFixture{
		data: newFakeData(),
		work: &fakeWork{
			current: map[string][]model.Iteration{
				"team1": {{ID: "it1", Name: "Sprint 1"}, {ID: "it2", Name: "Sprint 2"}},
			},
		},
		tracker: &fakeTracker{},
		cookies: cookie.NewMemoryStore(),
	}
	f.svc = NewSprintGoalService(
		NewSettingsService(f.data),
		NewIterationService(f.work),
		NewTelemetryService(f.data, f.tracker),
	)
	return f
}

func TestTitle_CachedGoalRendersWithoutNetwork(t *testing.T) {
	f := newTabFixture()
	wc := testWebContext()
	wc.IterationID = "it1"
	cookie.WriteGoal(f.cookies, "it1team1", &model.SprintGoal{Goal: "Ship it", SprintGoalInTabLabel: true})

	title, err := f.svc.Title(context.Background(), wc, f.cookies)
	require.NoError(t, err)
	assert.Equal(t, "Goal: Ship it", title)
	assert.Zero(t, f.work.calls)
	assert.Zero(t, f.data.reads)
}

func TestTitle_CachedGoalWithoutTabLabel(t *testing.T) {
	f := newTabFixture()
	cookie.WriteGoal(f.cookies, "it1team1", &model.SprintGoal{Goal: "Ship it"})

	title, err := f.svc.Title(context.Background(), testWebContext(), f.cookies)
	require.NoError(t, err)
	assert.Equal(t, "Goal", title)
	assert.Zero(t, f.data.reads)
}

func TestTitle_EmptyRecordRendersDefault(t *testing.T) {
	f := newTabFixture()
	f.data.put("sprintConfig.it1team1", model.SprintGoal{Goal: "", SprintGoalInTabLabel: true})

	title, err := f.svc.Title(context.Background(), testWebContext(), f.cookies)
	require.NoError(t, err)
	assert.Equal(t, "Goal", title)
	assert.Equal(t, 1, f.data.reads)
}

func TestTitle_LoadsRecordAndFillsCache(t *testing.T) {
	f := newTabFixture()
	f.data.put("sprintConfig.it1team1", model.SprintGoal{Goal: "Ship it", SprintGoalInTabLabel: true, GoalAchieved: true})

	title, err := f.svc.Title(context.Background(), testWebContext(), f.cookies)
	require.NoError(t, err)
	assert.Equal(t, "Goal: Ship it", title)

	cached, ok := cookie.ReadGoal(f.cookies, "it1team1")
	require.True(t, ok)
	assert.Equal(t, "Ship it", cached.Goal)
	assert.False(t, cached.GoalAchieved)
}

func TestTitle_StoredGoalIgnoresTabLabelFlag(t *testing.T) {
	f := newTabFixture()
	f.data.put("sprintConfig.it1team1", model.SprintGoal{Goal: "Ship it", SprintGoalInTabLabel: false})

	title, err := f.svc.Title(context.Background(), testWebContext(), f.cookies)
	require.NoError(t, err)
	assert.Equal(t, "Goal: Ship it", title)
	assert.Equal(t, 1, f.data.reads)
}

func TestTitle_NoCurrentIteration(t *testing.T) {
	f := newTabFixture()
	f.work.current = nil

	title, err := f.svc.Title(context.Background(), testWebContext(), f.cookies)
	assert.Equal(t, "Goal", title)
	assert.Equal(t, KindNoCurrentIteration, KindOf(err))
}

func TestTitle_IterationLookupFailure(t *testing.T) {
	f := newTabFixture()
	f.work.iterErr = assert.AnError

	title, err := f.svc.Title(context.Background(), testWebContext(), f.cookies)
	assert.Equal(t, "Goal", title)
	assert.Equal(t, KindNoCurrentIteration, KindOf(err))
}

func TestTitle_StorageFailure(t *testing.T) {
	f := newTabFixture()
	f.data.readErr = assert.AnError

	title, err := f.svc.Title(context.Background(), testWebContext(), f.cookies)
	assert.Equal(t, "Goal", title)
	assert.Equal(t, KindStorageUnavailable, KindOf(err))
}

func TestSettings_PrefersCookieCache(t *testing.T) {
	f := newTabFixture()
	f.data.put("sprintConfig.it1team1", model.SprintGoal{Goal: "Stored"})
	cookie.WriteGoal(f.cookies, "it1team1", &model.SprintGoal{Goal: "Cached", SprintGoalInTabLabel: true})

	goal, err := f.svc.Settings(context.Background(), testWebContext(), f.cookies, false)
	require.NoError(t, err)
	assert.Equal(t, "Cached", goal.Goal)
	assert.Zero(t, f.data.reads)
}

func TestSettings_ForceReloadBypassesCache(t *testing.T) {
	f := newTabFixture()
	f.data.put("sprintConfig.it1team1", model.SprintGoal{Goal: "Stored", Details: "<p>d</p>"})
	cookie.WriteGoal(f.cookies, "it1team1", &model.SprintGoal{Goal: "Cached", SprintGoalInTabLabel: true})

	goal, err := f.svc.Settings(context.Background(), testWebContext(), f.cookies, true)
	require.NoError(t, err)
	assert.Equal(t, "Stored", goal.Goal)
	assert.Equal(t, "<p>d</p>", goal.Details)
	assert.Equal(t, 1, f.data.reads)

	cached, ok := cookie.ReadGoal(f.cookies, "it1team1")
	require.True(t, ok)
	assert.Equal(t, &model.SprintGoal{Goal: "Stored"}, cached)
}

func TestSettings_CookiesUnavailableReadsThrough(t *testing.T) {
	f := newTabFixture()
	f.cookies.Disable()
	f.data.put("sprintConfig.it1team1", model.SprintGoal{Goal: "Stored"})

	goal, err := f.svc.Settings(context.Background(), testWebContext(), f.cookies, false)
	require.NoError(t, err)
	assert.Equal(t, "Stored", goal.Goal)
	assert.Equal(t, 1, f.data.reads)
}

func TestSettings_NoRecordYet(t *testing.T) {
	f := newTabFixture()

	goal, err := f.svc.Settings(context.Background(), testWebContext(), f.cookies, true)
	assert.NoError(t, err)
	assert.Nil(t, goal)
}

func TestSettings_UsesHostIteration(t *testing.T) {
	f := newTabFixture()
	wc := testWebContext()
	wc.IterationID = "it9"
	f.data.put("sprintConfig.it9team1", model.SprintGoal{Goal: "Nine"})

	goal, err := f.svc.Settings(context.Background(), wc, f.cookies, true)
	require.NoError(t, err)
	assert.Equal(t, "Nine", goal.Goal)
	assert.Zero(t, f.work.calls)
}

func TestSave_OverwritesWholeRecord(t *testing.T) {
	f := newTabFixture()
	f.data.put("sprintConfig.it1team1", model.SprintGoal{Goal: "Y", GoalAchieved: true, Details: "<p>old</p>", DetailsPlain: "old"})

	saved, err := f.svc.Save(context.Background(), testWebContext(), f.cookies, SaveInput{Goal: "X"})
	require.NoError(t, err)
	assert.Equal(t, &model.SprintGoal{Goal: "X"}, saved)

	stored, err := NewSettingsService(f.data).Read(context.Background(), "it1team1")
	require.NoError(t, err)
	assert.Equal(t, &model.SprintGoal{Goal: "X"}, stored)

	cached, ok := cookie.ReadGoal(f.cookies, "it1team1")
	require.True(t, ok)
	assert.Equal(t, "X", cached.Goal)
}

func TestSave_DerivesPlainDetails(t *testing.T) {
	f := newTabFixture()

	saved, err := f.svc.Save(context.Background(), testWebContext(), f.cookies, SaveInput{
		Goal:                 "Ship it",
		SprintGoalInTabLabel: true,
		GoalAchieved:         true,
		Details:              "<div>Release <b>v2</b></div><div>to production</div>",
	})
	require.NoError(t, err)
	assert.Equal(t, "Release v2\nto production", saved.DetailsPlain)

	require.Len(t, f.tracker.events, 1)
	event := f.tracker.events[0]
	assert.Equal(t, EventSaveSettings, event.name)
	assert.Equal(t, "true", event.props["detailsUsed"])
	assert.Equal(t, "true", event.props["sprintGoalInTabLabel"])
}

func TestSave_ShortDetailsAreNotUsed(t *testing.T) {
	f := newTabFixture()

	_, err := f.svc.Save(context.Background(), testWebContext(), f.cookies, SaveInput{Goal: "g", Details: "<p>tiny</p>"})
	require.NoError(t, err)
	require.Len(t, f.tracker.events, 1)
	assert.Equal(t, "false", f.tracker.events[0].props["detailsUsed"])
}

func TestSave_TelemetryFailureDoesNotBlock(t *testing.T) {
	f := newTabFixture()
	f.tracker.err = assert.AnError

	_, err := f.svc.Save(context.Background(), testWebContext(), f.cookies, SaveInput{Goal: "X"})
	require.NoError(t, err)
	assert.Equal(t, 1, f.data.writes)
}

func TestSave_OptedOutSendsNoTelemetry(t *testing.T) {
	f := newTabFixture()
	f.data.put(model.TelemetryOptOutKey, true)

	_, err := f.svc.Save(context.Background(), testWebContext(), f.cookies, SaveInput{Goal: "X"})
	require.NoError(t, err)
	assert.Empty(t, f.tracker.events)
}

func TestSave_WriteFailureKeepsCache(t *testing.T) {
	f := newTabFixture()
	f.data.writeErr = assert.AnError
	cookie.WriteGoal(f.cookies, "it1team1", &model.SprintGoal{Goal: "Old"})

	_, err := f.svc.Save(context.Background(), testWebContext(), f.cookies, SaveInput{Goal: "New"})
	assert.Equal(t, KindStorageUnavailable, KindOf(err))

	cached, ok := cookie.ReadGoal(f.cookies, "it1team1")
	require.True(t, ok)
	assert.Equal(t, "Old", cached.Goal)
}

func TestSave_NoCurrentIteration(t *testing.T) {
	f := newTabFixture()
	f.work.current = nil

	_, err := f.svc.Save(context.Background(), testWebContext(), f.cookies, SaveInput{Goal: "X"})
	assert.Equal(t, KindNoCurrentIteration, KindOf(err))
	assert.Zero(t, f.data.writes)
}

func TestOnContextUpdated(t *testing.T) {
	f := newTabFixture()
	wc := testWebContext()

	assert.Equal(t, ActionReload, f.svc.OnContextUpdated(context.Background(), wc))

	wc.Foreground = false
	assert.Equal(t, ActionNone, f.svc.OnContextUpdated(context.Background(), wc))
	assert.True(t, f.svc.IsVisible(nil))
}

func TestAdminPageURI(t *testing.T) {
	tests := []struct {
		extensionID string
		want        string
	}{
		{"sprint-goal", "https://dev.azure.com/org/Fabrikam/_settings/keesschollaart.sprint-goal.SprintGoalWidget.Admin"},
		{"sprint-goal-dev", "https://dev.azure.com/org/Fabrikam/_settings/keesschollaart.sprint-goal-dev.SprintGoalWidget.Admin"},
		{"sprint-goal-acc", "https://dev.azure.com/org/Fabrikam/_settings/keesschollaart.sprint-goal-acc.SprintGoalWidget.Admin"},
	}

	for _, tt := range tests {
		t.Run(tt.extensionID, func(t *testing.T) {
			wc := testWebContext()
			wc.ExtensionID = tt.extensionID
			assert.Equal(t, tt.want, AdminPageURI(wc))
		})
	}
}

func TestSave_SanitizesDetails(t *testing.T) {
	f := newTabFixture()

	saved, err := f.svc.Save(context.Background(), testWebContext(), f.cookies, SaveInput{
		Goal:    "g",
		Details: `<p onclick="x()">hello</p><script>alert(1)</script>`,
	})
	require.NoError(t, err)
	assert.Equal(t, "<p>hello</p>", saved.Details)
	assert.Equal(t, "hello", saved.DetailsPlain)
}
