package service

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"

	"github.com/keesschollaart/sprintgoal/internal/model"
	"github.com/keesschollaart/sprintgoal/internal/repository"
)

type fakeData struct {
	mu        sync.Mutex
	values    map[string]json.RawMessage
	readErr   error
	writeErr  error
	reads     int
	bulkReads int
	writes    int
}

func newFakeData() *fakeData {
	return &fakeData{values: make(map[string]json.RawMessage)}
}

func (f *fakeData) put(key string, value any) {
	data, _ := json.Marshal(value)
	f.values[key] = data
}

func (f *fakeData) Value(_ context.Context, key string) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	if f.readErr != nil {
		return nil, f.readErr
	}
	v, ok := f.values[key]
	if !ok {
		return nil, repository.ErrValueNotFound
	}
	return v, nil
}

func (f *fakeData) Values(_ context.Context, keys []string) (map[string]json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bulkReads++
	if f.readErr != nil {
		return nil, f.readErr
	}
	out := make(map[string]json.RawMessage)
	for _, k := range keys {
		if v, ok := f.values[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

func (f *fakeData) SetValue(_ context.Context, key string, value any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	if f.writeErr != nil {
		return f.writeErr
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.values[key] = data
	return nil
}

type fakeWork struct {
	mu         sync.Mutex
	teams      []model.Team
	iterations map[string][]model.Iteration // by team id, all iterations
	current    map[string][]model.Iteration // by team id
	teamsErr   error
	iterErr    error
	calls      int

	// teamsStarted is closed when Teams is first entered, which then waits
	// for teamsGate or the context.
	teamsStarted chan struct{}
	teamsGate    chan struct{}
	teamsOnce    sync.Once
	teamsEntered atomic.Int32
}

func (f *fakeWork) Teams(ctx context.Context, _ string) ([]model.Team, error) {
	f.teamsEntered.Add(1)
	if f.teamsGate != nil {
		f.teamsOnce.Do(func() { close(f.teamsStarted) })
		select {
		case <-f.teamsGate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.teamsErr != nil {
		return nil, f.teamsErr
	}
	return f.teams, nil
}

func (f *fakeWork) TeamIterations(_ context.Context, teamCtx model.TeamContext, timeframe string) ([]model.Iteration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.iterErr != nil {
		return nil, f.iterErr
	}
	if timeframe == model.TimeframeCurrent {
		return f.current[teamCtx.TeamID], nil
	}
	return f.iterations[teamCtx.TeamID], nil
}

type fakeTracker struct {
	mu     sync.Mutex
	events []trackedEvent
	err    error
}

type trackedEvent struct {
	name  string
	props map[string]string
}

func (f *fakeTracker) TrackEvent(_ context.Context, name string, props map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, trackedEvent{name: name, props: props})
	return f.err
}

func testWebContext() *model.WebContext {
	return &model.WebContext{
		HostURI:     "https://dev.azure.com/org/",
		Project:     model.Project{ID: "p1", Name: "Fabrikam"},
		Team:        model.Team{ID: "team1", Name: "Team One"},
		ExtensionID: "sprint-goal",
		Foreground:  true,
	}
}
