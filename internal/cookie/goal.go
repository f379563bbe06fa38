package cookie

import (
	"strconv"

	"github.com/keesschollaart/sprintgoal/internal/model"
)

// Only the goal text and the tab label flag are cached. Details and the
// achieved flag always come from extension data.
const (
	goalTextSuffix   = "goalText"
	inTabLabelSuffix = "sprintGoalInTabLabel"
)

// ReadGoal returns the cached goal for configKey. A missing or empty goal
// text counts as no cache.
func ReadGoal(s Store, configKey string) (*model.SprintGoal, bool) {
	goal, ok := s.Get(configKey + goalTextSuffix)
	if !ok || goal == "" {
		return nil, false
	}

	inTabLabel, _ := s.Get(configKey + inTabLabelSuffix)
	return &model.SprintGoal{
		Goal:                 goal,
		SprintGoalInTabLabel: inTabLabel == "true",
	}, true
}

// WriteGoal caches goal for configKey. A nil goal caches the defaults.
func WriteGoal(s Store, configKey string, goal *model.SprintGoal) {
	if goal == nil {
		goal = model.DefaultSprintGoal()
	}
	s.Set(configKey+goalTextSuffix, goal.Goal)
	s.Set(configKey+inTabLabelSuffix, strconv.FormatBool(goal.SprintGoalInTabLabel))
}
