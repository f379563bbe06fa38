package model

// SprintGoal is the record stored per team per iteration.
// DetailsPlain is derived from Details when the record is saved.
type SprintGoal struct {
	Goal                 string `json:"goal"`
	SprintGoalInTabLabel bool   `json:"sprintGoalInTabLabel"`
	GoalAchieved         bool   `json:"goalAchieved"`
	Details              string `json:"details"`
	DetailsPlain         string `json:"detailsPlain"`
}

// DefaultSprintGoal is what a form shows when no record exists yet.
func DefaultSprintGoal() *SprintGoal {
	return &SprintGoal{}
}

// HasGoal reports whether the goal text is set.
func (g *SprintGoal) HasGoal() bool {
	return g != nil && g.Goal != ""
}
