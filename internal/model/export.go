package model

// ExportRow joins a sprint goal with the team, iteration and project it belongs to.
type ExportRow struct {
	Details              string `json:"details"`
	DetailsPlain         string `json:"detailsPlain"`
	Goal                 string `json:"goal"`
	GoalAchieved         bool   `json:"goalAchieved"`
	SprintGoalInTabLabel bool   `json:"sprintGoalInTabLabel"`
	IterationID          string `json:"iterationId"`
	IterationName        string `json:"iterationName"`
	TeamID               string `json:"teamId"`
	TeamName             string `json:"teamName"`
	ProjectID            string `json:"projectId"`
	ProjectName          string `json:"projectName"`
}

// NewExportRow denormalizes goal with its identifying fields.
func NewExportRow(goal *SprintGoal, team Team, iteration Iteration, project Project) ExportRow {
	return ExportRow{
		Details:              goal.Details,
		DetailsPlain:         goal.DetailsPlain,
		Goal:                 goal.Goal,
		GoalAchieved:         goal.GoalAchieved,
		SprintGoalInTabLabel: goal.SprintGoalInTabLabel,
		IterationID:          iteration.ID,
		IterationName:        iteration.Name,
		TeamID:               team.ID,
		TeamName:             team.Name,
		ProjectID:            project.ID,
		ProjectName:          project.Name,
	}
}
