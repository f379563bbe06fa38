package devops

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/keesschollaart/sprintgoal/internal/model"
)

const teamsPageSize = 100

type listResponse[T any] struct {
	Count int `json:"count"`
	Value []T `json:"value"`
}

type iterationDTO struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Path       string `json:"path"`
	Attributes struct {
		StartDate  *time.Time `json:"startDate"`
		FinishDate *time.Time `json:"finishDate"`
		TimeFrame  string     `json:"timeFrame"`
	} `json:"attributes"`
}

// Teams returns every team of a project.
func (c *Client) Teams(ctx context.Context, projectID string) ([]model.Team, error) {
	var teams []model.Team
	base := c.orgURL + "/_apis/projects/" + url.PathEscape(projectID) + "/teams"

	for skip := 0; ; skip += teamsPageSize {
		query := url.Values{}
		query.Set("$top", strconv.Itoa(teamsPageSize))
		query.Set("$skip", strconv.Itoa(skip))

		var page listResponse[model.Team]
		err := c.do(ctx, http.MethodGet, withVersion(base, query), nil, &page)
		if err != nil {
			return nil, err
		}

		teams = append(teams, page.Value...)
		if len(page.Value) < teamsPageSize {
			return teams, nil
		}
	}
}

// TeamIterations returns the iterations of a team. An empty timeframe
// returns all of them, model.TimeframeCurrent only the current one.
func (c *Client) TeamIterations(ctx context.Context, teamCtx model.TeamContext, timeframe string) ([]model.Iteration, error) {
	base := c.orgURL + "/" + url.PathEscape(teamCtx.ProjectID) + "/" + url.PathEscape(teamCtx.TeamID) +
		"/_apis/work/teamsettings/iterations"

	query := url.Values{}
	if timeframe != "" {
		query.Set("$timeframe", timeframe)
	}

	var resp listResponse[iterationDTO]
	err := c.do(ctx, http.MethodGet, withVersion(base, query), nil, &resp)
	if err != nil {
		return nil, err
	}

	iterations := make([]model.Iteration, 0, len(resp.Value))
	for _, it := range resp.Value {
		iterations = append(iterations, model.Iteration{
			ID:         it.ID,
			Name:       it.Name,
			Path:       it.Path,
			StartDate:  it.Attributes.StartDate,
			FinishDate: it.Attributes.FinishDate,
			TimeFrame:  it.Attributes.TimeFrame,
		})
	}
	return iterations, nil
}
