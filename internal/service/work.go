package service

import (
	"context"
	"fmt"

	"github.com/keesschollaart/sprintgoal/internal/model"
)

// WorkClient is the host's teams and iterations API.
type WorkClient interface {
	Teams(ctx context.Context, projectID string) ([]model.Team, error)
	TeamIterations(ctx context.Context, teamCtx model.TeamContext, timeframe string) ([]model.Iteration, error)
}

type IterationService struct {
	work WorkClient
}

func NewIterationService(work WorkClient) *IterationService {
	return &IterationService{work: work}
}

// Current resolves the iteration the tab is shown for. The host passes the
// iteration id when the tab lives in an iteration view, otherwise the
// team's first current iteration is used.
func (s *IterationService) Current(ctx context.Context, wc *model.WebContext) (*model.Iteration, error) {
	if wc.IterationID != "" {
		return &model.Iteration{ID: wc.IterationID}, nil
	}

	iterations, err := s.work.TeamIterations(ctx, wc.TeamContext(), model.TimeframeCurrent)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoCurrentIteration, err)
	}
	if len(iterations) == 0 {
		return nil, ErrNoCurrentIteration
	}

	return &iterations[0], nil
}

// ConfigKey resolves the current iteration and composes the record key.
func (s *IterationService) ConfigKey(ctx context.Context, wc *model.WebContext) (string, error) {
	iteration, err := s.Current(ctx, wc)
	if err != nil {
		return "", err
	}
	return model.ConfigKey(iteration.ID, wc.Team.ID), nil
}
