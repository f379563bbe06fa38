package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/keesschollaart/sprintgoal/internal/model"
	"github.com/keesschollaart/sprintgoal/internal/repository"
)

// SettingsService is the only writer of sprint goal records.
type SettingsService struct {
	data repository.ExtensionDataRepository
}

func NewSettingsService(data repository.ExtensionDataRepository) *SettingsService {
	return &SettingsService{data: data}
}

// Read returns the record for configKey. A missing record is (nil, nil);
// a failing store is (nil, ErrStorageUnavailable) and callers treat both as
// "not configured yet".
func (s *SettingsService) Read(ctx context.Context, configKey string) (*model.SprintGoal, error) {
	raw, err := s.data.Value(ctx, model.SettingsKey(configKey))
	if errors.Is(err, repository.ErrValueNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	return decodeGoal(raw)
}

// Write replaces the whole record, last writer wins.
func (s *SettingsService) Write(ctx context.Context, configKey string, goal *model.SprintGoal) error {
	err := s.data.SetValue(ctx, model.SettingsKey(configKey), goal)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	return nil
}

// ReadMany returns the records that exist, keyed by config key.
func (s *SettingsService) ReadMany(ctx context.Context, configKeys []string) (map[string]*model.SprintGoal, error) {
	storageKeys := make([]string, len(configKeys))
	for i, k := range configKeys {
		storageKeys[i] = model.SettingsKey(k)
	}

	values, err := s.data.Values(ctx, storageKeys)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	goals := make(map[string]*model.SprintGoal, len(values))
	for _, k := range configKeys {
		raw, ok := values[model.SettingsKey(k)]
		if !ok {
			continue
		}
		goal, err := decodeGoal(raw)
		if err != nil {
			return nil, fmt.Errorf("record %s: %w", k, err)
		}
		if goal != nil {
			goals[k] = goal
		}
	}
	return goals, nil
}

func decodeGoal(raw json.RawMessage) (*model.SprintGoal, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var goal model.SprintGoal
	err := json.Unmarshal(raw, &goal)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid record: %w", ErrStorageUnavailable, err)
	}
	return &goal, nil
}
