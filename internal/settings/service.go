// Package settings manages the admin-tunable key/value configuration rows.
package settings

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"quiz-event/internal/apperr"
	"quiz-event/internal/models"
	"quiz-event/internal/repository"

	"gorm.io/datatypes"
)

const KeyQuestionsVisible = "questions.visible"

// Defaults is the single table of fallback values for settings that were
// never written. Keys missing from both storage and Defaults read as true.
var Defaults = map[string]interface{}{
	KeyQuestionsVisible: true,
}

var ErrInvalidValue = apperr.InvalidInput("Value must be a boolean, string or number")

type Service struct {
	repo repository.SettingRepository
}

func NewService(repo repository.SettingRepository) *Service {
	return &Service{repo: repo}
}

func fallback(key string) interface{} {
	if v, ok := Defaults[key]; ok {
		return v
	}
	return true
}

func decode(raw datatypes.JSON) (interface{}, error) {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// GetAll returns every stored setting merged over Defaults.
func (s *Service) GetAll(ctx context.Context) (map[string]interface{}, error) {
	stored, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}

	out := make(map[string]interface{}, len(Defaults)+len(stored))
	for k, v := range Defaults {
		out[k] = v
	}
	for _, setting := range stored {
		v, err := decode(setting.Value)
		if err != nil {
			return nil, fmt.Errorf("decode setting %s: %w", setting.Key, err)
		}
		out[setting.Key] = v
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, key string) (interface{}, error) {
	setting, err := s.repo.FindByKey(ctx, key)
	if errors.Is(err, repository.ErrNotFound) {
		return fallback(key), nil
	}
	if err != nil {
		return nil, fmt.Errorf("find setting: %w", err)
	}
	return decode(setting.Value)
}

// Set stores value under key. Only JSON booleans, strings and numbers are
// accepted.
func (s *Service) Set(ctx context.Context, key string, value json.RawMessage) (*models.Setting, error) {
	trimmed := bytes.TrimSpace(value)
	if len(trimmed) == 0 {
		return nil, ErrInvalidValue
	}

	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()
	var v interface{}
	if err := decoder.Decode(&v); err != nil {
		return nil, ErrInvalidValue
	}
	switch v.(type) {
	case bool, string, json.Number:
	default:
		return nil, ErrInvalidValue
	}

	setting, err := s.repo.Upsert(ctx, key, datatypes.JSON(trimmed))
	if err != nil {
		return nil, fmt.Errorf("upsert setting: %w", err)
	}
	return setting, nil
}

// Bool reads key as a boolean. Stored values of another type read as the
// default for the key.
func (s *Service) Bool(ctx context.Context, key string) (bool, error) {
	v, err := s.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if b, ok := v.(bool); ok {
		return b, nil
	}
	b, _ := fallback(key).(bool)
	return b, nil
}

func (s *Service) QuestionsVisible(ctx context.Context) (bool, error) {
	return s.Bool(ctx, KeyQuestionsVisible)
}
