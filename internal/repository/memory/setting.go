package memory

import (
	"context"
	"sort"
	"time"

	"quiz-event/internal/models"
	"quiz-event/internal/repository"

	"gorm.io/datatypes"
)

type SettingRepository struct {
	s *Store
}

func (r *SettingRepository) FindByKey(ctx context.Context, key string) (*models.Setting, error) {
	var found *models.Setting
	err := r.s.view(ctx, func(d *data) error {
		setting, ok := d.settings[key]
		if !ok {
			return repository.ErrNotFound
		}
		found = &setting
		return nil
	})
	return found, err
}

func (r *SettingRepository) FindAll(ctx context.Context) ([]models.Setting, error) {
	var settings []models.Setting
	err := r.s.view(ctx, func(d *data) error {
		for _, setting := range d.settings {
			settings = append(settings, setting)
		}
		return nil
	})
	sort.Slice(settings, func(i, j int) bool { return settings[i].Key < settings[j].Key })
	return settings, err
}

func (r *SettingRepository) Upsert(ctx context.Context, key string, value datatypes.JSON) (*models.Setting, error) {
	setting := models.Setting{
		Key:       key,
		Value:     append(datatypes.JSON(nil), value...),
		UpdatedAt: time.Now(),
	}
	err := r.s.update(ctx, func(d *data) error {
		d.settings[key] = setting
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &setting, nil
}
