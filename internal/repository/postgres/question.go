package postgres

import (
	"context"
	"time"

	"quiz-event/internal/models"
	"quiz-event/internal/repository"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type QuestionRepository struct {
	db *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{db: db}
}

func orderedOptions(db *gorm.DB) *gorm.DB {
	return db.Order("position asc")
}

func (r *QuestionRepository) Create(ctx context.Context, question *models.Question) error {
	err := r.db.WithContext(ctx).Create(question).Error
	if err != nil {
		log.Error().Err(err).Str("code", question.Code).Msg("error creating question")
		return translate(err)
	}
	log.Debug().Str("question_id", question.ID).Int("options", len(question.Options)).Msg("created question")
	return nil
}

func (r *QuestionRepository) FindByID(ctx context.Context, id string) (*models.Question, error) {
	var question models.Question
	err := r.db.WithContext(ctx).
		Preload("Options", orderedOptions).
		First(&question, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &question, nil
}

func (r *QuestionRepository) FindByCode(ctx context.Context, code string) (*models.Question, error) {
	var question models.Question
	err := r.db.WithContext(ctx).
		Preload("Options", orderedOptions).
		Where("code = ?", code).
		First(&question).Error
	if err != nil {
		return nil, translate(err)
	}
	return &question, nil
}

func (r *QuestionRepository) FindAll(ctx context.Context) ([]models.Question, error) {
	var questions []models.Question
	err := r.db.WithContext(ctx).
		Preload("Options", orderedOptions).
		Order("created_at asc").
		Find(&questions).Error
	if err != nil {
		log.Error().Err(err).Msg("error listing questions")
		return nil, translate(err)
	}
	return questions, nil
}

func (r *QuestionRepository) FindVisible(ctx context.Context) ([]models.Question, error) {
	var questions []models.Question
	err := r.db.WithContext(ctx).
		Preload("Options", orderedOptions).
		Where("visible = ?", true).
		Order("created_at asc").
		Find(&questions).Error
	return questions, translate(err)
}

func (r *QuestionRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Question{}).Where("code = ?", code).Count(&count).Error
	return count > 0, translate(err)
}

func (r *QuestionRepository) Save(ctx context.Context, question *models.Question, replaceOptions bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		question.UpdatedAt = time.Now()
		result := tx.Model(&models.Question{}).Where("id = ?", question.ID).Updates(map[string]interface{}{
			"statement":  question.Statement,
			"difficulty": question.Difficulty,
			"updated_at": question.UpdatedAt,
		})
		if result.Error != nil {
			return translate(result.Error)
		}
		if result.RowsAffected == 0 {
			return repository.ErrNotFound
		}
		if !replaceOptions {
			return nil
		}

		if err := tx.Where("question_id = ?", question.ID).Delete(&models.Option{}).Error; err != nil {
			return translate(err)
		}
		for i := range question.Options {
			question.Options[i].QuestionID = question.ID
		}
		if len(question.Options) == 0 {
			return nil
		}
		return translate(tx.Create(&question.Options).Error)
	})
}

func (r *QuestionRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("question_id = ?", id).Delete(&models.Option{}).Error; err != nil {
			return translate(err)
		}
		result := tx.Where("id = ?", id).Delete(&models.Question{})
		if result.Error != nil {
			return translate(result.Error)
		}
		if result.RowsAffected == 0 {
			return repository.ErrNotFound
		}
		return nil
	})
}

func (r *QuestionRepository) update(ctx context.Context, scope func(*gorm.DB) *gorm.DB, values map[string]interface{}) (int64, error) {
	values["updated_at"] = time.Now()
	result := scope(r.db.WithContext(ctx).Model(&models.Question{})).Updates(values)
	return result.RowsAffected, translate(result.Error)
}

func byID(id string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB { return db.Where("id = ?", id) }
}

func byLocked(locked bool) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB { return db.Where("is_locked = ?", locked) }
}

func allRows(db *gorm.DB) *gorm.DB {
	return db.Where("1 = 1")
}

func (r *QuestionRepository) SetVisibility(ctx context.Context, id string, visible bool) error {
	n, err := r.update(ctx, byID(id), map[string]interface{}{"visible": visible})
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *QuestionRepository) SetVisibilityAll(ctx context.Context, visible bool) (int64, error) {
	return r.update(ctx, allRows, map[string]interface{}{"visible": visible})
}

func (r *QuestionRepository) SetLocked(ctx context.Context, id string, locked bool) error {
	n, err := r.update(ctx, byID(id), map[string]interface{}{"is_locked": locked})
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *QuestionRepository) LockIfUnlocked(ctx context.Context, id string) (bool, error) {
	n, err := r.update(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("id = ? AND is_locked = ?", id, false)
	}, map[string]interface{}{"is_locked": true})
	return n == 1, err
}

func (r *QuestionRepository) LockAll(ctx context.Context) (int64, error) {
	return r.update(ctx, byLocked(false), map[string]interface{}{"is_locked": true})
}

func (r *QuestionRepository) UnlockAll(ctx context.Context) (int64, error) {
	return r.update(ctx, byLocked(true), map[string]interface{}{"is_locked": false})
}
