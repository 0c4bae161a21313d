package postgres

import (
	"context"

	"quiz-event/internal/models"

	"gorm.io/gorm"
)

type AnswerRepository struct {
	db *gorm.DB
}

func NewAnswerRepository(db *gorm.DB) *AnswerRepository {
	return &AnswerRepository{db: db}
}

func (r *AnswerRepository) Create(ctx context.Context, answer *models.Answer) error {
	return translate(r.db.WithContext(ctx).Create(answer).Error)
}

func (r *AnswerRepository) FindByUserAndQuestion(ctx context.Context, userID, questionID string) (*models.Answer, error) {
	var answer models.Answer
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND question_id = ?", userID, questionID).
		First(&answer).Error
	if err != nil {
		return nil, translate(err)
	}
	return &answer, nil
}

func (r *AnswerRepository) find(ctx context.Context, query string, args ...interface{}) ([]models.Answer, error) {
	var answers []models.Answer
	db := r.db.WithContext(ctx)
	if query != "" {
		db = db.Where(query, args...)
	}
	err := db.Order("answered_at asc").Find(&answers).Error
	return answers, translate(err)
}

func (r *AnswerRepository) FindByUser(ctx context.Context, userID string) ([]models.Answer, error) {
	return r.find(ctx, "user_id = ?", userID)
}

func (r *AnswerRepository) FindByQuestion(ctx context.Context, questionID string) ([]models.Answer, error) {
	return r.find(ctx, "question_id = ?", questionID)
}

func (r *AnswerRepository) FindAll(ctx context.Context) ([]models.Answer, error) {
	return r.find(ctx, "")
}
