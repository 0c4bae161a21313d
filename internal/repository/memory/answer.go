package memory

import (
	"context"
	"time"

	"quiz-event/internal/models"
	"quiz-event/internal/repository"

	"github.com/google/uuid"
)

type AnswerRepository struct {
	s *Store
}

func (r *AnswerRepository) Create(ctx context.Context, answer *models.Answer) error {
	return r.s.update(ctx, func(d *data) error {
		for _, a := range d.answers {
			if a.UserID == answer.UserID && a.QuestionID == answer.QuestionID {
				return repository.ErrDuplicate
			}
		}
		if answer.ID == "" {
			answer.ID = uuid.NewString()
		}
		if answer.AnsweredAt.IsZero() {
			answer.AnsweredAt = time.Now()
		}
		d.answers = append(d.answers, *answer)
		return nil
	})
}

func (r *AnswerRepository) FindByUserAndQuestion(ctx context.Context, userID, questionID string) (*models.Answer, error) {
	var found *models.Answer
	err := r.s.view(ctx, func(d *data) error {
		for _, a := range d.answers {
			if a.UserID == userID && a.QuestionID == questionID {
				a := a
				found = &a
				return nil
			}
		}
		return repository.ErrNotFound
	})
	return found, err
}

func (r *AnswerRepository) filter(ctx context.Context, keep func(models.Answer) bool) ([]models.Answer, error) {
	var out []models.Answer
	err := r.s.view(ctx, func(d *data) error {
		for _, a := range d.answers {
			if keep(a) {
				out = append(out, a)
			}
		}
		return nil
	})
	return out, err
}

func (r *AnswerRepository) FindByUser(ctx context.Context, userID string) ([]models.Answer, error) {
	return r.filter(ctx, func(a models.Answer) bool { return a.UserID == userID })
}

func (r *AnswerRepository) FindByQuestion(ctx context.Context, questionID string) ([]models.Answer, error) {
	return r.filter(ctx, func(a models.Answer) bool { return a.QuestionID == questionID })
}

func (r *AnswerRepository) FindAll(ctx context.Context) ([]models.Answer, error) {
	return r.filter(ctx, func(models.Answer) bool { return true })
}
