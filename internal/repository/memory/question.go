package memory

import (
	"context"
	"errors"
	"time"

	"quiz-event/internal/models"
	"quiz-event/internal/repository"

	"github.com/google/uuid"
)

type QuestionRepository struct {
	s *Store
}

func indexOfQuestion(d *data, id string) int {
	for i := range d.questions {
		if d.questions[i].ID == id {
			return i
		}
	}
	return -1
}

func assignOptionIDs(q *models.Question) {
	for i := range q.Options {
		if q.Options[i].ID == "" {
			q.Options[i].ID = uuid.NewString()
		}
		q.Options[i].QuestionID = q.ID
	}
}

func (r *QuestionRepository) Create(ctx context.Context, question *models.Question) error {
	return r.s.update(ctx, func(d *data) error {
		for _, q := range d.questions {
			if q.Code == question.Code || (question.ID != "" && q.ID == question.ID) {
				return repository.ErrDuplicate
			}
		}
		if question.ID == "" {
			question.ID = uuid.NewString()
		}
		assignOptionIDs(question)
		now := time.Now()
		if question.CreatedAt.IsZero() {
			question.CreatedAt = now
		}
		question.UpdatedAt = now
		d.questions = append(d.questions, copyQuestion(*question))
		return nil
	})
}

func (r *QuestionRepository) find(ctx context.Context, match func(models.Question) bool) (*models.Question, error) {
	var found *models.Question
	err := r.s.view(ctx, func(d *data) error {
		for _, q := range d.questions {
			if match(q) {
				q = copyQuestion(q)
				found = &q
				return nil
			}
		}
		return repository.ErrNotFound
	})
	return found, err
}

func (r *QuestionRepository) FindByID(ctx context.Context, id string) (*models.Question, error) {
	return r.find(ctx, func(q models.Question) bool { return q.ID == id })
}

func (r *QuestionRepository) FindByCode(ctx context.Context, code string) (*models.Question, error) {
	return r.find(ctx, func(q models.Question) bool { return q.Code == code })
}

func (r *QuestionRepository) filter(ctx context.Context, keep func(models.Question) bool) ([]models.Question, error) {
	var out []models.Question
	err := r.s.view(ctx, func(d *data) error {
		for _, q := range d.questions {
			if keep(q) {
				out = append(out, copyQuestion(q))
			}
		}
		return nil
	})
	return out, err
}

func (r *QuestionRepository) FindAll(ctx context.Context) ([]models.Question, error) {
	return r.filter(ctx, func(models.Question) bool { return true })
}

func (r *QuestionRepository) FindVisible(ctx context.Context) ([]models.Question, error) {
	return r.filter(ctx, func(q models.Question) bool { return q.Visible })
}

func (r *QuestionRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	_, err := r.FindByCode(ctx, code)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (r *QuestionRepository) Save(ctx context.Context, question *models.Question, replaceOptions bool) error {
	return r.s.update(ctx, func(d *data) error {
		i := indexOfQuestion(d, question.ID)
		if i < 0 {
			return repository.ErrNotFound
		}
		stored := &d.questions[i]
		stored.Statement = question.Statement
		stored.Difficulty = question.Difficulty
		stored.UpdatedAt = time.Now()
		if replaceOptions {
			assignOptionIDs(question)
			stored.Options = append([]models.Option(nil), question.Options...)
		}
		question.UpdatedAt = stored.UpdatedAt
		return nil
	})
}

func (r *QuestionRepository) Delete(ctx context.Context, id string) error {
	return r.s.update(ctx, func(d *data) error {
		i := indexOfQuestion(d, id)
		if i < 0 {
			return repository.ErrNotFound
		}
		d.questions = append(d.questions[:i:i], d.questions[i+1:]...)
		return nil
	})
}

// set applies mutate to every question accepted by match and returns how
// many were touched.
func (r *QuestionRepository) set(ctx context.Context, match func(models.Question) bool, mutate func(*models.Question)) (int64, error) {
	var n int64
	err := r.s.update(ctx, func(d *data) error {
		now := time.Now()
		for i := range d.questions {
			if match(d.questions[i]) {
				mutate(&d.questions[i])
				d.questions[i].UpdatedAt = now
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *QuestionRepository) SetVisibility(ctx context.Context, id string, visible bool) error {
	n, err := r.set(ctx, func(q models.Question) bool { return q.ID == id }, func(q *models.Question) { q.Visible = visible })
	if err == nil && n == 0 {
		return repository.ErrNotFound
	}
	return err
}

func (r *QuestionRepository) SetVisibilityAll(ctx context.Context, visible bool) (int64, error) {
	return r.set(ctx, func(models.Question) bool { return true }, func(q *models.Question) { q.Visible = visible })
}

func (r *QuestionRepository) SetLocked(ctx context.Context, id string, locked bool) error {
	n, err := r.set(ctx, func(q models.Question) bool { return q.ID == id }, func(q *models.Question) { q.IsLocked = locked })
	if err == nil && n == 0 {
		return repository.ErrNotFound
	}
	return err
}

func (r *QuestionRepository) LockIfUnlocked(ctx context.Context, id string) (bool, error) {
	n, err := r.set(ctx, func(q models.Question) bool { return q.ID == id && !q.IsLocked }, func(q *models.Question) { q.IsLocked = true })
	return n == 1, err
}

func (r *QuestionRepository) LockAll(ctx context.Context) (int64, error) {
	return r.set(ctx, func(q models.Question) bool { return !q.IsLocked }, func(q *models.Question) { q.IsLocked = true })
}

func (r *QuestionRepository) UnlockAll(ctx context.Context) (int64, error) {
	return r.set(ctx, func(q models.Question) bool { return q.IsLocked }, func(q *models.Question) { q.IsLocked = false })
}
