package memory

import (
	"context"
	"time"

	"quiz-event/internal/models"
	"quiz-event/internal/repository"

	"github.com/google/uuid"
)

type UserRepository struct {
	s *Store
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return r.s.update(ctx, func(d *data) error {
		for _, u := range d.users {
			if u.Username == user.Username || (user.ID != "" && u.ID == user.ID) {
				return repository.ErrDuplicate
			}
		}
		if user.ID == "" {
			user.ID = uuid.NewString()
		}
		now := time.Now()
		if user.CreatedAt.IsZero() {
			user.CreatedAt = now
		}
		user.UpdatedAt = now
		d.users = append(d.users, *user)
		return nil
	})
}

func (r *UserRepository) find(ctx context.Context, match func(models.User) bool) (*models.User, error) {
	var found *models.User
	err := r.s.view(ctx, func(d *data) error {
		for _, u := range d.users {
			if match(u) {
				u := u
				found = &u
				return nil
			}
		}
		return repository.ErrNotFound
	})
	return found, err
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	return r.find(ctx, func(u models.User) bool { return u.ID == id })
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.find(ctx, func(u models.User) bool { return u.Username == username })
}

func (r *UserRepository) FindAll(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.s.view(ctx, func(d *data) error {
		users = append([]models.User(nil), d.users...)
		return nil
	})
	return users, err
}
