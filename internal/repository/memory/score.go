package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"quiz-event/internal/models"
	"quiz-event/internal/repository"
)

type ScoreRepository struct {
	s *Store
}

func (r *ScoreRepository) FindByUser(ctx context.Context, userID string) (*models.Score, error) {
	var found *models.Score
	err := r.s.view(ctx, func(d *data) error {
		for _, sc := range d.scores {
			if sc.UserID == userID {
				sc := sc
				found = &sc
				return nil
			}
		}
		return repository.ErrNotFound
	})
	return found, err
}

// FindAllRanked relies on the slice being in creation order; the stable
// sort keeps that order among equal totals.
func (r *ScoreRepository) FindAllRanked(ctx context.Context) ([]models.Score, error) {
	var scores []models.Score
	err := r.s.view(ctx, func(d *data) error {
		scores = append([]models.Score(nil), d.scores...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].TotalPoints > scores[j].TotalPoints
	})
	return scores, nil
}

func (r *ScoreRepository) AddPoints(ctx context.Context, userID, username string, difficulty models.Difficulty, points int) (*models.Score, error) {
	if !difficulty.Valid() {
		return nil, fmt.Errorf("unknown difficulty %q", difficulty)
	}

	var result models.Score
	err := r.s.update(ctx, func(d *data) error {
		now := time.Now()
		for i := range d.scores {
			if d.scores[i].UserID == userID {
				d.scores[i].Add(difficulty, points)
				d.scores[i].UpdatedAt = now
				result = d.scores[i]
				return nil
			}
		}
		sc := models.Score{UserID: userID, Username: username, CreatedAt: now, UpdatedAt: now}
		sc.Add(difficulty, points)
		d.scores = append(d.scores, sc)
		result = sc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *ScoreRepository) DeleteAll(ctx context.Context) (int64, error) {
	var n int64
	err := r.s.update(ctx, func(d *data) error {
		n = int64(len(d.scores))
		d.scores = nil
		return nil
	})
	return n, err
}
