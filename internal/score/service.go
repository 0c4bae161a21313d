// Package score serves ranked scoreboard reads.
package score

import (
	"context"
	"errors"
	"fmt"
	"time"

	"quiz-event/internal/models"
	"quiz-event/internal/repository"

	"github.com/jinzhu/copier"
)

type Service struct {
	scores repository.ScoreRepository
}

func NewService(scores repository.ScoreRepository) *Service {
	return &Service{scores: scores}
}

// Entries ranks scores as given; rank is the 1-based position.
func Entries(scores []models.Score) []models.ScoreboardEntry {
	entries := make([]models.ScoreboardEntry, len(scores))
	for i, s := range scores {
		entries[i] = models.ScoreboardEntry{
			Rank:        i + 1,
			Username:    s.Username,
			TotalPoints: s.TotalPoints,
		}
	}
	return entries
}

// AdminEntries is Entries plus the per-difficulty breakdown.
func AdminEntries(scores []models.Score) ([]models.AdminScoreboardEntry, error) {
	entries := make([]models.AdminScoreboardEntry, len(scores))
	if err := copier.Copy(&entries, &scores); err != nil {
		return nil, fmt.Errorf("map scoreboard: %w", err)
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

func (s *Service) Ranked(ctx context.Context) ([]models.Score, error) {
	scores, err := s.scores.FindAllRanked(ctx)
	if err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	return scores, nil
}

func (s *Service) Scoreboard(ctx context.Context, isAdmin bool) (*models.ScoreboardResponse, error) {
	scores, err := s.Ranked(ctx)
	if err != nil {
		return nil, err
	}

	resp := &models.ScoreboardResponse{Participants: Entries(scores)}
	if isAdmin {
		if resp.AdminView, err = AdminEntries(scores); err != nil {
			return nil, err
		}
	}
	return resp, nil
}

// Mine returns the caller's score, or a zeroed one when nothing was scored
// yet.
func (s *Service) Mine(ctx context.Context, userID string) (*models.Score, error) {
	score, err := s.scores.FindByUser(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return &models.Score{UserID: userID, UpdatedAt: time.Now()}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find score: %w", err)
	}
	return score, nil
}
