// Package admin implements the event-wide operations available to
// administrators: bulk unlock, score reset, finalization and the dashboard.
package admin

import (
	"context"
	"fmt"

	"quiz-event/internal/models"
	"quiz-event/internal/repository"
	"quiz-event/internal/score"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const topScoresLimit = 10

// Notifier pushes the events produced by bulk operations.
type Notifier interface {
	EmitScoreboardUpdate(scoreboard interface{})
	EmitEventFinalized(summary interface{})
}

type ResetQuestionsResult struct {
	Message       string `json:"message"`
	UnlockedCount int64  `json:"unlockedCount"`
}

type FinalizeResult struct {
	Message           string                        `json:"message"`
	FinalScoreboard   []models.AdminScoreboardEntry `json:"finalScoreboard"`
	TotalQuestions    int                           `json:"totalQuestions"`
	TotalParticipants int                           `json:"totalParticipants"`
}

type TopScore struct {
	Username    string `json:"username"`
	TotalPoints int    `json:"totalPoints"`
	Rank        int    `json:"rank"`
}

type QuestionStat struct {
	QuestionID     string            `json:"questionId"`
	Code           string            `json:"code"`
	Statement      string            `json:"statement"`
	Difficulty     models.Difficulty `json:"difficulty"`
	TotalAnswers   int               `json:"totalAnswers"`
	CorrectAnswers int               `json:"correctAnswers"`
	IsLocked       bool              `json:"isLocked"`
}

type Dashboard struct {
	TotalQuestions     int            `json:"totalQuestions"`
	LockedQuestions    int            `json:"lockedQuestions"`
	AvailableQuestions int            `json:"availableQuestions"`
	TotalAnswers       int            `json:"totalAnswers"`
	TotalParticipants  int            `json:"totalParticipants"`
	TotalAdmins        int            `json:"totalAdmins"`
	TopScores          []TopScore     `json:"topScores"`
	QuestionStats      []QuestionStat `json:"questionStats"`
}

type Service struct {
	store  repository.Store
	events Notifier
}

// NewService wires the admin service. events may be nil.
func NewService(store repository.Store, events Notifier) *Service {
	return &Service{store: store, events: events}
}

// ResetQuestions unlocks every question. Calling it twice is harmless; the
// second call reports zero.
func (s *Service) ResetQuestions(ctx context.Context) (*ResetQuestionsResult, error) {
	n, err := s.store.Questions().UnlockAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("unlock questions: %w", err)
	}
	log.Info().Int64("unlocked", n).Msg("questions reset")
	return &ResetQuestionsResult{
		Message:       "All questions have been unlocked",
		UnlockedCount: n,
	}, nil
}

// ResetScores deletes every score row. Answers are kept, so participants
// still cannot re-answer questions they already submitted.
func (s *Service) ResetScores(ctx context.Context) error {
	n, err := s.store.Scores().DeleteAll(ctx)
	if err != nil {
		return fmt.Errorf("delete scores: %w", err)
	}
	log.Info().Int64("deleted", n).Msg("scores reset")

	if s.events != nil {
		s.events.EmitScoreboardUpdate(&models.ScoreboardResponse{
			Participants: []models.ScoreboardEntry{},
		})
	}
	return nil
}

// Finalize locks whatever is still open and publishes the final ranking.
func (s *Service) Finalize(ctx context.Context) (*FinalizeResult, error) {
	locked, err := s.store.Questions().LockAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("lock questions: %w", err)
	}

	questions, err := s.store.Questions().FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	scores, err := s.store.Scores().FindAllRanked(ctx)
	if err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	board, err := score.AdminEntries(scores)
	if err != nil {
		return nil, err
	}

	result := &FinalizeResult{
		Message:           "Event finalized successfully",
		FinalScoreboard:   board,
		TotalQuestions:    len(questions),
		TotalParticipants: len(scores),
	}
	log.Info().
		Int64("locked", locked).
		Int("questions", result.TotalQuestions).
		Int("participants", result.TotalParticipants).
		Msg("event finalized")

	if s.events != nil {
		s.events.EmitEventFinalized(result)
	}
	return result, nil
}

func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	var (
		questions []models.Question
		answers   []models.Answer
		scores    []models.Score
		users     []models.User
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		questions, err = s.store.Questions().FindAll(gctx)
		return err
	})
	g.Go(func() (err error) {
		answers, err = s.store.Answers().FindAll(gctx)
		return err
	})
	g.Go(func() (err error) {
		scores, err = s.store.Scores().FindAllRanked(gctx)
		return err
	})
	g.Go(func() (err error) {
		users, err = s.store.Users().FindAll(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load dashboard: %w", err)
	}

	d := &Dashboard{
		TotalQuestions: len(questions),
		TotalAnswers:   len(answers),
		TopScores:      []TopScore{},
		QuestionStats:  make([]QuestionStat, 0, len(questions)),
	}

	for _, u := range users {
		switch u.Role {
		case models.RoleAdmin:
			d.TotalAdmins++
		case models.RoleParticipant:
			d.TotalParticipants++
		}
	}

	for i, sc := range score.Entries(scores) {
		if i == topScoresLimit {
			break
		}
		d.TopScores = append(d.TopScores, TopScore{
			Username:    sc.Username,
			TotalPoints: sc.TotalPoints,
			Rank:        sc.Rank,
		})
	}

	byQuestion := make(map[string][]models.Answer, len(questions))
	for _, a := range answers {
		byQuestion[a.QuestionID] = append(byQuestion[a.QuestionID], a)
	}
	for _, q := range questions {
		if q.IsLocked {
			d.LockedQuestions++
		}
		stat := QuestionStat{
			QuestionID: q.ID,
			Code:       q.Code,
			Statement:  q.Statement,
			Difficulty: q.Difficulty,
			IsLocked:   q.IsLocked,
		}
		for _, a := range byQuestion[q.ID] {
			stat.TotalAnswers++
			if a.IsCorrect {
				stat.CorrectAnswers++
			}
		}
		d.QuestionStats = append(d.QuestionStats, stat)
	}
	d.AvailableQuestions = d.TotalQuestions - d.LockedQuestions

	return d, nil
}
