// Package answer implements answer submission and the reads built on it.
//
// Submit is the core of the event: it validates the request against the
// question, then records the answer, credits the score and locks the
// question in a single store transaction. Locking is a compare-and-set, so
// when two participants race for the same question exactly one of them is
// accepted and the other sees the question as no longer available.
package answer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"quiz-event/internal/apperr"
	"quiz-event/internal/models"
	"quiz-event/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var (
	ErrQuestionNotFound = apperr.NotFound("Question not found")
	ErrQuestionLocked   = apperr.Conflict("This question is no longer available")
	ErrAlreadyAnswered  = apperr.Conflict("You have already answered this question")
	ErrInvalidOption    = apperr.InvalidInput("Invalid option selected")
)

// Publisher receives the events emitted after a submission commits.
type Publisher interface {
	EmitQuestionLocked(questionID string)
	EmitNewAnswer(answer interface{})
	EmitScoreboardUpdate(scoreboard interface{})
}

// Scoreboard produces the snapshot pushed after points change.
type Scoreboard interface {
	Scoreboard(ctx context.Context, isAdmin bool) (*models.ScoreboardResponse, error)
}

type Submission struct {
	QuestionID       string `json:"questionId"`
	SelectedOptionID string `json:"selectedOptionId"`
	UserID           string `json:"-"`
	Username         string `json:"-"`
}

// NewAnswerEvent is the admin-room payload for every accepted answer.
type NewAnswerEvent struct {
	QuestionID   string `json:"questionId"`
	UserID       string `json:"userId"`
	Username     string `json:"username"`
	IsCorrect    bool   `json:"isCorrect"`
	PointsEarned int    `json:"pointsEarned"`
}

type Service struct {
	store      repository.Store
	scoreboard Scoreboard
	events     Publisher
	now        func() time.Time
}

// NewService wires the answer service. events may be nil.
func NewService(store repository.Store, scoreboard Scoreboard, events Publisher) *Service {
	return &Service{
		store:      store,
		scoreboard: scoreboard,
		events:     events,
		now:        time.Now,
	}
}

func (s *Service) Submit(ctx context.Context, sub Submission) (*models.AnswerResult, error) {
	if sub.QuestionID == "" || sub.SelectedOptionID == "" {
		return nil, apperr.InvalidInput("questionId and selectedOptionId are required")
	}

	question, err := s.store.Questions().FindByID(ctx, sub.QuestionID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrQuestionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find question: %w", err)
	}
	if question.IsLocked {
		return nil, ErrQuestionLocked
	}

	_, err = s.store.Answers().FindByUserAndQuestion(ctx, sub.UserID, sub.QuestionID)
	if err == nil {
		return nil, ErrAlreadyAnswered
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("find answer: %w", err)
	}

	option, ok := question.FindOption(sub.SelectedOptionID)
	if !ok {
		return nil, ErrInvalidOption
	}

	points := 0
	if option.IsCorrect {
		points = question.Difficulty.Points()
	}

	answer := &models.Answer{
		ID:               uuid.NewString(),
		QuestionID:       question.ID,
		UserID:           sub.UserID,
		SelectedOptionID: option.ID,
		IsCorrect:        option.IsCorrect,
		PointsEarned:     points,
		AnsweredAt:       s.now(),
	}

	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		claimed, err := tx.Questions().LockIfUnlocked(ctx, question.ID)
		if err != nil {
			return fmt.Errorf("lock question: %w", err)
		}
		if !claimed {
			return ErrQuestionLocked
		}

		if err := tx.Answers().Create(ctx, answer); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrAlreadyAnswered
			}
			return fmt.Errorf("create answer: %w", err)
		}

		if points > 0 {
			if _, err := tx.Scores().AddPoints(ctx, sub.UserID, sub.Username, question.Difficulty, points); err != nil {
				return fmt.Errorf("add points: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("question_id", question.ID).
		Str("user_id", sub.UserID).
		Bool("correct", answer.IsCorrect).
		Int("points", points).
		Msg("answer accepted")

	s.publish(ctx, answer, sub.Username)

	result := answer.ToResult()
	result.CorrectOptionID = question.CorrectOptionID()
	return &result, nil
}

func (s *Service) publish(ctx context.Context, answer *models.Answer, username string) {
	if s.events == nil {
		return
	}
	s.events.EmitQuestionLocked(answer.QuestionID)
	s.events.EmitNewAnswer(NewAnswerEvent{
		QuestionID:   answer.QuestionID,
		UserID:       answer.UserID,
		Username:     username,
		IsCorrect:    answer.IsCorrect,
		PointsEarned: answer.PointsEarned,
	})

	if answer.PointsEarned == 0 || s.scoreboard == nil {
		return
	}
	board, err := s.scoreboard.Scoreboard(ctx, false)
	if err != nil {
		log.Warn().Err(err).Msg("could not build scoreboard snapshot")
		return
	}
	s.events.EmitScoreboardUpdate(board)
}

// ListMine returns the caller's answers without the chosen option.
func (s *Service) ListMine(ctx context.Context, userID string) ([]models.AnswerResult, error) {
	answers, err := s.store.Answers().FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	results := make([]models.AnswerResult, len(answers))
	for i, a := range answers {
		results[i] = a.ToResult()
	}
	return results, nil
}

func (s *Service) ForQuestion(ctx context.Context, questionID string) (*models.QuestionAnswerStats, error) {
	answers, err := s.store.Answers().FindByQuestion(ctx, questionID)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}

	stats := &models.QuestionAnswerStats{
		QuestionID:   questionID,
		TotalAnswers: len(answers),
		Answers:      answers,
	}
	if stats.Answers == nil {
		stats.Answers = []models.Answer{}
	}
	for _, a := range answers {
		if a.IsCorrect {
			stats.CorrectAnswers++
		} else {
			stats.IncorrectAnswers++
		}
	}
	return stats, nil
}
