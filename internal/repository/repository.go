// Package repository declares the persistence contracts used by the quiz
// services. Implementations live in the postgres and memory subpackages.
package repository

import (
	"context"
	"errors"

	"quiz-event/internal/models"

	"gorm.io/datatypes"
)

var (
	// ErrNotFound is returned when a lookup by key matches nothing.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a write violates a uniqueness rule.
	ErrDuplicate = errors.New("duplicate record")
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindAll(ctx context.Context) ([]models.User, error)
}

type QuestionRepository interface {
	Create(ctx context.Context, question *models.Question) error
	FindByID(ctx context.Context, id string) (*models.Question, error)
	FindByCode(ctx context.Context, code string) (*models.Question, error)
	FindAll(ctx context.Context) ([]models.Question, error)
	FindVisible(ctx context.Context) ([]models.Question, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	// Save persists statement and difficulty, and replaces the option set
	// when replaceOptions is true.
	Save(ctx context.Context, question *models.Question, replaceOptions bool) error
	Delete(ctx context.Context, id string) error
	SetVisibility(ctx context.Context, id string, visible bool) error
	SetVisibilityAll(ctx context.Context, visible bool) (int64, error)
	SetLocked(ctx context.Context, id string, locked bool) error
	// LockIfUnlocked flips isLocked from false to true and reports whether
	// this call performed the transition.
	LockIfUnlocked(ctx context.Context, id string) (bool, error)
	// LockAll locks every unlocked question and returns how many changed.
	LockAll(ctx context.Context) (int64, error)
	// UnlockAll unlocks every locked question and returns how many changed.
	UnlockAll(ctx context.Context) (int64, error)
}

type AnswerRepository interface {
	Create(ctx context.Context, answer *models.Answer) error
	FindByUserAndQuestion(ctx context.Context, userID, questionID string) (*models.Answer, error)
	FindByUser(ctx context.Context, userID string) ([]models.Answer, error)
	FindByQuestion(ctx context.Context, questionID string) ([]models.Answer, error)
	FindAll(ctx context.Context) ([]models.Answer, error)
}

type ScoreRepository interface {
	FindByUser(ctx context.Context, userID string) (*models.Score, error)
	// FindAllRanked returns scores by total points descending, ties in
	// insertion order.
	FindAllRanked(ctx context.Context) ([]models.Score, error)
	// AddPoints increments the difficulty bucket and the total, creating the
	// row with the given username on first write.
	AddPoints(ctx context.Context, userID, username string, difficulty models.Difficulty, points int) (*models.Score, error)
	DeleteAll(ctx context.Context) (int64, error)
}

type SettingRepository interface {
	FindByKey(ctx context.Context, key string) (*models.Setting, error)
	FindAll(ctx context.Context) ([]models.Setting, error)
	Upsert(ctx context.Context, key string, value datatypes.JSON) (*models.Setting, error)
}

// Store groups the repositories and runs units of work that must commit
// together.
type Store interface {
	Users() UserRepository
	Questions() QuestionRepository
	Answers() AnswerRepository
	Scores() ScoreRepository
	Settings() SettingRepository
	WithinTx(ctx context.Context, fn func(tx Store) error) error
}
