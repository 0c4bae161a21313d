// Package postgres implements the repository contracts on top of gorm and
// PostgreSQL.
package postgres

import (
	"context"
	"errors"

	"quiz-event/internal/repository"

	"gorm.io/gorm"
)

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Users() repository.UserRepository         { return &UserRepository{db: s.db} }
func (s *Store) Questions() repository.QuestionRepository { return &QuestionRepository{db: s.db} }
func (s *Store) Answers() repository.AnswerRepository     { return &AnswerRepository{db: s.db} }
func (s *Store) Scores() repository.ScoreRepository       { return &ScoreRepository{db: s.db} }
func (s *Store) Settings() repository.SettingRepository   { return &SettingRepository{db: s.db} }

// WithinTx runs fn against repositories bound to a single database
// transaction. Returning an error from fn rolls everything back.
func (s *Store) WithinTx(ctx context.Context, fn func(tx repository.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

// translate maps gorm errors onto the repository sentinels. The database
// must be opened with TranslateError enabled for duplicates to be detected.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return repository.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return repository.ErrDuplicate
	}
	return err
}
