// Package memory is an in-process implementation of the repository
// contracts. It backs the test suites and single-instance runs without a
// database.
package memory

import (
	"context"
	"sync"

	"quiz-event/internal/models"
	"quiz-event/internal/repository"
)

// data holds every collection in insertion order.
type data struct {
	users     []models.User
	questions []models.Question
	answers   []models.Answer
	scores    []models.Score
	settings  map[string]models.Setting
}

func (d *data) clone() *data {
	c := &data{
		users:     append([]models.User(nil), d.users...),
		questions: make([]models.Question, len(d.questions)),
		answers:   append([]models.Answer(nil), d.answers...),
		scores:    append([]models.Score(nil), d.scores...),
		settings:  make(map[string]models.Setting, len(d.settings)),
	}
	for i, q := range d.questions {
		c.questions[i] = copyQuestion(q)
	}
	for k, v := range d.settings {
		c.settings[k] = v
	}
	return c
}

func copyQuestion(q models.Question) models.Question {
	q.Options = append([]models.Option(nil), q.Options...)
	return q
}

// Store keeps all state behind one RWMutex. Writers and transactions are
// additionally serialized by txMu, so a transaction works on a private
// snapshot and publishes it on success.
type Store struct {
	txMu *sync.Mutex
	mu   *sync.RWMutex
	root **data
	tx   *data
}

func NewStore() *Store {
	d := &data{settings: make(map[string]models.Setting)}
	return &Store{
		txMu: &sync.Mutex{},
		mu:   &sync.RWMutex{},
		root: &d,
	}
}

func (s *Store) Users() repository.UserRepository         { return &UserRepository{s: s} }
func (s *Store) Questions() repository.QuestionRepository { return &QuestionRepository{s: s} }
func (s *Store) Answers() repository.AnswerRepository     { return &AnswerRepository{s: s} }
func (s *Store) Scores() repository.ScoreRepository       { return &ScoreRepository{s: s} }
func (s *Store) Settings() repository.SettingRepository   { return &SettingRepository{s: s} }

func (s *Store) WithinTx(ctx context.Context, fn func(tx repository.Store) error) error {
	if s.tx != nil {
		return fn(s)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	snapshot := (*s.root).clone()
	s.mu.RUnlock()

	if err := fn(&Store{txMu: s.txMu, mu: s.mu, root: s.root, tx: snapshot}); err != nil {
		return err
	}

	s.mu.Lock()
	*s.root = snapshot
	s.mu.Unlock()
	return nil
}

func (s *Store) view(ctx context.Context, fn func(d *data) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.tx != nil {
		return fn(s.tx)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(*s.root)
}

// update runs fn with exclusive access. fn must validate before mutating,
// since outside a transaction there is nothing to roll back.
func (s *Store) update(ctx context.Context, fn func(d *data) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.tx != nil {
		return fn(s.tx)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(*s.root)
}
