// Package question implements question management and role-filtered reads.
package question

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"quiz-event/internal/apperr"
	"quiz-event/internal/models"
	"quiz-event/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

var (
	ErrNotFound        = apperr.NotFound("Question not found")
	ErrLocked          = apperr.Conflict("This question is no longer available")
	ErrAlreadyAnswered = apperr.Conflict("You have already answered this question")
)

// CodeCache maps short codes to question ids.
type CodeCache interface {
	GetQuestionID(ctx context.Context, code string) (string, bool, error)
	SetQuestionID(ctx context.Context, code, id string) error
	DeleteQuestionCodes(ctx context.Context, codes ...string) error
}

type Notifier interface {
	EmitQuestionLocked(questionID string)
}

// VisibilityFlag reports the global participant-list switch.
type VisibilityFlag interface {
	QuestionsVisible(ctx context.Context) (bool, error)
}

// Viewer identifies who is reading. Admins see everything.
type Viewer struct {
	UserID  string
	IsAdmin bool
}

type Service struct {
	store         repository.Store
	cache         CodeCache
	events        Notifier
	flag          VisibilityFlag
	publicBaseURL string
	lookups       singleflight.Group
	newCode       func() string
}

// NewService wires the question service. cache and events may be nil.
func NewService(store repository.Store, cache CodeCache, events Notifier, flag VisibilityFlag, publicBaseURL string) *Service {
	return &Service{
		store:         store,
		cache:         cache,
		events:        events,
		flag:          flag,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		newCode:       generateCode,
	}
}

func validate(statement string, options []models.OptionInput, difficulty models.Difficulty) error {
	if strings.TrimSpace(statement) == "" {
		return apperr.InvalidInput("Statement cannot be empty")
	}
	if len(options) < models.MinOptions || len(options) > models.MaxOptions {
		return apperr.InvalidInput("Question must have between 2 and 5 options")
	}
	hasCorrect := false
	for _, opt := range options {
		if opt.IsCorrect {
			hasCorrect = true
			break
		}
	}
	if !hasCorrect {
		return apperr.InvalidInput("At least one option must be correct")
	}
	if !difficulty.Valid() {
		return apperr.InvalidInput("Difficulty must be easy, medium or hard")
	}
	return nil
}

func buildOptions(inputs []models.OptionInput) []models.Option {
	options := make([]models.Option, len(inputs))
	for i, in := range inputs {
		options[i] = models.Option{
			ID:        uuid.NewString(),
			Text:      in.Text,
			IsCorrect: in.IsCorrect,
			Position:  i,
		}
	}
	return options
}

func (s *Service) qrCodeURL(code string) string {
	return s.publicBaseURL + "/question/code/" + code
}

func (s *Service) uniqueCode(ctx context.Context) (string, error) {
	questions := s.store.Questions()
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code := s.newCode()
		exists, err := questions.CodeExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("check code: %w", err)
		}
		if !exists {
			return code, nil
		}
		log.Debug().Str("code", code).Int("attempt", attempt+1).Msg("question code collision")
	}
	return "", fmt.Errorf("could not generate a unique question code after %d attempts", maxCodeAttempts)
}

func (s *Service) Create(ctx context.Context, input models.QuestionInput, createdBy string) (*models.QuestionResponse, error) {
	if err := validate(input.Statement, input.Options, input.Difficulty); err != nil {
		return nil, err
	}

	code, err := s.uniqueCode(ctx)
	if err != nil {
		return nil, err
	}

	question := &models.Question{
		ID:         uuid.NewString(),
		Code:       code,
		Statement:  input.Statement,
		Options:    buildOptions(input.Options),
		Difficulty: input.Difficulty,
		QRCodeURL:  s.qrCodeURL(code),
		Visible:    true,
		CreatedBy:  createdBy,
	}
	if err := s.store.Questions().Create(ctx, question); err != nil {
		return nil, fmt.Errorf("create question: %w", err)
	}

	s.cacheCode(ctx, question.Code, question.ID)
	log.Info().Str("question_id", question.ID).Str("code", question.Code).Msg("question created")

	resp := question.ToResponse(true)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, viewer Viewer) ([]models.QuestionResponse, error) {
	if viewer.IsAdmin {
		questions, err := s.store.Questions().FindAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("list questions: %w", err)
		}
		return toResponses(questions, true), nil
	}

	if s.flag != nil {
		visible, err := s.flag.QuestionsVisible(ctx)
		if err != nil {
			return nil, err
		}
		if !visible {
			return []models.QuestionResponse{}, nil
		}
	}

	questions, err := s.store.Questions().FindVisible(ctx)
	if err != nil {
		return nil, fmt.Errorf("list visible questions: %w", err)
	}
	answers, err := s.store.Answers().FindByUser(ctx, viewer.UserID)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}

	answered := make(map[string]struct{}, len(answers))
	for _, a := range answers {
		answered[a.QuestionID] = struct{}{}
	}

	available := make([]models.Question, 0, len(questions))
	for _, q := range questions {
		if _, done := answered[q.ID]; q.IsLocked || done {
			continue
		}
		available = append(available, q)
	}
	return toResponses(available, false), nil
}

func toResponses(questions []models.Question, isAdmin bool) []models.QuestionResponse {
	out := make([]models.QuestionResponse, len(questions))
	for i, q := range questions {
		out[i] = q.ToResponse(isAdmin)
	}
	return out
}

func (s *Service) find(ctx context.Context, id string) (*models.Question, error) {
	question, err := s.store.Questions().FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find question: %w", err)
	}
	return question, nil
}

// checkAccess applies the participant rules: already answered, then locked.
func (s *Service) checkAccess(ctx context.Context, question *models.Question, viewer Viewer) error {
	if viewer.IsAdmin {
		return nil
	}
	_, err := s.store.Answers().FindByUserAndQuestion(ctx, viewer.UserID, question.ID)
	if err == nil {
		return ErrAlreadyAnswered
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("find answer: %w", err)
	}
	if question.IsLocked {
		return ErrLocked
	}
	return nil
}

func (s *Service) GetByID(ctx context.Context, id string, viewer Viewer) (*models.QuestionResponse, error) {
	question, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkAccess(ctx, question, viewer); err != nil {
		return nil, err
	}
	resp := question.ToResponse(viewer.IsAdmin)
	return &resp, nil
}

func (s *Service) GetByCode(ctx context.Context, code string, viewer Viewer) (*models.QuestionResponse, error) {
	if !ValidCode(code) {
		return nil, ErrNotFound
	}

	question, err := s.findByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if !viewer.IsAdmin && !question.Visible {
		return nil, ErrNotFound
	}
	if err := s.checkAccess(ctx, question, viewer); err != nil {
		return nil, err
	}
	resp := question.ToResponse(viewer.IsAdmin)
	return &resp, nil
}

// findByCode resolves code through the cache first. Concurrent misses for
// the same code share one database lookup.
func (s *Service) findByCode(ctx context.Context, code string) (*models.Question, error) {
	if s.cache != nil {
		id, ok, err := s.cache.GetQuestionID(ctx, code)
		if err != nil {
			log.Warn().Err(err).Str("code", code).Msg("code cache lookup failed")
		}
		if ok {
			question, err := s.find(ctx, id)
			if err == nil && question.Code == code {
				return question, nil
			}
			if err != nil && !errors.Is(err, ErrNotFound) {
				return nil, err
			}
		}
	}

	v, err, _ := s.lookups.Do(code, func() (interface{}, error) {
		question, err := s.store.Questions().FindByCode(ctx, code)
		if err != nil {
			return nil, err
		}
		s.cacheCode(ctx, code, question.ID)
		return question, nil
	})
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find question by code: %w", err)
	}

	question := *v.(*models.Question)
	question.Options = append([]models.Option(nil), question.Options...)
	return &question, nil
}

func (s *Service) cacheCode(ctx context.Context, code, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetQuestionID(ctx, code, id); err != nil {
		log.Warn().Err(err).Str("code", code).Msg("code cache write failed")
	}
}

func (s *Service) Update(ctx context.Context, id string, patch models.QuestionPatch) (*models.QuestionResponse, error) {
	question, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	statement := question.Statement
	if patch.Statement != nil {
		statement = *patch.Statement
	}
	difficulty := question.Difficulty
	if patch.Difficulty != nil {
		difficulty = *patch.Difficulty
	}
	options := make([]models.OptionInput, len(question.Options))
	for i, opt := range question.Options {
		options[i] = models.OptionInput{Text: opt.Text, IsCorrect: opt.IsCorrect}
	}
	replaceOptions := patch.Options != nil
	if replaceOptions {
		options = patch.Options
	}

	if err := validate(statement, options, difficulty); err != nil {
		return nil, err
	}

	question.Statement = statement
	question.Difficulty = difficulty
	if replaceOptions {
		question.Options = buildOptions(options)
	}
	if err := s.store.Questions().Save(ctx, question, replaceOptions); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("save question: %w", err)
	}

	resp := question.ToResponse(true)
	return &resp, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	question, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Questions().Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete question: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.DeleteQuestionCodes(ctx, question.Code); err != nil {
			log.Warn().Err(err).Str("code", question.Code).Msg("code cache eviction failed")
		}
	}
	log.Info().Str("question_id", id).Msg("question deleted")
	return nil
}

func (s *Service) SetVisibility(ctx context.Context, id string, visible bool) error {
	err := s.store.Questions().SetVisibility(ctx, id, visible)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *Service) SetVisibilityAll(ctx context.Context, visible bool) (int64, error) {
	return s.store.Questions().SetVisibilityAll(ctx, visible)
}

func (s *Service) SetLocked(ctx context.Context, id string, locked bool) error {
	err := s.store.Questions().SetLocked(ctx, id, locked)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if locked && s.events != nil {
		s.events.EmitQuestionLocked(id)
	}
	return nil
}
