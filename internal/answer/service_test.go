package answer

import (
	"context"
	"errors"
	"sync"
	"testing"

	"quiz-event/internal/models"
	"quiz-event/internal/repository/memory"
	"quiz-event/internal/score"
)

type recorder struct {
	mu         sync.Mutex
	locked     []string
	answers    []NewAnswerEvent
	scoreboard []*models.ScoreboardResponse
}

func (r *recorder) EmitQuestionLocked(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locked = append(r.locked, id)
}

func (r *recorder) EmitNewAnswer(v interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.answers = append(r.answers, v.(NewAnswerEvent))
}

func (r *recorder) EmitScoreboardUpdate(v interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scoreboard = append(r.scoreboard, v.(*models.ScoreboardResponse))
}

type fixture struct {
	store  *memory.Store
	svc    *Service
	events *recorder
}

func newFixture() *fixture {
	store := memory.NewStore()
	events := &recorder{}
	return &fixture{
		store:  store,
		svc:    NewService(store, score.NewService(store.Scores()), events),
		events: events,
	}
}

// addQuestion stores a question whose first option is correct.
func (f *fixture) addQuestion(t *testing.T, code string, difficulty models.Difficulty) *models.Question {
	t.Helper()
	q := &models.Question{
		ID:         "q-" + code,
		Code:       code,
		Statement:  "Statement " + code,
		Difficulty: difficulty,
		Visible:    true,
		Options: []models.Option{
			{ID: code + "-right", Text: "right", IsCorrect: true, Position: 0},
			{ID: code + "-wrong", Text: "wrong", Position: 1},
		},
	}
	if err := f.store.Questions().Create(context.Background(), q); err != nil {
		t.Fatalf("create question: %v", err)
	}
	return q
}

func (f *fixture) submit(q *models.Question, user, option string) (*models.AnswerResult, error) {
	return f.svc.Submit(context.Background(), Submission{
		QuestionID:       q.ID,
		SelectedOptionID: option,
		UserID:           user,
		Username:         "name-" + user,
	})
}

func TestCorrectAnswerScoresAndLocks(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	q := f.addQuestion(t, "Easy1", models.DifficultyEasy)

	result, err := f.submit(q, "u1", q.Options[0].ID)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !result.IsCorrect || result.PointsEarned != 10 || result.CorrectOptionID != q.Options[0].ID {
		t.Fatalf("unexpected result %+v", result)
	}

	sc, err := f.store.Scores().FindByUser(ctx, "u1")
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if sc.Username != "name-u1" || sc.EasyPoints != 10 || sc.TotalPoints != 10 {
		t.Fatalf("unexpected score %+v", sc)
	}

	stored, _ := f.store.Questions().FindByID(ctx, q.ID)
	if !stored.IsLocked {
		t.Fatalf("expected question to be locked")
	}

	if len(f.events.locked) != 1 || len(f.events.answers) != 1 || len(f.events.scoreboard) != 1 {
		t.Fatalf("unexpected events %+v", f.events)
	}
	if f.events.answers[0].Username != "name-u1" || !f.events.answers[0].IsCorrect {
		t.Fatalf("unexpected answer event %+v", f.events.answers[0])
	}
	if board := f.events.scoreboard[0]; len(board.Participants) != 1 || board.AdminView != nil {
		t.Fatalf("unexpected scoreboard snapshot %+v", board)
	}
}

func TestWrongAnswerLocksWithoutPoints(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	q := f.addQuestion(t, "Hard1", models.DifficultyHard)

	result, err := f.submit(q, "u1", q.Options[1].ID)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.IsCorrect || result.PointsEarned != 0 {
		t.Fatalf("unexpected result %+v", result)
	}
	if _, err := f.store.Scores().FindByUser(ctx, "u1"); err == nil {
		t.Fatalf("expected no score row for a wrong answer")
	}
	stored, _ := f.store.Questions().FindByID(ctx, q.ID)
	if !stored.IsLocked {
		t.Fatalf("expected question to be locked after a wrong answer")
	}
	if len(f.events.scoreboard) != 0 {
		t.Fatalf("expected no scoreboard push when points did not change")
	}
}

func TestLockedQuestionRejectsAnyOption(t *testing.T) {
	f := newFixture()
	q := f.addQuestion(t, "Lock1", models.DifficultyMedium)
	if _, err := f.submit(q, "u1", q.Options[0].ID); err != nil {
		t.Fatalf("first submit: %v", err)
	}

	for _, option := range []string{q.Options[0].ID, q.Options[1].ID, "bogus"} {
		if _, err := f.submit(q, "u2", option); !errors.Is(err, ErrQuestionLocked) {
			t.Fatalf("option %s: expected locked, got %v", option, err)
		}
	}
}

func TestDuplicateAfterWrongAnswer(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	q := f.addQuestion(t, "Dup01", models.DifficultyEasy)

	if _, err := f.submit(q, "u1", q.Options[1].ID); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	// an admin reopens the question; the user still cannot answer again
	if err := f.store.Questions().SetLocked(ctx, q.ID, false); err != nil {
		t.Fatalf("unlock: %v", err)
	}
	if _, err := f.submit(q, "u1", q.Options[0].ID); !errors.Is(err, ErrAlreadyAnswered) {
		t.Fatalf("expected already answered, got %v", err)
	}

	answers, _ := f.store.Answers().FindByUser(ctx, "u1")
	if len(answers) != 1 {
		t.Fatalf("expected exactly one answer, got %d", len(answers))
	}
}

func TestInvalidOptionAndMissingQuestion(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	q := f.addQuestion(t, "Opt01", models.DifficultyEasy)

	if _, err := f.submit(q, "u1", "not-an-option"); !errors.Is(err, ErrInvalidOption) {
		t.Fatalf("expected invalid option, got %v", err)
	}
	stored, _ := f.store.Questions().FindByID(ctx, q.ID)
	if stored.IsLocked {
		t.Fatalf("a rejected submission must not lock the question")
	}

	missing := &models.Question{ID: "nope"}
	if _, err := f.submit(missing, "u1", "x"); !errors.Is(err, ErrQuestionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestPointsByDifficultyAndTotals(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	total := 0
	for i, d := range []models.Difficulty{models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard} {
		q := f.addQuestion(t, "Pts0"+string(rune('0'+i)), d)
		result, err := f.submit(q, "u1", q.Options[0].ID)
		if err != nil {
			t.Fatalf("submit: %v", err)
		}
		if result.PointsEarned != d.Points() {
			t.Fatalf("%s: expected %d, got %d", d, d.Points(), result.PointsEarned)
		}
		total += result.PointsEarned

		sc, _ := f.store.Scores().FindByUser(ctx, "u1")
		if sc.TotalPoints != total || sc.EasyPoints+sc.MediumPoints+sc.HardPoints != sc.TotalPoints {
			t.Fatalf("unexpected score %+v after %s", sc, d)
		}
	}
	if total != 60 {
		t.Fatalf("expected 60 total, got %d", total)
	}
}

func TestConcurrentSubmissionsAcceptExactlyOne(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	q := f.addQuestion(t, "Race1", models.DifficultyHard)

	const racers = 25
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
		locked   int
	)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.submit(q, "racer-"+string(rune('a'+i)), q.Options[0].ID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				accepted++
			case errors.Is(err, ErrQuestionLocked):
				locked++
			default:
				t.Errorf("unexpected error %v", err)
			}
		}(i)
	}
	wg.Wait()

	if accepted != 1 || locked != racers-1 {
		t.Fatalf("expected 1 accepted and %d locked, got %d and %d", racers-1, accepted, locked)
	}
	answers, _ := f.store.Answers().FindByQuestion(ctx, q.ID)
	if len(answers) != 1 {
		t.Fatalf("expected one stored answer, got %d", len(answers))
	}
	scores, _ := f.store.Scores().FindAllRanked(ctx)
	if len(scores) != 1 || scores[0].TotalPoints != 30 {
		t.Fatalf("expected one 30 point score, got %+v", scores)
	}
}

func TestTwoParticipantScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	medium := f.addQuestion(t, "Scen1", models.DifficultyMedium)
	easy := f.addQuestion(t, "Scen2", models.DifficultyEasy)

	if r, err := f.submit(medium, "alice", medium.Options[0].ID); err != nil || r.PointsEarned != 20 {
		t.Fatalf("alice: %+v %v", r, err)
	}
	if _, err := f.submit(medium, "bob", medium.Options[0].ID); !errors.Is(err, ErrQuestionLocked) {
		t.Fatalf("bob on locked question: %v", err)
	}
	if r, err := f.submit(easy, "bob", easy.Options[1].ID); err != nil || r.PointsEarned != 0 {
		t.Fatalf("bob wrong: %+v %v", r, err)
	}

	board, err := score.NewService(f.store.Scores()).Scoreboard(ctx, false)
	if err != nil {
		t.Fatalf("scoreboard: %v", err)
	}
	if len(board.Participants) != 1 || board.Participants[0].Username != "name-alice" || board.Participants[0].Rank != 1 {
		t.Fatalf("unexpected scoreboard %+v", board.Participants)
	}

	mine, err := f.svc.ListMine(ctx, "bob")
	if err != nil || len(mine) != 1 || mine[0].IsCorrect {
		t.Fatalf("unexpected bob answers %+v %v", mine, err)
	}

	stats, err := f.svc.ForQuestion(ctx, medium.ID)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalAnswers != 1 || stats.CorrectAnswers != 1 || stats.IncorrectAnswers != 0 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}
