package admin

import (
	"context"
	"fmt"
	"testing"

	"quiz-event/internal/models"
	"quiz-event/internal/repository/memory"
)

type recorder struct {
	scoreboards []interface{}
	finalized   []interface{}
}

func (r *recorder) EmitScoreboardUpdate(v interface{}) { r.scoreboards = append(r.scoreboards, v) }
func (r *recorder) EmitEventFinalized(v interface{})   { r.finalized = append(r.finalized, v) }

func seedQuestions(t *testing.T, store *memory.Store, unlocked, locked int) []*models.Question {
	t.Helper()
	ctx := context.Background()
	var out []*models.Question
	for i := 0; i < unlocked+locked; i++ {
		q := &models.Question{
			Code:       fmt.Sprintf("Qst%02d", i),
			Statement:  fmt.Sprintf("Question %d", i),
			Difficulty: models.DifficultyEasy,
			Visible:    true,
			Options: []models.Option{
				{ID: fmt.Sprintf("o%d-a", i), Text: "a", IsCorrect: true},
				{ID: fmt.Sprintf("o%d-b", i), Text: "b"},
			},
		}
		if err := store.Questions().Create(ctx, q); err != nil {
			t.Fatalf("create question: %v", err)
		}
		if i >= unlocked {
			if err := store.Questions().SetLocked(ctx, q.ID, true); err != nil {
				t.Fatalf("lock: %v", err)
			}
		}
		out = append(out, q)
	}
	return out
}

func TestFinalizeLocksEverythingAndRanks(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	events := &recorder{}
	svc := NewService(store, events)

	seedQuestions(t, store, 3, 2)
	points := []int{10, 50, 30, 20, 40}
	for i, p := range points {
		if _, err := store.Scores().AddPoints(ctx, fmt.Sprintf("u%d", i), fmt.Sprintf("user%d", i), models.DifficultyEasy, p); err != nil {
			t.Fatalf("add points: %v", err)
		}
	}

	result, err := svc.Finalize(ctx)
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if result.Message != "Event finalized successfully" || result.TotalQuestions != 5 || result.TotalParticipants != 5 {
		t.Fatalf("unexpected result %+v", result)
	}

	want := []string{"user1", "user4", "user2", "user3", "user0"}
	for i, entry := range result.FinalScoreboard {
		if entry.Rank != i+1 || entry.Username != want[i] {
			t.Fatalf("entry %d: got %+v, want %s", i, entry, want[i])
		}
		if entry.EasyPoints != entry.TotalPoints {
			t.Fatalf("breakdown lost for %+v", entry)
		}
	}

	questions, _ := store.Questions().FindAll(ctx)
	for _, q := range questions {
		if !q.IsLocked {
			t.Fatalf("question %s still unlocked after finalize", q.Code)
		}
	}
	if len(events.finalized) != 1 {
		t.Fatalf("expected one finalized event, got %d", len(events.finalized))
	}
}

func TestResetScoresKeepsAnswers(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	events := &recorder{}
	svc := NewService(store, events)

	qs := seedQuestions(t, store, 1, 0)
	if err := store.Answers().Create(ctx, &models.Answer{
		QuestionID: qs[0].ID, UserID: "u1", SelectedOptionID: qs[0].Options[0].ID, IsCorrect: true, PointsEarned: 10,
	}); err != nil {
		t.Fatalf("create answer: %v", err)
	}
	if _, err := store.Scores().AddPoints(ctx, "u1", "user1", models.DifficultyEasy, 10); err != nil {
		t.Fatalf("add points: %v", err)
	}

	if err := svc.ResetScores(ctx); err != nil {
		t.Fatalf("reset scores: %v", err)
	}

	scores, _ := store.Scores().FindAllRanked(ctx)
	if len(scores) != 0 {
		t.Fatalf("expected empty scoreboard, got %d rows", len(scores))
	}
	answers, _ := store.Answers().FindAll(ctx)
	if len(answers) != 1 {
		t.Fatalf("expected answers to survive, got %d", len(answers))
	}
	if len(events.scoreboards) != 1 {
		t.Fatalf("expected an empty scoreboard broadcast")
	}
	board := events.scoreboards[0].(*models.ScoreboardResponse)
	if board.Participants == nil || len(board.Participants) != 0 {
		t.Fatalf("unexpected broadcast %+v", board)
	}
}

func TestResetQuestionsIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := NewService(store, nil)
	seedQuestions(t, store, 2, 3)

	first, err := svc.ResetQuestions(ctx)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if first.UnlockedCount != 3 || first.Message != "All questions have been unlocked" {
		t.Fatalf("unexpected first reset %+v", first)
	}
	second, err := svc.ResetQuestions(ctx)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if second.UnlockedCount != 0 {
		t.Fatalf("expected second reset to unlock nothing, got %d", second.UnlockedCount)
	}
}

func TestDashboard(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := NewService(store, nil)

	qs := seedQuestions(t, store, 2, 1)
	users := []models.User{
		{Username: "admin", Password: "x", Role: models.RoleAdmin},
		{Username: "p1", Password: "x", Role: models.RoleParticipant},
		{Username: "p2", Password: "x", Role: models.RoleParticipant},
	}
	for i := range users {
		if err := store.Users().Create(ctx, &users[i]); err != nil {
			t.Fatalf("create user: %v", err)
		}
	}
	for i, correct := range []bool{true, false} {
		if err := store.Answers().Create(ctx, &models.Answer{
			QuestionID: qs[0].ID, UserID: users[i+1].ID, SelectedOptionID: "x", IsCorrect: correct,
		}); err != nil {
			t.Fatalf("create answer: %v", err)
		}
	}
	for i := 0; i < 12; i++ {
		if _, err := store.Scores().AddPoints(ctx, fmt.Sprintf("s%d", i), fmt.Sprintf("scorer%d", i), models.DifficultyMedium, 20); err != nil {
			t.Fatalf("add points: %v", err)
		}
	}

	d, err := svc.Dashboard(ctx)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if d.TotalQuestions != 3 || d.LockedQuestions != 1 || d.AvailableQuestions != 2 {
		t.Fatalf("unexpected question counts %+v", d)
	}
	if d.TotalAnswers != 2 || d.TotalParticipants != 2 || d.TotalAdmins != 1 {
		t.Fatalf("unexpected totals %+v", d)
	}
	if len(d.TopScores) != topScoresLimit || d.TopScores[0].Username != "scorer0" || d.TopScores[9].Rank != 10 {
		t.Fatalf("unexpected top scores %+v", d.TopScores)
	}

	var stat QuestionStat
	for _, s := range d.QuestionStats {
		if s.QuestionID == qs[0].ID {
			stat = s
		}
	}
	if stat.TotalAnswers != 2 || stat.CorrectAnswers != 1 || stat.Code != qs[0].Code {
		t.Fatalf("unexpected stat %+v", stat)
	}
}
