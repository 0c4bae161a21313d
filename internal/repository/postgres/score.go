package postgres

import (
	"context"
	"fmt"
	"time"

	"quiz-event/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ScoreRepository struct {
	db *gorm.DB
}

func NewScoreRepository(db *gorm.DB) *ScoreRepository {
	return &ScoreRepository{db: db}
}

func bucketColumn(difficulty models.Difficulty) (string, error) {
	switch difficulty {
	case models.DifficultyEasy:
		return "easy_points", nil
	case models.DifficultyMedium:
		return "medium_points", nil
	case models.DifficultyHard:
		return "hard_points", nil
	}
	return "", fmt.Errorf("unknown difficulty %q", difficulty)
}

func (r *ScoreRepository) FindByUser(ctx context.Context, userID string) (*models.Score, error) {
	var score models.Score
	if err := r.db.WithContext(ctx).First(&score, "user_id = ?", userID).Error; err != nil {
		return nil, translate(err)
	}
	return &score, nil
}

func (r *ScoreRepository) FindAllRanked(ctx context.Context) ([]models.Score, error) {
	var scores []models.Score
	err := r.db.WithContext(ctx).
		Order("total_points desc").
		Order("created_at asc").
		Order("user_id asc").
		Find(&scores).Error
	return scores, translate(err)
}

// AddPoints is a single INSERT ... ON CONFLICT statement, so concurrent
// credits to the same user never lose an increment.
func (r *ScoreRepository) AddPoints(ctx context.Context, userID, username string, difficulty models.Difficulty, points int) (*models.Score, error) {
	column, err := bucketColumn(difficulty)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	score := models.Score{
		UserID:    userID,
		Username:  username,
		CreatedAt: now,
		UpdatedAt: now,
	}
	score.Add(difficulty, points)

	db := r.db.WithContext(ctx)
	err = db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			column:         gorm.Expr("scores."+column+" + ?", points),
			"total_points": gorm.Expr("scores.total_points + ?", points),
			"updated_at":   now,
		}),
	}).Create(&score).Error
	if err != nil {
		return nil, translate(err)
	}

	return r.FindByUser(ctx, userID)
}

func (r *ScoreRepository) DeleteAll(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).Where("1 = 1").Delete(&models.Score{})
	return result.RowsAffected, translate(result.Error)
}
