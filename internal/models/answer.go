package models

import "time"

// Answer is immutable once written. The composite unique index backs the
// one-answer-per-user-per-question rule at the storage level.
type Answer struct {
	ID               string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	QuestionID       string    `json:"questionId" gorm:"type:varchar(36);not null;uniqueIndex:idx_answers_user_question,priority:2;index"`
	UserID           string    `json:"userId" gorm:"type:varchar(36);not null;uniqueIndex:idx_answers_user_question,priority:1"`
	SelectedOptionID string    `json:"selectedOptionId" gorm:"type:varchar(36);not null"`
	IsCorrect        bool      `json:"isCorrect"`
	PointsEarned     int       `json:"pointsEarned"`
	AnsweredAt       time.Time `json:"answeredAt"`
}
