package models

import "time"

type Score struct {
	UserID       string    `json:"userId" gorm:"primaryKey;type:varchar(36)"`
	Username     string    `json:"username" gorm:"not null"`
	EasyPoints   int       `json:"easyPoints" gorm:"not null"`
	MediumPoints int       `json:"mediumPoints" gorm:"not null"`
	HardPoints   int       `json:"hardPoints" gorm:"not null"`
	TotalPoints  int       `json:"totalPoints" gorm:"not null;index"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Add credits points to the bucket of the given difficulty and the total.
func (s *Score) Add(difficulty Difficulty, points int) {
	switch difficulty {
	case DifficultyEasy:
		s.EasyPoints += points
	case DifficultyMedium:
		s.MediumPoints += points
	case DifficultyHard:
		s.HardPoints += points
	}
	s.TotalPoints += points
}
