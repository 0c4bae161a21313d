package models

import "time"

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// pointsByDifficulty is the fixed scoring table for a correct answer.
var pointsByDifficulty = map[Difficulty]int{
	DifficultyEasy:   10,
	DifficultyMedium: 20,
	DifficultyHard:   30,
}

func (d Difficulty) Valid() bool {
	_, ok := pointsByDifficulty[d]
	return ok
}

// Points returns what a correct answer to a question of this tier is worth.
func (d Difficulty) Points() int {
	return pointsByDifficulty[d]
}

const (
	MinOptions = 2
	MaxOptions = 5
)

type Question struct {
	ID         string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Code       string     `json:"code" gorm:"uniqueIndex;type:varchar(5);not null"`
	Statement  string     `json:"statement" gorm:"not null"`
	Options    []Option   `json:"options" gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE"`
	Difficulty Difficulty `json:"difficulty" gorm:"type:varchar(10);not null"`
	QRCodeURL  string     `json:"qrCodeUrl"`
	IsLocked   bool       `json:"isLocked" gorm:"not null;index"`
	Visible    bool       `json:"visible" gorm:"not null"`
	CreatedBy  string     `json:"createdBy" gorm:"type:varchar(36)"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

type Option struct {
	ID         string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	QuestionID string `json:"-" gorm:"type:varchar(36);index;not null"`
	Text       string `json:"text" gorm:"not null"`
	IsCorrect  bool   `json:"isCorrect"`
	Position   int    `json:"-"`
}

// FindOption returns the option with the given id, if it belongs to q.
func (q Question) FindOption(optionID string) (Option, bool) {
	for _, opt := range q.Options {
		if opt.ID == optionID {
			return opt, true
		}
	}
	return Option{}, false
}

// CorrectOptionID returns the id of the first option flagged correct.
func (q Question) CorrectOptionID() string {
	for _, opt := range q.Options {
		if opt.IsCorrect {
			return opt.ID
		}
	}
	return ""
}

// OptionInput is the client-supplied shape of an option on create/update.
type OptionInput struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
}

type QuestionInput struct {
	Statement  string        `json:"statement"`
	Options    []OptionInput `json:"options"`
	Difficulty Difficulty    `json:"difficulty"`
}

// QuestionPatch carries a partial update; nil fields are left untouched.
type QuestionPatch struct {
	Statement  *string       `json:"statement"`
	Options    []OptionInput `json:"options"`
	Difficulty *Difficulty   `json:"difficulty"`
}
