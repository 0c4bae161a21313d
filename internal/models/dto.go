package models

import "time"

type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func (u User) ToResponse() UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

type AuthResponse struct {
	User  UserResponse `json:"user"`
	Token string       `json:"token"`
}

type QuestionResponse struct {
	ID         string           `json:"id"`
	Code       string           `json:"code"`
	Statement  string           `json:"statement"`
	Options    []OptionResponse `json:"options"`
	Difficulty Difficulty       `json:"difficulty"`
	QRCodeURL  string           `json:"qrCodeUrl"`
	IsLocked   bool             `json:"isLocked"`
	Visible    bool             `json:"visible"`
	CreatedAt  time.Time        `json:"createdAt"`
}

type OptionResponse struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	IsCorrect *bool  `json:"isCorrect,omitempty"` // admins only
}

// ToResponse strips correctness flags unless the caller is an admin.
func (q Question) ToResponse(isAdmin bool) QuestionResponse {
	options := make([]OptionResponse, len(q.Options))
	for i, opt := range q.Options {
		options[i] = OptionResponse{ID: opt.ID, Text: opt.Text}
		if isAdmin {
			correct := opt.IsCorrect
			options[i].IsCorrect = &correct
		}
	}

	return QuestionResponse{
		ID:         q.ID,
		Code:       q.Code,
		Statement:  q.Statement,
		Options:    options,
		Difficulty: q.Difficulty,
		QRCodeURL:  q.QRCodeURL,
		IsLocked:   q.IsLocked,
		Visible:    q.Visible,
		CreatedAt:  q.CreatedAt,
	}
}

type AnswerResult struct {
	ID              string    `json:"id"`
	QuestionID      string    `json:"questionId"`
	IsCorrect       bool      `json:"isCorrect"`
	PointsEarned    int       `json:"pointsEarned"`
	CorrectOptionID string    `json:"correctOptionId,omitempty"`
	AnsweredAt      time.Time `json:"answeredAt"`
}

func (a Answer) ToResult() AnswerResult {
	return AnswerResult{
		ID:           a.ID,
		QuestionID:   a.QuestionID,
		IsCorrect:    a.IsCorrect,
		PointsEarned: a.PointsEarned,
		AnsweredAt:   a.AnsweredAt,
	}
}

type QuestionAnswerStats struct {
	QuestionID       string   `json:"questionId"`
	TotalAnswers     int      `json:"totalAnswers"`
	CorrectAnswers   int      `json:"correctAnswers"`
	IncorrectAnswers int      `json:"incorrectAnswers"`
	Answers          []Answer `json:"answers"`
}

type ScoreboardEntry struct {
	Rank        int    `json:"rank"`
	Username    string `json:"username"`
	TotalPoints int    `json:"totalPoints"`
}

type AdminScoreboardEntry struct {
	Rank         int    `json:"rank"`
	Username     string `json:"username"`
	TotalPoints  int    `json:"totalPoints"`
	EasyPoints   int    `json:"easyPoints"`
	MediumPoints int    `json:"mediumPoints"`
	HardPoints   int    `json:"hardPoints"`
}

type ScoreboardResponse struct {
	Participants []ScoreboardEntry      `json:"participants"`
	AdminView    []AdminScoreboardEntry `json:"adminView,omitempty"`
}
