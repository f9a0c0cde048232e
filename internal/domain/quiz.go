package domain

import "time"

// Quiz represents a generated quiz owned by a user account.
type Quiz struct {
	ID          string
	OwnerID     string
	Title       string
	Description string
	VideoURL    string // the URL as submitted, not the canonical form
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Questions   []*Question
}

// NewQuiz creates a new Quiz instance
func NewQuiz(ownerID, title, description, videoURL string) *Quiz {
	now := time.Now()
	return &Quiz{
		OwnerID:     ownerID,
		Title:       title,
		Description: description,
		VideoURL:    videoURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Validate validates the quiz
func (q *Quiz) Validate() error {
	if q.OwnerID == "" {
		return NewValidationError("owner is required")
	}
	if q.Title == "" {
		return NewValidationError("title is required")
	}
	if q.VideoURL == "" {
		return NewValidationError("video URL is required")
	}
	return nil
}

// Question represents a single multiple-choice question belonging to a quiz.
// Questions are only ever created as part of the quiz persistence batch.
type Question struct {
	ID              string
	QuizID          string
	QuestionTitle   string
	QuestionOptions []string
	Answer          string
	Position        int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewQuestion creates a new Question instance
func NewQuestion(title string, options []string, answer string, position int) *Question {
	now := time.Now()
	return &Question{
		QuestionTitle:   title,
		QuestionOptions: options,
		Answer:          answer,
		Position:        position,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}
