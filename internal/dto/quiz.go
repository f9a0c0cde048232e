package dto

import "time"

// CreateQuizRequest is the payload the transport layer passes to the pipeline.
type CreateQuizRequest struct {
	VideoURL string `json:"video_url"`
}

// UpdateQuizRequest carries an owner's partial update. Nil fields are left
// untouched; questions are never mutable through this surface.
type UpdateQuizRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
}

// QuestionResponse is a single persisted question.
type QuestionResponse struct {
	ID              string   `json:"id"`
	QuestionTitle   string   `json:"question_title"`
	QuestionOptions []string `json:"question_options"`
	Answer          string   `json:"answer"`
}

// QuizResponse is a quiz without its question bodies (list view).
type QuizResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	VideoURL    string    `json:"video_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// QuizDetailResponse is a quiz with its ordered questions (detail view and
// the pipeline's success result).
type QuizDetailResponse struct {
	QuizResponse
	Questions []QuestionResponse `json:"questions"`
}

// QuizListResponse wraps an owner's quizzes, newest first.
type QuizListResponse struct {
	Quizzes []QuizResponse `json:"quizzes"`
}
