package domain

import "context"

// MediaDownloader retrieves the audio track of a video URL into durable
// staging storage and returns the absolute path of the resulting file.
type MediaDownloader interface {
	Download(ctx context.Context, url string) (string, error)
}

// Transcriber converts an audio file into plain text. An empty modelName
// selects the configured default model. An empty transcript is a valid result.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string, modelName string) (string, error)
}

// QuizGenerator synthesizes an unvalidated QuizSpec from a transcript.
type QuizGenerator interface {
	GenerateQuiz(ctx context.Context, transcript string) (*QuizSpec, error)
}

// QuizRepository persists quizzes and their questions.
type QuizRepository interface {
	// CreateQuizWithQuestions inserts the quiz row and all of its question
	// rows. It participates in the transaction carried by ctx when present;
	// callers that need atomicity must run it under TransactionManager.
	CreateQuizWithQuestions(ctx context.Context, quiz *Quiz) error
	GetQuizByID(ctx context.Context, id string) (*Quiz, error)
	GetQuestionsByQuizID(ctx context.Context, quizID string) ([]*Question, error)
	GetQuizzesByOwner(ctx context.Context, ownerID string) ([]*Quiz, error)
	UpdateQuiz(ctx context.Context, quiz *Quiz) error
	// DeleteQuiz soft-deletes the quiz and all of its questions.
	DeleteQuiz(ctx context.Context, id string) error
}

// TransactionManager runs fn inside a single database transaction. Any error
// returned by fn rolls the transaction back.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
