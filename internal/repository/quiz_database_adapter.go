package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"quiztube/internal/domain"
	"quiztube/internal/repository/models"
	"quiztube/internal/util"

	"github.com/jmoiron/sqlx"
)

// QuizDatabaseAdapter implements domain.QuizRepository using sqlx.DB
type QuizDatabaseAdapter struct {
	db *sqlx.DB
}

// NewQuizDatabaseAdapter creates a new instance of QuizDatabaseAdapter
func NewQuizDatabaseAdapter(db *sqlx.DB) domain.QuizRepository {
	return &QuizDatabaseAdapter{db: db}
}

const quizColumns = `
		id "id",
		owner_id "owner_id",
		title "title",
		description "description",
		video_url "video_url",
		created_at "created_at",
		updated_at "updated_at",
		deleted_at "deleted_at"`

const questionColumns = `
		id "id",
		quiz_id "quiz_id",
		question_title "question_title",
		question_options "question_options",
		answer "answer",
		position "position",
		created_at "created_at",
		updated_at "updated_at",
		deleted_at "deleted_at"`

// CreateQuizWithQuestions implements domain.QuizRepository. It issues one
// quiz insert followed by one insert per question against the executor in
// ctx, so that under TransactionManager the whole batch is atomic.
func (a *QuizDatabaseAdapter) CreateQuizWithQuestions(ctx context.Context, quiz *domain.Quiz) error {
	if quiz == nil {
		return fmt.Errorf("cannot save nil quiz")
	}
	exec := GetExecutor(ctx, a.db)

	now := time.Now()
	modelQuiz := toModelQuiz(quiz)
	modelQuiz.ID = util.NewULID()
	modelQuiz.CreatedAt = now
	modelQuiz.UpdatedAt = now

	quizQuery := `INSERT INTO quizzes (
		id, owner_id, title, description, video_url, created_at, updated_at
	) VALUES (
		:1, :2, :3, :4, :5, :6, :7
	)`

	_, err := exec.ExecContext(ctx, quizQuery,
		modelQuiz.ID,
		modelQuiz.OwnerID,
		modelQuiz.Title,
		modelQuiz.Description,
		modelQuiz.VideoURL,
		modelQuiz.CreatedAt,
		modelQuiz.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save quiz: %w", err)
	}

	questionQuery := `INSERT INTO questions (
		id, quiz_id, question_title, question_options, answer, position, created_at, updated_at
	) VALUES (
		:1, :2, :3, :4, :5, :6, :7, :8
	)`

	for _, question := range quiz.Questions {
		modelQuestion := toModelQuestion(question)
		modelQuestion.ID = util.NewULID()
		modelQuestion.QuizID = modelQuiz.ID
		modelQuestion.CreatedAt = now
		modelQuestion.UpdatedAt = now

		_, err := exec.ExecContext(ctx, questionQuery,
			modelQuestion.ID,
			modelQuestion.QuizID,
			modelQuestion.QuestionTitle,
			modelQuestion.QuestionOptions,
			modelQuestion.Answer,
			modelQuestion.Position,
			modelQuestion.CreatedAt,
			modelQuestion.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to save question at position %d: %w", question.Position, err)
		}

		question.ID = modelQuestion.ID
		question.QuizID = modelQuiz.ID
		question.CreatedAt = modelQuestion.CreatedAt
		question.UpdatedAt = modelQuestion.UpdatedAt
	}

	quiz.ID = modelQuiz.ID
	quiz.CreatedAt = modelQuiz.CreatedAt
	quiz.UpdatedAt = modelQuiz.UpdatedAt
	return nil
}

// GetQuizByID implements domain.QuizRepository. Returns (nil, nil) when the
// quiz does not exist or is soft-deleted.
func (a *QuizDatabaseAdapter) GetQuizByID(ctx context.Context, id string) (*domain.Quiz, error) {
	exec := GetExecutor(ctx, a.db)

	var modelQuiz models.Quiz
	query := `SELECT ` + quizColumns + `
	FROM quizzes
	WHERE id = :1
	AND deleted_at IS NULL`

	err := exec.GetContext(ctx, &modelQuiz, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get quiz by ID %s: %w", id, err)
	}
	return toDomainQuiz(&modelQuiz), nil
}

// GetQuestionsByQuizID implements domain.QuizRepository. Questions come back
// in their original pipeline order.
func (a *QuizDatabaseAdapter) GetQuestionsByQuizID(ctx context.Context, quizID string) ([]*domain.Question, error) {
	exec := GetExecutor(ctx, a.db)

	var modelQuestions []*models.Question
	query := `SELECT ` + questionColumns + `
	FROM questions
	WHERE quiz_id = :1
	AND deleted_at IS NULL
	ORDER BY position ASC`

	err := exec.SelectContext(ctx, &modelQuestions, query, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to get questions for quiz %s: %w", quizID, err)
	}

	questions := make([]*domain.Question, 0, len(modelQuestions))
	for _, mq := range modelQuestions {
		questions = append(questions, toDomainQuestion(mq))
	}
	return questions, nil
}

// GetQuizzesByOwner implements domain.QuizRepository, newest first.
func (a *QuizDatabaseAdapter) GetQuizzesByOwner(ctx context.Context, ownerID string) ([]*domain.Quiz, error) {
	exec := GetExecutor(ctx, a.db)

	var modelQuizzes []*models.Quiz
	query := `SELECT ` + quizColumns + `
	FROM quizzes
	WHERE owner_id = :1
	AND deleted_at IS NULL
	ORDER BY created_at DESC`

	err := exec.SelectContext(ctx, &modelQuizzes, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get quizzes for owner %s: %w", ownerID, err)
	}

	quizzes := make([]*domain.Quiz, 0, len(modelQuizzes))
	for _, mq := range modelQuizzes {
		quizzes = append(quizzes, toDomainQuiz(mq))
	}
	return quizzes, nil
}

// UpdateQuiz implements domain.QuizRepository. Only title and description are
// mutable after creation.
func (a *QuizDatabaseAdapter) UpdateQuiz(ctx context.Context, quiz *domain.Quiz) error {
	if quiz == nil {
		return fmt.Errorf("cannot update nil quiz")
	}
	if quiz.ID == "" {
		return fmt.Errorf("cannot update quiz with empty ID")
	}
	exec := GetExecutor(ctx, a.db)

	updatedAt := time.Now()
	query := `UPDATE quizzes SET
		title = :1,
		description = :2,
		updated_at = :3
	WHERE id = :4
	AND deleted_at IS NULL`

	result, err := exec.ExecContext(ctx, query, quiz.Title, quiz.Description, updatedAt, quiz.ID)
	if err != nil {
		return fmt.Errorf("failed to update quiz: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("quiz with ID %s not found or not updated", quiz.ID)
	}
	quiz.UpdatedAt = updatedAt
	return nil
}

// DeleteQuiz implements domain.QuizRepository: soft-deletes the quiz and all
// of its questions. Run under TransactionManager so both updates commit
// together.
func (a *QuizDatabaseAdapter) DeleteQuiz(ctx context.Context, id string) error {
	exec := GetExecutor(ctx, a.db)
	deletedAt := time.Now()

	questionQuery := `UPDATE questions SET deleted_at = :1 WHERE quiz_id = :2 AND deleted_at IS NULL`
	if _, err := exec.ExecContext(ctx, questionQuery, deletedAt, id); err != nil {
		return fmt.Errorf("failed to delete questions for quiz %s: %w", id, err)
	}

	quizQuery := `UPDATE quizzes SET deleted_at = :1 WHERE id = :2 AND deleted_at IS NULL`
	result, err := exec.ExecContext(ctx, quizQuery, deletedAt, id)
	if err != nil {
		return fmt.Errorf("failed to delete quiz %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("quiz with ID %s not found", id)
	}
	return nil
}

// Helper functions for model conversion

func toDomainQuiz(m *models.Quiz) *domain.Quiz {
	if m == nil {
		return nil
	}
	return &domain.Quiz{
		ID:          m.ID,
		OwnerID:     m.OwnerID,
		Title:       m.Title,
		Description: m.Description,
		VideoURL:    m.VideoURL,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func toModelQuiz(d *domain.Quiz) *models.Quiz {
	return &models.Quiz{
		ID:          d.ID,
		OwnerID:     d.OwnerID,
		Title:       d.Title,
		Description: d.Description,
		VideoURL:    d.VideoURL,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func toDomainQuestion(m *models.Question) *domain.Question {
	if m == nil {
		return nil
	}
	return &domain.Question{
		ID:              m.ID,
		QuizID:          m.QuizID,
		QuestionTitle:   m.QuestionTitle,
		QuestionOptions: []string(m.QuestionOptions),
		Answer:          m.Answer,
		Position:        m.Position,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func toModelQuestion(d *domain.Question) *models.Question {
	return &models.Question{
		ID:              d.ID,
		QuizID:          d.QuizID,
		QuestionTitle:   d.QuestionTitle,
		QuestionOptions: models.StringSlice(d.QuestionOptions),
		Answer:          d.Answer,
		Position:        d.Position,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}
