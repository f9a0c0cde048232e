package service

import (
	"context"
	"errors"

	"quiztube/internal/domain"
	"quiztube/internal/dto"
	"quiztube/internal/util"

	"go.uber.org/zap"
)

// QuizService is the application surface for quiz generation and management.
type QuizService interface {
	// CreateQuizFromURL runs the whole pipeline: URL resolution, audio
	// download, transcription, quiz synthesis, structural validation, and
	// atomic persistence. On any failure nothing is persisted.
	CreateQuizFromURL(ctx context.Context, ownerID, videoURL string) (*dto.QuizDetailResponse, error)
	GetQuiz(ctx context.Context, ownerID, quizID string) (*dto.QuizDetailResponse, error)
	ListQuizzes(ctx context.Context, ownerID string) (*dto.QuizListResponse, error)
	UpdateQuiz(ctx context.Context, ownerID, quizID string, req *dto.UpdateQuizRequest) (*dto.QuizResponse, error)
	DeleteQuiz(ctx context.Context, ownerID, quizID string) error
}

type quizService struct {
	repo            domain.QuizRepository
	txManager       domain.TransactionManager
	downloader      domain.MediaDownloader
	transcriber     domain.Transcriber
	generator       domain.QuizGenerator
	transcriptCache *TranscriptCacheService // optional, nil disables caching
	logger          *zap.Logger
}

func NewQuizService(
	repo domain.QuizRepository,
	txManager domain.TransactionManager,
	downloader domain.MediaDownloader,
	transcriber domain.Transcriber,
	generator domain.QuizGenerator,
	transcriptCache *TranscriptCacheService,
	logger *zap.Logger,
) QuizService {
	return &quizService{
		repo:            repo,
		txManager:       txManager,
		downloader:      downloader,
		transcriber:     transcriber,
		generator:       generator,
		transcriptCache: transcriptCache,
		logger:          logger,
	}
}

func (s *quizService) CreateQuizFromURL(ctx context.Context, ownerID, videoURL string) (*dto.QuizDetailResponse, error) {
	videoID, err := util.ExtractVideoID(videoURL)
	if err != nil {
		return nil, err
	}

	log := s.logger.With(zap.String("videoID", videoID), zap.String("ownerID", ownerID))

	transcript, err := s.resolveTranscript(ctx, videoID, videoURL, log)
	if err != nil {
		return nil, err
	}

	spec, err := s.generator.GenerateQuiz(ctx, transcript)
	if err != nil {
		return nil, s.classifyError(err, "quiz generation failed", log)
	}

	if err := spec.Validate(); err != nil {
		log.Warn("Generated quiz failed structural validation", zap.Error(err))
		return nil, s.classifyError(err, "quiz validation failed", log)
	}

	quiz := domain.NewQuiz(ownerID, spec.Title, spec.Description, videoURL)
	for i, q := range spec.Questions {
		quiz.Questions = append(quiz.Questions,
			domain.NewQuestion(q.QuestionTitle, q.QuestionOptions, q.Answer, i))
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		return s.repo.CreateQuizWithQuestions(txCtx, quiz)
	})
	if err != nil {
		log.Error("Quiz persistence failed", zap.Error(err))
		return nil, domain.NewPersistenceFailureError(err)
	}

	log.Info("Quiz created", zap.String("quizID", quiz.ID))
	return toQuizDetailResponse(quiz), nil
}

// resolveTranscript returns the transcript for a video, consulting the cache
// first. The audio is downloaded unconditionally so the staging file is always
// fresh; only the transcription step is skipped on a cache hit.
func (s *quizService) resolveTranscript(ctx context.Context, videoID, videoURL string, log *zap.Logger) (string, error) {
	var cached string
	if s.transcriptCache != nil {
		var err error
		cached, err = s.transcriptCache.Get(ctx, videoID)
		if err != nil {
			log.Warn("Transcript cache lookup failed", zap.Error(err))
			cached = ""
		}
	}

	audioPath, err := s.downloader.Download(ctx, videoURL)
	if err != nil {
		return "", s.classifyError(err, "audio download failed", log)
	}

	if cached != "" {
		return cached, nil
	}

	transcript, err := s.transcriber.Transcribe(ctx, audioPath, "")
	if err != nil {
		return "", s.classifyError(err, "transcription failed", log)
	}

	if s.transcriptCache != nil {
		if err := s.transcriptCache.Put(ctx, videoID, transcript); err != nil {
			log.Warn("Transcript cache write failed", zap.Error(err))
		}
	}
	return transcript, nil
}

func (s *quizService) GetQuiz(ctx context.Context, ownerID, quizID string) (*dto.QuizDetailResponse, error) {
	quiz, err := s.authorizedQuiz(ctx, ownerID, quizID)
	if err != nil {
		return nil, err
	}

	questions, err := s.repo.GetQuestionsByQuizID(ctx, quizID)
	if err != nil {
		return nil, s.classifyError(err, "failed to load questions", s.logger)
	}
	quiz.Questions = questions

	return toQuizDetailResponse(quiz), nil
}

func (s *quizService) ListQuizzes(ctx context.Context, ownerID string) (*dto.QuizListResponse, error) {
	quizzes, err := s.repo.GetQuizzesByOwner(ctx, ownerID)
	if err != nil {
		return nil, s.classifyError(err, "failed to list quizzes", s.logger)
	}

	resp := &dto.QuizListResponse{Quizzes: make([]dto.QuizResponse, 0, len(quizzes))}
	for _, q := range quizzes {
		resp.Quizzes = append(resp.Quizzes, toQuizResponse(q))
	}
	return resp, nil
}

func (s *quizService) UpdateQuiz(ctx context.Context, ownerID, quizID string, req *dto.UpdateQuizRequest) (*dto.QuizResponse, error) {
	quiz, err := s.authorizedQuiz(ctx, ownerID, quizID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		quiz.Title = *req.Title
	}
	if req.Description != nil {
		quiz.Description = *req.Description
	}

	if err := s.repo.UpdateQuiz(ctx, quiz); err != nil {
		return nil, s.classifyError(err, "failed to update quiz", s.logger)
	}

	resp := toQuizResponse(quiz)
	return &resp, nil
}

func (s *quizService) DeleteQuiz(ctx context.Context, ownerID, quizID string) error {
	if _, err := s.authorizedQuiz(ctx, ownerID, quizID); err != nil {
		return err
	}

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		return s.repo.DeleteQuiz(txCtx, quizID)
	})
	if err != nil {
		return s.classifyError(err, "failed to delete quiz", s.logger)
	}
	return nil
}

// authorizedQuiz loads the quiz and enforces ownership. Missing and
// unauthorized are reported distinctly so a caller can hide existence if it
// chooses to.
func (s *quizService) authorizedQuiz(ctx context.Context, ownerID, quizID string) (*domain.Quiz, error) {
	quiz, err := s.repo.GetQuizByID(ctx, quizID)
	if err != nil {
		return nil, s.classifyError(err, "failed to load quiz", s.logger)
	}
	if quiz == nil {
		return nil, domain.NewNotFoundError("quiz not found")
	}
	if quiz.OwnerID != ownerID {
		return nil, domain.NewUnauthorizedError("quiz belongs to another owner")
	}
	return quiz, nil
}

// classifyError passes DomainErrors through untouched and wraps anything else
// as internal, so callers always see a code from the taxonomy.
func (s *quizService) classifyError(err error, message string, log *zap.Logger) error {
	var de *domain.DomainError
	if errors.As(err, &de) {
		return de
	}
	log.Error(message, zap.Error(err))
	return domain.NewInternalError(message, err)
}

func toQuizResponse(quiz *domain.Quiz) dto.QuizResponse {
	return dto.QuizResponse{
		ID:          quiz.ID,
		Title:       quiz.Title,
		Description: quiz.Description,
		VideoURL:    quiz.VideoURL,
		CreatedAt:   quiz.CreatedAt,
		UpdatedAt:   quiz.UpdatedAt,
	}
}

func toQuizDetailResponse(quiz *domain.Quiz) *dto.QuizDetailResponse {
	resp := &dto.QuizDetailResponse{
		QuizResponse: toQuizResponse(quiz),
		Questions:    make([]dto.QuestionResponse, 0, len(quiz.Questions)),
	}
	for _, q := range quiz.Questions {
		resp.Questions = append(resp.Questions, dto.QuestionResponse{
			ID:              q.ID,
			QuestionTitle:   q.QuestionTitle,
			QuestionOptions: q.QuestionOptions,
			Answer:          q.Answer,
		})
	}
	return resp
}
