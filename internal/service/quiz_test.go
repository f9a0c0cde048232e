package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"quiztube/internal/domain"
	"quiztube/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testOwnerID  = "01HVX5AQJT0000000000000000"
	testVideoURL = "https://www.youtube.com/watch?v=dQw4w9WgXcQ"
	testVideoID  = "dQw4w9WgXcQ"
)

type quizServiceFixture struct {
	repo        *MockQuizRepository
	txManager   *MockTransactionManager
	downloader  *MockMediaDownloader
	transcriber *MockTranscriber
	generator   *MockQuizGenerator
	svc         QuizService
}

func newQuizServiceFixture(t *testing.T) *quizServiceFixture {
	t.Helper()
	f := &quizServiceFixture{
		repo:        new(MockQuizRepository),
		txManager:   new(MockTransactionManager),
		downloader:  new(MockMediaDownloader),
		transcriber: new(MockTranscriber),
		generator:   new(MockQuizGenerator),
	}
	f.svc = NewQuizService(f.repo, f.txManager, f.downloader, f.transcriber, f.generator, nil, zap.NewNop())
	return f
}

func validSpec() *domain.QuizSpec {
	spec := &domain.QuizSpec{Title: "Rocket Science", Description: "From the video"}
	for i := 0; i < domain.RequiredQuestionCount; i++ {
		spec.Questions = append(spec.Questions, domain.QuestionSpec{
			QuestionTitle:   fmt.Sprintf("Question %d?", i+1),
			QuestionOptions: []string{"alpha", "beta", "gamma", "delta"},
			Answer:          "beta",
		})
	}
	return spec
}

func domainCode(t *testing.T, err error) domain.ErrorCode {
	t.Helper()
	var de *domain.DomainError
	require.True(t, errors.As(err, &de), "expected DomainError, got %v", err)
	return de.Code
}

func TestCreateQuizFromURL_HappyPath(t *testing.T) {
	f := newQuizServiceFixture(t)

	f.downloader.On("Download", mock.Anything, testVideoURL).Return("/media/audio/dQw4w9WgXcQ.mp3", nil)
	f.transcriber.On("Transcribe", mock.Anything, "/media/audio/dQw4w9WgXcQ.mp3", "").Return("lecture text", nil)
	f.generator.On("GenerateQuiz", mock.Anything, "lecture text").Return(validSpec(), nil)
	f.txManager.On("WithTransaction", mock.Anything, mock.Anything).Return(nil)
	f.repo.On("CreateQuizWithQuestions", mock.Anything, mock.MatchedBy(func(q *domain.Quiz) bool {
		return q.OwnerID == testOwnerID && len(q.Questions) == domain.RequiredQuestionCount
	})).Return(nil)

	resp, err := f.svc.CreateQuizFromURL(context.Background(), testOwnerID, testVideoURL)
	require.NoError(t, err)
	assert.Equal(t, "Rocket Science", resp.Title)
	assert.Equal(t, testVideoURL, resp.VideoURL)
	assert.Len(t, resp.Questions, domain.RequiredQuestionCount)
	for i, q := range resp.Questions {
		assert.Len(t, q.QuestionOptions, domain.RequiredOptionCount, "question %d", i)
		assert.Contains(t, q.QuestionOptions, q.Answer, "question %d", i)
	}
	f.repo.AssertExpectations(t)
}

func TestCreateQuizFromURL_InvalidURLStopsPipeline(t *testing.T) {
	f := newQuizServiceFixture(t)

	_, err := f.svc.CreateQuizFromURL(context.Background(), testOwnerID, "not a url")
	assert.Equal(t, domain.ErrInvalidURL, domainCode(t, err))

	f.downloader.AssertNotCalled(t, "Download", mock.Anything, mock.Anything)
	f.transcriber.AssertNotCalled(t, "Transcribe", mock.Anything, mock.Anything, mock.Anything)
	f.generator.AssertNotCalled(t, "GenerateQuiz", mock.Anything, mock.Anything)
}

func TestCreateQuizFromURL_WrongQuestionCountIsNotPersisted(t *testing.T) {
	f := newQuizServiceFixture(t)

	nine := validSpec()
	nine.Questions = nine.Questions[:9]

	f.downloader.On("Download", mock.Anything, testVideoURL).Return("/media/audio/dQw4w9WgXcQ.mp3", nil)
	f.transcriber.On("Transcribe", mock.Anything, mock.Anything, "").Return("lecture text", nil)
	f.generator.On("GenerateQuiz", mock.Anything, "lecture text").Return(nine, nil)

	_, err := f.svc.CreateQuizFromURL(context.Background(), testOwnerID, testVideoURL)
	assert.Equal(t, domain.ErrWrongQuestionCount, domainCode(t, err))

	f.repo.AssertNotCalled(t, "CreateQuizWithQuestions", mock.Anything, mock.Anything)
	f.txManager.AssertNotCalled(t, "WithTransaction", mock.Anything, mock.Anything)
}

func TestCreateQuizFromURL_AnswerNotInOptionsIsNotPersisted(t *testing.T) {
	f := newQuizServiceFixture(t)

	bad := validSpec()
	bad.Questions[3].Answer = "epsilon"

	f.downloader.On("Download", mock.Anything, testVideoURL).Return("/media/audio/dQw4w9WgXcQ.mp3", nil)
	f.transcriber.On("Transcribe", mock.Anything, mock.Anything, "").Return("lecture text", nil)
	f.generator.On("GenerateQuiz", mock.Anything, "lecture text").Return(bad, nil)

	_, err := f.svc.CreateQuizFromURL(context.Background(), testOwnerID, testVideoURL)
	assert.Equal(t, domain.ErrAnswerNotInOptions, domainCode(t, err))
	f.repo.AssertNotCalled(t, "CreateQuizWithQuestions", mock.Anything, mock.Anything)
}

func TestCreateQuizFromURL_DownloadFailurePropagates(t *testing.T) {
	f := newQuizServiceFixture(t)

	f.downloader.On("Download", mock.Anything, testVideoURL).
		Return("", domain.NewFetchFailedError(errors.New("video unavailable")))

	_, err := f.svc.CreateQuizFromURL(context.Background(), testOwnerID, testVideoURL)
	assert.Equal(t, domain.ErrFetchFailed, domainCode(t, err))
	f.transcriber.AssertNotCalled(t, "Transcribe", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateQuizFromURL_PersistenceFailureSurfacesAsPersistenceCode(t *testing.T) {
	f := newQuizServiceFixture(t)

	f.downloader.On("Download", mock.Anything, testVideoURL).Return("/media/audio/dQw4w9WgXcQ.mp3", nil)
	f.transcriber.On("Transcribe", mock.Anything, mock.Anything, "").Return("lecture text", nil)
	f.generator.On("GenerateQuiz", mock.Anything, "lecture text").Return(validSpec(), nil)
	f.txManager.On("WithTransaction", mock.Anything, mock.Anything).Return(nil)
	f.repo.On("CreateQuizWithQuestions", mock.Anything, mock.Anything).
		Return(errors.New("ORA-00001: unique constraint violated"))

	_, err := f.svc.CreateQuizFromURL(context.Background(), testOwnerID, testVideoURL)
	assert.Equal(t, domain.ErrPersistenceFailure, domainCode(t, err))
}

func TestCreateQuizFromURL_CachedTranscriptSkipsTranscriber(t *testing.T) {
	f := newQuizServiceFixture(t)

	mockCache := new(MockCache)
	mockCache.On("Get", mock.Anything, "quiztube:transcript:youtube:"+testVideoID).
		Return("cached lecture text", nil)

	transcriptCache := NewTranscriptCacheService(mockCache, zap.NewNop())
	f.svc = NewQuizService(f.repo, f.txManager, f.downloader, f.transcriber, f.generator, transcriptCache, zap.NewNop())

	// The audio download still happens; only transcription is skipped.
	f.downloader.On("Download", mock.Anything, testVideoURL).Return("/media/audio/dQw4w9WgXcQ.mp3", nil)
	f.generator.On("GenerateQuiz", mock.Anything, "cached lecture text").Return(validSpec(), nil)
	f.txManager.On("WithTransaction", mock.Anything, mock.Anything).Return(nil)
	f.repo.On("CreateQuizWithQuestions", mock.Anything, mock.Anything).Return(nil)

	_, err := f.svc.CreateQuizFromURL(context.Background(), testOwnerID, testVideoURL)
	require.NoError(t, err)

	f.transcriber.AssertNotCalled(t, "Transcribe", mock.Anything, mock.Anything, mock.Anything)
	f.downloader.AssertExpectations(t)
}

func TestCreateQuizFromURL_CacheWriteFailureIsNonFatal(t *testing.T) {
	f := newQuizServiceFixture(t)

	mockCache := new(MockCache)
	mockCache.On("Get", mock.Anything, mock.Anything).Return("", domain.ErrCacheMiss)
	mockCache.On("Set", mock.Anything, mock.Anything, "lecture text", mock.Anything).
		Return(errors.New("redis: connection refused"))

	transcriptCache := NewTranscriptCacheService(mockCache, zap.NewNop())
	f.svc = NewQuizService(f.repo, f.txManager, f.downloader, f.transcriber, f.generator, transcriptCache, zap.NewNop())

	f.downloader.On("Download", mock.Anything, testVideoURL).Return("/media/audio/dQw4w9WgXcQ.mp3", nil)
	f.transcriber.On("Transcribe", mock.Anything, mock.Anything, "").Return("lecture text", nil)
	f.generator.On("GenerateQuiz", mock.Anything, "lecture text").Return(validSpec(), nil)
	f.txManager.On("WithTransaction", mock.Anything, mock.Anything).Return(nil)
	f.repo.On("CreateQuizWithQuestions", mock.Anything, mock.Anything).Return(nil)

	_, err := f.svc.CreateQuizFromURL(context.Background(), testOwnerID, testVideoURL)
	assert.NoError(t, err)
}

func ownedQuiz(id string) *domain.Quiz {
	q := domain.NewQuiz(testOwnerID, "Owned", "desc", testVideoURL)
	q.ID = id
	return q
}

func TestGetQuiz_ReturnsOrderedQuestions(t *testing.T) {
	f := newQuizServiceFixture(t)

	f.repo.On("GetQuizByID", mock.Anything, "q1").Return(ownedQuiz("q1"), nil)
	f.repo.On("GetQuestionsByQuizID", mock.Anything, "q1").Return([]*domain.Question{
		{ID: "a", QuizID: "q1", QuestionTitle: "First?", QuestionOptions: []string{"a", "b", "c", "d"}, Answer: "a", Position: 0},
		{ID: "b", QuizID: "q1", QuestionTitle: "Second?", QuestionOptions: []string{"a", "b", "c", "d"}, Answer: "b", Position: 1},
	}, nil)

	resp, err := f.svc.GetQuiz(context.Background(), testOwnerID, "q1")
	require.NoError(t, err)
	assert.Equal(t, "First?", resp.Questions[0].QuestionTitle)
	assert.Equal(t, "Second?", resp.Questions[1].QuestionTitle)
}

func TestGetQuiz_NotFound(t *testing.T) {
	f := newQuizServiceFixture(t)

	f.repo.On("GetQuizByID", mock.Anything, "missing").Return(nil, nil)

	_, err := f.svc.GetQuiz(context.Background(), testOwnerID, "missing")
	assert.Equal(t, domain.ErrNotFound, domainCode(t, err))
}

func TestGetQuiz_OtherOwnerIsUnauthorized(t *testing.T) {
	f := newQuizServiceFixture(t)

	other := ownedQuiz("q1")
	other.OwnerID = "someone-else"
	f.repo.On("GetQuizByID", mock.Anything, "q1").Return(other, nil)

	_, err := f.svc.GetQuiz(context.Background(), testOwnerID, "q1")
	assert.Equal(t, domain.ErrUnauthorized, domainCode(t, err))
	f.repo.AssertNotCalled(t, "GetQuestionsByQuizID", mock.Anything, mock.Anything)
}

func TestUpdateQuiz_PartialUpdate(t *testing.T) {
	f := newQuizServiceFixture(t)

	f.repo.On("GetQuizByID", mock.Anything, "q1").Return(ownedQuiz("q1"), nil)
	f.repo.On("UpdateQuiz", mock.Anything, mock.MatchedBy(func(q *domain.Quiz) bool {
		return q.Title == "New Title" && q.Description == "desc"
	})).Return(nil)

	title := "New Title"
	resp, err := f.svc.UpdateQuiz(context.Background(), testOwnerID, "q1", &dto.UpdateQuizRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "New Title", resp.Title)
	assert.Equal(t, "desc", resp.Description)
	f.repo.AssertExpectations(t)
}

func TestDeleteQuiz_RunsInTransaction(t *testing.T) {
	f := newQuizServiceFixture(t)

	f.repo.On("GetQuizByID", mock.Anything, "q1").Return(ownedQuiz("q1"), nil)
	f.txManager.On("WithTransaction", mock.Anything, mock.Anything).Return(nil)
	f.repo.On("DeleteQuiz", mock.Anything, "q1").Return(nil)

	err := f.svc.DeleteQuiz(context.Background(), testOwnerID, "q1")
	assert.NoError(t, err)
	f.txManager.AssertExpectations(t)
	f.repo.AssertExpectations(t)
}

func TestDeleteQuiz_UnauthorizedOwnerDoesNotDelete(t *testing.T) {
	f := newQuizServiceFixture(t)

	other := ownedQuiz("q1")
	other.OwnerID = "someone-else"
	f.repo.On("GetQuizByID", mock.Anything, "q1").Return(other, nil)

	err := f.svc.DeleteQuiz(context.Background(), testOwnerID, "q1")
	assert.Equal(t, domain.ErrUnauthorized, domainCode(t, err))
	f.repo.AssertNotCalled(t, "DeleteQuiz", mock.Anything, mock.Anything)
}
