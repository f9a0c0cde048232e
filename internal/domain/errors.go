package domain

import (
	"encoding/json"
	"fmt"
)

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	// Common errors
	ErrInternal     ErrorCode = "INTERNAL_ERROR"
	ErrNotFound     ErrorCode = "NOT_FOUND"
	ErrUnauthorized ErrorCode = "UNAUTHORIZED"

	// Pipeline stage errors
	ErrInvalidURL           ErrorCode = "INVALID_URL"
	ErrFetchFailed          ErrorCode = "FETCH_FAILED"
	ErrPostProcessingFailed ErrorCode = "POST_PROCESSING_FAILED"
	ErrTranscriptionFailed  ErrorCode = "TRANSCRIPTION_FAILED"
	ErrMissingCredential    ErrorCode = "MISSING_CREDENTIAL"
	ErrUpstreamUnavailable  ErrorCode = "UPSTREAM_UNAVAILABLE"
	ErrEmptyResponse        ErrorCode = "EMPTY_RESPONSE"
	ErrMalformedJSON        ErrorCode = "MALFORMED_JSON"

	// Quiz spec validation errors
	ErrWrongQuestionCount ErrorCode = "WRONG_QUESTION_COUNT"
	ErrBadOptionCount     ErrorCode = "BAD_OPTION_COUNT"
	ErrAnswerNotInOptions ErrorCode = "ANSWER_NOT_IN_OPTIONS"

	// Persistence errors
	ErrPersistenceFailure ErrorCode = "PERSISTENCE_FAILURE"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes the underlying cause for errors.Is/As.
func (e *DomainError) Unwrap() error {
	return e.Err
}

// MarshalJSON implements the json.Marshaler interface
func (e *DomainError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}{
		Code:    string(e.Code),
		Message: e.Message,
	})
}

// NewError creates a new DomainError
func NewError(code ErrorCode, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// ValidationError represents a validation error on a domain entity
type ValidationError struct {
	message string
}

func (e *ValidationError) Error() string {
	return e.message
}

func NewValidationError(message string) error {
	return &ValidationError{message: message}
}

// Helper functions for common errors

func NewInternalError(message string, err error) *DomainError {
	return NewError(ErrInternal, message, err)
}

func NewNotFoundError(message string) *DomainError {
	return NewError(ErrNotFound, message, nil)
}

func NewUnauthorizedError(message string) *DomainError {
	return NewError(ErrUnauthorized, message, nil)
}

func NewInvalidURLError(url string) *DomainError {
	return NewError(ErrInvalidURL, fmt.Sprintf("Invalid YouTube URL: %s", url), nil)
}

func NewFetchFailedError(err error) *DomainError {
	return NewError(ErrFetchFailed, "Failed to download YouTube audio. The URL may be unavailable.", err)
}

func NewPostProcessingFailedError(err error) *DomainError {
	return NewError(ErrPostProcessingFailed, "Audio extraction failed: ffmpeg not found or misconfigured.", err)
}

func NewTranscriptionFailedError(err error) *DomainError {
	return NewError(ErrTranscriptionFailed, "Transcription failed. Check the speech-to-text service and model availability.", err)
}

func NewMissingCredentialError() *DomainError {
	return NewError(ErrMissingCredential, "Generation API key is missing.", nil)
}

func NewUpstreamUnavailableError(err error) *DomainError {
	return NewError(ErrUpstreamUnavailable, "Quiz generation upstream error.", err)
}

func NewEmptyResponseError() *DomainError {
	return NewError(ErrEmptyResponse, "LLM returned no content.", nil)
}

func NewMalformedJSONError(err error) *DomainError {
	return NewError(ErrMalformedJSON, "LLM did not return valid JSON.", err)
}

func NewWrongQuestionCountError(got int) *DomainError {
	return NewError(ErrWrongQuestionCount,
		fmt.Sprintf("Quiz must have exactly %d questions, got %d.", RequiredQuestionCount, got), nil)
}

func NewBadOptionCountError(got int) *DomainError {
	return NewError(ErrBadOptionCount,
		fmt.Sprintf("Each question must have %d options, got %d.", RequiredOptionCount, got), nil)
}

func NewAnswerNotInOptionsError(answer string) *DomainError {
	return NewError(ErrAnswerNotInOptions,
		fmt.Sprintf("Answer %q must be one of the options.", answer), nil)
}

func NewPersistenceFailureError(err error) *DomainError {
	return NewError(ErrPersistenceFailure, "Failed to save the generated quiz.", err)
}
