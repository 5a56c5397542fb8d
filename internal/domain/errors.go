package domain

import (
	"fmt"
	"strings"
)

// AppError is the base domain error type.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Cause   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Cause }

// Standard domain error constructors.

func ErrNotFound(entity, id string) *AppError {
	return &AppError{Code: "NOT_FOUND", Message: fmt.Sprintf("%s %s not found", entity, id), Status: 404}
}

func ErrConflict(msg string) *AppError {
	return &AppError{Code: "CONFLICT", Message: msg, Status: 409}
}

func ErrValidation(msg string) *AppError {
	return &AppError{Code: "VALIDATION_ERROR", Message: msg, Status: 400}
}

func ErrUnauthorized(msg string) *AppError {
	return &AppError{Code: "UNAUTHORIZED", Message: msg, Status: 401}
}

func ErrForbidden(msg string) *AppError {
	return &AppError{Code: "FORBIDDEN", Message: msg, Status: 403}
}

func ErrRateLimited(msg string) *AppError {
	return &AppError{Code: "RATE_LIMITED", Message: msg, Status: 429}
}

func ErrUnavailable(msg string) *AppError {
	return &AppError{Code: "SERVICE_UNAVAILABLE", Message: msg, Status: 503}
}

func ErrInternal(msg string, cause error) *AppError {
	return &AppError{Code: "INTERNAL_ERROR", Message: msg, Status: 500, Cause: cause}
}

// State-conflict errors.

// ErrInvalidTransition names the current status and the states it may move to.
func ErrInvalidTransition(entity, from, to string, valid []string) *AppError {
	next := "none"
	if len(valid) > 0 {
		next = strings.Join(valid, ", ")
	}
	return &AppError{
		Code:    "INVALID_STATUS_TRANSITION",
		Message: fmt.Sprintf("cannot change %s status from %s to %s; valid next states: %s", entity, from, to, next),
		Status:  400,
	}
}

func ErrPredictionLimit(max int) *AppError {
	return &AppError{Code: "PREDICTION_LIMIT_REACHED", Message: fmt.Sprintf("maximum predictions reached (%d per contest)", max), Status: 409}
}

func ErrContestNotOpen(status ContestStatus) *AppError {
	return &AppError{Code: "CONTEST_NOT_OPEN", Message: fmt.Sprintf("predictions only accepted while contest is OPEN (current: %s)", status), Status: 409}
}

func ErrQuestionAlreadyPredicted() *AppError {
	return &AppError{Code: "QUESTION_ALREADY_PREDICTED", Message: "question already predicted in this contest", Status: 409}
}

func ErrAlreadyJoined() *AppError {
	return &AppError{Code: "ALREADY_JOINED", Message: "user already joined this contest", Status: 409}
}

func ErrDuplicateTransaction(hash string) *AppError {
	return &AppError{Code: "DUPLICATE_TRANSACTION", Message: fmt.Sprintf("transaction %s already recorded", hash), Status: 409}
}
