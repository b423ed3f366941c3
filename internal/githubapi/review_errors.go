package githubapi

import (
	"errors"
	"strings"

	"github.com/google/go-github/v68/github"
)

// AuthorReviewerConflictMessage is the API message returned when the pull request author is requested as a reviewer.
const AuthorReviewerConflictMessage = "Review cannot be requested from pull request author"

// ReviewRequestErrorKind classifies reviewer request failures.
type ReviewRequestErrorKind int

// Reviewer request failure kinds.
const (
	ReviewRequestErrorFatal ReviewRequestErrorKind = iota
	ReviewRequestErrorAuthorReviewerConflict
)

// ReviewRequestError is returned by RequestReviewers.
type ReviewRequestError struct {
	Kind    ReviewRequestErrorKind
	Message string
	Cause   error
}

// Error returns the message reported by the API.
func (reviewError ReviewRequestError) Error() string {
	return reviewError.Message
}

// Unwrap exposes the underlying cause.
func (reviewError ReviewRequestError) Unwrap() error {
	return reviewError.Cause
}

// IsAuthorReviewerConflict reports whether err is a tolerated author-as-reviewer conflict.
func IsAuthorReviewerConflict(err error) bool {
	var reviewError ReviewRequestError
	return errors.As(err, &reviewError) && reviewError.Kind == ReviewRequestErrorAuthorReviewerConflict
}

func classifyReviewRequestError(cause error) ReviewRequestError {
	message := cause.Error()
	var errorResponse *github.ErrorResponse
	if errors.As(cause, &errorResponse) {
		message = errorResponse.Message
		for _, fieldError := range errorResponse.Errors {
			message = strings.TrimSpace(message + " " + fieldError.Message)
		}
	}
	if strings.Contains(message, AuthorReviewerConflictMessage) {
		return ReviewRequestError{Kind: ReviewRequestErrorAuthorReviewerConflict, Message: AuthorReviewerConflictMessage, Cause: cause}
	}
	return ReviewRequestError{Kind: ReviewRequestErrorFatal, Message: cause.Error(), Cause: cause}
}
