package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrDataLoad is returned when lesson or quiz content is missing or malformed.
	ErrDataLoad = errors.New("content could not be loaded")
	// ErrUnknownLesson is returned for a lesson id that content does not define.
	ErrUnknownLesson = errors.New("unknown lesson")
	// ErrUnknownQuiz is returned for a quiz id that content does not define.
	ErrUnknownQuiz = errors.New("unknown quiz")
	// ErrNoActiveQuiz is returned when a quiz action arrives before any quiz was started.
	ErrNoActiveQuiz = errors.New("no active quiz")
	// ErrExternalService marks a failed translation or chat backend call.
	ErrExternalService = errors.New("external service failed")

	// ErrProtocolViolation means the quiz state machine was driven out of order.
	ErrProtocolViolation = errors.New("quiz protocol violation")
	// ErrOutOfSequence is returned when an answer targets a stale or future question.
	ErrOutOfSequence = fmt.Errorf("%w: answer out of sequence", ErrProtocolViolation)
	// ErrNotAwaitingAdvance is returned when advancing before the current question was answered.
	ErrNotAwaitingAdvance = fmt.Errorf("%w: no answer submitted for current question", ErrProtocolViolation)
	// ErrUndeclaredOption is returned when a choice answer is not among the declared options.
	ErrUndeclaredOption = fmt.Errorf("%w: answer is not a declared option", ErrProtocolViolation)
	// ErrQuizCompleted is returned for submit/advance after the last question.
	ErrQuizCompleted = fmt.Errorf("%w: quiz already completed", ErrProtocolViolation)
)

// DataLoadError wraps a content failure with the source it came from.
func DataLoadError(source string, err error) error {
	if err == nil {
		return fmt.Errorf("%w: %s", ErrDataLoad, source)
	}
	return fmt.Errorf("%w: %s: %w", ErrDataLoad, source, err)
}
