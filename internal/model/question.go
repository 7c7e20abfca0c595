package model

import (
	"errors"
	"fmt"
)

// Question is a single AI-generated scenario question. The payload contract
// is strict: 2-3 choices, a valid correct index, and one feedback string per
// choice. Anything else is rejected before it can reach a live session.
type Question struct {
	Question           string   `json:"question" bson:"question"`
	Choices            []string `json:"choices" bson:"choices"`
	CorrectChoiceIndex int      `json:"correctChoiceIndex" bson:"correctChoiceIndex"`
	Feedback           []string `json:"feedback" bson:"feedback"`
}

var (
	ErrEmptyQuestion    = errors.New("question text is empty")
	ErrBadChoiceCount   = errors.New("question must have 2 or 3 choices")
	ErrBadCorrectIndex  = errors.New("correctChoiceIndex out of range")
	ErrFeedbackMismatch = errors.New("feedback length does not match choices length")
)

// Validate fails closed on any contract violation.
func (q *Question) Validate() error {
	if q.Question == "" {
		return ErrEmptyQuestion
	}
	if len(q.Choices) < 2 || len(q.Choices) > 3 {
		return ErrBadChoiceCount
	}
	for i, c := range q.Choices {
		if c == "" {
			return fmt.Errorf("choice %d is empty: %w", i, ErrBadChoiceCount)
		}
	}
	if q.CorrectChoiceIndex < 0 || q.CorrectChoiceIndex >= len(q.Choices) {
		return ErrBadCorrectIndex
	}
	if len(q.Feedback) != len(q.Choices) {
		return ErrFeedbackMismatch
	}
	return nil
}

// TimeoutChoice returns the choice auto-selected when the question timer
// expires: the first index that is not the correct one, or 0 if every
// choice is correct. Deliberately incorrect-leaning and deterministic.
func (q *Question) TimeoutChoice() int {
	for i := range q.Choices {
		if i != q.CorrectChoiceIndex {
			return i
		}
	}
	return 0
}
