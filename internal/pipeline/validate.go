package pipeline

import (
	"unicode/utf8"

	"github.com/ppiankov/trustie/internal/model"
	"github.com/ppiankov/trustie/internal/normalize"
)

// Input bounds, measured in runes after normalization
const (
	MinContentLength  = 20
	MaxContentLength  = 15000
	MinQuestionLength = 5
	MaxQuestionLength = 1000
)

const (
	MsgContentEmpty    = "Please paste some text to verify."
	MsgContentShort    = "Please paste a longer passage (at least 20 characters)."
	MsgContentLong     = "Text is too long. Please keep it under 15000 characters."
	MsgSourceMissing   = "Please select which AI produced this text."
	MsgQuestionEmpty   = "Please enter a question."
	MsgQuestionShort   = "Please enter a longer question."
	MsgQuestionLong    = "Question is too long. Please make it shorter."
	MsgQueryEmpty      = "No search query provided"
	MsgRephraseEmpty   = "No text provided"
	MsgRankingSource   = "AI source required"
	MsgRankingNegative = "Counts must not be negative"
)

// ValidateContent normalizes text submitted for verification and checks its length
func ValidateContent(content string) (string, error) {
	text := normalize.Text(content)
	n := utf8.RuneCountInString(text)

	switch {
	case n == 0:
		return "", model.NewValidationError("content", MsgContentEmpty)
	case n < MinContentLength:
		return "", model.NewValidationError("content", MsgContentShort)
	case n > MaxContentLength:
		return "", model.NewValidationError("content", MsgContentLong)
	}
	return text, nil
}

// ValidateSource checks the label of the system that produced the text
func ValidateSource(label string) (string, error) {
	label = normalize.Inline(label)
	if label == "" {
		return "", model.NewValidationError("sourceLabel", MsgSourceMissing)
	}
	return label, nil
}

// ValidateQuestion normalizes a question for the ask endpoint
func ValidateQuestion(question string) (string, error) {
	q := normalize.Inline(question)
	n := utf8.RuneCountInString(q)

	switch {
	case n == 0:
		return "", model.NewValidationError("question", MsgQuestionEmpty)
	case n < MinQuestionLength:
		return "", model.NewValidationError("question", MsgQuestionShort)
	case n > MaxQuestionLength:
		return "", model.NewValidationError("question", MsgQuestionLong)
	}
	return q, nil
}
