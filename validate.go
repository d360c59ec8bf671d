package gradequiz

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// OptionsPerQuestion is fixed by the provider schema
const OptionsPerQuestion = 4

// Validate checks the provider contract for a single question
func (q Question) Validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return fmt.Errorf("%w: missing question text", ErrMalformedQuestion)
	}
	if strings.TrimSpace(q.Explanation) == "" {
		return fmt.Errorf("%w: missing explanation", ErrMalformedQuestion)
	}
	if len(q.Options) != OptionsPerQuestion {
		return fmt.Errorf("%w: expected %d options, got %d", ErrMalformedQuestion, OptionsPerQuestion, len(q.Options))
	}
	if lo.ContainsBy(q.Options, func(o string) bool { return strings.TrimSpace(o) == "" }) {
		return fmt.Errorf("%w: empty option", ErrMalformedQuestion)
	}
	if len(lo.Uniq(q.Options)) != len(q.Options) {
		return fmt.Errorf("%w: duplicate options", ErrMalformedQuestion)
	}
	if q.CorrectAnswer == "" {
		return fmt.Errorf("%w: missing correct answer", ErrMalformedQuestion)
	}
	if !lo.Contains(q.Options, q.CorrectAnswer) {
		return fmt.Errorf("%w: correct answer %q is not one of the options", ErrMalformedQuestion, q.CorrectAnswer)
	}
	return nil
}

// Validate checks that at least requested questions are present and that
// the first requested of them are well formed. Extra questions are ignored
// since callers truncate to the requested count.
func (qs QuizSet) Validate(requested int) error {
	if len(qs) < requested {
		return &tooFewQuestionsError{got: len(qs), want: requested}
	}
	for i, q := range truncate(qs, requested) {
		if err := q.Validate(); err != nil {
			return fmt.Errorf("question %d: %w", i+1, err)
		}
	}
	return nil
}

// HasOption reports whether option is one of the question's choices
func (q Question) HasOption(option string) bool {
	return lo.Contains(q.Options, option)
}

// truncate drops questions beyond n; n <= 0 keeps the whole set
func truncate(qs QuizSet, n int) QuizSet {
	if n <= 0 || len(qs) <= n {
		return qs
	}
	return qs[:n]
}
