package gradequiz

import "github.com/samber/lo"

// Score grades answers against the question set. Missing answers, including
// a short answers slice, count as incorrect.
func Score(questions QuizSet, answers []*string) ScoreResult {
	reviews := lo.Map(questions, func(q Question, i int) QuestionReview {
		var answer *string
		if i < len(answers) && answers[i] != nil {
			v := *answers[i]
			answer = &v
		}
		return QuestionReview{
			Question:   q,
			UserAnswer: answer,
			IsCorrect:  answer != nil && *answer == q.CorrectAnswer,
		}
	})
	return ScoreResult{
		Score:       lo.CountBy(reviews, func(r QuestionReview) bool { return r.IsCorrect }),
		Total:       len(questions),
		PerQuestion: reviews,
	}
}

// Percentage is the score as a percentage of the total, 0 for an empty quiz
func (r ScoreResult) Percentage() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Score) / float64(r.Total) * 100
}

// FeedbackMessage is the banner shown above the review
func (r ScoreResult) FeedbackMessage() string {
	p := r.Percentage()
	switch {
	case r.Total > 0 && r.Score == r.Total:
		return "Wow, Perfect Score! You're a Quiz Whiz!"
	case p >= 80:
		return "Amazing Job! You're a superstar!"
	case p >= 60:
		return "Great work! You're getting smarter every second!"
	default:
		return "Nice try! Keep practicing and you'll be a master!"
	}
}

// Unanswered reports whether the user skipped this question
func (r QuestionReview) Unanswered() bool {
	return r.UserAnswer == nil
}
