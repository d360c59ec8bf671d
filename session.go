package gradequiz

// Session drives one quiz from the first question to completion.
//
// In Quiz mode an answer can be changed until the user advances and no
// feedback is given. In Practice mode selecting an answer reveals feedback
// and locks the answer for that question. Invalid transitions are rejected
// without changing any state.
type Session struct {
	questions QuizSet
	mode      Mode
	current   int
	answers   []*string
	feedback  bool
	completed bool
}

// NewSession starts a session in Answering(0)
func NewSession(questions QuizSet, mode Mode) (*Session, error) {
	if len(questions) == 0 {
		return nil, ErrEmptyQuiz
	}
	if mode != ModeQuiz && mode != ModePractice {
		return nil, ErrInvalidConfig
	}
	qs := make(QuizSet, len(questions))
	copy(qs, questions)
	return &Session{
		questions: qs,
		mode:      mode,
		answers:   make([]*string, len(qs)),
	}, nil
}

// SelectAnswer records option for the current question. It returns false
// when the session is completed, the answer is locked by Practice feedback,
// or option is not one of the current question's options.
func (s *Session) SelectAnswer(option string) bool {
	if s.completed || s.feedback {
		return false
	}
	if !s.questions[s.current].HasOption(option) {
		return false
	}
	answer := option
	s.answers[s.current] = &answer
	if s.mode == ModePractice {
		s.feedback = true
	}
	return true
}

// Advance moves to the next question, or completes the session on the last
// one. It returns false when the current question is unanswered or the
// session is already completed.
func (s *Session) Advance() bool {
	if s.completed || s.answers[s.current] == nil {
		return false
	}
	s.feedback = false
	if s.current == len(s.questions)-1 {
		s.completed = true
		return true
	}
	s.current++
	return true
}

// Reset restarts the same question set from the first question
func (s *Session) Reset() {
	s.current = 0
	s.answers = make([]*string, len(s.questions))
	s.feedback = false
	s.completed = false
}

// Completed reports whether the last question has been advanced past
func (s *Session) Completed() bool {
	return s.completed
}

// Finished returns the final answers once the session is completed
func (s *Session) Finished() ([]*string, bool) {
	if !s.completed {
		return nil, false
	}
	return s.Answers(), true
}

// Answers returns a copy of the answers recorded so far
func (s *Session) Answers() []*string {
	return copyAnswers(s.answers)
}

func (s *Session) Mode() Mode {
	return s.mode
}

// Questions returns a copy of the session's question set
func (s *Session) Questions() QuizSet {
	qs := make(QuizSet, len(s.questions))
	copy(qs, s.questions)
	return qs
}

// Current returns the question being answered and its index
func (s *Session) Current() (Question, int) {
	return s.questions[s.current], s.current
}

// Progress returns the 1-based position of the current question and the total
func (s *Session) Progress() (int, int) {
	return s.current + 1, len(s.questions)
}

// Phase returns the current engine state
func (s *Session) Phase() Phase {
	switch {
	case s.completed:
		return PhaseCompleted
	case s.feedback:
		return PhaseFeedbackShown
	default:
		return PhaseAnswering
	}
}

// State returns a snapshot of the session
func (s *Session) State() SessionState {
	return SessionState{
		Phase:           s.Phase(),
		CurrentIndex:    s.current,
		Answers:         s.Answers(),
		FeedbackVisible: s.feedback,
	}
}

// Feedback returns the Practice mode feedback for the current question,
// if it is being shown.
func (s *Session) Feedback() (Feedback, bool) {
	if !s.feedback || s.completed {
		return Feedback{}, false
	}
	q := s.questions[s.current]
	selected := *s.answers[s.current]
	return Feedback{
		Selected:      selected,
		CorrectAnswer: q.CorrectAnswer,
		Explanation:   q.Explanation,
		IsCorrect:     selected == q.CorrectAnswer,
	}, true
}

func copyAnswers(answers []*string) []*string {
	out := make([]*string, len(answers))
	for i, a := range answers {
		if a != nil {
			v := *a
			out[i] = &v
		}
	}
	return out
}
